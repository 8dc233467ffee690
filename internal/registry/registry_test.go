package registry

import (
    "context"
    "errors"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/clubrosario/booking-bot/internal/model"
    "github.com/clubrosario/booking-bot/internal/repository"
)

// fakeLister serves a scripted facility list and can be flipped to failing.
type fakeLister struct {
    facilities []model.Facility
    err        error
    calls      int
}

func (f *fakeLister) ListAll(context.Context) ([]model.Facility, error) {
    f.calls++
    if f.err != nil {
        return nil, f.err
    }
    return f.facilities, nil
}

func testFacilities() []model.Facility {
    return []model.Facility{
        {ID: 1, Name: "Pista de Padel 1"},
        {ID: 2, Name: "Pista de Tenis"},
        {ID: 3, Name: "Piscina Cubierta"},
    }
}

func TestResolveIsCaseInsensitiveAndCanonical(t *testing.T) {
    reg := New(&fakeLister{facilities: testFacilities()})

    fac, err := reg.Resolve(context.Background(), "pista de tenis")
    require.NoError(t, err)
    assert.Equal(t, uint64(2), fac.ID)
    assert.Equal(t, "Pista de Tenis", fac.Name, "canonical casing must be returned")
}

func TestResolveUnknownName(t *testing.T) {
    reg := New(&fakeLister{facilities: testFacilities()})

    _, err := reg.Resolve(context.Background(), "Rocodromo")
    assert.ErrorIs(t, err, repository.ErrFacilityNotFound)
}

func TestResolveUsesCachedSnapshot(t *testing.T) {
    store := &fakeLister{facilities: testFacilities()}
    reg := New(store)

    _, err := reg.Resolve(context.Background(), "Piscina Cubierta")
    require.NoError(t, err)
    _, err = reg.Resolve(context.Background(), "Pista de Tenis")
    require.NoError(t, err)

    assert.Equal(t, 1, store.calls, "subsequent resolves must not hit the store")
}

func TestFailedRefreshKeepsPreviousSnapshot(t *testing.T) {
    store := &fakeLister{facilities: testFacilities()}
    reg := New(store)
    require.NoError(t, reg.Refresh(context.Background()))

    store.err = errors.New("db gone")
    assert.Error(t, reg.Refresh(context.Background()))

    fac, err := reg.Resolve(context.Background(), "Pista de Padel 1")
    require.NoError(t, err)
    assert.Equal(t, uint64(1), fac.ID)
}

func TestResolveWithEmptyUnrefreshableCache(t *testing.T) {
    reg := New(&fakeLister{err: errors.New("db gone")})

    // With no snapshot and no way to build one, every name is unknown;
    // the store failure must not leak out as a technical error.
    _, err := reg.Resolve(context.Background(), "Pista de Tenis")
    assert.ErrorIs(t, err, repository.ErrFacilityNotFound)
}

func TestRefreshIsIdempotent(t *testing.T) {
    store := &fakeLister{facilities: testFacilities()}
    reg := New(store)

    require.NoError(t, reg.Refresh(context.Background()))
    first := reg.Names()
    require.NoError(t, reg.Refresh(context.Background()))
    second := reg.Names()

    assert.Equal(t, first, second, "unchanged store must yield an identical, order-stable snapshot")
    assert.Equal(t, []string{"Pista de Padel 1", "Pista de Tenis", "Piscina Cubierta"}, second)
}

func TestNamesWithoutPopulatedCache(t *testing.T) {
    reg := New(&fakeLister{facilities: testFacilities()})
    assert.Nil(t, reg.Names())
}

func TestListFilterDoesNotShrinkSnapshot(t *testing.T) {
    reg := New(&fakeLister{facilities: testFacilities()})

    names, err := reg.List(context.Background(), "pista")
    require.NoError(t, err)
    assert.Equal(t, []string{"Pista de Padel 1", "Pista de Tenis"}, names)

    // The stored snapshot must remain the full list.
    assert.Len(t, reg.Names(), 3)
}

func TestListEmptyFilterReturnsAll(t *testing.T) {
    reg := New(&fakeLister{facilities: testFacilities()})

    names, err := reg.List(context.Background(), "")
    require.NoError(t, err)
    assert.Equal(t, []string{"Pista de Padel 1", "Pista de Tenis", "Piscina Cubierta"}, names)
}
