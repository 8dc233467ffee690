package engine

import (
    "context"
    "errors"
    "strings"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/clubrosario/booking-bot/internal/model"
    "github.com/clubrosario/booking-bot/internal/queue"
    "github.com/clubrosario/booking-bot/internal/registry"
    "github.com/clubrosario/booking-bot/internal/repository"
    "github.com/clubrosario/booking-bot/internal/schedule"
)

// fakeResolver resolves a fixed set of facilities.
type fakeResolver struct {
    facilities []model.Facility
    err        error
}

func (f *fakeResolver) Resolve(_ context.Context, name string) (model.Facility, error) {
    if f.err != nil {
        return model.Facility{}, f.err
    }
    for _, fac := range f.facilities {
        if strings.EqualFold(fac.Name, name) {
            return fac, nil
        }
    }
    return model.Facility{}, repository.ErrFacilityNotFound
}

func (f *fakeResolver) Names() []string {
    var out []string
    for _, fac := range f.facilities {
        out = append(out, fac.Name)
    }
    return out
}

// fakeStore is an in-memory ReservationStore with scriptable behavior.
type fakeStore struct {
    blockingSeq  []*repository.Blocking // consumed per FindBlocking call; last entry repeats
    blockingErr  error
    confirmed    []model.Reservation
    confirmedErr error

    createConfirmedErrs   []error // consumed per call; nil entry means success
    createOverbookingErrs []error

    future    []repository.CancellableRow
    futureErr error

    cancelRow repository.CancellableRow
    promoted  []repository.PromotedRow
    cancelErr error

    created []*model.Reservation
    nextID  uint64
}

func (s *fakeStore) FindBlocking(context.Context, uint64, time.Time, time.Time) (*repository.Blocking, error) {
    if s.blockingErr != nil {
        return nil, s.blockingErr
    }
    if len(s.blockingSeq) == 0 {
        return nil, nil
    }
    b := s.blockingSeq[0]
    if len(s.blockingSeq) > 1 {
        s.blockingSeq = s.blockingSeq[1:]
    }
    return b, nil
}

func (s *fakeStore) ConfirmedOverlapping(context.Context, uint64, time.Time, time.Time) ([]model.Reservation, error) {
    return s.confirmed, s.confirmedErr
}

func (s *fakeStore) create(res *model.Reservation, errs *[]error) error {
    if len(*errs) > 0 {
        err := (*errs)[0]
        *errs = (*errs)[1:]
        if err != nil {
            return err
        }
    }
    s.nextID++
    res.ID = s.nextID
    s.created = append(s.created, res)
    return nil
}

func (s *fakeStore) CreateConfirmed(_ context.Context, res *model.Reservation) error {
    res.Status = model.StatusConfirmed
    return s.create(res, &s.createConfirmedErrs)
}

func (s *fakeStore) CreateOverbooking(_ context.Context, res *model.Reservation, originalID uint64) error {
    res.Status = model.StatusPending
    res.IsOverbooking = true
    res.OriginalID = &originalID
    return s.create(res, &s.createOverbookingErrs)
}

func (s *fakeStore) FutureConfirmedBySession(context.Context, string, time.Time) ([]repository.CancellableRow, error) {
    return s.future, s.futureErr
}

func (s *fakeStore) CancelAndPromote(context.Context, uint64, string, time.Time) (repository.CancellableRow, []repository.PromotedRow, error) {
    return s.cancelRow, s.promoted, s.cancelErr
}

// fakeRisk returns a fixed probability.
type fakeRisk struct{ prob float64 }

func (r fakeRisk) ComputeFeatures(_ context.Context, facilityID uint64, _ schedule.Slot, _ string, _ time.Time) model.FeatureSnapshot {
    return model.FeatureSnapshot{FacilityID: facilityID}
}

func (r fakeRisk) Predict(context.Context, model.FeatureSnapshot) float64 { return r.prob }

// fakeNotifier records published events.
type fakeNotifier struct {
    events []queue.OverbookingPromotedEvent
    err    error
}

func (n *fakeNotifier) PublishOverbookingPromoted(_ context.Context, ev queue.OverbookingPromotedEvent) error {
    n.events = append(n.events, ev)
    return n.err
}

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, store *fakeStore, notifier Notifier, prob float64) *Engine {
    t.Helper()
    resolver := &fakeResolver{facilities: []model.Facility{
        {ID: 1, Name: "Pista de Padel 1"},
        {ID: 2, Name: "Pista de Tenis"},
    }}
    grid := schedule.LoadGrid("UTC", 8, 22, 60)
    e := New(resolver, store, fakeRisk{prob: prob}, notifier, grid, 0.65, 30)
    e.now = func() time.Time { return testNow }
    return e
}

func TestCheckAvailabilityFree(t *testing.T) {
    e := newTestEngine(t, &fakeStore{}, nil, 0)

    av := e.CheckAvailability(context.Background(), "pista de padel 1", "2025-06-02", "10:00")
    assert.Equal(t, Available, av.Kind)
}

func TestCheckAvailabilityInvalidFacility(t *testing.T) {
    e := newTestEngine(t, &fakeStore{}, nil, 0)

    av := e.CheckAvailability(context.Background(), "Piscina", "2025-06-02", "10:00")
    require.Equal(t, InvalidFacility, av.Kind)
    assert.Equal(t, []string{"Pista de Padel 1", "Pista de Tenis"}, av.Options)
}

// unreachableLister always fails, modelling a facilities table that cannot
// be read before the registry ever populated its cache.
type unreachableLister struct{}

func (unreachableLister) ListAll(context.Context) ([]model.Facility, error) {
    return nil, errors.New("db gone")
}

func TestCheckAvailabilityEmptyRegistryAnswersUnknownFacility(t *testing.T) {
    grid := schedule.LoadGrid("UTC", 8, 22, 60)
    e := New(registry.New(unreachableLister{}), &fakeStore{}, fakeRisk{}, nil, grid, 0.65, 30)
    e.now = func() time.Time { return testNow }

    av := e.CheckAvailability(context.Background(), "Pista de Tenis", "2025-06-02", "10:00")
    require.Equal(t, InvalidFacility, av.Kind)
    assert.Empty(t, av.Options)
    assert.Equal(t, "ERROR: Instalacion no valida | Opciones: ninguna encontrada", FormatAvailability(av))
}

func TestCheckAvailabilityBadFormat(t *testing.T) {
    e := newTestEngine(t, &fakeStore{}, nil, 0)

    av := e.CheckAvailability(context.Background(), "Pista de Tenis", "02/06/2025", "10:00")
    assert.Equal(t, BadFormat, av.Kind)
}

func TestCheckAvailabilityPastSlot(t *testing.T) {
    e := newTestEngine(t, &fakeStore{}, nil, 0)

    av := e.CheckAvailability(context.Background(), "Pista de Tenis", "2025-05-31", "10:00")
    assert.Equal(t, InvalidPast, av.Kind)
}

func TestCheckAvailabilityOccupiedWithAlternatives(t *testing.T) {
    day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
    store := &fakeStore{
        blockingSeq: []*repository.Blocking{{ID: 7, CancelProb: 0.2}},
        confirmed: []model.Reservation{
            {StartsAt: day.Add(10 * time.Hour), EndsAt: day.Add(11 * time.Hour)},
            {StartsAt: day.Add(12 * time.Hour), EndsAt: day.Add(13 * time.Hour)},
        },
    }
    e := newTestEngine(t, store, nil, 0)

    av := e.CheckAvailability(context.Background(), "Pista de Padel 1", "2025-06-02", "10:00")
    require.Equal(t, Occupied, av.Kind)
    assert.Equal(t, uint64(7), av.BlockingID)
    assert.False(t, av.OverbookingEligible)

    // 14 one-hour slots between 08:00 and 22:00, two of them booked.
    require.Len(t, av.Alternatives, 12)
    assert.Equal(t, []string{"08:00", "09:00", "11:00", "13:00"}, av.Alternatives[:4])
    assert.Equal(t, "21:00", av.Alternatives[len(av.Alternatives)-1])
}

func TestCheckAvailabilityAlternativesSkipPast(t *testing.T) {
    day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) // same day as testNow (09:00)
    store := &fakeStore{
        blockingSeq: []*repository.Blocking{{ID: 3, CancelProb: 0.1}},
        confirmed: []model.Reservation{
            {StartsAt: day.Add(10 * time.Hour), EndsAt: day.Add(11 * time.Hour)},
        },
    }
    e := newTestEngine(t, store, nil, 0)

    av := e.CheckAvailability(context.Background(), "Pista de Padel 1", "2025-06-01", "10:00")
    require.Equal(t, Occupied, av.Kind)
    // 08:00 already started, 10:00 is booked; first free option is 09:00.
    assert.Equal(t, "09:00", av.Alternatives[0])
    assert.NotContains(t, av.Alternatives, "08:00")
    assert.NotContains(t, av.Alternatives, "10:00")
}

func TestOverbookingThresholdIsInclusive(t *testing.T) {
    cases := []struct {
        prob     float64
        eligible bool
    }{
        {0.649, false},
        {0.65, true},
        {0.9, true},
    }
    for _, tc := range cases {
        store := &fakeStore{blockingSeq: []*repository.Blocking{{ID: 1, CancelProb: tc.prob}}}
        e := newTestEngine(t, store, nil, 0)

        av := e.CheckAvailability(context.Background(), "Pista de Tenis", "2025-06-02", "18:00")
        require.Equal(t, Occupied, av.Kind)
        assert.Equal(t, tc.eligible, av.OverbookingEligible, "prob=%v", tc.prob)
    }
}

func TestReserveConfirmed(t *testing.T) {
    store := &fakeStore{}
    e := newTestEngine(t, store, nil, 0.4)

    res := e.Reserve(context.Background(), "Pista de Padel 1", "2025-06-02", "10:00", "Ana", "34600000001")
    require.Equal(t, ReserveConfirmed, res.Kind)
    assert.Equal(t, uint64(1), res.ID)
    assert.Equal(t, "Ana", res.CustomerName)

    require.Len(t, store.created, 1)
    created := store.created[0]
    assert.Equal(t, model.StatusConfirmed, created.Status)
    assert.Equal(t, "34600000001", created.SessionID)
    assert.InDelta(t, 0.4, created.CancelProb, 1e-9)
}

func TestReserveRequiresSession(t *testing.T) {
    e := newTestEngine(t, &fakeStore{}, nil, 0)

    res := e.Reserve(context.Background(), "Pista de Padel 1", "2025-06-02", "10:00", "Ana", "")
    assert.Equal(t, ReserveNoSession, res.Kind)
}

func TestReserveCreatesPendingOverbooking(t *testing.T) {
    store := &fakeStore{blockingSeq: []*repository.Blocking{{ID: 9, CancelProb: 0.8}}}
    e := newTestEngine(t, store, nil, 0.3)

    res := e.Reserve(context.Background(), "Pista de Tenis", "2025-06-02", "18:00", "Luis", "34600000002")
    require.Equal(t, ReservePendingOverbooking, res.Kind)
    assert.Equal(t, uint64(9), res.OriginalID)

    require.Len(t, store.created, 1)
    created := store.created[0]
    assert.True(t, created.IsOverbooking)
    assert.Equal(t, model.StatusPending, created.Status)
    require.NotNil(t, created.OriginalID)
    assert.Equal(t, uint64(9), *created.OriginalID)
}

func TestReserveRejectsIneligibleOverbooking(t *testing.T) {
    store := &fakeStore{blockingSeq: []*repository.Blocking{{ID: 4, CancelProb: 0.2}}}
    e := newTestEngine(t, store, nil, 0)

    res := e.Reserve(context.Background(), "Pista de Tenis", "2025-06-02", "18:00", "Luis", "34600000002")
    require.Equal(t, ReserveRejected, res.Kind)
    assert.Equal(t, Occupied, res.Check.Kind)
    assert.Empty(t, store.created)
}

func TestReserveRetriesOnceAfterConflict(t *testing.T) {
    // First check sees the slot free, the insert loses the race, the
    // re-check finds it occupied by a low-risk booking.
    store := &fakeStore{
        blockingSeq:         []*repository.Blocking{nil, {ID: 5, CancelProb: 0.1}},
        createConfirmedErrs: []error{repository.ErrConflict},
    }
    e := newTestEngine(t, store, nil, 0.4)

    res := e.Reserve(context.Background(), "Pista de Padel 1", "2025-06-02", "10:00", "Ana", "34600000001")
    require.Equal(t, ReserveRejected, res.Kind)
    assert.Equal(t, Occupied, res.Check.Kind)
    assert.Empty(t, store.created)
}

func TestReserveStoreFailure(t *testing.T) {
    store := &fakeStore{createConfirmedErrs: []error{errors.New("connection lost")}}
    e := newTestEngine(t, store, nil, 0.4)

    res := e.Reserve(context.Background(), "Pista de Padel 1", "2025-06-02", "10:00", "Ana", "34600000001")
    require.Equal(t, ReserveFailed, res.Kind)
    assert.Equal(t, ErrorDB, res.Err)
}

func TestFindCancellableClassification(t *testing.T) {
    start := time.Date(2025, 6, 3, 18, 0, 0, 0, time.UTC)
    one := []repository.CancellableRow{{ID: 11, FacilityName: "Pista de Tenis", StartsAt: start}}
    two := append(one, repository.CancellableRow{ID: 12, FacilityName: "Pista de Padel 1", StartsAt: start.Add(time.Hour)})

    cases := []struct {
        name string
        rows []repository.CancellableRow
        want FindingKind
    }{
        {"none", nil, FindNone},
        {"single", one, FindSingle},
        {"multiple", two, FindMultiple},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            e := newTestEngine(t, &fakeStore{future: tc.rows}, nil, 0)
            f := e.FindCancellable(context.Background(), "34600000001")
            assert.Equal(t, tc.want, f.Kind)
            assert.Len(t, f.Candidates, len(tc.rows))
        })
    }
}

func TestFindCancellableRequiresSession(t *testing.T) {
    e := newTestEngine(t, &fakeStore{}, nil, 0)
    f := e.FindCancellable(context.Background(), "")
    assert.Equal(t, FindNoSession, f.Kind)
}

func TestConfirmCancelPromotesAndNotifies(t *testing.T) {
    start := time.Date(2025, 6, 3, 18, 0, 0, 0, time.UTC)
    store := &fakeStore{
        cancelRow: repository.CancellableRow{ID: 11, FacilityName: "Pista de Tenis", StartsAt: start},
        promoted: []repository.PromotedRow{
            {ID: 21, CustomerName: "Luis", SessionID: "34600000002", FacilityName: "Pista de Tenis", StartsAt: start},
        },
    }
    notifier := &fakeNotifier{}
    e := newTestEngine(t, store, notifier, 0)

    res := e.ConfirmCancel(context.Background(), 11, "34600000001")
    require.Equal(t, Cancelled, res.Kind)
    require.Len(t, res.Promoted, 1)

    require.Len(t, notifier.events, 1)
    ev := notifier.events[0]
    assert.Equal(t, uint64(21), ev.ReservationID)
    assert.Equal(t, "34600000002", ev.SessionID)
    assert.Equal(t, "Pista de Tenis", ev.FacilityName)
    assert.Equal(t, "2025-06-03", ev.Date)
    assert.Equal(t, "18:00", ev.Time)
}

func TestConfirmCancelPublishFailureDoesNotFail(t *testing.T) {
    start := time.Date(2025, 6, 3, 18, 0, 0, 0, time.UTC)
    store := &fakeStore{
        cancelRow: repository.CancellableRow{ID: 11, FacilityName: "Pista de Tenis", StartsAt: start},
        promoted:  []repository.PromotedRow{{ID: 21, SessionID: "34600000002", StartsAt: start}},
    }
    e := newTestEngine(t, store, &fakeNotifier{err: errors.New("broker down")}, 0)

    res := e.ConfirmCancel(context.Background(), 11, "34600000001")
    assert.Equal(t, Cancelled, res.Kind)
}

func TestConfirmCancelNotFound(t *testing.T) {
    e := newTestEngine(t, &fakeStore{cancelErr: repository.ErrReservationNotFound}, nil, 0)

    res := e.ConfirmCancel(context.Background(), 99, "34600000001")
    assert.Equal(t, CancelNotFound, res.Kind)
}
