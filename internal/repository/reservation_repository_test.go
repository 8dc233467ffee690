package repository

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestNewReservationRepoEnforcesMinimumCap(t *testing.T) {
    // A zero or negative cap would make every overbooking guard fail;
    // the constructor raises it to one.
    assert.Equal(t, 1, NewReservationRepo(nil, 0).maxPending)
    assert.Equal(t, 1, NewReservationRepo(nil, -5).maxPending)
    assert.Equal(t, 1, NewReservationRepo(nil, 1).maxPending)
    assert.Equal(t, 3, NewReservationRepo(nil, 3).maxPending)
}
