package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusExpired, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusExpired, false},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusExpired, StatusConfirmed, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusTerminality(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
}

func TestStatusActivity(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusConfirmed.IsActive())
	assert.False(t, StatusCancelled.IsActive())
	assert.False(t, StatusCompleted.IsActive())
	assert.False(t, StatusExpired.IsActive())
}
