package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFocusTimerLifecycle(t *testing.T) {
	svc := NewFocusService(nil)
	clock := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	state, err := svc.Start("teacher", 10*time.Minute)
	require.NoError(t, err)
	require.True(t, state.Running)
	require.Equal(t, 10*time.Minute, state.Remaining)

	// Three minutes pass, then the teacher pauses.
	clock = clock.Add(3 * time.Minute)
	state, err = svc.Pause("teacher")
	require.NoError(t, err)
	require.False(t, state.Running)
	require.Equal(t, 7*time.Minute, state.Remaining)

	// Paused time does not burn down.
	clock = clock.Add(30 * time.Minute)
	require.Equal(t, 7*time.Minute, svc.State("teacher").Remaining)

	state, err = svc.Resume("teacher")
	require.NoError(t, err)
	require.True(t, state.Running)

	clock = clock.Add(7 * time.Minute)
	state = svc.State("teacher")
	require.False(t, state.Running)
	require.Zero(t, state.Remaining)
}

func TestFocusStartReplacesTimer(t *testing.T) {
	svc := NewFocusService(nil)
	_, err := svc.Start("teacher", 5*time.Minute)
	require.NoError(t, err)

	state, err := svc.Start("teacher", 20*time.Minute)
	require.NoError(t, err)
	require.Equal(t, 20*time.Minute, state.Duration)
	require.Equal(t, 20*time.Minute, state.Remaining)
}

func TestFocusStartRejectsNonPositiveDuration(t *testing.T) {
	svc := NewFocusService(nil)
	_, err := svc.Start("teacher", 0)
	require.Error(t, err)
	_, err = svc.Start("teacher", -time.Minute)
	require.Error(t, err)
}

func TestFocusPauseWithoutTimer(t *testing.T) {
	svc := NewFocusService(nil)
	_, err := svc.Pause("teacher")
	require.Error(t, err)
	_, err = svc.Resume("teacher")
	require.Error(t, err)
}

func TestFocusStateWithoutTimer(t *testing.T) {
	svc := NewFocusService(nil)
	state := svc.State("teacher")
	require.False(t, state.Running)
	require.Zero(t, state.Remaining)
	require.Zero(t, state.Duration)
}

func TestFocusStop(t *testing.T) {
	svc := NewFocusService(nil)
	_, err := svc.Start("teacher", time.Minute)
	require.NoError(t, err)

	svc.Stop("teacher")
	require.False(t, svc.State("teacher").Running)
	require.Zero(t, svc.State("teacher").Duration)
}

func TestFocusRemainingNeverNegative(t *testing.T) {
	svc := NewFocusService(nil)
	clock := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	_, err := svc.Start("teacher", time.Minute)
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	state := svc.State("teacher")
	require.Zero(t, state.Remaining)
	require.False(t, state.Running)
}
