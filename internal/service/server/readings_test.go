package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/golden-orbit/internal/beamline"
	domain "github.com/oshokin/golden-orbit/internal/domain/orbit"
	"github.com/oshokin/golden-orbit/internal/provider"
	orbitsvc "github.com/oshokin/golden-orbit/internal/service/orbit"
)

// TestReadingsPoller_KeepsLastReadings survives a failing source and recovers.
func TestReadingsPoller_KeepsLastReadings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	live := &provider.Static{
		Orbit: []domain.Reading{
			{Validity: domain.Valid, XMM: 1, YMM: 2, ID: "BPM1"},
			{Validity: domain.Invalid, XMM: 3, YMM: 4, ID: "BPM2"},
		},
	}

	collection := beamline.NewCollection([]*domain.Monitor{
		{ID: "BPM1", S: 1, Enabled: true},
		{ID: "BPM2", S: 2, Enabled: true},
	})
	poller := newReadingsPoller(live, collection, time.Hour)
	manager := orbitsvc.NewManager(collection, orbitsvc.Options{Provider: live})

	poller.poll(ctx)
	require.False(t, poller.failing)
	require.Equal(t, domain.Table{"BPM1": {X: 0.001, Y: 0.002}}, manager.CaptureCurrent(ctx))

	live.Err = fmt.Errorf("%w: timeout", provider.ErrSourceUnavailable)

	poller.poll(ctx)
	require.True(t, poller.failing)
	require.ErrorIs(t, poller.refresh(ctx), provider.ErrSourceUnavailable)
	require.Equal(t, domain.Table{"BPM1": {X: 0.001, Y: 0.002}}, manager.CaptureCurrent(ctx))

	live.Err = nil
	live.Orbit = []domain.Reading{{Validity: domain.Valid, XMM: 5, YMM: 6, ID: "BPM2"}}

	poller.poll(ctx)
	require.False(t, poller.failing)
	require.Equal(t, domain.Table{
		"BPM1": {X: 0.001, Y: 0.002},
		"BPM2": {X: 0.005, Y: 0.006},
	}, manager.CaptureCurrent(ctx))
}

// TestReadingsPoller_RunStopsWithContext refreshes on every tick until canceled.
func TestReadingsPoller_RunStopsWithContext(t *testing.T) {
	t.Parallel()

	live := &provider.Static{
		Orbit: []domain.Reading{{Validity: domain.Valid, XMM: 1, YMM: 1, ID: "BPM1"}},
	}
	collection := beamline.NewCollection([]*domain.Monitor{{ID: "BPM1", Enabled: true}})
	poller := newReadingsPoller(live, collection, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		poller.run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return collection.Snapshot()[0].Measured
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
