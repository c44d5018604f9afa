package server

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/golden-orbit/internal/beamline"
	"github.com/oshokin/golden-orbit/internal/logger"
	"github.com/oshokin/golden-orbit/internal/provider"
)

// readingsPoller keeps the current readings of the collection up to date.
type readingsPoller struct {
	source     provider.Provider
	collection *beamline.Collection
	interval   time.Duration
	// failing is set while reads keep failing, so a failure streak logs once.
	failing bool
}

func newReadingsPoller(source provider.Provider, collection *beamline.Collection,
	interval time.Duration,
) *readingsPoller {
	return &readingsPoller{
		source:     source,
		collection: collection,
		interval:   interval,
	}
}

// refresh reads the live orbit once and stores it in the collection.
func (p *readingsPoller) refresh(ctx context.Context) error {
	readings, err := p.source.ReadOrbit(ctx)
	if err != nil {
		return fmt.Errorf("read orbit: %w", err)
	}

	measured, unknown := p.collection.ApplyReadings(readings)
	if len(unknown) > 0 {
		logger.DebugKV(ctx, "Readings for unknown monitors skipped", "monitors", unknown)
	}

	logger.DebugKV(ctx, "Current readings refreshed", "measured", measured, "monitors", p.collection.Len())

	return nil
}

// poll refreshes once and logs the outcome. Monitors keep their last
// readings when the read fails.
func (p *readingsPoller) poll(ctx context.Context) {
	err := p.refresh(ctx)

	switch {
	case err != nil && !p.failing:
		p.failing = true

		logger.WarnKV(ctx, "Current readings unavailable, keeping last values", "error", err)
	case err == nil && p.failing:
		p.failing = false

		logger.Info(ctx, "Current readings available again")
	}
}

// run polls every interval until ctx is canceled.
func (p *readingsPoller) run(ctx context.Context) {
	logger.InfoKV(ctx, "Polling current readings", "interval", p.interval.String())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}
