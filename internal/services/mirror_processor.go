package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Mirrorer rewrites every mirrored collection from the current store state.
type Mirrorer interface {
	MirrorAll(ctx context.Context) error
}

type MirrorProcessorConfig struct {
	// Interval between full mirror passes (default: 15m).
	Interval time.Duration
	// Timeout bounds a single pass (default: 1m).
	Timeout time.Duration
}

func DefaultMirrorProcessorConfig() MirrorProcessorConfig {
	return MirrorProcessorConfig{
		Interval: 15 * time.Minute,
		Timeout:  time.Minute,
	}
}

// MirrorProcessor periodically runs a full mirror pass. It repairs sheets that
// drifted because a change event was lost while the broker was unavailable.
type MirrorProcessor struct {
	mirror Mirrorer
	config MirrorProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	lastRun time.Time
	lastErr error
}

func NewMirrorProcessor(mirror Mirrorer, config MirrorProcessorConfig) *MirrorProcessor {
	return &MirrorProcessor{mirror: mirror, config: config}
}

// Start begins the loop. Returns an error if already running.
func (p *MirrorProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("mirror processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Mirror processor started", "interval", p.config.Interval)
	return nil
}

// Stop signals the loop and waits for the current pass to finish.
func (p *MirrorProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Mirror processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Mirror processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *MirrorProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// LastRun reports when the last pass finished and its error.
func (p *MirrorProcessor) LastRun() (time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRun, p.lastErr
}

func (p *MirrorProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	p.runOnce(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *MirrorProcessor) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	start := time.Now()
	err := p.mirror.MirrorAll(runCtx)

	p.mu.Lock()
	p.lastRun, p.lastErr = time.Now(), err
	p.mu.Unlock()

	if err != nil {
		slog.ErrorContext(ctx, "Mirror pass failed", "error", err, "duration", time.Since(start))
		return
	}
	slog.DebugContext(ctx, "Mirror pass completed", "duration", time.Since(start))
}
