// Package leancheck simulates applying formally verified logic. It only waits
// and reports a fixed confirmation.
package leancheck

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Confirmation is the status returned after a successful check.
const Confirmation = "Verified Lean logic (simulated) applied"

// Checker runs the simulated verified-logic step.
type Checker struct {
	delay  time.Duration
	logger *zap.Logger
}

// New creates a Checker that takes delay to complete.
func New(delay time.Duration, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{delay: delay, logger: logger.Named("lean")}
}

// Check waits for the configured delay and returns Confirmation. It returns
// early with the context's error if ctx is done first.
func (c *Checker) Check(ctx context.Context) (string, error) {
	c.logger.Info("Utilizing verified Lean logic", zap.Duration("delay", c.delay))

	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			c.logger.Warn("Lean logic interrupted", zap.Error(ctx.Err()))
			return "", fmt.Errorf("lean check interrupted: %w", ctx.Err())
		}
	}

	c.logger.Info("Lean logic applied successfully (simulated)")
	return Confirmation, nil
}
