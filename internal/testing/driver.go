package testing

import (
	"context"
	"time"

	"github.com/aristath/qho/internal/modules/animation"
)

// NewFastDriver starts a driver ticking every few milliseconds. Callers stop it.
func NewFastDriver(sampler *animation.Sampler, sink animation.Sink) (*animation.Driver, error) {
	driver := animation.NewDriver(context.Background(), sampler, sink, animation.DriverOptions{
		FrameInterval: 2 * time.Millisecond,
		MinInterval:   time.Millisecond,
	}, NewTestLogger())
	if err := driver.Start(); err != nil {
		return nil, err
	}
	return driver, nil
}
