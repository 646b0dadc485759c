package delivery

import (
	"context"
	"time"
)

// NoOp accepts every delivery without sending anything. Use it for tests and
// for channels whose delivery happens outside the engine.
type NoOp struct{}

// NewNoOp returns a no-op channel.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Deliver discards the code.
func (*NoOp) Deliver(context.Context, string, string, time.Duration) error {
	return nil
}

// Name identifies the channel in audit metadata.
func (*NoOp) Name() string {
	return "noop"
}
