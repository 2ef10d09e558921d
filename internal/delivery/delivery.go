// Package delivery sends finished reports to their destinations. Channels
// implement the Delivery interface and are managed by a Registry that
// skips unconfigured channels and spools failures for the next run.
package delivery

import "context"

// Report is the delivery-ready payload: a subject line (email) and the
// rendered body (all channels).
type Report struct {
	Subject string
	Body    string
}

// Delivery is one outbound channel for finished reports.
type Delivery interface {
	// Name returns the channel identifier used in logs and the spool.
	Name() string

	// Configured reports whether the channel has everything it needs to
	// send. Unconfigured channels are not registered.
	Configured() bool

	// Send delivers the report. The context bounds the attempt.
	Send(ctx context.Context, rep Report) error
}
