package delivery

import (
	"context"
	"fmt"
	"io"
)

// Console writes the report to a writer, normally stdout. Used when no
// remote channel is configured and for dry runs.
type Console struct {
	out io.Writer
}

// NewConsole creates a console channel writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Name returns the channel identifier.
func (c *Console) Name() string { return "console" }

// Configured always reports true.
func (c *Console) Configured() bool { return true }

// Send writes the report body followed by a newline.
func (c *Console) Send(_ context.Context, rep Report) error {
	_, err := fmt.Fprintln(c.out, rep.Body)
	return err
}
