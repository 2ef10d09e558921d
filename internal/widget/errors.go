package widget

import "fmt"

// ExtractionError reports a widget whose payload yielded no usable value.
// It is recoverable: the widget is dropped and the run continues.
type ExtractionError struct {
	Title  string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract widget %q: %s", e.Title, e.Reason)
}

// MalformedSeriesError reports a series point lacking a usable timestamp
// or value. Points are skipped individually; an entirely unusable series
// falls back to the empty-series peak sentinel.
type MalformedSeriesError struct {
	Reason string
}

func (e *MalformedSeriesError) Error() string {
	return fmt.Sprintf("malformed series point: %s", e.Reason)
}
