package delivery

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tpsbot/reporter/internal/spool"
)

// Registry manages the configured delivery channels and the retry spool.
type Registry struct {
	deliveries []Delivery
	spool      *spool.Spool
	logger     *zap.Logger
}

// NewRegistry creates an empty registry. The spool may be nil, in which
// case failed reports are dropped after logging.
func NewRegistry(sp *spool.Spool, logger *zap.Logger) *Registry {
	return &Registry{
		deliveries: make([]Delivery, 0),
		spool:      sp,
		logger:     logger,
	}
}

// Register adds a channel if it is fully configured.
// Unconfigured channels are logged and skipped.
func (r *Registry) Register(d Delivery) {
	if d.Configured() {
		r.deliveries = append(r.deliveries, d)
		r.logger.Info("Registered delivery channel", zap.String("name", d.Name()))
	} else {
		r.logger.Warn("Delivery channel not configured, skipping", zap.String("name", d.Name()))
	}
}

// Channels returns the names of all registered channels.
func (r *Registry) Channels() []string {
	names := make([]string, 0, len(r.deliveries))
	for _, d := range r.deliveries {
		names = append(names, d.Name())
	}
	return names
}

// SendAll delivers the report on every registered channel. A channel
// failure spools the report for that channel and is folded into the
// returned error; other channels still get their attempt.
func (r *Registry) SendAll(ctx context.Context, rep Report) error {
	if len(r.deliveries) == 0 {
		return errors.New("no delivery channels registered")
	}

	var errs []error
	for _, d := range r.deliveries {
		if err := d.Send(ctx, rep); err != nil {
			r.logger.Error("Delivery failed",
				zap.String("channel", d.Name()),
				zap.Error(err))
			r.spoolReport(d.Name(), rep)
			errs = append(errs, fmt.Errorf("%s: %w", d.Name(), err))
			continue
		}
		r.logger.Info("Report delivered", zap.String("channel", d.Name()))
	}
	return errors.Join(errs...)
}

// FlushSpool retries every spooled report on its original channel.
// Called at the start of each run to drain entries stored during prior
// outages. Reports that fail again are re-spooled.
func (r *Registry) FlushSpool(ctx context.Context) {
	if r.spool == nil {
		return
	}

	entries, err := r.spool.Drain()
	if err != nil {
		r.logger.Error("Failed to drain spool", zap.Error(err))
		return
	}
	if len(entries) == 0 {
		return
	}

	r.logger.Info("Flushing spooled reports", zap.Int("count", len(entries)))

	for _, e := range entries {
		d := r.byName(e.Channel)
		if d == nil {
			r.logger.Warn("Spooled report for unregistered channel, dropping",
				zap.String("channel", e.Channel))
			continue
		}
		rep := Report{Subject: e.Subject, Body: e.Body}
		if err := d.Send(ctx, rep); err != nil {
			r.logger.Warn("Spooled report failed again, re-spooling",
				zap.String("channel", e.Channel),
				zap.Error(err))
			r.spoolReport(e.Channel, rep)
		}
	}
}

func (r *Registry) byName(name string) Delivery {
	for _, d := range r.deliveries {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

func (r *Registry) spoolReport(channel string, rep Report) {
	if r.spool == nil {
		r.logger.Warn("No spool available, dropping report",
			zap.String("channel", channel))
		return
	}
	if err := r.spool.Store(spool.Entry{
		Channel: channel,
		Subject: rep.Subject,
		Body:    rep.Body,
	}); err != nil {
		r.logger.Error("Failed to spool report", zap.Error(err))
	}
}
