// Package pipeline coordinates one report run: fetch widgets, normalize,
// translate, assemble, render, deliver. A missing KPI category aborts the
// run before anything is rendered or delivered; per-widget parse failures
// only drop the offending widget.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tpsbot/reporter/internal/delivery"
	"github.com/tpsbot/reporter/internal/models"
	"github.com/tpsbot/reporter/internal/report"
	"github.com/tpsbot/reporter/internal/translate"
	"github.com/tpsbot/reporter/internal/widget"
)

// WidgetSource supplies raw dashboard widgets. Implemented by the
// NerdGraph client; tests use fakes.
type WidgetSource interface {
	FetchWidgets(ctx context.Context) ([]models.RawWidget, error)
}

// Deliverer fans a finished report out to its channels.
// Implemented by delivery.Registry.
type Deliverer interface {
	SendAll(ctx context.Context, rep delivery.Report) error
	FlushSpool(ctx context.Context)
}

// Pipeline owns the stages of a report run. All stages are stateless
// between runs; independent pipelines may run concurrently.
type Pipeline struct {
	source     WidgetSource
	normalizer *widget.Normalizer
	translator *translate.Translator
	builder    *report.Builder
	renderer   *report.Renderer
	deliverer  Deliverer
	logger     *zap.Logger
}

// New wires a Pipeline from its stages.
func New(
	source WidgetSource,
	normalizer *widget.Normalizer,
	translator *translate.Translator,
	builder *report.Builder,
	renderer *report.Renderer,
	deliverer Deliverer,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		source:     source,
		normalizer: normalizer,
		translator: translator,
		builder:    builder,
		renderer:   renderer,
		deliverer:  deliverer,
		logger:     logger,
	}
}

// Run executes one report generation pass and returns the rendered
// report. Delivery failures are spooled and logged but do not fail the
// run; an incomplete snapshot does, and nothing is delivered for it.
func (p *Pipeline) Run(ctx context.Context, eventName string) (string, error) {
	// Drain reports stranded by earlier outages before generating a new one.
	p.deliverer.FlushSpool(ctx)

	widgets, err := p.source.FetchWidgets(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch widgets: %w", err)
	}
	if len(widgets) == 0 {
		p.logger.Warn("Dashboard returned no widgets")
	}

	snap := p.normalizer.Normalize(widgets)
	p.logger.Debug("Normalized snapshot", zap.Int("categories", len(snap)))

	narrative, err := p.translator.Translate(snap)
	if err != nil {
		return "", fmt.Errorf("translate snapshot: %w", err)
	}

	rctx := p.builder.Build(snap, narrative, eventName)
	body, err := p.renderer.Render(rctx)
	if err != nil {
		return "", err
	}

	rep := delivery.Report{
		Subject: "TPS Report: " + rctx.EventName,
		Body:    body,
	}
	if err := p.deliverer.SendAll(ctx, rep); err != nil {
		p.logger.Error("One or more deliveries failed", zap.Error(err))
	}

	return body, nil
}
