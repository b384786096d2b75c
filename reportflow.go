/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package reportflow wires the data layer, the streaming record pipeline,
// and the layout/render stack into one entry point, the way the teacher's
// root streamsql.go wires rsql parsing and stream.Stream behind a single
// Streamsql facade.
package reportflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rulego/reportflow/chart"
	"github.com/rulego/reportflow/config"
	"github.com/rulego/reportflow/datasource"
	"github.com/rulego/reportflow/layout/position"
	"github.com/rulego/reportflow/layout/transform"
	"github.com/rulego/reportflow/pipeline"
	"github.com/rulego/reportflow/record"
	"github.com/rulego/reportflow/registry"
	"github.com/rulego/reportflow/render/htmlrender"
	"github.com/rulego/reportflow/render/jsonrender"
	"github.com/rulego/reportflow/render/typst"
	"github.com/rulego/reportflow/telemetry"
)

// Pipeline is the running record-processing side of a report: it pages
// records out of a DataSource, feeds them through a ProducerConsumer, and
// collects the transformed/aggregated survivors for the render side to
// consume.
type Pipeline struct {
	cfg      config.Config
	source   datasource.DataSource
	upstream *pipeline.Producer
	pc       *pipeline.ProducerConsumer
	registry *registry.Registry
	streamID string

	mu      sync.Mutex
	results []record.Record
	drained chan struct{}
}

// Option mutates the pipeline.Config that New builds, applied after cfg's
// settings but before the pipeline starts running.
type Option func(*pipeline.Config)

// WithTransformer sets the per-record transform callable, per
// pipeline.Config.Transformer's accepted shapes.
func WithTransformer(t interface{}) Option {
	return func(c *pipeline.Config) { c.Transformer = t }
}

// WithTransformationOpts sets the DataProcessor fallback conversion step.
func WithTransformationOpts(opts pipeline.TransformationOpts) Option {
	return func(c *pipeline.Config) { c.TransformationOpts = opts }
}

// WithMonitor overrides the telemetry sink a Pipeline reports to.
func WithMonitor(m *telemetry.HealthMonitor) Option {
	return func(c *pipeline.Config) { c.Monitor = m }
}

// New builds a Pipeline reading from source under cfg, registering it
// with reg (a fresh registry.Registry if reg is nil).
func New(cfg config.Config, source datasource.DataSource, reg *registry.Registry, opts ...Option) (*Pipeline, error) {
	if reg == nil {
		reg = registry.New()
	}

	upstream := pipeline.NewProducer(cfg.BufferSize)
	pcCfg := pipeline.Config{
		SubscribeTo:         upstream,
		BufferSize:          cfg.BufferSize,
		MaxDemand:           cfg.MaxDemand,
		MinDemand:           cfg.MinDemand,
		EnableTelemetry:     cfg.EnableTelemetry,
		TransformerTimeout:  cfg.Timeout,
		Aggregations:        cfg.Aggregations,
		GroupedAggregations: convertGroupedAggregations(cfg.GroupedAggregations),
	}
	if cfg.FilterExpression != "" {
		filter, err := pipeline.ExprFilter(cfg.FilterExpression)
		if err != nil {
			return nil, fmt.Errorf("reportflow: compiling filter expression: %w", err)
		}
		pcCfg.Transformer = filter
	}
	for _, opt := range opts {
		opt(&pcCfg)
	}

	pc, err := pipeline.NewProducerConsumer(pcCfg)
	if err != nil {
		return nil, fmt.Errorf("reportflow: building pipeline: %w", err)
	}

	streamID, err := reg.RegisterPipeline(upstream, map[string]interface{}{})
	if err != nil {
		return nil, fmt.Errorf("reportflow: registering pipeline: %w", err)
	}

	return &Pipeline{
		cfg:      cfg,
		source:   source,
		upstream: upstream,
		pc:       pc,
		registry: reg,
		streamID: streamID,
		drained:  make(chan struct{}),
	}, nil
}

func convertGroupedAggregations(in []config.GroupedAggregation) []pipeline.GroupedAggregationSpec {
	out := make([]pipeline.GroupedAggregationSpec, len(in))
	for i, g := range in {
		aggs := make([]record.Aggregation, len(g.Aggregations))
		for j, f := range g.Aggregations {
			aggs[j] = record.Aggregation(f)
		}
		out[i] = pipeline.GroupedAggregationSpec{
			GroupBy:      record.GroupKey(g.GroupBy),
			Aggregations: aggs,
			MaxGroups:    g.MaxGroups,
		}
	}
	return out
}

// StreamID returns the registry-assigned identifier for this pipeline.
func (p *Pipeline) StreamID() string { return p.streamID }

// Start transitions the underlying ProducerConsumer to running and begins
// collecting survivor batches in the background.
func (p *Pipeline) Start() {
	p.pc.Start()
	go p.drain()
}

func (p *Pipeline) drain() {
	for batch := range p.pc.Events() {
		p.mu.Lock()
		p.results = append(p.results, batch...)
		p.mu.Unlock()
		_ = p.registry.IncrementRecords(p.streamID, int64(len(batch)))
	}
	close(p.drained)
}

// Feed pages domain/resource out of the configured DataSource, in
// cfg.ChunkSize pages, enqueuing each page onto the upstream Producer
// until the source reports no more pages.
func (p *Pipeline) Feed(ctx context.Context, domain, resource string, query datasource.Query) error {
	offset := 0
	for {
		page, err := p.source.Fetch(ctx, domain, resource, query, offset, p.cfg.ChunkSize)
		if err != nil {
			_ = p.registry.UpdateStatus(p.streamID, registry.StatusFailed)
			return fmt.Errorf("reportflow: fetching %s/%s: %w", domain, resource, err)
		}
		if len(page.Records) > 0 {
			p.upstream.Enqueue(page.Records)
			offset += len(page.Records)
		}
		if !page.HasMore || len(page.Records) == 0 {
			return nil
		}
	}
}

// Stop closes the pipeline, waits for the drain goroutine to finish
// collecting whatever is already in flight, and marks the pipeline
// completed in the registry.
func (p *Pipeline) Stop() {
	p.upstream.Close()
	p.pc.Stop()
	<-p.drained
	_ = p.registry.UpdateStatus(p.streamID, registry.StatusCompleted)
}

// Results returns a copy of every survivor record collected so far.
func (p *Pipeline) Results() []record.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]record.Record, len(p.results))
	copy(out, p.results)
	return out
}

// Stats exposes the underlying ProducerConsumer's counters.
func (p *Pipeline) Stats() pipeline.Stats { return p.pc.Stats() }

// AggregationState exposes the running global and grouped aggregation
// accumulators.
func (p *Pipeline) AggregationState() pipeline.AggregationSnapshot { return p.pc.GetAggregationState() }

// Format names a render backend target.
type Format string

const (
	FormatTypst Format = "typst"
	FormatHTML  Format = "html"
	FormatJSON  Format = "json"
)

// ReportDefinition is everything the render side needs: a declarative
// layout entity, the grid column count for the positioning engine (0
// skips positioning, relying on explicit coordinates only), and any charts
// embedded by name into the layout's text content.
type ReportDefinition struct {
	Layout  transform.Entity
	Columns int
	Charts  []chart.Element
}

// Render normalizes def.Layout into the layout IR, positions it if
// Columns > 0, preprocesses any charts into ctx under their element name
// (so a `[chart_name]` placeholder resolves the same way any other
// variable does), and renders through the requested backend.
func Render(def ReportDefinition, ctx map[string]interface{}, format Format, chartRenderer chart.Renderer) (string, error) {
	l, err := transform.Transform(def.Layout)
	if err != nil {
		return "", fmt.Errorf("reportflow: transforming layout: %w", err)
	}
	if def.Columns > 0 {
		if _, err := position.Place(l, def.Columns); err != nil {
			return "", fmt.Errorf("reportflow: positioning layout: %w", err)
		}
	}

	if len(def.Charts) > 0 && chartRenderer != nil {
		var records []map[string]interface{}
		if raw, ok := ctx["records"].([]map[string]interface{}); ok {
			records = raw
		}
		preprocessor := &chart.Preprocessor{Renderer: chartRenderer}
		for name, embed := range preprocessor.Preprocess(def.Charts, chart.DataContext{Records: records}) {
			ctx[name] = embed
		}
	}

	switch format {
	case FormatTypst:
		return typst.Render(l, ctx)
	case FormatHTML:
		return htmlrender.Render(l, ctx)
	case FormatJSON:
		raw, err := json.Marshal(jsonrender.Serialize(l))
		if err != nil {
			return "", fmt.Errorf("reportflow: marshaling JSON render: %w", err)
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("reportflow: unrecognized render format %q", format)
	}
}
