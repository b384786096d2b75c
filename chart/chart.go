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

// Package chart resolves chart elements embedded in a report tree into
// sanitized, ready-to-embed Typst markup, delegating the actual SVG
// rendering to an external charting collaborator.
package chart

import (
	"encoding/base64"
	"fmt"

	"github.com/rulego/reportflow/logger"
)

// Type enumerates the chart kinds a report element may request.
type Type string

const (
	Bar     Type = "bar"
	Line    Type = "line"
	Pie     Type = "pie"
	Area    Type = "area"
	Scatter Type = "scatter"
)

// RecordsSentinel is the symbolic data_source value meaning "resolve from
// the enclosing data_context.records", per spec.md §4.8.
const RecordsSentinel = ":records"

// EmbedOptions controls how a rendered chart is embedded into the document.
type EmbedOptions struct {
	Width   string
	Height  string
	Title   string
	Caption string
}

// Element is one chart node in a report tree.
type Element struct {
	Name         string
	ChartType    Type
	DataSource   interface{} // []record.Record, RecordsSentinel, or nil
	Config       map[string]interface{}
	EmbedOptions EmbedOptions
}

// Renderer is the external charting collaborator: given a resolved chart
// type, row data, and config, it produces raw (unsanitized) SVG bytes.
type Renderer interface {
	RenderSVG(chartType Type, rows []map[string]interface{}, config map[string]interface{}) ([]byte, error)
}

// DataContext supplies the ambient records a `:records` data source
// resolves against.
type DataContext struct {
	Records []map[string]interface{}
}

// fileSizeThreshold is the payload size past which a rendered chart is
// embedded file-backed instead of base64-inlined, per spec.md §4.8.
const fileSizeThreshold = 1 << 20 // 1 MB

// Preprocessor renders chart elements into embeddable Typst markup.
type Preprocessor struct {
	Renderer Renderer

	// WriteSideFile persists an oversized SVG payload to disk and returns
	// the path to embed via `#image("path")`. Required only when a chart's
	// rendered SVG exceeds fileSizeThreshold; nil is fine for charts that
	// never cross it.
	WriteSideFile func(name string, svg []byte) (path string, err error)
}

// Thunk renders a single named chart on demand.
type Thunk func() string

func (p *Preprocessor) resolveRows(ds interface{}, ctx DataContext) ([]map[string]interface{}, error) {
	switch v := ds.(type) {
	case nil:
		return nil, errMissingDataSource
	case string:
		if v == RecordsSentinel {
			return ctx.Records, nil
		}
		return nil, errMissingDataSource
	case []map[string]interface{}:
		return v, nil
	default:
		return nil, errMissingDataSource
	}
}

// renderOne produces the Typst embed markup for a single chart element,
// never returning an error: failures degrade to a visible placeholder per
// spec.md §4.8.
func (p *Preprocessor) renderOne(el Element, ctx DataContext) string {
	rows, err := p.resolveRows(el.DataSource, ctx)
	if err != nil {
		return errorPlaceholder(el.Name, err)
	}

	if p.Renderer == nil {
		return errorPlaceholder(el.Name, errNoRenderer)
	}
	raw, err := p.Renderer.RenderSVG(el.ChartType, rows, el.Config)
	if err != nil {
		logger.Warn("chart: render failed for %q: %v", el.Name, err)
		return errorPlaceholder(el.Name, err)
	}

	clean := Sanitize(raw)
	return p.embed(el, clean)
}

func (p *Preprocessor) embed(el Element, svg []byte) string {
	opts := el.EmbedOptions
	attrs := embedAttrs(opts)

	if len(svg) > fileSizeThreshold && p.WriteSideFile != nil {
		path, err := p.WriteSideFile(el.Name, svg)
		if err != nil {
			logger.Warn("chart: side-file write failed for %q: %v", el.Name, err)
			return errorPlaceholder(el.Name, err)
		}
		return fmt.Sprintf("#image(%q%s)", path, attrs)
	}

	encoded := base64.StdEncoding.EncodeToString(svg)
	return fmt.Sprintf("#image.decode(%q, format: \"svg\"%s)", encoded, attrs)
}

func embedAttrs(opts EmbedOptions) string {
	out := ""
	if opts.Width != "" {
		out += fmt.Sprintf(", width: %s", opts.Width)
	}
	if opts.Height != "" {
		out += fmt.Sprintf(", height: %s", opts.Height)
	}
	return out
}

func errorPlaceholder(name string, err error) string {
	return fmt.Sprintf("#block(fill: rgb(\"#fdd\"), inset: 8pt)[*Chart Error: %s* \\ %s]", name, err)
}

// Preprocess renders every chart in els eagerly against ctx.
func (p *Preprocessor) Preprocess(els []Element, ctx DataContext) map[string]string {
	out := make(map[string]string, len(els))
	for _, el := range els {
		out[el.Name] = p.renderOne(el, ctx)
	}
	return out
}

// PreprocessLazy returns a thunk per chart that renders on demand. Thunks
// are pure with respect to ctx and may be invoked any number of times.
func (p *Preprocessor) PreprocessLazy(els []Element, ctx DataContext) map[string]Thunk {
	out := make(map[string]Thunk, len(els))
	for _, el := range els {
		el := el
		out[el.Name] = func() string { return p.renderOne(el, ctx) }
	}
	return out
}
