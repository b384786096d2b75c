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

// Package typst emits Typst markup (#grid/#table/#stack) from the layout
// Intermediate Representation, per spec.md §4.10.
package typst

import (
	"fmt"
	"strings"

	"github.com/rulego/reportflow/layout"
	"github.com/rulego/reportflow/layout/property"
	"github.com/rulego/reportflow/render/format"
	"github.com/rulego/reportflow/render/varsub"
)

// Render emits the Typst markup for l, substituting `[variable]`
// placeholders in label text against ctx.
func Render(l *layout.Layout, ctx map[string]interface{}) (string, error) {
	switch l.Kind {
	case layout.Grid:
		return renderContainer(l, ctx, "grid")
	case layout.Table:
		return renderContainer(l, ctx, "table")
	case layout.Stack:
		return renderStack(l, ctx)
	default:
		return "", fmt.Errorf("typst: unrecognized layout kind %q", l.Kind)
	}
}

// renderContainer emits #grid(...) or #table(...): positional parameters in
// the stable order columns, rows, gutter, align, inset, fill, stroke, then
// children, per spec.md §4.10.
func renderContainer(l *layout.Layout, ctx map[string]interface{}, fn string) (string, error) {
	var args []string
	if tracks, ok := l.Properties["columns"].([]layout.Track); ok {
		args = append(args, "columns: "+renderTracks(tracks))
	}
	if tracks, ok := l.Properties["rows"].([]layout.Track); ok {
		args = append(args, "rows: "+renderTracks(tracks))
	}
	if v, ok := l.Properties["gutter"]; ok {
		args = append(args, "gutter: "+renderLength(v))
	}
	if v, ok := l.Properties["align"]; ok {
		args = append(args, "align: "+renderAlign(v))
	}
	if v, ok := l.Properties["inset"]; ok {
		args = append(args, "inset: "+renderLength(v))
	}
	if v, ok := l.Properties["fill"]; ok {
		args = append(args, "fill: "+renderColor(v))
	}
	if v, ok := l.Properties["stroke"]; ok {
		args = append(args, "stroke: "+renderStroke(v))
	}

	children, err := renderChildren(l, ctx, fn)
	if err != nil {
		return "", err
	}
	args = append(args, children...)

	return fmt.Sprintf("#%s(\n%s\n)", fn, indentJoin(args)), nil
}

func renderStack(l *layout.Layout, ctx map[string]interface{}) (string, error) {
	var args []string
	if v, ok := l.Properties["dir"]; ok {
		args = append(args, "dir: "+stackDir(v))
	}
	if v, ok := l.Properties["spacing"]; ok {
		args = append(args, "spacing: "+renderLength(v))
	}

	for _, item := range l.Children {
		cell, ok := item.(*layout.Cell)
		if !ok {
			continue
		}
		content, err := renderContent(cell.Content, ctx)
		if err != nil {
			return "", err
		}
		args = append(args, "["+content+"]")
	}

	return fmt.Sprintf("#stack(\n%s\n)", indentJoin(args)), nil
}

func stackDir(v interface{}) string {
	s := fmt.Sprintf("%v", v)
	return strings.TrimPrefix(s, ":")
}

func renderChildren(l *layout.Layout, ctx map[string]interface{}, fn string) ([]string, error) {
	var out []string
	for _, item := range l.Children {
		switch v := item.(type) {
		case *layout.Cell:
			s, err := renderCell(v, ctx, fn)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		case *layout.Row:
			for _, cell := range v.Cells {
				s, err := renderCell(cell, ctx, fn)
				if err != nil {
					return nil, err
				}
				out = append(out, s)
			}
		}
	}
	for _, line := range l.Lines {
		out = append(out, renderLine(line, fn))
	}
	return out, nil
}

// renderCell emits the bracket form `[content]` for a cell with no
// overrides, or `grid.cell(colspan: n, rowspan: m, …)[content]` otherwise.
func renderCell(c *layout.Cell, ctx map[string]interface{}, fn string) (string, error) {
	content, err := renderContent(c.Content, ctx)
	if err != nil {
		return "", err
	}

	if c.Span.Colspan <= 1 && c.Span.Rowspan <= 1 && len(c.Properties) == 0 {
		return "[" + content + "]", nil
	}

	var args []string
	if c.Span.Colspan > 1 {
		args = append(args, fmt.Sprintf("colspan: %d", c.Span.Colspan))
	}
	if c.Span.Rowspan > 1 {
		args = append(args, fmt.Sprintf("rowspan: %d", c.Span.Rowspan))
	}
	if v, ok := c.Properties["align"]; ok && v != nil {
		args = append(args, "align: "+renderAlign(v))
	}
	if v, ok := c.Properties["fill"]; ok && v != nil {
		args = append(args, "fill: "+renderColor(v))
	}
	if v, ok := c.Properties["stroke"]; ok && v != nil {
		args = append(args, "stroke: "+renderStroke(v))
	}
	if v, ok := c.Properties["inset"]; ok && v != nil {
		args = append(args, "inset: "+renderLength(v))
	}

	return fmt.Sprintf("%s.cell(%s)[%s]", fn, strings.Join(args, ", "), content), nil
}

func renderContent(items []layout.Content, ctx map[string]interface{}) (string, error) {
	var parts []string
	for _, c := range items {
		switch v := c.(type) {
		case layout.Label:
			parts = append(parts, renderLabel(v, ctx))
		case layout.Field:
			parts = append(parts, renderField(v, ctx))
		case layout.NestedLayout:
			nested, err := Render(v.Layout, ctx)
			if err != nil {
				return "", err
			}
			parts = append(parts, nested)
		default:
			return "", fmt.Errorf("typst: unrecognized content type %T", c)
		}
	}
	return strings.Join(parts, " "), nil
}

// renderLabel substitutes `[variable]` placeholders and wraps the result in
// a single #text(...)[...] when any style property is set.
func renderLabel(l layout.Label, ctx map[string]interface{}) string {
	text := varsub.Substitute(l.Text, ctx, varsub.DefaultStringify)
	return wrapText(text, l.Style)
}

func renderField(f layout.Field, ctx map[string]interface{}) string {
	v := resolvePath(f.Source, ctx)
	currency := ""
	if c, ok := f.Style["currency"]; ok {
		currency, _ = c.(string)
	}
	text := format.Field(v, f.Format, currency, f.DecimalPlaces)
	return wrapText(text, f.Style)
}

func resolvePath(path []string, ctx map[string]interface{}) interface{} {
	var cur interface{} = ctx
	for _, seg := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// wrapText wraps text in a single #text(size: …, weight: "…", fill: …,
// font: "…")[…] when style carries any recognized key, per spec.md §4.10.
func wrapText(text string, style property.Map) string {
	var args []string
	if v, ok := style["size"]; ok && v != nil {
		args = append(args, "size: "+renderLength(v))
	}
	if v, ok := style["weight"]; ok && v != nil {
		args = append(args, fmt.Sprintf("weight: %q", v))
	}
	if v, ok := style["fill"]; ok && v != nil {
		args = append(args, "fill: "+renderColor(v))
	}
	if v, ok := style["font"]; ok && v != nil {
		args = append(args, fmt.Sprintf("font: %q", v))
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf("#text(%s)[%s]", strings.Join(args, ", "), text)
}
