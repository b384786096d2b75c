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

// Package jsonrender serializes the layout Intermediate Representation to
// a pure structural JSON-able value, per spec.md §4.10: symbols become
// strings, tuples become arrays, callables become the sentinel
// "__function__".
package jsonrender

import (
	"strings"

	"github.com/rulego/reportflow/layout"
	"github.com/rulego/reportflow/layout/property"
	"github.com/rulego/reportflow/utils/fieldpath"
)

// FunctionSentinel is what a callable PropertyMap value serializes to.
const FunctionSentinel = "__function__"

// Serialize converts l into a tree of map[string]interface{}/[]interface{}/
// scalars suitable for json.Marshal.
func Serialize(l *layout.Layout) map[string]interface{} {
	out := map[string]interface{}{
		"kind":       string(l.Kind),
		"properties": serializeProps(l.Properties),
		"children":   serializeChildren(l.Children),
	}
	if len(l.Lines) > 0 {
		lines := make([]interface{}, len(l.Lines))
		for i, ln := range l.Lines {
			lines[i] = serializeLine(ln)
		}
		out["lines"] = lines
	}
	if len(l.Headers) > 0 {
		out["headers"] = serializeBands(l.Headers, func(h layout.Header) ([]layout.Row, interface{}, int) {
			return h.Rows, h.Repeat, h.Level
		})
	}
	if len(l.Footers) > 0 {
		out["footers"] = serializeBands(l.Footers, func(f layout.Footer) ([]layout.Row, interface{}, int) {
			return f.Rows, f.Repeat, f.Level
		})
	}
	return out
}

func serializeBands[T any](bands []T, unpack func(T) ([]layout.Row, interface{}, int)) []interface{} {
	out := make([]interface{}, len(bands))
	for i, b := range bands {
		rows, repeat, level := unpack(b)
		rowsOut := make([]interface{}, len(rows))
		for j, r := range rows {
			rowsOut[j] = serializeRow(&r)
		}
		out[i] = map[string]interface{}{
			"rows":   rowsOut,
			"repeat": serializeValue(repeat),
			"level":  level,
		}
	}
	return out
}

func serializeChildren(children []interface{}) []interface{} {
	out := make([]interface{}, 0, len(children))
	for _, item := range children {
		switch v := item.(type) {
		case *layout.Cell:
			out = append(out, serializeCell(v))
		case *layout.Row:
			out = append(out, serializeRow(v))
		}
	}
	return out
}

func serializeRow(r *layout.Row) map[string]interface{} {
	cells := make([]interface{}, len(r.Cells))
	for i, c := range r.Cells {
		cells[i] = serializeCell(c)
	}
	return map[string]interface{}{
		"index":      r.Index,
		"properties": serializeProps(r.Properties),
		"cells":      cells,
	}
}

func serializeCell(c *layout.Cell) map[string]interface{} {
	out := map[string]interface{}{
		"span":       []interface{}{c.Span.Colspan, c.Span.Rowspan},
		"properties": serializeProps(c.Properties),
		"content":    serializeContent(c.Content),
	}
	if c.HasX && c.HasY {
		out["position"] = []interface{}{c.Position.X, c.Position.Y}
	} else {
		out["position"] = nil
	}
	return out
}

func serializeContent(items []layout.Content) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case layout.Label:
			out[i] = map[string]interface{}{
				"type":  "label",
				"text":  v.Text,
				"style": serializeProps(v.Style),
			}
		case layout.Field:
			m := map[string]interface{}{
				"type":   "field",
				"source": joinPath(v.Source),
				"format": v.Format,
				"style":  serializeProps(v.Style),
			}
			if v.DecimalPlaces != nil {
				m["decimal_places"] = *v.DecimalPlaces
			} else {
				m["decimal_places"] = nil
			}
			out[i] = m
		case layout.NestedLayout:
			out[i] = map[string]interface{}{
				"type":   "nested_layout",
				"layout": Serialize(v.Layout),
			}
		}
	}
	return out
}

func serializeLine(l layout.Line) map[string]interface{} {
	out := map[string]interface{}{
		"orientation": string(l.Orientation),
		"position":    l.Position,
		"stroke":      serializeValue(l.Stroke),
	}
	if l.Start != nil {
		out["start"] = *l.Start
	} else {
		out["start"] = nil
	}
	if l.End != nil {
		out["end"] = *l.End
	} else {
		out["end"] = nil
	}
	return out
}

func serializeProps(props property.Map) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = serializeValue(v)
	}
	return out
}

// serializeValue converts one property value: callables become the
// function sentinel, tuples (represented as []interface{}) pass through
// as arrays, everything else passes through as-is (encoding/json handles
// the scalar/nested-map cases).
func serializeValue(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	if property.IsDynamic(v) {
		return FunctionSentinel
	}
	return v
}

func joinPath(path []string) string {
	return strings.Join(path, ".")
}

// ResolveField reads Field.source out of data by trying each path segment
// as a nested field access, per spec.md §4.10; a missing path yields nil.
func ResolveField(source []string, data interface{}) interface{} {
	v, ok := fieldpath.GetNestedField(data, joinPath(source))
	if !ok {
		return nil
	}
	return v
}
