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

// Package transform normalizes a report's declarative layout entities
// (Grid/Table/Stack DSL nodes) into the layout Intermediate Representation,
// per spec.md §4.9's Transformer.
package transform

import (
	"fmt"

	"github.com/rulego/reportflow/layout"
	"github.com/rulego/reportflow/layout/property"
)

// CellSpec is one DSL cell declaration: an explicit position is given by a
// non-nil X/Y, otherwise the cell flows.
type CellSpec struct {
	X, Y             *int
	Colspan, Rowspan int
	Properties       property.Map
	Content          []interface{} // layout.Content, or a nested Entity
}

// RowSpec is one DSL row declaration.
type RowSpec struct {
	Index      int
	Properties property.Map
	Cells      []CellSpec
}

// BandSpec is a table header or footer declaration.
type BandSpec struct {
	Rows   []RowSpec
	Repeat interface{} // bool or ":group"
	Level  int
}

// Entity is a declarative Grid/Table/Stack node as a report author writes
// it, prior to normalization.
type Entity struct {
	Kind       layout.Kind
	Properties property.Map  // raw; "columns"/"rows" may be any track-spec shape
	Children   []interface{} // CellSpec or RowSpec
	Lines      []layout.Line
	Headers    []BandSpec
	Footers    []BandSpec
}

// Transform dispatches on e.Kind and normalizes e into a *layout.Layout:
// track specs are normalized, nested entities in cell content recurse, and
// header/footer bands are extracted for tables.
func Transform(e Entity) (*layout.Layout, error) {
	switch e.Kind {
	case layout.Grid, layout.Table, layout.Stack:
		// recognized; fall through to the shared build below
	default:
		return nil, fmt.Errorf("transform: unrecognized layout kind %q", e.Kind)
	}

	props := normalizeProperties(e.Kind, e.Properties)

	children, err := transformChildren(e.Children)
	if err != nil {
		return nil, err
	}

	l := &layout.Layout{
		Kind:       e.Kind,
		Properties: props,
		Children:   children,
		Lines:      e.Lines,
	}

	if e.Kind == layout.Table {
		for _, h := range e.Headers {
			rows, err := transformRows(h.Rows)
			if err != nil {
				return nil, err
			}
			l.Headers = append(l.Headers, layout.Header{Rows: rows, Repeat: h.Repeat, Level: h.Level})
		}
		for _, f := range e.Footers {
			rows, err := transformRows(f.Rows)
			if err != nil {
				return nil, err
			}
			l.Footers = append(l.Footers, layout.Footer{Rows: rows, Repeat: f.Repeat, Level: f.Level})
		}
	}

	return l, nil
}

// normalizeProperties applies container defaults and normalizes the
// "columns"/"rows" track specs if present.
func normalizeProperties(kind layout.Kind, raw property.Map) property.Map {
	out := property.ResolveChain(layout.ContainerDefaults(kind), raw)
	if v, ok := out["columns"]; ok {
		out["columns"] = NormalizeTracks(v)
	}
	if v, ok := out["rows"]; ok {
		out["rows"] = NormalizeTracks(v)
	}
	return out
}

// NormalizeTracks normalizes a track-spec value into a []layout.Track, per
// spec.md §4.9: ":auto" | (fr, n) | a length string | an integer N, which
// yields N "auto" tracks for columns and rows alike; no repeat track is
// produced.
func NormalizeTracks(v interface{}) []layout.Track {
	switch spec := v.(type) {
	case string:
		if spec == "auto" || spec == ":auto" {
			return []layout.Track{{Kind: layout.TrackAuto}}
		}
		return []layout.Track{{Kind: layout.TrackLength, Length: spec}}
	case int:
		tracks := make([]layout.Track, spec)
		for i := range tracks {
			tracks[i] = layout.Track{Kind: layout.TrackAuto}
		}
		return tracks
	case FrSpec:
		return []layout.Track{{Kind: layout.TrackFr, N: spec.N}}
	case []interface{}:
		out := make([]layout.Track, 0, len(spec))
		for _, el := range spec {
			out = append(out, NormalizeTracks(el)...)
		}
		return out
	case layout.Track:
		return []layout.Track{spec}
	case nil:
		return []layout.Track{{Kind: layout.TrackAuto}}
	default:
		return []layout.Track{{Kind: layout.TrackAuto}}
	}
}

// FrSpec is the `(fr, n)` track-spec tuple: n equal fractional tracks.
type FrSpec struct{ N int }

func transformChildren(children []interface{}) ([]interface{}, error) {
	out := make([]interface{}, 0, len(children))
	for _, item := range children {
		switch v := item.(type) {
		case CellSpec:
			cell, err := transformCell(v)
			if err != nil {
				return nil, err
			}
			out = append(out, cell)
		case RowSpec:
			row, err := transformRow(v)
			if err != nil {
				return nil, err
			}
			out = append(out, row)
		default:
			return nil, fmt.Errorf("transform: unrecognized child type %T", item)
		}
	}
	return out, nil
}

func transformRows(specs []RowSpec) ([]layout.Row, error) {
	out := make([]layout.Row, 0, len(specs))
	for _, s := range specs {
		r, err := transformRow(s)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}

func transformRow(s RowSpec) (*layout.Row, error) {
	row := &layout.Row{Index: s.Index, Properties: s.Properties}
	for _, cs := range s.Cells {
		cell, err := transformCell(cs)
		if err != nil {
			return nil, err
		}
		row.Cells = append(row.Cells, cell)
	}
	return row, nil
}

func transformCell(s CellSpec) (*layout.Cell, error) {
	colspan, rowspan := s.Colspan, s.Rowspan
	if colspan < 1 {
		colspan = 1
	}
	if rowspan < 1 {
		rowspan = 1
	}

	cell := &layout.Cell{
		Span:       layout.Span{Colspan: colspan, Rowspan: rowspan},
		Properties: s.Properties,
	}
	if s.X != nil {
		cell.Position.X = *s.X
		cell.HasX = true
	}
	if s.Y != nil {
		cell.Position.Y = *s.Y
		cell.HasY = true
	}

	for _, raw := range s.Content {
		content, err := transformContent(raw)
		if err != nil {
			return nil, err
		}
		cell.Content = append(cell.Content, content)
	}
	return cell, nil
}

func transformContent(raw interface{}) (layout.Content, error) {
	switch v := raw.(type) {
	case Entity:
		nested, err := Transform(v)
		if err != nil {
			return nil, err
		}
		return layout.NestedLayout{Layout: nested}, nil
	case layout.Content:
		return v, nil
	default:
		return nil, fmt.Errorf("transform: unrecognized cell content %T", raw)
	}
}
