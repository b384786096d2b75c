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

// Package layout defines the normalized Grid/Table/Stack Intermediate
// Representation tree that the transform, position, and render packages
// operate on.
package layout

import "github.com/rulego/reportflow/layout/property"

// Kind is the container variant a Layout node represents.
type Kind string

const (
	Grid  Kind = "grid"
	Table Kind = "table"
	Stack Kind = "stack"
)

// Orientation distinguishes a horizontal rule from a vertical one.
type Orientation string

const (
	Horizontal Orientation = "H"
	Vertical   Orientation = "V"
)

// Layout is one Grid/Table/Stack container node.
type Layout struct {
	Kind       Kind
	Properties property.Map
	// Children holds either *Cell or *Row values, in declaration order, per
	// spec.md §3's `children: [Cell | Row]`. Pointers so the positioning
	// engine can assign flow-cursor coordinates in place.
	Children []interface{}
	Lines    []Line
	Headers  []Header
	Footers  []Footer
}

// Position is a zero-based (column, row) coordinate.
type Position struct {
	X, Y int
}

// Span is a cell's column/row extent; both default to 1.
type Span struct {
	Colspan, Rowspan int
}

// Cell is a single placed (or to-be-placed) unit of content.
type Cell struct {
	Position   Position
	HasX       bool // Position.X was explicitly supplied, vs. assigned by the flow cursor
	HasY       bool
	Span       Span
	Properties property.Map
	Content    []Content
}

// Row groups cells that share a declared row index; the column cursor
// resets to 0 at the start of every Row during positioning.
type Row struct {
	Index      int
	Properties property.Map
	Cells      []*Cell
}

// Content is the sum type a Cell's content list holds: Label, Field, or
// NestedLayout.
type Content interface {
	isContent()
}

// Label is literal styled text, possibly carrying `[variable]` placeholders
// resolved against a data context at render time.
type Label struct {
	Text  string
	Style property.Map
}

func (Label) isContent() {}

// Field projects a data-context path through optional formatting.
type Field struct {
	Source        []string
	Format        string // "", "currency", "number", "date", "datetime", "percent"
	DecimalPlaces *int
	Style         property.Map
}

func (Field) isContent() {}

// NestedLayout embeds a fully independent sub-tree, exclusively owned by
// its containing cell.
type NestedLayout struct {
	Layout *Layout
}

func (NestedLayout) isContent() {}

// Line is a rule drawn across the grid at a fixed row or column.
type Line struct {
	Orientation Orientation
	Position    int
	Start       *int
	End         *int
	Stroke      interface{}
}

// Header is a table header band.
type Header struct {
	Rows   []Row
	Repeat interface{} // bool, or the symbolic value ":group"
	Level  int
}

// Footer is a table footer band.
type Footer struct {
	Rows   []Row
	Repeat interface{}
	Level  int
}
