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

// Package position implements the row-major cell-positioning algorithm
// described in spec.md §4.9: explicit placements first, then flow
// placement for the remainder, with span-occupancy conflict detection.
package position

import (
	"fmt"

	"github.com/rulego/reportflow/layout"
)

// PositionConflict is raised when two cells would occupy the same (x,y).
type PositionConflict struct {
	X, Y int
}

func (e *PositionConflict) Error() string {
	return fmt.Sprintf("position: conflict at (%d,%d)", e.X, e.Y)
}

// SpanOverflow is raised when a cell's span would occupy a column at or
// past the container's column count.
type SpanOverflow struct {
	X, Y, Columns int
}

func (e *SpanOverflow) Error() string {
	return fmt.Sprintf("position: span overflow at (%d,%d), column count %d", e.X, e.Y, e.Columns)
}

// Warning is a non-fatal gap in the occupancy grid: some (x,y) inside the
// container's bounds was never assigned a cell.
type Warning struct {
	X, Y int
}

type occupant struct {
	x, y int
}

// Place runs the positioning algorithm over l's top-level Children (and, for
// Row children, their nested Cells), given the container's column count C.
// It assigns Position/HasX/HasY on every *Cell in place and returns any
// gaps found as warnings; a PositionConflict or SpanOverflow error aborts
// immediately, per spec.md §7.
func Place(l *layout.Layout, columns int) ([]Warning, error) {
	occupied := make(map[occupant]bool)

	explicit, flowing := partition(l.Children)

	for _, c := range explicit {
		if err := occupy(occupied, c.Position.X, c.Position.Y, c.Span, columns); err != nil {
			return nil, err
		}
	}

	cx, cy := 0, 0
	for _, item := range flowing {
		switch v := item.(type) {
		case *layout.Cell:
			cx, cy = placeAt(v, occupied, cx, cy, columns)
			if err := occupy(occupied, v.Position.X, v.Position.Y, v.Span, columns); err != nil {
				return nil, err
			}
		case *layout.Row:
			rcx := 0
			for _, cell := range v.Cells {
				if cell.HasX && cell.HasY {
					continue // already placed in the explicit pass
				}
				if !cell.HasY {
					cell.Position.Y = v.Index
					cell.HasY = true
				}
				rcx, _ = placeAt(cell, occupied, rcx, cell.Position.Y, columns)
				if err := occupy(occupied, cell.Position.X, cell.Position.Y, cell.Span, columns); err != nil {
					return nil, err
				}
			}
		}
	}

	return findGaps(occupied, columns), nil
}

// partition splits l.Children into cells placed explicitly (both x and y
// given) and everything still needing flow placement, per algorithm step 1.
func partition(children []interface{}) (explicit []*layout.Cell, flowing []interface{}) {
	for _, item := range children {
		switch v := item.(type) {
		case *layout.Cell:
			if v.HasX && v.HasY {
				explicit = append(explicit, v)
			} else {
				flowing = append(flowing, v)
			}
		case *layout.Row:
			for _, cell := range v.Cells {
				if cell.HasX && cell.HasY {
					explicit = append(explicit, cell)
				}
			}
			flowing = append(flowing, v)
		}
	}
	return explicit, flowing
}

// placeAt advances (cx, cy) to the next free position not already occupied,
// assigns it to cell if cell doesn't already carry an explicit position,
// and returns the advanced cursor for the next cell.
func placeAt(cell *layout.Cell, occupied map[occupant]bool, cx, cy int, columns int) (int, int) {
	if cell.HasX && cell.HasY {
		return cell.Position.X + 1, cell.Position.Y
	}
	for {
		if cx >= columns {
			cx = 0
			cy++
		}
		if !isOccupied(occupied, cx, cy) {
			break
		}
		cx++
	}
	cell.Position = layout.Position{X: cx, Y: cy}
	cell.HasX, cell.HasY = true, true
	return cx + 1, cy
}

func isOccupied(occupied map[occupant]bool, x, y int) bool {
	return occupied[occupant{x, y}]
}

// occupy marks every (x+dx, y+dy) a span covers, returning PositionConflict
// or SpanOverflow on the first violation (step 1 and step 3).
func occupy(occupied map[occupant]bool, x, y int, span layout.Span, columns int) error {
	colspan, rowspan := normalizeSpan(span)
	for dx := 0; dx < colspan; dx++ {
		for dy := 0; dy < rowspan; dy++ {
			px, py := x+dx, y+dy
			if px >= columns {
				return &SpanOverflow{X: px, Y: py, Columns: columns}
			}
			key := occupant{px, py}
			if occupied[key] {
				return &PositionConflict{X: px, Y: py}
			}
			occupied[key] = true
		}
	}
	return nil
}

func normalizeSpan(span layout.Span) (int, int) {
	colspan, rowspan := span.Colspan, span.Rowspan
	if colspan < 1 {
		colspan = 1
	}
	if rowspan < 1 {
		rowspan = 1
	}
	return colspan, rowspan
}

// findGaps reports every (x,y) inside the occupied grid's bounding box that
// was never assigned, per algorithm step 5: a gap is a warning, not an
// error.
func findGaps(occupied map[occupant]bool, columns int) []Warning {
	maxY := -1
	for k := range occupied {
		if k.y > maxY {
			maxY = k.y
		}
	}
	var warnings []Warning
	for y := 0; y <= maxY; y++ {
		for x := 0; x < columns; x++ {
			if !occupied[occupant{x, y}] {
				warnings = append(warnings, Warning{X: x, Y: y})
			}
		}
	}
	return warnings
}
