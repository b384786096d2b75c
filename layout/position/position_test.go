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

package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/reportflow/layout"
)

func cellAt(x, y, colspan, rowspan int, explicit bool) *layout.Cell {
	c := &layout.Cell{Span: layout.Span{Colspan: colspan, Rowspan: rowspan}}
	if explicit {
		c.Position = layout.Position{X: x, Y: y}
		c.HasX, c.HasY = true, true
	}
	return c
}

// Scenario 5 from spec.md §8: A(x:0,y:0,colspan:2), B(implicit),
// C(x:0,y:1,rowspan:2), D(implicit), 3-column grid.
func TestCellPositioningWithOverridesMatchesScenario(t *testing.T) {
	a := cellAt(0, 0, 2, 1, true)
	b := cellAt(0, 0, 1, 1, false)
	c := cellAt(0, 1, 1, 2, true)
	d := cellAt(0, 0, 1, 1, false)

	l := &layout.Layout{Kind: layout.Grid, Children: []interface{}{a, b, c, d}}
	_, err := Place(l, 3)
	require.NoError(t, err)

	assert.Equal(t, layout.Position{X: 0, Y: 0}, a.Position)
	assert.Equal(t, layout.Position{X: 2, Y: 0}, b.Position)
	assert.Equal(t, layout.Position{X: 0, Y: 1}, c.Position)
	assert.Equal(t, layout.Position{X: 1, Y: 1}, d.Position)
}

func TestExplicitCollisionIsPositionConflict(t *testing.T) {
	a := cellAt(0, 0, 1, 1, true)
	b := cellAt(0, 0, 1, 1, true)
	l := &layout.Layout{Kind: layout.Grid, Children: []interface{}{a, b}}

	_, err := Place(l, 3)
	var conflict *PositionConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 0, conflict.X)
	assert.Equal(t, 0, conflict.Y)
}

func TestSpanPastColumnCountIsSpanOverflow(t *testing.T) {
	a := cellAt(2, 0, 2, 1, true) // occupies x=2 and x=3, but C=3
	l := &layout.Layout{Kind: layout.Grid, Children: []interface{}{a}}

	_, err := Place(l, 3)
	var overflow *SpanOverflow
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, 3, overflow.Columns)
}

func TestRowResetsColumnCursorAndReservesRowspanIntoLaterRows(t *testing.T) {
	row0 := &layout.Row{Index: 0, Cells: []*layout.Cell{
		cellAt(0, 0, 1, 2, false), // rowspan crosses into row 1
		cellAt(0, 0, 1, 1, false),
	}}
	row1 := &layout.Row{Index: 1, Cells: []*layout.Cell{
		cellAt(0, 0, 1, 1, false),
	}}

	l := &layout.Layout{Kind: layout.Grid, Children: []interface{}{row0, row1}}
	warnings, err := Place(l, 2)
	require.NoError(t, err)

	assert.Equal(t, layout.Position{X: 0, Y: 0}, row0.Cells[0].Position)
	assert.Equal(t, layout.Position{X: 1, Y: 0}, row0.Cells[1].Position)
	// row1's first column (x=0) is reserved by row0's rowspan; its cell
	// must flow to the next free column.
	assert.Equal(t, layout.Position{X: 1, Y: 1}, row1.Cells[0].Position)
	assert.Empty(t, warnings)
}

func TestGapIsAWarningNotAnError(t *testing.T) {
	a := cellAt(0, 0, 1, 1, true)
	l := &layout.Layout{Kind: layout.Grid, Children: []interface{}{a}}

	warnings, err := Place(l, 2)
	require.NoError(t, err)
	assert.Contains(t, warnings, Warning{X: 1, Y: 0})
}

func TestNoTwoCellsOccupySamePosition(t *testing.T) {
	cells := make([]interface{}, 0, 7)
	for i := 0; i < 7; i++ {
		cells = append(cells, cellAt(0, 0, 1, 1, false))
	}
	l := &layout.Layout{Kind: layout.Grid, Children: cells}
	_, err := Place(l, 3)
	require.NoError(t, err)

	seen := map[layout.Position]bool{}
	for _, item := range cells {
		c := item.(*layout.Cell)
		assert.False(t, seen[c.Position], "duplicate position %v", c.Position)
		seen[c.Position] = true
		assert.True(t, c.Position.X < 3)
	}
}
