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

package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/reportflow/layout"
	"github.com/rulego/reportflow/layout/property"
)

func TestTransformDispatchesOnKind(t *testing.T) {
	l, err := Transform(Entity{Kind: layout.Grid, Properties: property.Map{"columns": 3}})
	require.NoError(t, err)
	assert.Equal(t, layout.Grid, l.Kind)
}

func TestTransformRejectsUnknownKind(t *testing.T) {
	_, err := Transform(Entity{Kind: "bogus"})
	assert.Error(t, err)
}

func TestNormalizeTracksIntegerMeansNAutoColumns(t *testing.T) {
	tracks := NormalizeTracks(3)
	require.Len(t, tracks, 3)
	for _, tr := range tracks {
		assert.Equal(t, layout.TrackAuto, tr.Kind)
	}
}

func TestNormalizeTracksFrTuple(t *testing.T) {
	tracks := NormalizeTracks(FrSpec{N: 2})
	require.Len(t, tracks, 1)
	assert.Equal(t, layout.TrackFr, tracks[0].Kind)
	assert.Equal(t, 2, tracks[0].N)
}

func TestNormalizeTracksLengthString(t *testing.T) {
	tracks := NormalizeTracks("120pt")
	require.Len(t, tracks, 1)
	assert.Equal(t, layout.TrackLength, tracks[0].Kind)
	assert.Equal(t, "120pt", tracks[0].Length)
}

func TestNormalizeTracksAutoSentinel(t *testing.T) {
	tracks := NormalizeTracks(":auto")
	require.Len(t, tracks, 1)
	assert.Equal(t, layout.TrackAuto, tracks[0].Kind)
}

func TestTransformRecursesIntoNestedLayoutContent(t *testing.T) {
	inner := Entity{Kind: layout.Stack, Properties: property.Map{"dir": "ttb"}}
	outer := Entity{
		Kind:       layout.Grid,
		Properties: property.Map{"columns": 1},
		Children: []interface{}{
			CellSpec{Content: []interface{}{inner}},
		},
	}

	l, err := Transform(outer)
	require.NoError(t, err)
	require.Len(t, l.Children, 1)

	cell := l.Children[0].(*layout.Cell)
	require.Len(t, cell.Content, 1)
	nested, ok := cell.Content[0].(layout.NestedLayout)
	require.True(t, ok)
	assert.Equal(t, layout.Stack, nested.Layout.Kind)
}

func TestTransformExtractsTableHeadersAndFooters(t *testing.T) {
	e := Entity{
		Kind:       layout.Table,
		Properties: property.Map{"columns": 2},
		Headers: []BandSpec{
			{Rows: []RowSpec{{Index: 0}}, Repeat: true, Level: 0},
		},
		Footers: []BandSpec{
			{Rows: []RowSpec{{Index: 0}}, Repeat: ":group", Level: 0},
		},
	}
	l, err := Transform(e)
	require.NoError(t, err)
	require.Len(t, l.Headers, 1)
	require.Len(t, l.Footers, 1)
	assert.Equal(t, true, l.Headers[0].Repeat)
	assert.Equal(t, ":group", l.Footers[0].Repeat)
}

func TestTransformAppliesContainerDefaultsAndExplicitOverride(t *testing.T) {
	l, err := Transform(Entity{Kind: layout.Grid, Properties: property.Map{"columns": 2, "align": "center"}})
	require.NoError(t, err)
	assert.Equal(t, "center", l.Properties["align"])
	assert.Equal(t, "0pt", l.Properties["gutter"])
}

func TestCellExplicitPositionCarriesHasXHasY(t *testing.T) {
	x, y := 1, 2
	e := Entity{
		Kind:       layout.Grid,
		Properties: property.Map{"columns": 3},
		Children:   []interface{}{CellSpec{X: &x, Y: &y, Colspan: 1, Rowspan: 1}},
	}
	l, err := Transform(e)
	require.NoError(t, err)
	cell := l.Children[0].(*layout.Cell)
	assert.True(t, cell.HasX)
	assert.True(t, cell.HasY)
	assert.Equal(t, layout.Position{X: 1, Y: 2}, cell.Position)
}
