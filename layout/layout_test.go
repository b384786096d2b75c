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

package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentVariantsImplementContentInterface(t *testing.T) {
	var variants []Content = []Content{
		Label{Text: "hello"},
		Field{Source: []string{"amount"}},
		NestedLayout{Layout: &Layout{Kind: Grid}},
	}
	assert.Len(t, variants, 3)
}

func TestContainerDefaultsVaryByKind(t *testing.T) {
	grid := ContainerDefaults(Grid)
	table := ContainerDefaults(Table)
	stack := ContainerDefaults(Stack)

	assert.Equal(t, "none", grid["stroke"])
	assert.Equal(t, "1pt", table["stroke"])
	assert.Equal(t, "5pt", table["inset"])
	assert.Equal(t, "ttb", stack["dir"])
}

func TestCellDefaultsSpanIsOne(t *testing.T) {
	d := CellDefaults()
	assert.Equal(t, 1, d["colspan"])
	assert.Equal(t, 1, d["rowspan"])
	assert.Equal(t, true, d["breakable"])
}

func TestNestedLayoutIsOwnedByItsCell(t *testing.T) {
	inner := &Layout{Kind: Stack}
	cell := Cell{
		Position: Position{X: 0, Y: 0},
		Span:     Span{Colspan: 1, Rowspan: 1},
		Content:  []Content{NestedLayout{Layout: inner}},
	}
	nested, ok := cell.Content[0].(NestedLayout)
	assert.True(t, ok)
	assert.Same(t, inner, nested.Layout)
}
