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

package reportflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/reportflow/config"
	"github.com/rulego/reportflow/datasource"
	"github.com/rulego/reportflow/layout"
	"github.com/rulego/reportflow/layout/property"
	"github.com/rulego/reportflow/layout/transform"
)

func TestPipelineFeedsRecordsThroughToResults(t *testing.T) {
	dir := t.TempDir()
	body := `{"amount": 10}
{"amount": 20}
{"amount": 30}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales__orders.ndjson"), []byte(body), 0o644))

	cfg := config.New(config.WithChunkSize(2), config.WithAggregations("amount"))
	src := datasource.NewFileSource(dir)

	pl, err := New(cfg, src, nil)
	require.NoError(t, err)
	pl.Start()

	require.NoError(t, pl.Feed(context.Background(), "sales", "orders", nil))

	require.Eventually(t, func() bool {
		return len(pl.Results()) == 3
	}, time.Second, 5*time.Millisecond)

	pl.Stop()

	snap := pl.AggregationState()
	assert.Equal(t, 60.0, snap.AggregationState.Sum["amount"])
}

func TestPipelineFilterExpressionDropsNonMatchingRecords(t *testing.T) {
	dir := t.TempDir()
	body := `{"amount": 10}
{"amount": 20}
{"amount": 30}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales__orders.ndjson"), []byte(body), 0o644))

	cfg := config.New(config.WithChunkSize(2), config.WithFilterExpression("amount >= 20"))
	src := datasource.NewFileSource(dir)

	pl, err := New(cfg, src, nil)
	require.NoError(t, err)
	pl.Start()

	require.NoError(t, pl.Feed(context.Background(), "sales", "orders", nil))

	require.Eventually(t, func() bool {
		return len(pl.Results()) == 2
	}, time.Second, 5*time.Millisecond)

	pl.Stop()

	var amounts []float64
	for _, r := range pl.Results() {
		amounts = append(amounts, r["amount"].(float64))
	}
	assert.ElementsMatch(t, []float64{20, 30}, amounts)
}

func TestNewRejectsInvalidFilterExpression(t *testing.T) {
	cfg := config.New(config.WithFilterExpression("not( valid"))
	src := datasource.NewFileSource(t.TempDir())
	_, err := New(cfg, src, nil)
	assert.Error(t, err)
}

func simpleGridDefinition() ReportDefinition {
	one := 0
	return ReportDefinition{
		Columns: 2,
		Layout: transform.Entity{
			Kind:       layout.Grid,
			Properties: property.Map{"columns": 2},
			Children: []interface{}{
				transform.CellSpec{
					Content: []interface{}{layout.Label{Text: "Total: [total]"}},
				},
				transform.CellSpec{
					Content: []interface{}{layout.Field{Source: []string{"amount"}, Format: "currency", DecimalPlaces: &one}},
				},
			},
		},
	}
}

func TestRenderProducesTypstAndHTMLAndJSON(t *testing.T) {
	def := simpleGridDefinition()
	ctx := map[string]interface{}{"total": "60", "amount": 1234.5}

	typstOut, err := Render(def, ctx, FormatTypst, nil)
	require.NoError(t, err)
	assert.Contains(t, typstOut, "#grid")
	assert.Contains(t, typstOut, "Total: 60")

	htmlOut, err := Render(def, ctx, FormatHTML, nil)
	require.NoError(t, err)
	assert.Contains(t, htmlOut, "ash-grid")

	jsonOut, err := Render(def, ctx, FormatJSON, nil)
	require.NoError(t, err)
	assert.Contains(t, jsonOut, `"kind":"grid"`)
}

func TestRenderRejectsUnrecognizedFormat(t *testing.T) {
	def := simpleGridDefinition()
	_, err := Render(def, map[string]interface{}{}, Format("pdf-direct"), nil)
	assert.Error(t, err)
}
