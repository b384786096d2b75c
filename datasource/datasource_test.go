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

package datasource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/reportflow/record"
)

func TestFileSourcePagesThroughNDJSON(t *testing.T) {
	dir := t.TempDir()
	body := `{"id":1}
{"id":2}
{"id":3}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales__orders.ndjson"), []byte(body), 0o644))

	fs := NewFileSource(dir)
	page, err := fs.Fetch(context.Background(), "sales", "orders", nil, 0, 2)
	require.NoError(t, err)
	assert.Len(t, page.Records, 2)
	assert.Equal(t, 3, page.Total)
	assert.True(t, page.HasMore)

	page2, err := fs.Fetch(context.Background(), "sales", "orders", nil, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page2.Records, 1)
	assert.False(t, page2.HasMore)
}

func TestFileSourceMissingFileReturnsDataSourceError(t *testing.T) {
	fs := NewFileSource(t.TempDir())
	_, err := fs.Fetch(context.Background(), "sales", "orders", nil, 0, 10)
	require.Error(t, err)
	var dsErr *DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, ErrKindUnavailable, dsErr.Kind)
}

func TestStdinSourceRejectsUnknownResource(t *testing.T) {
	fs := NewStdinSource(strings.NewReader(`{"id":1}`+"\n"), "sales", "orders")
	_, err := fs.Fetch(context.Background(), "sales", "customers", nil, 0, 10)
	require.Error(t, err)
	var dsErr *DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Equal(t, ErrKindNotFound, dsErr.Kind)
}

func TestStdinSourceCachesAfterFirstRead(t *testing.T) {
	r := strings.NewReader(`{"id":1}` + "\n")
	fs := NewStdinSource(r, "sales", "orders")
	page1, err := fs.Fetch(context.Background(), "sales", "orders", nil, 0, 10)
	require.NoError(t, err)
	page2, err := fs.Fetch(context.Background(), "sales", "orders", nil, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, page1.Records, page2.Records)
}

type fakeDS struct {
	pages map[string][]record.Record
	calls int
}

func (f *fakeDS) Fetch(_ context.Context, domain, resource string, _ Query, _, _ int) (Page, error) {
	f.calls++
	recs, ok := f.pages[domain+"/"+resource]
	if !ok {
		return Page{}, &DataSourceError{Kind: ErrKindNotFound, Domain: domain, Resource: resource}
	}
	return Page{Records: recs, Total: len(recs)}, nil
}

func TestRelationshipLoaderBuildRejectsPathDeeperThanMax(t *testing.T) {
	loader := NewRelationshipLoader(&fakeDS{}, 1)
	_, err := loader.Build("sales", "orders", []RelationRequest{
		{Path: "customer.address", Domain: "sales", Resource: "addresses", Mode: Eager},
	})
	require.Error(t, err)
	var tooDeep *TooDeepError
	require.True(t, errors.As(err, &tooDeep))
}

func TestRelationshipLoaderBuildNestsDottedPaths(t *testing.T) {
	loader := NewRelationshipLoader(&fakeDS{}, 0)
	spec, err := loader.Build("sales", "orders", []RelationRequest{
		{Path: "customer.address", Domain: "sales", Resource: "addresses", Mode: Eager},
	})
	require.NoError(t, err)
	require.Len(t, spec.Relationships, 1)
	assert.Equal(t, "customer", spec.Relationships[0].Name)
	require.Len(t, spec.Relationships[0].Children, 1)
	assert.Equal(t, "address", spec.Relationships[0].Children[0].Name)
	assert.Equal(t, "addresses", spec.Relationships[0].Children[0].Resource)
}

func TestResolveEagerAttachesInlineRecords(t *testing.T) {
	ds := &fakeDS{pages: map[string][]record.Record{
		"sales/customers": {{"id": 1, "name": "Ada"}},
	}}
	loader := NewRelationshipLoader(ds, 0)
	spec := LoadSpec{Relationships: []RelationshipSpec{
		{Name: "customer", Domain: "sales", Resource: "customers", Mode: Eager},
	}}
	base := []record.Record{{"order_id": 10}}
	out, err := loader.Resolve(context.Background(), spec, base)
	require.NoError(t, err)
	related, ok := out[0]["customer"].([]record.Record)
	require.True(t, ok)
	assert.Equal(t, "Ada", related[0]["name"])
}

func TestResolveLazyStoresThunkNotData(t *testing.T) {
	ds := &fakeDS{pages: map[string][]record.Record{
		"sales/customers": {{"id": 1, "name": "Ada"}},
	}}
	loader := NewRelationshipLoader(ds, 0)
	spec := LoadSpec{Relationships: []RelationshipSpec{
		{Name: "customer", Domain: "sales", Resource: "customers", Mode: Lazy},
	}}
	base := []record.Record{{"order_id": 10}}
	_, err := loader.Resolve(context.Background(), spec, base)
	require.NoError(t, err)

	thunk, ok := base[0]["customer"].(Thunk)
	require.True(t, ok)
	assert.Equal(t, 0, ds.calls)

	page, err := thunk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.calls)
	assert.Equal(t, "Ada", page.Records[0]["name"])

	// calling again must not re-fetch (pure/repeatable per the thunk contract)
	_, err = thunk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.calls)
}

func TestResolveSelectivePassesFieldsInQuery(t *testing.T) {
	ds := &fakeDS{pages: map[string][]record.Record{
		"sales/customers": {{"id": 1, "name": "Ada"}},
	}}
	loader := NewRelationshipLoader(ds, 0)
	spec := LoadSpec{Relationships: []RelationshipSpec{
		{Name: "customer", Domain: "sales", Resource: "customers", Mode: Selective, Fields: []string{"name"}},
	}}
	base := []record.Record{{"order_id": 10}}
	_, err := loader.Resolve(context.Background(), spec, base)
	require.NoError(t, err)
	related := base[0]["customer"].([]record.Record)
	assert.Equal(t, "Ada", related[0]["name"])
}

func TestResolveFetchFailureDegradesToNilAndReturnsError(t *testing.T) {
	ds := &fakeDS{pages: map[string][]record.Record{}}
	loader := NewRelationshipLoader(ds, 0)
	spec := LoadSpec{Relationships: []RelationshipSpec{
		{Name: "customer", Domain: "sales", Resource: "customers", Mode: Eager},
	}}
	base := []record.Record{{"order_id": 10}}
	out, err := loader.Resolve(context.Background(), spec, base)
	require.Error(t, err)
	assert.Nil(t, out[0]["customer"])
}
