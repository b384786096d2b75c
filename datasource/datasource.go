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

// Package datasource defines the opaque data-layer contract reports pull
// records through, per spec.md §6: given (domain, resource, query, offset,
// limit) it returns a page of records or an error. A DataSource is
// stateless from the caller's side.
package datasource

import (
	"context"

	"github.com/rulego/reportflow/record"
)

// Page is one page of records returned by a DataSource, plus enough
// metadata to decide whether to keep paging.
type Page struct {
	Records []record.Record
	Total   int
	HasMore bool
}

// Query is the filter/sort payload a DataSource implementation interprets
// however it sees fit; reportflow treats it as opaque.
type Query map[string]interface{}

// DataSource is the opaque data-layer contract. Implementations must be
// safe for concurrent use and must not retain state across calls that
// would make two identical calls return different results (stateless
// from the caller's side, per spec.md §6).
type DataSource interface {
	Fetch(ctx context.Context, domain, resource string, query Query, offset, limit int) (Page, error)
}

// Errors that a DataSource implementation may wrap and return.
const (
	ErrKindUnavailable = "unavailable"
	ErrKindNotFound    = "not_found"
	ErrKindInvalidArgs = "invalid_args"
)

// DataSourceError reports a data-layer failure, propagated per spec.md §7
// (fatal unless the caller chooses to degrade a single relationship fetch
// to a logged warning).
type DataSourceError struct {
	Kind     string
	Domain   string
	Resource string
	Cause    error
}

func (e *DataSourceError) Error() string {
	if e.Cause != nil {
		return "datasource: " + e.Kind + " fetching " + e.Domain + "/" + e.Resource + ": " + e.Cause.Error()
	}
	return "datasource: " + e.Kind + " fetching " + e.Domain + "/" + e.Resource
}

func (e *DataSourceError) Unwrap() error { return e.Cause }
