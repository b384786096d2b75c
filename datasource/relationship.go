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
	"fmt"
	"strings"

	"github.com/rulego/reportflow/record"
)

// LoadMode names how a relationship's related records are attached to a
// base record.
type LoadMode int

const (
	// Eager fetches the related page immediately and attaches it inline.
	Eager LoadMode = iota
	// Lazy attaches a thunk that fetches the related page on first call.
	Lazy
	// Selective eagerly fetches but restricts the query to a field subset,
	// trading completeness for a smaller payload.
	Selective
)

func (m LoadMode) String() string {
	switch m {
	case Eager:
		return "eager"
	case Lazy:
		return "lazy"
	case Selective:
		return "selective"
	default:
		return "unknown"
	}
}

// RelationshipSpec names one related resource to load off a base record,
// keyed by the single path segment it will be attached under (e.g.
// "customer"), and the children loaded off *that* relationship in turn
// (so "customer.address" is an "address" child of "customer").
type RelationshipSpec struct {
	Name       string
	Domain     string
	Resource   string
	Mode       LoadMode
	Fields     []string // only consulted when Mode == Selective
	Children   []RelationshipSpec
}

// LoadSpec is a depth-limited tree of relationships to resolve off records
// from one root resource.
type LoadSpec struct {
	RootDomain   string
	RootResource string
	MaxDepth     int
	Relationships []RelationshipSpec
}

// TooDeepError reports a requested relationship path exceeding MaxDepth.
type TooDeepError struct {
	Path  string
	Depth int
	Max   int
}

func (e *TooDeepError) Error() string {
	return fmt.Sprintf("datasource: relationship path %q at depth %d exceeds max depth %d", e.Path, e.Depth, e.Max)
}

// RelationshipLoader builds LoadSpecs from dotted relationship paths and
// resolves them against a DataSource, per the data layer's "depth-limited
// eager/lazy/selective load specification" contract.
type RelationshipLoader struct {
	ds       DataSource
	maxDepth int
}

// NewRelationshipLoader returns a loader bound to ds, rejecting any
// requested relationship path deeper than maxDepth. maxDepth <= 0 means
// unlimited.
func NewRelationshipLoader(ds DataSource, maxDepth int) *RelationshipLoader {
	return &RelationshipLoader{ds: ds, maxDepth: maxDepth}
}

// RelationRequest is the per-path input to Build: a dotted name plus the
// mode it should be resolved with and, for Selective, the fields to keep.
type RelationRequest struct {
	Path     string
	Domain   string
	Resource string
	Mode     LoadMode
	Fields   []string
}

// Build assembles a LoadSpec from flat dotted-path requests, nesting them
// into a RelationshipSpec tree and rejecting any path whose depth exceeds
// the loader's maxDepth.
func (l *RelationshipLoader) Build(rootDomain, rootResource string, requests []RelationRequest) (LoadSpec, error) {
	spec := LoadSpec{RootDomain: rootDomain, RootResource: rootResource, MaxDepth: l.maxDepth}
	for _, req := range requests {
		segments := strings.Split(req.Path, ".")
		if l.maxDepth > 0 && len(segments) > l.maxDepth {
			return LoadSpec{}, &TooDeepError{Path: req.Path, Depth: len(segments), Max: l.maxDepth}
		}
		if err := insert(&spec.Relationships, segments, req); err != nil {
			return LoadSpec{}, err
		}
	}
	return spec, nil
}

// insert places req into the tree rooted at siblings, creating
// intermediate RelationshipSpec nodes (defaulting to Eager) for every
// segment but the last, which takes req's Domain/Resource/Mode/Fields.
func insert(siblings *[]RelationshipSpec, segments []string, req RelationRequest) error {
	if len(segments) == 0 {
		return fmt.Errorf("datasource: empty relationship path")
	}
	head, rest := segments[0], segments[1:]

	for i := range *siblings {
		if (*siblings)[i].Name == head {
			if len(rest) == 0 {
				(*siblings)[i].Domain = req.Domain
				(*siblings)[i].Resource = req.Resource
				(*siblings)[i].Mode = req.Mode
				(*siblings)[i].Fields = req.Fields
				return nil
			}
			return insert(&(*siblings)[i].Children, rest, req)
		}
	}

	node := RelationshipSpec{Name: head}
	if len(rest) == 0 {
		node.Domain, node.Resource, node.Mode, node.Fields = req.Domain, req.Resource, req.Mode, req.Fields
	} else {
		node.Mode = Eager
	}
	*siblings = append(*siblings, node)
	if len(rest) > 0 {
		return insert(&(*siblings)[len(*siblings)-1].Children, rest, req)
	}
	return nil
}

// Thunk lazily fetches a related page, memoizing the result after the
// first call.
type Thunk func(ctx context.Context) (Page, error)

// Resolve attaches spec's relationships onto each of base, per record:
// Eager and Selective relationships are fetched immediately and stored
// under rec[name] as []record.Record; Lazy relationships store a Thunk
// under rec[name] instead, matching chart.Thunk's pure/repeatable
// contract. A fetch failure for one relationship degrades that record's
// relationship to nil; the first such error is returned only at the end, so one
// bad relationship does not abort the whole page.
func (l *RelationshipLoader) Resolve(ctx context.Context, spec LoadSpec, base []record.Record) ([]record.Record, error) {
	var firstErr error
	for _, rel := range spec.Relationships {
		for i := range base {
			if err := l.resolveOne(ctx, rel, base[i]); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return base, firstErr
}

func (l *RelationshipLoader) resolveOne(ctx context.Context, rel RelationshipSpec, rec record.Record) error {
	switch rel.Mode {
	case Lazy:
		var cached *Page
		var cachedErr error
		rec[rel.Name] = Thunk(func(ctx context.Context) (Page, error) {
			if cached != nil {
				return *cached, cachedErr
			}
			page, err := l.ds.Fetch(ctx, rel.Domain, rel.Resource, nil, 0, 0)
			cached, cachedErr = &page, err
			return page, err
		})
		return nil
	case Selective:
		query := Query{"fields": rel.Fields}
		page, err := l.ds.Fetch(ctx, rel.Domain, rel.Resource, query, 0, 0)
		if err != nil {
			rec[rel.Name] = nil
			return err
		}
		rec[rel.Name] = applyChildren(ctx, l, rel.Children, page.Records)
		return nil
	default: // Eager
		page, err := l.ds.Fetch(ctx, rel.Domain, rel.Resource, nil, 0, 0)
		if err != nil {
			rec[rel.Name] = nil
			return err
		}
		rec[rel.Name] = applyChildren(ctx, l, rel.Children, page.Records)
		return nil
	}
}

func applyChildren(ctx context.Context, l *RelationshipLoader, children []RelationshipSpec, recs []record.Record) []record.Record {
	for _, child := range children {
		for i := range recs {
			_ = l.resolveOne(ctx, child, recs[i])
		}
	}
	return recs
}
