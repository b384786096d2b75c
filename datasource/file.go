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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rulego/reportflow/record"
)

// FileSource is a DataSource backed by a directory of newline-delimited
// JSON files, one file per "domain/resource" pair, or a single reader
// (e.g. os.Stdin) treated as the one resource named by StdinDomain and
// StdinResource. It exists to give cmd/reportflow something concrete to
// wire the opaque DataSource contract to without needing a real backend.
type FileSource struct {
	mu    sync.Mutex
	dir   string
	stdin io.Reader

	// StdinDomain/StdinResource name the single resource a stdin-backed
	// FileSource serves; Fetch rejects any other (domain, resource) pair.
	StdinDomain   string
	StdinResource string

	cache map[string][]record.Record
}

// NewFileSource returns a FileSource that reads "<dir>/<domain>__<resource>.ndjson"
// files on demand, one JSON object per line.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir, cache: make(map[string][]record.Record)}
}

// NewStdinSource returns a FileSource that serves the single
// (domain, resource) pair from r, read once and cached.
func NewStdinSource(r io.Reader, domain, resource string) *FileSource {
	return &FileSource{
		stdin:         r,
		StdinDomain:   domain,
		StdinResource: resource,
		cache:         make(map[string][]record.Record),
	}
}

// Fetch implements DataSource. query is ignored: FileSource has no filter
// engine, it only pages through whatever the backing file contains.
func (f *FileSource) Fetch(_ context.Context, domain, resource string, _ Query, offset, limit int) (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stdin != nil && (domain != f.StdinDomain || resource != f.StdinResource) {
		return Page{}, &DataSourceError{Kind: ErrKindNotFound, Domain: domain, Resource: resource}
	}

	key := domain + "/" + resource
	all, ok := f.cache[key]
	if !ok {
		var err error
		all, err = f.load(domain, resource)
		if err != nil {
			return Page{}, &DataSourceError{Kind: ErrKindUnavailable, Domain: domain, Resource: resource, Cause: err}
		}
		f.cache[key] = all
	}

	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return Page{Records: nil, Total: total, HasMore: false}, nil
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return Page{Records: all[offset:end], Total: total, HasMore: end < total}, nil
}

func (f *FileSource) load(domain, resource string) ([]record.Record, error) {
	var r io.Reader
	if f.stdin != nil {
		r = f.stdin
	} else {
		path := fmt.Sprintf("%s/%s__%s.ndjson", f.dir, domain, resource)
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}

	var out []record.Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec record.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("datasource: decoding %s/%s: %w", domain, resource, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
