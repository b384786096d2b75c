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

// Command reportflow pages every record out of a file-backed DataSource,
// renders them against a JSON layout definition, and optionally
// compiles the Typst output to PDF, all driven by flags, a YAML config
// file, and the REPORTFLOW_* environment variables config.FromEnv reads.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/rulego/reportflow/config"
	"github.com/rulego/reportflow/datasource"
	"github.com/rulego/reportflow/layout"
	"github.com/rulego/reportflow/layout/position"
	"github.com/rulego/reportflow/logger"
	"github.com/rulego/reportflow/record"
	"github.com/rulego/reportflow/render/htmlrender"
	"github.com/rulego/reportflow/render/jsonrender"
	"github.com/rulego/reportflow/render/typst"
	"github.com/rulego/reportflow/render/varsub"
	"github.com/rulego/reportflow/typstcompiler"
)

type varFlags map[string]interface{}

func (v varFlags) String() string { return "" }

func (v varFlags) Set(s string) error {
	k, val, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("-var must be key=value, got %q", s)
	}
	v[k] = guessType(val)
	return nil
}

// guessType lets -var pass numeric and boolean values without the caller
// having to quote them specially, via the cast conversions the pipeline's
// own transform step already relies on.
func guessType(s string) interface{} {
	if b, err := cast.ToBoolE(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	if f, err := cast.ToFloat64E(s); err == nil {
		return f
	}
	return s
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (config.Load); falls back to config.Default plus REPORTFLOW_* env vars")
		dataDir    = flag.String("data-dir", "", "directory of <domain>__<resource>.ndjson files (datasource.FileSource)")
		domain     = flag.String("domain", "", "domain to feed, e.g. sales")
		resource   = flag.String("resource", "", "resource to feed, e.g. orders")
		reportPath = flag.String("report", "", "JSON layout definition file (jsonrender.Deserialize shape)")
		format     = flag.String("format", "typst", "render backend: typst, html, or json")
		columns    = flag.Int("columns", 0, "grid column count for the positioning engine; 0 skips positioning")
		out        = flag.String("out", "", "output file; defaults to stdout")
		compile    = flag.Bool("compile", false, "run the fake Typst compiler over the rendered output and write PDF bytes instead of markup")
		timeout    = flag.Duration("compile-timeout", 10*time.Second, "Compile timeout when -compile is set")
	)
	vars := make(varFlags)
	flag.Var(vars, "var", "extra `key=value` template variable, may be repeated")
	flag.Parse()

	if *dataDir == "" || *domain == "" || *resource == "" || *reportPath == "" {
		fmt.Fprintln(os.Stderr, "reportflow: -data-dir, -domain, -resource, and -report are required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, *dataDir, *domain, *resource, *reportPath, *format, *columns, *out, *compile, *timeout, vars); err != nil {
		logger.Error("reportflow: %v", err)
		os.Exit(1)
	}
}

func run(configPath, dataDir, domain, resource, reportPath, format string, columns int, out string, compile bool, compileTimeout time.Duration, vars varFlags) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	src := datasource.NewFileSource(dataDir)
	records, err := collect(cfg, src, domain, resource)
	if err != nil {
		return fmt.Errorf("collecting records: %w", err)
	}
	logger.Info("reportflow: collected %d records from %s/%s", len(records), domain, resource)

	l, err := loadReport(reportPath)
	if err != nil {
		return fmt.Errorf("loading report definition: %w", err)
	}
	if columns > 0 {
		warnings, err := position.Place(l, columns)
		if err != nil {
			return fmt.Errorf("positioning layout: %w", err)
		}
		for _, w := range warnings {
			logger.Warn("reportflow: position warning at (%d, %d)", w.X, w.Y)
		}
	}

	ctx := make(map[string]interface{}, len(vars)+1)
	for k, v := range vars {
		ctx[k] = v
	}
	ctx["records"] = toContextRows(records)

	rendered, err := renderOutput(l, ctx, format)
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}

	output := []byte(rendered)
	if compile {
		if format != "typst" {
			return fmt.Errorf("-compile requires -format=typst, got %q", format)
		}
		fc := &typstcompiler.FakeCompiler{}
		pdf, err := fc.Compile(context.Background(), output, typstcompiler.FormatPDF, compileTimeout)
		if err != nil {
			return fmt.Errorf("compiling: %w", err)
		}
		output = pdf
	}

	return writeOutput(out, output)
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FromEnv(config.Default()), nil
}

// collect pages domain/resource out of src in cfg.ChunkSize chunks until
// the source reports no more records, and returns every record fetched.
// Records are not run through a reportflow.Pipeline.
func collect(cfg config.Config, src datasource.DataSource, domain, resource string) ([]record.Record, error) {
	offset := 0
	var all []record.Record
	for {
		page, err := src.Fetch(context.Background(), domain, resource, nil, offset, cfg.ChunkSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		offset += len(page.Records)
		if !page.HasMore || len(page.Records) == 0 {
			return all, nil
		}
	}
}

func toContextRows(records []record.Record) []map[string]interface{} {
	rows := make([]map[string]interface{}, len(records))
	for i, r := range records {
		rows[i] = map[string]interface{}(r)
	}
	return rows
}

func loadReport(path string) (*layout.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return jsonrender.Deserialize(raw), nil
}

func renderOutput(l *layout.Layout, ctx map[string]interface{}, format string) (string, error) {
	switch format {
	case "typst":
		return typst.Render(l, ctx)
	case "html":
		return htmlrender.Render(l, ctx)
	case "json":
		serialized := jsonrender.Serialize(l)
		raw, err := json.MarshalIndent(substituteJSONStrings(serialized, ctx), "", "  ")
		if err != nil {
			return "", err
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("unrecognized -format %q", format)
	}
}

// substituteJSONStrings walks a jsonrender.Serialize tree and resolves any
// `[variable]` placeholders in its string leaves, the same way the Typst
// and HTML backends resolve them inline during their own tree walks.
func substituteJSONStrings(v interface{}, ctx map[string]interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return varsub.Substitute(t, ctx, varsub.DefaultStringify)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, child := range t {
			out[k] = substituteJSONStrings(child, ctx)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, child := range t {
			out[i] = substituteJSONStrings(child, ctx)
		}
		return out
	default:
		return v
	}
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
