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

// Package varsub substitutes `[variable_name]` placeholders embedded in
// label text against a data context, shared by the Typst and HTML
// renderers. Variable expressions are compiled with expr-lang, the same
// engine the condition package wraps for boolean filters, so dotted paths
// and simple expressions ("customer.name") work the same way they do
// there.
package varsub

import (
	"fmt"
	"regexp"

	"github.com/expr-lang/expr"
)

var placeholder = regexp.MustCompile(`\[([a-zA-Z_][a-zA-Z0-9_.]*)\]`)

// Stringify converts a resolved value to its text form for substitution.
type Stringify func(v interface{}) string

// Substitute replaces every `[variable_name]` occurrence in text with its
// value from ctx, rendered through toString. Missing variables (compile or
// evaluation failure, e.g. an unknown path) are left verbatim, per
// spec.md §4.10.
func Substitute(text string, ctx map[string]interface{}, toString Stringify) string {
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		name := match[1 : len(match)-1]
		v, ok := lookup(name, ctx)
		if !ok {
			return match
		}
		return toString(v)
	})
}

func lookup(path string, ctx map[string]interface{}) (interface{}, bool) {
	program, err := expr.Compile(path, expr.Env(ctx), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, false
	}
	out, err := expr.Run(program, ctx)
	if err != nil || out == nil {
		return nil, false
	}
	return out, true
}

// DefaultStringify renders a value with fmt's default formatting.
func DefaultStringify(v interface{}) string {
	return fmt.Sprintf("%v", v)
}
