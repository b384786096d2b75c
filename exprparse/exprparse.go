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

// Package exprparse extracts the terminal field atom (and full path) out of
// the handful of shapes a report's group expression can take: a bare atom, a
// tagged tuple, or a structured {ref, ...} / {get_path, ...} expression.
package exprparse

import "fmt"

// ErrUnrecognizedFormat is returned when expr does not match any of the
// recognized group-expression shapes.
type ErrUnrecognizedFormat struct {
	Expr interface{}
}

func (e *ErrUnrecognizedFormat) Error() string {
	return fmt.Sprintf("exprparse: unrecognized group expression format: %#v", e.Expr)
}

// Ref is the {ref, _, atom} shape: a simple reference to a named field.
type Ref struct {
	Atom string
}

// GetPath is the {get_path, _, [inner, atom, ...]} shape: a chain of path
// segments terminating in an atom.
type GetPath struct {
	Path []string
}

// Tuple is the tagged-tuple shape `(field, ..., terminal)`: two or more
// elements where every element but the last must itself be a recognizable
// atom, and the last is the terminal field name.
type Tuple struct {
	Elements []interface{}
}

// ExtractField returns the terminal atom named by expr. expr may be:
//   - a bare string atom
//   - a Tuple of 2+ elements, the last of which is the terminal atom
//   - a Ref
//   - a GetPath, whose terminal atom is its last path segment
//
// Any other shape, or a middle Tuple element that is not itself a plain
// string atom, fails with ErrUnrecognizedFormat.
func ExtractField(expr interface{}) (string, error) {
	switch v := expr.(type) {
	case string:
		return v, nil
	case Ref:
		if v.Atom == "" {
			return "", &ErrUnrecognizedFormat{Expr: expr}
		}
		return v.Atom, nil
	case GetPath:
		if len(v.Path) == 0 {
			return "", &ErrUnrecognizedFormat{Expr: expr}
		}
		return v.Path[len(v.Path)-1], nil
	case Tuple:
		return extractFromTuple(v)
	default:
		return "", &ErrUnrecognizedFormat{Expr: expr}
	}
}

func extractFromTuple(t Tuple) (string, error) {
	if len(t.Elements) < 2 {
		return "", &ErrUnrecognizedFormat{Expr: t}
	}
	for _, mid := range t.Elements[:len(t.Elements)-1] {
		if _, ok := mid.(string); !ok {
			return "", &ErrUnrecognizedFormat{Expr: t}
		}
	}
	last := t.Elements[len(t.Elements)-1]
	atom, ok := last.(string)
	if !ok {
		return "", &ErrUnrecognizedFormat{Expr: t}
	}
	return atom, nil
}

// ExtractFieldPath returns the full ordered list of path segments expr
// denotes: a single-element slice for a bare atom or Ref, the full chain for
// a GetPath, or every element of a Tuple.
func ExtractFieldPath(expr interface{}) ([]string, error) {
	switch v := expr.(type) {
	case string:
		return []string{v}, nil
	case Ref:
		if v.Atom == "" {
			return nil, &ErrUnrecognizedFormat{Expr: expr}
		}
		return []string{v.Atom}, nil
	case GetPath:
		if len(v.Path) == 0 {
			return nil, &ErrUnrecognizedFormat{Expr: expr}
		}
		out := make([]string, len(v.Path))
		copy(out, v.Path)
		return out, nil
	case Tuple:
		if len(v.Elements) < 2 {
			return nil, &ErrUnrecognizedFormat{Expr: v}
		}
		out := make([]string, 0, len(v.Elements))
		for _, el := range v.Elements {
			atom, ok := el.(string)
			if !ok {
				return nil, &ErrUnrecognizedFormat{Expr: v}
			}
			out = append(out, atom)
		}
		return out, nil
	default:
		return nil, &ErrUnrecognizedFormat{Expr: expr}
	}
}

// ExtractFieldWithFallback is ExtractField but never fails: on any
// unrecognized format it returns fallback, typically the owning group's
// declared name.
func ExtractFieldWithFallback(expr interface{}, fallback string) string {
	atom, err := ExtractField(expr)
	if err != nil {
		return fallback
	}
	return atom
}
