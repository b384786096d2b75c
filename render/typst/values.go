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

package typst

import (
	"fmt"
	"strings"

	"github.com/rulego/reportflow/layout"
)

// renderTracks emits a Typst track-list literal for a normalized
// []layout.Track, e.g. "(1fr, auto, 120pt)".
func renderTracks(tracks []layout.Track) string {
	parts := make([]string, len(tracks))
	for i, tr := range tracks {
		switch tr.Kind {
		case layout.TrackAuto, layout.TrackRepeat:
			parts[i] = "auto"
		case layout.TrackFr:
			parts[i] = fmt.Sprintf("%dfr", tr.N)
		case layout.TrackLength:
			parts[i] = tr.Length
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// renderLength emits a bare Typst length literal for a length-string or
// "auto" property value.
func renderLength(v interface{}) string {
	s := fmt.Sprintf("%v", v)
	if s == "auto" || s == ":auto" {
		return "auto"
	}
	return s
}

// renderAlign maps :left/:center/:right/:top/:bottom/:horizon directly, and
// a combined (a, b) pair to "a + b".
func renderAlign(v interface{}) string {
	switch av := v.(type) {
	case []interface{}:
		parts := make([]string, len(av))
		for i, p := range av {
			parts[i] = alignKeyword(p)
		}
		return strings.Join(parts, " + ")
	case [2]string:
		return alignKeyword(av[0]) + " + " + alignKeyword(av[1])
	default:
		return alignKeyword(v)
	}
}

func alignKeyword(v interface{}) string {
	s := fmt.Sprintf("%v", v)
	return strings.TrimPrefix(s, ":")
}

// renderColor maps "#rrggbb" to rgb("#rrggbb"), ":none" to none, and
// passes any other bare keyword (a named Typst color like "red") through
// unchanged.
func renderColor(v interface{}) string {
	s := fmt.Sprintf("%v", v)
	if s == ":none" || s == "none" {
		return "none"
	}
	if strings.HasPrefix(s, "#") {
		return fmt.Sprintf("rgb(%q)", s)
	}
	return s
}

// renderStroke implements spec.md §4.10's stroke rendering: a length
// string renders as a bare length; {thickness, paint} renders as
// "thickness + paint"; adding dash switches to the named-argument form
// "(thickness: …, paint: …, dash: "…")".
func renderStroke(v interface{}) string {
	switch sv := v.(type) {
	case map[string]interface{}:
		thickness := renderLength(sv["thickness"])
		paint := renderColor(sv["paint"])
		if dash, ok := sv["dash"]; ok && dash != nil {
			return fmt.Sprintf("(thickness: %s, paint: %s, dash: %q)", thickness, paint, dash)
		}
		return thickness + " + " + paint
	case string:
		if sv == ":none" || sv == "none" {
			return "none"
		}
		return sv
	default:
		return renderColor(v)
	}
}

// renderLine emits grid.hline/grid.vline (or table.* when fn == "table").
func renderLine(l layout.Line, fn string) string {
	name := "hline"
	axisArg := "y"
	pos := l.Position
	if l.Orientation == layout.Vertical {
		name = "vline"
		axisArg = "x"
	}

	var args []string
	args = append(args, fmt.Sprintf("%s: %d", axisArg, pos))
	if l.Start != nil {
		args = append(args, fmt.Sprintf("start: %d", *l.Start))
	}
	if l.End != nil {
		args = append(args, fmt.Sprintf("end: %d", *l.End))
	}
	if l.Stroke != nil {
		args = append(args, "stroke: "+renderStroke(l.Stroke))
	}

	return fmt.Sprintf("%s.%s(%s)", fn, name, strings.Join(args, ", "))
}

func indentJoin(args []string) string {
	indented := make([]string, len(args))
	for i, a := range args {
		indented[i] = "  " + a
	}
	return strings.Join(indented, ",\n")
}
