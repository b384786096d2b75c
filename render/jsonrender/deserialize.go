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

package jsonrender

import (
	"strings"

	"github.com/rulego/reportflow/layout"
	"github.com/rulego/reportflow/layout/property"
)

// Deserialize reconstructs a *layout.Layout from the generic value produced
// by round-tripping Serialize's output through json.Marshal/Unmarshal (so
// map[string]interface{} with float64 numbers, per encoding/json's decode
// defaults). Dynamic properties do not round-trip: they decode back as the
// literal FunctionSentinel string, per spec.md §8.
func Deserialize(v map[string]interface{}) *layout.Layout {
	l := &layout.Layout{
		Kind:       layout.Kind(asString(v["kind"])),
		Properties: deserializeProps(v["properties"]),
	}
	for _, raw := range asSlice(v["children"]) {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if _, isRow := m["cells"]; isRow {
			l.Children = append(l.Children, deserializeRow(m))
		} else {
			l.Children = append(l.Children, deserializeCell(m))
		}
	}
	for _, raw := range asSlice(v["lines"]) {
		m, ok := raw.(map[string]interface{})
		if ok {
			l.Lines = append(l.Lines, deserializeLine(m))
		}
	}
	return l
}

func deserializeRow(m map[string]interface{}) *layout.Row {
	row := &layout.Row{
		Index:      int(asNumber(m["index"])),
		Properties: deserializeProps(m["properties"]),
	}
	for _, raw := range asSlice(m["cells"]) {
		if cm, ok := raw.(map[string]interface{}); ok {
			row.Cells = append(row.Cells, deserializeCell(cm))
		}
	}
	return row
}

func deserializeCell(m map[string]interface{}) *layout.Cell {
	c := &layout.Cell{
		Properties: deserializeProps(m["properties"]),
		Content:    deserializeContent(asSlice(m["content"])),
	}
	if span := asSlice(m["span"]); len(span) == 2 {
		c.Span = layout.Span{Colspan: int(asNumber(span[0])), Rowspan: int(asNumber(span[1]))}
	}
	if pos := asSlice(m["position"]); len(pos) == 2 {
		c.Position = layout.Position{X: int(asNumber(pos[0])), Y: int(asNumber(pos[1]))}
		c.HasX, c.HasY = true, true
	}
	return c
}

func deserializeContent(items []interface{}) []layout.Content {
	out := make([]layout.Content, 0, len(items))
	for _, raw := range items {
		m, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		switch asString(m["type"]) {
		case "label":
			out = append(out, layout.Label{Text: asString(m["text"]), Style: deserializeProps(m["style"])})
		case "field":
			f := layout.Field{
				Source: splitPath(asString(m["source"])),
				Format: asString(m["format"]),
				Style:  deserializeProps(m["style"]),
			}
			if dp, ok := m["decimal_places"]; ok && dp != nil {
				n := int(asNumber(dp))
				f.DecimalPlaces = &n
			}
			out = append(out, f)
		case "nested_layout":
			if nested, ok := m["layout"].(map[string]interface{}); ok {
				out = append(out, layout.NestedLayout{Layout: Deserialize(nested)})
			}
		}
	}
	return out
}

func deserializeLine(m map[string]interface{}) layout.Line {
	l := layout.Line{
		Orientation: layout.Orientation(asString(m["orientation"])),
		Position:    int(asNumber(m["position"])),
		Stroke:      m["stroke"],
	}
	if v, ok := m["start"]; ok && v != nil {
		n := int(asNumber(v))
		l.Start = &n
	}
	if v, ok := m["end"]; ok && v != nil {
		n := int(asNumber(v))
		l.End = &n
	}
	return l
}

func deserializeProps(v interface{}) property.Map {
	m, ok := v.(map[string]interface{})
	if !ok {
		return property.Map{}
	}
	out := make(property.Map, len(m))
	for k, val := range m {
		out[k] = val
	}
	return out
}

func splitPath(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asNumber(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}
