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

// Package htmlrender emits HTML with CSS Grid/Flexbox from the layout
// Intermediate Representation, per spec.md §4.10.
package htmlrender

import (
	"fmt"
	"html"
	"strings"

	"github.com/rulego/reportflow/layout"
	"github.com/rulego/reportflow/render/format"
	"github.com/rulego/reportflow/render/varsub"
)

// Render emits the HTML for l, substituting `[variable]` placeholders in
// label text against ctx. All interpolated text is HTML-escaped.
func Render(l *layout.Layout, ctx map[string]interface{}) (string, error) {
	switch l.Kind {
	case layout.Grid:
		return renderGrid(l, ctx)
	case layout.Table:
		return renderTable(l, ctx)
	case layout.Stack:
		return renderStack(l, ctx)
	default:
		return "", fmt.Errorf("htmlrender: unrecognized layout kind %q", l.Kind)
	}
}

func renderGrid(l *layout.Layout, ctx map[string]interface{}) (string, error) {
	style := "display:grid"
	if tracks, ok := l.Properties["columns"].([]layout.Track); ok {
		style += "; grid-template-columns:" + cssTrackList(tracks)
	}
	body, err := renderCellChildren(l, ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<div class="ash-grid" style="%s">%s</div>`, style, body), nil
}

func renderStack(l *layout.Layout, ctx map[string]interface{}) (string, error) {
	dir := "column"
	if v, ok := l.Properties["dir"]; ok {
		dir = flexDirection(v)
	}
	style := fmt.Sprintf("display:flex; flex-direction: %s", dir)

	var parts []string
	for _, item := range l.Children {
		cell, ok := item.(*layout.Cell)
		if !ok {
			continue
		}
		content, err := renderContent(cell.Content, ctx)
		if err != nil {
			return "", err
		}
		parts = append(parts, content)
	}
	return fmt.Sprintf(`<div class="ash-stack" style="%s">%s</div>`, style, strings.Join(parts, "")), nil
}

func flexDirection(v interface{}) string {
	switch fmt.Sprintf("%v", v) {
	case "ttb", ":ttb":
		return "column"
	case "btt", ":btt":
		return "column-reverse"
	case "ltr", ":ltr":
		return "row"
	case "rtl", ":rtl":
		return "row-reverse"
	default:
		return "column"
	}
}

func renderTable(l *layout.Layout, ctx map[string]interface{}) (string, error) {
	var b strings.Builder
	b.WriteString(`<table class="ash-table">`)

	if len(l.Headers) > 0 {
		b.WriteString("<thead>")
		if err := writeBandRows(&b, l.Headers[0].Rows, ctx, "ash-header"); err != nil {
			return "", err
		}
		b.WriteString("</thead>")
	}

	b.WriteString("<tbody>")
	for _, item := range l.Children {
		switch v := item.(type) {
		case *layout.Row:
			if err := writeRow(&b, v, ctx, ""); err != nil {
				return "", err
			}
		case *layout.Cell:
			if err := writeCell(&b, v, ctx, ""); err != nil {
				return "", err
			}
		}
	}
	b.WriteString("</tbody>")

	if len(l.Footers) > 0 {
		b.WriteString("<tfoot>")
		if err := writeBandRows(&b, l.Footers[0].Rows, ctx, "ash-footer"); err != nil {
			return "", err
		}
		b.WriteString("</tfoot>")
	}

	b.WriteString("</table>")
	return b.String(), nil
}

func writeBandRows(b *strings.Builder, rows []layout.Row, ctx map[string]interface{}, cssClass string) error {
	for i := range rows {
		if err := writeRow(b, &rows[i], ctx, cssClass); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(b *strings.Builder, row *layout.Row, ctx map[string]interface{}, bandClass string) error {
	b.WriteString("<tr>")
	for _, cell := range row.Cells {
		if err := writeCell(b, cell, ctx, bandClass); err != nil {
			return err
		}
	}
	b.WriteString("</tr>")
	return nil
}

func writeCell(b *strings.Builder, c *layout.Cell, ctx map[string]interface{}, bandClass string) error {
	content, err := renderContent(c.Content, ctx)
	if err != nil {
		return err
	}
	class := "ash-cell"
	if bandClass != "" {
		class += " " + bandClass
	}
	style := cellStyle(c)
	fmt.Fprintf(b, `<td class="%s" style="%s">%s</td>`, class, style, content)
	return nil
}

func renderCellChildren(l *layout.Layout, ctx map[string]interface{}) (string, error) {
	var b strings.Builder
	for _, item := range l.Children {
		switch v := item.(type) {
		case *layout.Cell:
			if err := writeGridCell(&b, v, ctx); err != nil {
				return "", err
			}
		case *layout.Row:
			for _, cell := range v.Cells {
				if err := writeGridCell(&b, cell, ctx); err != nil {
					return "", err
				}
			}
		}
	}
	return b.String(), nil
}

func writeGridCell(b *strings.Builder, c *layout.Cell, ctx map[string]interface{}) error {
	content, err := renderContent(c.Content, ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(b, `<div class="ash-cell" style="%s">%s</div>`, cellStyle(c), content)
	return nil
}

// cellStyle emits grid-column/grid-row for an explicit position, else the
// span form, per spec.md §4.10.
func cellStyle(c *layout.Cell) string {
	if c.HasX && c.HasY {
		return fmt.Sprintf("grid-column: %d; grid-row: %d", c.Position.X+1, c.Position.Y+1)
	}
	colspan, rowspan := c.Span.Colspan, c.Span.Rowspan
	if colspan < 1 {
		colspan = 1
	}
	if rowspan < 1 {
		rowspan = 1
	}
	return fmt.Sprintf("grid-column: span %d; grid-row: span %d", colspan, rowspan)
}

func renderContent(items []layout.Content, ctx map[string]interface{}) (string, error) {
	var parts []string
	for _, c := range items {
		switch v := c.(type) {
		case layout.Label:
			text := varsub.Substitute(v.Text, ctx, varsub.DefaultStringify)
			parts = append(parts, fmt.Sprintf(`<span class="ash-label">%s</span>`, html.EscapeString(text)))
		case layout.Field:
			currency := ""
			if cur, ok := v.Style["currency"]; ok {
				currency, _ = cur.(string)
			}
			val := resolvePath(v.Source, ctx)
			text := format.Field(val, v.Format, currency, v.DecimalPlaces)
			parts = append(parts, fmt.Sprintf(`<span class="ash-field">%s</span>`, html.EscapeString(text)))
		case layout.NestedLayout:
			nested, err := Render(v.Layout, ctx)
			if err != nil {
				return "", err
			}
			parts = append(parts, nested)
		default:
			return "", fmt.Errorf("htmlrender: unrecognized content type %T", c)
		}
	}
	return strings.Join(parts, ""), nil
}

func resolvePath(path []string, ctx map[string]interface{}) interface{} {
	var cur interface{} = ctx
	for _, seg := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

func cssTrackList(tracks []layout.Track) string {
	parts := make([]string, len(tracks))
	for i, tr := range tracks {
		switch tr.Kind {
		case layout.TrackFr:
			parts[i] = fmt.Sprintf("%dfr", tr.N)
		case layout.TrackLength:
			parts[i] = tr.Length
		default:
			parts[i] = "auto"
		}
	}
	return " " + strings.Join(parts, " ")
}
