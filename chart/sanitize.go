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

package chart

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/rulego/reportflow/logger"
)

// deniedElements are stripped entirely, including their children, per
// spec.md §4.8.
var deniedElements = map[string]bool{
	"script":        true,
	"foreignobject": true,
}

// isDeniedAttr reports whether an attribute must be stripped from an
// otherwise-preserved element: event handlers and script/data URIs.
func isDeniedAttr(name, value string) bool {
	lname := strings.ToLower(name)
	if strings.HasPrefix(lname, "on") {
		return true
	}
	lval := strings.ToLower(strings.TrimSpace(value))
	if strings.HasPrefix(lval, "javascript:") {
		return true
	}
	if strings.HasPrefix(lval, "data:text/html") {
		return true
	}
	return false
}

// Sanitize removes script content, foreignObject embeds, event-handler
// attributes, and javascript:/data:text/html URIs from an SVG document,
// preserving safe geometry (rect, path, text, circle, …) untouched.
//
// Malformed input that the XML tokenizer cannot parse is returned as an
// empty SVG shell rather than passed through unsanitized.
func Sanitize(svg []byte) []byte {
	dec := xml.NewDecoder(bytes.NewReader(svg))
	var out bytes.Buffer
	enc := xml.NewEncoder(&out)

	skipDepth := 0 // > 0 while inside a denied element's subtree

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(localName(t.Name))
			if skipDepth > 0 {
				skipDepth++
				continue
			}
			if deniedElements[name] {
				skipDepth = 1
				continue
			}
			t.Attr = filterAttrs(t.Attr)
			if encErr := enc.EncodeToken(t); encErr != nil {
				logger.Warn("chart: sanitize encode failed: %v", encErr)
			}
		case xml.EndElement:
			if skipDepth > 0 {
				skipDepth--
				continue
			}
			_ = enc.EncodeToken(t)
		case xml.Comment, xml.Directive:
			// dropped: no legitimate reason a report-embedded chart needs
			// comments or DTD directives, and both are common XXE/script
			// smuggling vectors.
			continue
		default:
			if skipDepth > 0 {
				continue
			}
			_ = enc.EncodeToken(tok)
		}
	}

	if flushErr := enc.Flush(); flushErr != nil {
		logger.Warn("chart: sanitize flush failed: %v", flushErr)
	}
	if out.Len() == 0 {
		return []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
	}
	return out.Bytes()
}

func filterAttrs(attrs []xml.Attr) []xml.Attr {
	kept := attrs[:0:0]
	for _, a := range attrs {
		if isDeniedAttr(a.Name.Local, a.Value) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

func localName(n xml.Name) string {
	if n.Local != "" {
		return n.Local
	}
	return n.Space
}
