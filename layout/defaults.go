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

package layout

import "github.com/rulego/reportflow/layout/property"

// ContainerDefaults returns the recognized-key defaults for kind, per
// spec.md §3's PropertyMap table.
func ContainerDefaults(kind Kind) property.Map {
	switch kind {
	case Table:
		return property.Map{
			"columns": nil,
			"rows":    "auto",
			"gutter":  "0pt",
			"align":   "start",
			"inset":   "5pt",
			"fill":    "none",
			"stroke":  "1pt",
		}
	case Stack:
		return property.Map{
			"dir":     "ttb",
			"spacing": "0pt",
		}
	default: // Grid
		return property.Map{
			"columns": nil,
			"rows":    "auto",
			"gutter":  "0pt",
			"align":   "start",
			"inset":   "0pt",
			"fill":    "none",
			"stroke":  "none",
		}
	}
}

// CellDefaults returns the recognized-key defaults for a Cell's PropertyMap.
func CellDefaults() property.Map {
	return property.Map{
		"colspan":   1,
		"rowspan":   1,
		"breakable": true,
		"align":     nil,
		"fill":      nil,
		"stroke":    nil,
		"inset":     nil,
	}
}
