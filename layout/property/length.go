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

package property

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit is a recognized length unit.
type Unit string

const (
	UnitPt   Unit = "pt"
	UnitCm   Unit = "cm"
	UnitMm   Unit = "mm"
	UnitIn   Unit = "in"
	UnitPct  Unit = "%"
	UnitFr   Unit = "fr"
	UnitEm   Unit = "em"
	UnitAuto Unit = "auto"
)

// absoluteToPoints holds the conversion factor to points for every absolute
// unit; 1in = 72pt, 1cm = 28.3465pt, 1mm = 2.83465pt, per spec.md §4.9.
var absoluteToPoints = map[Unit]float64{
	UnitPt: 1,
	UnitIn: 72,
	UnitCm: 28.3465,
	UnitMm: 2.83465,
}

// Length is a parsed `<number><unit>` value, or the sentinel `auto`.
// Absolute units (pt, in, cm, mm) are normalized to points at parse time;
// relative units (%, fr, em) are preserved tagged, since they cannot be
// resolved without layout context.
type Length struct {
	Auto  bool
	Unit  Unit    // the unit actually stored in Value: Pt for absolute, or the original relative unit
	Value float64 // points, for absolute units; raw magnitude, for relative units
}

func (l Length) String() string {
	if l.Auto {
		return "auto"
	}
	return fmt.Sprintf("%g%s", l.Value, l.Unit)
}

// IsRelative reports whether l carries a unit that could not be resolved to
// points at parse time.
func (l Length) IsRelative() bool {
	return l.Unit == UnitPct || l.Unit == UnitFr || l.Unit == UnitEm
}

// ParseLength parses a `<number><unit>` string or the literal "auto".
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	if s == "auto" {
		return Length{Auto: true, Unit: UnitAuto}, nil
	}

	unit, numPart := splitUnit(s)
	if unit == "" {
		return Length{}, fmt.Errorf("property: length %q has no recognized unit", s)
	}
	n, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return Length{}, fmt.Errorf("property: length %q has an unparseable number: %w", s, err)
	}

	if factor, ok := absoluteToPoints[unit]; ok {
		return Length{Unit: UnitPt, Value: n * factor}, nil
	}
	return Length{Unit: unit, Value: n}, nil
}

// splitUnit splits s into its trailing unit token and the leading numeric
// part. "%" must be checked before the generic letter-suffix scan since it
// is not a letter.
func splitUnit(s string) (Unit, string) {
	if strings.HasSuffix(s, "%") {
		return UnitPct, strings.TrimSuffix(s, "%")
	}
	for _, u := range []Unit{UnitPt, UnitCm, UnitMm, UnitIn, UnitFr, UnitEm} {
		if strings.HasSuffix(s, string(u)) {
			return u, strings.TrimSuffix(s, string(u))
		}
	}
	return "", s
}
