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

// TrackKind distinguishes the normalized shapes a column/row track spec can
// take, per spec.md §4.9.
type TrackKind string

const (
	TrackAuto   TrackKind = "auto"
	TrackFr     TrackKind = "fr"
	TrackLength TrackKind = "length"
	TrackRepeat TrackKind = "repeat" // N equal "auto" tracks
)

// Track is one normalized column or row track.
type Track struct {
	Kind   TrackKind
	N      int    // Fr multiplier, or repeat count
	Length string // raw length string, for TrackLength
}
