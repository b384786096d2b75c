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

// Package property implements property-chain inheritance and the
// static/dynamic value split for layout properties: resolve_chain,
// resolve_align, resolve_inset, is_dynamic, separate_static_dynamic,
// evaluate_dynamic, plus length-unit parsing.
package property

import "reflect"

// Map is a mapping whose values are either static (string, number, color,
// enum) or dynamic (a callable materialized per-cell or per-context).
type Map map[string]interface{}

// DynamicXY is a dynamic property callable in (column, row) position form.
type DynamicXY func(x, y int) interface{}

// DynamicCtx is a dynamic property callable in data-context form.
type DynamicCtx func(ctx interface{}) interface{}

// IsDynamic reports whether v is a callable rather than a static value.
func IsDynamic(v interface{}) bool {
	if v == nil {
		return false
	}
	switch v.(type) {
	case DynamicXY, DynamicCtx:
		return true
	}
	return reflect.ValueOf(v).Kind() == reflect.Func
}

// SeparateStaticDynamic partitions props into its static and dynamic
// entries.
func SeparateStaticDynamic(props Map) (static Map, dynamic Map) {
	static = make(Map)
	dynamic = make(Map)
	for k, v := range props {
		if IsDynamic(v) {
			dynamic[k] = v
		} else {
			static[k] = v
		}
	}
	return static, dynamic
}

// EvaluateDynamic materializes every dynamic entry of props against either
// (x,y) position or ctx, whichever the callable accepts, returning a fully
// static map. Non-dynamic entries pass through unchanged.
func EvaluateDynamic(props Map, x, y int, ctx interface{}) Map {
	out := make(Map, len(props))
	for k, v := range props {
		out[k] = evaluateOne(v, x, y, ctx)
	}
	return out
}

func evaluateOne(v interface{}, x, y int, ctx interface{}) interface{} {
	switch fn := v.(type) {
	case DynamicXY:
		return fn(x, y)
	case DynamicCtx:
		return fn(ctx)
	}
	if !IsDynamic(v) {
		return v
	}

	rv := reflect.ValueOf(v)
	switch rv.Type().NumIn() {
	case 2:
		results := rv.Call([]reflect.Value{reflect.ValueOf(x), reflect.ValueOf(y)})
		if len(results) > 0 {
			return results[0].Interface()
		}
	case 1:
		in := reflect.ValueOf(ctx)
		if !in.IsValid() {
			in = reflect.Zero(rv.Type().In(0))
		}
		results := rv.Call([]reflect.Value{in})
		if len(results) > 0 {
			return results[0].Interface()
		}
	}
	return v
}

// ResolveChain overwrites keys left-to-right with any right-hand value that
// is not nil: defaults ⨁ container ⨁ row ⨁ cell. Any subset of the chain
// may be nil.
func ResolveChain(chain ...Map) Map {
	out := make(Map)
	for _, m := range chain {
		for k, v := range m {
			if v != nil {
				out[k] = v
			}
		}
	}
	return out
}

// ResolveAlign resolves the "align" key through the chain, falling back to
// def when no layer sets it.
func ResolveAlign(def interface{}, chain ...Map) interface{} {
	return resolveKeyed("align", def, chain...)
}

// ResolveInset resolves the "inset" key through the chain, falling back to
// def when no layer sets it.
func ResolveInset(def interface{}, chain ...Map) interface{} {
	return resolveKeyed("inset", def, chain...)
}

func resolveKeyed(key string, def interface{}, chain ...Map) interface{} {
	resolved := def
	for _, m := range chain {
		if v, ok := m[key]; ok && v != nil {
			resolved = v
		}
	}
	return resolved
}
