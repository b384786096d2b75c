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

// Package format renders a field value through one of the Field formats
// spec.md §4.10 names: currency, number, date, datetime, percent, with
// locale-aware separators and currency-symbol placement.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// CurrencyLocale describes how one currency formats its amounts.
type CurrencyLocale struct {
	Symbol        string
	SymbolAfter   bool
	ThousandsSep  string
	DecimalSep    string
	DecimalPlaces int
}

// currencyLocales is a small, explicit table covering the currencies
// spec.md §4.10 names literally: €1.234,56, $1,234.56, JPY zero-decimals.
var currencyLocales = map[string]CurrencyLocale{
	"USD": {Symbol: "$", SymbolAfter: false, ThousandsSep: ",", DecimalSep: ".", DecimalPlaces: 2},
	"EUR": {Symbol: "€", SymbolAfter: false, ThousandsSep: ".", DecimalSep: ",", DecimalPlaces: 2},
	"JPY": {Symbol: "¥", SymbolAfter: false, ThousandsSep: ",", DecimalSep: ".", DecimalPlaces: 0},
	"GBP": {Symbol: "£", SymbolAfter: false, ThousandsSep: ",", DecimalSep: ".", DecimalPlaces: 2},
}

// DefaultCurrency is used when Field.Currency names a code not in the table.
const DefaultCurrency = "USD"

// Field renders v through the named format ("", "currency", "number",
// "date", "datetime", "percent"). decimalPlaces, when non-nil, overrides
// the format's own default precision. An empty format returns v's default
// string form.
func Field(v interface{}, format, currency string, decimalPlaces *int) string {
	switch format {
	case "currency":
		return Currency(v, currency, decimalPlaces)
	case "number":
		return Number(v, decimalPlaces)
	case "percent":
		return Percent(v, decimalPlaces)
	case "date":
		return DateOnly(v)
	case "datetime":
		return DateTime(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Currency renders v as an amount in the given currency code, falling back
// to DefaultCurrency for an unrecognized or empty code.
func Currency(v interface{}, code string, decimalPlaces *int) string {
	loc, ok := currencyLocales[strings.ToUpper(code)]
	if !ok {
		loc = currencyLocales[DefaultCurrency]
	}
	places := loc.DecimalPlaces
	if decimalPlaces != nil {
		places = *decimalPlaces
	}
	amount, _ := cast.ToFloat64E(v)
	body := groupThousands(amount, places, loc.ThousandsSep, loc.DecimalSep)
	if loc.SymbolAfter {
		return body + loc.Symbol
	}
	return loc.Symbol + body
}

// Number renders v as a plain grouped decimal using US-style separators.
func Number(v interface{}, decimalPlaces *int) string {
	places := 2
	if decimalPlaces != nil {
		places = *decimalPlaces
	}
	amount, _ := cast.ToFloat64E(v)
	return groupThousands(amount, places, ",", ".")
}

// Percent renders v (a fraction, e.g. 0.5) as a percentage ("50.00%").
func Percent(v interface{}, decimalPlaces *int) string {
	places := 2
	if decimalPlaces != nil {
		places = *decimalPlaces
	}
	amount, _ := cast.ToFloat64E(v)
	return groupThousands(amount*100, places, ",", ".") + "%"
}

// DateOnly renders v (a time.Time or RFC3339 string) as "2006-01-02".
func DateOnly(v interface{}) string {
	t, ok := toTime(v)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return t.Format("2006-01-02")
}

// DateTime renders v as RFC3339.
func DateTime(v interface{}) string {
	t, ok := toTime(v)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return t.Format(time.RFC3339)
}

func toTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

// groupThousands formats amount with `places` decimals and inserts
// thousandsSep every three integer digits, using decimalSep before the
// fractional part.
func groupThousands(amount float64, places int, thousandsSep, decimalSep string) string {
	if places < 0 {
		places = 0
	}
	raw := strconv.FormatFloat(amount, 'f', places, 64)

	neg := strings.HasPrefix(raw, "-")
	if neg {
		raw = raw[1:]
	}

	intPart, fracPart := raw, ""
	if dot := strings.IndexByte(raw, '.'); dot >= 0 {
		intPart, fracPart = raw[:dot], raw[dot+1:]
	}

	grouped := groupDigits(intPart, thousandsSep)
	out := grouped
	if places > 0 {
		out += decimalSep + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

func groupDigits(digits, sep string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
