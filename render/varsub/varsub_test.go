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

package varsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstituteReplacesKnownVariable(t *testing.T) {
	ctx := map[string]interface{}{"customer_name": "Ada"}
	out := Substitute("Hello, [customer_name]!", ctx, DefaultStringify)
	assert.Equal(t, "Hello, Ada!", out)
}

func TestSubstituteLeavesMissingVariableVerbatim(t *testing.T) {
	ctx := map[string]interface{}{"x": 1}
	out := Substitute("Value: [unknown_field]", ctx, DefaultStringify)
	assert.Equal(t, "Value: [unknown_field]", out)
}

func TestSubstituteSupportsDottedPath(t *testing.T) {
	ctx := map[string]interface{}{"customer": map[string]interface{}{"name": "Grace"}}
	out := Substitute("[customer.name]", ctx, DefaultStringify)
	assert.Equal(t, "Grace", out)
}

func TestSubstituteMultipleOccurrences(t *testing.T) {
	ctx := map[string]interface{}{"a": "1", "b": "2"}
	out := Substitute("[a]-[b]-[a]", ctx, DefaultStringify)
	assert.Equal(t, "1-2-1", out)
}
