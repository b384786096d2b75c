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

package typstcompiler

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePDFBeginsWithMagic(t *testing.T) {
	c := &FakeCompiler{}
	out, err := c.Compile(context.Background(), []byte("#set page()"), FormatPDF, time.Second)
	require.NoError(t, err)
	require.NoError(t, RequirePDFMagic(out))
}

func TestCompileRejectsInvalidFormat(t *testing.T) {
	c := &FakeCompiler{}
	_, err := c.Compile(context.Background(), []byte("x"), Format("docx"), time.Second)
	require.Error(t, err)
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrInvalidFormat, ce.Kind)
}

func TestCompileRejectsEmptyTemplate(t *testing.T) {
	c := &FakeCompiler{}
	_, err := c.Compile(context.Background(), nil, FormatPDF, time.Second)
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrEmptyTemplate, ce.Kind)
}

func TestCompileRejectsOversizedTemplate(t *testing.T) {
	c := &FakeCompiler{}
	big := bytes.Repeat([]byte("a"), MaxTemplateSize+1)
	_, err := c.Compile(context.Background(), big, FormatPDF, time.Second)
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrTemplateTooLarge, ce.Kind)
}

func TestCompileTimesOutWhenDelayExceedsTimeout(t *testing.T) {
	c := &FakeCompiler{Delay: 50 * time.Millisecond}
	_, err := c.Compile(context.Background(), []byte("x"), FormatPDF, 5*time.Millisecond)
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrTimeout, ce.Kind)
}

func TestCompileRespectsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &FakeCompiler{}
	_, err := c.Compile(ctx, []byte("x"), FormatSVG, time.Second)
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrTimeout, ce.Kind)
}

func TestCompileFailContainsTriggersCompileError(t *testing.T) {
	c := &FakeCompiler{FailContains: "#bad"}
	_, err := c.Compile(context.Background(), []byte("#bad syntax"), FormatPDF, time.Second)
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrCompile, ce.Kind)
}

func TestSnapshotSaveAndLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	captured := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	snap := Capture("invoice", captured, []byte("%PDF-1.7\n..."), "Invoice #1", map[string]interface{}{"pages": float64(1)})
	require.NoError(t, snap.Save(dir))

	loaded, err := LoadSnapshot(dir, "invoice")
	require.NoError(t, err)
	assert.Equal(t, snap.PDF, loaded.PDF)
	assert.Equal(t, snap.Text, loaded.Text)
	assert.Equal(t, snap.Metadata, loaded.Metadata)
	assert.True(t, snap.CapturedAt.Equal(loaded.CapturedAt))
}

func TestCompareFlagsTextAndMetadataDrift(t *testing.T) {
	base := Capture("r", time.Now(), []byte("%PDF1"), "hello", map[string]interface{}{"pages": 1})
	next := Capture("r", time.Now(), []byte("%PDF1x"), "hello world", map[string]interface{}{"pages": 2})
	diffs := base.Compare(next, 0)
	require.Len(t, diffs, 3)
}

func TestCompareWithinToleranceIgnoresSizeDrift(t *testing.T) {
	base := Capture("r", time.Now(), []byte("%PDF1"), "hello", nil)
	next := Capture("r", time.Now(), []byte("%PDF1xx"), "hello", nil)
	diffs := base.Compare(next, 5)
	assert.Empty(t, diffs)
}
