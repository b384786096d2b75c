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
	"fmt"
	"time"
)

// FakeCompiler is an in-process stand-in for a real Typst binary, used by
// tests and by the CLI when no external compiler is configured. It
// performs the same validation a real compiler's frontend would and
// fabricates minimally-valid output bytes per format, so callers that
// check the "%PDF" magic or a non-empty render get something plausible.
type FakeCompiler struct {
	// Delay simulates compile latency; if it exceeds the timeout passed to
	// Compile (or ctx is already done), Compile returns an ErrTimeout
	// CompileError instead of succeeding.
	Delay time.Duration

	// FailContains, if non-empty, makes Compile return an ErrCompile error
	// whenever the template contains this substring, for exercising the
	// generic compile-failure path.
	FailContains string
}

func (f *FakeCompiler) Compile(ctx context.Context, template []byte, format Format, timeout time.Duration) ([]byte, error) {
	if err := ValidateTemplate(template, format); err != nil {
		return nil, err
	}
	if f.FailContains != "" && bytes.Contains(template, []byte(f.FailContains)) {
		return nil, &CompileError{Kind: ErrCompile, Details: "template triggered configured failure"}
	}

	if ctx.Err() != nil {
		return nil, &CompileError{Kind: ErrTimeout, Details: ctx.Err().Error()}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	select {
	case <-ctx.Done():
		return nil, &CompileError{Kind: ErrTimeout, Details: ctx.Err().Error()}
	case <-time.After(timeout):
		return nil, &CompileError{Kind: ErrTimeout, Details: fmt.Sprintf("exceeded %s", timeout)}
	case <-time.After(f.Delay):
	}

	switch format {
	case FormatPDF:
		var buf bytes.Buffer
		buf.WriteString(PDFMagic + "-1.7\n")
		buf.WriteString(fmt.Sprintf("%% fake render of %d bytes of Typst source\n", len(template)))
		buf.WriteString("%%EOF\n")
		return buf.Bytes(), nil
	case FormatPNG:
		return append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, template...), nil
	case FormatSVG:
		return []byte(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg"><!-- %d bytes --></svg>`, len(template))), nil
	default:
		return nil, &CompileError{Kind: ErrInvalidFormat, Details: string(format)}
	}
}
