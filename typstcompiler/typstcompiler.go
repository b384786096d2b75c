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

// Package typstcompiler defines the Typst compiler contract reports
// render through, per spec.md §6: compile(template, format, timeout)
// returns bytes or one of a small set of named errors. A compiled PDF
// must begin with the "%PDF" magic number.
package typstcompiler

import (
	"context"
	"fmt"
	"time"
)

// Format is the output format a Compile call targets.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

func (f Format) valid() bool {
	switch f {
	case FormatPDF, FormatPNG, FormatSVG:
		return true
	default:
		return false
	}
}

// MaxTemplateSize is the 10 MB template-size limit from spec.md §6.
const MaxTemplateSize = 10 << 20

// PDFMagic is the byte prefix every compiled PDF must begin with.
const PDFMagic = "%PDF"

// Error kinds, matching spec.md §6's Err(...) variants.
const (
	ErrInvalidFormat    = "invalid_format"
	ErrEmptyTemplate    = "empty_template"
	ErrTemplateTooLarge = "template_too_large"
	ErrTimeout          = "timeout"
	ErrCompile          = "compile"
)

// CompileError reports why Compile failed.
type CompileError struct {
	Kind    string
	Details string
}

func (e *CompileError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("typstcompiler: %s: %s", e.Kind, e.Details)
	}
	return "typstcompiler: " + e.Kind
}

// Compiler is the opaque Typst compiler contract.
type Compiler interface {
	Compile(ctx context.Context, template []byte, format Format, timeout time.Duration) ([]byte, error)
}

// ValidateTemplate applies the format/empty/size checks common to every
// Compiler implementation, so each one doesn't have to reimplement them.
func ValidateTemplate(template []byte, format Format) error {
	if !format.valid() {
		return &CompileError{Kind: ErrInvalidFormat, Details: string(format)}
	}
	if len(template) == 0 {
		return &CompileError{Kind: ErrEmptyTemplate}
	}
	if len(template) > MaxTemplateSize {
		return &CompileError{Kind: ErrTemplateTooLarge, Details: fmt.Sprintf("%d bytes", len(template))}
	}
	return nil
}
