/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format names an output format by its file extension.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
	// FormatZIP is an archive of PNG frames.
	FormatZIP Format = "zip"
)

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case FormatSVG, FormatPNG, FormatPDF, FormatZIP:
		return f, nil
	}
	return "", fmt.Errorf("unknown format: %s", s)
}

// FormatOf picks the format from the extension of path.
func FormatOf(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%s: no file extension", path)
	}
	return ParseFormat(ext)
}

// Write renders f in format to w.
func Write(w io.Writer, format Format, f Frame, st Style) error {
	switch format {
	case FormatSVG:
		return SVG(w, f, st)
	case FormatPNG:
		return PNG(w, f, st)
	case FormatPDF:
		return PDF(w, f, st)
	case FormatZIP:
		return Archive(w, []Frame{f}, st)
	}
	return fmt.Errorf("unknown format: %s", format)
}

// WriteFile renders f to path in the format its extension names.
func WriteFile(path string, f Frame, st Style) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	return createAnd(path, func(w io.Writer) error { return Write(w, format, f, st) })
}

// BatchOptions controls exporting every frame of a drag.
//
// Per-frame formats write <Prefix>-<n>.<ext> into OutDir/<ext>/; the zip
// format writes a single <Prefix>.zip into OutDir.
type BatchOptions struct {
	Formats []Format
	OutDir  string
	// Prefix defaults to "frame".
	Prefix string
}

// Batch exports frames in every requested format and returns the written
// paths.
func Batch(frames []Frame, st Style, opt BatchOptions) ([]string, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames to export")
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = []Format{FormatSVG}
	}
	prefix := opt.Prefix
	if prefix == "" {
		prefix = "frame"
	}
	var out []string
	for _, format := range formats {
		if format == FormatZIP {
			p := filepath.Join(opt.OutDir, prefix+".zip")
			if err := createAnd(p, func(w io.Writer) error { return Archive(w, frames, st) }); err != nil {
				return out, err
			}
			out = append(out, p)
			continue
		}
		if _, err := ParseFormat(string(format)); err != nil {
			return out, err
		}
		for i, f := range frames {
			p := filepath.Join(opt.OutDir, string(format), fmt.Sprintf("%s-%03d.%s", prefix, i+1, format))
			if err := createAnd(p, func(w io.Writer) error { return Write(w, format, f, st) }); err != nil {
				return out, fmt.Errorf("%s frame %d: %w", format, i+1, err)
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func createAnd(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := write(fh); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}
