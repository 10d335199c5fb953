/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"snapline/internal/geom"
	"snapline/internal/snap"
)

// ErrInvalid wraps every schema or consistency problem of a scene document.
var ErrInvalid = errors.New("scene: invalid document")

//go:embed schema.json
var schemaJSON []byte

// Schema returns the JSON schema scene documents are validated against.
func Schema() []byte { return append([]byte(nil), schemaJSON...) }

// Box is a rectangle as written in scene files.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func (b Box) Rect() geom.Rect { return geom.R(b.X, b.Y, b.W, b.H) }

func boxOf(r geom.Rect) Box { return Box{X: r.X, Y: r.Y, W: r.W, H: r.H} }

type Insets struct {
	Left   int `json:"left,omitempty"`
	Top    int `json:"top,omitempty"`
	Right  int `json:"right,omitempty"`
	Bottom int `json:"bottom,omitempty"`
}

// LineSpec is a custom snap line in shape-local coordinates.
type LineSpec struct {
	Type     string `json:"type"`
	Offset   int    `json:"offset"`
	Filter   string `json:"filter,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// ShapeSpec describes one shape. Bounds are absolute; a shape without parent
// is a root and never offers lines.
type ShapeSpec struct {
	ID          string     `json:"id"`
	Parent      string     `json:"parent,omitempty"`
	Bounds      Box        `json:"bounds"`
	ClientInset *Insets    `json:"clientInset,omitempty"`
	Visible     *bool      `json:"visible,omitempty"`
	NoLines     bool       `json:"noLines,omitempty"`
	Margin      *Insets    `json:"margin,omitempty"`
	Padding     *Insets    `json:"padding,omitempty"`
	Baseline    *int       `json:"baseline,omitempty"`
	Container   bool       `json:"container,omitempty"`
	Lines       []LineSpec `json:"lines,omitempty"`
}

// IsVisible reports the visible flag, which defaults to true.
func (s ShapeSpec) IsVisible() bool { return s.Visible == nil || *s.Visible }

// MoveSpec is one saved history entry.
type MoveSpec struct {
	Shape string    `json:"shape"`
	DX    int       `json:"dx"`
	DY    int       `json:"dy"`
	At    time.Time `json:"at"`
}

// HistorySpec carries the move history from one run to the next. Entries are
// grouped by shape, oldest first.
type HistorySpec struct {
	Undo []MoveSpec `json:"undo,omitempty"`
	Redo []MoveSpec `json:"redo,omitempty"`
}

type Document struct {
	Name    string       `json:"name,omitempty"`
	Clip    *Box         `json:"clip,omitempty"`
	Shapes  []ShapeSpec  `json:"shapes"`
	History *HistorySpec `json:"history,omitempty"`
}

// Decode validates data against the scene schema and decodes it.
func Decode(data []byte) (Document, error) {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Document{}, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return doc, nil
}

// Check verifies what the schema cannot: unique ids, known parents without
// cycles, and parseable custom lines.
func (d Document) Check() error {
	seen := make(map[string]int, len(d.Shapes))
	for i, s := range d.Shapes {
		if s.ID == "" {
			return fmt.Errorf("%w: shape #%d has no id", ErrInvalid, i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate shape id %q", ErrInvalid, s.ID)
		}
		if s.Bounds.W < 0 || s.Bounds.H < 0 {
			return fmt.Errorf("%w: shape %q has negative size", ErrInvalid, s.ID)
		}
		for _, l := range s.Lines {
			if _, err := snap.ParseSnapLineType(l.Type); err != nil {
				return fmt.Errorf("%w: shape %q: %v", ErrInvalid, s.ID, err)
			}
			if _, err := snap.ParsePriority(l.Priority); err != nil {
				return fmt.Errorf("%w: shape %q: %v", ErrInvalid, s.ID, err)
			}
		}
		seen[s.ID] = i
	}
	if h := d.History; h != nil {
		for _, m := range append(append([]MoveSpec(nil), h.Undo...), h.Redo...) {
			if _, ok := seen[m.Shape]; !ok {
				return fmt.Errorf("%w: history names unknown shape %q", ErrInvalid, m.Shape)
			}
		}
	}
	for _, s := range d.Shapes {
		if s.Parent == "" {
			continue
		}
		if _, ok := seen[s.Parent]; !ok {
			return fmt.Errorf("%w: shape %q has unknown parent %q", ErrInvalid, s.ID, s.Parent)
		}
		cur, steps := s.Parent, 0
		for cur != "" {
			if cur == s.ID || steps > len(d.Shapes) {
				return fmt.Errorf("%w: shape %q is its own ancestor", ErrInvalid, s.ID)
			}
			cur = d.Shapes[seen[cur]].Parent
			steps++
		}
	}
	return nil
}

// Parse decodes and checks a scene document and wraps it in a Scene.
func Parse(data []byte, opts Options) (*Scene, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return New(doc, opts)
}

// Load reads a scene file.
func Load(path string, opts Options) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return sc, nil
}

// Save writes the current state of the scene as indented JSON.
func (s *Scene) Save(path string) error {
	data, err := json.MarshalIndent(s.Document(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
