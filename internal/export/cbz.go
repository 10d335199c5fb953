/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ArchiveManifest is stored as manifest.json next to the frame images.
type ArchiveManifest struct {
	Title  string          `json:"title,omitempty"`
	Frames []ManifestFrame `json:"frames"`
}

type ManifestFrame struct {
	File  string `json:"file"`
	Drag  [4]int `json:"drag"`
	Lines int    `json:"lines"`
}

// Archive packages frames as numbered PNG images in a ZIP archive, so a
// whole drag can be flipped through like a comic book.
func Archive(w io.Writer, frames []Frame, st Style) error {
	zw := zip.NewWriter(w)
	man := ArchiveManifest{Frames: make([]ManifestFrame, 0, len(frames))}
	for i, f := range frames {
		if i == 0 {
			man.Title = f.Title
		}
		var buf bytes.Buffer
		if err := PNG(&buf, f, st); err != nil {
			return fmt.Errorf("frame %d: %w", i+1, err)
		}
		name := fmt.Sprintf("frame-%03d.png", i+1)
		if err := addZipFile(zw, name, buf.Bytes()); err != nil {
			return err
		}
		man.Frames = append(man.Frames, ManifestFrame{
			File:  name,
			Drag:  [4]int{f.Drag.X, f.Drag.Y, f.Drag.W, f.Drag.H},
			Lines: len(f.Lines),
		})
	}
	data, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	if err := addZipFile(zw, "manifest.json", data); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("zip create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("zip write %s: %w", name, err)
	}
	return nil
}
