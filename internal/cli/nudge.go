/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"snapline/internal/snap"
)

func newNudgeCmd(a *app) *cobra.Command {
	var (
		dir    string
		write  bool
		repeat int
	)
	cmd := &cobra.Command{
		Use:   "nudge <scene> <shape>",
		Short: "Move a shape to the nearest snap line in a direction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenePath, shape := args[0], args[1]
			step, err := parseDir(dir)
			if err != nil {
				return err
			}
			if repeat < 1 {
				return fmt.Errorf("--repeat must be at least 1, got %d", repeat)
			}
			opts, _, err := a.snapOptions(0, "")
			if err != nil {
				return err
			}
			sc, err := a.loadScene(scenePath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			moved := 0
			for moved < repeat {
				off, err := snap.OffsetToNearestSnap(sc, snap.ShapeID(shape), step, opts)
				if err != nil {
					return err
				}
				if off.X == 0 && off.Y == 0 {
					break
				}
				if err := sc.Move(shape, off.X, off.Y); err != nil {
					return err
				}
				b, _ := sc.Bounds(shape)
				fmt.Fprintf(out, "nudge %s by %v to %v\n", shape, off, b.Min())
				moved++
			}
			if moved == 0 {
				_, err := fmt.Fprintf(out, "no snap line %s of %s\n", dir, shape)
				return err
			}
			if write {
				return saveScene(cmd, sc, scenePath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "direction: left, right, up or down")
	cmd.Flags().BoolVar(&write, "write", false, "write the moved shape back to the scene file")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "nudge up to this many times; the burst undoes in one step")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}
