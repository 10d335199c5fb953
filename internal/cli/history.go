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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"snapline/internal/scene"
	"snapline/internal/snap"
)

func newUndoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <scene> <shape>",
		Short: "Revert the latest move of a shape and write the scene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.step(cmd, args[0], args[1], "undo", (*scene.Scene).Undo)
		},
	}
}

func newRedoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "redo <scene> <shape>",
		Short: "Reapply the latest undone move of a shape and write the scene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.step(cmd, args[0], args[1], "redo", (*scene.Scene).Redo)
		},
	}
}

// step runs one undo or redo of shape and saves the scene when it moved.
func (a *app) step(cmd *cobra.Command, scenePath, shape, verb string, apply func(*scene.Scene, string) (bool, error)) error {
	sc, err := a.loadScene(scenePath)
	if err != nil {
		return err
	}
	from, ok := sc.Bounds(shape)
	if !ok {
		return fmt.Errorf("%w: %s", snap.ErrUnknownShape, shape)
	}
	out := cmd.OutOrStdout()
	moved, err := apply(sc, shape)
	if err != nil {
		return err
	}
	if !moved {
		_, err := fmt.Fprintf(out, "nothing to %s for %s\n", verb, shape)
		return err
	}
	to, _ := sc.Bounds(shape)
	fmt.Fprintf(out, "%s %s: %v -> %v\n", verb, shape, from.Min(), to.Min())
	return saveScene(cmd, sc, scenePath)
}

func newHistoryCmd(a *app) *cobra.Command {
	var forget string
	cmd := &cobra.Command{
		Use:   "history <scene>",
		Short: "List the saved move history of a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := a.loadScene(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if forget != "" {
				if err := sc.Forget(forget); err != nil {
					return err
				}
				fmt.Fprintf(out, "cleared history of %s\n", forget)
				return saveScene(cmd, sc, args[0])
			}
			moves, shapes := sc.History().Stats()
			fmt.Fprintf(out, "%d undoable moves on %d shapes\n", moves, shapes)
			h := sc.Document().History
			if h == nil {
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SHAPE\tSTACK\tDELTA\tAT")
			for _, m := range h.Undo {
				fmt.Fprintf(tw, "%s\tundo\t(%d,%d)\t%s\n", m.Shape, m.DX, m.DY, stamp(m.At))
			}
			for _, m := range h.Redo {
				fmt.Fprintf(tw, "%s\tredo\t(%d,%d)\t%s\n", m.Shape, m.DX, m.DY, stamp(m.At))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&forget, "clear", "", "drop the history of this shape and write the scene")
	return cmd
}
