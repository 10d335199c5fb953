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
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"snapline/internal/crash"
	"snapline/internal/geom"
	"snapline/internal/history"
	applog "snapline/internal/log"
	"snapline/internal/scene"
	"snapline/internal/snap"
)

func (a *app) loadScene(path string) (*scene.Scene, error) {
	sc, err := scene.Load(path, scene.Options{
		History: history.Config{
			MaxPerShape: a.cfg.History.Depth,
			MinInterval: time.Duration(a.cfg.History.CoalesceMS) * time.Millisecond,
		},
		Logger: applog.WithComponent("scene"),
	})
	if err != nil {
		return nil, err
	}
	a.crash.Set(func(c *crash.Context) { c.Scene = path })
	return sc, nil
}

// snapOptions merges the command flags over the configured snap settings.
func (a *app) snapOptions(distance int, axes string) (snap.Options, snap.Axes, error) {
	if distance <= 0 {
		distance = a.cfg.Snap.Distance
	}
	if axes == "" {
		axes = a.cfg.Snap.Axes
	}
	ax, err := snap.ParseAxes(axes)
	if err != nil {
		return snap.Options{}, 0, err
	}
	return snap.Options{SnapDistance: distance, Logger: applog.WithComponent("snap")}, ax, nil
}

// parsePath reads "x,y;x,y;..." into points.
func parsePath(s string) ([]geom.Pt, error) {
	var out []geom.Pt
	for i, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		xy := strings.Split(part, ",")
		if len(xy) != 2 {
			return nil, fmt.Errorf("path point %d: %q is not x,y", i+1, part)
		}
		x, err := strconv.Atoi(strings.TrimSpace(xy[0]))
		if err != nil {
			return nil, fmt.Errorf("path point %d: %w", i+1, err)
		}
		y, err := strconv.Atoi(strings.TrimSpace(xy[1]))
		if err != nil {
			return nil, fmt.Errorf("path point %d: %w", i+1, err)
		}
		out = append(out, geom.Pt{X: x, Y: y})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("path is empty")
	}
	return out, nil
}

// parseDir maps a direction name to a unit step.
func parseDir(s string) (geom.Pt, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return geom.Pt{X: -1}, nil
	case "right":
		return geom.Pt{X: 1}, nil
	case "up":
		return geom.Pt{Y: -1}, nil
	case "down":
		return geom.Pt{Y: 1}, nil
	}
	return geom.Pt{}, fmt.Errorf("unknown direction %q (want left, right, up or down)", s)
}

func formatLines(lines []snap.RenderedLine) string {
	if len(lines) == 0 {
		return "none"
	}
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.String()
	}
	return strings.Join(parts, ", ")
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scene>",
		Short: "Check a scene file against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := a.loadScene(args[0])
			if err != nil {
				a.log.Error("invalid scene", slog.String("path", args[0]), slog.Any("err", err))
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (%d shapes)\n", sc.Name(), len(sc.Candidates()))
			return err
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of scene files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(scene.Schema())
			return err
		},
	}
}

// saveScene writes sc back to path and reports it.
func saveScene(cmd *cobra.Command, sc *scene.Scene, path string) error {
	if err := sc.Save(path); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return err
}
