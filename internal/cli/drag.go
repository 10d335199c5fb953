/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"snapline/internal/crash"
	"snapline/internal/export"
	"snapline/internal/geom"
	"snapline/internal/journal"
	applog "snapline/internal/log"
	"snapline/internal/scene"
	"snapline/internal/snap"
)

type dragOpts struct {
	path         string
	distance     int
	axes         string
	exportPath   string
	exportFrames string
	formats      string
	write        bool
	noJournal    bool
}

func newDragCmd(a *app) *cobra.Command {
	var o dragOpts
	cmd := &cobra.Command{
		Use:   "drag <scene> <shape>",
		Short: "Replay a drag of a shape and report every snap",
		Long: "drag starts a snap session for the shape, moves its bounds to every point of --path, " +
			"prints the snap offset and the lines shown for each frame, and finally applies the snapped move.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDrag(cmd, args[0], args[1], o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.path, "path", "", "drag positions as x,y;x,y;... (top-left corner of the shape)")
	f.IntVar(&o.distance, "distance", 0, "snap distance (default from config)")
	f.StringVar(&o.axes, "axes", "", "axes that may snap: x, y or both (default from config)")
	f.StringVar(&o.exportPath, "export", "", "render the last frame to this file (.svg, .png, .pdf or .zip)")
	f.StringVar(&o.exportFrames, "export-frames", "", "render every frame into this directory")
	f.StringVar(&o.formats, "formats", "svg", "comma separated formats for --export-frames")
	f.BoolVar(&o.write, "write", false, "write the moved shape back to the scene file")
	f.BoolVar(&o.noJournal, "no-journal", false, "do not record the session")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func (a *app) runDrag(cmd *cobra.Command, scenePath, shape string, o dragOpts) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	l := applog.WithOperation(a.log, "drag").With(slog.String("shape", shape))

	points, err := parsePath(o.path)
	if err != nil {
		return err
	}
	var formats []export.Format
	if o.exportFrames != "" {
		for _, s := range strings.Split(o.formats, ",") {
			f, err := export.ParseFormat(s)
			if err != nil {
				return err
			}
			formats = append(formats, f)
		}
	}
	st, err := export.StyleFrom(a.cfg.Render)
	if err != nil {
		return err
	}
	opts, axes, err := a.snapOptions(o.distance, o.axes)
	if err != nil {
		return err
	}
	sc, err := a.loadScene(scenePath)
	if err != nil {
		return err
	}
	start, ok := sc.Bounds(shape)
	if !ok {
		return fmt.Errorf("%w: %s", snap.ErrUnknownShape, shape)
	}
	a.crash.Set(func(c *crash.Context) {
		c.Shape = shape
		c.Autosave = func() (string, error) {
			p := scenePath + ".crash.json"
			return p, sc.Save(p)
		}
	})

	var rec *dragLog
	if !o.noJournal {
		j, err := a.openJournal(ctx, false)
		if err != nil {
			return err
		}
		if j != nil {
			defer j.Close()
			if rec, err = beginDragLog(ctx, j, sc.Name(), shape, opts.SnapDistance, l); err != nil {
				return err
			}
			defer rec.close(ctx)
			ctx = applog.WithSession(ctx, rec.id)
			a.crash.Set(func(c *crash.Context) { c.Session = rec.id })
			fmt.Fprintf(out, "journal session %s\n", rec.id)
		}
	}

	canvas := &scene.Canvas{}
	s, err := snap.Start(sc, canvas, snap.ShapeID(shape), opts)
	if err != nil {
		return err
	}
	defer s.OnEnd()

	var frames []export.Frame
	final := start
	for i, p := range points {
		bounds := geom.Rect{X: p.X, Y: p.Y, W: start.W, H: start.H}
		f, err := s.OnMoveAxes(bounds, axes)
		if err != nil {
			return err
		}
		final = bounds.Offset(f.Offset.X, f.Offset.Y)
		drawn, erased := drainOverlay(canvas)
		l.DebugContext(ctx, "frame", slog.Int("seq", i), slog.Int("drawn", drawn), slog.Int("erased", erased))
		fmt.Fprintf(out, "#%d %v -> %v%s lines: %s\n", i+1, p, final.Min(), snapTag(f), formatLines(f.Lines))
		if err := rec.frame(ctx, i, bounds, f); err != nil {
			return err
		}
		frames = append(frames, export.FrameOf(sc, shape, final, f.Lines))
	}
	s.OnEnd()
	if !overlayCleared(canvas) {
		l.WarnContext(ctx, "overlay not cleared", slog.Int("visible", len(canvas.Visible())))
	}
	if err := rec.end(ctx); err != nil {
		return err
	}

	if err := sc.MoveTo(shape, final.Min()); err != nil {
		return err
	}
	fmt.Fprintf(out, "moved %s from %v to %v\n", shape, start.Min(), final.Min())
	l.InfoContext(ctx, "drag replayed", slog.Int("frames", len(points)), slog.String("final", final.String()))

	if o.exportPath != "" {
		if err := export.WriteFile(o.exportPath, frames[len(frames)-1], st); err != nil {
			return err
		}
		fmt.Fprintf(out, "exported %s\n", o.exportPath)
	}
	if o.exportFrames != "" {
		paths, err := export.Batch(frames, st, export.BatchOptions{OutDir: o.exportFrames, Formats: formats})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "exported %d files to %s\n", len(paths), o.exportFrames)
	}
	if o.write {
		if err := sc.Save(scenePath); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", scenePath)
	}
	return nil
}

func snapTag(f snap.Frame) string {
	switch {
	case f.SnapX && f.SnapY:
		return " snap xy"
	case f.SnapX:
		return " snap x"
	case f.SnapY:
		return " snap y"
	}
	return ""
}

// drainOverlay counts the segments drawn and the regions erased on c since
// the previous call.
func drainOverlay(c *scene.Canvas) (drawn, erased int) {
	for _, op := range c.Ops() {
		switch op.Kind {
		case scene.OpDraw:
			drawn++
		case scene.OpInvalidate:
			erased++
		}
	}
	c.Reset()
	return drawn, erased
}

// overlayCleared reports whether the session handed c back with nothing
// left on it.
func overlayCleared(c *scene.Canvas) bool {
	return c.Released() && len(c.Visible()) == 0
}

// dragLog records one drag as a journal session. A nil *dragLog records
// nothing.
type dragLog struct {
	j    *journal.Journal
	id   string
	open bool
	log  *slog.Logger
}

func beginDragLog(ctx context.Context, j *journal.Journal, sceneName, shape string, distance int, l *slog.Logger) (*dragLog, error) {
	id, err := j.Begin(ctx, sceneName, shape, distance)
	if err != nil {
		return nil, err
	}
	return &dragLog{j: j, id: id, open: true, log: l}, nil
}

func (d *dragLog) frame(ctx context.Context, seq int, bounds geom.Rect, f snap.Frame) error {
	if d == nil {
		return nil
	}
	return d.j.Frame(ctx, d.id, journal.RecordOf(seq, bounds, f))
}

func (d *dragLog) end(ctx context.Context) error {
	if d == nil || !d.open {
		return nil
	}
	d.open = false
	return d.j.End(ctx, d.id)
}

// close ends a session a failed drag left open. It ignores cancellation of
// ctx so an interrupted drag is still closed.
func (d *dragLog) close(ctx context.Context) {
	if d == nil || !d.open {
		return
	}
	if err := d.end(context.WithoutCancel(ctx)); err != nil {
		d.log.WarnContext(ctx, "journal session left open", slog.String("session", d.id), slog.Any("err", err))
	}
}
