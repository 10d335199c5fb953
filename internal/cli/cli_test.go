/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"snapline/internal/config"
	"snapline/internal/crash"
	"snapline/internal/geom"
	"snapline/internal/journal"
	applog "snapline/internal/log"
	"snapline/internal/scene"
	"snapline/internal/snap"
	"snapline/internal/version"
)

const rowScene = `{
  "name": "row",
  "shapes": [
    {"id": "root", "bounds": {"x": 0, "y": 0, "w": 500, "h": 500}},
    {"id": "a", "parent": "root", "bounds": {"x": 100, "y": 100, "w": 50, "h": 20}},
    {"id": "b", "parent": "root", "bounds": {"x": 260, "y": 100, "w": 60, "h": 30}}
  ]
}
`

type memSecrets map[string]string

func (m memSecrets) Get(service, key string) (string, error) {
	v, ok := m[service+"/"+key]
	if !ok {
		return "", config.ErrNoSecret
	}
	return v, nil
}

func (m memSecrets) Set(service, key, value string) error {
	m[service+"/"+key] = value
	return nil
}

func (m memSecrets) Delete(service, key string) error {
	delete(m, service+"/"+key)
	return nil
}

type env struct {
	dir     string
	scene   string
	cfg     string
	secrets memSecrets
}

func newEnv(t *testing.T) *env {
	t.Helper()
	for _, k := range []string{config.EnvJournalDSN, config.EnvSnapDistance, config.EnvSnapAxes, config.EnvLogFile} {
		t.Setenv(k, "")
	}
	e := &env{dir: t.TempDir(), secrets: memSecrets{}}
	t.Cleanup(config.UseSecretStore(e.secrets))
	e.scene = filepath.Join(e.dir, "row.json")
	e.cfg = filepath.Join(e.dir, "config.yaml")
	if err := os.WriteFile(e.scene, []byte(rowScene), 0o644); err != nil {
		t.Fatalf("write scene: %v", err)
	}
	return e
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	all := append([]string{"--config", e.cfg, "--log-level", "error"}, args...)
	err := Execute(context.Background(), all, &out, &errOut, &crash.Context{})
	return out.String(), err
}

func (e *env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("snapline %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func boundsIn(t *testing.T, path, id string) geom.Rect {
	t.Helper()
	sc, err := scene.Load(path, scene.Options{})
	if err != nil {
		t.Fatalf("reload scene: %v", err)
	}
	b, ok := sc.Bounds(id)
	if !ok {
		t.Fatalf("shape %s missing", id)
	}
	return b
}

func TestValidate(t *testing.T) {
	e := newEnv(t)
	if out := e.mustRun(t, "validate", e.scene); out != "ok: row (3 shapes)\n" {
		t.Fatalf("validate output %q", out)
	}
	bad := filepath.Join(e.dir, "bad.json")
	_ = os.WriteFile(bad, []byte(`{"shapes":[{"id":"a"}]}`), 0o644)
	if _, err := e.run(t, "validate", bad); !errors.Is(err, scene.ErrInvalid) {
		t.Fatalf("validate bad scene: %v", err)
	}
}

func TestDragJournalExportWrite(t *testing.T) {
	e := newEnv(t)
	db := filepath.Join(e.dir, "journal", "j.sqlite")
	svg := filepath.Join(e.dir, "out", "last.svg")

	out := e.mustRun(t, "--journal", db, "drag", e.scene, "a", "--path", "200,140; 255,103", "--export", svg, "--write")
	for _, want := range []string{
		"#1 (200,140) -> (200,140) lines: none\n",
		"#2 (255,103) -> (260,100) snap xy lines: standard (260,100)-(260,130), standard (260,100)-(320,100)\n",
		"moved a from (100,100) to (260,100)\n",
		"exported " + svg,
		"wrote " + e.scene,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("drag output lacks %q:\n%s", want, out)
		}
	}
	if b := boundsIn(t, e.scene, "a"); b != geom.R(260, 100, 50, 20) {
		t.Fatalf("a written at %v", b)
	}
	data, err := os.ReadFile(svg)
	if err != nil || !bytes.Contains(data, []byte(`class="standard"`)) {
		t.Fatalf("exported svg: %v\n%s", err, data)
	}

	m := regexp.MustCompile(`journal session ([0-9a-f-]{36})`).FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no session id in output:\n%s", out)
	}
	id := m[1]
	ls := e.mustRun(t, "--journal", db, "journal", "ls")
	if !strings.Contains(ls, id) || !strings.Contains(ls, "row") {
		t.Fatalf("journal ls:\n%s", ls)
	}
	show := e.mustRun(t, "--journal", db, "journal", "show", id[:8])
	for _, want := range []string{
		"session " + id,
		"scene row, shape a, snap distance 8",
		"#1 [200,140 50x20] offset (0,0) lines [] erased 0",
		"#2 [255,103 50x20] offset (5,-3) lines [standard standard]",
	} {
		if !strings.Contains(show, want) {
			t.Fatalf("journal show lacks %q:\n%s", want, show)
		}
	}
}

func TestDragFramesAndDistance(t *testing.T) {
	e := newEnv(t)
	dir := filepath.Join(e.dir, "frames")
	out := e.mustRun(t, "drag", e.scene, "a", "--path", "255,103", "--distance", "2", "--export-frames", dir, "--formats", "svg,zip")
	if !strings.Contains(out, "#1 (255,103) -> (255,103) lines: none") {
		t.Fatalf("distance 2 should not snap:\n%s", out)
	}
	if strings.Contains(out, "journal session") {
		t.Fatalf("journal used without a dsn:\n%s", out)
	}
	for _, p := range []string{filepath.Join(dir, "svg", "frame-001.svg"), filepath.Join(dir, "frame.zip")} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
	}
	if b := boundsIn(t, e.scene, "a"); b != geom.R(100, 100, 50, 20) {
		t.Fatalf("scene written without --write: %v", b)
	}

	out = e.mustRun(t, "drag", e.scene, "a", "--path", "255,103", "--axes", "y")
	if !strings.Contains(out, "-> (255,100) snap y lines: standard (255,100)-(320,100)") {
		t.Fatalf("y-only drag:\n%s", out)
	}
}

func TestDragLogEndsInterruptedSession(t *testing.T) {
	ctx := context.Background()
	j, err := journal.Open(ctx, filepath.Join(t.TempDir(), "journal.db"), "")
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer j.Close()
	rec, err := beginDragLog(ctx, j, "row", "a", 8, applog.Discard())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := rec.frame(cancelled, 0, geom.R(100, 100, 50, 20), snap.Frame{}); err == nil {
		t.Fatalf("frame on a cancelled context should fail")
	}
	rec.close(cancelled)
	s, err := j.Session(ctx, rec.id)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if s.EndedAt.IsZero() || s.Frames != 0 {
		t.Fatalf("interrupted session = %+v", s)
	}
	rec.close(ctx)
	if err := rec.end(ctx); err != nil {
		t.Fatalf("second end: %v", err)
	}
	var none *dragLog
	if err := none.frame(ctx, 0, geom.Rect{}, snap.Frame{}); err != nil || none.end(ctx) != nil {
		t.Fatalf("nil dragLog should record nothing")
	}
	none.close(ctx)
}

func TestOverlayAccounting(t *testing.T) {
	sc, err := scene.Parse([]byte(rowScene), scene.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := &scene.Canvas{}
	s, err := snap.Start(sc, c, "a", snap.Options{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := s.OnMove(geom.R(255, 103, 50, 20)); err != nil {
		t.Fatalf("move: %v", err)
	}
	if drawn, erased := drainOverlay(c); drawn != 2 || erased != 0 {
		t.Fatalf("snapped frame drew %d and erased %d", drawn, erased)
	}
	if len(c.Ops()) != 0 {
		t.Fatalf("ops kept after drain: %v", c.Ops())
	}
	if _, err := s.OnMove(geom.R(200, 300, 50, 20)); err != nil {
		t.Fatalf("move: %v", err)
	}
	if drawn, erased := drainOverlay(c); drawn != 0 || erased == 0 {
		t.Fatalf("free frame drew %d and erased %d", drawn, erased)
	}
	if overlayCleared(c) {
		t.Fatalf("overlay cleared before the session ended")
	}
	s.OnEnd()
	if !overlayCleared(c) {
		t.Fatalf("overlay not cleared after end: %v", c.Visible())
	}
}

func TestDragErrors(t *testing.T) {
	e := newEnv(t)
	cases := [][]string{
		{"drag", e.scene, "a", "--path", "1;2"},
		{"drag", e.scene, "a", "--path", ""},
		{"drag", e.scene, "ghost", "--path", "1,2"},
		{"drag", e.scene, "a", "--path", "1,2", "--axes", "z"},
		{"drag", e.scene, "a", "--path", "1,2", "--export-frames", e.dir, "--formats", "gif"},
		{"drag", e.scene, "a"},
	}
	for _, args := range cases {
		if _, err := e.run(t, args...); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}

func TestNudge(t *testing.T) {
	e := newEnv(t)
	if out := e.mustRun(t, "nudge", e.scene, "a", "--dir", "right"); out != "nudge a by (160,0) to (260,100)\n" {
		t.Fatalf("nudge right: %q", out)
	}
	if out := e.mustRun(t, "nudge", e.scene, "a", "--dir", "left"); out != "no snap line left of a\n" {
		t.Fatalf("nudge left: %q", out)
	}
	e.mustRun(t, "nudge", e.scene, "a", "--dir", "down", "--write")
	if b := boundsIn(t, e.scene, "a"); b != geom.R(100, 110, 50, 20) {
		t.Fatalf("a after nudge down = %v", b)
	}
	if _, err := e.run(t, "nudge", e.scene, "a", "--dir", "sideways"); err == nil {
		t.Fatalf("bad direction accepted")
	}
}

func TestNudgeBurstUndoesInOneStep(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "nudge", e.scene, "a", "--dir", "right", "--repeat", "5", "--write")
	want := "nudge a by (160,0) to (260,100)\nnudge a by (10,0) to (270,100)\nwrote " + e.scene + "\n"
	if out != want {
		t.Fatalf("nudge burst:\n%s", out)
	}
	out = e.mustRun(t, "history", e.scene)
	if !strings.HasPrefix(out, "1 undoable moves on 1 shapes\n") || !regexp.MustCompile(`a\s+undo\s+\(170,0\)`).MatchString(out) {
		t.Fatalf("history after burst:\n%s", out)
	}

	if out := e.mustRun(t, "undo", e.scene, "a"); out != "undo a: (270,100) -> (100,100)\nwrote "+e.scene+"\n" {
		t.Fatalf("undo: %q", out)
	}
	if b := boundsIn(t, e.scene, "a"); b != geom.R(100, 100, 50, 20) {
		t.Fatalf("a after undo = %v", b)
	}
	if out := e.mustRun(t, "undo", e.scene, "a"); out != "nothing to undo for a\n" {
		t.Fatalf("second undo: %q", out)
	}
	if out := e.mustRun(t, "redo", e.scene, "a"); out != "redo a: (100,100) -> (270,100)\nwrote "+e.scene+"\n" {
		t.Fatalf("redo: %q", out)
	}
	if out := e.mustRun(t, "history", e.scene, "--clear", "a"); out != "cleared history of a\nwrote "+e.scene+"\n" {
		t.Fatalf("history --clear: %q", out)
	}
	if out := e.mustRun(t, "history", e.scene); out != "0 undoable moves on 0 shapes\n" {
		t.Fatalf("history after clear: %q", out)
	}
	if b := boundsIn(t, e.scene, "a"); b != geom.R(270, 100, 50, 20) {
		t.Fatalf("a after clear = %v", b)
	}
	if _, err := e.run(t, "undo", e.scene, "ghost"); !errors.Is(err, snap.ErrUnknownShape) {
		t.Fatalf("undo ghost: %v", err)
	}
	if _, err := e.run(t, "nudge", e.scene, "a", "--dir", "up", "--repeat", "0"); err == nil {
		t.Fatalf("--repeat 0 accepted")
	}
}

func TestHistoryDepthFromConfig(t *testing.T) {
	e := newEnv(t)
	_ = os.WriteFile(e.cfg, []byte("history:\n  depth: 1\n  coalesce_ms: 1\n"), 0o600)
	e.mustRun(t, "nudge", e.scene, "a", "--dir", "right", "--write")
	time.Sleep(5 * time.Millisecond)
	e.mustRun(t, "nudge", e.scene, "a", "--dir", "right", "--write")
	if out := e.mustRun(t, "history", e.scene); !strings.HasPrefix(out, "1 undoable moves on 1 shapes\n") {
		t.Fatalf("history with depth 1:\n%s", out)
	}
	e.mustRun(t, "undo", e.scene, "a")
	if b := boundsIn(t, e.scene, "a"); b != geom.R(260, 100, 50, 20) {
		t.Fatalf("a after undo = %v", b)
	}
}

func TestSchemaCommand(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "schema")
	if !strings.Contains(out, `"title": "snapline scene"`) || !strings.Contains(out, `"history"`) {
		t.Fatalf("schema output:\n%s", out)
	}
}

func TestJournalNeedsDSN(t *testing.T) {
	e := newEnv(t)
	if _, err := e.run(t, "journal", "ls"); !errors.Is(err, ErrNoJournal) {
		t.Fatalf("journal ls without dsn: %v", err)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	e := newEnv(t)
	if out := e.mustRun(t, "config", "init", "--password", "pw"); out != "wrote "+e.cfg+"\n" {
		t.Fatalf("config init: %q", out)
	}
	if e.secrets["Snapline/journal_password"] != "pw" {
		t.Fatalf("password not stored: %v", e.secrets)
	}
	_ = os.WriteFile(e.cfg, []byte("snap:\n  distance: 12\n"), 0o600)
	out := e.mustRun(t, "config", "show")
	if !strings.Contains(out, "distance: 12") || !strings.Contains(out, "axes: both") {
		t.Fatalf("config show:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	if out := e.mustRun(t, "version"); !strings.Contains(out, version.Version) {
		t.Fatalf("version output %q", out)
	}
}

func TestParsePathAndDir(t *testing.T) {
	pts, err := parsePath(" 1,2 ;3, 4;")
	if err != nil || len(pts) != 2 || pts[1] != (geom.Pt{X: 3, Y: 4}) {
		t.Fatalf("parsePath = %v, %v", pts, err)
	}
	for _, bad := range []string{"", "1", "a,b", "1,2,3"} {
		if _, err := parsePath(bad); err == nil {
			t.Errorf("parsePath(%q) accepted", bad)
		}
	}
	if d, err := parseDir("Up"); err != nil || d != (geom.Pt{Y: -1}) {
		t.Fatalf("parseDir = %v, %v", d, err)
	}
}
