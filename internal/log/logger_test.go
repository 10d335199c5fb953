/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func lastJSONLine(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var last string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", last, err)
	}
	return m
}

func TestInit_FileGetsStaticAndSessionAttrs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapline.json")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "json", File: path, Console: &console})

	l := WithOperation(WithComponent("drag"), "frame")
	ctx := WithSession(context.Background(), "abc-123")
	l.InfoContext(ctx, "snapped", slog.Int("dx", -3))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, m := range []map[string]any{lastJSONLine(t, data), lastJSONLine(t, console.Bytes())} {
		if m["app"] != "snapline" || m["component"] != "drag" || m["op"] != "frame" {
			t.Fatalf("static attrs missing: %v", m)
		}
		if _, ok := m["ver"].(string); !ok {
			t.Fatalf("ver missing: %v", m)
		}
		if m["session"] != "abc-123" || m["msg"] != "snapped" || m["dx"] != float64(-3) {
			t.Fatalf("record attrs wrong: %v", m)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SNL_LOG_LEVEL", "warn")
	t.Setenv("SNL_LOG_FORMAT", "json")
	t.Setenv("SNL_LOG_SOURCE", "TRUE")
	t.Setenv("SNL_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv = %+v", opts)
	}
	if v := envOr("SNL_SURELY_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("envOr fallback = %q", v)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, " WARN ": slog.LevelWarn, "warning": slog.LevelWarn,
		"error": slog.LevelError, "": slog.LevelInfo, "loud": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	var h slog.Handler = &consoleHandler{level: slog.LevelWarn, w: &buf, mu: &sync.Mutex{}}

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info must be filtered at warn")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error must pass at warn")
	}

	h = h.WithAttrs([]slog.Attr{slog.String("shape", "box 1")}).WithGroup("frame")
	r := slog.NewRecord(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), slog.LevelError, "no snap", 0)
	r.AddAttrs(slog.Int("seq", 4), slog.Float64("ratio", 0.5), slog.Bool("x", true),
		slog.Group("off", slog.Int("dx", 1)))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	want := `03:04:05.000 ERR no snap shape="box 1" frame.seq=4 frame.ratio=0.5 frame.x=true frame.off.dx=1` + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("console line\n got %q\nwant %q", got, want)
	}
}

func TestSessionHandlerWithoutSession(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(sessionAware(slog.NewJSONHandler(&buf, nil)))
	l.Info("plain")
	if strings.Contains(buf.String(), "session") {
		t.Fatalf("unexpected session attr: %s", buf.String())
	}
	if _, ok := SessionFrom(context.Background()); ok {
		t.Fatalf("empty context has no session")
	}
	if _, ok := SessionFrom(WithSession(context.Background(), "")); ok {
		t.Fatalf("empty id is no session")
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("discard logger should be disabled")
	}
}
