/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic in a command into a logged error, a crash
// report on disk and a non-zero exit.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	applog "snapline/internal/log"
	"snapline/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Context describes what the process was working on. Commands fill it in as
// they go; Recover reads it when a panic happens.
type Context struct {
	mu sync.Mutex
	// Dir receives the report; empty means os.TempDir().
	Dir     string
	Scene   string
	Shape   string
	Session string
	// Autosave writes the in-memory scene somewhere safe and returns the path.
	Autosave func() (string, error)
}

// Set updates the context under its lock.
func (c *Context) Set(fn func(c *Context)) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c)
}

func (c *Context) snapshot() (dir, sc, shape, session string, autosave func() (string, error)) {
	if c == nil {
		return "", "", "", "", nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Dir, c.Scene, c.Shape, c.Session, c.Autosave
}

// Recover captures a panic, logs an error with stacktrace,
// writes an error report file, and attempts a crash-safe autosave
// of the scene (if the context offers one).
//
// Usage: defer crash.Recover(ctx)
func Recover(c *Context) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(c, r, stack)
		if err != nil {
			l.Error("crash report failed", slog.Any("err", err))
		}
		if _, _, _, _, autosave := c.snapshot(); autosave != nil {
			if path, err := autosave(); err != nil {
				l.Error("autosave after crash failed", slog.Any("err", err))
			} else {
				l.Info("scene autosaved after crash", slog.String("path", path))
			}
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		exitFn(2)
	}
}

func writeReport(c *Context, panicVal any, stack []byte) (string, error) {
	dir, sc, shape, session, _ := c.snapshot()
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("crash dir: %w", err)
	}
	now := time.Now()
	path := filepath.Join(dir, fmt.Sprintf("snapline-crash-%s.log", now.Format("20060102-150405")))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Snapline Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if sc != "" {
		_, _ = fmt.Fprintf(&buf, "Scene: %s\n", sc)
	}
	if shape != "" {
		_, _ = fmt.Fprintf(&buf, "Shape: %s\n", shape)
	}
	if session != "" {
		_, _ = fmt.Fprintf(&buf, "Session: %s\n", session)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
