/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package journal records drag sessions and their frames in SQLite or
// PostgreSQL so they can be listed and replayed later.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	// PostgreSQL through database/sql
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"

	"snapline/internal/geom"
	applog "snapline/internal/log"
	"snapline/internal/snap"
	"snapline/internal/version"
)

// schemaVersion tracks the journal schema. Bump it together with a new step
// in runMigrations.
const schemaVersion = 2

var (
	ErrUnknownSession = errors.New("journal: unknown session")
	ErrNoDSN          = errors.New("journal: dsn is required")
)

type dialect uint8

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// driverFor picks the database/sql driver for dsn.
func driverFor(dsn string) (string, dialect) {
	l := strings.ToLower(dsn)
	if strings.HasPrefix(l, "postgres://") || strings.HasPrefix(l, "postgresql://") {
		return "pgx", dialectPostgres
	}
	return "sqlite", dialectSQLite
}

// withPassword sets password on a postgres URL that names a user but carries
// no password of its own.
func withPassword(dsn, password string) (string, error) {
	if password == "" {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	if u.User == nil {
		return dsn, nil
	}
	if _, set := u.User.Password(); set {
		return dsn, nil
	}
	u.User = url.UserPassword(u.User.Username(), password)
	return u.String(), nil
}

// sqliteDSN turns a file path into a driver URI with shared cache and a busy
// timeout. A DSN that already starts with "file:" is kept.
func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
}

// rebind rewrites ? placeholders into $n for postgres.
func rebind(d dialect, q string) string {
	if d != dialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Journal is a handle on an open journal database. It is safe for
// concurrent use.
type Journal struct {
	db      *sql.DB
	dialect dialect
	dir     string
	log     *slog.Logger
	now     func() time.Time
}

// Open connects to dsn, creates the schema when missing and migrates it to
// the current version. password is used for postgres URLs without one.
func Open(ctx context.Context, dsn, password string) (*Journal, error) {
	l := applog.WithOperation(applog.WithComponent("journal"), "open")
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrNoDSN
	}
	driver, d := driverFor(dsn)
	j := &Journal{dialect: d, log: applog.WithComponent("journal"), now: time.Now}

	source := dsn
	switch d {
	case dialectPostgres:
		var err error
		if source, err = withPassword(dsn, password); err != nil {
			return nil, err
		}
	default:
		path := strings.TrimPrefix(strings.SplitN(dsn, "?", 2)[0], "file:")
		j.dir = filepath.Dir(path)
		if err := os.MkdirAll(j.dir, 0o755); err != nil {
			l.Error("create journal dir failed", slog.Any("err", err))
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
		source = sqliteDSN(dsn)
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		l.Error("open failed", slog.String("driver", driver), slog.Any("err", err))
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	j.db = db
	if d == dialectSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		for _, q := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA foreign_keys=ON;"} {
			if _, err := db.ExecContext(ctx, q); err != nil {
				_ = db.Close()
				l.Error("pragma failed", slog.String("pragma", q), slog.Any("err", err))
				return nil, fmt.Errorf("%s: %w", q, err)
			}
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		l.Error("ping failed", slog.String("driver", driver), slog.Any("err", err))
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if err := j.ensureVersion(ctx); err != nil {
		_ = db.Close()
		l.Error("ensure version failed", slog.Any("err", err))
		return nil, err
	}
	if err := j.runMigrations(ctx); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("journal ready", slog.String("driver", driver))
	return j, nil
}

// Close releases the database.
func (j *Journal) Close() error { return j.db.Close() }

// Dir is the directory holding a SQLite journal; it is empty for postgres.
func (j *Journal) Dir() string { return j.dir }

func (j *Journal) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return j.db.ExecContext(ctx, rebind(j.dialect, q), args...)
}

// stampLayout keeps every stamp the same width so text order is time order.
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (j *Journal) stamp() string { return j.now().UTC().Format(stampLayout) }

func (j *Journal) ensureVersion(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS version (
		id          INTEGER PRIMARY KEY CHECK(id=1),
		schema      INTEGER NOT NULL,
		app         TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`
	if _, err := j.exec(ctx, ddl); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}
	now, appv := j.stamp(), version.String()
	var cur int
	err := j.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// A fresh database starts at step 0 and migrates all the way.
		if _, err := j.exec(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 0, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := j.exec(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// migrations[i] moves the schema from version i to i+1.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS sessions (
			id          TEXT PRIMARY KEY,
			scene       TEXT NOT NULL,
			shape       TEXT NOT NULL,
			started_at  TEXT NOT NULL,
			ended_at    TEXT,
			frames      INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS frames (
			session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq         INTEGER NOT NULL,
			x           INTEGER NOT NULL,
			y           INTEGER NOT NULL,
			w           INTEGER NOT NULL,
			h           INTEGER NOT NULL,
			dx          INTEGER NOT NULL,
			dy          INTEGER NOT NULL,
			snap_x      INTEGER NOT NULL,
			snap_y      INTEGER NOT NULL,
			lines       TEXT NOT NULL,
			invalidated INTEGER NOT NULL,
			PRIMARY KEY (session_id, seq)
		)`,
	},
	{
		`ALTER TABLE sessions ADD COLUMN snap_distance INTEGER NOT NULL DEFAULT 8`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at)`,
	},
}

// Migrations are applied one step per transaction.
func (j *Journal) runMigrations(ctx context.Context) error {
	var cur int
	if err := j.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		j.log.Warn("journal schema is newer than this build", slog.Int("schema", cur))
		return nil
	}
	for ; cur < schemaVersion; cur++ {
		next := cur + 1
		tx, err := j.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range migrations[cur] {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, rebind(j.dialect, `UPDATE version SET schema=?, updated_at=? WHERE id=1`), next, j.stamp()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		j.log.Debug("migrated", slog.Int("schema", next))
	}
	return nil
}

// SchemaVersion reports the schema version stored in the database.
func (j *Journal) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := j.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v)
	return v, err
}

// Session describes one recorded drag.
type Session struct {
	ID           string
	Scene        string
	Shape        string
	SnapDistance int
	StartedAt    time.Time
	// EndedAt is zero while the session is open.
	EndedAt time.Time
	Frames  int
}

// Line is the stored form of a rendered snap line.
type Line struct {
	Type string  `json:"type"`
	Side string  `json:"side,omitempty"`
	A    geom.Pt `json:"a"`
	B    geom.Pt `json:"b"`
}

// FrameRecord is one stored frame of a session.
type FrameRecord struct {
	Seq          int
	Bounds       geom.Rect
	Offset       geom.Pt
	SnapX, SnapY bool
	Lines        []Line
	Invalidated  int
}

// RecordOf converts a session frame produced for the drag rect bounds.
func RecordOf(seq int, bounds geom.Rect, f snap.Frame) FrameRecord {
	rec := FrameRecord{
		Seq:         seq,
		Bounds:      bounds,
		Offset:      f.Offset,
		SnapX:       f.SnapX,
		SnapY:       f.SnapY,
		Lines:       make([]Line, 0, len(f.Lines)),
		Invalidated: len(f.Invalidated),
	}
	for _, l := range f.Lines {
		ln := Line{Type: l.Type.String(), A: l.A, B: l.B}
		if l.Side != snap.SideNone {
			ln.Side = l.Side.String()
		}
		rec.Lines = append(rec.Lines, ln)
	}
	return rec
}

// Begin opens a new session and returns its id.
func (j *Journal) Begin(ctx context.Context, scene, shape string, snapDistance int) (string, error) {
	id := uuid.NewString()
	_, err := j.exec(ctx, `INSERT INTO sessions (id, scene, shape, started_at, snap_distance) VALUES(?, ?, ?, ?, ?)`,
		id, scene, shape, j.stamp(), snapDistance)
	if err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}
	applog.WithOperation(j.log, "begin").Debug("session started",
		slog.String("session", id), slog.String("scene", scene), slog.String("shape", shape))
	return id, nil
}

// Frame appends f to session id.
func (j *Journal) Frame(ctx context.Context, id string, f FrameRecord) error {
	lines, err := json.Marshal(f.Lines)
	if err != nil {
		return fmt.Errorf("encode lines: %w", err)
	}
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}
	res, err := tx.ExecContext(ctx, rebind(j.dialect, `UPDATE sessions SET frames = frames + 1 WHERE id=? AND ended_at IS NULL`), id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("count frame: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	_, err = tx.ExecContext(ctx, rebind(j.dialect, `INSERT INTO frames
		(session_id, seq, x, y, w, h, dx, dy, snap_x, snap_y, lines, invalidated)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		id, f.Seq, f.Bounds.X, f.Bounds.Y, f.Bounds.W, f.Bounds.H, f.Offset.X, f.Offset.Y,
		boolInt(f.SnapX), boolInt(f.SnapY), string(lines), f.Invalidated)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert frame: %w", err)
	}
	return tx.Commit()
}

// End closes session id. Ending a closed session is an error.
func (j *Journal) End(ctx context.Context, id string) error {
	res, err := j.exec(ctx, `UPDATE sessions SET ended_at=? WHERE id=? AND ended_at IS NULL`, j.stamp(), id)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return nil
}

// Sessions lists the latest sessions first; limit <= 0 means all.
func (j *Journal) Sessions(ctx context.Context, limit int) ([]Session, error) {
	q := `SELECT id, scene, shape, snap_distance, started_at, ended_at, frames FROM sessions ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, rebind(j.dialect, q), args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	var out []Session
	for rows.Next() {
		var (
			s       Session
			started string
			ended   sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Scene, &s.Shape, &s.SnapDistance, &started, &ended, &s.Frames); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if ended.Valid {
			s.EndedAt, _ = time.Parse(time.RFC3339Nano, ended.String)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Session returns the session with id; prefix lookups are allowed when they
// are unambiguous.
func (j *Journal) Session(ctx context.Context, id string) (Session, error) {
	all, err := j.Sessions(ctx, 0)
	if err != nil {
		return Session{}, err
	}
	var hit []Session
	for _, s := range all {
		if s.ID == id {
			return s, nil
		}
		if strings.HasPrefix(s.ID, id) {
			hit = append(hit, s)
		}
	}
	if len(hit) != 1 || id == "" {
		return Session{}, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return hit[0], nil
}

// Frames returns the frames of session id in order.
func (j *Journal) Frames(ctx context.Context, id string) ([]FrameRecord, error) {
	rows, err := j.db.QueryContext(ctx, rebind(j.dialect, `SELECT seq, x, y, w, h, dx, dy, snap_x, snap_y, lines, invalidated
		FROM frames WHERE session_id=? ORDER BY seq`), id)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	defer rows.Close()
	var out []FrameRecord
	for rows.Next() {
		var (
			f      FrameRecord
			sx, sy int
			lines  string
		)
		if err := rows.Scan(&f.Seq, &f.Bounds.X, &f.Bounds.Y, &f.Bounds.W, &f.Bounds.H,
			&f.Offset.X, &f.Offset.Y, &sx, &sy, &lines, &f.Invalidated); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		f.SnapX, f.SnapY = sx != 0, sy != 0
		if err := json.Unmarshal([]byte(lines), &f.Lines); err != nil {
			return nil, fmt.Errorf("decode lines of frame %d: %w", f.Seq, err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
