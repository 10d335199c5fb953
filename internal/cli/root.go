/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli holds the snapline command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"snapline/internal/config"
	"snapline/internal/crash"
	"snapline/internal/journal"
	applog "snapline/internal/log"
	"snapline/internal/version"
)

// ErrNoJournal is returned by journal commands when no DSN is configured.
var ErrNoJournal = errors.New("no journal configured (use --journal or journal.dsn)")

// app carries the state shared by all commands of one invocation.
type app struct {
	configPath string
	logLevel   string
	journalDSN string

	cfg      config.AppConfig
	password string
	crash    *crash.Context
	log      *slog.Logger
}

// NewRootCommand builds the command tree. cc is filled in as commands learn
// what they are working on; it may be nil.
func NewRootCommand(cc *crash.Context) *cobra.Command {
	a := &app{crash: cc, log: applog.Discard()}
	root := &cobra.Command{
		Use:           "snapline",
		Short:         "Snap-line drag assistance for scene files",
		Long:          "snapline replays drags and keyboard nudges against the shapes of a scene file, reports where the dragged shape snaps, and renders the alignment lines that show it.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetVersionTemplate("snapline {{.Version}}\n")
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (yaml or toml; default is the per-user config)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&a.journalDSN, "journal", "", "journal database: a SQLite file or a postgres:// URL")

	root.AddCommand(
		newValidateCmd(a),
		newDragCmd(a),
		newNudgeCmd(a),
		newUndoCmd(a),
		newRedoCmd(a),
		newHistoryCmd(a),
		newSchemaCmd(),
		newJournalCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string, out, errOut io.Writer, cc *crash.Context) error {
	root := NewRootCommand(cc)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, pw, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.journalDSN != "" {
		cfg.Journal.DSN = a.journalDSN
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	a.cfg, a.password = cfg, pw
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
		Console:   cmd.ErrOrStderr(),
	})
	a.log = applog.WithComponent("cli")
	a.log.Debug("start", slog.String("cmd", cmd.CommandPath()))
	return nil
}

// openJournal opens the configured journal; it returns nil when none is
// configured and required is false.
func (a *app) openJournal(ctx context.Context, required bool) (*journal.Journal, error) {
	if a.cfg.Journal.DSN == "" {
		if required {
			return nil, ErrNoJournal
		}
		return nil, nil
	}
	j, err := journal.Open(ctx, a.cfg.Journal.DSN, a.password)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	if dir := j.Dir(); dir != "" {
		a.crash.Set(func(c *crash.Context) { c.Dir = dir })
	}
	return j, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "snapline", version.String())
			return err
		},
	}
}
