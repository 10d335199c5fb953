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
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newJournalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect recorded drag sessions",
	}
	var limit int
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openJournal(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer j.Close()
			list, err := j.Sessions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSCENE\tSHAPE\tFRAMES\tSTARTED\tENDED")
			for _, s := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", s.ID, s.Scene, s.Shape, s.Frames, stamp(s.StartedAt), stamp(s.EndedAt))
			}
			return tw.Flush()
		},
	}
	ls.Flags().IntVar(&limit, "limit", 20, "maximum number of sessions (0 lists all)")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the frames of a session (an unambiguous id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openJournal(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer j.Close()
			s, err := j.Session(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			frames, err := j.Frames(cmd.Context(), s.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session %s\nscene %s, shape %s, snap distance %d\n", s.ID, s.Scene, s.Shape, s.SnapDistance)
			for _, f := range frames {
				types := make([]string, len(f.Lines))
				for i, l := range f.Lines {
					types[i] = l.Type
					if l.Side != "" {
						types[i] += "/" + l.Side
					}
				}
				fmt.Fprintf(out, "#%d %v offset %v lines [%s] erased %d\n",
					f.Seq+1, f.Bounds, f.Offset, strings.Join(types, " "), f.Invalidated)
			}
			return nil
		},
	}
	cmd.AddCommand(ls, show)
	return cmd
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
