package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lybotics/stagequest/internal/quest"
)

func newLeaderboardCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show players ranked by completed stages, then score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return errors.New("--limit must not be negative")
			}
			eng, release, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			entries, err := eng.Leaderboard(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No players yet.")
				return nil
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderLeaderboard(entries, time.Now()))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of rows to show (0 = all)")
	return cmd
}

func renderLeaderboard(entries []quest.LeaderboardEntry, now time.Time) string {
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.Name,
			e.Email,
			strconv.Itoa(e.CompletedStages),
			humanize.Comma(int64(e.TotalScore)),
			humanize.RelTime(e.LastActiveAt, now, "ago", "from now"),
		})
	}
	return renderTable([]string{"#", "Name", "Email", "Stages", "Score", "Last active"}, rows)
}
