package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lybotics/stagequest/internal/quest"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completion per stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, release, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			stats, err := eng.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Participants: %d\n", stats.Participants)
			fmt.Fprintln(cmd.OutOrStdout(), renderStats(stats))
			return nil
		},
	}
}

func renderStats(stats quest.Stats) string {
	rows := make([][]string, 0, len(stats.Stages))
	for _, s := range stats.Stages {
		rows = append(rows, []string{
			strconv.Itoa(s.StageID),
			s.Icon + " " + s.Title,
			strconv.Itoa(s.Completed),
			s.Percent.StringFixed(1) + "%",
		})
	}
	return renderTable([]string{"ID", "Stage", "Completed", "Rate"}, rows)
}
