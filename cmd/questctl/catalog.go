package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lybotics/stagequest/internal/catalog"
	"github.com/lybotics/stagequest/internal/quest"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect stage catalogs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate [name|file...]",
		Short: "Validate catalogs (default: every built-in catalog)",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = catalog.Names()
			}
			var failed []error
			for _, name := range names {
				c, err := catalog.Load(name)
				if err != nil {
					a.logger.Error("catalog invalid", "name", name, "error", err)
					failed = append(failed, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (version %s, %d stages, %d challenges)\n",
					name, c.Version, len(c.Stages), countChallenges(c))
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d catalog(s) invalid: %w", len(failed), errors.Join(failed...))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show [name|file]",
		Short: "List the stages of a catalog with their unlock times",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := catalog.Interactive
			if len(args) == 1 {
				name = args[0]
			}
			c, err := catalog.Load(name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStages(c, time.Now()))
			return nil
		},
	})
	return cmd
}

func countChallenges(c *quest.Catalog) int {
	n := 0
	for _, s := range c.Stages {
		n += len(s.Challenges)
	}
	return n
}

func renderStages(c *quest.Catalog, now time.Time) string {
	rows := make([][]string, 0, len(c.Stages))
	for _, s := range c.Stages {
		status := "open"
		if !quest.IsUnlocked(s, now) {
			status = "opens " + humanize.RelTime(s.UnlockAt, now, "ago", "from now")
		}
		rows = append(rows, []string{
			strconv.Itoa(s.ID),
			s.Icon + " " + s.Title,
			strconv.Itoa(len(s.Challenges)),
			s.UnlockAt.Format("2006-01-02 15:04"),
			status,
		})
	}
	return renderTable([]string{"ID", "Stage", "Challenges", "Unlocks", "Status"}, rows)
}
