package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump every player as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, release, err := a.openEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			data, err := eng.Export(cmd.Context())
			if err != nil {
				return err
			}
			body, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding export: %w", err)
			}
			body = append(body, '\n')

			if out == "" || out == "-" {
				_, err := cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			a.logger.Info("export written", "file", out, "players", len(data.Players), "size", humanize.Bytes(uint64(len(body))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}
