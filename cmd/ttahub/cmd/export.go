package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ttahub/ttahub/internal/app"
	"github.com/ttahub/ttahub/internal/config"
	"github.com/ttahub/ttahub/internal/export"
)

func ExportCmd() *cobra.Command {
	var (
		regionID int64
		format   string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a region's goals as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if regionID <= 0 {
				return errors.New("--region is required")
			}

			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			a, err := app.New(config.Load())
			if err != nil {
				return err
			}
			defer a.Close()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer file.Close()
				w = file
			}

			return a.ExportService.RegionGoals(cmd.Context(), regionID, f, w)
		},
	}

	cmd.Flags().Int64Var(&regionID, "region", 0, "region id")
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
