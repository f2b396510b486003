package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ttahub/ttahub/internal/app"
	"github.com/ttahub/ttahub/internal/config"
	"github.com/ttahub/ttahub/internal/service"
)

func TemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Goal and objective template maintenance",
	}

	cmd.AddCommand(templatesDedupCmd())
	return cmd
}

func templatesDedupCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Merge templates that share a region and trimmed name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(config.Load())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			runs := map[string]func() (*service.MergeResult, error){
				"goal":      func() (*service.MergeResult, error) { return a.MaintenanceService.DedupGoalTemplates(ctx) },
				"objective": func() (*service.MergeResult, error) { return a.MaintenanceService.DedupObjectiveTemplates(ctx) },
			}

			kinds := []string{"goal", "objective"}
			if kind != "all" {
				if _, ok := runs[kind]; !ok {
					return fmt.Errorf("unknown template kind %q (want goal, objective or all)", kind)
				}
				kinds = []string{kind}
			}

			for _, k := range kinds {
				result, err := runs[k]()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s templates: %d groups, %d removed, %d rows repointed, %d rehashed\n",
					k, result.Groups, result.Removed, result.Repointed, result.Rehashed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "all", "goal, objective or all")
	return cmd
}
