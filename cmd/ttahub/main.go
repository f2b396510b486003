package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ttahub/ttahub/cmd/ttahub/cmd"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:          "ttahub",
		Short:        "Admin tools for the TTA Hub goal store",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.TemplatesCmd())
	rootCmd.AddCommand(cmd.ExportCmd())

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
