package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/finchat/internal/backend"
	"github.com/Veraticus/finchat/internal/cli"
	"github.com/Veraticus/finchat/internal/common"
	"github.com/spf13/cobra"
)

func healthCmd() *cobra.Command {
	var attempts int
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			status, err := backend.WaitHealthy(ctx, rt.service, common.RetryOptions{
				MaxAttempts:  attempts,
				InitialDelay: delay,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s: %s", rt.cfg.API.BaseURL, status)))
			return nil
		},
	}

	cmd.Flags().IntVar(&attempts, "attempts", 3, "how many times to try")
	cmd.Flags().DurationVar(&delay, "delay", 500*time.Millisecond, "delay before the first retry")

	return cmd
}
