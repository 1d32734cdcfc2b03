package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fornellas/slogxt/log"
)

var dryRun bool
var defaultDryRun = false

var ApplyCmd = &cobra.Command{
	Use:   "apply [flags] [file]",
	Short: "Apply a plan.",
	Long:  "Load a plan from a yaml file and apply its steps to the host, in order, skipping steps already satisfied.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]

		ctx, logger := log.MustWithGroupAttrs(cmd.Context(), "✏️ Apply", "path", path)

		var retErr error
		defer func() {
			if retErr != nil {
				logger.Error("Failed", "err", retErr)
				Exit(1)
			}
		}()

		rep, policy, err := runPlan(ctx, path, dryRun)
		if err != nil {
			retErr = err
			return
		}

		fmt.Fprint(cmd.OutOrStdout(), rep.String())

		if exitCode := rep.ExitCode(exitThreshold(policy)); exitCode != 0 {
			Exit(exitCode)
			return
		}

		logger.Info("🎆 Apply successful")
	},
}

func init() {
	AddHostFlags(ApplyCmd)
	AddPlanFlags(ApplyCmd)

	ApplyCmd.Flags().BoolVarP(
		&dryRun, "dry-run", "n", defaultDryRun,
		"Log mutating actions without executing them",
	)

	RootCmd.AddCommand(ApplyCmd)

	resetFlagsFns = append(resetFlagsFns, func() {
		dryRun = defaultDryRun
	})
}
