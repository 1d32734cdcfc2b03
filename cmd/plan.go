package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fornellas/slogxt/log"
)

var PlanCmd = &cobra.Command{
	Use:   "plan [flags] [file]",
	Short: "Preview a plan.",
	Long: "Load a plan from a yaml file and preview the actions a run would take, without mutating the host.\n" +
		"Probes observe live host state, so a step depending on the effect of an earlier previewed step " +
		"(for example enabling a unit whose package a previous step installs) may report a failure a real run would not.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]

		ctx, logger := log.MustWithGroupAttrs(cmd.Context(), "⚙️ Plan", "path", path)

		var retErr error
		defer func() {
			if retErr != nil {
				logger.Error("Failed", "err", retErr)
				Exit(1)
			}
		}()

		rep, policy, err := runPlan(ctx, path, true)
		if err != nil {
			retErr = err
			return
		}

		fmt.Fprint(cmd.OutOrStdout(), rep.String())

		if exitCode := rep.ExitCode(exitThreshold(policy)); exitCode != 0 {
			Exit(exitCode)
			return
		}

		logger.Info("🎆 Plan preview successful")
	},
}

func init() {
	AddHostFlags(PlanCmd)
	AddPlanFlags(PlanCmd)

	RootCmd.AddCommand(PlanCmd)
}
