package main

import (
	"github.com/spf13/cobra"

	"github.com/fornellas/slogxt/log"

	planPkg "github.com/groundworklabs/groundwork/plan"
)

var ValidateCmd = &cobra.Command{
	Use:   "validate [flags] [file]",
	Short: "Validates a plan file.",
	Long:  "Loads a plan from a yaml file, validating whether it is ok, without touching any host.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]

		ctx, logger := log.MustWithGroupAttrs(cmd.Context(), "🔍 Validate", "path", path)

		pln, err := planPkg.Load(ctx, path)
		if err != nil {
			logger.Error(err.Error())
			Exit(1)
			return
		}

		logger.Info("📋 Plan", "name", pln.Name, "policy", pln.Policy.String(), "steps", pln.Steps.Names())

		logger.Info("🎆 Validation successful")
	},
}

func init() {
	RootCmd.AddCommand(ValidateCmd)
}
