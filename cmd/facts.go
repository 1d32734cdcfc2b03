package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fornellas/slogxt/log"

	factsPkg "github.com/groundworklabs/groundwork/facts"
)

var FactsCmd = &cobra.Command{
	Use:   "facts [flags]",
	Short: "Show host facts.",
	Long:  "Gather and show the host facts used to gate plan execution.",
	Args:  cobra.ExactArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, logger := log.MustWithGroupAttrs(cmd.Context(), "🔍 Facts")

		var retErr error
		defer func() {
			if retErr != nil {
				logger.Error("Failed", "err", retErr)
				Exit(1)
			}
		}()

		hst, err := GetHost(ctx)
		if err != nil {
			retErr = fmt.Errorf("failed to get host: %w", err)
			return
		}
		defer func() {
			if err := hst.Close(ctx); err != nil {
				retErr = errors.Join(retErr, fmt.Errorf("failed to close host: %w", err))
			}
		}()

		hostFacts, err := factsPkg.Load(ctx, hst)
		if err != nil {
			retErr = fmt.Errorf("failed to load host facts: %w", err)
			return
		}

		bs, err := yaml.Marshal(hostFacts)
		if err != nil {
			retErr = err
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), string(bs))
	},
}

func init() {
	AddHostFlags(FactsCmd)

	RootCmd.AddCommand(FactsCmd)
}
