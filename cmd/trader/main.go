package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "trader",
		Short:         "Risk-managed leveraged futures trading bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (defaults + env when omitted)")

	root.AddCommand(newLiveCmd(&configPath))
	root.AddCommand(newBacktestCmd(&configPath))
	root.AddCommand(newStrategiesCmd())
	return root
}
