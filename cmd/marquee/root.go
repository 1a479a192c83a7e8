package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "marquee",
	Short: "Marquee is a reactive engine for interactive Slack surfaces",
	Long:  `Marquee serves interactive Slack messages, modals and home tabs that re-render themselves in place as users interact with them.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
