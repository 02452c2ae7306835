package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/sieve"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sieve",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sieve version %s\n", strings.TrimSpace(sieve.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
