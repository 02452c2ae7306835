package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/sieve/internal/cli"
	"github.com/aretw0/sieve/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "sieve [PATH...]",
	Short: "Sieve validates YAML files against declarative schemas",
	Long: `Sieve validates YAML data files against schemas written in YAML.

Given a directory, sieve walks it for .yaml/.yml files and validates
each against the nearest schema file, searching the file's directory
and its parents.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := args
		if len(paths) == 0 {
			paths = []string{"."}
		}

		schemas, _ := cmd.Flags().GetStringArray("schema")
		excludes, _ := cmd.Flags().GetStringArray("exclude")
		noStrict, _ := cmd.Flags().GetBool("no-strict")
		workers, _ := cmd.Flags().GetInt("workers")
		verbose, _ := cmd.Flags().GetBool("verbose")

		log := logging.New(logging.Level(verbose))

		runner, err := cli.NewRunner(cli.Options{
			Paths:       paths,
			SchemaNames: schemas,
			Excludes:    excludes,
			Strict:      !noStrict,
			Workers:     workers,
		}, log, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		return runner.Run()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringArrayP("schema", "s", []string{"schema.yaml"}, "Schema file name or path (repeatable)")
	rootCmd.Flags().StringArrayP("exclude", "e", nil, "Regex; matching data file paths are skipped (repeatable)")
	rootCmd.Flags().BoolP("no-strict", "x", false, "Allow data keys the schema does not mention")
	rootCmd.Flags().IntP("workers", "n", 4, "Number of files validated in parallel")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}
