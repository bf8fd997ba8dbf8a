package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"photosort/internal/config"
	"photosort/internal/workflow"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag  string
		verboseFlag bool
		debugFlag   bool

		recursiveFlag bool
		serviceFlag   string
		precisionFlag int
		dryRunFlag    bool
		keyFlags      []string
		aliasFlags    []string
	)

	ctx := newCommandContext(&configFlag, &verboseFlag, &debugFlag)

	rootCmd := &cobra.Command{
		Use:   "photosort [paths...]",
		Short: "Organize media files into folders by capture date and place",
		Long: "photosort reads GPS coordinates and capture dates from media files,\n" +
			"reverse-geocodes each location to a human-readable place name, and\n" +
			"moves the files into \"<date> <place>\" folders next to where they live.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyOverrides(cfg, cmd, serviceFlag, precisionFlag); err != nil {
				return err
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runner := workflow.NewRunner(cfg, logger, nil, nil)
			summary, err := runner.Run(cmd.Context(), workflow.Options{
				Inputs:    args,
				Recursive: recursiveFlag,
				DryRun:    dryRunFlag,
				Keys:      keyFlags,
				Aliases:   aliasFlags,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			verb := "moved"
			if summary.DryRun {
				verb = "would move"
			}
			fmt.Fprintf(out, "%d scanned, %d resolved, %s %d into %d folders\n",
				summary.Scanned, summary.Resolved, verb, summary.Moved, summary.Groups)
			if summary.Partial {
				fmt.Fprintln(out, "warning: some files did not resolve in time and were left in place")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Debug output")

	rootCmd.Flags().BoolVarP(&recursiveFlag, "recursive", "r", false, "Recurse into subdirectories")
	rootCmd.Flags().StringVarP(&serviceFlag, "service", "s", "", "Preferred geocoding service ("+strings.Join(config.ServiceNames(), ", ")+")")
	rootCmd.Flags().IntVarP(&precisionFlag, "precision", "p", 0, "Coordinate rounding precision (decimal places)")
	rootCmd.Flags().BoolVarP(&dryRunFlag, "dry-run", "n", false, "Resolve locations but do not move files")
	rootCmd.Flags().StringArrayVarP(&keyFlags, "key", "k", nil, "Store a provider API key (Service:Key, repeatable)")
	rootCmd.Flags().StringArrayVarP(&aliasFlags, "alias", "a", nil, "Define a place alias (Source=Dest, repeatable)")

	rootCmd.AddCommand(newCacheCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

// applyOverrides folds per-run flags into the loaded config before the
// workflow starts.
func applyOverrides(cfg *config.Config, cmd *cobra.Command, service string, precision int) error {
	if cmd.Flags().Changed("service") {
		canonical := config.CanonicalService(service)
		if canonical == "" {
			return fmt.Errorf("unknown service %q (known: %s)", service, strings.Join(config.ServiceNames(), ", "))
		}
		cfg.Geocoding.Service = canonical
	}
	if cmd.Flags().Changed("precision") {
		cfg.Geocoding.Precision = precision
	}
	return cfg.Validate()
}
