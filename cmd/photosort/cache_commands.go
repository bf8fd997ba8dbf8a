package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"photosort/internal/locstore"
	"photosort/internal/logging"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the durable location stores",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show cached locations, aliases, and provider keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			aliases := locstore.NewAliases(cfg.AliasFile(), logging.NewNop())
			cache := locstore.NewCache(cfg.LocationCacheFile(), aliases, logging.NewNop())
			keys := locstore.NewKeys(cfg.ServiceKeysFile(), logging.NewNop())

			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Cached locations (%d)\n", cache.Len())
			if cache.Len() > 0 {
				rows := make([][]string, 0, cache.Len())
				for _, entry := range cache.Entries() {
					rows = append(rows, []string{entry.Key, entry.Value})
				}
				fmt.Fprintln(out, renderTable([]string{"Coordinates", "Place"}, rows))
			}

			fmt.Fprintf(out, "\nAliases (%d)\n", aliases.Len())
			if aliases.Len() > 0 {
				rows := make([][]string, 0, aliases.Len())
				for _, entry := range aliases.Entries() {
					rows = append(rows, []string{entry.Key, entry.Value})
				}
				fmt.Fprintln(out, renderTable([]string{"Source", "Replacement"}, rows))
			}

			keyEntries := keys.Entries()
			fmt.Fprintf(out, "\nProvider keys (%d)\n", len(keyEntries))
			if len(keyEntries) > 0 {
				rows := make([][]string, 0, len(keyEntries))
				for _, entry := range keyEntries {
					rows = append(rows, []string{entry.Key, maskKey(entry.Value)})
				}
				fmt.Fprintln(out, renderTable([]string{"Service", "Key"}, rows))
			}
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the cached location resolutions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := locstore.ClearFile(cfg.LocationCacheFile()); err != nil {
				return fmt.Errorf("clear location cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Location cache cleared.")
			return nil
		},
	}
}

// maskKey hides all but the last four characters of an API key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
