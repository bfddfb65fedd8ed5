package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quaver/internal/metacache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the metadata cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

type cacheStatsPayload struct {
	Path   string `json:"path"`
	Bytes  int64  `json:"bytes"`
	Albums int64  `json:"albums"`
	Songs  int64  `json:"songs"`
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show metadata cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *metacache.Store) error {
				albums, songs, err := store.Counts(cmd.Context())
				if err != nil {
					return err
				}
				var size int64
				if info, err := os.Stat(store.Path()); err == nil {
					size = info.Size()
				}

				if jsonOut {
					return writeJSON(cmd, cacheStatsPayload{
						Path:   store.Path(),
						Bytes:  size,
						Albums: albums,
						Songs:  songs,
					})
				}

				out := cmd.OutOrStdout()
				rows := [][]string{
					{"Albums", fmt.Sprintf("%d", albums)},
					{"Songs", fmt.Sprintf("%d", songs)},
				}
				fmt.Fprintln(out, renderTable([]string{"Records", "Entries"}, rows, "Entries"))
				fmt.Fprintf(out, "Database: %s (%s)\n", store.Path(), humanBytes(size))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached album and song record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *metacache.Store) error {
				albums, songs, err := store.Counts(cmd.Context())
				if err != nil {
					return err
				}
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d albums and %d songs from the metadata cache\n", albums, songs)
				return nil
			})
		},
	}
}
