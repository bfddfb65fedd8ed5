package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quaver/internal/logging"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the groups discovered under the configured search paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			groups, err := scanGroups(cmd.Context(), cfg, logging.NewNop(), "")
			if err != nil {
				return err
			}

			if jsonOut {
				payload := make([]scanGroupPayload, 0, len(groups))
				for _, group := range groups {
					payload = append(payload, scanGroupPayload{
						Root:  group.Root,
						Name:  group.Name(),
						Kind:  string(group.Kind),
						Songs: len(group.SongFiles),
					})
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintln(out, noGroupsMessage(cfg, ""))
				return nil
			}

			headers := []string{"Group", "Kind", "Songs", "Root"}
			rows := make([][]string, 0, len(groups))
			for _, group := range groups {
				rows = append(rows, []string{
					group.Name(),
					string(group.Kind),
					fmt.Sprintf("%d", len(group.SongFiles)),
					group.Root,
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows, "Songs"))
			fmt.Fprintf(out, "%d groups\n", len(groups))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}

type scanGroupPayload struct {
	Root  string `json:"root"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Songs int    `json:"songs"`
}
