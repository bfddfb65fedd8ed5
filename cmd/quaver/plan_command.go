package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/spf13/cobra"

	"quaver/internal/artistnames"
	"quaver/internal/assemble"
	"quaver/internal/config"
	"quaver/internal/deriver"
	"quaver/internal/library"
	"quaver/internal/logging"
	"quaver/internal/metacache"
	"quaver/internal/musicbrainz"
	"quaver/internal/nativetags"
	"quaver/internal/pathplan"
	"quaver/internal/playlist"
	"quaver/internal/resolve"
	"quaver/internal/trackindex"
	"quaver/internal/workflow"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var groupDir string
	var jsonOut bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Run the planning pipeline and print the planned library layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runPlan(cmd, cfg, groupDir, jsonOut, verbose)
		},
	}

	cmd.Flags().StringVar(&groupDir, "group", "", "Plan only the group rooted at this directory")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Mirror pipeline logs to stdout")
	return cmd
}

func runPlan(cmd *cobra.Command, cfg *config.Config, groupDir string, jsonOut, verbose bool) error {
	logger, err := newPipelineLogger(cfg, verbose)
	if err != nil {
		return err
	}

	groups, err := scanGroups(cmd.Context(), cfg, logger, groupDir)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		if jsonOut {
			return writeJSON(cmd, planReportPayload{Groups: []planGroupPayload{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), noGroupsMessage(cfg, groupDir))
		return nil
	}

	store, err := metacache.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	lookup, err := musicbrainzLookup(cfg)
	if err != nil {
		return err
	}
	derive := deriver.New(lookup, store, logger)
	tags := nativetags.NewReader(logger)
	names := artistnames.NewCatalog(cfg.ArtistNameOverrides)

	manager := workflow.NewManager(cfg, logger,
		assemble.New(logger),
		trackindex.New(derive, tags, logger),
		resolve.New(derive, tags, names, logger),
		pathplan.New(logger),
	)
	for _, health := range manager.HealthCheck(cmd.Context()) {
		if !health.Ready {
			logger.Warn("stage reported not ready",
				logging.String(logging.FieldStage, health.Name),
				logging.String("detail", health.Detail))
		}
	}
	report := manager.Process(cmd.Context(), groups)

	playlists, err := writePlaylists(cmd.Context(), cfg, logger, report)
	if err != nil {
		return err
	}

	if jsonOut {
		if err := writeJSON(cmd, newPlanReportPayload(report, playlists)); err != nil {
			return err
		}
	} else {
		renderPlanReport(cmd, report, playlists)
	}

	if report.HasFailures() {
		_, review, failed := report.Counts()
		return fmt.Errorf("%d of %d groups did not plan", review+failed, len(report.Results))
	}
	return nil
}

// newPipelineLogger sends pipeline logs to the configured log file so the
// terminal stays reserved for rendered output. Verbose mirrors them to
// stdout; without a log directory and without verbose they are dropped.
func newPipelineLogger(cfg *config.Config, verbose bool) (*slog.Logger, error) {
	var outputs []string
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	}
	if verbose {
		outputs = append(outputs, "stdout")
	}
	if len(outputs) == 0 {
		return logging.NewNop(), nil
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}

// scanGroups discovers groups under the configured search paths, or under
// the single directory requested with --group.
func scanGroups(ctx context.Context, cfg *config.Config, logger *slog.Logger, groupDir string) ([]*library.Group, error) {
	roots := cfg.Library.SearchPaths
	if strings.TrimSpace(groupDir) != "" {
		expanded, err := config.ExpandPath(groupDir)
		if err != nil {
			return nil, fmt.Errorf("resolve group directory: %w", err)
		}
		roots = []string{expanded}
	}
	scanner := library.NewScanner(cfg.Library.ScanExtensions, logger)
	return scanner.Scan(ctx, roots)
}

func musicbrainzLookup(cfg *config.Config) (musicbrainz.Lookup, error) {
	if !cfg.MusicBrainz.Enabled {
		return nil, nil
	}
	client, err := musicbrainz.New(
		cfg.MusicBrainz.BaseURL,
		cfg.MusicBrainz.UserAgent,
		time.Duration(cfg.MusicBrainz.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz client: %w", err)
	}
	return client, nil
}

func writePlaylists(ctx context.Context, cfg *config.Config, logger *slog.Logger, report *workflow.Report) ([]string, error) {
	writer := playlist.NewWriter(cfg, logger)
	if !writer.Enabled() {
		return nil, nil
	}
	var written []string
	for _, result := range report.Results {
		if !result.Planned() || result.Run.Plan == nil || result.Run.Plan.Playlist == nil {
			continue
		}
		path, err := writer.Write(ctx, result.Run.Plan.Playlist)
		if err != nil {
			return written, fmt.Errorf("write playlist for %s: %w", result.Run.Group.Name(), err)
		}
		written = append(written, path)
	}
	return written, nil
}

func noGroupsMessage(cfg *config.Config, groupDir string) string {
	if strings.TrimSpace(groupDir) != "" {
		return fmt.Sprintf("No groups found under %s", groupDir)
	}
	return fmt.Sprintf("No groups found under search paths: %s", strings.Join(cfg.Library.SearchPaths, ", "))
}

func renderPlanReport(cmd *cobra.Command, report *workflow.Report, playlists []string) {
	out := cmd.OutOrStdout()

	headers := []string{"Group", "Kind", "Songs", "Outcome", "Stage", "Detail"}
	rows := make([][]string, 0, len(report.Results))
	for _, result := range report.Results {
		detail := ""
		if result.Err != nil {
			detail = result.Err.Error()
		}
		rows = append(rows, []string{
			result.Run.Group.Name(),
			string(result.Run.Group.Kind),
			fmt.Sprintf("%d", len(result.Run.Songs)),
			string(result.Outcome),
			result.Stage,
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(headers, rows, "Songs"))

	for _, result := range report.Results {
		if !result.Planned() || result.Run.Plan == nil {
			continue
		}
		fmt.Fprintf(out, "\n%s\n", result.Run.Group.Name())
		for _, entry := range result.Run.Plan.Entries {
			fmt.Fprintf(out, "  %s\n", entry.OutputPath)
		}
		if result.Run.Plan.AlbumArt != "" {
			fmt.Fprintf(out, "  %s\n", result.Run.Plan.AlbumArt)
		}
	}

	for _, path := range playlists {
		fmt.Fprintf(out, "\nWrote playlist %s\n", path)
	}

	planned, review, failed := report.Counts()
	fmt.Fprintf(out, "\nPlanned %d of %d groups (%d review, %d failed) in %s\n",
		planned, len(report.Results), review, failed, report.Duration().Round(time.Millisecond))
}

type planSongPayload struct {
	Source string `json:"source"`
	Output string `json:"output"`
}

type planGroupPayload struct {
	Root     string            `json:"root"`
	Name     string            `json:"name"`
	Kind     string            `json:"kind"`
	Outcome  string            `json:"outcome"`
	Stage    string            `json:"stage,omitempty"`
	Error    string            `json:"error,omitempty"`
	Songs    []planSongPayload `json:"songs,omitempty"`
	AlbumArt string            `json:"album_art,omitempty"`
	Playlist string            `json:"playlist,omitempty"`
}

type planReportPayload struct {
	Groups    []planGroupPayload `json:"groups"`
	Planned   int                `json:"planned"`
	Review    int                `json:"review"`
	Failed    int                `json:"failed"`
	Playlists []string           `json:"playlists,omitempty"`
}

func newPlanReportPayload(report *workflow.Report, playlists []string) planReportPayload {
	planned, review, failed := report.Counts()
	payload := planReportPayload{
		Groups:    make([]planGroupPayload, 0, len(report.Results)),
		Planned:   planned,
		Review:    review,
		Failed:    failed,
		Playlists: playlists,
	}
	for _, result := range report.Results {
		group := planGroupPayload{
			Root:    result.Run.Group.Root,
			Name:    result.Run.Group.Name(),
			Kind:    string(result.Run.Group.Kind),
			Outcome: string(result.Outcome),
			Stage:   result.Stage,
		}
		if result.Err != nil {
			group.Error = result.Err.Error()
		}
		if plan := result.Run.Plan; plan != nil {
			for _, entry := range plan.Entries {
				group.Songs = append(group.Songs, planSongPayload{
					Source: entry.Song.RelPath,
					Output: entry.OutputPath,
				})
			}
			group.AlbumArt = plan.AlbumArt
			if plan.Playlist != nil {
				group.Playlist = plan.Playlist.Name
			}
		}
		payload.Groups = append(payload.Groups, group)
	}
	return payload
}
