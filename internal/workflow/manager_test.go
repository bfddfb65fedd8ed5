package workflow_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"

	"quaver/internal/artistnames"
	"quaver/internal/assemble"
	"quaver/internal/config"
	"quaver/internal/library"
	"quaver/internal/logging"
	"quaver/internal/metadata"
	"quaver/internal/nativetags"
	"quaver/internal/pathplan"
	"quaver/internal/resolve"
	"quaver/internal/services"
	"quaver/internal/stage"
	"quaver/internal/testsupport"
	"quaver/internal/trackindex"
	"quaver/internal/workflow"
)

func newPipeline(cfg *config.Config) *workflow.Manager {
	logger := logging.NewNop()
	reader := nativetags.NewReader(logger)
	catalog := artistnames.NewCatalog(cfg.ArtistNameOverrides)
	return workflow.NewManager(cfg, logger,
		assemble.New(logger),
		trackindex.New(metadata.NullDeriver{}, reader, logger),
		resolve.New(metadata.NullDeriver{}, reader, catalog, logger),
		pathplan.New(logger),
	)
}

type fakeStage struct {
	name    string
	calls   *[]string
	execErr error
	unready string
}

func (f *fakeStage) Prepare(context.Context, *library.GroupRun) error { return nil }

func (f *fakeStage) Execute(context.Context, *library.GroupRun) error {
	*f.calls = append(*f.calls, f.name)
	return f.execErr
}

func (f *fakeStage) HealthCheck(context.Context) stage.Health {
	if f.unready != "" {
		return stage.Unhealthy(f.name, f.unready)
	}
	return stage.Healthy(f.name)
}

func TestProcessPlansAlbumGroup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := filepath.Join(testsupport.LibraryDir(cfg), "ok-computer")
	testsupport.WriteID3v2(t, filepath.Join(root, "01-airbag.mp3"), id3v2.EncodingUTF8, map[string]string{
		"TIT2": "Airbag",
		"TPE1": "Radiohead",
		"TPE2": "Radiohead",
		"TALB": "OK Computer",
	})
	testsupport.WriteID3v2(t, filepath.Join(root, "02-paranoid-android.mp3"), id3v2.EncodingUTF8, map[string]string{
		"TIT2": "Paranoid Android",
		"TPE1": "Radiohead",
		"TPE2": "Radiohead",
		"TALB": "OK Computer",
	})
	group := &library.Group{
		Kind: library.KindAlbum,
		Root: root,
		SongFiles: []string{
			filepath.Join(root, "01-airbag.mp3"),
			filepath.Join(root, "02-paranoid-android.mp3"),
		},
	}

	report := newPipeline(cfg).Process(context.Background(), []*library.Group{group})

	if len(report.Results) != 1 {
		t.Fatalf("expected one result, got %d", len(report.Results))
	}
	result := report.Results[0]
	if result.Outcome != services.OutcomePlanned {
		t.Fatalf("expected planned, got %s (%v)", result.Outcome, result.Err)
	}
	want := []string{
		"Radiohead/OK Computer/Airbag",
		"Radiohead/OK Computer/Paranoid Android",
	}
	for i, entry := range result.Run.Plan.Entries {
		if entry.OutputPath != want[i] {
			t.Fatalf("entry %d: expected %q, got %q", i, want[i], entry.OutputPath)
		}
	}
	if report.HasFailures() {
		t.Fatal("expected a clean report")
	}
}

func TestProcessIsolatesFailingGroups(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	lib := testsupport.LibraryDir(cfg)

	badRoot := filepath.Join(lib, "bad")
	testsupport.WriteID3v2(t, filepath.Join(badRoot, "one.mp3"), id3v2.EncodingUTF8, map[string]string{
		"TIT2": "Where To?",
		"TPE1": "Radiohead",
	})
	goodRoot := filepath.Join(lib, "good")
	testsupport.WriteID3v2(t, filepath.Join(goodRoot, "one.mp3"), id3v2.EncodingUTF8, map[string]string{
		"TIT2": "Roads",
		"TPE1": "Portishead",
	})

	groups := []*library.Group{
		{Kind: library.KindCompilation, Title: "Bad Mix", Root: badRoot, SongFiles: []string{filepath.Join(badRoot, "one.mp3")}},
		{Kind: library.KindCompilation, Title: "Good Mix", Root: goodRoot, SongFiles: []string{filepath.Join(goodRoot, "one.mp3")}},
	}

	report := newPipeline(cfg).Process(context.Background(), groups)

	if report.Results[0].Outcome != services.OutcomeReview {
		t.Fatalf("expected review for the bad group, got %s (%v)", report.Results[0].Outcome, report.Results[0].Err)
	}
	if report.Results[0].Stage != "pathplan" {
		t.Fatalf("expected pathplan to stop the bad group, got %q", report.Results[0].Stage)
	}
	if report.Results[1].Outcome != services.OutcomePlanned {
		t.Fatalf("expected the sibling planned, got %s (%v)", report.Results[1].Outcome, report.Results[1].Err)
	}
	planned, review, failed := report.Counts()
	if planned != 1 || review != 1 || failed != 0 {
		t.Fatalf("unexpected counts planned=%d review=%d failed=%d", planned, review, failed)
	}
}

func TestProcessManyGroupsInParallel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.Workers = 4
	lib := testsupport.LibraryDir(cfg)

	groups := make([]*library.Group, 0, 6)
	for i := 0; i < 6; i++ {
		root := filepath.Join(lib, fmt.Sprintf("mix-%d", i))
		path := filepath.Join(root, "one.mp3")
		testsupport.WriteID3v2(t, path, id3v2.EncodingUTF8, map[string]string{
			"TIT2": fmt.Sprintf("Song %d", i),
			"TPE1": "Various",
		})
		groups = append(groups, &library.Group{
			Kind:      library.KindCompilation,
			Title:     fmt.Sprintf("Mix %d", i),
			Root:      root,
			SongFiles: []string{path},
		})
	}

	report := newPipeline(cfg).Process(context.Background(), groups)

	planned, review, failed := report.Counts()
	if planned != 6 || review != 0 || failed != 0 {
		t.Fatalf("unexpected counts planned=%d review=%d failed=%d", planned, review, failed)
	}
	for i, result := range report.Results {
		if result.Run == nil || result.Run.Group != groups[i] {
			t.Fatalf("result %d does not match its group", i)
		}
	}
}

func TestProcessStopsAtFirstFailingStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var calls []string
	boom := services.Wrap(services.ErrReference, "indexing", "apply overrides", "unknown song", nil)
	manager := workflow.NewManager(cfg, logging.NewNop(),
		&fakeStage{name: "assemble", calls: &calls},
		&fakeStage{name: "trackindex", calls: &calls, execErr: boom},
		&fakeStage{name: "resolve", calls: &calls},
		&fakeStage{name: "pathplan", calls: &calls},
	)

	report := manager.Process(context.Background(), []*library.Group{{Kind: library.KindAlbum, Root: t.TempDir()}})

	result := report.Results[0]
	if result.Outcome != services.OutcomeReview || result.Stage != "trackindex" {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(calls) != 2 || calls[0] != "assemble" || calls[1] != "trackindex" {
		t.Fatalf("unexpected stage calls %v", calls)
	}
}

func TestProcessCancelledContextFailsGroups(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var calls []string
	manager := workflow.NewManager(cfg, logging.NewNop(),
		&fakeStage{name: "assemble", calls: &calls},
		&fakeStage{name: "trackindex", calls: &calls},
		&fakeStage{name: "resolve", calls: &calls},
		&fakeStage{name: "pathplan", calls: &calls},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := manager.Process(ctx, []*library.Group{{Kind: library.KindAlbum, Root: t.TempDir()}})

	if report.Results[0].Outcome != services.OutcomeFailed {
		t.Fatalf("expected failed, got %s", report.Results[0].Outcome)
	}
	if len(calls) != 0 {
		t.Fatalf("expected no stage calls after cancellation, got %v", calls)
	}
}

func TestHealthCheckReportsEveryStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	var calls []string
	manager := workflow.NewManager(cfg, logging.NewNop(),
		&fakeStage{name: "assemble", calls: &calls},
		&fakeStage{name: "trackindex", calls: &calls, unready: "release cache unavailable"},
		&fakeStage{name: "resolve", calls: &calls},
		&fakeStage{name: "pathplan", calls: &calls},
	)

	health := manager.HealthCheck(context.Background())

	if len(health) != 4 {
		t.Fatalf("expected four reports, got %d", len(health))
	}
	for i, name := range []string{"assemble", "trackindex", "resolve", "pathplan"} {
		if health[i].Name != name {
			t.Fatalf("report %d: expected %q, got %q", i, name, health[i].Name)
		}
	}
	if !health[0].Ready {
		t.Fatalf("expected assemble ready, got %+v", health[0])
	}
	if health[1].Ready || health[1].Detail != "release cache unavailable" {
		t.Fatalf("unexpected trackindex health %+v", health[1])
	}
}

func TestProcessEmptyRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	report := newPipeline(cfg).Process(context.Background(), nil)

	if len(report.Results) != 0 {
		t.Fatalf("expected no results, got %d", len(report.Results))
	}
	if report.HasFailures() {
		t.Fatal("expected a clean report")
	}
}
