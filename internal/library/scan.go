package library

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"quaver/internal/logging"
)

// Scanner discovers groups under the configured search paths.
type Scanner struct {
	defaultExts []string
	logger      *slog.Logger
}

// NewScanner builds a scanner using the configured default extension list
// for groups that declare no filter of their own.
func NewScanner(defaultExts []string, logger *slog.Logger) *Scanner {
	return &Scanner{
		defaultExts: defaultExts,
		logger:      logging.NewComponentLogger(logger, "scanner"),
	}
}

// Scan walks every search path and returns the discovered groups sorted by
// root path. A directory containing a descriptor file becomes a group root;
// its whole subtree belongs to that group and is never scanned for nested
// groups.
func (s *Scanner) Scan(ctx context.Context, searchPaths []string) ([]*Group, error) {
	var groups []*Group
	seen := make(map[string]struct{})

	for _, root := range searchPaths {
		found, err := s.scanRoot(ctx, root)
		if err != nil {
			return nil, err
		}
		for _, group := range found {
			if _, ok := seen[group.Root]; ok {
				continue
			}
			seen[group.Root] = struct{}{}
			groups = append(groups, group)
		}
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Root < groups[j].Root })
	return groups, nil
}

func (s *Scanner) scanRoot(ctx context.Context, root string) ([]*Group, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("search path %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("search path %s is not a directory", root)
	}

	var groups []*Group
	stack := []string{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", dir, err)
		}

		var subdirs []string
		descriptor := ""
		for _, entry := range entries {
			switch {
			case entry.IsDir():
				subdirs = append(subdirs, filepath.Join(dir, entry.Name()))
			case entry.Name() == GroupFileName:
				descriptor = filepath.Join(dir, entry.Name())
			}
		}

		if descriptor == "" {
			stack = append(stack, subdirs...)
			continue
		}

		group, err := LoadDescriptor(descriptor)
		if err != nil {
			return nil, err
		}
		group.Root = dir
		if err := s.collectSongs(ctx, group); err != nil {
			return nil, err
		}
		s.logger.Debug("group discovered",
			logging.String(logging.FieldGroup, group.Root),
			logging.String("kind", string(group.Kind)),
			logging.Int("files", len(group.SongFiles)),
		)
		groups = append(groups, group)
	}
	return groups, nil
}

// collectSongs gathers the group's audio files: root-level files plus
// everything under subdirectories, filtered by the group's extension set.
func (s *Scanner) collectSongs(ctx context.Context, group *Group) error {
	exts := group.ScanExtensions(s.defaultExts)

	stack := []string{group.Root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("read directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				stack = append(stack, path)
				continue
			}
			ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(entry.Name())), ".")
			if ext == "" {
				continue
			}
			if _, ok := exts[ext]; ok {
				group.SongFiles = append(group.SongFiles, path)
			}
		}
	}

	sort.Strings(group.SongFiles)
	return nil
}
