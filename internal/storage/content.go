package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KH-Mind/tbrr-sub000/pkg/content"
)

// Content directories under the data dir.
const (
	EventsDir        = "events"
	PoolsDir         = "pools"
	ForcedDir        = "forced"
	StatusEffectsDir = "status_effects"
	ItemsDir         = "items"
	SkillsDir        = "skills"
	DeathDir         = "death"
)

// Issue is a content file that could not be used.
type Issue struct {
	Path string
	Err  error
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: %v", i.Path, i.Err)
}

// ContentLoader reads content files (YAML or JSON) from a data directory.
// Files that fail to parse are logged and skipped.
type ContentLoader struct {
	dataDir string
	logger  *slog.Logger
	Issues  []Issue
	Files   []string // every content file read, for tools that lint by path
}

// NewContentLoader creates a loader for dataDir.
func NewContentLoader(dataDir string, logger *slog.Logger) *ContentLoader {
	if dataDir == "" {
		dataDir = "./data"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentLoader{dataDir: dataDir, logger: logger}
}

// Load builds a Library from every content directory.
// Missing directories are fine; a missing data dir is an error.
func (l *ContentLoader) Load() (*content.Library, error) {
	if _, err := os.Stat(l.dataDir); err != nil {
		return nil, fmt.Errorf("failed to open data dir: %w", err)
	}
	lib := content.NewLibrary()

	l.walk(EventsDir, func(path string, data []byte) error {
		events, err := decodeList[content.Event](path, data)
		if err != nil {
			return err
		}
		for _, e := range events {
			if err := lib.AddEvent(e); err != nil {
				l.issue(path, err)
			}
		}
		return nil
	})
	l.walk(PoolsDir, func(path string, data []byte) error {
		pools, err := decodeList[content.Pool](path, data)
		if err != nil {
			return err
		}
		for _, p := range pools {
			lib.AddPool(p)
		}
		return nil
	})
	l.walk(ForcedDir, func(path string, data []byte) error {
		forced, err := decodeList[content.ForcedEvent](path, data)
		if err != nil {
			return err
		}
		for _, f := range forced {
			if err := lib.AddForced(f); err != nil {
				l.issue(path, err)
			}
		}
		return nil
	})
	l.walk(StatusEffectsDir, func(path string, data []byte) error {
		defs, err := decodeList[content.StatusEffectDef](path, data)
		if err != nil {
			return err
		}
		for _, d := range defs {
			if err := lib.AddStatusEffect(d); err != nil {
				l.issue(path, err)
			}
		}
		return nil
	})
	l.walk(ItemsDir, func(path string, data []byte) error {
		defs, err := decodeList[content.ItemDef](path, data)
		if err != nil {
			return err
		}
		for _, d := range defs {
			if err := lib.AddItem(d); err != nil {
				l.issue(path, err)
			}
		}
		return nil
	})
	l.walk(SkillsDir, func(path string, data []byte) error {
		defs, err := decodeList[content.SkillDef](path, data)
		if err != nil {
			return err
		}
		for _, d := range defs {
			if err := lib.AddSkill(d); err != nil {
				l.issue(path, err)
			}
		}
		return nil
	})
	l.walk(DeathDir, func(path string, data []byte) error {
		tables, err := decodeList[content.DeathTable](path, data)
		if err != nil {
			return err
		}
		for _, t := range tables {
			lib.MergeDeath(t)
		}
		return nil
	})

	l.logger.Info("Content loaded",
		"data_dir", l.dataDir,
		"events", len(lib.EventIDs()),
		"pools", len(lib.Pools()),
		"forced", len(lib.Forced()),
		"issues", len(l.Issues))
	return lib, nil
}

// walk calls fn for every content file under dir, in lexical order.
func (l *ContentLoader) walk(dir string, fn func(path string, data []byte) error) {
	root := filepath.Join(l.dataDir, dir)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return filepath.SkipDir
			}
			l.issue(path, err)
			return nil
		}
		if d.IsDir() || !isContentFile(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			l.issue(path, err)
			return nil
		}
		l.Files = append(l.Files, path)
		if err := fn(path, data); err != nil {
			l.issue(path, err)
		}
		return nil
	})
	if err != nil {
		l.logger.Error("Failed to walk content directory", "dir", root, "error", err)
	}
}

func (l *ContentLoader) issue(path string, err error) {
	l.logger.Warn("Skipping content", "path", path, "error", err)
	l.Issues = append(l.Issues, Issue{Path: path, Err: err})
}

func isContentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// decodeList decodes a file holding either one document or a list of them.
func decodeList[T any](path string, data []byte) ([]T, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		trimmed := bytes.TrimSpace(data)
		if bytes.HasPrefix(trimmed, []byte("[")) {
			var list []T
			if err := json.Unmarshal(trimmed, &list); err != nil {
				return nil, fmt.Errorf("failed to parse JSON: %w", err)
			}
			return list, nil
		}
		var one T
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return []T{one}, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	doc := node.Content[0]
	if doc.Kind == yaml.SequenceNode {
		var list []T
		if err := doc.Decode(&list); err != nil {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
		return list, nil
	}
	var one T
	if err := doc.Decode(&one); err != nil {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	return []T{one}, nil
}
