package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Storage handles persistence of run artifacts (the generate run's stats
// snapshots) under a single output directory, with the same
// keep-last-N pruning idiom the teacher's report storage uses — but
// generalised to any JSON-able value rather than one fixed report type,
// since a generate run's stats doc and a reduce run's state doc share
// nothing but "some JSON, written to a named file".
type Storage struct {
	outputDir string
	keepLastN int
	logger    *Logger
}

// NewStorage creates outputDir if needed and returns a Storage rooted
// there. keepLastN <= 0 disables pruning.
func NewStorage(outputDir string, keepLastN int, logger *Logger) (*Storage, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Storage{outputDir: outputDir, keepLastN: keepLastN, logger: logger}, nil
}

// SaveJSON marshals v and writes it to <outputDir>/<name>, then prunes
// the oldest *.json files beyond keepLastN.
func (s *Storage) SaveJSON(name string, v interface{}) (string, error) {
	path := filepath.Join(s.outputDir, name)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	s.logger.Info("artifact saved", "path", path)

	if s.keepLastN > 0 {
		if err := s.cleanupOldArtifacts(); err != nil {
			s.logger.Warn("failed to prune old artifacts", "error", err)
		}
	}
	return path, nil
}

// LoadJSON reads <outputDir>/<name> and unmarshals it into v.
func (s *Storage) LoadJSON(name string, v interface{}) error {
	path := filepath.Join(s.outputDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}

// WriteText writes raw content (a .v netlist, a .dot frame) to
// <outputDir>/<name>, alongside the JSON artifacts.
func (s *Storage) WriteText(name string, content []byte) (string, error) {
	path := filepath.Join(s.outputDir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// cleanupOldArtifacts removes the oldest *.json files beyond keepLastN,
// ranked by modification time.
func (s *Storage) cleanupOldArtifacts() error {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read output directory: %w", err)
	}

	type fileInfo struct {
		path    string
		modTime int64
	}
	var files []fileInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{path: filepath.Join(s.outputDir, entry.Name()), modTime: info.ModTime().Unix()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime > files[j].modTime })

	if len(files) <= s.keepLastN {
		return nil
	}
	for _, f := range files[s.keepLastN:] {
		if err := os.Remove(f.path); err != nil {
			s.logger.Warn("failed to delete old artifact", "path", f.path, "error", err)
		} else {
			s.logger.Debug("deleted old artifact", "path", f.path)
		}
	}
	return nil
}

// GetOutputDir returns the output directory path.
func (s *Storage) GetOutputDir() string {
	return s.outputDir
}
