package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/silenceobjects/sentinel/internal/domain"
)

const historyFile = ".sentinel/history/scores.json"

// MaxEntries bounds the stored history; older entries are dropped first.
const MaxEntries = 200

// FileHistory implements domain.ScoreHistory using JSON file storage.
type FileHistory struct{}

func New() *FileHistory {
	return &FileHistory{}
}

// Path returns the history file location for repoPath.
func Path(repoPath string) string {
	return filepath.Join(repoPath, historyFile)
}

func (h *FileHistory) Save(repoPath string, entry domain.ScoreEntry) error {
	entries, err := h.Load(repoPath)
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if len(entries) > MaxEntries {
		entries = entries[len(entries)-MaxEntries:]
	}

	fp := Path(repoPath)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fp, data, 0644)
}

func (h *FileHistory) Load(repoPath string) ([]domain.ScoreEntry, error) {
	data, err := os.ReadFile(Path(repoPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.ScoreEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", historyFile, err)
	}

	return entries, nil
}
