package spreadsheet

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ventas-dashboard/internal/config"
	"ventas-dashboard/internal/models"
)

const snapshotVersion = "v2"

var errStaleSnapshot = errors.New("snapshot older than source")

// snapshot is what gets persisted; the layout is stored so a changed layout
// invalidates the file.
type snapshot struct {
	Layout string
	Table  models.Table
}

func snapshotPath(cfg config.SpreadsheetConfig) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(cfg.Path)
	return filepath.Join(cfg.CacheDir, fmt.Sprintf("%s_%s.gob", name, snapshotVersion))
}

func layoutKey(cfg config.SpreadsheetConfig) string {
	h := cfg.Headers
	return strings.Join([]string{
		cfg.Sheet, cfg.Columns, fmt.Sprint(cfg.SkipRows), fmt.Sprint(cfg.MaxRows),
		strings.Join(cfg.DateLayouts, "|"),
		h.Branch, h.Product, h.Date, h.Pending, h.Total, h.Quantity,
	}, ";")
}

func saveSnapshot(cfg config.SpreadsheetConfig, table *models.Table) error {
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return err
	}

	file, err := os.Create(snapshotPath(cfg))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(snapshot{Layout: layoutKey(cfg), Table: *table})
}

func loadSnapshot(cfg config.SpreadsheetConfig) (*models.Table, error) {
	path := snapshotPath(cfg)

	snapInfo, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	srcInfo, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, err
	}
	if !srcInfo.ModTime().Before(snapInfo.ModTime()) {
		return nil, errStaleSnapshot
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, err
	}
	if snap.Layout != layoutKey(cfg) {
		return nil, fmt.Errorf("snapshot layout mismatch")
	}
	return &snap.Table, nil
}
