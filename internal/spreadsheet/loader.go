package spreadsheet

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"ventas-dashboard/internal/config"
	"ventas-dashboard/internal/models"
	"ventas-dashboard/internal/observability"
)

// ReadTable reads and parses the configured sheet without any caching.
func ReadTable(ctx context.Context, cfg config.SpreadsheetConfig) (*models.Table, error) {
	grid, err := ReadRows(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cfg.Path, err)
	}

	records, err := Parse(ctx, grid, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", cfg.Path, err)
	}

	return &models.Table{
		Records:  records,
		Source:   cfg.Path,
		Sheet:    cfg.Sheet,
		LoadedAt: time.Now(),
	}, nil
}

// Loader reads the sheet once per process. Every later Load returns the same
// table, or the same error, without touching the source again.
type Loader struct {
	cfg    config.SpreadsheetConfig
	logger *slog.Logger

	once  sync.Once
	table *models.Table
	err   error
	reads atomic.Int64
}

func NewLoader(cfg config.SpreadsheetConfig, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{cfg: cfg, logger: logger}
}

func (l *Loader) Load(ctx context.Context) (*models.Table, error) {
	l.once.Do(func() {
		l.table, l.err = l.load(ctx)
	})
	return l.table, l.err
}

// Reads reports how many times the source file has been parsed.
func (l *Loader) Reads() int64 {
	return l.reads.Load()
}

func (l *Loader) load(ctx context.Context) (*models.Table, error) {
	ctx, span := observability.StartSpan(ctx, "spreadsheet.load")
	defer func() {
		span.Finish()
		span.Log(ctx, l.logger)
	}()
	span.SetTag("path", l.cfg.Path)
	span.SetTag("sheet", l.cfg.Sheet)

	if l.cfg.CacheDir != "" {
		if table, err := loadSnapshot(l.cfg); err == nil {
			span.SetTag("source", "snapshot")
			l.logger.Info("loaded from snapshot", "path", l.cfg.Path, "records", table.Len())
			return table, nil
		}
	}

	start := time.Now()
	l.logger.Info("reading spreadsheet", "path", l.cfg.Path, "sheet", l.cfg.Sheet, "columns", l.cfg.Columns)

	table, err := ReadTable(ctx, l.cfg)
	l.reads.Add(1)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if l.cfg.CacheDir != "" {
		if err := saveSnapshot(l.cfg, table); err != nil {
			l.logger.Warn("failed to save snapshot", "error", err)
		}
	}

	l.logger.Info("spreadsheet loaded",
		"records", table.Len(),
		"duration", time.Since(start),
	)
	span.SetTag("source", "file")
	return table, nil
}
