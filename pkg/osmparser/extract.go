package osmparser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// LoadOrExtract returns the rows of cacheFile. A missing, unreadable or stale
// cache (older than maxAge, maxAge <= 0 never expires) is rebuilt from mapFile
// with p and written back. Without a mapFile a stale cache is still used.
func (p *OsmParser) LoadOrExtract(ctx context.Context, cacheFile, mapFile string, maxAge time.Duration) ([]Row, error) {
	rows, queried, err := ReadRows(cacheFile)
	switch {
	case err == nil && !IsStale(queried, time.Now(), maxAge):
		p.logger.Info("read dataset cache", zap.String("file", cacheFile), zap.Int("rows", len(rows)),
			zap.Time("queried", queried))
		return rows, nil
	case err == nil && mapFile == "":
		p.logger.Warn("dataset cache is stale and no openstreetmap file was given",
			zap.String("file", cacheFile), zap.Time("queried", queried))
		return rows, nil
	case err != nil && mapFile == "":
		return nil, fmt.Errorf("read dataset cache %s: %w", cacheFile, err)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		p.logger.Warn("unreadable dataset cache, extracting again", zap.String("file", cacheFile), zap.Error(err))
	}

	rows, err = p.Parse(ctx, mapFile)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", mapFile, err)
	}
	if err := WriteRows(cacheFile, rows, time.Now()); err != nil {
		p.logger.Warn("could not write dataset cache", zap.String("file", cacheFile), zap.Error(err))
	}
	return rows, nil
}
