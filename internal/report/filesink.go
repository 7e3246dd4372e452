package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/quantfolio/quantfolio/pkg/logger"
)

// FileSink writes rendered reports under a directory, one file per run.
type FileSink struct {
	dir    string
	logger *logger.Logger
}

// NewFileSink creates a sink writing into dir, creating it when missing.
func NewFileSink(dir string, log *logger.Logger) *FileSink {
	return &FileSink{dir: dir, logger: log}
}

// Write stores a report named after the kind and date, returning the path.
func (f *FileSink) Write(kind string, date time.Time, content string) (string, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.txt", kind, date.Format("20060102"))
	path := filepath.Join(f.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	f.logger.WithField("path", path).Info("Report written")
	return path, nil
}
