package events

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ritzau/award-network/pkg/analysis/api"
	"github.com/ritzau/award-network/pkg/config"
	"github.com/ritzau/award-network/pkg/logging"
	"github.com/ritzau/award-network/pkg/model"
)

// FileSource implements api.Source for JSON and CSV event exports
type FileSource struct {
	// Path overrides cfg.Input when set
	Path string
}

// NewFileSource creates a file source that reads cfg.Input
func NewFileSource() api.Source {
	return &FileSource{}
}

func (s *FileSource) Name() string {
	return "EventFile"
}

func (s *FileSource) Load(ctx context.Context, cfg *config.Config) ([]model.ActivityEvent, error) {
	path := s.Path
	if path == "" && cfg != nil {
		path = cfg.Input
	}
	if path == "" {
		return nil, fmt.Errorf("no input file configured")
	}

	logger := logging.New("source.file")
	logger.Info("Loading activity events", "path", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}
	defer f.Close()

	var decoded *Decoded
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		decoded, err = DecodeJSON(ctx, f)
	case ".csv":
		decoded, err = DecodeCSV(ctx, f)
	default:
		return nil, fmt.Errorf("unsupported events file type %q (want .json or .csv)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for _, rej := range decoded.Rejected {
		logger.Warn("Skipping unreadable record", "path", path, "error", rej)
	}

	logger.Info("Activity events loaded", "events", len(decoded.Events), "rejected", len(decoded.Rejected))
	return decoded.Events, nil
}
