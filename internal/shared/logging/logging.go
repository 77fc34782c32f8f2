package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/reshetovitsme/rss-catalog/internal/shared/config"
	slogmulti "github.com/samber/slog-multi"
	"github.com/samber/oops"
)

// Setup builds the process logger: human-readable records on stderr at the
// configured level and, when a log file is configured, JSON records appended
// to it. Stdout is left to reports and exports. The returned closer releases
// the log file.
func Setup(cfg *config.Config, stderr io.Writer) (*slog.Logger, func() error, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	}
	closer := func() error { return nil }

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0755); err != nil {
			return nil, nil, oops.With("log_file", cfg.LogFile).Wrap(err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, oops.With("log_file", cfg.LogFile).Wrap(err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		closer = f.Close
	}

	// Fanout sends every record to each handler
	logger := slog.New(slogmulti.Fanout(handlers...)).With("app_env", cfg.AppEnv.String())

	return logger, closer, nil
}
