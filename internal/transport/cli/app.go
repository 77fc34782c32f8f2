package cli

import (
	"log/slog"

	"github.com/reshetovitsme/rss-catalog/internal/di"
	"github.com/reshetovitsme/rss-catalog/internal/shared/config"
	"github.com/reshetovitsme/rss-catalog/internal/shared/logging"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v2"
)

// runtime is what the Before hook builds for the commands
type runtime struct {
	injector do.Injector
	closeLog func() error
}

// App builds the rss-catalog command line application
func App() *cli.App {
	rt := &runtime{}

	return &cli.App{
		Name:  "rss-catalog",
		Usage: "Maintain a catalog of RSS sources grouped by category",
		Description: `Parses text blocks of alternating source names and feed URLs and
		merges the sources into a JSON catalog, one category at a time.
		Sources already present (same URL) are left alone, new ones are appended.

		Settings come from config.yaml/json/toml in the working directory
		(or --config), then RSS_CATALOG_* environment variables, then flags:

		--catalog => RSS_CATALOG_CATALOG_PATH=rss-sources-complete.json
		--log-level => RSS_CATALOG_LOG_LEVEL=debug
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (yaml, json or toml)",
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Catalog JSON file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Before: rt.setup,
		After:  rt.teardown,
		Commands: []*cli.Command{
			initCmd(rt),
			importCmd(rt),
			listCmd(rt),
			exportCmd(rt),
			serveCmd(rt),
		},
	}
}

func (rt *runtime) setup(ctx *cli.Context) error {
	overrides := map[string]any{}
	if ctx.IsSet("catalog") {
		overrides[config.KeyCatalogPath] = ctx.String("catalog")
	}
	if ctx.IsSet("log-level") {
		overrides[config.KeyLogLevel] = ctx.String("log-level")
	}

	injector, err := di.Setup(config.Options{
		ConfigFile: ctx.String("config"),
		Overrides:  overrides,
	})
	if err != nil {
		return err
	}

	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Setup(cfg, ctx.App.ErrWriter)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	rt.injector = injector
	rt.closeLog = closeLog
	return nil
}

func (rt *runtime) teardown(ctx *cli.Context) error {
	var err error
	if rt.injector != nil {
		err = di.Shutdown(rt.injector)
	}
	if rt.closeLog != nil {
		if closeErr := rt.closeLog(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
