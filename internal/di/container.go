package di

import (
	"log/slog"

	catalogRepo "github.com/reshetovitsme/rss-catalog/internal/modules/catalog/repository"
	catalogService "github.com/reshetovitsme/rss-catalog/internal/modules/catalog/service"
	feedService "github.com/reshetovitsme/rss-catalog/internal/modules/feed/service"
	importerService "github.com/reshetovitsme/rss-catalog/internal/modules/importer/service"
	pageRepo "github.com/reshetovitsme/rss-catalog/internal/modules/page/repository"
	"github.com/reshetovitsme/rss-catalog/internal/shared/config"
	httpServer "github.com/reshetovitsme/rss-catalog/internal/transport/http"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Setup initializes the dependency injection container. Services are built
// lazily on first use and log through slog.Default(), so the caller should
// install its logger before invoking any of them.
func Setup(opts config.Options) (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load(opts)
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Catalog Repository
	do.Provide(injector, func(i do.Injector) (catalogRepo.Repository, error) {
		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			return nil, err
		}
		repo, err := catalogRepo.NewFileStorage(cfg.CatalogPath)
		if err != nil {
			return nil, oops.With("catalog_path", cfg.CatalogPath, "context", "failed to initialize catalog repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Page Repository
	do.Provide(injector, func(i do.Injector) (pageRepo.Repository, error) {
		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			return nil, err
		}
		return pageRepo.NewFileStorage(cfg.PagesPath), nil
	})

	// Register Catalog Service
	do.Provide(injector, func(i do.Injector) (*catalogService.Service, error) {
		repo, err := do.Invoke[catalogRepo.Repository](i)
		if err != nil {
			return nil, err
		}
		svc := catalogService.New(repo)
		svc.SetLogger(slog.Default())
		return svc, nil
	})

	// Register Importer Service
	do.Provide(injector, func(i do.Injector) (*importerService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		catalog, err := do.Invoke[*catalogService.Service](i)
		if err != nil {
			return nil, err
		}
		pages, err := do.Invoke[pageRepo.Repository](i)
		if err != nil {
			return nil, err
		}
		svc := importerService.New(catalog, pages, cfg.StrictParse)
		svc.SetLogger(slog.Default())
		return svc, nil
	})

	// Register Feed Service
	do.Provide(injector, func(i do.Injector) (*feedService.Service, error) {
		catalog, err := do.Invoke[*catalogService.Service](i)
		if err != nil {
			return nil, err
		}
		return feedService.New(catalog), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		catalog, err := do.Invoke[*catalogService.Service](i)
		if err != nil {
			return nil, err
		}
		feeds, err := do.Invoke[*feedService.Service](i)
		if err != nil {
			return nil, err
		}
		server := httpServer.New(cfg, catalog, feeds)
		server.SetLogger(slog.Default())
		return server, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	report := injector.Shutdown()
	if report != nil && !report.Succeed {
		return oops.In("di").Wrap(report)
	}
	return nil
}
