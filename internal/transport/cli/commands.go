package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	catalogService "github.com/reshetovitsme/rss-catalog/internal/modules/catalog/service"
	feedDomain "github.com/reshetovitsme/rss-catalog/internal/modules/feed/domain"
	feedService "github.com/reshetovitsme/rss-catalog/internal/modules/feed/service"
	importerDomain "github.com/reshetovitsme/rss-catalog/internal/modules/importer/domain"
	importerService "github.com/reshetovitsme/rss-catalog/internal/modules/importer/service"
	pageDomain "github.com/reshetovitsme/rss-catalog/internal/modules/page/domain"
	pageRepo "github.com/reshetovitsme/rss-catalog/internal/modules/page/repository"
	"github.com/reshetovitsme/rss-catalog/internal/shared/config"
	httpServer "github.com/reshetovitsme/rss-catalog/internal/transport/http"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"github.com/urfave/cli/v2"
)

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Value:   outputTable,
		Usage:   "table or json",
	}
}

func initCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create an empty catalog",
		Description: `Writes {"categories": {}} to the catalog path.
		An existing catalog is never overwritten.`,
		Action: func(ctx *cli.Context) error {
			catalog, err := do.Invoke[*catalogService.Service](rt.injector)
			if err != nil {
				return err
			}
			if err := catalog.Init(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(ctx.App.Writer, "Created %s\n", catalog.Path())
			return err
		},
	}
}

func importCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Parse source blocks and merge them into the catalog",
		Description: `Without --category every page of the page table is imported in order.
		With --category a single block is read from --block (a file, or - for stdin).

		Each category is read, merged and written before the next one starts.
		On failure the categories already written stay written.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "pages",
				Aliases: []string{"p"},
				Usage:   "Page table file (yaml, json or toml)",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Category key for a single block",
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Display name of a new category, defaults to the key",
			},
			&cli.StringFlag{
				Name:  "block",
				Usage: "Block file, - reads stdin",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Fail on labels without URLs and URLs without labels",
			},
			outputFlag(),
		},
		Action: func(ctx *cli.Context) error {
			output := ctx.String("output")
			if err := checkOutput(output); err != nil {
				return err
			}

			cfg, err := do.Invoke[*config.Config](rt.injector)
			if err != nil {
				return err
			}
			if ctx.IsSet("pages") {
				cfg.PagesPath = ctx.String("pages")
			}
			if ctx.Bool("strict") {
				cfg.StrictParse = true
			}

			importer, err := do.Invoke[*importerService.Service](rt.injector)
			if err != nil {
				return err
			}

			var report *importerDomain.Report
			if ctx.IsSet("category") || ctx.IsSet("block") {
				report, err = importBlock(ctx, importer)
			} else {
				report, err = importer.ImportTable(ctx.Context)
			}

			if report != nil {
				if renderErr := renderReport(ctx.App.Writer, report, output); renderErr != nil && err == nil {
					err = renderErr
				}
			}
			return err
		},
	}
}

func importBlock(ctx *cli.Context, importer *importerService.Service) (*importerDomain.Report, error) {
	key, block := ctx.String("category"), ctx.String("block")
	if key == "" || block == "" {
		return nil, oops.In("cli").Errorf("--category and --block must be given together")
	}

	text, err := pageRepo.ReadBlock(block, ctx.App.Reader)
	if err != nil {
		return nil, err
	}

	page := pageDomain.Page{Key: key, Name: ctx.String("name"), Text: text}
	return importer.Run(ctx.Context, []pageDomain.Page{page})
}

func listCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List categories, or the sources of one category",
		ArgsUsage: "[category]",
		Flags:     []cli.Flag{outputFlag()},
		Action: func(ctx *cli.Context) error {
			output := ctx.String("output")
			if err := checkOutput(output); err != nil {
				return err
			}

			catalog, err := do.Invoke[*catalogService.Service](rt.injector)
			if err != nil {
				return err
			}

			if key := ctx.Args().First(); key != "" {
				category, err := catalog.Category(key)
				if err != nil {
					return err
				}
				return renderCategory(ctx.App.Writer, category, output)
			}

			summaries, err := catalog.Categories()
			if err != nil {
				return err
			}
			return renderSummaries(ctx.App.Writer, summaries, output)
		},
	}
}

func exportCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Render the sources of a category as a feed",
		ArgsUsage: "<category>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   feedDomain.FormatRss.String(),
				Usage:   "rss, atom or json",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Value: "http://localhost:8080",
				Usage: "Prefix of the category link in the feed",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Output file, defaults to stdout",
			},
		},
		Action: func(ctx *cli.Context) error {
			key := ctx.Args().First()
			if key == "" {
				return oops.In("cli").Errorf("export needs a category key")
			}

			format, err := feedDomain.ParseFormat(ctx.String("format"))
			if err != nil {
				return oops.In("cli").With("format", ctx.String("format")).Wrap(err)
			}

			feeds, err := do.Invoke[*feedService.Service](rt.injector)
			if err != nil {
				return err
			}

			out, err := feeds.Render(key, ctx.String("base-url"), format)
			if err != nil {
				return err
			}

			if path := ctx.String("out"); path != "" {
				if err := os.WriteFile(path, []byte(out), 0644); err != nil {
					return oops.In("cli").With("path", path).Wrap(err)
				}
				return nil
			}

			_, err = fmt.Fprintln(ctx.App.Writer, out)
			return err
		},
	}
}

func serveCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog read-only over HTTP",
		Description: `Routes:
		GET /health
		GET /catalog
		GET /categories
		GET /categories/{key}
		GET /categories/{key}/feed?format=rss|atom|json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "HTTP port",
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := do.Invoke[*config.Config](rt.injector)
			if err != nil {
				return err
			}
			if ctx.IsSet("port") {
				cfg.HTTPPort = ctx.String("port")
			}

			server, err := do.Invoke[*httpServer.Server](rt.injector)
			if err != nil {
				return err
			}

			sigCtx, cancel := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return server.Start(sigCtx)
		},
	}
}
