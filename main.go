package main

import (
	"fmt"
	"os"

	"github.com/folio-dev/blogrender/internal/check"
	"github.com/folio-dev/blogrender/internal/index"
	"github.com/folio-dev/blogrender/internal/meta"
	"github.com/folio-dev/blogrender/internal/render"
	"github.com/folio-dev/blogrender/internal/serve"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "blogrender",
		Usage: "Render multilingual HTML blog posts into UI trees and serve them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML site config",
				EnvVars: []string{"BLOGRENDER_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "content-dir",
				Usage: "Directory holding <locale>/posts/<slug>.html",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Path to the sqlite post index",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "Directory for cached rendered pages",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only log errors",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "Transform an HTML document into a UI tree",
				ArgsUsage: "<file|url|->",
				Action:    render.RenderAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "lang", Usage: "lang attribute of the container"},
					&cli.StringFlag{Name: "class", Usage: "Extra class for the container"},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "json",
						Usage:   "Output format: json, html or markdown",
					},
				},
			},
			{
				Name:      "meta",
				Usage:     "Extract head metadata and the excerpt of an HTML document",
				ArgsUsage: "<file|url|->",
				Action:    meta.MetaAction,
				Flags:     []cli.Flag{formatFlag()},
			},
			{
				Name:   "index",
				Usage:  "Load posts from the content directory into the index",
				Action: index.IndexAction,
				Flags:  []cli.Flag{localeFlag(), formatFlag(), workersFlag()},
			},
			{
				Name:   "check",
				Usage:  "Report posts whose detected language does not match their locale",
				Action: check.CheckAction,
				Flags:  []cli.Flag{localeFlag(), formatFlag(), workersFlag()},
			},
			{
				Name:   "serve",
				Usage:  "Serve the blog pages, API, sitemap and metrics",
				Action: serve.ServeAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Usage:   "Listen address",
						EnvVars: []string{"ADDR"},
					},
					workersFlag(),
					&cli.BoolFlag{Name: "sanitize", Usage: "Sanitize rendered post bodies"},
					&cli.BoolFlag{Name: "reindex", Usage: "Reindex every locale before serving"},
				},
			},
		},
	}
}

func localeFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "locale",
		Aliases: []string{"l"},
		Usage:   "Locales to process (default: all configured locales)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "yaml",
		Usage:   "Output format: yaml or json",
	}
}

func workersFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "workers",
		Aliases: []string{"w"},
		Usage:   "Number of concurrent index workers",
	}
}
