package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/scopemux/scopemux/internal/config"
	"github.com/scopemux/scopemux/internal/logr"
	"github.com/scopemux/scopemux/internal/project"
)

// Version is overwritten at release-build time via -ldflags.
var Version = "dev"

// loadProjectConfig loads .scopemux.kdl from root and applies CLI flag
// overrides, following the teacher's loadConfigWithOverrides idiom.
func loadProjectConfig(c *cli.Context, root string) (project.Configuration, error) {
	cfg, err := config.LoadKDL(root)
	if err != nil {
		return project.Configuration{}, fmt.Errorf("failed to load config from %s: %w", root, err)
	}

	if extFlags := c.StringSlice("ext"); len(extFlags) > 0 {
		cfg.ExtensionFilter = extFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.ExcludeGlobs = append(cfg.ExcludeGlobs, excludeFlags...)
	}
	if c.Bool("headers") {
		cfg.ParseHeaders = true
	}
	if c.Bool("suggest") {
		cfg.SuggestOnNotFound = true
	}
	if depth := c.Int("max-include-depth"); depth > 0 {
		cfg.MaxIncludeDepth = uint(depth)
	}
	return cfg, nil
}

func openProject(c *cli.Context) (*project.Project, string, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve root path %q: %w", root, err)
	}

	cfg, err := loadProjectConfig(c, absRoot)
	if err != nil {
		return nil, "", err
	}

	if level := c.String("log-level"); level != "" {
		logr.SetLevel(logr.ParseLevel(level))
	} else if cfg.LogLevel != "" {
		logr.SetLevel(logr.ParseLevel(cfg.LogLevel))
	}

	p := project.New(absRoot, cfg, nil)
	if err := p.AddDirectory(absRoot, true); err != nil {
		return nil, "", fmt.Errorf("failed to discover files under %s: %w", absRoot, err)
	}
	return p, absRoot, nil
}

func indexCommand(c *cli.Context) error {
	p, root, err := openProject(c)
	if err != nil {
		return err
	}

	ctx := context.Background()
	start := time.Now()
	if err := p.ParseAllFiles(ctx); err != nil {
		return fmt.Errorf("parse_all_files: %w", err)
	}
	status := p.ResolveAll()

	stats := p.GetStats()
	fmt.Printf("indexed %s in %v\n", root, time.Since(start))
	fmt.Printf("files discovered=%d parsed=%d\n", stats.FilesDiscovered, stats.FilesParsed)
	fmt.Printf("references total=%d resolved=%d unresolved=%d (last_status=%s)\n",
		stats.Resolve.Total, stats.Resolve.Resolved, stats.Resolve.Unresolved(), status)

	if lastErr, ok := p.LastError(); ok {
		fmt.Printf("last_error: %s\n", lastErr.Error())
	}
	return nil
}

func symbolCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("usage: scopemux symbol <qualified-name>", 1)
	}
	p, _, err := openProject(c)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := p.ParseAllFiles(ctx); err != nil {
		return fmt.Errorf("parse_all_files: %w", err)
	}
	p.ResolveAll()

	name := c.Args().First()
	entry, ok := p.LookupSymbol(name)
	if !ok {
		return cli.Exit(fmt.Sprintf("symbol not found: %s", name), 1)
	}
	fmt.Printf("%s  scope=%s  lang=%s  file=%s\n", entry.QualifiedName, entry.Scope, entry.Language, entry.FilePath)
	return nil
}

func watchCommand(c *cli.Context) error {
	p, root, err := openProject(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.ParseAllFiles(ctx); err != nil {
		return fmt.Errorf("parse_all_files: %w", err)
	}
	p.ResolveAll()

	w, err := project.WatchDirs(ctx, p, []string{root}, func(s project.Stats) {
		fmt.Printf("reindexed: files=%d resolved=%d/%d\n", s.FilesParsed, s.Resolve.Resolved, s.Resolve.Total)
	})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	fmt.Printf("watching %s (ctrl-c to stop)\n", root)
	select {}
}

func main() {
	app := &cli.App{
		Name:                   "scopemux",
		Usage:                  "multi-language source analysis engine: AST, symbol index, reference resolution",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "project root directory to index",
				Value:   ".",
			},
			&cli.StringSliceFlag{
				Name:  "ext",
				Usage: "restrict discovery to matching extensions/globs (overrides .scopemux.kdl)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "exclude files matching glob patterns",
			},
			&cli.BoolFlag{
				Name:  "headers",
				Usage: "parse system/angle-bracket includes in addition to project-local ones",
			},
			&cli.BoolFlag{
				Name:  "suggest",
				Usage: "enable fuzzy \"did you mean\" diagnostics on unresolved references",
			},
			&cli.IntFlag{
				Name:  "max-include-depth",
				Usage: "override .scopemux.kdl's max_include_depth",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "error|warning|info|debug",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "discover, parse, and resolve every file under root, printing a summary",
				Action: indexCommand,
			},
			{
				Name:      "symbol",
				Usage:     "look up a fully-qualified symbol after indexing",
				ArgsUsage: "<qualified-name>",
				Action:    symbolCommand,
			},
			{
				Name:   "watch",
				Usage:  "index root, then re-index on every filesystem change until interrupted",
				Action: watchCommand,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() > 0 {
				return symbolCommand(c)
			}
			return indexCommand(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "scopemux: %v\n", err)
		os.Exit(1)
	}
}
