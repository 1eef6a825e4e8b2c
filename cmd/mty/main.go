// Copyright 2023 Jesus Ruiz. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Command mty is the CLI front end for the mintyml compiler: a single
// urfave/cli app with a zap.SugaredLogger set up once per command and
// threaded down explicitly.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/youngspe/mintyml-go/internal/config"
	"github.com/youngspe/mintyml-go/mintyml"
)

func main() {
	app := &cli.App{
		Name:    "mty",
		Version: "v0.1.0",
		Authors: []*cli.Author{
			{Name: "Jesus Ruiz", Email: "hesus.ruiz@gmail.com"},
		},
		Usage: "compile MinTyML markup to HTML",
		Commands: []*cli.Command{
			convertCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "convert MinTyML source to HTML or XHTML",
		UsageText: "mty convert [options] FILES...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "stdin", Usage: "read source from stdin"},
			&cli.StringFlag{Name: "dir", Usage: "convert every .mty file under `PATH`"},
			&cli.BoolFlag{Name: "recurse", Usage: "with --dir, descend into subdirectories"},
			&cli.IntFlag{Name: "depth", Value: 0, Usage: "with --recurse, limit descent to `N` levels (0 means unlimited)"},
			&cli.StringFlag{Name: "out", Usage: "write output to `PATH` instead of alongside each input"},
			&cli.BoolFlag{Name: "stdout", Usage: "write output to stdout instead of a file"},
			&cli.BoolFlag{Name: "xml", Usage: "render XHTML5 instead of HTML5"},
			&cli.BoolFlag{Name: "pretty", Usage: "pretty-print with --indent spaces per level (default 2)"},
			&cli.IntFlag{Name: "indent", Value: 2, Usage: "spaces per indent level when --pretty is set"},
			&cli.BoolFlag{Name: "complete-page", Usage: "wrap output in a full <html> document"},
			&cli.BoolFlag{Name: "fragment", Usage: "never wrap output in a full <html> document (overrides --complete-page)"},
			&cli.StringSliceFlag{Name: "special-tag", Usage: "override an inline-format tag, `key=value` (repeatable, or comma-separated)"},
			&cli.BoolFlag{Name: "metadata", Usage: "emit mty:start/mty:end attributes"},
			&cli.BoolFlag{Name: "metadata-elements", Usage: "emit mty:text/mty:comment wrapper elements (implies --metadata)"},
			&cli.BoolFlag{Name: "fail-fast", Usage: "stop at the first parse error instead of aggregating"},
			&cli.StringFlag{Name: "config", Usage: "load base options from a YAML `FILE` before applying flags"},
			&cli.BoolFlag{Name: "debug", Usage: "run with development logging"},
		},
		Action: runConvert,
	}
}

// runConvert is the convert subcommand's action: flags drive behavior, a
// zap.SugaredLogger is built once here and passed down explicitly, never
// as a package global.
func runConvert(c *cli.Context) error {
	logger, err := newLogger(c.Bool("debug"))
	if err != nil {
		return fmt.Errorf("mty: set up logging: %w", err)
	}
	defer logger.Sync()

	opts, err := resolveOptions(c)
	if err != nil {
		return fmt.Errorf("mty: %w", err)
	}

	dest, err := resolveDestination(c)
	if err != nil {
		return err
	}

	switch {
	case c.Bool("stdin"):
		return convertStdin(opts, dest, logger)
	case c.String("dir") != "":
		files, err := collectDirFiles(c.String("dir"), c.Bool("recurse"), c.Int("depth"))
		if err != nil {
			return fmt.Errorf("mty: %w", err)
		}
		return convertFiles(files, opts, dest, logger)
	case c.Args().Present():
		return convertFiles(c.Args().Slice(), opts, dest, logger)
	default:
		return cli.Exit("mty convert: no input given (use --stdin, --dir, or list files)", 1)
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	var z *zap.Logger
	var err error
	if debug {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return z.Sugar(), nil
}

// resolveOptions builds mintyml.Options from --config (if given) overlaid
// by the explicit flags, so a flag on the command line always wins over
// the config file.
func resolveOptions(c *cli.Context) (mintyml.Options, error) {
	base := mintyml.DefaultOptions()
	if p := c.String("config"); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			return base, fmt.Errorf("read config: %w", err)
		}
		f, err := config.Load(data)
		if err != nil {
			return base, err
		}
		base = f.Apply(base)
	}

	opts := base
	if c.IsSet("xml") {
		opts.XML = c.Bool("xml")
	}
	if c.Bool("pretty") {
		indent := c.Int("indent")
		opts.Indent = &indent
	}
	switch {
	case c.Bool("fragment"):
		opts.CompletePage = false
	case c.Bool("complete-page"):
		opts.CompletePage = true
	}
	if tags := c.StringSlice("special-tag"); len(tags) > 0 {
		merged := make(map[string]*string, len(opts.SpecialTags)+len(tags))
		for k, v := range opts.SpecialTags {
			merged[k] = v
		}
		for _, entry := range tags {
			for _, kv := range strings.Split(entry, ",") {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return opts, fmt.Errorf("--special-tag: expected key=value, got %q", kv)
				}
				if v == "" {
					// "key=" drops the wrapper entirely.
					merged[k] = nil
					continue
				}
				merged[k] = &v
			}
		}
		opts.SpecialTags = merged
	}
	if c.IsSet("metadata-elements") {
		opts.MetadataElements = c.Bool("metadata-elements")
	}
	if c.IsSet("metadata") {
		opts.Metadata = c.Bool("metadata")
	}
	opts.Metadata = opts.Metadata || opts.MetadataElements
	if c.IsSet("fail-fast") {
		opts.FailFast = c.Bool("fail-fast")
	}
	return opts, nil
}

// destination describes where converted output goes, resolved once up
// front rather than re-derived per file.
type destination struct {
	stdout bool
	path   string // non-empty means "write every input to this single path"
}

func resolveDestination(c *cli.Context) (destination, error) {
	switch {
	case c.Bool("stdout") && c.String("out") != "":
		return destination{}, cli.Exit("mty convert: --stdout and --out are mutually exclusive", 1)
	case c.Bool("stdout"):
		return destination{stdout: true}, nil
	default:
		return destination{path: c.String("out")}, nil
	}
}

// logSyntaxErrors reports each recoverable error with the line/column its
// span starts at, which reads better in a terminal than raw byte offsets.
func logSyntaxErrors(logger *zap.SugaredLogger, name, source string, convErr error) {
	var mErr *mintyml.Error
	if !errors.As(convErr, &mErr) {
		logger.Errorw("conversion failed", "source", name, "error", convErr)
		return
	}
	src := mintyml.NewSource(source)
	for _, se := range mErr.SyntaxErrors {
		line, col := src.LineCol(se.Span.Start)
		logger.Warnw("syntax error", "source", name, "line", line, "col", col, "error", se.Error())
	}
}

func convertStdin(opts mintyml.Options, dest destination, logger *zap.SugaredLogger) error {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("mty: read stdin: %w", err)
	}
	out, convErr := mintyml.Convert(string(src), opts)
	if convErr != nil {
		logSyntaxErrors(logger, "<stdin>", string(src), convErr)
	}
	if dest.stdout || dest.path == "" {
		fmt.Print(out)
		return convErr
	}
	if err := os.WriteFile(dest.path, []byte(out), 0o664); err != nil {
		return fmt.Errorf("mty: write %s: %w", dest.path, err)
	}
	return convErr
}

// collectDirFiles walks dir for .mty files, honoring recurse/depth;
// depth <= 0 means unlimited once recurse is set.
func collectDirFiles(dir string, recurse bool, depth int) ([]string, error) {
	var files []string
	rootDepth := strings.Count(filepath.Clean(dir), string(filepath.Separator))
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if p == dir {
				return nil
			}
			if !recurse {
				return filepath.SkipDir
			}
			if depth > 0 {
				cur := strings.Count(filepath.Clean(p), string(filepath.Separator)) - rootDepth
				if cur > depth {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if strings.HasSuffix(p, ".mty") {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

// convertFiles dispatches each file to its own conversion independently
// across a worker pool sized to GOMAXPROCS; conversions share no state, so
// disjoint sources are safe to run concurrently. Every file is attempted
// regardless of earlier failures; the return value is non-nil if any
// failed.
func convertFiles(files []string, opts mintyml.Options, dest destination, logger *zap.SugaredLogger) error {
	if len(files) == 0 {
		return cli.Exit("mty convert: no input files matched", 1)
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(files) {
		workers = len(files)
	}
	jobs := make(chan string)
	var mu sync.Mutex
	var failures []string

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for path := range jobs {
				if err := convertOneFile(path, opts, dest, logger); err != nil {
					logger.Errorw("conversion failed", "file", path, "error", err)
					mu.Lock()
					failures = append(failures, path)
					mu.Unlock()
				}
			}
		}()
	}
	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	if len(failures) > 0 {
		return fmt.Errorf("mty: %d of %d files failed: %s", len(failures), len(files), strings.Join(failures, ", "))
	}
	return nil
}

func convertOneFile(path string, opts mintyml.Options, dest destination, logger *zap.SugaredLogger) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, convErr := mintyml.Convert(string(src), opts)
	if convErr != nil {
		if opts.FailFast {
			return convErr
		}
		logSyntaxErrors(logger, path, string(src), convErr)
	}

	if dest.stdout {
		fmt.Print(out)
		return nil
	}
	outPath := dest.path
	if outPath == "" {
		outPath = outputPathFor(path)
	}
	return os.WriteFile(outPath, []byte(out), 0o664)
}

func outputPathFor(inputPath string) string {
	ext := filepath.Ext(inputPath)
	if ext == "" {
		return inputPath + ".html"
	}
	return strings.TrimSuffix(inputPath, ext) + ".html"
}
