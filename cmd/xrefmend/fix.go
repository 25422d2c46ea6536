package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/xrefmend/internal/diag"
	"github.com/dgallion1/xrefmend/internal/pipeline"
	"github.com/dgallion1/xrefmend/internal/resolve"
)

type fixOptions struct {
	write     bool
	labels    string
	noResolve bool
	watch     bool
	jobs      int
	format    string
	verbose   bool
}

// fileResult is the outcome of reconciling one input file.
type fileResult struct {
	path     string
	output   string
	messages []diag.Message
	inPlace  bool // output may replace the source
	err      error
}

func fixCmd() *cobra.Command {
	opts := fixOptions{}
	cmd := &cobra.Command{
		Use:   "fix FILE...",
		Short: "Reconcile cross-reference prefixes in documents",
		Long: `Parse each FILE, resolve its cross-references and reconcile the
prose in front of them. The result is printed to stdout unless --write is
given. Diagnostics go to stderr.

With --write, a Markdown file is rewritten in place only when it renders
back unchanged before any edit; otherwise, and for other formats, the
result is written next to the input as NAME.xref.md.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := newFixer(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if opts.watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return f.watch(ctx, args)
			}
			return f.run(cmd.Context(), args)
		},
	}

	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "Write results to files instead of stdout")
	cmd.Flags().StringVar(&opts.labels, "labels", "", "YAML file with label templates")
	cmd.Flags().BoolVar(&opts.noResolve, "no-resolve", false, "Treat references as already resolved")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Re-run when a file changes")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 4, "Files processed concurrently")
	cmd.Flags().StringVar(&opts.format, "format", "auto", "Diagnostic format: auto, text or json")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")
	return cmd
}

// fixer reconciles files with one shared engine.
type fixer struct {
	opts    fixOptions
	engine  *pipeline.Engine
	stdout  io.Writer
	stderr  io.Writer
	jsonOut bool
	log     *slog.Logger
}

func newFixer(opts fixOptions, stdout, stderr io.Writer) (*fixer, error) {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var useJSON bool
	switch opts.format {
	case "json":
		useJSON = true
	case "text":
	case "auto", "":
		useJSON = !isTerminal(stderr)
	default:
		return nil, fmt.Errorf("unknown format %q (want auto, text or json)", opts.format)
	}
	if opts.jobs <= 0 {
		opts.jobs = 1
	}

	engineOpts := pipeline.EngineOptions{Log: log}
	if !opts.noResolve {
		var templates map[string]string
		if opts.labels != "" {
			t, err := resolve.LoadTemplates(opts.labels)
			if err != nil {
				return nil, err
			}
			templates = t
		}
		engineOpts.Resolver = resolve.New(templates)
	}

	return &fixer{
		opts:    opts,
		engine:  pipeline.NewEngine(engineOpts),
		stdout:  stdout,
		stderr:  stderr,
		jsonOut: useJSON,
		log:     log,
	}, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// run reconciles paths concurrently and reports in argument order.
func (f *fixer) run(ctx context.Context, paths []string) error {
	results := make([]fileResult, len(paths))

	var g errgroup.Group
	g.SetLimit(f.opts.jobs)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = f.fixFile(ctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var errs []error
	for _, res := range results {
		if err := f.report(res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fixFile reconciles one file. Files not yet started when ctx is done are
// reported as cancelled.
func (f *fixer) fixFile(ctx context.Context, path string) fileResult {
	if err := ctx.Err(); err != nil {
		return fileResult{path: path, err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fileResult{path: path, err: err}
	}
	name := filepath.Base(path)
	res, err := f.engine.ProcessBytes(data, name)
	if err != nil {
		return fileResult{path: path, err: err}
	}
	out := fileResult{path: path, output: res.Output, messages: res.Messages}
	if f.opts.write && isMarkdown(path) {
		out.inPlace = f.engine.Lossless(data, name)
	}
	return out
}

// report prints diagnostics and delivers the output of one file.
func (f *fixer) report(res fileResult) error {
	if res.err != nil {
		return fmt.Errorf("%s: %w", res.path, res.err)
	}
	for _, m := range res.messages {
		f.printDiagnostic(res.path, m)
	}

	if !f.opts.write {
		_, err := io.WriteString(f.stdout, res.output)
		return err
	}

	out := outputPath(res.path, res.inPlace)
	if isMarkdown(res.path) && !res.inPlace {
		f.log.Warn("source does not round-trip through the renderer, writing beside it", "path", res.path, "output", out)
	}
	existing, err := os.ReadFile(out)
	if err == nil && bytes.Equal(existing, []byte(res.output)) {
		return nil
	}
	if err := os.WriteFile(out, []byte(res.output), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	f.log.Debug("wrote output", "path", out, "messages", len(res.messages))
	return nil
}

func (f *fixer) printDiagnostic(path string, m diag.Message) {
	if f.jsonOut {
		line, _ := json.Marshal(struct {
			File string `json:"file"`
			diag.Message
		}{path, m})
		fmt.Fprintf(f.stderr, "%s\n", line)
		return
	}
	fmt.Fprintf(f.stderr, "%s: %s [%s] %s\n", path, m.Severity, m.RuleID, m.Text)
}

// outputPath is where --write puts the result for path. Only Markdown
// that renders back unchanged is overwritten.
func outputPath(path string, inPlace bool) string {
	if inPlace && isMarkdown(path) {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".xref.md"
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
