package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/xrefmend/internal/diag"
	"github.com/dgallion1/xrefmend/internal/mdast"
	"github.com/dgallion1/xrefmend/internal/metrics"
	"github.com/dgallion1/xrefmend/internal/parser"
	"github.com/dgallion1/xrefmend/internal/plugin"
	"github.com/dgallion1/xrefmend/internal/resolve"
	"github.com/dgallion1/xrefmend/internal/xref"
)

// Result is the outcome of reconciling one document.
type Result struct {
	Tree     *mdast.Node    `json:"tree,omitempty"`
	Output   string         `json:"output"`
	Messages []diag.Message `json:"messages"`
	Counts   Counts         `json:"counts"`
}

// Counts summarises a reconciled tree.
type Counts struct {
	Paragraphs int `json:"paragraphs"`
	References int `json:"references"`
	Edits      int `json:"edits"`
}

// Engine runs the transform pipeline: resolution at the document stage,
// prefix reconciliation at the project stage.
type Engine struct {
	registry *plugin.Registry
	stats    *LatencyStats
	parse    parser.Options
	log      *slog.Logger
}

// EngineOptions configures an Engine. A nil Resolver skips resolution and
// expects trees whose references are already resolved.
type EngineOptions struct {
	Resolver *resolve.Resolver
	Stats    *LatencyStats
	Parser   parser.Options
	Log      *slog.Logger
}

func NewEngine(opts EngineOptions) *Engine {
	reg := plugin.NewRegistry()
	if opts.Resolver != nil {
		reg.Register(opts.Resolver.Plugin())
	}
	reg.Register(xref.Plugin())

	log := opts.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{registry: reg, stats: opts.Stats, parse: opts.Parser, log: log}
}

// Process reconciles tree in place and renders it. It never fails: edits
// that cannot be made are skipped silently.
func (e *Engine) Process(tree *mdast.Node, file *diag.File) Result {
	return e.process(tree, file, nil)
}

// process runs each stage in order, calling onStage before it starts.
func (e *Engine) process(tree *mdast.Node, file *diag.File, onStage func(plugin.Stage)) Result {
	if file == nil {
		file = diag.NewFile("", e.log)
	}
	start := time.Now()
	for _, stage := range plugin.Stages {
		if onStage != nil {
			onStage(stage)
		}
		e.registry.RunStage(stage, tree, file)
	}
	elapsed := time.Since(start)

	format := strings.ToLower(filepath.Ext(file.Path))
	msgs := file.Messages()
	if e.stats != nil {
		e.stats.Record(elapsed)
	}
	metrics.ObserveReconcile(format, elapsed)
	metrics.RecordDiagnostics(format, msgs)

	res := Result{
		Tree:     tree,
		Output:   mdast.Render(tree),
		Messages: msgs,
		Counts: Counts{
			Paragraphs: len(mdast.SelectAll(tree, mdast.TypeParagraph)),
			References: len(mdast.SelectAll(tree, mdast.TypeCrossReference)),
			Edits:      file.Count(xref.RuleTrim) + file.Count(xref.RuleInject),
		},
	}
	e.log.Debug("reconciled document", "file", file.Path, "edits", res.Counts.Edits, "duration", elapsed)
	return res
}

// ProcessBytes parses data by filename extension and reconciles it.
func (e *Engine) ProcessBytes(data []byte, filename string) (Result, error) {
	p, err := parser.ForFile(filename, e.parse)
	if err != nil {
		return Result{}, err
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", filename, err)
	}
	return e.Process(tree, diag.NewFile(filename, e.log)), nil
}

// Lossless reports whether rendering the parsed document, before any
// transform runs, reproduces data exactly. Only then can the rendered
// output replace the source without losing content.
func (e *Engine) Lossless(data []byte, filename string) bool {
	p, err := parser.ForFile(filename, e.parse)
	if err != nil {
		return false
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return false
	}
	return mdast.Render(tree) == string(data)
}
