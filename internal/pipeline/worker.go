package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/xrefmend/internal/diag"
	"github.com/dgallion1/xrefmend/internal/metrics"
	"github.com/dgallion1/xrefmend/internal/parser"
	"github.com/dgallion1/xrefmend/internal/pathstore"
	"github.com/dgallion1/xrefmend/internal/plugin"
)

// Store persists reconciled documents. *pathstore.Client satisfies it.
type Store interface {
	PutNode(ctx context.Context, key string, req pathstore.NodeRequest) error
}

// Worker processes a single document job.
type Worker struct {
	engine     *Engine
	store      Store
	log        *slog.Logger
	maxRetries int
}

// NewWorker creates a worker. A nil store skips the storing phase.
func NewWorker(engine *Engine, store Store, log *slog.Logger, maxRetries int) *Worker {
	if maxRetries <= 0 {
		maxRetries = MaxRetries
	}
	return &Worker{engine: engine, store: store, log: log, maxRetries: maxRetries}
}

// Process runs parse, resolve, reconcile and store for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "user_id", job.UserID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.engine.parse)
	if err != nil {
		log.Error("unsupported format", "error", err)
		w.fail(job, "parsing", err.Error())
		return
	}

	data := job.FileData()
	tree, err := p.Parse(bytes.NewReader(data), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		w.fail(job, "parsing", fmt.Sprintf("parse: %s", err))
		return
	}
	job.ContentHash = ContentHashHex(data)
	job.releaseFileData()

	// Phase 2 and 3: resolve, then reconcile prefixes.
	file := diag.NewFile(job.Filename, log)
	res := w.engine.process(tree, file, func(stage plugin.Stage) {
		switch stage {
		case plugin.StageDocument:
			job.SetStatus(StatusResolving, "resolving")
		case plugin.StageProject:
			job.SetStatus(StatusReconciling, "reconciling")
		}
	})
	job.SetCounts(res.Counts)
	log.Info("reconciled document",
		"paragraphs", res.Counts.Paragraphs,
		"references", res.Counts.References,
		"edits", res.Counts.Edits)

	// Phase 4: Store the result in pathstore.
	if w.store != nil {
		job.SetStatus(StatusStoring, "storing")
		if err := w.storeResult(ctx, job, res, log); err != nil {
			log.Error("store failed", "error", err)
			w.fail(job, "storing", fmt.Sprintf("store: %s", err))
			return
		}
	}

	job.SetResult(JobResult{Output: res.Output, Messages: res.Messages})
	job.SetStatus(StatusCompleted, "done")
	metrics.RecordJob(string(StatusCompleted))
}

func (w *Worker) storeResult(ctx context.Context, job *Job, res Result, log *slog.Logger) error {
	key := pathstore.DocumentKey(job.UserID, job.DocID)
	req := pathstore.NodeRequest{
		Value: map[string]any{
			"filename":     job.Filename,
			"content_hash": job.ContentHash,
			"output":       res.Output,
			"messages":     res.Messages,
			"counts":       res.Counts,
			"created_at":   job.CreatedAt.Format(time.RFC3339),
		},
		Source: "xrefmend:" + job.DocID,
	}
	return Retry(ctx, w.maxRetries, func() error {
		return w.store.PutNode(ctx, key, req)
	}, func(attempt int, err error) {
		metrics.RecordStoreRetry()
		log.Warn("retryable store error", "key", key, "attempt", attempt, "error", err)
	})
}

func (w *Worker) fail(job *Job, phase, msg string) {
	job.AddError(msg)
	job.SetStatus(StatusFailed, phase)
	metrics.RecordJob(string(StatusFailed))
}
