// Package batch generates route scripts for many jobs in one run.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/oszuidwest/zwfm-lnkgen/internal/lnkscript"
	"github.com/oszuidwest/zwfm-lnkgen/internal/swire"
	"github.com/oszuidwest/zwfm-lnkgen/pkg/logger"
)

// Renderer produces the document for one job.
type Renderer interface {
	Render(req swire.Request) (*lnkscript.Document, error)
}

// Sink receives every successfully rendered document.
type Sink interface {
	Store(ctx context.Context, batchID string, doc *lnkscript.Document) error
}

// JobResult is the outcome of one job.
type JobResult struct {
	Request  swire.Request `json:"request"`
	FileName string        `json:"file_name,omitempty"`
	Frames   int           `json:"frames,omitempty"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
}

// OK reports whether the job produced a stored document.
func (r JobResult) OK() bool {
	return r.Err == nil
}

// Result summarizes a batch run.
type Result struct {
	BatchID string      `json:"batch_id"`
	Jobs    []JobResult `json:"jobs"`
}

// Succeeded returns the number of jobs that produced a document.
func (r *Result) Succeeded() int {
	n := 0
	for _, j := range r.Jobs {
		if j.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of failed jobs.
func (r *Result) Failed() int {
	return len(r.Jobs) - r.Succeeded()
}

// Runner executes jobs one after another. A failing job is recorded and the
// run moves on to the next one.
type Runner struct {
	renderer Renderer
	sink     Sink
}

// NewRunner creates a runner that hands rendered documents to sink.
func NewRunner(renderer Renderer, sink Sink) *Runner {
	return &Runner{renderer: renderer, sink: sink}
}

// Run renders and stores every job. It stops early only when ctx is done;
// the jobs not reached are reported with the context error.
func (r *Runner) Run(ctx context.Context, jobs []swire.Request) *Result {
	result := &Result{BatchID: uuid.NewString(), Jobs: make([]JobResult, 0, len(jobs))}

	for i, job := range jobs {
		jr := JobResult{Request: job}
		if err := ctx.Err(); err != nil {
			jr.Err = err
		} else {
			jr.FileName, jr.Frames, jr.Err = r.runJob(ctx, result.BatchID, job)
		}
		if jr.Err != nil {
			jr.Error = jr.Err.Error()
			logger.Warn("Batch %s job %d (route %d) failed: %v", result.BatchID, i+1, job.Route, jr.Err)
		}
		result.Jobs = append(result.Jobs, jr)
	}

	logger.Info("Batch %s finished: %d succeeded, %d failed", result.BatchID, result.Succeeded(), result.Failed())
	return result
}

func (r *Runner) runJob(ctx context.Context, batchID string, job swire.Request) (string, int, error) {
	doc, err := r.renderer.Render(job)
	if err != nil {
		return "", 0, err
	}
	if err := r.sink.Store(ctx, batchID, doc); err != nil {
		return "", 0, fmt.Errorf("store %s: %w", doc.FileName, err)
	}
	return doc.FileName, len(doc.Script.Frames()), nil
}

// DirSink writes documents into a directory.
type DirSink struct {
	Dir string
}

// Store writes doc under its script name.
func (s DirSink) Store(_ context.Context, _ string, doc *lnkscript.Document) error {
	path := filepath.Join(s.Dir, doc.FileName)
	if err := os.WriteFile(path, doc.Content, 0o644); err != nil { // #nosec G306 - scripts are shared with bench tooling
		return err
	}
	logger.Debug("Wrote %s (%d bytes)", path, len(doc.Content))
	return nil
}

// EngineRenderer renders jobs with a single engine and builder. It is not
// safe for concurrent use.
type EngineRenderer struct {
	Engine  *swire.Engine
	Builder *lnkscript.Builder
}

// Render builds the route script for req.
func (r EngineRenderer) Render(req swire.Request) (*lnkscript.Document, error) {
	script, err := r.Engine.BuildRouteScript(req)
	if err != nil {
		return nil, err
	}
	return r.Builder.BuildDocument(req, script)
}
