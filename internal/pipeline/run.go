package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/text/language"

	"github.com/MimeLyc/resumable-sub-translator/internal/checkpoint"
	"github.com/MimeLyc/resumable-sub-translator/internal/subtitle"
	"github.com/MimeLyc/resumable-sub-translator/internal/translator"
	"github.com/MimeLyc/resumable-sub-translator/pkg/log"
)

// DefaultBatchSize is the number of blocks translated per provider call
const DefaultBatchSize = 50

// DefaultConcurrency bounds in-flight provider calls. A value <= 0 launches
// every batch at once, matching the legacy unbounded fan-out.
const DefaultConcurrency = 4

// Config controls batching, fan-out and retry behavior of one run
type Config struct {
	TargetLanguage language.Tag
	BatchSize      int
	Concurrency    int
	// MaxRetries caps retries per batch; 0 retries forever. A run that
	// exhausts retries fails rather than accepting untranslated output.
	MaxRetries int
}

// checkpointSaver is the slice of the checkpoint store the reassembler needs
type checkpointSaver interface {
	Save(blocks []subtitle.Block) error
}

// batchJob is one schedulable unit of translation work. contextLines always
// hold original source text so retries see identical context.
type batchJob struct {
	startOffset  int
	contextLines []string
	lines        []translator.IndexedLine
}

// batchResult is the completion message a batch task sends the reassembler
type batchResult struct {
	startOffset int
	lines       []translator.IndexedLine
	duration    time.Duration
	err         error
}

// runState is the reassembler's bookkeeping for one pipeline invocation.
// It is owned by the single coordinating goroutine; batch tasks only ever
// produce immutable result messages.
type runState struct {
	total       int
	next        int
	outstanding map[int]batchJob
	pending     map[int][]translator.IndexedLine
	retries     map[int]int
	lastBatchMS int64
}

func newRunState(total, next int) *runState {
	return &runState{
		total:       total,
		next:        next,
		outstanding: make(map[int]batchJob),
		pending:     make(map[int][]translator.IndexedLine),
		retries:     make(map[int]int),
		lastBatchMS: -1,
	}
}

// Runner schedules concurrent batch translations and reassembles their
// results in original block order.
type Runner struct {
	translator translator.Translator
	store      checkpointSaver
	cfg        Config
}

// NewRunner creates a runner over the given provider and checkpoint store
func NewRunner(t translator.Translator, store checkpointSaver, cfg Config) *Runner {
	return &Runner{
		translator: t,
		store:      store,
		cfg:        cfg,
	}
}

// Run translates working blocks [resume, total) in batches and returns the
// fully translated sequence. Batches complete in arbitrary order; blocks are
// applied and checkpointed strictly in offset order so the persisted view is
// always a translated prefix. original must hold the untranslated parse.
func (r *Runner) Run(
	ctx context.Context,
	original []subtitle.Block,
	working []subtitle.Block,
	resume int,
	summary string,
) ([]subtitle.Block, error) {
	total := len(working)
	if resume >= total {
		return working, nil
	}

	batchSize := r.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	jobs := buildJobs(original, resume, batchSize)

	limit := r.cfg.Concurrency
	if limit <= 0 {
		limit = len(jobs)
	}
	sem := semaphore.NewWeighted(int64(limit))

	// one slot per batch: at most one in-flight result per start offset
	results := make(chan batchResult, len(jobs))

	dispatch := func(job batchJob) {
		go func() {
			if err := sem.Acquire(ctx, 1); err != nil {
				results <- batchResult{startOffset: job.startOffset, err: err}
				return
			}
			defer sem.Release(1)

			start := time.Now()
			lines, err := r.translator.TranslateBatch(
				ctx, summary, job.contextLines, job.lines, r.cfg.TargetLanguage.String())
			results <- batchResult{
				startOffset: job.startOffset,
				lines:       lines,
				duration:    time.Since(start),
				err:         err,
			}
		}()
	}

	state := newRunState(total, resume)
	for _, job := range jobs {
		end := job.startOffset + len(job.lines)
		log.Info("Translating blocks %d-%d of %d", job.startOffset+1, end, total)
		state.outstanding[job.startOffset] = job
		dispatch(job)
	}

	for state.next < state.total {
		var res batchResult
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res = <-results:
		}

		job, ok := state.outstanding[res.startOffset]
		if !ok {
			// stale result for a batch already flushed; should not happen
			log.Warn("Dropping unexpected result for offset %d", res.startOffset)
			continue
		}
		end := job.startOffset + len(job.lines)

		if res.err != nil {
			if err := r.retry(state, job, res.err, ErrProvider); err != nil {
				return nil, err
			}
			dispatch(job)
			continue
		}

		if err := validateBatch(job, res.lines); err != nil {
			if retryErr := r.retry(state, job, err, ErrValidation); retryErr != nil {
				return nil, retryErr
			}
			dispatch(job)
			continue
		}

		log.Info("Translated blocks %d-%d in %d ms", job.startOffset+1, end, res.duration.Milliseconds())
		state.pending[res.startOffset] = res.lines
		delete(state.outstanding, res.startOffset)

		if err := r.flush(state, working); err != nil {
			return nil, err
		}

		r.reportProgress(state, batchSize, res.duration.Milliseconds())
	}

	return working, nil
}

// retry re-queues a failed or invalid batch, honoring the retry cap
func (r *Runner) retry(state *runState, job batchJob, cause error, errType ErrorType) error {
	end := job.startOffset + len(job.lines)
	state.retries[job.startOffset]++
	attempt := state.retries[job.startOffset]

	log.Error("Batch %d-%d failed (attempt %d): %v", job.startOffset+1, end, attempt, cause)

	if r.cfg.MaxRetries > 0 && attempt > r.cfg.MaxRetries {
		return WrapError(cause, errType,
			fmt.Sprintf("batch %d-%d failed after %d retries", job.startOffset+1, end, r.cfg.MaxRetries)).
			WithContext("start_offset", job.startOffset)
	}

	log.Info("Retrying batch %d-%d", job.startOffset+1, end)
	return nil
}

// flush drains the pending buffer in offset order, applying each batch to
// the working blocks and checkpointing after every application. Later
// batches stay buffered until every earlier batch has been flushed.
func (r *Runner) flush(state *runState, working []subtitle.Block) error {
	for {
		lines, ok := state.pending[state.next]
		if !ok {
			return nil
		}
		delete(state.pending, state.next)

		applyBatch(working, state.next, lines)
		state.next += len(lines)

		if err := r.store.Save(working); err != nil {
			return WrapError(err, ErrCheckpoint, "failed to persist translation progress")
		}
	}
}

// reportProgress logs completion percentage and, once two batch durations
// are known, a smoothed ETA.
func (r *Runner) reportProgress(state *runState, batchSize int, currMS int64) {
	log.Info("Completed %d%%", percentComplete(state.next, state.total))

	if state.lastBatchMS >= 0 && state.next < state.total {
		estimate := estimateRemaining(state.lastBatchMS, currMS, state.total-state.next, batchSize)
		log.Info("ETA: %s", formatETA(estimate))
	}
	state.lastBatchMS = currMS
}

// buildJobs partitions [resume, total) into contiguous fixed-size batches.
// Each job carries up to ContextWindow source lines preceding its start.
func buildJobs(original []subtitle.Block, resume, batchSize int) []batchJob {
	var jobs []batchJob
	for off := resume; off < len(original); off += batchSize {
		end := off + batchSize
		if end > len(original) {
			end = len(original)
		}

		lines := make([]translator.IndexedLine, 0, end-off)
		for _, block := range original[off:end] {
			lines = append(lines, translator.IndexedLine{
				Index: block.Index,
				Text:  block.JoinedText(),
			})
		}

		jobs = append(jobs, batchJob{
			startOffset:  off,
			contextLines: sourceContext(original, off),
			lines:        lines,
		})
	}
	return jobs
}

// sourceContext returns up to ContextWindow source lines preceding offset
func sourceContext(original []subtitle.Block, offset int) []string {
	start := offset - checkpoint.ContextWindow
	if start < 0 {
		start = 0
	}
	ctx := make([]string, 0, offset-start)
	for _, block := range original[start:offset] {
		ctx = append(ctx, block.JoinedText())
	}
	return ctx
}

// validateBatch rejects results with a missing or surplus line, and results
// that echo the source text untranslated.
func validateBatch(job batchJob, result []translator.IndexedLine) error {
	if len(result) != len(job.lines) {
		return fmt.Errorf("expected %d translated lines, got %d", len(job.lines), len(result))
	}

	source := make(map[int]string, len(job.lines))
	for _, line := range job.lines {
		source[line.Index] = line.Text
	}

	for _, line := range result {
		src, ok := source[line.Index]
		if !ok {
			return fmt.Errorf("translated line has unknown index %d", line.Index)
		}
		if line.Text == src {
			return fmt.Errorf("line %d returned untranslated", line.Index)
		}
	}

	return nil
}

// applyBatch replaces the text of the blocks covered by a batch, matching
// translated lines to blocks by index.
func applyBatch(working []subtitle.Block, offset int, lines []translator.IndexedLine) {
	end := offset + len(lines)
	byIndex := make(map[int]int, len(lines))
	for pos := offset; pos < end; pos++ {
		byIndex[working[pos].Index] = pos
	}

	for _, line := range lines {
		pos, ok := byIndex[line.Index]
		if !ok {
			continue
		}
		working[pos].Text = strings.Split(line.Text, "\n")
	}
}
