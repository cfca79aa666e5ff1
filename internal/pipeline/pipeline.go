// Package pipeline composes decoding, extraction and scoring, and runs the
// composition over many files in parallel.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/mrsinham/planmcs/internal/dicom"
	"github.com/mrsinham/planmcs/internal/mcs"
	"github.com/mrsinham/planmcs/internal/plan"
)

// Result holds everything produced for one file. Tree is kept for callers
// that display metadata; nothing else references it.
type Result struct {
	Tree           *dicom.Tree       `json:"-"`
	TransferSyntax string            `json:"transfer_syntax"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Plan           plan.Plan         `json:"-"`
	Score          mcs.ScoreResult   `json:"score"`
	Issues         []plan.Issue      `json:"issues,omitempty"`
	Status         plan.Status       `json:"status"`
	// Warnings holds decode warnings followed by extraction and scoring
	// warnings.
	Warnings []string `json:"warnings,omitempty"`
}

// DecodeAndScore runs the full pipeline on an in-memory file with the
// default scoring configuration.
func DecodeAndScore(data []byte) (*Result, error) {
	return process(mcs.NewCalculator(mcs.DefaultConfig()), data)
}

func process(calc *mcs.Calculator, data []byte) (*Result, error) {
	decoded, err := dicom.Decode(data)
	if err != nil {
		return nil, err
	}

	p := plan.Extract(decoded.Tree)
	score := calc.Score(p)
	issues := plan.Validate(decoded.Tree)

	warnings := make([]string, 0, len(decoded.Warnings)+len(p.Warnings)+len(score.Warnings))
	warnings = append(warnings, decoded.Warnings...)
	warnings = append(warnings, p.Warnings...)
	warnings = append(warnings, score.Warnings...)

	return &Result{
		Tree:           decoded.Tree,
		TransferSyntax: decoded.TransferSyntax,
		Metadata:       dicom.Metadata(decoded.Tree),
		Plan:           p,
		Score:          score,
		Issues:         issues,
		Status:         plan.DetermineStatus(issues, score.MCS),
		Warnings:       warnings,
	}, nil
}

// FileResult is the outcome for one file of a batch.
type FileResult struct {
	Path   string  `json:"path"`
	Size   int64   `json:"size"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
}

// Status returns the processing status, FAILED when the file could not be
// read or decoded.
func (fr FileResult) Status() plan.Status {
	if fr.Err != nil || fr.Result == nil {
		return plan.StatusFailed
	}
	return fr.Result.Status
}

// Runner processes files with a shared configuration.
type Runner struct {
	Calculator *mcs.Calculator
	// Workers bounds the number of files processed at once
	// (0 = runtime.NumCPU()).
	Workers int
	Logger  *slog.Logger
}

// NewRunner returns a runner scoring with cfg.
func NewRunner(cfg mcs.Config, workers int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		Calculator: mcs.NewCalculator(cfg),
		Workers:    workers,
		Logger:     logger,
	}
}

// Process runs the pipeline on an in-memory file.
func (r *Runner) Process(data []byte) (*Result, error) {
	return process(r.calculator(), data)
}

// ScoreFile reads and scores one file.
func (r *Runner) ScoreFile(path string) FileResult {
	fr := FileResult{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		fr.Err = fmt.Errorf("read %s: %w", path, err)
		return fr
	}
	fr.Size = int64(len(data))

	res, err := r.Process(data)
	if err != nil {
		fr.Err = fmt.Errorf("score %s: %w", path, err)
		return fr
	}
	if !strings.EqualFold(filepath.Ext(path), ".dcm") {
		res.Warnings = append(res.Warnings, fmt.Sprintf("file %s has no .dcm extension", filepath.Base(path)))
	}
	fr.Result = res
	return fr
}

// ScoreFiles scores paths in parallel and returns the results in input
// order. A failing file is reported in its FileResult and does not stop the
// others. Files not yet started when ctx is cancelled carry ctx.Err().
func (r *Runner) ScoreFiles(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results
	}

	numWorkers := r.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}
	r.logger().Debug("scoring files", "files", len(paths), "workers", numWorkers)

	taskChan := make(chan int, len(paths))
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range taskChan {
				if err := ctx.Err(); err != nil {
					results[i] = FileResult{Path: paths[i], Err: err}
					continue
				}
				results[i] = r.ScoreFile(paths[i])
				r.logResult(results[i])
			}
		}()
	}

	for i := range paths {
		taskChan <- i
	}
	close(taskChan)
	wg.Wait()

	return results
}

func (r *Runner) logResult(fr FileResult) {
	log := r.logger()
	if fr.Err != nil {
		log.Warn("file failed", "path", fr.Path, "error", fr.Err)
		return
	}
	log.Info("file scored",
		"path", fr.Path,
		"status", fr.Result.Status.String(),
		"beams", len(fr.Result.Plan.Beams),
		"mcs", fr.Result.Score.MCS,
		"warnings", len(fr.Result.Warnings))
}

func (r *Runner) calculator() *mcs.Calculator {
	if r.Calculator == nil {
		return mcs.NewCalculator(mcs.DefaultConfig())
	}
	return r.Calculator
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r.Logger
}
