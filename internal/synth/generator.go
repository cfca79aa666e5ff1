// Package synth generates synthetic RT Plan files: seeded beams and control
// points, structural variants seen in real encoders, and damaged files.
package synth

import (
	"fmt"
	"hash/fnv"
	randv2 "math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/suyashkumar/dicom"
)

// Options contains all parameters needed to generate a set of plans.
type Options struct {
	OutputDir string
	NumPlans  int
	Seed      int64
	Workers   int // Number of parallel workers (0 = runtime.NumCPU())

	Random      RandomOptions
	Variants    []Variant
	Corruptions []Corruption

	// DICOMDIR also writes a DICOMDIR index of the plans.
	DICOMDIR bool
}

// GeneratedPlan describes one written file.
type GeneratedPlan struct {
	Path              string
	PatientID         string
	PatientName       string
	Modality          string
	SOPClassUID       string
	SOPInstanceUID    string
	StudyInstanceUID  string
	SeriesInstanceUID string
	Beams             int
	TotalMU           float64
}

type planTask struct {
	index    int
	filePath string
	spec     PlanSpec
}

// writeDatasetToFile writes a DICOM dataset to a file.
func writeDatasetToFile(filename string, ds dicom.Dataset) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return dicom.Write(f, ds)
}

func generatePlanFromTask(task planTask, opts Options) error {
	if err := writeDatasetToFile(task.filePath, BuildDataset(task.spec, opts.Variants, opts.Corruptions)); err != nil {
		return err
	}
	if has(opts.Corruptions, Truncate) {
		if err := TruncateFile(task.filePath); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}
	}
	return nil
}

// Generate writes opts.NumPlans plans into opts.OutputDir. The same seed and
// output directory always produce the same files.
func Generate(opts Options) ([]GeneratedPlan, error) {
	if opts.NumPlans <= 0 {
		return nil, fmt.Errorf("number of plans must be > 0, got %d", opts.NumPlans)
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		h := fnv.New64a()
		_, _ = h.Write([]byte(opts.OutputDir)) // hash.Write never returns an error
		seed = int64(h.Sum64())
	}
	rng := randv2.New(randv2.NewPCG(uint64(seed), uint64(seed)))

	// Specs are drawn sequentially so the output does not depend on worker
	// scheduling.
	tasks := make([]planTask, opts.NumPlans)
	for i := range tasks {
		tasks[i] = planTask{
			index:    i,
			filePath: filepath.Join(opts.OutputDir, fmt.Sprintf("RP%04d.dcm", i+1)),
			spec:     RandomPlan(rng, i, opts.Random),
		}
	}

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(tasks) {
		numWorkers = len(tasks)
	}

	taskChan := make(chan planTask, len(tasks))
	resultChan := make(chan struct {
		index int
		err   error
	}, len(tasks))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChan {
				err := generatePlanFromTask(task, opts)
				resultChan <- struct {
					index int
					err   error
				}{task.index, err}
			}
		}()
	}

	for _, task := range tasks {
		taskChan <- task
	}
	close(taskChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var firstErr error
	for result := range resultChan {
		if result.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("generate plan %d: %w", result.index+1, result.err)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	sopClass, modality := sopClassFor(opts.Variants)
	generated := make([]GeneratedPlan, len(tasks))
	for i, task := range tasks {
		var total float64
		for _, b := range task.spec.Beams {
			total += b.MU
		}
		generated[i] = GeneratedPlan{
			Path:              task.filePath,
			PatientID:         task.spec.PatientID,
			PatientName:       task.spec.PatientName,
			Modality:          modality,
			SOPClassUID:       sopClass,
			SOPInstanceUID:    UID(task.spec.UIDSeed + "_sop"),
			StudyInstanceUID:  UID(task.spec.UIDSeed + "_study"),
			SeriesInstanceUID: UID(task.spec.UIDSeed + "_series"),
			Beams:             len(task.spec.Beams),
			TotalMU:           total,
		}
	}

	if opts.DICOMDIR {
		if err := WriteDICOMDIR(opts.OutputDir, generated); err != nil {
			return nil, fmt.Errorf("write DICOMDIR: %w", err)
		}
	}
	return generated, nil
}
