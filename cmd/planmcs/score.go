package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/mrsinham/planmcs/internal/config"
	"github.com/mrsinham/planmcs/internal/pipeline"
	"github.com/mrsinham/planmcs/internal/preview"
	"github.com/mrsinham/planmcs/internal/util"
)

func runScore(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("score", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	configFile := fs.String("config", "", "Load configuration from YAML file (default: $"+config.EnvVar+")")
	format := fs.String("format", "", "Output format: table or json")
	workers := fs.Int("workers", 0, "Number of files scored in parallel (0 = CPU cores)")
	maxOpening := fs.Float64("max-leaf-opening", 0, "Maximum leaf pair opening in mm used to normalize AAV")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	tags := fs.StringArray("tag", nil, "Print the values of a DICOM attribute by keyword (repeatable)")
	previewDir := fs.String("preview", "", "Write one aperture PNG per beam into this directory")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage:\n  planmcs score [options] FILE...\n\nA DICOMDIR argument scores every file it references.\n\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: at least one FILE is required")
		fs.Usage()
		return 1
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if fs.Changed("format") {
		cfg.Output.Format = *format
	}
	if fs.Changed("workers") {
		cfg.Runner.Workers = *workers
	}
	if fs.Changed("max-leaf-opening") {
		cfg.Scoring.MaxLeafOpening = *maxOpening
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var tagInfos []util.TagInfo
	for _, name := range *tags {
		info, err := util.GetTagByName(name)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		tagInfos = append(tagInfos, info)
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := newLogger(stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	paths, err := pipeline.ExpandPaths(fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	runner := pipeline.NewRunner(cfg.MCS(), cfg.Runner.Workers, logger)
	results := runner.ScoreFiles(ctx, paths)

	if cfg.Output.Format == config.FormatJSON {
		err = writeJSON(stdout, results, tagInfos)
	} else {
		err = writeTable(stdout, results, tagInfos)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	exit := 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", r.Err)
			exit = 1
		}
	}
	if *previewDir != "" {
		if err := writePreviews(*previewDir, results, logger); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			exit = 1
		}
	}
	return exit
}

// loadConfig reads path, or $PLANMCS_CONFIG when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// writePreviews renders the apertures of every scored file.
func writePreviews(dir string, results []pipeline.FileResult, logger *slog.Logger) error {
	for _, r := range results {
		if r.Result == nil {
			continue
		}
		prefix := strings.TrimSuffix(filepath.Base(r.Path), filepath.Ext(r.Path))
		paths, err := preview.WritePlan(dir, prefix, r.Result.Plan, r.Result.Score, preview.Options{})
		if err != nil {
			return err
		}
		logger.Debug("previews written", "path", r.Path, "images", len(paths))
	}
	return nil
}
