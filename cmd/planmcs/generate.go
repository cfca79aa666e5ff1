package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/mrsinham/planmcs/internal/synth"
)

func runGenerate(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	outputDir := fs.String("output", "rt_plans", "Output directory")
	numPlans := fs.Int("num-plans", 1, "Number of plans to generate")
	seed := fs.Int64("seed", 0, "Seed for reproducibility (derived from --output if not specified)")
	workers := fs.Int("workers", 0, "Number of parallel workers (0 = CPU cores)")
	beams := fs.Int("beams", 5, "Beams per plan")
	controlPoints := fs.Int("control-points", 10, "Control points per beam")
	leafPairs := fs.Int("leaf-pairs", 60, "MLC leaf pairs")
	variants := fs.String("variants", "", "Comma-separated structural variants: missing-names,device-sequence,ion,no-fraction-group,zero-mu,non-plan")
	corrupt := fs.String("corrupt", "", "Comma-separated corruptions: truncate,bad-decimal,private-tags (or 'all')")
	dicomdir := fs.Bool("dicomdir", false, "Also write a DICOMDIR index of the plans")
	quiet := fs.BoolP("quiet", "q", false, "Do not list the generated files")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage:\n  planmcs generate --output <DIR> [options]\n\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Error: unexpected argument: %s\n", fs.Arg(0))
		return 1
	}

	parsedVariants, err := synth.ParseVariants(*variants)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	parsedCorruptions, err := synth.ParseCorruptions(*corrupt)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	plans, err := synth.Generate(synth.Options{
		OutputDir: *outputDir,
		NumPlans:  *numPlans,
		Seed:      *seed,
		Workers:   *workers,
		Random: synth.RandomOptions{
			Beams:         *beams,
			ControlPoints: *controlPoints,
			LeafPairs:     *leafPairs,
		},
		Variants:    parsedVariants,
		Corruptions: parsedCorruptions,
		DICOMDIR:    *dicomdir,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error generating plans: %v\n", err)
		return 1
	}

	if !*quiet {
		for _, p := range plans {
			fmt.Fprintf(stdout, "  %s  patient %s, %d beams, %s MU\n",
				p.Path, p.PatientID, p.Beams, humanize.FormatFloat("#,###.##", p.TotalMU))
		}
	}
	fmt.Fprintf(stdout, "\n✓ Generated %d plan(s) in %s\n", len(plans), *outputDir)
	if *dicomdir {
		fmt.Fprintf(stdout, "✓ DICOMDIR written to %s\n", filepath.Join(*outputDir, "DICOMDIR"))
	}
	return 0
}
