package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/planmcs/internal/synth"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// wizardAnswers holds the form values. huh binds inputs to strings, so
// numbers are parsed when the arguments are built.
type wizardAnswers struct {
	OutputDir     string
	NumPlans      string
	Beams         string
	ControlPoints string
	LeafPairs     string
	Seed          string
	Variants      []string
	Corruptions   []string
	DICOMDIR      bool
	ScoreAfter    bool
}

func defaultAnswers() wizardAnswers {
	return wizardAnswers{
		OutputDir:     "rt_plans",
		NumPlans:      "5",
		Beams:         "5",
		ControlPoints: "10",
		LeafPairs:     "60",
		ScoreAfter:    true,
	}
}

// generateArgs returns the equivalent 'planmcs generate' arguments. Defaults
// of the generate command are omitted.
func (a wizardAnswers) generateArgs() []string {
	args := []string{"--output", a.OutputDir}
	add := func(flag, value, def string) {
		if value = strings.TrimSpace(value); value != "" && value != def {
			args = append(args, flag, value)
		}
	}
	add("--num-plans", a.NumPlans, "1")
	add("--beams", a.Beams, "5")
	add("--control-points", a.ControlPoints, "10")
	add("--leaf-pairs", a.LeafPairs, "60")
	add("--seed", a.Seed, "")
	add("--variants", strings.Join(a.Variants, ","), "")
	add("--corrupt", strings.Join(a.Corruptions, ","), "")
	if a.DICOMDIR {
		args = append(args, "--dicomdir")
	}
	return args
}

func newWizardForm(a *wizardAnswers) *huh.Form {
	variantOptions := make([]huh.Option[string], 0, len(synth.AllVariants()))
	for _, v := range synth.AllVariants() {
		variantOptions = append(variantOptions, huh.NewOption(string(v), string(v)))
	}
	corruptionOptions := make([]huh.Option[string], 0, len(synth.AllCorruptions()))
	for _, c := range synth.AllCorruptions() {
		corruptionOptions = append(corruptionOptions, huh.NewOption(string(c), string(c)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("output").
				Title("Output Directory").
				Value(&a.OutputDir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("output directory is required")
					}
					return nil
				}),
			huh.NewInput().
				Key("num_plans").
				Title("Number of Plans").
				Value(&a.NumPlans).
				Validate(validatePositiveInt),
			huh.NewInput().
				Key("seed").
				Title("Seed").
				Description("Leave empty to derive it from the output directory").
				Value(&a.Seed).
				Validate(validateOptionalInt),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("beams").
				Title("Beams per Plan").
				Value(&a.Beams).
				Validate(validatePositiveInt),
			huh.NewInput().
				Key("control_points").
				Title("Control Points per Beam").
				Value(&a.ControlPoints).
				Validate(validatePositiveInt),
			huh.NewInput().
				Key("leaf_pairs").
				Title("MLC Leaf Pairs").
				Value(&a.LeafPairs).
				Validate(validatePositiveInt),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Key("variants").
				Title("Structural Variants").
				Options(variantOptions...).
				Value(&a.Variants),
			huh.NewMultiSelect[string]().
				Key("corruptions").
				Title("Corruptions").
				Options(corruptionOptions...).
				Value(&a.Corruptions),
			huh.NewConfirm().
				Key("dicomdir").
				Title("Write a DICOMDIR index?").
				Value(&a.DICOMDIR),
			huh.NewConfirm().
				Key("score").
				Title("Score the plans afterwards?").
				Value(&a.ScoreAfter),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than 0")
	}
	return nil
}

func validateOptionalInt(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}

// runWizard asks for the generation settings, then runs generate and
// optionally score with them.
func runWizard(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(stderr, "Error: unexpected argument: %s\n", args[0])
		return 1
	}

	fmt.Fprintln(stdout, titleStyle.Render("PLANMCS WIZARD"))
	answers := defaultAnswers()
	if err := newWizardForm(&answers).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(stderr, "Cancelled.")
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return runAnswers(answers, stdout, stderr)
}

func runAnswers(answers wizardAnswers, stdout, stderr io.Writer) int {
	genArgs := answers.generateArgs()
	fmt.Fprintln(stdout, commandStyle.Render("planmcs generate "+strings.Join(genArgs, " ")))
	if code := runGenerate(genArgs, stdout, stderr); code != 0 || !answers.ScoreAfter {
		return code
	}

	files, err := filepath.Glob(filepath.Join(answers.OutputDir, "RP*.dcm"))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, commandStyle.Render("planmcs score "+filepath.Join(answers.OutputDir, "RP*.dcm")))
	return runScore(files, stdout, stderr)
}
