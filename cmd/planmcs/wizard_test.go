package main

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestGenerateArgs(t *testing.T) {
	tests := []struct {
		name    string
		answers wizardAnswers
		want    []string
	}{
		{
			name:    "defaults",
			answers: defaultAnswers(),
			want:    []string{"--output", "rt_plans", "--num-plans", "5"},
		},
		{
			name: "everything set",
			answers: wizardAnswers{
				OutputDir:     "out",
				NumPlans:      "2",
				Beams:         "3",
				ControlPoints: " 4 ",
				LeafPairs:     "40",
				Seed:          "42",
				Variants:      []string{"ion", "no-fraction-group"},
				Corruptions:   []string{"private-tags"},
				DICOMDIR:      true,
			},
			want: []string{"--output", "out", "--num-plans", "2", "--beams", "3",
				"--control-points", "4", "--leaf-pairs", "40", "--seed", "42",
				"--variants", "ion,no-fraction-group", "--corrupt", "private-tags", "--dicomdir"},
		},
		{
			name:    "single plan",
			answers: wizardAnswers{OutputDir: "x", NumPlans: "1"},
			want:    []string{"--output", "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.answers.generateArgs(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("generateArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWizardValidators(t *testing.T) {
	tests := []struct {
		input        string
		wantPositive bool
		wantOptional bool
	}{
		{"5", true, true},
		{" 7 ", true, true},
		{"0", false, true},
		{"-2", false, true},
		{"", false, true},
		{"abc", false, false},
		{"1.5", false, false},
	}

	for _, tt := range tests {
		if got := validatePositiveInt(tt.input) == nil; got != tt.wantPositive {
			t.Errorf("validatePositiveInt(%q) ok = %v, want %v", tt.input, got, tt.wantPositive)
		}
		if got := validateOptionalInt(tt.input) == nil; got != tt.wantOptional {
			t.Errorf("validateOptionalInt(%q) ok = %v, want %v", tt.input, got, tt.wantOptional)
		}
	}
}

func TestNewWizardForm(t *testing.T) {
	a := defaultAnswers()
	if newWizardForm(&a) == nil {
		t.Fatal("newWizardForm() returned nil")
	}
}

func TestRunAnswers(t *testing.T) {
	t.Setenv("PLANMCS_CONFIG", "")
	a := defaultAnswers()
	a.OutputDir = filepath.Join(t.TempDir(), "plans")
	a.NumPlans = "2"
	a.Beams = "2"
	a.Seed = "3"

	var stdout, stderr bytes.Buffer
	if code := runAnswers(a, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{"planmcs generate --output", "Generated 2 plan(s)", "RP0001.dcm", "RP0002.dcm", "SUCCESS"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
}

func TestRunAnswers_GenerateOnly(t *testing.T) {
	a := defaultAnswers()
	a.OutputDir = filepath.Join(t.TempDir(), "plans")
	a.NumPlans = "1"
	a.ScoreAfter = false

	var stdout, stderr bytes.Buffer
	if code := runAnswers(a, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if strings.Contains(stdout.String(), "planmcs score") {
		t.Errorf("score ran although it was not requested:\n%s", stdout.String())
	}
}

func TestRunWizardRejectsArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"wizard", "extra"}, &stdout, &stderr); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}
