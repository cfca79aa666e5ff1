package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mrsinham/planmcs/internal/dicom"
	"github.com/mrsinham/planmcs/internal/mcs"
	"github.com/mrsinham/planmcs/internal/plan"
	"github.com/mrsinham/planmcs/internal/synth"
)

func fixedPlan() synth.PlanSpec {
	return synth.PlanSpec{
		PatientID:   "RT000001",
		PatientName: "PHANTOM^PIPELINE",
		Label:       "PIPELINE",
		UIDSeed:     "pipeline",
		Beams: []synth.BeamSpec{{
			Name:   "G000",
			Number: 1,
			MU:     50,
			ControlPoints: []synth.ControlPointSpec{
				{Weight: 0, Positions: []float64{-50, -50, 50, 50}},
				{Weight: 50, Positions: []float64{-40, -40, 40, 40}},
			},
		}},
	}
}

func mustBytes(t *testing.T, spec synth.PlanSpec, variants []synth.Variant, corruptions []synth.Corruption) []byte {
	t.Helper()
	data, err := synth.Bytes(spec, variants, corruptions)
	if err != nil {
		t.Fatalf("synth.Bytes() error = %v", err)
	}
	return data
}

func TestDecodeAndScore(t *testing.T) {
	res, err := DecodeAndScore(mustBytes(t, fixedPlan(), nil, nil))
	if err != nil {
		t.Fatalf("DecodeAndScore() error = %v", err)
	}

	if len(res.Plan.Beams) != 1 || res.Plan.Beams[0].MU != 50 {
		t.Fatalf("Plan = %+v, want one beam with 50 MU", res.Plan)
	}
	// Every position moves by the same amount, so LSV and the score are 0.
	if res.Score.MCS != 0 {
		t.Errorf("MCS = %v, want 0", res.Score.MCS)
	}
	if res.Status != plan.StatusSuccess {
		t.Errorf("Status = %v, want SUCCESS (issues: %v)", res.Status, res.Issues)
	}
	if res.Metadata["PatientID"] != "RT000001" {
		t.Errorf("Metadata[PatientID] = %q", res.Metadata["PatientID"])
	}
	if res.Metadata["BeamSequence"] != dicom.SequenceMarker {
		t.Errorf("Metadata[BeamSequence] = %q, want %q", res.Metadata["BeamSequence"], dicom.SequenceMarker)
	}
}

func TestDecodeAndScoreRandomPlan(t *testing.T) {
	spec := synth.RandomPlan(rand.New(rand.NewPCG(3, 3)), 0, synth.RandomOptions{})
	res, err := DecodeAndScore(mustBytes(t, spec, nil, nil))
	if err != nil {
		t.Fatalf("DecodeAndScore() error = %v", err)
	}
	if len(res.Plan.Beams) != len(spec.Beams) {
		t.Errorf("beams = %d, want %d", len(res.Plan.Beams), len(spec.Beams))
	}
	if res.Score.MCS <= 0 || res.Score.MCS > 1 {
		t.Errorf("MCS = %v, want within (0, 1]", res.Score.MCS)
	}
	for i, b := range res.Plan.Beams {
		if b.MU != spec.Beams[i].MU {
			t.Errorf("beam %d MU = %v, want %v", i, b.MU, spec.Beams[i].MU)
		}
	}
}

func TestDecodeAndScoreVariants(t *testing.T) {
	tests := []struct {
		name         string
		variants     []synth.Variant
		wantBeams    int
		wantSegments int
		wantSource   plan.BeamSource
		wantMU       plan.MUSource
	}{
		{"device sequence", []synth.Variant{synth.DeviceSequence}, 1, 2, plan.SourceBeamSequence, plan.MUFromFractionGroup},
		// Fraction group references take precedence over IonBeamSequence.
		{"ion", []synth.Variant{synth.Ion}, 1, 0, plan.SourceReferencedBeams, plan.MUFromFractionGroup},
		{"ion without fraction group", []synth.Variant{synth.Ion, synth.NoFractionGroup}, 1, 2, plan.SourceIonBeamSequence, plan.MUFromBeamMeterset},
		{"no fraction group", []synth.Variant{synth.NoFractionGroup}, 1, 2, plan.SourceBeamSequence, plan.MUFromBeamMeterset},
		{"zero mu", []synth.Variant{synth.ZeroMU}, 1, 2, plan.SourceBeamSequence, plan.MUNone},
		{"non plan", []synth.Variant{synth.NonPlan}, 0, 0, plan.SourceNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := DecodeAndScore(mustBytes(t, fixedPlan(), tt.variants, nil))
			if err != nil {
				t.Fatalf("DecodeAndScore() error = %v", err)
			}
			if len(res.Plan.Beams) != tt.wantBeams {
				t.Fatalf("beams = %d, want %d", len(res.Plan.Beams), tt.wantBeams)
			}
			if res.Plan.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", res.Plan.Source, tt.wantSource)
			}
			if tt.wantBeams == 0 {
				return
			}
			if res.Plan.Beams[0].MUSource != tt.wantMU {
				t.Errorf("MUSource = %q, want %q", res.Plan.Beams[0].MUSource, tt.wantMU)
			}
			if got := len(res.Plan.Beams[0].Segments); got != tt.wantSegments {
				t.Errorf("segments = %d, want %d", got, tt.wantSegments)
			}
		})
	}
}

func TestDecodeAndScoreMissingNames(t *testing.T) {
	res, err := DecodeAndScore(mustBytes(t, fixedPlan(), []synth.Variant{synth.MissingNames}, nil))
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Plan.Beams[0].Name; got != "Beam_1" {
		t.Errorf("Name = %q, want Beam_1", got)
	}
}

func TestDecodeAndScoreWarningOrder(t *testing.T) {
	res, err := DecodeAndScore(mustBytes(t, fixedPlan(), []synth.Variant{synth.ZeroMU}, []synth.Corruption{synth.BadDecimal}))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) < 3 {
		t.Fatalf("Warnings = %v, want decode, plan and score warnings", res.Warnings)
	}
	if !strings.HasPrefix(res.Warnings[0], "skipped element") {
		t.Errorf("first warning %q should come from the decoder", res.Warnings[0])
	}
	if last := res.Warnings[len(res.Warnings)-1]; !strings.Contains(last, "total MU is 0") {
		t.Errorf("last warning %q should come from scoring", last)
	}
	if res.Score.MCS != 0 {
		t.Errorf("MCS = %v, want 0", res.Score.MCS)
	}
}

func TestDecodeAndScoreTruncated(t *testing.T) {
	_, err := DecodeAndScore(mustBytes(t, fixedPlan(), nil, []synth.Corruption{synth.Truncate}))
	var decodeErr *dicom.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *dicom.DecodeError", err)
	}
}

func TestDecodeAndScoreCutInsideLastElement(t *testing.T) {
	data := mustBytes(t, fixedPlan(), nil, nil)
	res, err := DecodeAndScore(data[:len(data)-6])
	var decodeErr *dicom.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *dicom.DecodeError", err)
	}
	if res != nil {
		t.Errorf("result = %+v, want nil on a decode error", res)
	}
}

func TestRunnerScoreFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.dcm")
	broken := filepath.Join(dir, "broken.dcm")
	noExt := filepath.Join(dir, "plan.bin")
	missing := filepath.Join(dir, "missing.dcm")

	write := func(path string, data []byte) {
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	write(good, mustBytes(t, fixedPlan(), nil, nil))
	write(broken, mustBytes(t, fixedPlan(), nil, []synth.Corruption{synth.Truncate}))
	write(noExt, mustBytes(t, fixedPlan(), nil, nil))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	runner := NewRunner(mcs.DefaultConfig(), 2, logger)

	paths := []string{good, broken, noExt, missing}
	results := runner.ScoreFiles(context.Background(), paths)
	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Errorf("result %d path = %s, want %s", i, r.Path, paths[i])
		}
	}

	if results[0].Err != nil || results[0].Status() != plan.StatusSuccess {
		t.Errorf("good file: err = %v, status = %v", results[0].Err, results[0].Status())
	}
	if results[0].Size == 0 {
		t.Error("good file size should be recorded")
	}
	if results[1].Err == nil || results[1].Status() != plan.StatusFailed {
		t.Errorf("broken file: err = %v, status = %v", results[1].Err, results[1].Status())
	}
	if results[2].Err != nil {
		t.Fatalf("file without extension: %v", results[2].Err)
	}
	w := results[2].Result.Warnings
	if len(w) == 0 || !strings.Contains(w[len(w)-1], ".dcm extension") {
		t.Errorf("Warnings = %v, want an extension warning", w)
	}
	if !errors.Is(results[3].Err, os.ErrNotExist) {
		t.Errorf("missing file err = %v, want not exist", results[3].Err)
	}

	if !strings.Contains(logs.String(), "file scored") || !strings.Contains(logs.String(), "file failed") {
		t.Errorf("expected per-file log lines, got:\n%s", logs.String())
	}
}

func TestRunnerScoreFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewRunner(mcs.DefaultConfig(), 1, nil).ScoreFiles(ctx, []string{"a.dcm", "b.dcm"})
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("%s: err = %v, want context.Canceled", r.Path, r.Err)
		}
	}
}

func TestRunnerScoreFilesEmpty(t *testing.T) {
	if got := NewRunner(mcs.DefaultConfig(), 0, nil).ScoreFiles(context.Background(), nil); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestDecodeAndScore_PrivateTags(t *testing.T) {
	plain, err := synth.Bytes(fixedPlan(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	withPrivate, err := synth.Bytes(fixedPlan(), nil, []synth.Corruption{synth.PrivateTags})
	if err != nil {
		t.Fatal(err)
	}

	want, err := DecodeAndScore(plain)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeAndScore(withPrivate)
	if err != nil {
		t.Fatalf("DecodeAndScore() error = %v", err)
	}

	if got.Score.MCS != want.Score.MCS {
		t.Errorf("MCS = %v, want %v", got.Score.MCS, want.Score.MCS)
	}
	if v := dicom.GetString(got.Tree, dicom.NewTag(0x3249, 0x1000), ""); v != "TrueBeam" {
		t.Errorf("private (3249,1000) = %q, want TrueBeam", v)
	}
	if !got.Tree.Has(dicom.NewTag(0x3249, 0x1010)) {
		t.Error("private OB payload missing from tree")
	}
}
