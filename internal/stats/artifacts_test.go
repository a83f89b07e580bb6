package stats

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"survivorrl/internal/model"
)

func TestWriteAndReadComparisonReport(t *testing.T) {
	baseDir := t.TempDir()
	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	comparison := model.ModelComparison{
		ID:         "cmp-1",
		Timestamp:  model.NewTimestamp(at),
		ModelNames: []string{"a", "b"},
		Results: map[string]model.EvaluationResult{
			"a": Summarize("a", []float64{1, 2}, at),
			"b": Summarize("b", []float64{5, 7}, at),
		},
		Ranking:     []string{"b", "a"},
		Annotations: model.Annotations{"note": "nightly"},
	}

	reportDir, err := WriteComparisonReport(baseDir, comparison)
	if err != nil {
		t.Fatalf("write report: %v", err)
	}
	for _, file := range []string{comparisonFile, rankingFile} {
		if _, err := os.Stat(filepath.Join(reportDir, file)); err != nil {
			t.Fatalf("expected file %s: %v", file, err)
		}
	}

	loaded, ok, err := ReadComparisonReport(baseDir, "cmp-1")
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !ok {
		t.Fatal("expected stored report")
	}
	if !loaded.Timestamp.Equal(comparison.Timestamp) || loaded.Ranking[0] != "b" || loaded.Annotations["note"] != "nightly" {
		t.Fatalf("unexpected loaded report: %+v", loaded)
	}
	if loaded.Results["b"].MeanReward != 6 || len(loaded.Results["a"].Rewards) != 2 {
		t.Fatalf("unexpected loaded results: %+v", loaded.Results)
	}

	file, err := os.Open(filepath.Join(reportDir, rankingFile))
	if err != nil {
		t.Fatalf("open ranking: %v", err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read ranking: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "1" || rows[1][1] != "b" || rows[1][3] != "6" || rows[2][1] != "a" {
		t.Fatalf("unexpected ranking rows: %v", rows)
	}
}

func TestReadComparisonReportMissing(t *testing.T) {
	_, ok, err := ReadComparisonReport(t.TempDir(), "nope")
	if err != nil || ok {
		t.Fatalf("expected missing report, got ok=%t err=%v", ok, err)
	}
}

func TestWriteComparisonReportRequiresID(t *testing.T) {
	if _, err := WriteComparisonReport(t.TempDir(), model.ModelComparison{}); err == nil {
		t.Fatal("expected id error")
	}
}

func TestEvaluationSamplesRoundTrip(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "samples")
	result := Summarize("hunter", []float64{1.5, -2, 30}, time.Now())
	result.ModelVersion = 3

	path, err := WriteEvaluationSamples(baseDir, result)
	if err != nil {
		t.Fatalf("write samples: %v", err)
	}
	if filepath.Base(path) != "hunter_v3_rewards.csv" {
		t.Fatalf("unexpected samples path: %s", path)
	}
	rewards, err := ReadEvaluationSamples(path)
	if err != nil {
		t.Fatalf("read samples: %v", err)
	}
	if len(rewards) != 3 || rewards[0] != 1.5 || rewards[1] != -2 || rewards[2] != 30 {
		t.Fatalf("unexpected rewards: %v", rewards)
	}
}

func TestReadEvaluationSamplesRejectsBadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("episode,reward\n1,abc\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadEvaluationSamples(path); err == nil {
		t.Fatal("expected parse error")
	}

	empty := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rewards, err := ReadEvaluationSamples(empty)
	if err != nil || len(rewards) != 0 {
		t.Fatalf("expected empty rewards, got %v err=%v", rewards, err)
	}
}

func TestWriteEvaluationSamplesStaysInBaseDir(t *testing.T) {
	root := t.TempDir()
	baseDir := filepath.Join(root, "a", "b", "reports")
	cases := map[string]string{
		"team/a":       "team_a_v1_rewards.csv",
		"../../escape": "escape_v1_rewards.csv",
		`win\dows`:     "win_dows_v1_rewards.csv",
		"..":           "unknown_v1_rewards.csv",
		"hunter-2":     "hunter-2_v1_rewards.csv",
	}
	for name, want := range cases {
		result := Summarize(name, []float64{1}, time.Now())
		result.ModelVersion = 1
		path, err := WriteEvaluationSamples(baseDir, result)
		if err != nil {
			t.Fatalf("write samples for %q: %v", name, err)
		}
		if filepath.Dir(path) != baseDir || filepath.Base(path) != want {
			t.Fatalf("samples for %q written to %s, want %s", name, path, filepath.Join(baseDir, want))
		}
	}
	if _, err := os.Stat(filepath.Join(root, "a", "escape_v1_rewards.csv")); !os.IsNotExist(err) {
		t.Fatalf("expected nothing written outside base dir, stat err=%v", err)
	}
}

func TestWriteComparisonReportRejectsPathIDs(t *testing.T) {
	for _, id := range []string{"../x", "a/b", ".."} {
		if _, err := WriteComparisonReport(t.TempDir(), model.ModelComparison{ID: id}); err == nil {
			t.Fatalf("expected error for id %q", id)
		}
	}
}
