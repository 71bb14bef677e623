package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"spikewalk/pkg/spikewalk"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"SPIKEWALK_LOG_LEVEL", "SPIKEWALK_STORE", "SPIKEWALK_DB_PATH",
		"SPIKEWALK_WORKERS", "SPIKEWALK_SEED", "SPIKEWALK_TICKS",
	} {
		t.Setenv(key, "")
	}
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-level", "warn"}, args...))
	err := root.Execute()
	return out.String(), err
}

func zeroGenome() string {
	return strings.TrimSuffix(strings.Repeat("0,", 36), ",")
}

func TestVersionJSON(t *testing.T) {
	out, err := runCLI(t, "--json", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode version: %v (%s)", err, out)
	}
	if payload["version"] != version {
		t.Fatalf("unexpected version payload: %+v", payload)
	}
}

func TestLayoutCommand(t *testing.T) {
	out, err := runCLI(t, "layout")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if !strings.Contains(out, "genome length: 36") || !strings.Contains(out, "4 x 2-2-1") {
		t.Fatalf("unexpected layout output:\n%s", out)
	}
}

func TestEvaluateCommand(t *testing.T) {
	out, err := runCLI(t, "--json", "evaluate", "--weights", zeroGenome())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	var summary spikewalk.EvaluateSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v (%s)", err, out)
	}
	if summary.Ticks != 200 {
		t.Fatalf("expected 200 ticks, got %d", summary.Ticks)
	}
	if summary.Fitness <= 100 {
		t.Fatalf("expected always-firing genome to walk forward, got fitness %f", summary.Fitness)
	}
	if len(summary.DutyCycles) != 4 {
		t.Fatalf("expected 4 duty cycles, got %v", summary.DutyCycles)
	}

	text, err := runCLI(t, "evaluate", "--random", "--seed", "3")
	if err != nil {
		t.Fatalf("evaluate random: %v", err)
	}
	if !strings.Contains(text, "fitness:") {
		t.Fatalf("unexpected evaluate output:\n%s", text)
	}
}

func TestEvaluateRequiresOneGenomeSource(t *testing.T) {
	if _, err := runCLI(t, "evaluate"); err == nil {
		t.Fatal("expected error without a genome source")
	}
	if _, err := runCLI(t, "evaluate", "--random", "--weights", zeroGenome()); err == nil {
		t.Fatal("expected error with two genome sources")
	}
	if _, err := runCLI(t, "evaluate", "--weights", "1,2,3"); err == nil {
		t.Fatal("expected error for a short genome")
	}
}

func TestProbeCommand(t *testing.T) {
	out, err := runCLI(t, "--json", "probe", "--weights", zeroGenome(), "--steps", "50")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	var summary spikewalk.ProbeSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode probe: %v (%s)", err, out)
	}
	if summary.Steps != 50 {
		t.Fatalf("expected 50 steps, got %d", summary.Steps)
	}
	for _, a := range summary.Actions {
		if a != 1.6 {
			t.Fatalf("expected max length actions, got %v", summary.Actions)
		}
	}
}

func TestBatchCommandFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "population.csv")
	content := "# two genomes\n" + zeroGenome() + "\n" + zeroGenome() + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write genomes: %v", err)
	}
	out, err := runCLI(t, "--json", "batch", "--file", path, "--random", "1", "--workers", "2", "--run", "batch-run")
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	var summary spikewalk.BatchSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode batch: %v (%s)", err, out)
	}
	if summary.RunID != "batch-run" || len(summary.Results) != 3 {
		t.Fatalf("unexpected batch summary: %+v", summary)
	}
	if summary.Results[0].Fitness != summary.Results[1].Fitness {
		t.Fatalf("identical genomes scored differently: %f vs %f", summary.Results[0].Fitness, summary.Results[1].Fitness)
	}
}

func TestRunsCommandWithEmptyStore(t *testing.T) {
	out, err := runCLI(t, "runs")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if !strings.Contains(out, "no runs recorded") {
		t.Fatalf("unexpected runs output:\n%s", out)
	}
	if _, err := runCLI(t, "evaluations", "missing"); err == nil {
		t.Fatal("expected error for unknown run")
	}
	if _, err := runCLI(t, "show", "missing"); err == nil {
		t.Fatal("expected error for unknown evaluation")
	}
}

func TestConfigCommandPrintsYAML(t *testing.T) {
	out, err := runCLI(t, "--store", "memory", "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "voxels: 4") || !strings.Contains(out, "kind: memory") {
		t.Fatalf("unexpected config output:\n%s", out)
	}
	if _, err := runCLI(t, "--store", "postgres", "config"); err == nil {
		t.Fatal("expected invalid store kind to fail")
	}
}

func TestParseWeights(t *testing.T) {
	got, err := parseWeights("0.5, -1\t2\n3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(got, []float64{0.5, -1, 2, 3}) {
		t.Fatalf("unexpected weights: %v", got)
	}
	if _, err := parseWeights("1,x"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestReadGenomes(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]struct {
		content string
		want    [][]float64
	}{
		"nested.json": {content: "[[1,2],[3,4]]", want: [][]float64{{1, 2}, {3, 4}}},
		"single.json": {content: "[1,2,3]", want: [][]float64{{1, 2, 3}}},
		"lines.csv":   {content: "# header\n1,2\n\n3,4\n", want: [][]float64{{1, 2}, {3, 4}}},
	}
	for name, tc := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		got, err := readGenomes(path)
		if err != nil {
			t.Fatalf("%s: read: %v", name, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: got %v want %v", name, got, tc.want)
		}
	}
	if _, err := readGenomes(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
