package spikewalk

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"spikewalk/internal/config"
	protoio "spikewalk/internal/io"
	"spikewalk/internal/model"
	"spikewalk/internal/nn"
	"spikewalk/internal/storage"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{StoreKind: "memory"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestClientEvaluateAndRuns(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	summary, err := client.Evaluate(ctx, EvaluateRequest{
		RunID:    "run-zero",
		GenomeID: "zero",
		Weights:  make([]float64, client.GenomeLength()),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if summary.RunID != "run-zero" || summary.GenomeID != "zero" || summary.EvaluationID == "" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Fitness <= 100 {
		t.Fatalf("expected always-firing controller to walk forward, got %f", summary.Fitness)
	}
	if math.Abs(summary.Fitness-(100+summary.Displacement)) > 1e-9 {
		t.Fatalf("fitness %f does not match displacement %f", summary.Fitness, summary.Displacement)
	}
	if !reflect.DeepEqual(summary.DutyCycles, []float64{1, 1, 1, 1}) {
		t.Fatalf("unexpected duty cycles: %v", summary.DutyCycles)
	}

	runs, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "run-zero" || runs[0].BestGenome != "zero" || runs[0].Evaluations != 1 {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	items, err := client.Evaluations(ctx, "run-zero")
	if err != nil {
		t.Fatalf("evaluations: %v", err)
	}
	if len(items) != 1 || items[0].ID != summary.EvaluationID || items[0].Ticks != 200 {
		t.Fatalf("unexpected evaluations: %+v", items)
	}

	shown, err := client.Show(ctx, summary.EvaluationID)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if shown.Genome.ID != "zero" || len(shown.Networks) != 4 {
		t.Fatalf("unexpected show summary: %+v", shown)
	}
	if len(shown.Networks[0].HiddenWeights) != 2 || len(shown.Networks[0].HiddenWeights[0]) != 3 {
		t.Fatalf("unexpected hidden structure: %+v", shown.Networks[0].HiddenWeights)
	}
	if len(shown.Networks[3].OutputWeights) != 1 || len(shown.Networks[3].OutputWeights[0]) != 3 {
		t.Fatalf("unexpected output structure: %+v", shown.Networks[3].OutputWeights)
	}
}

func TestClientEvaluateRejectsWrongLength(t *testing.T) {
	client := newTestClient(t)
	_, err := client.Evaluate(context.Background(), EvaluateRequest{Weights: make([]float64, client.GenomeLength()+1)})
	if !errors.Is(err, nn.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := client.Evaluate(context.Background(), EvaluateRequest{}); err == nil {
		t.Fatal("expected error without weights or random")
	}
	if _, err := client.Evaluate(context.Background(), EvaluateRequest{Weights: []float64{1}, Random: true}); err == nil {
		t.Fatal("expected error for weights and random together")
	}
}

func TestClientEvaluateRandomIsSeeded(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	first, err := client.Evaluate(ctx, EvaluateRequest{Random: true, Seed: 7})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	second, err := client.Evaluate(ctx, EvaluateRequest{Random: true, Seed: 7})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if first.Fitness != second.Fitness {
		t.Fatalf("expected seeded random genomes to score alike, got %f and %f", first.Fitness, second.Fitness)
	}
	if first.RunID == second.RunID {
		t.Fatal("expected distinct generated run ids")
	}
}

func TestClientEvaluateBatch(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	summary, err := client.EvaluateBatch(ctx, BatchRequest{
		RunID:   "batch-1",
		Genomes: [][]float64{make([]float64, client.GenomeLength())},
		Random:  3,
		Seed:    11,
		Workers: 2,
	})
	if err != nil {
		t.Fatalf("evaluate batch: %v", err)
	}
	if len(summary.Results) != 4 || summary.RunID != "batch-1" {
		t.Fatalf("unexpected batch summary: %+v", summary)
	}
	for _, result := range summary.Results {
		if result.Fitness > summary.Best.Fitness {
			t.Fatalf("best %f is not the maximum, found %f", summary.Best.Fitness, result.Fitness)
		}
	}
	if summary.Stats.Count != 4 || summary.Stats.Max != summary.Best.Fitness {
		t.Fatalf("unexpected batch stats: %+v", summary.Stats)
	}
	if summary.Stats.Offset != 100 {
		t.Fatalf("expected stats offset 100, got %f", summary.Stats.Offset)
	}

	items, err := client.Evaluations(ctx, "batch-1")
	if err != nil {
		t.Fatalf("evaluations: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected 4 stored evaluations, got %d", len(items))
	}

	if _, err := client.EvaluateBatch(ctx, BatchRequest{}); err == nil {
		t.Fatal("expected empty batch error")
	}
	if _, err := client.EvaluateBatch(ctx, BatchRequest{Genomes: [][]float64{{1, 2}}}); !errors.Is(err, nn.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestClientProbe(t *testing.T) {
	client := newTestClient(t)
	summary, err := client.Probe(context.Background(), ProbeRequest{
		Weights: make([]float64, client.GenomeLength()),
		Steps:   50,
	})
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if summary.Steps != 50 {
		t.Fatalf("unexpected steps: %d", summary.Steps)
	}
	if !reflect.DeepEqual(summary.DutyCycles, []float64{1, 1, 1, 1}) {
		t.Fatalf("unexpected duty cycles: %v", summary.DutyCycles)
	}
	if !reflect.DeepEqual(summary.Actions, []float64{1.6, 1.6, 1.6, 1.6}) {
		t.Fatalf("unexpected actions: %v", summary.Actions)
	}

	random, err := client.Probe(context.Background(), ProbeRequest{Random: true, Seed: 3})
	if err != nil {
		t.Fatalf("probe random: %v", err)
	}
	if random.Steps != defaultProbeSteps || len(random.Actions) != 4 {
		t.Fatalf("unexpected random probe: %+v", random)
	}
	for _, a := range random.Actions {
		if a < 0.6 || a > 1.6 {
			t.Fatalf("action out of range: %f", a)
		}
	}
}

func TestClientLookupErrors(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	if _, err := client.Evaluations(ctx, ""); err == nil {
		t.Fatal("expected run id error")
	}
	if _, err := client.Evaluations(ctx, "missing"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if _, err := client.Show(ctx, "missing"); err == nil {
		t.Fatal("expected not found error")
	}
}

func TestClientLayoutFollowsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Network.Hidden = 3
	cfg.Network.Networks = 2
	cfg.Robot.Voxels = 2
	client, err := New(Options{Config: cfg})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()
	layout, err := client.Layout(context.Background())
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if layout.GenomeLength != 2*(3*3+1*4) || layout.Actuators != 2 {
		t.Fatalf("unexpected layout: %+v", layout)
	}
	if !reflect.DeepEqual(layout.Scapes, []string{"walker"}) {
		t.Fatalf("unexpected scapes: %v", layout.Scapes)
	}
	if !reflect.DeepEqual(layout.SensorComponents, []string{protoio.CornerDistanceSensorName}) ||
		!reflect.DeepEqual(layout.ActuatorComponents, []string{protoio.MuscleLengthActuatorName}) {
		t.Fatalf("unexpected components: sensors=%v actuators=%v", layout.SensorComponents, layout.ActuatorComponents)
	}

	cfg.Robot.Voxels = 3
	if _, err := New(Options{Config: cfg}); err == nil {
		t.Fatal("expected invalid config error")
	}
	if _, err := New(Options{StoreKind: "postgres"}); err == nil {
		t.Fatal("expected unsupported store error")
	}
}

func TestStructure(t *testing.T) {
	weights := make([]float64, 9)
	for i := range weights {
		weights[i] = float64(i)
	}
	networks, err := Structure(model.Genome{ID: "g", Input: 2, Hidden: 2, Output: 1, Networks: 1, Weights: weights})
	if err != nil {
		t.Fatalf("structure: %v", err)
	}
	want := []NetworkStructure{{
		Index:         0,
		HiddenWeights: [][]float64{{0, 1, 2}, {3, 4, 5}},
		OutputWeights: [][]float64{{6, 7, 8}},
	}}
	if !reflect.DeepEqual(networks, want) {
		t.Fatalf("got %+v want %+v", networks, want)
	}
	if _, err := Structure(model.Genome{ID: "g", Input: 2, Hidden: 2, Output: 1, Networks: 2, Weights: weights}); !errors.Is(err, nn.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

// stillGenome keeps every output neuron silent so all voxels contract to
// the minimum length and stay there.
func stillGenome(length int) []float64 {
	weights := make([]float64, length)
	for base := 6; base+2 < length; base += 9 {
		weights[base], weights[base+1], weights[base+2] = -1, -1, 0.5
	}
	return weights
}

func TestClientBatchBestIsFurthestForward(t *testing.T) {
	client := newTestClient(t)
	still := stillGenome(client.GenomeLength())
	firing := make([]float64, client.GenomeLength())

	summary, err := client.EvaluateBatch(context.Background(), BatchRequest{
		RunID:   "direction",
		Genomes: [][]float64{still, firing},
		Workers: 2,
	})
	if err != nil {
		t.Fatalf("evaluate batch: %v", err)
	}
	slow, fast := summary.Results[0], summary.Results[1]
	if fast.Displacement <= slow.Displacement {
		t.Fatalf("expected the firing genome to travel further: %f vs %f", fast.Displacement, slow.Displacement)
	}
	if fast.Fitness <= slow.Fitness {
		t.Fatalf("expected further travel to score higher: %f vs %f", fast.Fitness, slow.Fitness)
	}
	if summary.Best.GenomeID != fast.GenomeID || summary.Best.Fitness != summary.Stats.Max {
		t.Fatalf("expected best to be the furthest walker, got %+v (stats %+v)", summary.Best, summary.Stats)
	}

	runs, err := client.Runs(context.Background(), RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].BestGenome != fast.GenomeID {
		t.Fatalf("expected run best to be the furthest walker, got %+v", runs)
	}
}

func TestClientRejectsRebindingGenomeID(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	firing := make([]float64, client.GenomeLength())

	first, err := client.Evaluate(ctx, EvaluateRequest{GenomeID: "g1", Weights: firing})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	_, err = client.Evaluate(ctx, EvaluateRequest{GenomeID: "g1", Weights: stillGenome(client.GenomeLength())})
	if !errors.Is(err, storage.ErrGenomeConflict) {
		t.Fatalf("expected genome conflict, got %v", err)
	}

	shown, err := client.Show(ctx, first.EvaluationID)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !reflect.DeepEqual(shown.Genome.Weights, firing) {
		t.Fatalf("first evaluation no longer shows the weights it scored: %v", shown.Genome.Weights)
	}
}

func TestClientCloseStopsPlatform(t *testing.T) {
	client, err := New(Options{StoreKind: "memory"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	p := client.polis
	if p == nil || !p.Started() {
		t.Fatal("expected started platform after init")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if p.Started() || len(p.RegisteredScapes()) != 0 {
		t.Fatalf("expected platform stopped on close: started=%t scapes=%v", p.Started(), p.RegisteredScapes())
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
