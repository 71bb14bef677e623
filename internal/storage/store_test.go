package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"spikewalk/internal/model"
)

// exerciseStore runs the behaviour shared by every backend.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	genome := model.Genome{
		VersionedRecord: CurrentVersion(),
		ID:              "g1",
		Input:           2,
		Hidden:          2,
		Output:          1,
		Networks:        1,
		Weights:         []float64{0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	if err := store.SaveGenome(ctx, genome); err != nil {
		t.Fatalf("save genome: %v", err)
	}
	loaded, ok, err := store.GetGenome(ctx, "g1")
	if err != nil {
		t.Fatalf("get genome: %v", err)
	}
	if !ok || loaded.ID != "g1" || len(loaded.Weights) != 9 {
		t.Fatalf("unexpected genome loaded: ok=%t %+v", ok, loaded)
	}
	if _, ok, err := store.GetGenome(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing genome, ok=%t err=%v", ok, err)
	}
	if err := store.SaveGenome(ctx, genome); err != nil {
		t.Fatalf("resave identical genome: %v", err)
	}
	changed := genome
	changed.Weights = []float64{1, 0, 0, 0, 0, 0, 0, 0, 0}
	if err := store.SaveGenome(ctx, changed); !errors.Is(err, ErrGenomeConflict) {
		t.Fatalf("expected genome conflict, got %v", err)
	}
	kept, _, err := store.GetGenome(ctx, "g1")
	if err != nil || kept.Weights[0] != 0 {
		t.Fatalf("conflicting save replaced stored weights: %v err=%v", kept.Weights, err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []model.Evaluation{
		{ID: "e1", RunID: "run-a", GenomeID: "g1", Fitness: 100.5, CreatedAt: base},
		{ID: "e2", RunID: "run-a", GenomeID: "g2", Fitness: 102, CreatedAt: base.Add(time.Second)},
		{ID: "e3", RunID: "run-a", GenomeID: "g3", Fitness: 99, CreatedAt: base.Add(2 * time.Second)},
		{ID: "e4", RunID: "run-b", GenomeID: "g1", Fitness: 100, CreatedAt: base.Add(time.Minute)},
	}
	for _, record := range records {
		record.VersionedRecord = CurrentVersion()
		record.Scape = "walker"
		if err := store.SaveEvaluation(ctx, record); err != nil {
			t.Fatalf("save evaluation %s: %v", record.ID, err)
		}
	}

	evaluation, ok, err := store.GetEvaluation(ctx, "e2")
	if err != nil || !ok {
		t.Fatalf("get evaluation: ok=%t err=%v", ok, err)
	}
	if evaluation.Fitness != 102 || evaluation.GenomeID != "g2" {
		t.Fatalf("unexpected evaluation: %+v", evaluation)
	}

	listed, err := store.ListEvaluations(ctx, "run-a")
	if err != nil {
		t.Fatalf("list evaluations: %v", err)
	}
	if len(listed) != 3 || listed[0].ID != "e1" || listed[2].ID != "e3" {
		t.Fatalf("unexpected evaluation order: %+v", listed)
	}
	if empty, err := store.ListEvaluations(ctx, "run-none"); err != nil || len(empty) != 0 {
		t.Fatalf("expected no evaluations, got %d err=%v", len(empty), err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %+v", runs)
	}
	if runs[0].RunID != "run-b" || runs[1].RunID != "run-a" {
		t.Fatalf("expected most recent run first, got %+v", runs)
	}
	a := runs[1]
	if a.Evaluations != 3 || a.BestFitness != 102 || a.BestGenome != "g2" {
		t.Fatalf("unexpected run summary: %+v", a)
	}
	if !a.UpdatedAt.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("unexpected updated at: %s", a.UpdatedAt)
	}

	limited, err := store.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(limited) != 1 || limited[0].RunID != "run-b" {
		t.Fatalf("unexpected limited runs: %+v", limited)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	exerciseStore(t, store)
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SaveGenome(context.Background(), model.Genome{ID: "g"}); err == nil {
		t.Fatal("expected error before init")
	}
}

func TestMemoryStoreCopiesWeights(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	weights := []float64{1, 2, 3}
	if err := store.SaveGenome(ctx, model.Genome{ID: "g", Weights: weights}); err != nil {
		t.Fatalf("save genome: %v", err)
	}
	weights[0] = 42
	loaded, _, _ := store.GetGenome(ctx, "g")
	if loaded.Weights[0] != 1 {
		t.Fatalf("stored genome aliased caller slice: %v", loaded.Weights)
	}
}

func TestMemoryStoreResaveKeepsSingleEntry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, fitness := range []float64{1, 2} {
		if err := store.SaveEvaluation(ctx, model.Evaluation{ID: "e", RunID: "r", Fitness: fitness}); err != nil {
			t.Fatalf("save evaluation: %v", err)
		}
	}
	listed, _ := store.ListEvaluations(ctx, "r")
	if len(listed) != 1 || listed[0].Fitness != 2 {
		t.Fatalf("unexpected evaluations: %+v", listed)
	}
}
