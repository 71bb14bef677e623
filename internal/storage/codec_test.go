package storage

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"spikewalk/internal/model"
)

func TestGenomeCodecRoundTrip(t *testing.T) {
	genome := model.Genome{
		VersionedRecord: CurrentVersion(),
		ID:              "g1",
		Input:           2,
		Hidden:          2,
		Output:          1,
		Networks:        4,
		Weights:         []float64{0.1, -0.2, 0.3},
	}
	data, err := EncodeGenome(genome)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeGenome(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, genome) {
		t.Fatalf("unexpected genome: %+v", decoded)
	}
}

func TestEvaluationCodecRoundTrip(t *testing.T) {
	evaluation := model.Evaluation{
		VersionedRecord: CurrentVersion(),
		ID:              "e1",
		RunID:           "r1",
		GenomeID:        "g1",
		Scape:           "walker",
		Fitness:         101.25,
		Displacement:    1.25,
		Ticks:           200,
		Trace:           map[string]any{"final_mean_x": 6.25},
		CreatedAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := EncodeEvaluation(evaluation)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeEvaluation(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != "e1" || decoded.Fitness != 101.25 || !decoded.CreatedAt.Equal(evaluation.CreatedAt) {
		t.Fatalf("unexpected evaluation: %+v", decoded)
	}
	if decoded.Trace["final_mean_x"] != 6.25 {
		t.Fatalf("unexpected trace: %+v", decoded.Trace)
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	data, err := EncodeGenome(model.Genome{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion + 1, CodecVersion: CurrentCodecVersion},
		ID:              "g-future",
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeGenome(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}

	data, err = EncodeEvaluation(model.Evaluation{ID: "e-unversioned"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeEvaluation(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	if _, err := DecodeGenome([]byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := DecodeEvaluation([]byte("[]")); err == nil {
		t.Fatal("expected decode error")
	}
}
