package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Genome is the flat weight vector handed over by the outer optimizer,
// together with the network shape it was produced for.
type Genome struct {
	VersionedRecord
	ID       string    `json:"id"`
	Input    int       `json:"input"`
	Hidden   int       `json:"hidden"`
	Output   int       `json:"output"`
	Networks int       `json:"networks"`
	Weights  []float64 `json:"weights"`
}

// Evaluation is one scored episode of a genome.
type Evaluation struct {
	VersionedRecord
	ID           string         `json:"id"`
	RunID        string         `json:"run_id"`
	GenomeID     string         `json:"genome_id"`
	Scape        string         `json:"scape"`
	Fitness      float64        `json:"fitness"`
	Displacement float64        `json:"displacement"`
	Ticks        int            `json:"ticks"`
	Trace        map[string]any `json:"trace,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// RunSummary aggregates the evaluations recorded under one run id.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	Evaluations int       `json:"evaluations"`
	BestFitness float64   `json:"best_fitness"`
	BestGenome  string    `json:"best_genome"`
	UpdatedAt   time.Time `json:"updated_at"`
}
