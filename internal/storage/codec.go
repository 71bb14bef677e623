package storage

import (
	"encoding/json"
	"errors"

	"spikewalk/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// CurrentVersion stamps new records with the versions this build writes.
func CurrentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeGenome(g model.Genome) ([]byte, error) {
	return json.Marshal(g)
}

func DecodeGenome(data []byte) (model.Genome, error) {
	var genome model.Genome
	if err := json.Unmarshal(data, &genome); err != nil {
		return model.Genome{}, err
	}
	if err := checkVersion(genome.VersionedRecord); err != nil {
		return model.Genome{}, err
	}
	return genome, nil
}

func EncodeEvaluation(e model.Evaluation) ([]byte, error) {
	return json.Marshal(e)
}

func DecodeEvaluation(data []byte) (model.Evaluation, error) {
	var evaluation model.Evaluation
	if err := json.Unmarshal(data, &evaluation); err != nil {
		return model.Evaluation{}, err
	}
	if err := checkVersion(evaluation.VersionedRecord); err != nil {
		return model.Evaluation{}, err
	}
	return evaluation, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
