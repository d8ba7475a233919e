package storage

import (
	"encoding/json"
	"errors"

	"moea/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(r model.Run) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.Run, error) {
	var run model.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return model.Run{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.Run{}, err
	}
	return run, nil
}

func EncodePopulation(p model.PopulationRecord) ([]byte, error) {
	return json.Marshal(p)
}

func DecodePopulation(data []byte) (model.PopulationRecord, error) {
	var record model.PopulationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.PopulationRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.PopulationRecord{}, err
	}
	return record, nil
}

func EncodeHistory(history []model.GenerationStats) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeHistory(data []byte) ([]model.GenerationStats, error) {
	var history []model.GenerationStats
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
