package storage

import (
	"encoding/json"
	"errors"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeTemplate(rec TemplateRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func DecodeTemplate(data []byte) (TemplateRecord, error) {
	var rec TemplateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return TemplateRecord{}, err
	}
	if err := checkVersion(rec.VersionedRecord); err != nil {
		return TemplateRecord{}, err
	}
	return rec, nil
}

func EncodeRun(run RunRecord) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeRun(data []byte) (RunRecord, error) {
	var run RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return RunRecord{}, err
	}
	return run, nil
}

func checkVersion(v VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
