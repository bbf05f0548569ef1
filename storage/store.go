// Package storage persists critter templates and run summaries.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/pthm-cable/critters/critter"
)

// Store defines persistence operations for runs and their best templates.
type Store interface {
	Init(ctx context.Context) error
	SaveTemplate(ctx context.Context, rec TemplateRecord) error
	GetTemplate(ctx context.Context, id string) (TemplateRecord, bool, error)
	ListTemplates(ctx context.Context, runID string) ([]TemplateRecord, error)
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
}

// VersionedRecord stamps every stored record with the format it was
// written in.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// CurrentVersion is the stamp new records get.
func CurrentVersion() VersionedRecord {
	return VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

// TemplateRecord is one saved critter template.
type TemplateRecord struct {
	VersionedRecord
	ID         string       `json:"id"`
	RunID      string       `json:"run_id"`
	Generation int          `json:"generation"`
	Fitness    float64      `json:"fitness"`
	Spec       critter.Spec `json:"spec"`
}

// NewTemplateRecord stamps spec with a fresh id and the current version.
func NewTemplateRecord(runID string, generation int, fitness float64, spec critter.Spec) TemplateRecord {
	return TemplateRecord{
		VersionedRecord: CurrentVersion(),
		ID:              uuid.NewString(),
		RunID:           runID,
		Generation:      generation,
		Fitness:         fitness,
		Spec:            spec,
	}
}

// RunRecord summarises one evolution run.
type RunRecord struct {
	VersionedRecord
	ID          string    `json:"id"`
	Seed        int64     `json:"seed"`
	Generations int       `json:"generations"`
	BestFitness float64   `json:"best_fitness"`
	BestID      string    `json:"best_id,omitempty"`
	History     []float64 `json:"history"` // best fitness per generation
}

// NewRunID returns a fresh run id.
func NewRunID() string { return uuid.NewString() }
