package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type constants keep queue producers and consumers in sync.
const (
	TypeDeckExport = "deck:export"
)

// DeckExportPayload carries the minimum needed to run one export job.
type DeckExportPayload struct {
	ExportID      uint   `json:"export_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewDeckExportTask builds a deck export task for the queue.
func NewDeckExportTask(exportID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(DeckExportPayload{
		ExportID:      exportID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDeckExport, payload), nil
}
