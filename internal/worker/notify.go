package worker

// DeckExportNotifyMessage is the WebSocket message protocol, forwarded to
// clients through Redis pub/sub. Field names must stay in sync with the
// frontend parser.
type DeckExportNotifyMessage struct {
	Status        string   `json:"status"`
	ExportID      uint     `json:"export_id"`
	ProfileID     uint     `json:"profile_id"`
	CorrelationID string   `json:"correlation_id"`
	ErrorCode     int      `json:"error_code"`
	ErrorMessage  string   `json:"error_message"`
	MissingKeys   []string `json:"missing_keys,omitempty"`
}
