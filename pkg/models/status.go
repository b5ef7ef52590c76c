package models

// State is the ingestion lifecycle of the card store.
type State string

const (
	StateNotStarted   State = "not_started"
	StateInitializing State = "initializing"
	StateUpdating     State = "updating"
	StateReady        State = "ready"
	StateError        State = "error"
)

// Status is the shared ingestion status record. It is written only by the
// ingest pipeline and read by every request handler; mutation happens behind
// the tracker's mutex, readers get value snapshots.
type Status struct {
	State        State  `json:"state"`
	TotalCards   int    `json:"total_cards"`
	CurrentCard  int    `json:"current_card"`
	SkippedCards int    `json:"skipped_cards,omitempty"`
	Progress     int    `json:"progress"`
	Message      string `json:"message"`
	Error        string `json:"error,omitempty"`
	LastUpdated  string `json:"last_updated,omitempty"`
	RunID        string `json:"run_id,omitempty"`
}
