package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeStateSaved is emitted after the remote state of one remote is
	// rewritten in the store.
	EventTypeStateSaved = "remotes.state.saved"
)

// Exchange kinds recorded on saved events.
const (
	ExchangePull   = "pull"
	ExchangePush   = "push"
	ExchangeManual = "manual"
)

// StateSavedEvent is a transport-neutral event payload for a remote state save.
type StateSavedEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Remote        string      `json:"remote"`
	Exchange      string      `json:"exchange"`
	Records       []SavedName `json:"records"`
}

// SavedName is one record written by the save.
type SavedName struct {
	Hash string `json:"hash"`
	Name string `json:"name"`
}

// NewStateSavedEvent stamps a new event with a fresh ID and the current time.
func NewStateSavedEvent(remote, exchange string, records []SavedName) *StateSavedEvent {
	return &StateSavedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeStateSaved,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Remote:        remote,
		Exchange:      exchange,
		Records:       records,
	}
}
