package domain

import "time"

// RemoteLocalMapping links a cloud-assigned identity to a local one. It is
// what prevents a restored device from inserting a second local copy of a
// transaction it already holds under a regenerated id.
type RemoteLocalMapping struct {
	RemoteID   string
	LocalID    string
	EntityType TransactionType
	CreatedAt  time.Time
}

// SyncLog records the outcome of one bulk reconciliation sweep.
type SyncLog struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Pushed     int
	Pulled     int
	Skipped    int
	Failed     int
	Status     string
	Detail     string
}

// Sync log statuses.
const (
	SyncStatusOK      = "ok"
	SyncStatusPartial = "partial"
	SyncStatusFailed  = "failed"
)

// RemoteTransaction is a transaction as held by the remote mirror, together
// with the id the mirror stored it under.
type RemoteTransaction struct {
	RemoteID    string
	SyncedAt    time.Time
	Transaction Transaction
}
