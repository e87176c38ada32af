// Package audit keeps an append-only activity log of event and membership
// changes. Recording is best effort: callers log failures and carry on.
package audit

import (
	"context"
	"time"
)

type Action string

const (
	EventCreated         Action = "event.created"
	EventDeleted         Action = "event.deleted"
	ParticipantAdded     Action = "participant.added"
	ParticipantStatusSet Action = "participant.status_changed"
	ParticipantRemoved   Action = "participant.removed"
	UserDeleted          Action = "user.deleted"
)

type Entry struct {
	Action  Action    `bson:"action" json:"action"`
	ActorID int64     `bson:"actor_id" json:"actor_id"`
	EventID int64     `bson:"event_id,omitempty" json:"event_id,omitempty"`
	UserID  int64     `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Status  string    `bson:"status,omitempty" json:"status,omitempty"`
	At      time.Time `bson:"at" json:"at"`
}

type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Nop discards entries; used when no Mongo URI is configured.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }
