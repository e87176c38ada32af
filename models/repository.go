package models

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrReference = errors.New("referenced record does not exist")
	// ErrMissingLocation is the ErrReference case for an event's local_id.
	ErrMissingLocation = errors.New("referenced location does not exist")
)

// ===== Users =====
type User struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"nome" json:"nome"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"senha" json:"-"`
	Phone        string `db:"telefone" json:"telefone"`
}

// UserPatch carries the fields of a partial update; nil means "leave as is".
type UserPatch struct {
	Name     *string `json:"nome"`
	Email    *string `json:"email"`
	Password *string `json:"senha"`
	Phone    *string `json:"telefone"`
}

// Apply merges the non-nil fields into u. Password is expected to be hashed already.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.PasswordHash = *p.Password
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, u *User) error
	Search(ctx context.Context, term string) ([]User, error)
	// Delete removes the user's participations, the events they own (with
	// their participants) and the user itself.
	Delete(ctx context.Context, id int64) error
}

// ===== Locations =====
type Location struct {
	ID        int64   `db:"id" json:"id"`
	Address   string  `db:"endereco" json:"endereco"`
	Latitude  float64 `db:"latitude" json:"latitude"`
	Longitude float64 `db:"longitude" json:"longitude"`
}

type LocationRepository interface {
	Create(ctx context.Context, l *Location) error
	GetByID(ctx context.Context, id int64) (Location, error)
	List(ctx context.Context) ([]Location, error)
	Delete(ctx context.Context, id int64) error
}

// ===== Events =====
type Event struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"nome" json:"nome"`
	Date        Date   `db:"data" json:"data"`
	Time        string `db:"hora" json:"hora"`
	Description string `db:"descricao" json:"descricao"`
	OwnerID     int64  `db:"criador_id" json:"criador_id"`
	LocationID  *int64 `db:"local_id" json:"local_id"`
}

// EventSummary is an Event annotated with its participant counts.
type EventSummary struct {
	Event
	TotalParticipants int `db:"total_participantes" json:"total_participantes"`
	Confirmed         int `db:"confirmados" json:"confirmados"`
}

type EventRepository interface {
	// Create inserts the event and its owner as a CONFIRMED participant
	// atomically. A non-nil loc is inserted in the same transaction and becomes
	// the event's location. Returns ErrReference for an unknown owner and
	// ErrMissingLocation for an unknown local_id.
	Create(ctx context.Context, e *Event, loc *Location) error
	GetByID(ctx context.Context, id int64) (Event, error)
	ListForUser(ctx context.Context, userID int64) ([]Event, error)
	ListPast(ctx context.Context, userID int64, today time.Time) ([]EventSummary, error)
	ListFuture(ctx context.Context, userID int64, today time.Time) ([]EventSummary, error)
	// Delete removes every participant of the event, then the event.
	Delete(ctx context.Context, id int64) error
}

// ===== Participants =====
type ParticipantStatus string

const (
	StatusPending   ParticipantStatus = "PENDENTE"
	StatusConfirmed ParticipantStatus = "CONFIRMADO"
	StatusDeclined  ParticipantStatus = "RECUSADO"
)

func (s ParticipantStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDeclined:
		return true
	}
	return false
}

type Participant struct {
	ID      int64             `db:"id" json:"id"`
	EventID int64             `db:"evento_id" json:"evento_id"`
	UserID  int64             `db:"usuario_id" json:"usuario_id"`
	Status  ParticipantStatus `db:"status" json:"status"`
	Name    string            `db:"nome" json:"nome"`
	Email   string            `db:"email" json:"email"`
}

type ParticipantRepository interface {
	// Add returns ErrDuplicate when (eventID, userID) already exists and
	// ErrReference when the user does not exist.
	Add(ctx context.Context, eventID, userID int64, status ParticipantStatus) error
	UpdateStatus(ctx context.Context, eventID, userID int64, status ParticipantStatus) error
	Remove(ctx context.Context, eventID, userID int64) error
	ListByEvent(ctx context.Context, eventID int64) ([]Participant, error)
}

// Dashboard holds participant counts by status.
type Dashboard struct {
	Total     int `json:"total"`
	Confirmed int `json:"confirmados"`
	Declined  int `json:"recusados"`
	Pending   int `json:"pendentes"`
}

func Summarize(ps []Participant) Dashboard {
	d := Dashboard{Total: len(ps)}
	for _, p := range ps {
		switch p.Status {
		case StatusConfirmed:
			d.Confirmed++
		case StatusDeclined:
			d.Declined++
		case StatusPending:
			d.Pending++
		}
	}
	return d
}
