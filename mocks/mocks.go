// Package mocks provides in-memory repositories that mimic the constraints of
// the Postgres schema (unique emails, unique memberships, foreign keys).
package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"eventapi/models"
)

type membership struct{ eventID, userID int64 }

// Store is a fake database shared by the repositories it hands out.
type Store struct {
	mu           sync.Mutex
	nextID       int64
	users        map[int64]models.User
	locations    map[int64]models.Location
	events       map[int64]models.Event
	participants map[membership]models.Participant
}

func NewStore() *Store {
	return &Store{
		users:        map[int64]models.User{},
		locations:    map[int64]models.Location{},
		events:       map[int64]models.Event{},
		participants: map[membership]models.Participant{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Users() *UserRepo               { return &UserRepo{s} }
func (s *Store) Locations() *LocationRepo       { return &LocationRepo{s} }
func (s *Store) Events() *EventRepo             { return &EventRepo{s} }
func (s *Store) Participants() *ParticipantRepo { return &ParticipantRepo{s} }

// ===== Users =====
type UserRepo struct{ s *Store }

func (r *UserRepo) emailTaken(email string, except int64) bool {
	for _, u := range r.s.users {
		if u.ID != except && u.Email == email {
			return true
		}
	}
	return false
}

func (r *UserRepo) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTaken(u.Email, 0) {
		return models.ErrDuplicate
	}
	u.ID = r.s.id()
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

func (r *UserRepo) Update(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return models.ErrNotFound
	}
	if r.emailTaken(u.Email, u.ID) {
		return models.ErrDuplicate
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) Search(_ context.Context, term string) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	term = strings.ToLower(term)
	out := []models.User{}
	for _, u := range r.s.users {
		if term == "" || strings.Contains(strings.ToLower(u.Name), term) || strings.Contains(strings.ToLower(u.Email), term) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *UserRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return models.ErrNotFound
	}
	for k := range r.s.participants {
		if k.userID == id || r.s.events[k.eventID].OwnerID == id {
			delete(r.s.participants, k)
		}
	}
	for eid, e := range r.s.events {
		if e.OwnerID == id {
			delete(r.s.events, eid)
		}
	}
	delete(r.s.users, id)
	return nil
}

// ===== Locations =====
type LocationRepo struct{ s *Store }

func (r *LocationRepo) Create(_ context.Context, l *models.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.ID = r.s.id()
	r.s.locations[l.ID] = *l
	return nil
}

func (r *LocationRepo) GetByID(_ context.Context, id int64) (models.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.locations[id]
	if !ok {
		return models.Location{}, models.ErrNotFound
	}
	return l, nil
}

func (r *LocationRepo) List(_ context.Context) ([]models.Location, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Location{}
	for _, l := range r.s.locations {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *LocationRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.locations[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.s.locations, id)
	for eid, e := range r.s.events {
		if e.LocationID != nil && *e.LocationID == id {
			e.LocationID = nil
			r.s.events[eid] = e
		}
	}
	return nil
}

// ===== Events =====
type EventRepo struct{ s *Store }

func (r *EventRepo) Create(_ context.Context, e *models.Event, loc *models.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	owner, ok := r.s.users[e.OwnerID]
	if !ok {
		return models.ErrReference
	}
	if loc != nil {
		loc.ID = r.s.id()
		r.s.locations[loc.ID] = *loc
		e.LocationID = &loc.ID
	} else if e.LocationID != nil {
		if _, ok := r.s.locations[*e.LocationID]; !ok {
			return models.ErrMissingLocation
		}
	}
	e.ID = r.s.id()
	r.s.events[e.ID] = *e
	r.s.participants[membership{e.ID, owner.ID}] = models.Participant{
		ID: r.s.id(), EventID: e.ID, UserID: owner.ID, Status: models.StatusConfirmed,
	}
	return nil
}

func (r *EventRepo) GetByID(_ context.Context, id int64) (models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return models.Event{}, models.ErrNotFound
	}
	return e, nil
}

func (r *EventRepo) member(e models.Event, userID int64) bool {
	if e.OwnerID == userID {
		return true
	}
	_, ok := r.s.participants[membership{e.ID, userID}]
	return ok
}

func (r *EventRepo) ListForUser(_ context.Context, userID int64) ([]models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Event{}
	for _, e := range r.s.events {
		if r.member(e, userID) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return later(out[i], out[j]) })
	return out, nil
}

func (r *EventRepo) ListPast(_ context.Context, userID int64, today time.Time) ([]models.EventSummary, error) {
	day := models.NewDate(today)
	out := r.summaries(userID, func(e models.Event) bool { return e.Date.Before(day.Time) })
	sort.Slice(out, func(i, j int) bool { return later(out[i].Event, out[j].Event) })
	return out, nil
}

func (r *EventRepo) ListFuture(_ context.Context, userID int64, today time.Time) ([]models.EventSummary, error) {
	day := models.NewDate(today)
	out := r.summaries(userID, func(e models.Event) bool { return !e.Date.Before(day.Time) })
	sort.Slice(out, func(i, j int) bool { return later(out[j].Event, out[i].Event) })
	return out, nil
}

func (r *EventRepo) summaries(userID int64, keep func(models.Event) bool) []models.EventSummary {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.EventSummary{}
	for _, e := range r.s.events {
		if !r.member(e, userID) || !keep(e) {
			continue
		}
		sum := models.EventSummary{Event: e}
		for k, p := range r.s.participants {
			if k.eventID != e.ID {
				continue
			}
			sum.TotalParticipants++
			if p.Status == models.StatusConfirmed {
				sum.Confirmed++
			}
		}
		out = append(out, sum)
	}
	return out
}

func later(a, b models.Event) bool {
	if !a.Date.Equal(b.Date.Time) {
		return a.Date.After(b.Date.Time)
	}
	return a.Time > b.Time
}

func (r *EventRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return models.ErrNotFound
	}
	for k := range r.s.participants {
		if k.eventID == id {
			delete(r.s.participants, k)
		}
	}
	delete(r.s.events, id)
	return nil
}

// ===== Participants =====
type ParticipantRepo struct{ s *Store }

func (r *ParticipantRepo) Add(_ context.Context, eventID, userID int64, status models.ParticipantStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[eventID]; !ok {
		return models.ErrReference
	}
	if _, ok := r.s.users[userID]; !ok {
		return models.ErrReference
	}
	k := membership{eventID, userID}
	if _, ok := r.s.participants[k]; ok {
		return models.ErrDuplicate
	}
	r.s.participants[k] = models.Participant{ID: r.s.id(), EventID: eventID, UserID: userID, Status: status}
	return nil
}

func (r *ParticipantRepo) withUser(p models.Participant) models.Participant {
	u := r.s.users[p.UserID]
	p.Name, p.Email = u.Name, u.Email
	return p
}

func (r *ParticipantRepo) UpdateStatus(_ context.Context, eventID, userID int64, status models.ParticipantStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := membership{eventID, userID}
	p, ok := r.s.participants[k]
	if !ok {
		return models.ErrNotFound
	}
	p.Status = status
	r.s.participants[k] = p
	return nil
}

func (r *ParticipantRepo) Remove(_ context.Context, eventID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := membership{eventID, userID}
	if _, ok := r.s.participants[k]; !ok {
		return models.ErrNotFound
	}
	delete(r.s.participants, k)
	return nil
}

func (r *ParticipantRepo) ListByEvent(_ context.Context, eventID int64) ([]models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Participant{}
	for k, p := range r.s.participants {
		if k.eventID == eventID {
			out = append(out, r.withUser(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
