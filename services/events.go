package services

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"eventapi/audit"
	"eventapi/models"
)

type CreateEventInput struct {
	Name        string `json:"nome" validate:"required"`
	Date        string `json:"data" validate:"required,calendardate"`
	Time        string `json:"hora" validate:"required,hhmm"`
	Description string `json:"descricao" validate:"required"`

	// Either an existing location or the fields of a new one.
	LocationID *int64   `json:"local_id"`
	Address    *string  `json:"endereco"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

const msgEventRequired = "Nome, data, hora e descrição são obrigatórios"

var eventMessages = map[string]string{
	"Name":              msgEventRequired,
	"Description":       msgEventRequired,
	"Date.required":     msgEventRequired,
	"Time.required":     msgEventRequired,
	"Date.calendardate": "Data inválida",
	"Time.hhmm":         "Hora inválida",
}

type EventService struct {
	events    models.EventRepository
	locations *LocationService
	recorder  audit.Recorder
	validate  *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

func NewEventService(events models.EventRepository, locations *LocationService, recorder audit.Recorder, logger zerolog.Logger) *EventService {
	return &EventService{
		events:    events,
		locations: locations,
		recorder:  recorder,
		validate:  newValidator(),
		logger:    logger.With().Str("component", "events").Logger(),
		now:       time.Now,
	}
}

// Create validates the input, resolves the location and stores the event with
// its owner enrolled as CONFIRMED.
func (s *EventService) Create(ctx context.Context, ownerID int64, in CreateEventInput) (models.Event, error) {
	if err := s.validate.Struct(in); err != nil {
		return models.Event{}, firstViolation(err, eventMessages, msgEventRequired)
	}
	date, _ := models.ParseDate(in.Date)

	ev := models.Event{
		Name:        in.Name,
		Date:        date,
		Time:        in.Time,
		Description: in.Description,
		OwnerID:     ownerID,
		LocationID:  in.LocationID,
	}
	newLoc, err := s.newLocation(ctx, in)
	if err != nil {
		return models.Event{}, err
	}

	err = s.events.Create(ctx, &ev, newLoc)
	switch {
	case errors.Is(err, models.ErrMissingLocation):
		return models.Event{}, notFound(msgLocationNotFound)
	case errors.Is(err, models.ErrReference):
		return models.Event{}, notFound(msgUserNotFound)
	case err != nil:
		return models.Event{}, internal("Erro ao criar evento", err)
	}

	s.logger.Info().Int64("event_id", ev.ID).Int64("owner_id", ownerID).Msg("event created")
	s.record(ctx, audit.Entry{Action: audit.EventCreated, ActorID: ownerID, EventID: ev.ID, UserID: ownerID})
	return ev, nil
}

// newLocation returns the inline location to be stored with the event, or nil
// when the event references an existing local_id or has no location.
func (s *EventService) newLocation(ctx context.Context, in CreateEventInput) (*models.Location, error) {
	if in.LocationID != nil {
		return nil, nil
	}
	if in.Address == nil && in.Latitude == nil && in.Longitude == nil {
		return nil, nil
	}

	loc := CreateLocationInput{Latitude: in.Latitude, Longitude: in.Longitude}
	if in.Address != nil {
		loc.Address = *in.Address
	}
	resolved, err := s.locations.resolve(ctx, loc)
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

func (s *EventService) Get(ctx context.Context, id int64) (models.Event, error) {
	return findEvent(ctx, s.events, id)
}

// Delete is allowed to the owner only; participants go first.
func (s *EventService) Delete(ctx context.Context, eventID, requesterID int64) error {
	ev, err := findEvent(ctx, s.events, eventID)
	if err != nil {
		return err
	}
	if ev.OwnerID != requesterID {
		return forbidden("Não autorizado a deletar este evento")
	}

	err = s.events.Delete(ctx, eventID)
	if errors.Is(err, models.ErrNotFound) {
		return notFound(msgEventNotFound)
	}
	if err != nil {
		return internal("Erro ao deletar evento", err)
	}

	s.logger.Info().Int64("event_id", eventID).Msg("event deleted")
	s.record(ctx, audit.Entry{Action: audit.EventDeleted, ActorID: requesterID, EventID: eventID})
	return nil
}

// List returns the events the user owns or participates in, newest first.
func (s *EventService) List(ctx context.Context, userID int64) ([]models.Event, error) {
	evs, err := s.events.ListForUser(ctx, userID)
	if err != nil {
		return nil, internal("Erro ao listar eventos", err)
	}
	return evs, nil
}

func (s *EventService) ListPast(ctx context.Context, userID int64) ([]models.EventSummary, error) {
	evs, err := s.events.ListPast(ctx, userID, s.now())
	if err != nil {
		return nil, internal("Erro ao listar eventos passados", err)
	}
	return evs, nil
}

func (s *EventService) ListFuture(ctx context.Context, userID int64) ([]models.EventSummary, error) {
	evs, err := s.events.ListFuture(ctx, userID, s.now())
	if err != nil {
		return nil, internal("Erro ao listar eventos futuros", err)
	}
	return evs, nil
}

func (s *EventService) record(ctx context.Context, e audit.Entry) {
	recordEntry(ctx, s.recorder, s.logger, e)
}

func findEvent(ctx context.Context, events models.EventRepository, id int64) (models.Event, error) {
	ev, err := events.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return models.Event{}, notFound(msgEventNotFound)
	}
	if err != nil {
		return models.Event{}, internal("Erro ao buscar evento", err)
	}
	return ev, nil
}

func recordEntry(ctx context.Context, r audit.Recorder, logger zerolog.Logger, e audit.Entry) {
	if r == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if err := r.Record(ctx, e); err != nil {
		logger.Warn().Err(err).Str("action", string(e.Action)).Int64("event_id", e.EventID).Msg("audit record failed")
	}
}
