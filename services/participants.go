package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"eventapi/audit"
	"eventapi/metrics"
	"eventapi/models"
)

// ParticipantService owns the membership workflow. Any status may be set from
// any other; only authorization limits who may write.
type ParticipantService struct {
	events       models.EventRepository
	participants models.ParticipantRepository
	recorder     audit.Recorder
	logger       zerolog.Logger
}

func NewParticipantService(events models.EventRepository, participants models.ParticipantRepository, recorder audit.Recorder, logger zerolog.Logger) *ParticipantService {
	return &ParticipantService{
		events:       events,
		participants: participants,
		recorder:     recorder,
		logger:       logger.With().Str("component", "participants").Logger(),
	}
}

// Add enrolls userID as PENDENTE. Duplicates are rejected by the storage
// uniqueness constraint and surface as a conflict.
func (s *ParticipantService) Add(ctx context.Context, eventID, userID, actorID int64) error {
	if userID <= 0 {
		return validation("usuario_id é obrigatório")
	}
	if _, err := findEvent(ctx, s.events, eventID); err != nil {
		return err
	}

	err := s.participants.Add(ctx, eventID, userID, models.StatusPending)
	switch {
	case errors.Is(err, models.ErrDuplicate):
		return conflict("Usuário já é participante deste evento")
	case errors.Is(err, models.ErrReference):
		return notFound(msgUserNotFound)
	case err != nil:
		return internal("Erro ao adicionar participante", err)
	}

	metrics.ParticipantTransitionsTotal.WithLabelValues(string(models.StatusPending)).Inc()
	s.logger.Info().Int64("event_id", eventID).Int64("user_id", userID).Msg("participant added")
	s.record(ctx, audit.Entry{Action: audit.ParticipantAdded, ActorID: actorID, EventID: eventID, UserID: userID, Status: string(models.StatusPending)})
	return nil
}

// UpdateStatus overwrites the participant's status. The participant and the
// event owner are the only callers allowed to do so.
func (s *ParticipantService) UpdateStatus(ctx context.Context, eventID, userID, requesterID int64, status models.ParticipantStatus) error {
	if !status.Valid() {
		return validation("Status inválido")
	}
	ev, err := findEvent(ctx, s.events, eventID)
	if err != nil {
		return err
	}
	if requesterID != userID && requesterID != ev.OwnerID {
		return forbidden("Não autorizado a atualizar o status deste participante")
	}

	err = s.participants.UpdateStatus(ctx, eventID, userID, status)
	if errors.Is(err, models.ErrNotFound) {
		return notFound(msgParticipantNotFound)
	}
	if err != nil {
		return internal("Erro ao atualizar status", err)
	}

	metrics.ParticipantTransitionsTotal.WithLabelValues(string(status)).Inc()
	s.logger.Info().Int64("event_id", eventID).Int64("user_id", userID).Str("status", string(status)).Msg("participant status updated")
	s.record(ctx, audit.Entry{Action: audit.ParticipantStatusSet, ActorID: requesterID, EventID: eventID, UserID: userID, Status: string(status)})
	return nil
}

// Remove deletes one participant row; allowed to the participant and the owner.
func (s *ParticipantService) Remove(ctx context.Context, eventID, participantID, requesterID int64) error {
	ev, err := findEvent(ctx, s.events, eventID)
	if err != nil {
		return err
	}
	if requesterID != participantID && requesterID != ev.OwnerID {
		return forbidden("Não autorizado a remover este participante")
	}

	err = s.participants.Remove(ctx, eventID, participantID)
	if errors.Is(err, models.ErrNotFound) {
		return notFound(msgParticipantNotFound)
	}
	if err != nil {
		return internal("Erro ao remover participante", err)
	}

	s.logger.Info().Int64("event_id", eventID).Int64("user_id", participantID).Msg("participant removed")
	s.record(ctx, audit.Entry{Action: audit.ParticipantRemoved, ActorID: requesterID, EventID: eventID, UserID: participantID})
	return nil
}

func (s *ParticipantService) List(ctx context.Context, eventID int64) ([]models.Participant, error) {
	if _, err := findEvent(ctx, s.events, eventID); err != nil {
		return nil, err
	}
	ps, err := s.participants.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, internal("Erro ao listar participantes", err)
	}
	return ps, nil
}

// Dashboard counts participants by status. Visible to the owner and to
// anyone enrolled in the event.
func (s *ParticipantService) Dashboard(ctx context.Context, eventID, requesterID int64) (models.Dashboard, error) {
	ev, err := findEvent(ctx, s.events, eventID)
	if err != nil {
		return models.Dashboard{}, err
	}
	ps, err := s.participants.ListByEvent(ctx, eventID)
	if err != nil {
		return models.Dashboard{}, internal("Erro ao buscar dashboard", err)
	}
	if requesterID != ev.OwnerID && !enrolled(ps, requesterID) {
		return models.Dashboard{}, forbidden("Não autorizado a ver o dashboard deste evento")
	}
	return models.Summarize(ps), nil
}

func enrolled(ps []models.Participant, userID int64) bool {
	for _, p := range ps {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func (s *ParticipantService) record(ctx context.Context, e audit.Entry) {
	recordEntry(ctx, s.recorder, s.logger, e)
}
