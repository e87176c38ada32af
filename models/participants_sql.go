package models

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type sqlParticipantRepo struct{ db *sqlx.DB }

func NewSQLParticipantRepository(db *sqlx.DB) ParticipantRepository {
	return &sqlParticipantRepo{db}
}

// Add relies on UNIQUE(evento_id, usuario_id) to reject duplicates.
func (r *sqlParticipantRepo) Add(ctx context.Context, eventID, userID int64, status ParticipantStatus) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO participantes (evento_id, usuario_id, status) VALUES ($1, $2, $3)`,
		eventID, userID, status)
	return translate(err)
}

func (r *sqlParticipantRepo) UpdateStatus(ctx context.Context, eventID, userID int64, status ParticipantStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE participantes SET status = $3 WHERE evento_id = $1 AND usuario_id = $2`,
		eventID, userID, status)
	return rowsAffected(res, err)
}

func (r *sqlParticipantRepo) Remove(ctx context.Context, eventID, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM participantes WHERE evento_id = $1 AND usuario_id = $2`, eventID, userID)
	return rowsAffected(res, err)
}

func (r *sqlParticipantRepo) ListByEvent(ctx context.Context, eventID int64) ([]Participant, error) {
	out := []Participant{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT p.id, p.evento_id, p.usuario_id, p.status, u.nome, u.email
		FROM participantes p
		JOIN usuarios u ON u.id = p.usuario_id
		WHERE p.evento_id = $1
		ORDER BY p.id`, eventID)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}
