package models

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type sqlEventRepo struct{ db *sqlx.DB }

func NewSQLEventRepository(db *sqlx.DB) EventRepository { return &sqlEventRepo{db} }

const eventColumns = `e.id, e.nome, e.data, e.hora, e.descricao, e.criador_id, e.local_id`

// membership: the user owns the event or has a participant row in it.
const membership = `(e.criador_id = $1 OR EXISTS (
	SELECT 1 FROM participantes mp WHERE mp.evento_id = e.id AND mp.usuario_id = $1))`

func (r *sqlEventRepo) Create(ctx context.Context, e *Event, loc *Location) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if loc != nil {
		// rolled back with the event if the owner turns out to be gone
		if err := tx.QueryRowxContext(ctx, insertLocation, loc.Address, loc.Latitude, loc.Longitude).Scan(&loc.ID); err != nil {
			return translate(err)
		}
		e.LocationID = &loc.ID
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO eventos (nome, data, hora, descricao, criador_id, local_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		e.Name, e.Date, e.Time, e.Description, e.OwnerID, e.LocationID).Scan(&e.ID)
	if err != nil {
		return translate(err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO participantes (evento_id, usuario_id, status) VALUES ($1, $2, $3)`,
		e.ID, e.OwnerID, StatusConfirmed); err != nil {
		return translate(err)
	}
	return tx.Commit()
}

func (r *sqlEventRepo) GetByID(ctx context.Context, id int64) (Event, error) {
	var e Event
	err := r.db.GetContext(ctx, &e, `SELECT `+eventColumns+` FROM eventos e WHERE e.id = $1`, id)
	return e, translate(err)
}

func (r *sqlEventRepo) ListForUser(ctx context.Context, userID int64) ([]Event, error) {
	out := []Event{}
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+eventColumns+` FROM eventos e WHERE `+membership+` ORDER BY e.data DESC, e.hora DESC`, userID)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *sqlEventRepo) ListPast(ctx context.Context, userID int64, today time.Time) ([]EventSummary, error) {
	return r.listSummaries(ctx, userID, today, `e.data < $2`, `DESC`)
}

func (r *sqlEventRepo) ListFuture(ctx context.Context, userID int64, today time.Time) ([]EventSummary, error) {
	return r.listSummaries(ctx, userID, today, `e.data >= $2`, `ASC`)
}

func (r *sqlEventRepo) listSummaries(ctx context.Context, userID int64, today time.Time, when, order string) ([]EventSummary, error) {
	query := `
		SELECT ` + eventColumns + `,
			COUNT(p.id) AS total_participantes,
			COUNT(p.id) FILTER (WHERE p.status = 'CONFIRMADO') AS confirmados
		FROM eventos e
		LEFT JOIN participantes p ON p.evento_id = e.id
		WHERE ` + membership + ` AND ` + when + `
		GROUP BY e.id
		ORDER BY e.data ` + order + `, e.hora ` + order

	out := []EventSummary{}
	if err := r.db.SelectContext(ctx, &out, query, userID, NewDate(today)); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *sqlEventRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM participantes WHERE evento_id = $1`, id); err != nil {
		return translate(err)
	}
	if err := rowsAffected(tx.ExecContext(ctx, `DELETE FROM eventos WHERE id = $1`, id)); err != nil {
		return err
	}
	return tx.Commit()
}
