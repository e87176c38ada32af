package models

import (
	"context"

	"github.com/jmoiron/sqlx"
)

const insertLocation = `INSERT INTO locais (endereco, latitude, longitude) VALUES ($1, $2, $3) RETURNING id`

type sqlLocationRepo struct{ db *sqlx.DB }

func NewSQLLocationRepository(db *sqlx.DB) LocationRepository { return &sqlLocationRepo{db} }

func (r *sqlLocationRepo) Create(ctx context.Context, l *Location) error {
	err := r.db.QueryRowxContext(ctx, insertLocation, l.Address, l.Latitude, l.Longitude).Scan(&l.ID)
	return translate(err)
}

func (r *sqlLocationRepo) GetByID(ctx context.Context, id int64) (Location, error) {
	var l Location
	err := r.db.GetContext(ctx, &l, `SELECT id, endereco, latitude, longitude FROM locais WHERE id = $1`, id)
	return l, translate(err)
}

func (r *sqlLocationRepo) List(ctx context.Context) ([]Location, error) {
	out := []Location{}
	if err := r.db.SelectContext(ctx, &out, `SELECT id, endereco, latitude, longitude FROM locais ORDER BY id DESC`); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *sqlLocationRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM locais WHERE id = $1`, id)
	return rowsAffected(res, err)
}
