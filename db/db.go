package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Config struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// Open connects to Postgres and verifies the connection. The caller owns the
// returned pool and must Close it at shutdown.
func Open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS usuarios (
		id BIGSERIAL PRIMARY KEY,
		nome TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		senha TEXT NOT NULL,
		telefone TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS locais (
		id BIGSERIAL PRIMARY KEY,
		endereco TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
		longitude DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180)
	)`,
	`CREATE TABLE IF NOT EXISTS eventos (
		id BIGSERIAL PRIMARY KEY,
		nome TEXT NOT NULL,
		data DATE NOT NULL,
		hora VARCHAR(5) NOT NULL,
		descricao TEXT NOT NULL,
		criador_id BIGINT NOT NULL REFERENCES usuarios(id),
		local_id BIGINT CONSTRAINT eventos_local_id_fkey REFERENCES locais(id) ON DELETE SET NULL
	)`,
	// UNIQUE(evento_id, usuario_id) is what keeps concurrent joins from producing duplicates.
	`CREATE TABLE IF NOT EXISTS participantes (
		id BIGSERIAL PRIMARY KEY,
		evento_id BIGINT NOT NULL REFERENCES eventos(id),
		usuario_id BIGINT NOT NULL REFERENCES usuarios(id),
		status TEXT NOT NULL DEFAULT 'PENDENTE' CHECK (status IN ('PENDENTE', 'CONFIRMADO', 'RECUSADO')),
		UNIQUE (evento_id, usuario_id)
	)`,
	`CREATE INDEX IF NOT EXISTS participantes_usuario_idx ON participantes (usuario_id)`,
	`CREATE INDEX IF NOT EXISTS eventos_data_idx ON eventos (data)`,
}

// CreateTables bootstraps the schema; every statement is idempotent.
func CreateTables(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}
