package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

type sqlUserRepo struct{ db *sqlx.DB }

func NewSQLUserRepository(db *sqlx.DB) UserRepository { return &sqlUserRepo{db} }

// Create expects u.PasswordHash to be hashed already.
func (r *sqlUserRepo) Create(ctx context.Context, u *User) error {
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO usuarios (nome, email, senha, telefone) VALUES ($1, $2, $3, $4) RETURNING id`,
		u.Name, u.Email, u.PasswordHash, u.Phone).Scan(&u.ID)
	return translate(err)
}

func (r *sqlUserRepo) GetByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT id, nome, email, senha, telefone FROM usuarios WHERE id = $1`, id)
	return u, translate(err)
}

func (r *sqlUserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT id, nome, email, senha, telefone FROM usuarios WHERE email = $1`, email)
	return u, translate(err)
}

// Update writes every column; partial updates are merged by the caller.
func (r *sqlUserRepo) Update(ctx context.Context, u *User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE usuarios SET nome = $1, email = $2, senha = $3, telefone = $4 WHERE id = $5`,
		u.Name, u.Email, u.PasswordHash, u.Phone, u.ID)
	return rowsAffected(res, err)
}

// likeEscaper makes % and _ match literally; backslash is the LIKE escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches term as a plain substring of nome or email, ignoring case.
func (r *sqlUserRepo) Search(ctx context.Context, term string) ([]User, error) {
	out := []User{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, nome, email, senha, telefone
		FROM usuarios
		WHERE $1 = '' OR nome ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
		ORDER BY nome`, likeEscaper.Replace(term))
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *sqlUserRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`DELETE FROM participantes WHERE usuario_id = $1`,
		`DELETE FROM participantes WHERE evento_id IN (SELECT id FROM eventos WHERE criador_id = $1)`,
		`DELETE FROM eventos WHERE criador_id = $1`,
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return translate(err)
		}
	}
	if err := rowsAffected(tx.ExecContext(ctx, `DELETE FROM usuarios WHERE id = $1`, id)); err != nil {
		return err
	}
	return tx.Commit()
}
