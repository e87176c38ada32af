package services

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"eventapi/audit"
	"eventapi/models"
	"eventapi/utils"
)

type TokenGenerator interface {
	GenerateToken(email string, userID int64) (string, error)
}

type RegisterInput struct {
	Name     string `json:"nome" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha" validate:"required"`
	Phone    string `json:"telefone"`
}

// UpdateUserInput replaces the profile. An empty Password keeps the current one.
type UpdateUserInput struct {
	Name     string `json:"nome" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha"`
	Phone    string `json:"telefone"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"usuario"`
}

var userMessages = map[string]string{
	"Name":        "Nome, email e senha são obrigatórios",
	"Email":       "Nome, email e senha são obrigatórios",
	"Password":    "Nome, email e senha são obrigatórios",
	"Email.email": "Email inválido",
}

const (
	msgEmailTaken         = "Email já está em uso"
	msgInvalidCredentials = "Email ou senha inválidos"
	msgPasswordTooLong    = "Senha deve ter no máximo 72 bytes"
)

// hashPassword reports an over-long password as a client error; bcrypt
// rejects anything past 72 bytes.
func hashPassword(password, failMsg string) (string, error) {
	hash, err := utils.HashPassword(password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return "", validation(msgPasswordTooLong)
	}
	if err != nil {
		return "", internal(failMsg, err)
	}
	return hash, nil
}

type UserService struct {
	users    models.UserRepository
	tokens   TokenGenerator
	recorder audit.Recorder
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewUserService(users models.UserRepository, tokens TokenGenerator, recorder audit.Recorder, logger zerolog.Logger) *UserService {
	return &UserService{
		users:    users,
		tokens:   tokens,
		recorder: recorder,
		validate: newValidator(),
		logger:   logger.With().Str("component", "users").Logger(),
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return models.User{}, firstViolation(err, userMessages, "Dados de usuário inválidos")
	}
	hash, err := hashPassword(in.Password, "Erro ao criar usuário")
	if err != nil {
		return models.User{}, err
	}

	u := models.User{Name: in.Name, Email: in.Email, PasswordHash: hash, Phone: in.Phone}
	err = s.users.Create(ctx, &u)
	if errors.Is(err, models.ErrDuplicate) {
		return models.User{}, conflict("Email já cadastrado")
	}
	if err != nil {
		return models.User{}, internal("Erro ao criar usuário", err)
	}
	s.logger.Info().Int64("user_id", u.ID).Msg("user registered")
	return u, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return LoginResult{}, newError(KindUnauthenticated, msgInvalidCredentials, nil)
	}
	if err != nil {
		return LoginResult{}, internal("Erro ao realizar login", err)
	}
	if !utils.CheckPasswordHash(password, u.PasswordHash) {
		return LoginResult{}, newError(KindUnauthenticated, msgInvalidCredentials, nil)
	}

	token, err := s.tokens.GenerateToken(u.Email, u.ID)
	if err != nil {
		return LoginResult{}, internal("Erro ao realizar login", err)
	}
	return LoginResult{Token: token, User: u}, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, notFound(msgUserNotFound)
	}
	if err != nil {
		return models.User{}, internal("Erro ao buscar usuário", err)
	}
	return u, nil
}

func (s *UserService) Search(ctx context.Context, term string) ([]models.User, error) {
	us, err := s.users.Search(ctx, term)
	if err != nil {
		return nil, internal("Erro ao buscar usuários", err)
	}
	return us, nil
}

func (s *UserService) Update(ctx context.Context, id, requesterID int64, in UpdateUserInput) (models.User, error) {
	if id != requesterID {
		return models.User{}, forbidden("Não autorizado a atualizar este usuário")
	}
	if err := s.validate.Struct(in); err != nil {
		return models.User{}, firstViolation(err, userMessages, "Dados de usuário inválidos")
	}

	patch := models.UserPatch{Name: &in.Name, Email: &in.Email, Phone: &in.Phone}
	if in.Password != "" {
		patch.Password = &in.Password
	}
	return s.apply(ctx, id, patch)
}

// Patch merges only the supplied fields into the stored user.
func (s *UserService) Patch(ctx context.Context, id, requesterID int64, patch models.UserPatch) (models.User, error) {
	if id != requesterID {
		return models.User{}, forbidden("Não autorizado a atualizar este usuário")
	}
	if patch.Name != nil && *patch.Name == "" {
		return models.User{}, validation("Nome não pode ser vazio")
	}
	if patch.Email != nil {
		if err := s.validate.Var(*patch.Email, "required,email"); err != nil {
			return models.User{}, validation("Email inválido")
		}
	}
	if patch.Password != nil && *patch.Password == "" {
		return models.User{}, validation("Senha não pode ser vazia")
	}
	return s.apply(ctx, id, patch)
}

func (s *UserService) apply(ctx context.Context, id int64, patch models.UserPatch) (models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if patch.Password != nil {
		hash, err := hashPassword(*patch.Password, "Erro ao atualizar usuário")
		if err != nil {
			return models.User{}, err
		}
		patch.Password = &hash
	}
	patch.Apply(&u)

	err = s.users.Update(ctx, &u)
	switch {
	case errors.Is(err, models.ErrDuplicate):
		return models.User{}, conflict(msgEmailTaken)
	case errors.Is(err, models.ErrNotFound):
		return models.User{}, notFound(msgUserNotFound)
	case err != nil:
		return models.User{}, internal("Erro ao atualizar usuário", err)
	}
	return u, nil
}

// Delete removes the caller's account together with their participations and
// the events they own.
func (s *UserService) Delete(ctx context.Context, id, requesterID int64) error {
	if id != requesterID {
		return forbidden("Não autorizado a deletar este usuário")
	}
	err := s.users.Delete(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return notFound(msgUserNotFound)
	}
	if err != nil {
		return internal("Erro ao deletar usuário", err)
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	recordEntry(ctx, s.recorder, s.logger, audit.Entry{Action: audit.UserDeleted, ActorID: id, UserID: id})
	return nil
}
