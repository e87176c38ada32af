package services

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"eventapi/geocoding"
	"eventapi/models"
)

type Geocoder interface {
	Geocode(ctx context.Context, address string) (geocoding.Coordinates, error)
}

type CreateLocationInput struct {
	Address   string   `json:"endereco" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
}

var locationMessages = map[string]string{
	"Address":   "Endereço é obrigatório",
	"Latitude":  "Latitude inválida. Deve ser um número entre -90 e 90",
	"Longitude": "Longitude inválida. Deve ser um número entre -180 e 180",
}

type LocationService struct {
	locations models.LocationRepository
	geocoder  Geocoder
	validate  *validator.Validate
	logger    zerolog.Logger
}

func NewLocationService(locations models.LocationRepository, geocoder Geocoder, logger zerolog.Logger) *LocationService {
	return &LocationService{
		locations: locations,
		geocoder:  geocoder,
		validate:  newValidator(),
		logger:    logger.With().Str("component", "locations").Logger(),
	}
}

// Create stores a location. Without coordinates the address is geocoded; a
// failed or empty lookup persists nothing.
func (s *LocationService) Create(ctx context.Context, in CreateLocationInput) (models.Location, error) {
	loc, err := s.resolve(ctx, in)
	if err != nil {
		return models.Location{}, err
	}
	if err := s.locations.Create(ctx, &loc); err != nil {
		return models.Location{}, internal("Erro ao criar local", err)
	}
	s.logger.Info().Int64("location_id", loc.ID).Str("address", loc.Address).Msg("location created")
	return loc, nil
}

// resolve validates the input and fills in coordinates without storing anything.
func (s *LocationService) resolve(ctx context.Context, in CreateLocationInput) (models.Location, error) {
	if err := s.validate.Struct(in); err != nil {
		return models.Location{}, firstViolation(err, locationMessages, "Local inválido")
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return models.Location{}, validation("Latitude e longitude devem ser informadas juntas")
	}

	loc := models.Location{Address: in.Address}
	if in.Latitude != nil {
		loc.Latitude, loc.Longitude = *in.Latitude, *in.Longitude
	} else {
		coords, err := s.geocoder.Geocode(ctx, in.Address)
		if errors.Is(err, geocoding.ErrNoResults) {
			return models.Location{}, newError(KindExternal, "Endereço não encontrado", err)
		}
		if err != nil {
			return models.Location{}, newError(KindExternal, "Erro ao buscar coordenadas do endereço", err)
		}
		loc.Latitude, loc.Longitude = coords.Latitude, coords.Longitude
	}
	return loc, nil
}

func (s *LocationService) Get(ctx context.Context, id int64) (models.Location, error) {
	loc, err := s.locations.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return models.Location{}, notFound(msgLocationNotFound)
	}
	if err != nil {
		return models.Location{}, internal("Erro ao buscar local", err)
	}
	return loc, nil
}

func (s *LocationService) List(ctx context.Context) ([]models.Location, error) {
	locs, err := s.locations.List(ctx)
	if err != nil {
		return nil, internal("Erro ao listar locais", err)
	}
	return locs, nil
}

func (s *LocationService) Delete(ctx context.Context, id int64) error {
	err := s.locations.Delete(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return notFound(msgLocationNotFound)
	}
	if err != nil {
		return internal("Erro ao deletar local", err)
	}
	return nil
}
