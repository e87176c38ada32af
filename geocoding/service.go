package geocoding

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"eventapi/metrics"
)

var (
	ErrGeocodingFailed = errors.New("geocoding failed")
	ErrNoResults       = errors.New("no geocoding results found")
)

type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

type Cache interface {
	Get(ctx context.Context, normalized string) (Coordinates, bool, error)
	Set(ctx context.Context, normalized string, coords Coordinates) error
}

// Service resolves addresses, cache first, then Nominatim.
type Service struct {
	client Searcher
	cache  Cache
	logger zerolog.Logger
}

// NewService accepts a nil cache.
func NewService(client Searcher, cache Cache, logger zerolog.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		logger: logger.With().Str("component", "geocoding").Logger(),
	}
}

func (s *Service) Geocode(ctx context.Context, address string) (Coordinates, error) {
	normalized := NormalizeQuery(address)
	if normalized == "" {
		return Coordinates{}, fmt.Errorf("%w: empty address", ErrNoResults)
	}

	if s.cache != nil {
		coords, ok, err := s.cache.Get(ctx, normalized)
		if err != nil {
			s.logger.Warn().Err(err).Str("query", address).Msg("geocode cache read failed")
		}
		if ok {
			metrics.GeocodingRequestsTotal.WithLabelValues("cache").Inc()
			return coords, nil
		}
	}

	start := time.Now()
	results, err := s.client.Search(ctx, address)
	metrics.GeocodingNominatimLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GeocodingRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Str("query", address).Dur("latency", time.Since(start)).Msg("nominatim search failed")
		return Coordinates{}, fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}
	if len(results) == 0 {
		metrics.GeocodingRequestsTotal.WithLabelValues("not_found").Inc()
		s.logger.Warn().Str("query", address).Msg("nominatim returned no results")
		return Coordinates{}, fmt.Errorf("%w for query: %s", ErrNoResults, address)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: invalid latitude %q", ErrGeocodingFailed, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: invalid longitude %q", ErrGeocodingFailed, results[0].Lon)
	}
	coords := Coordinates{Latitude: lat, Longitude: lon, DisplayName: results[0].DisplayName}

	metrics.GeocodingRequestsTotal.WithLabelValues("nominatim").Inc()
	s.logger.Info().
		Str("query", address).
		Float64("lat", lat).
		Float64("lon", lon).
		Dur("latency", time.Since(start)).
		Msg("geocoding successful")

	if s.cache != nil {
		if err := s.cache.Set(ctx, normalized, coords); err != nil {
			s.logger.Warn().Err(err).Str("query", address).Msg("geocode cache write failed")
		}
	}
	return coords, nil
}
