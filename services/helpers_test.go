package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"eventapi/audit"
	"eventapi/geocoding"
	"eventapi/mocks"
	"eventapi/models"
)

type fakeGeocoder struct {
	coords geocoding.Coordinates
	err    error
	calls  int
}

func (f *fakeGeocoder) Geocode(context.Context, string) (geocoding.Coordinates, error) {
	f.calls++
	return f.coords, f.err
}

type memRecorder struct{ entries []audit.Entry }

func (m *memRecorder) Record(_ context.Context, e audit.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

type fixture struct {
	store        *mocks.Store
	geocoder     *fakeGeocoder
	recorder     *memRecorder
	users        *UserService
	locations    *LocationService
	events       *EventService
	participants *ParticipantService
}

type stubTokens struct{}

func (stubTokens) GenerateToken(email string, userID int64) (string, error) {
	return "token-" + email, nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := mocks.NewStore()
	geo := &fakeGeocoder{coords: geocoding.Coordinates{Latitude: -23.55, Longitude: -46.63}}
	rec := &memRecorder{}
	logger := zerolog.Nop()

	locations := NewLocationService(store.Locations(), geo, logger)
	events := NewEventService(store.Events(), locations, rec, logger)
	events.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	return &fixture{
		store:        store,
		geocoder:     geo,
		recorder:     rec,
		users:        NewUserService(store.Users(), stubTokens{}, rec, logger),
		locations:    locations,
		events:       events,
		participants: NewParticipantService(store.Events(), store.Participants(), rec, logger),
	}
}

func (f *fixture) user(t *testing.T, name string) models.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterInput{
		Name: name, Email: name + "@example.com", Password: "secret",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) event(t *testing.T, ownerID int64, date string) models.Event {
	t.Helper()
	ev, err := f.events.Create(context.Background(), ownerID, CreateEventInput{
		Name: "Churrasco", Date: date, Time: "18:30", Description: "Na casa do Zé",
	})
	require.NoError(t, err)
	return ev
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "error: %v", err)
}
