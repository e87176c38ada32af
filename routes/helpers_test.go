package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"eventapi/audit"
	"eventapi/geocoding"
	"eventapi/mocks"
	"eventapi/routes"
	"eventapi/services"
	"eventapi/utils"
)

type testServer struct {
	s      *gin.Engine
	mr     *miniredis.Miniredis
	store  *mocks.Store
	tokens *utils.TokenIssuer
}

// fakeNominatim knows a single address.
func fakeNominatim(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("q"), "Paulista") {
			_, _ = w.Write([]byte(`[{"lat":"-23.5614","lon":"-46.6559","display_name":"Avenida Paulista"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := zerolog.Nop()
	store := mocks.NewStore()
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)

	nominatim := geocoding.NewNominatimClient(fakeNominatim(t).URL, "", geocoding.WithRateLimit(1000))
	geocoder := geocoding.NewService(nominatim, geocoding.NewRedisCache(rdb, time.Hour), logger)
	locations := services.NewLocationService(store.Locations(), geocoder, logger)
	rec := audit.Nop{}

	s := gin.New()
	stop := routes.RegisterRoutes(s, routes.Deps{
		Users:        services.NewUserService(store.Users(), tokens, rec, logger),
		Events:       services.NewEventService(store.Events(), locations, rec, logger),
		Participants: services.NewParticipantService(store.Events(), store.Participants(), rec, logger),
		Locations:    locations,
		Tokens:       tokens,
		Redis:        rdb,
		Invalidator:  utils.NewCacheInvalidator(rdb),
		CacheTTL:     30 * time.Second,
		// keep the limiters out of the way of the scenarios
		QuotaDailyLimit: 10000,
		Limits:          routes.Limits{GlobalRPS: 1000, GlobalBurst: 1000, AuthRPS: 1000, AuthBurst: 1000, UserRPS: 1000, UserBurst: 1000},
		Logger:          logger,
	})
	t.Cleanup(stop)

	return &testServer{s: s, mr: mr, store: store, tokens: tokens}
}

func (ts *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	ts.s.ServeHTTP(w, req)
	return w
}

type account struct {
	ID    int64
	Token string
}

// signup registers name and logs in through the API.
func (ts *testServer) signup(t *testing.T, name string) account {
	t.Helper()
	body := `{"nome":"` + name + `","email":"` + name + `@example.com","senha":"secret"}`
	w := ts.do(http.MethodPost, "/signup", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(http.MethodPost, "/login", `{"email":"`+name+`@example.com","senha":"secret"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Token   string `json:"token"`
		Usuario struct {
			ID int64 `json:"id"`
		} `json:"usuario"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return account{ID: res.Usuario.ID, Token: res.Token}
}

func (ts *testServer) createEvent(t *testing.T, owner account, date string) int64 {
	t.Helper()
	body := `{"nome":"Meetup","data":"` + date + `","hora":"18:30","descricao":"x"}`
	w := ts.do(http.MethodPost, "/events", body, owner.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ev struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ev))
	return ev.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func id(n int64) string { return strconv.FormatInt(n, 10) }
