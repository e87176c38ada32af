package routes_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type participant struct {
	UserID int64  `json:"usuario_id"`
	Status string `json:"status"`
	Name   string `json:"nome"`
}

type dashboard struct {
	Total     int `json:"total"`
	Confirmed int `json:"confirmados"`
	Declined  int `json:"recusados"`
	Pending   int `json:"pendentes"`
}

func TestHealthAndMetrics(t *testing.T) {
	ts := setupServer(t)

	w := ts.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = ts.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestSignupAndLogin(t *testing.T) {
	ts := setupServer(t)
	ana := ts.signup(t, "ana")
	assert.NotZero(t, ana.ID)
	assert.NotEmpty(t, ana.Token)

	w := ts.do(http.MethodPost, "/signup", `{"nome":"x","email":"ana@example.com","senha":"y"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodPost, "/signup", `{"email":"b@example.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/login", `{"email":"ana@example.com","senha":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"erro":"Email ou senha inválidos"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "senha\":")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := setupServer(t)

	for _, path := range []string{"/events", "/users", "/locations", "/events/1/participants/dashboard"} {
		w := ts.do(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Contains(t, w.Body.String(), "erro")
	}
	w := ts.do(http.MethodGet, "/events", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Owner is enrolled as CONFIRMADO on creation.
func TestScenario_CreateEventEnrollsOwner(t *testing.T) {
	ts := setupServer(t)
	owner := ts.signup(t, "ana")
	eventID := ts.createEvent(t, owner, "2025-06-01")

	w := ts.do(http.MethodGet, "/events/"+id(eventID)+"/participants", "", owner.Token)
	require.Equal(t, http.StatusOK, w.Code)
	ps := decode[[]participant](t, w)
	require.Len(t, ps, 1)
	assert.Equal(t, owner.ID, ps[0].UserID)
	assert.Equal(t, "CONFIRMADO", ps[0].Status)

	w = ts.do(http.MethodGet, "/events/"+id(eventID), "", owner.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":"2025-06-01"`)
	assert.Contains(t, w.Body.String(), `"criador_id":`+id(owner.ID))
}

func TestScenario_JoinConfirmAndDashboard(t *testing.T) {
	ts := setupServer(t)
	owner, guest := ts.signup(t, "ana"), ts.signup(t, "bia")
	eventID := ts.createEvent(t, owner, "2025-06-01")
	base := "/events/" + id(eventID) + "/participants"

	w := ts.do(http.MethodPost, base, `{"usuario_id":`+id(guest.ID)+`}`, owner.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(http.MethodGet, base, "", owner.Token)
	ps := decode[[]participant](t, w)
	require.Len(t, ps, 2)
	assert.Equal(t, "PENDENTE", ps[1].Status)
	assert.Equal(t, "bia", ps[1].Name)

	// twice: same state
	for i := 0; i < 2; i++ {
		w = ts.do(http.MethodPut, base+"/"+id(guest.ID)+"/status", `{"status":"CONFIRMADO"}`, guest.Token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "mensagem")
	}

	w = ts.do(http.MethodGet, base+"/dashboard", "", owner.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dashboard{Total: 2, Confirmed: 2}, decode[dashboard](t, w))

	// body-carrying variant
	w = ts.do(http.MethodPut, base+"/status", `{"usuario_id":`+id(guest.ID)+`,"status":"RECUSADO"}`, owner.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(http.MethodGet, base+"/dashboard", "", guest.Token)
	require.Equal(t, http.StatusOK, w.Code)
	d := decode[dashboard](t, w)
	assert.Equal(t, dashboard{Total: 2, Confirmed: 1, Declined: 1}, d)
	assert.Equal(t, d.Total, d.Confirmed+d.Declined+d.Pending)
}

func TestScenario_DuplicateJoinConflicts(t *testing.T) {
	ts := setupServer(t)
	owner, guest := ts.signup(t, "ana"), ts.signup(t, "bia")
	eventID := ts.createEvent(t, owner, "2025-06-01")
	base := "/events/" + id(eventID) + "/participants"
	body := `{"usuario_id":` + id(guest.ID) + `}`

	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, base, body, owner.Token).Code)
	w := ts.do(http.MethodPost, base, body, owner.Token)
	assert.Equal(t, http.StatusConflict, w.Code)

	ps := decode[[]participant](t, ts.do(http.MethodGet, base, "", owner.Token))
	assert.Len(t, ps, 2)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, base, `{"usuario_id":9999}`, owner.Token).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, base, `{}`, owner.Token).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, "/events/9999/participants", body, owner.Token).Code)
}

func TestScenario_StrangerCannotRemoveParticipant(t *testing.T) {
	ts := setupServer(t)
	owner, guest, stranger := ts.signup(t, "ana"), ts.signup(t, "bia"), ts.signup(t, "caio")
	eventID := ts.createEvent(t, owner, "2025-06-01")
	base := "/events/" + id(eventID) + "/participants"
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, base, `{"usuario_id":`+id(guest.ID)+`}`, owner.Token).Code)

	w := ts.do(http.MethodDelete, base+"/"+id(guest.ID), "", stranger.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodPut, base+"/"+id(guest.ID)+"/status", `{"status":"RECUSADO"}`, stranger.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = ts.do(http.MethodGet, base+"/dashboard", "", stranger.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodDelete, base+"/"+id(guest.ID), "", guest.Token)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(http.MethodDelete, base+"/"+id(guest.ID), "", owner.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateStatusValidation(t *testing.T) {
	ts := setupServer(t)
	owner := ts.signup(t, "ana")
	eventID := ts.createEvent(t, owner, "2025-06-01")
	path := "/events/" + id(eventID) + "/participants/" + id(owner.ID) + "/status"

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPut, path, `{"status":"TALVEZ"}`, owner.Token).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPut, path, `{}`, owner.Token).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPut, "/events/abc/participants/1/status", `{"status":"CONFIRMADO"}`, owner.Token).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPut, "/events/9999/participants/1/status", `{"status":"CONFIRMADO"}`, owner.Token).Code)
}

func TestScenario_DeleteEvent(t *testing.T) {
	ts := setupServer(t)
	owner, guest := ts.signup(t, "ana"), ts.signup(t, "bia")
	eventID := ts.createEvent(t, owner, "2025-06-01")
	path := "/events/" + id(eventID)
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, path+"/participants", `{"usuario_id":`+id(guest.ID)+`}`, owner.Token).Code)

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodDelete, path, "", guest.Token).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodDelete, path, "", owner.Token).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, path, "", owner.Token).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, path+"/participants", "", owner.Token).Code)
}

func TestCreateEventValidation(t *testing.T) {
	ts := setupServer(t)
	owner := ts.signup(t, "ana")

	cases := []string{
		`{"data":"2025-06-01","hora":"18:30","descricao":"x"}`,
		`{"nome":"n","data":"amanhã","hora":"18:30","descricao":"x"}`,
		`{"nome":"n","data":"2025-06-01","hora":"25:00","descricao":"x"}`,
		`{"nome":"n","data":"2025-06-01","hora":"18:30","descricao":"x","endereco":"a","latitude":100,"longitude":0}`,
		`not json`,
	}
	for _, body := range cases {
		w := ts.do(http.MethodPost, "/events", body, owner.Token)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), "erro", body)
	}

	w := ts.do(http.MethodPost, "/events", `{"nome":"n","data":"2025-06-01","hora":"18:30","descricao":"x","local_id":9999}`, owner.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventListsAndCache(t *testing.T) {
	ts := setupServer(t)
	owner, guest := ts.signup(t, "ana"), ts.signup(t, "bia")
	past := ts.createEvent(t, owner, "2000-01-01")
	future := ts.createEvent(t, owner, "2999-01-01")

	w := ts.do(http.MethodGet, "/events", "", owner.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Len(t, decode[[]map[string]any](t, w), 2)

	w = ts.do(http.MethodGet, "/events", "", owner.Token)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	w = ts.do(http.MethodGet, "/events/passados", "", owner.Token)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, float64(past), list[0]["id"])
	assert.Equal(t, float64(1), list[0]["total_participantes"])

	w = ts.do(http.MethodGet, "/events/futuros", "", owner.Token)
	list = decode[[]map[string]any](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, float64(future), list[0]["id"])

	// guest sees nothing until added; the join purges the cached listings
	assert.Empty(t, decode[[]map[string]any](t, ts.do(http.MethodGet, "/events", "", guest.Token)))
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/events/"+id(future)+"/participants", `{"usuario_id":`+id(guest.ID)+`}`, owner.Token).Code)
	w = ts.do(http.MethodGet, "/events", "", guest.Token)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	// a cached dashboard is dropped by a status change
	dash := "/events/" + id(future) + "/participants/dashboard"
	ts.do(http.MethodGet, dash, "", owner.Token)
	require.Equal(t, "HIT", ts.do(http.MethodGet, dash, "", owner.Token).Header().Get("X-Cache"))
	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, "/events/"+id(future)+"/participants/"+id(guest.ID)+"/status", `{"status":"CONFIRMADO"}`, guest.Token).Code)
	w = ts.do(http.MethodGet, dash, "", owner.Token)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, 2, decode[dashboard](t, w).Confirmed)
}

func TestScenario_UnknownAddressPersistsNothing(t *testing.T) {
	ts := setupServer(t)
	user := ts.signup(t, "ana")

	w := ts.do(http.MethodPost, "/locations", `{"endereco":"Unknown Place XYZ123"}`, user.Token)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"erro":"Endereço não encontrado"}`, w.Body.String())

	w = ts.do(http.MethodGet, "/locations", "", user.Token)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestLocations(t *testing.T) {
	ts := setupServer(t)
	user := ts.signup(t, "ana")

	w := ts.do(http.MethodPost, "/locations", `{"endereco":"Av. Paulista, 1000"}`, user.Token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	loc := decode[map[string]any](t, w)
	assert.Equal(t, -23.5614, loc["latitude"])
	locID := int64(loc["id"].(float64))

	w = ts.do(http.MethodPost, "/locations", `{"endereco":"Rua X","latitude":-91,"longitude":0}`, user.Token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/events", `{"nome":"n","data":"2025-06-01","hora":"18:30","descricao":"x","local_id":`+id(locID)+`}`, user.Token)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"local_id":`+id(locID))

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/locations/"+id(locID), "", user.Token).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodDelete, "/locations/"+id(locID), "", user.Token).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/locations/"+id(locID), "", user.Token).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/locations/x", "", user.Token).Code)
}

func TestUsers(t *testing.T) {
	ts := setupServer(t)
	ana, bia := ts.signup(t, "ana"), ts.signup(t, "bia")

	w := ts.do(http.MethodGet, "/users?termo=BI", "", ana.Token)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[[]map[string]any](t, w)
	require.Len(t, users, 1)
	assert.Equal(t, "bia", users[0]["nome"])
	assert.NotContains(t, users[0], "senha")

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPut, "/users/"+id(bia.ID), `{"nome":"x","email":"x@example.com"}`, ana.Token).Code)
	assert.Equal(t, http.StatusConflict, ts.do(http.MethodPut, "/users/"+id(ana.ID), `{"nome":"Ana","email":"bia@example.com"}`, ana.Token).Code)

	w = ts.do(http.MethodPatch, "/users/"+id(ana.ID), `{"telefone":"11 4002-8922"}`, ana.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[map[string]any](t, w)
	assert.Equal(t, "ana", got["nome"])
	assert.Equal(t, "11 4002-8922", got["telefone"])

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/users/9999", "", ana.Token).Code)

	ts.createEvent(t, bia, "2025-06-01")
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodDelete, "/users/"+id(bia.ID), "", ana.Token).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodDelete, "/users/"+id(bia.ID), "", bia.Token).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/users/"+id(bia.ID), "", ana.Token).Code)
}

func TestProfileUpdateRefreshesCachedParticipants(t *testing.T) {
	ts := setupServer(t)
	owner := ts.signup(t, "ana")
	ev := ts.createEvent(t, owner, "2999-01-01")
	path := "/events/" + id(ev) + "/participants"

	ts.do(http.MethodGet, path, "", owner.Token)
	require.Equal(t, "HIT", ts.do(http.MethodGet, path, "", owner.Token).Header().Get("X-Cache"))

	w := ts.do(http.MethodPatch, "/users/"+id(owner.ID), `{"nome":"Ana Paula"}`, owner.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = ts.do(http.MethodGet, path, "", owner.Token)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, "Ana Paula", decode[[]participant](t, w)[0].Name)

	ts.do(http.MethodGet, path, "", owner.Token)
	w = ts.do(http.MethodPut, "/users/"+id(owner.ID), `{"nome":"Ana Maria","email":"ana@example.com"}`, owner.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = ts.do(http.MethodGet, path, "", owner.Token)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, "Ana Maria", decode[[]participant](t, w)[0].Name)
}

func TestSignupRejectsOverlongPassword(t *testing.T) {
	ts := setupServer(t)
	body := `{"nome":"ana","email":"ana@example.com","senha":"` + strings.Repeat("x", 80) + `"}`

	w := ts.do(http.MethodPost, "/signup", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "erro")
}
