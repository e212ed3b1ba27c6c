package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/livekit/protocol/livekit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akinalp/rollcall/database"
	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/repository"
	"github.com/akinalp/rollcall/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testAPI struct {
	store *repository.Store
	mux   *http.ServeMux
	admin *models.Member
	plain *models.Member
}

// withActor stands in for AuthMiddleware: the X-Test-Member header names
// the acting member.
func (api *testAPI) withActor(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("X-Test-Member") {
		case "admin":
			r = r.WithContext(WithMember(r.Context(), api.admin))
		case "plain":
			r = r.WithContext(WithMember(r.Context(), api.plain))
		}
		next(w, r)
	}
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "rollcall.db"), database.Migrations(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := repository.NewStore(db)

	api := &testAPI{store: store, mux: http.NewServeMux()}
	api.admin = &models.Member{DiscordName: "root", Name: "Root", IsAdmin: true, InRotation: true}
	require.NoError(t, store.Members.Create(context.Background(), api.admin))
	api.plain = &models.Member{DiscordName: "ann", Name: "Ann", InRotation: true}
	require.NoError(t, store.Members.Create(context.Background(), api.plain))

	queries := services.NewQueryService(store)
	members := NewMemberHandler(queries, services.NewMemberService(store.Members, zap.NewNop()))
	sessions := NewSessionHandler(queries, services.NewReportService(queries, nil, nil, zap.NewNop()))

	api.mux.HandleFunc("GET /api/members/{id}/sessions", members.Sessions)
	api.mux.HandleFunc("POST /api/members", api.withActor(members.Register))
	api.mux.HandleFunc("DELETE /api/members/{id}", api.withActor(members.Remove))
	api.mux.HandleFunc("GET /api/sessions", sessions.List)
	api.mux.HandleFunc("GET /api/sessions/{id}", sessions.Get)
	return api
}

func (api *testAPI) do(t *testing.T, method, path, actor, body string) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if actor != "" {
		req.Header.Set("X-Test-Member", actor)
	}
	rec := httptest.NewRecorder()
	api.mux.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func TestRegisterMemberEndpoint(t *testing.T) {
	api := newTestAPI(t)
	body := `{"name":"Bob","discord_name":"bob"}`

	code, _ := api.do(t, http.MethodPost, "/api/members", "", body)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = api.do(t, http.MethodPost, "/api/members", "plain", body)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := api.do(t, http.MethodPost, "/api/members", "admin", body)
	require.Equal(t, http.StatusCreated, code)
	var created models.Member
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "bob", created.DiscordName)

	code, env = api.do(t, http.MethodPost, "/api/members", "admin", `{"name":"Bobby","discord_name":"bob"}`)
	require.Equal(t, http.StatusConflict, code)
	var existing models.Member
	require.NoError(t, json.Unmarshal(env.Data, &existing))
	assert.Equal(t, created.ID, existing.ID)

	code, _ = api.do(t, http.MethodPost, "/api/members", "admin", `{not json`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRemoveMemberEndpoint(t *testing.T) {
	api := newTestAPI(t)

	code, _ := api.do(t, http.MethodDelete, "/api/members/"+api.plain.ID, "plain", "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(t, http.MethodDelete, "/api/members/"+api.plain.ID, "admin", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = api.do(t, http.MethodDelete, "/api/members/"+api.plain.ID, "admin", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMemberSessionsEmptyVersusMissing(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(t, http.MethodGet, "/api/members/"+api.plain.ID+"/sessions", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, _ = api.do(t, http.MethodGet, "/api/members/nope/sessions", "", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSessionEndpoints(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(t, http.MethodGet, "/api/sessions", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(env.Data))

	code, _ = api.do(t, http.MethodGet, "/api/sessions/missing", "", "")
	assert.Equal(t, http.StatusNotFound, code)

	session, err := api.store.Sessions.GetOrCreate(context.Background(), "2025-10-24")
	require.NoError(t, err)

	code, env = api.do(t, http.MethodGet, "/api/sessions/"+session.ID, "", "")
	require.Equal(t, http.StatusOK, code)
	var detail models.SessionDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "2025-10-24", detail.Date)
	assert.NotNil(t, detail.Members)
}

type recordingAdapter struct {
	services.EventAdapter
	changes []models.VoiceStateChange
}

func (a *recordingAdapter) HandleVoiceState(_ context.Context, change models.VoiceStateChange) ([]*models.ReconcileOutcome, error) {
	a.changes = append(a.changes, change)
	return []*models.ReconcileOutcome{}, nil
}

func TestLiveKitWebhookMapsParticipants(t *testing.T) {
	adapter := &recordingAdapter{}
	h := NewLiveKitWebhookHandler(adapter, "key", "secret", zap.NewNop())

	created := time.Date(2025, 10, 24, 19, 0, 0, 0, time.UTC)
	events := []*livekit.WebhookEvent{
		{Event: "participant_joined", Room: &livekit.Room{Name: "lobby"}, Participant: &livekit.ParticipantInfo{Identity: "ann"}, CreatedAt: created.Unix()},
		{Event: "participant_left", Participant: &livekit.ParticipantInfo{Identity: "ann"}},
		{Event: "room_started", Room: &livekit.Room{Name: "lobby"}},
	}
	next := 0
	h.receive = func(*http.Request) (*livekit.WebhookEvent, error) {
		e := events[next]
		next++
		return e, nil
	}

	for range events {
		rec := httptest.NewRecorder()
		h.Receive(rec, httptest.NewRequest(http.MethodPost, "/api/webhooks/livekit", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	require.Len(t, adapter.changes, 2)
	assert.Equal(t, "lobby", adapter.changes[0].AfterChannelID)
	assert.True(t, adapter.changes[0].At.Equal(created))
	assert.Equal(t, "livekit", adapter.changes[1].BeforeChannelID)
	assert.True(t, adapter.changes[1].At.IsZero())
}

func TestLiveKitWebhookRejectsUnsigned(t *testing.T) {
	adapter := &recordingAdapter{}
	h := NewLiveKitWebhookHandler(adapter, "key", "secret", zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/livekit", strings.NewReader(`{"event":"participant_joined"}`))
	req.Header.Set("Content-Type", "application/webhook+json")
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, adapter.changes)
}
