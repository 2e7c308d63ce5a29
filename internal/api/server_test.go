package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/ideasurge/internal"
	"github.com/iksnae/ideasurge/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	server *Server
	repo   internal.IdeaRepository
	life   *internal.Lifecycle
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := testutil.CreateTempDir(t)
	repo, err := internal.OpenRepository(context.Background(), internal.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(dir, "ideas.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	tasks := internal.NewDispatcher(2, time.Second)
	t.Cleanup(tasks.Wait)
	life := internal.NewLifecycle(internal.NewFileSessionStore(dir), repo, tasks)

	server, err := NewServer(life, repo, zap.NewNop(), "")
	require.NoError(t, err)
	return &testEnv{server: server, repo: repo, life: life}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func ideaJSON(t *testing.T, idea internal.Idea) string {
	t.Helper()
	return string(testutil.JSONMarshal(t, idea))
}

func TestNewServer_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := NewServer(nil, env.repo, zap.NewNop(), "")
	assert.Error(t, err)
	_, err = NewServer(env.life, nil, zap.NewNop(), "")
	assert.Error(t, err)
	_, err = NewServer(env.life, env.repo, nil, "")
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestHealth_Degraded(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.repo.Close())

	rec := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	internal.GetMetrics()
	rec := env.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMarkPicked(t *testing.T) {
	env := newTestEnv(t)
	idea := internal.CreateTestIdea(1)

	rec := env.do(t, http.MethodPost, "/api/ideas/mark-picked", `{"idea":`+ideaJSON(t, idea)+`}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	stored, err := env.repo.FindByFingerprint(context.Background(), internal.Fingerprint(idea))
	require.NoError(t, err)
	assert.Equal(t, internal.StatusPicked, stored.Status)
	assert.NotNil(t, stored.PickedAt)
}

func TestMarkPicked_InvalidPayload(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{`},
		{"not an object", `[1,2]`},
		{"missing idea", `{}`},
		{"idea missing fields", `{"idea":{"id":"x","title":"T"}}`},
		{"source not strings", `{"idea":{"id":"x","title":"T","oneLiner":"o","problem":"p","targetMarket":"t","marketSignal":"m","revenueModel":"r","source":[1],"createdAt":"c"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/ideas/mark-picked", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Invalid payload."}`, rec.Body.String())
		})
	}
}

func TestRecycle(t *testing.T) {
	env := newTestEnv(t)
	ideas := internal.CreateTestIdeas(3)

	rec := env.do(t, http.MethodPost, "/api/ideas/mark-picked", `{"idea":`+ideaJSON(t, ideas[0])+`}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := `{"ideas":[` + ideaJSON(t, ideas[0]) + `,` + ideaJSON(t, ideas[1]) + `,` + ideaJSON(t, ideas[2]) + `]}`
	rec = env.do(t, http.MethodPost, "/api/ideas/recycle", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp RecycleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, RecycleResponse{OK: true, Recycled: 2, SkippedPicked: 1}, resp)

	stored, err := env.repo.FindByFingerprint(context.Background(), internal.Fingerprint(ideas[0]))
	require.NoError(t, err)
	assert.Equal(t, internal.StatusPicked, stored.Status, "picked idea must stay picked")
}

func TestRecycle_InvalidPayload(t *testing.T) {
	env := newTestEnv(t)
	valid := ideaJSON(t, internal.CreateTestIdea(1))
	tests := []struct {
		name string
		body string
	}{
		{"ideas not array", `{"ideas":{}}`},
		{"ideas missing", `{"other":[]}`},
		{"one invalid element", `{"ideas":[` + valid + `,{"title":"x"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/ideas/recycle", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	stored, err := env.repo.ListByStatus(context.Background(), internal.StatusRecycled)
	require.NoError(t, err)
	assert.Empty(t, stored, "a rejected batch must not be partially written")
}

func TestRecycle_Empty(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/ideas/recycle", `{"ideas":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"recycled":0,"skippedPicked":0}`, rec.Body.String())
}

func TestRecycle_StorageFailure(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.repo.Close())

	rec := env.do(t, http.MethodPost, "/api/ideas/recycle", `{"ideas":[`+ideaJSON(t, internal.CreateTestIdea(1))+`]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestLibrary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	empty := env.do(t, http.MethodGet, "/api/library", "")
	require.Equal(t, http.StatusOK, empty.Code)
	assert.JSONEq(t, `{"total":0,"groups":[]}`, empty.Body.String())

	fintech := internal.CreateTestIdea(1)
	fintech.Category = "Fintech"
	plain := internal.CreateTestIdea(2)
	_, err := env.life.RecycleIdeas(ctx, []internal.Idea{fintech, plain})
	require.NoError(t, err)
	require.NoError(t, env.life.MarkPicked(ctx, internal.CreateTestIdea(3)))

	rec := env.do(t, http.MethodGet, "/api/library", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp LibraryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 2, resp.Total)
	categories := make([]string, 0, len(resp.Groups))
	for _, g := range resp.Groups {
		categories = append(categories, g.Category)
	}
	assert.ElementsMatch(t, []string{"Fintech", internal.DefaultCategory}, categories)

	id := resp.Groups[0].Ideas[0].ID
	detail := env.do(t, http.MethodGet, "/api/library/"+id, "")
	require.Equal(t, http.StatusOK, detail.Code)
	var ideaResp IdeaResponse
	require.NoError(t, json.Unmarshal(detail.Body.Bytes(), &ideaResp))
	assert.Equal(t, id, ideaResp.Idea.ID)
	assert.NotEmpty(t, ideaResp.Idea.Title)
}

func TestLibraryIdea_NotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/library/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Idea not found."}`, rec.Body.String())
}

func TestShutdown(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := env.server.Shutdown(ctx)
	assert.True(t, err == nil || errors.Is(err, http.ErrServerClosed), "Shutdown() error = %v", err)
}
