package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmatch-service/internal/app"
	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/infra/memory"
	"wordmatch-service/internal/lookup"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, words []string) (domain.MatchingSet, error) {
	set := domain.MatchingSet{ID: "generated"}
	for _, w := range words {
		set.Items = append(set.Items, domain.SetItem{ID: w, LeftText: w, RightText: "meaning of " + w})
	}
	return set, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *app.GameService) {
	t.Helper()
	loader := memory.NewStaticSetLoader(map[string]domain.MatchingSet{
		"set-1": {ID: "set-1", Items: []domain.SetItem{
			{ID: "1", LeftText: "학교", RightText: "school"},
			{ID: "2", LeftText: "병원", RightText: "hospital"},
		}},
	})
	lex := memory.NewLexicon([]lookup.Entry{
		{ID: "w1", Kind: lookup.TypeWord, Text: "학교", Grade: "1급"},
		{ID: "w2", Kind: lookup.TypeWord, Text: "학교생활", Grade: "2급"},
		{ID: "g1", Kind: lookup.TypeGrammar, Text: "-는데", Grade: "2급"},
	})
	service := app.NewGameService(memory.NewSessionStore(), memory.NewSetRepository(loader, time.Minute),
		app.WithSetWriter(loader), app.WithLexicon(lex), app.WithGenerator(stubGenerator{}))
	return NewRouter(service, nil, 10), service
}

func do(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSearchEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/search?q="+url.QueryEscape("학교")+"&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "w1", resp.Results[0].ID)
	assert.Equal(t, lookup.TypeWord, resp.Type)

	rec = do(router, http.MethodGet, "/api/search?q="+url.QueryEscape("먹는데")+"&type=grammar", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "g1", resp.Results[0].ID)

	rec = do(router, http.MethodGet, "/api/search?q="+url.QueryEscape("학교")+"&limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/sets/set-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"word":"학교"`)

	rec = do(router, http.MethodGet, "/api/sets/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodPost, "/api/sets", domain.MatchingSet{
		ID:    "bad",
		Items: []domain.SetItem{{ID: "1", LeftText: "학교"}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"meaning"`)

	rec = do(router, http.MethodPost, "/api/sets/generate", map[string]any{"words": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/sets/generate", map[string]any{"words": []string{"학교", "병원"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(router, http.MethodGet, "/api/sets/generated", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckEndpoint(t *testing.T) {
	router, service := newTestRouter(t)
	ctx := context.Background()

	snap, err := service.Start(ctx, "set-1", "u1")
	require.NoError(t, err)
	service.PointerDown(ctx, snap.GameID, domain.ItemRef{ID: "1", Side: domain.Left})
	target := domain.ItemRef{ID: "1", Side: domain.Right}
	service.PointerUp(ctx, snap.GameID, &target, nil)

	rec := do(router, http.MethodPost, "/api/games/"+snap.GameID+"/check", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp checkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.ScoreResult{CorrectCount: 1, Total: 2}, resp.Result)
	assert.False(t, resp.Passed)
	assert.True(t, strings.HasPrefix(resp.Summary, "Not quite. (1/2)"))

	rec = do(router, http.MethodGet, "/api/games/"+snap.GameID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodPost, "/api/games/nope/check", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchWithoutLexicon(t *testing.T) {
	service := newTestService(memory.NewSessionStore())
	rec := do(NewRouter(service, nil, 0), http.MethodGet, "/api/search?q="+url.QueryEscape("학교"), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
