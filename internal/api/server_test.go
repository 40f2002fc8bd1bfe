package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/museum/pkg/integrations/spotify/spotifytest"
	"github.com/matzehuels/museum/pkg/museum"
	"github.com/matzehuels/museum/pkg/pipeline"
)

func newTestAPI(t *testing.T) (*spotifytest.Server, http.Handler) {
	t.Helper()
	upstream := spotifytest.NewServer(spotifytest.User("u1", "Ada"), spotifytest.Artists(4), spotifytest.Tracks(4))
	t.Cleanup(upstream.Close)

	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	runner.NewSource = pipeline.SpotifySource(upstream.URL + "/v1")
	return upstream, NewServer(runner, nil).Router()
}

func do(t *testing.T, h http.Handler, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func TestHealth(t *testing.T) {
	_, h := newTestAPI(t)
	rr := do(t, h, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("Content-Type"))
}

func TestMuseumJSON(t *testing.T) {
	_, h := newTestAPI(t)
	rr := do(t, h, http.MethodGet, "/v1/museum?width=1000&height=500&seed=3", spotifytest.Token, nil)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "3", rr.Header().Get("X-Museum-Seed"))
	assert.Empty(t, rr.Header().Get("X-Museum-Partial"))

	m, err := museum.UnmarshalMuseum(rr.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, m.Placements, 12)
	assert.Equal(t, 1000.0, m.Width)
	assert.Equal(t, 500.0, m.Height)
	assert.NoError(t, m.Validate())
}

func TestMuseumSVG(t *testing.T) {
	_, h := newTestAPI(t)
	rr := do(t, h, http.MethodGet, "/v1/museum?format=svg&seed=1", spotifytest.Token, nil)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "image/svg+xml", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "<svg"), "body is not an svg document")
	assert.Equal(t, 12, strings.Count(rr.Body.String(), `class="tile `))
}

func TestMuseumPartial(t *testing.T) {
	upstream, h := newTestAPI(t)
	upstream.Status["/me/top/artists"] = http.StatusUnauthorized

	rr := do(t, h, http.MethodGet, "/v1/museum?seed=5", spotifytest.Token, nil)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "artist", rr.Header().Get("X-Museum-Partial"))

	m, err := museum.UnmarshalMuseum(rr.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, m.Placements, 8)
	assert.Zero(t, m.CountByCategory()[museum.CategoryArtist])
}

func TestMuseumErrors(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		token    string
		wantCode int
		wantErr  string
	}{
		{"missing credential", "/v1/museum", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"rejected credential", "/v1/museum", "stale-token", http.StatusUnauthorized, "FETCH_FAILED"},
		{"zero width", "/v1/museum?width=0", spotifytest.Token, http.StatusBadRequest, "INVALID_CANVAS_SIZE"},
		{"negative height", "/v1/museum?height=-10", spotifytest.Token, http.StatusBadRequest, "INVALID_CANVAS_SIZE"},
		{"bad width", "/v1/museum?width=wide", spotifytest.Token, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad seed", "/v1/museum?seed=-1", spotifytest.Token, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad format", "/v1/museum?format=png", spotifytest.Token, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad time range", "/v1/museum?time_range=decade", spotifytest.Token, http.StatusBadRequest, "INVALID_TIME_RANGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestAPI(t)
			rr := do(t, h, http.MethodGet, tt.target, tt.token, nil)

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, tt.wantErr, string(decodeError(t, rr).Code))
		})
	}
}

func TestMe(t *testing.T) {
	_, h := newTestAPI(t)
	rr := do(t, h, http.MethodGet, "/v1/me", spotifytest.Token, nil)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var p museum.Profile
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "Ada", p.DisplayName)
}

func TestLayout(t *testing.T) {
	_, h := newTestAPI(t)
	body := `{
		"items": [
			{"name": "A", "image_url": "https://img/a", "category": "artist"},
			{"name": "B", "image_url": "https://img/b", "category": "track"},
			{"name": "C", "image_url": "https://img/c", "category": "album"}
		],
		"width": 800,
		"height": 600,
		"options": {"seed": 42, "sizes": [100]}
	}`
	rr := do(t, h, http.MethodPost, "/v1/layout", "", strings.NewReader(body))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp LayoutResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Placements, 3)
	assert.Equal(t, uint64(42), resp.Seed)
	for _, p := range resp.Placements {
		assert.Equal(t, 100.0, p.Size)
		assert.True(t, p.Contained(800, 600), "placement %+v outside canvas", p)
	}
}

func TestLayoutEmpty(t *testing.T) {
	_, h := newTestAPI(t)
	rr := do(t, h, http.MethodPost, "/v1/layout", "", strings.NewReader(`{"items": [], "width": 800, "height": 600}`))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp LayoutResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Placements)
	assert.Empty(t, resp.Placements)
}

func TestLayoutErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"zero canvas", `{"items": [], "width": 0, "height": 600}`, "INVALID_CANVAS_SIZE"},
		{"negative canvas", `{"items": [], "width": 800, "height": -1}`, "INVALID_CANVAS_SIZE"},
		{"malformed", `{"items": `, "INVALID_INPUT"},
		{"unknown field", `{"items": [], "width": 1, "height": 1, "depth": 3}`, "INVALID_INPUT"},
		{"missing image", `{"items": [{"name": "A", "category": "artist"}], "width": 800, "height": 600}`, "INVALID_INPUT"},
		{"bad category", `{"items": [{"name": "A", "image_url": "x", "category": "podcast"}], "width": 800, "height": 600}`, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestAPI(t)
			rr := do(t, h, http.MethodPost, "/v1/layout", "", strings.NewReader(tt.body))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.wantErr, string(decodeError(t, rr).Code))
		})
	}
}

func TestNotFound(t *testing.T) {
	_, h := newTestAPI(t)
	rr := do(t, h, http.MethodGet, "/v2/anything", "", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", string(decodeError(t, rr).Code))
}
