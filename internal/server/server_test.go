package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/caproi-cli/internal/metrics"
	"github.com/KaramelBytes/caproi-cli/internal/pipeline"
	"github.com/KaramelBytes/caproi-cli/internal/session"
)

const rosterCSV = "Player,Cap Number,Pos,Starter,2nd,3rd,4th\n" +
	"Q. Back,\"$45,000,000\",QB,Q. Back,,,\n" +
	"W. One,\"$20,000,000\",WR,W. One,W. Two,,\n" +
	"W. Two,\"$2,000,000\",,,,,\n"

const ranksCSV = "Player,Rank\nQ. Back,5/32\nW. One,8/40\nW. Two,24/40\n"

type upload struct {
	roster, performance string
	fields              map[string]string
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(Config{
		Log:     zerolog.Nop(),
		Options: pipeline.DefaultOptions(),
		Store:   session.NewStore(),
		Metrics: metrics.NewManager(),
	})
}

func multipartRequest(t *testing.T, method, target string, u upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if u.roster != "" {
		fw, err := mw.CreateFormFile(fieldRoster, "roster.csv")
		require.NoError(t, err)
		_, err = io.WriteString(fw, u.roster)
		require.NoError(t, err)
	}
	if u.performance != "" {
		fw, err := mw.CreateFormFile(fieldPerformance, "ranks.csv")
		require.NoError(t, err)
		_, err = io.WriteString(fw, u.performance)
		require.NoError(t, err)
	}
	for k, v := range u.fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type sessionResponse struct {
	ID     string `json:"id"`
	Result struct {
		Roster      string `json:"roster"`
		Performance string `json:"performance"`
		Entities    []struct {
			Name        string   `json:"name"`
			Category    string   `json:"category"`
			Grade       float64  `json:"grade"`
			GradeSource string   `json:"grade_source"`
			ROI         *float64 `json:"roi"`
		} `json:"entities"`
		Warnings []string `json:"warnings"`
	} `json:"result"`
}

func createSession(t *testing.T, s *Server, u upload) sessionResponse {
	t.Helper()
	rec := do(s, multipartRequest(t, http.MethodPost, "/api/sessions", u))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out sessionResponse
	decode(t, rec, &out)
	require.NotEmpty(t, out.ID)
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]interface{}
	decode(t, rec, &out)
	assert.Equal(t, "healthy", out["status"])
}

func TestCreateSessionScoresUpload(t *testing.T) {
	s := newTestServer(t)
	out := createSession(t, s, upload{roster: rosterCSV, performance: ranksCSV})

	assert.Equal(t, "roster.csv", out.Result.Roster)
	assert.Equal(t, "ranks.csv", out.Result.Performance)
	require.Len(t, out.Result.Entities, 3)
	for _, e := range out.Result.Entities {
		assert.Equal(t, "performance", e.GradeSource, e.Name)
		require.NotNil(t, e.ROI)
	}
	assert.Equal(t, "WR", out.Result.Entities[2].Category)
	assert.Equal(t, 1, s.store.Len())
}

func TestCreateSessionWithoutPerformanceWarns(t *testing.T) {
	s := newTestServer(t)
	out := createSession(t, s, upload{roster: rosterCSV, fields: map[string]string{fieldDefaultGrade: "55"}})
	for _, e := range out.Result.Entities {
		assert.Equal(t, 55.0, e.Grade)
	}
	require.NotEmpty(t, out.Result.Warnings)
	assert.Contains(t, out.Result.Warnings[0], "default grade 55.0")
}

func TestCreateSessionRejects(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name   string
		u      upload
		status int
	}{
		{"missing roster", upload{performance: ranksCSV}, http.StatusBadRequest},
		{"bad budget", upload{roster: rosterCSV, fields: map[string]string{fieldBudget: "-1"}}, http.StatusBadRequest},
		{"bad grade", upload{roster: rosterCSV, fields: map[string]string{fieldDefaultGrade: "abc"}}, http.StatusBadRequest},
		{"no cap column", upload{roster: "Player,Team\nA,B\n"}, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(s, multipartRequest(t, http.MethodPost, "/api/sessions", tc.u))
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			var out map[string]string
			decode(t, rec, &out)
			assert.NotEmpty(t, out["error"])
		})
	}
	assert.Equal(t, 0, s.store.Len())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `caproi_upload_failures_total{reason="no_cap_column"} 1`)
}

func TestBudgetOverride(t *testing.T) {
	s := newTestServer(t)
	a := createSession(t, s, upload{roster: rosterCSV})
	b := createSession(t, s, upload{roster: rosterCSV, fields: map[string]string{fieldBudget: "100000000"}})
	require.NotNil(t, a.Result.Entities[0].ROI)
	require.NotNil(t, b.Result.Entities[0].ROI)
	assert.Less(t, *b.Result.Entities[0].ROI, *a.Result.Entities[0].ROI, "a smaller budget raises cap share and lowers ROI")
}

func TestSessionReads(t *testing.T) {
	s := newTestServer(t)
	created := createSession(t, s, upload{roster: rosterCSV, performance: ranksCSV})
	base := "/api/sessions/" + created.ID

	rec := do(s, httptest.NewRequest(http.MethodGet, base, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got sessionResponse
	decode(t, rec, &got)
	assert.Equal(t, created.ID, got.ID)

	rec = do(s, httptest.NewRequest(http.MethodGet, base+"/entities?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var top []map[string]interface{}
	decode(t, rec, &top)
	require.Len(t, top, 1)
	assert.Equal(t, "W. Two", top[0]["name"], "cheapest graded player has the best ROI")

	rec = do(s, httptest.NewRequest(http.MethodGet, base+"/entities?order=asc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var bottom []map[string]interface{}
	decode(t, rec, &bottom)
	require.Len(t, bottom, 3)
	assert.Equal(t, "Q. Back", bottom[0]["name"])

	for _, bad := range []string{"?order=sideways", "?limit=-2", "?limit=x"} {
		rec = do(s, httptest.NewRequest(http.MethodGet, base+"/entities"+bad, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}

	rec = do(s, httptest.NewRequest(http.MethodGet, base+"/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var cats struct {
		Categories []map[string]interface{} `json:"categories"`
		SpendPct   map[string]float64       `json:"spend_pct"`
	}
	decode(t, rec, &cats)
	assert.Len(t, cats.Categories, 2)
	assert.InDelta(t, 22.0/303.5*100, cats.SpendPct["WR"], 1e-9)

	rec = do(s, httptest.NewRequest(http.MethodGet, base+"/audit", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var audit struct {
		Audit []struct {
			Entity   map[string]interface{} `json:"entity"`
			Leverage string                 `json:"leverage"`
		} `json:"audit"`
	}
	decode(t, rec, &audit)
	require.Len(t, audit.Audit, 2)
	assert.Equal(t, "Q. Back", audit.Audit[0].Entity["name"])
	assert.NotEmpty(t, audit.Audit[0].Leverage)
}

func TestSessionReplaceAndDelete(t *testing.T) {
	s := newTestServer(t)
	created := createSession(t, s, upload{roster: rosterCSV})
	base := "/api/sessions/" + created.ID

	rec := do(s, multipartRequest(t, http.MethodPut, base, upload{roster: rosterCSV, performance: ranksCSV}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var replaced sessionResponse
	decode(t, rec, &replaced)
	assert.Equal(t, created.ID, replaced.ID)
	assert.Equal(t, "ranks.csv", replaced.Result.Performance)

	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []sessionSummary
	decode(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].Players)

	rec = do(s, httptest.NewRequest(http.MethodDelete, base, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, base, nil),
		httptest.NewRequest(http.MethodGet, base+"/audit", nil),
		httptest.NewRequest(http.MethodDelete, base, nil),
		multipartRequest(t, http.MethodPut, base, upload{roster: rosterCSV}),
	} {
		rec = do(s, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, req.Method+" "+req.URL.Path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	createSession(t, s, upload{roster: rosterCSV, performance: ranksCSV})

	rec := do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `caproi_uploads_total{performance="true"} 1`)
	assert.Contains(t, body, "caproi_entities_scored_total 3")
	assert.Contains(t, body, "caproi_active_sessions 1")
	assert.True(t, strings.Contains(body, `route="/api/sessions/"`) || strings.Contains(body, `route="/api/sessions/*"`))
}
