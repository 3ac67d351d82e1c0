package app

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edipulse/internal/config"
	apierrors "edipulse/internal/errors"
	"edipulse/internal/shared/testutil"
	ws "edipulse/internal/websocket"
	"edipulse/pkg/contracts/domain"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) (*Application, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	if mutate != nil {
		mutate(cfg)
	}
	logger, _ := testutil.NewTestLogger(t)

	a, err := NewApplication(cfg, logger, nil)
	require.NoError(t, err)
	a.WebSocketHub.Start()

	srv := httptest.NewServer(a.Router)
	t.Cleanup(func() {
		srv.Close()
		a.WebSocketHub.Stop()
	})
	return a, srv
}

func analyzeRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	data := testutil.WorkbookBytes(t, testutil.Sheet{Name: "Date_Summary", Rows: [][]any{
		{"Date", "Documents", "KC"},
		{"01/02/2024", 100, 250},
	}})

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	w, err := mw.CreateFormFile("files", "Acme_Billing_202401.xlsx")
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, url+"/api/analyze", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestApplication_Health(t *testing.T) {
	_, srv := newTestApp(t, nil)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestApplication_NotFoundIsProblem(t *testing.T) {
	_, srv := newTestApp(t, nil)

	resp, err := http.Get(srv.URL + "/api/nope")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, apierrors.TypeNotFound, body["type"])
}

func TestApplication_Analyze(t *testing.T) {
	_, srv := newTestApp(t, nil)

	resp, err := http.DefaultClient.Do(analyzeRequest(t, srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report domain.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "Acme", report.Customer)
	assert.EqualValues(t, 100, report.Snapshot.Totals.Documents)
}

func TestApplication_UploadLimit(t *testing.T) {
	a, _ := newTestApp(t, func(cfg *config.Config) { cfg.Server.MaxUploadBytes = 512 })

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, analyzeRequest(t, "http://example.test"))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestApplication_ProgressFeed(t *testing.T) {
	_, srv := newTestApp(t, nil)

	header := http.Header{"Origin": []string{"http://localhost:3000"}}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var hello ws.Message
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, ws.TypeConnection, hello.Type)

	resp, err := http.DefaultClient.Do(analyzeRequest(t, srv.URL))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var types []string
	for {
		var msg ws.Message
		require.NoError(t, conn.ReadJSON(&msg))
		types = append(types, msg.Type)
		if msg.Type == ws.TypeComplete || msg.Type == ws.TypeError {
			break
		}
	}
	assert.Contains(t, types, ws.TypeProgress)
	assert.Equal(t, ws.TypeComplete, types[len(types)-1])
}
