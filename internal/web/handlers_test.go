package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/gridclip/internal/clipboard"
	"github.com/JonMunkholm/gridclip/internal/config"
	"github.com/JonMunkholm/gridclip/internal/core"
	"github.com/JonMunkholm/gridclip/internal/fields"
	"github.com/JonMunkholm/gridclip/internal/metrics"
	"github.com/JonMunkholm/gridclip/internal/transfer"
)

type testServer struct {
	srv      *Server
	store    *core.MemoryStore
	sessions *clipboard.SessionStore
}

func newTestServer(t *testing.T, backend string) *testServer {
	t.Helper()
	core.Clear()
	t.Cleanup(core.Clear)

	core.Register(core.TableDefinition{
		Info: core.TableInfo{Key: "contacts", Group: "CRM", Label: "Contacts"},
		Columns: []fields.ColumnConfig{
			{Key: "name", FieldName: "name", Type: fields.ShortText},
			{Key: "nickname", FieldName: "nickname", Type: fields.ShortText},
			{Key: "score", FieldName: "stats.score", Type: fields.Rating, Config: map[string]any{"max": 10}},
			{Key: "total", FieldName: "total", Type: fields.Formula},
		},
	})

	store := core.NewMemoryStore()
	require.NoError(t, store.PutRow(context.Background(), "contacts", transfer.Row{
		Path: "contacts/1",
		Data: map[string]any{"name": "Ada", "stats": map[string]any{"score": 3.0}, "total": 12.0},
	}))

	svc, err := core.NewService(core.ServiceConfig{
		Store: store,
		Audit: core.NewAuditService(core.NewMemoryAuditLog(0), nil),
	})
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Clipboard: config.ClipboardConfig{
			Backend:    backend,
			CookieName: "gridclip_session",
			SessionTTL: time.Minute,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	reg := prometheus.NewRegistry()
	sessions := clipboard.NewSessionStore(time.Minute)
	srv := NewServer(svc, cfg, Options{
		Sessions: sessions,
		Metrics:  metrics.NewWithRegistry(reg),
		Gatherer: reg,
	})
	return &testServer{srv: srv, store: store, sessions: sessions}
}

func (ts *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) postJSON(t *testing.T, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return ts.do(t, req)
}

func (ts *testServer) row(t *testing.T) map[string]any {
	t.Helper()
	rows, err := ts.store.Rows(context.Background(), "contacts")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0].Data
}

func decodeTransfer(t *testing.T, rec *httptest.ResponseRecorder) transferResponse {
	t.Helper()
	var resp transferResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)
	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","tables":1}`, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestGetTable(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)
	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/tables/contacts", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tableResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "contacts", resp.Key)
	assert.Equal(t, 1, resp.Rows)
	require.Len(t, resp.Columns, 4)
	assert.True(t, resp.Columns[0].Copyable)
	assert.True(t, resp.Columns[2].Copyable)
	assert.True(t, resp.Columns[2].Pasteable)
	assert.False(t, resp.Columns[3].Copyable, "formula columns cannot be copied")
	assert.False(t, resp.Columns[3].Pasteable, "formula columns are read-only")
}

func TestGetTable_NotFound(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)
	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/tables/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "TBL001", resp.Code)
}

func TestGetCell(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantText   string
	}{
		{"text cell", "path=contacts/1&column=name", http.StatusOK, "Ada"},
		{"nested rating", "path=contacts/1&column=score", http.StatusOK, "3"},
		{"missing row", "path=contacts/9&column=name", http.StatusOK, ""},
		{"unknown column", "path=contacts/1&column=nope", http.StatusNotFound, ""},
		{"missing params", "column=name", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/tables/contacts/cell?"+tt.query, nil))
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			var view core.CellView
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
			assert.Equal(t, tt.wantText, view.Text)
		})
	}
}

func TestCopy_RequestBackend(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)
	rec := ts.postJSON(t, "/api/tables/contacts/copy", `{"path":"contacts/1","column":"name"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeTransfer(t, rec)
	assert.True(t, resp.OK)
	assert.Equal(t, "Ada", resp.Text)
	assert.Equal(t, []transfer.Message{{Text: "Copied", Severity: transfer.SeverityInfo}}, resp.Messages)
	assert.Empty(t, resp.Code)
	assert.Empty(t, rec.Header().Get("HX-Trigger"), "copy does not change the cell")
}

func TestPaste_BodyText(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)
	rec := ts.postJSON(t, "/api/tables/contacts/paste", `{"path":"contacts/1","column":"score","text":"42"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeTransfer(t, rec)
	assert.True(t, resp.OK)
	assert.Empty(t, resp.Messages)
	assert.Equal(t, "10", resp.Cell.Text)
	assert.Equal(t, map[string]any{"score": 10.0}, ts.row(t)["stats"])
	assert.Equal(t, "cell-updated", rec.Header().Get("HX-Trigger"))
}

func TestPaste_FormBody(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)
	form := url.Values{"path": {"contacts/1"}, "column": {"nickname"}, "text": {"The Countess"}}
	req := httptest.NewRequest(http.MethodPost, "/api/tables/contacts/paste", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := ts.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "The Countess", ts.row(t)["nickname"])
}

func TestPaste_Rejected(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)

	tests := []struct {
		name     string
		body     string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "read-only column",
			body:     `{"path":"contacts/1","column":"total","text":"5"}`,
			wantCode: "CLIP004",
			wantMsg:  "formula field does not support paste functionality",
		},
		{
			name:     "nothing to read",
			body:     `{"path":"contacts/1","column":"name"}`,
			wantCode: "CLIP001",
			wantMsg:  "Read clipboard permission denied.",
		},
		{
			name:     "no selection",
			body:     `{"text":"5"}`,
			wantCode: "CLIP005",
			wantMsg:  "No cell selected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.postJSON(t, "/api/tables/contacts/paste", tt.body)
			require.Equal(t, http.StatusOK, rec.Code)

			resp := decodeTransfer(t, rec)
			assert.False(t, resp.OK)
			assert.Equal(t, tt.wantCode, resp.Code)
			require.Len(t, resp.Messages, 1)
			assert.Equal(t, tt.wantMsg, resp.Messages[0].Text)
			assert.Equal(t, transfer.SeverityError, resp.Messages[0].Severity)
		})
	}
	assert.Equal(t, "Ada", ts.row(t)["name"])
}

func TestTransfer_Errors(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)

	rec := ts.postJSON(t, "/api/tables/missing/copy", `{"path":"x","column":"name"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.postJSON(t, "/api/tables/contacts/copy", `{"path":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "REQ001", resp.Code)
}

func TestCutPaste_SessionBackend(t *testing.T) {
	ts := newTestServer(t, config.ClipboardSession)

	rec := ts.postJSON(t, "/api/tables/contacts/cut", `{"path":"contacts/1","column":"name"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cut := decodeTransfer(t, rec)
	require.True(t, cut.OK)
	assert.Equal(t, "Ada", cut.Text)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "gridclip_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, ts.sessions.Exists(cookies[0].Value))

	row := ts.row(t)
	_, hasName := row["name"]
	assert.False(t, hasName, "cut removes the text value")

	rec = ts.postJSON(t, "/api/tables/contacts/paste", `{"path":"contacts/1","column":"nickname"}`, cookies[0])
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeTransfer(t, rec).OK)
	assert.Equal(t, "Ada", ts.row(t)["nickname"])
}

func TestPaste_SessionBackendWithoutCookie(t *testing.T) {
	ts := newTestServer(t, config.ClipboardSession)

	rec := ts.postJSON(t, "/api/tables/contacts/paste", `{"path":"contacts/1","column":"nickname"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// A fresh session holds an empty clipboard.
	assert.True(t, decodeTransfer(t, rec).OK)
	assert.Equal(t, "", ts.row(t)["nickname"])
}

func TestCopy_HTMXFragment(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)
	req := httptest.NewRequest(http.MethodPost, "/api/tables/contacts/copy",
		strings.NewReader(url.Values{"path": {"contacts/1"}, "column": {"name"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")

	rec := ts.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, `class="transfer-status ok"`)
	assert.Contains(t, body, `data-clipboard="Ada"`)
	assert.Contains(t, body, `<p class="message info">Copied</p>`)
}

func TestPaste_HXPrompt(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)
	req := httptest.NewRequest(http.MethodPost, "/api/tables/contacts/paste",
		strings.NewReader(url.Values{"path": {"contacts/1"}, "column": {"nickname"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Prompt", "<b>Lovelace</b>")

	rec := ts.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<b>Lovelace</b>", ts.row(t)["nickname"])
	assert.NotContains(t, rec.Body.String(), "data-clipboard", "paste output is not put on the clipboard")
}

func TestCellMenu(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/table/contacts/menu?path=contacts/1&column=score", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `hx-post="/api/tables/contacts/copy"`)
	assert.Contains(t, body, `hx-post="/api/tables/contacts/cut"`)
	assert.Contains(t, body, `hx-post="/api/tables/contacts/paste"`)
	assert.Contains(t, body, `hx-prompt="Text to paste"`)
	assert.Contains(t, body, `<pre class="cell-menu-preview">3</pre>`)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/table/contacts/menu?path=contacts/1&column=total", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.NotContains(t, body, "hx-post=")
	assert.Contains(t, body, `disabled title="formula field cannot be copied"`)
	assert.Contains(t, body, `disabled title="formula field does not support paste functionality"`)
	assert.NotContains(t, body, "cell-menu-preview")

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/table/contacts/menu?path=contacts/9&column=name", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, `hx-post="/api/tables/contacts/copy"`)
	assert.Contains(t, body, `disabled title="Row not found"`)
}

func TestCellMenu_HTMXError(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)
	req := httptest.NewRequest(http.MethodGet, "/table/missing/menu?path=a&column=b", nil)
	req.Header.Set("HX-Request", "true")

	rec := ts.do(t, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-code="TBL001"`)
}

func TestHistory(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)
	ts.postJSON(t, "/api/tables/contacts/copy", `{"path":"contacts/1","column":"name"}`)
	ts.postJSON(t, "/api/tables/contacts/paste", `{"path":"contacts/1","column":"score","text":"4"}`)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/tables/contacts/history?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Entries []core.AuditEntry `json:"entries"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, core.ActionCellPaste, resp.Entries[0].Action)
	assert.Equal(t, "4", resp.Entries[0].ValueText)
	assert.Equal(t, "192.0.2.1", resp.Entries[0].IPAddress, "httptest default remote address")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)
	ts.do(t, httptest.NewRequest(http.MethodGet, "/api/tables/contacts", nil))

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `gridclip_http_requests_total{method="GET",route="/api/tables/{tableKey}",status="2xx"} 1`)
}

func TestAPIKeyRequired(t *testing.T) {
	ts := newTestServer(t, config.ClipboardRequest)
	ts.srv.cfg.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}
	ts.srv = NewServer(ts.srv.service, ts.srv.cfg, Options{Gatherer: prometheus.NewRegistry()})

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/tables", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/tables", nil)
	req.Header.Set("X-API-Key", "k1")
	assert.Equal(t, http.StatusOK, ts.do(t, req).Code)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health checks skip auth")
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute)
	defer rl.stop()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "limits are per client")

	now = now.Add(2 * time.Minute)
	assert.True(t, rl.allow("10.0.0.1"), "a new window resets the budget")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrTableNotFound, http.StatusNotFound},
		{core.ErrColumnNotFound, http.StatusNotFound},
		{core.ErrTooManyTransfers, http.StatusTooManyRequests},
		{core.ErrUnknownOp, http.StatusBadRequest},
		{errBadRequest, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
