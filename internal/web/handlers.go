package web

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/gridclip/internal/clipboard"
	"github.com/JonMunkholm/gridclip/internal/config"
	"github.com/JonMunkholm/gridclip/internal/core"
	"github.com/JonMunkholm/gridclip/internal/fields"
	"github.com/JonMunkholm/gridclip/internal/transfer"
)

// MaxTransferBodySize caps copy, cut and paste request bodies (1MB).
const MaxTransferBodySize = 1 << 20

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"tables": core.TableCount(),
	})
}

// handleStatus reports transfer capacity and clipboard sessions.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"transfers": s.service.Limiter().Status(),
		"clipboard": s.cfg.Clipboard.Backend,
	}
	if s.sessions != nil {
		status["sessions"] = s.sessions.Len()
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables := s.service.ListTables()
	if tables == nil {
		tables = []core.TableInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tables": tables,
		"groups": s.service.ListTablesByGroup(),
	})
}

// columnResponse describes one column and the operations its type allows.
type columnResponse struct {
	Key        string           `json:"key"`
	FieldName  string           `json:"fieldName"`
	Type       fields.FieldType `json:"type"`
	Copyable   bool             `json:"copyable"`
	Pasteable  bool             `json:"pasteable"`
	CutDeletes bool             `json:"cutDeletes"`
}

type tableResponse struct {
	core.TableInfo
	Columns []columnResponse `json:"columns"`
	Rows    int              `json:"rows"`
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	tableKey := chi.URLParam(r, "tableKey")
	def, err := s.service.Table(tableKey)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	rows, err := s.service.Rows(r.Context(), tableKey)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	reg := s.service.Codec().Registry()
	resp := tableResponse{TableInfo: def.Info, Rows: len(rows)}
	for _, c := range def.Columns {
		resp.Columns = append(resp.Columns, columnResponse{
			Key:        c.Key,
			FieldName:  c.FieldName,
			Type:       c.Type,
			Copyable:   reg.IsCopyable(c.Type),
			Pasteable:  reg.IsPasteable(c.Type),
			CutDeletes: reg.IsCutDeletable(c.Type),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// selectionFromQuery reads ?path=&column=. Both are required.
func selectionFromQuery(r *http.Request) (transfer.SelectedCell, error) {
	sel := transfer.SelectedCell{
		Path:      r.URL.Query().Get("path"),
		ColumnKey: r.URL.Query().Get("column"),
	}
	if sel.Path == "" || sel.ColumnKey == "" {
		return sel, fmt.Errorf("%w: path and column are required", errBadRequest)
	}
	return sel, nil
}

func (s *Server) handleGetCell(w http.ResponseWriter, r *http.Request) {
	sel, err := selectionFromQuery(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	view, err := s.service.Cell(r.Context(), chi.URLParam(r, "tableKey"), sel)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.History(r.Context(), chi.URLParam(r, "tableKey"),
		parseIntParam(r, "limit", core.DefaultAuditLimit))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// transferBody is the request body of copy, cut and paste. Text is only
// used by paste; nil means read the configured clipboard.
type transferBody struct {
	Path   string  `json:"path"`
	Column string  `json:"column"`
	Text   *string `json:"text,omitempty"`
}

// transferResponse is the result of a copy, cut or paste.
type transferResponse struct {
	OK       bool               `json:"ok"`
	Text     string             `json:"text"`
	Messages []transfer.Message `json:"messages"`
	Code     string             `json:"code,omitempty"`
	Cell     core.CellView      `json:"cell"`
}

func newTransferResponse(res *core.TransferResult) transferResponse {
	resp := transferResponse{
		OK:       res.OK,
		Text:     res.Text,
		Messages: res.Messages,
		Cell:     res.Cell,
	}
	if resp.Messages == nil {
		resp.Messages = []transfer.Message{}
	}
	if res.Err != nil {
		resp.Code = core.MapError(res.Err).Code
	}
	return resp
}

// decodeTransferBody accepts JSON and form-encoded bodies. HTMX buttons
// post forms.
func decodeTransferBody(w http.ResponseWriter, r *http.Request) (transferBody, error) {
	var body transferBody
	r.Body = http.MaxBytesReader(w, r.Body, MaxTransferBodySize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
			return body, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return body, nil
	}

	if err := r.ParseForm(); err != nil {
		return body, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	body.Path = r.PostForm.Get("path")
	body.Column = r.PostForm.Get("column")
	if _, ok := r.PostForm["text"]; ok {
		text := r.PostForm.Get("text")
		body.Text = &text
	} else if prompt, ok := r.Header["Hx-Prompt"]; ok && len(prompt) > 0 {
		body.Text = &prompt[0]
	}
	return body, nil
}

// clipboardFor picks the clipboard for one request. Text sent with a paste
// always wins over the configured backend.
func (s *Server) clipboardFor(r *http.Request, op transfer.Op, body transferBody) transfer.Clipboard {
	if op == transfer.OpPaste && body.Text != nil {
		return clipboard.NewBuffer(*body.Text)
	}
	switch s.cfg.Clipboard.Backend {
	case config.ClipboardSession:
		if s.sessions != nil {
			return s.sessions.Clipboard(core.GetSessionIDFromContext(r.Context()))
		}
	case config.ClipboardSystem:
		if s.system != nil {
			return s.system
		}
	}
	// Request backend: copy and cut hand the text back in the response,
	// paste without text has nothing to read.
	return &clipboard.Buffer{}
}

func (s *Server) handleTransfer(op transfer.Op) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := decodeTransferBody(w, r)
		if err != nil {
			s.respondError(w, r, err, http.StatusBadRequest)
			return
		}

		ctx := WithRequestMetadata(r.Context(), r)
		res, err := s.service.Transfer(ctx, core.TransferRequest{
			TableKey:  chi.URLParam(r, "tableKey"),
			Op:        op,
			Selection: transfer.SelectedCell{Path: body.Path, ColumnKey: body.Column},
			Clipboard: s.clipboardFor(r, op, body),
		})
		if err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}

		resp := newTransferResponse(res)
		if res.OK && op != transfer.OpCopy {
			w.Header().Set("HX-Trigger", "cell-updated")
		}
		if isHTMX(r) {
			s.render(w, r, TransferStatus(op, resp))
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleCellMenu(w http.ResponseWriter, r *http.Request) {
	sel, err := selectionFromQuery(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	view, err := s.service.Cell(r.Context(), chi.URLParam(r, "tableKey"), sel)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.render(w, r, CellMenu(*view, s.cfg.Clipboard.Backend))
}
