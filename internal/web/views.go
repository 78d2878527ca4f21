package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/gridclip/internal/core"
	"github.com/JonMunkholm/gridclip/internal/logging"
	"github.com/JonMunkholm/gridclip/internal/transfer"
)

// render writes an HTML fragment.
func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render fragment", "error", err)
	}
}

// menuItem is one entry of the cell context menu.
type menuItem struct {
	op      transfer.Op
	label   string
	enabled bool
	title   string
}

func menuItems(view core.CellView) []menuItem {
	items := []menuItem{
		{op: transfer.OpCopy, label: "Copy", enabled: view.Copyable},
		{op: transfer.OpCut, label: "Cut", enabled: view.Copyable && view.RowFound},
		{op: transfer.OpPaste, label: "Paste", enabled: view.Pasteable && view.RowFound},
	}
	for i := range items {
		if items[i].enabled {
			continue
		}
		switch {
		case items[i].op != transfer.OpCopy && !view.RowFound:
			items[i].title = "Row not found"
		case items[i].op == transfer.OpPaste:
			items[i].title = fmt.Sprintf("%s field does not support paste functionality", view.Type)
		default:
			items[i].title = fmt.Sprintf("%s field cannot be copied", view.Type)
		}
	}
	return items
}

func transferPath(tableKey string, op transfer.Op) string {
	return "/api/tables/" + tableKey + "/" + string(op)
}

// cellVals is the hx-vals payload selecting the menu's cell.
func cellVals(view core.CellView) string {
	vals, err := json.Marshal(map[string]string{"path": view.Path, "column": view.Column})
	if err != nil {
		return "{}"
	}
	return string(vals)
}

func statusState(resp transferResponse) string {
	if resp.OK {
		return "ok"
	}
	return "failed"
}
