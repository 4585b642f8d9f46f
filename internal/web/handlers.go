package web

import (
	"net/http"
	"strings"

	"github.com/hpungsan/nutri/internal/errors"
	"github.com/hpungsan/nutri/internal/feedback"
	"github.com/hpungsan/nutri/internal/food"
	"github.com/hpungsan/nutri/internal/ledger"
	"github.com/hpungsan/nutri/internal/ops"
)

// MaxChatBytes caps the size of a chat form submission.
const MaxChatBytes = 4 << 10

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	svc      *ops.Service
	renderer *Renderer
}

// HandleToday handles GET /today: today's entries and remaining macros.
func (h *Handlers) HandleToday(w http.ResponseWriter, r *http.Request) {
	h.renderToday(w, r, "", false)
}

func (h *Handlers) renderToday(w http.ResponseWriter, r *http.Request, reply string, failed bool) {
	status, err := h.svc.Status(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	data := TodayPageData{
		PageData: PageData{
			Title:   "Aujourd'hui",
			Version: h.renderer.version,
			Nav:     "today",
		},
		Today:     status.Today,
		Goals:     status.Goals,
		Remaining: status.Remaining,
		Status:    h.renderer.renderMarkdown(status.Message),
	}
	if reply != "" {
		data.Reply = ReplyData{Reply: h.renderer.renderMarkdown(reply), Error: failed}
	}
	h.renderer.renderPage(w, r, "today", data)
}

// HandleChat handles POST /chat: one chat message, same commands as the bot.
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxChatBytes)
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form"))
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("text is required"))
		return
	}

	reply, err := h.svc.Handle(r.Context(), text)

	if wantsJSON(r) {
		body := map[string]any{"reply": reply}
		status := http.StatusOK
		if err != nil {
			nErr, ok := errors.As(err)
			if !ok {
				nErr = errors.NewInternal(err)
			}
			body["error"] = map[string]any{"code": string(nErr.Code), "status": nErr.Status}
			status = nErr.Status
		}
		renderJSON(w, status, body)
		return
	}

	if isHtmx(r) {
		h.renderer.renderBlock(w, http.StatusOK, "today", "reply", ReplyData{
			Reply: h.renderer.renderMarkdown(reply),
			Error: err != nil,
		})
		return
	}

	h.renderToday(w, r, reply, err != nil)
}

// HandleHistory handles GET /history: today and the closed days.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	hist, err := h.svc.History(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, hist)
		return
	}

	days := make([]ledger.DailyLedger, 0, len(hist.History)+1)
	days = append(days, hist.Today)
	days = append(days, hist.History...)

	h.renderer.renderPage(w, r, "history", HistoryPageData{
		PageData: PageData{
			Title:   "Historique",
			Version: h.renderer.version,
			Nav:     "history",
		},
		Days:    days,
		Goals:   h.svc.Goals(),
		Summary: h.renderer.renderMarkdown(hist.Message),
	})
}

// HandleFoods handles GET /foods: the catalog, filtered by ?q= when present.
func (h *Handlers) HandleFoods(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var foods []food.Food
	if query == "" {
		foods = h.svc.ListFoods(r.Context())
	} else {
		out, err := h.svc.SearchFoods(r.Context(), ops.SearchFoodsInput{
			Query: query,
			Limit: ops.MaxSearchLimit,
		})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		foods = make([]food.Food, len(out.Matches))
		for i, m := range out.Matches {
			foods[i] = m.Food
		}
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"query": query, "foods": foods})
		return
	}

	h.renderer.renderPage(w, r, "foods", FoodsPageData{
		PageData: PageData{
			Title:   "Aliments",
			Version: h.renderer.version,
			Nav:     "foods",
		},
		Query: query,
		Foods: foods,
	})
}

// HandleUndo handles POST /undo.
func (h *Handlers) HandleUndo(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Undo(r.Context())
	if err != nil {
		if wantsJSON(r) || isHtmx(r) {
			h.renderer.renderError(w, r, err)
			return
		}
		h.renderToday(w, r, feedback.Error(err), true)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	http.Redirect(w, r, "/today", http.StatusSeeOther)
}
