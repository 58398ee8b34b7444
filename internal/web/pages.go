package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/s1natex/taskboard-GO/internal/board"
	"github.com/s1natex/taskboard-GO/internal/present"
	"github.com/s1natex/taskboard-GO/internal/tasks"
)

// pageHandler serves the server-rendered board. Every form post runs one
// board command and redirects back to the page (post/redirect/get).
type pageHandler struct {
	board  *board.Controller
	logger *slog.Logger
}

func (h *pageHandler) register(r chi.Router) {
	r.Get("/", h.index)
	r.Post("/tasks", h.command(func(r *http.Request) board.Command {
		return board.Command{Action: board.ActionSubmit, Fields: fieldsFromForm(r)}
	}))
	r.Post("/tasks/delete", h.command(func(r *http.Request) board.Command {
		return board.Command{Action: board.ActionDelete, ID: r.PostFormValue("id"), Title: r.PostFormValue("title")}
	}))
	r.Post("/tasks/delete-all", h.command(func(r *http.Request) board.Command {
		return board.Command{Action: board.ActionDeleteAll, Confirmed: r.PostFormValue("confirm") == "yes"}
	}))
	r.Post("/form/toggle", h.command(func(*http.Request) board.Command {
		return board.Command{Action: board.ActionToggle}
	}))
}

func (h *pageHandler) index(w http.ResponseWriter, r *http.Request) {
	data := pageData(h.board.Snapshot())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := present.RenderPage(w, data); err != nil {
		h.logger.Error("render_failed", slog.String("error", err.Error()))
	}
}

func (h *pageHandler) command(build func(*http.Request) board.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		cmd := build(r)
		if err := h.board.Dispatch(r.Context(), cmd); err != nil && !expected(err) {
			h.logger.Error("command_failed", slog.String("action", string(cmd.Action)), slog.String("error", err.Error()))
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// expected reports errors the board already surfaced as notices or that
// only mean "nothing to do".
func expected(err error) bool {
	var vErr *tasks.ValidationError
	return errors.As(err, &vErr) ||
		errors.Is(err, board.ErrNotConfirmed) ||
		errors.Is(err, tasks.ErrNotFound) ||
		errors.Is(err, context.Canceled)
}

func fieldsFromForm(r *http.Request) tasks.Fields {
	return tasks.Fields{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Color:       r.PostFormValue("color"),
		StartDate:   r.PostFormValue("startDate"),
		Status:      r.PostFormValue("status"),
		Budget:      r.PostFormValue("budget"),
	}
}

func pageData(s board.Snapshot) present.PageData {
	notices := make([]present.NoticeView, 0, len(s.Notices))
	for _, n := range s.Notices {
		notices = append(notices, present.NoticeView{
			Kind:    string(n.Kind),
			Title:   n.Title(),
			Message: n.Message,
			Items:   n.Items,
		})
	}
	return present.PageData{
		FormVisible: s.Visibility == board.FormVisible,
		Draft:       s.Draft,
		FieldErrors: s.FieldErrors,
		Notices:     notices,
		Stats:       s.Stats,
		Cards:       s.Cards,
		Statuses:    tasks.Statuses,
	}
}
