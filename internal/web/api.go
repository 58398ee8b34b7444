package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/s1natex/taskboard-GO/internal/board"
	"github.com/s1natex/taskboard-GO/internal/present"
	"github.com/s1natex/taskboard-GO/internal/tasks"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	StartDate   string `json:"startDate"`
	Status      string `json:"status"`
	Budget      any    `json:"budget"` // number or numeric string
}

type createTaskResponse struct {
	Task    tasks.Task `json:"task"`
	Warning string     `json:"warning,omitempty"`
}

type boardResponse struct {
	Visibility board.Visibility `json:"visibility"`
	Tasks      []tasks.Task     `json:"tasks"`
	Stats      present.Stats    `json:"stats"`
	Notices    []board.Notice   `json:"notices"`
}

type errResponse struct {
	Error   string             `json:"error"`
	Details []tasks.FieldError `json:"details,omitempty"`
}

// RegisterAPIRoutes mounts the JSON surface of the board on r.
func RegisterAPIRoutes(r chi.Router, b *board.Controller, logger *slog.Logger) {
	r.Get("/tasks", listTasks(b))
	r.Post("/tasks", createTask(b, logger))
	r.Delete("/tasks/{id}", deleteTask(b))
	r.Delete("/tasks", deleteAllTasks(b))
	r.Post("/form/toggle", toggleForm(b))
}

func listTasks(b *board.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, snapshotResponse(b.Snapshot()))
	}
}

func createTask(b *board.Controller, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTaskRequest
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid_json"})
			return
		}

		out := b.Submit(r.Context(), tasks.Fields{
			Title:       req.Title,
			Description: req.Description,
			Color:       req.Color,
			StartDate:   req.StartDate,
			Status:      req.Status,
			Budget:      budgetString(req.Budget),
		})
		switch {
		case len(out.Errors) > 0:
			writeJSON(w, http.StatusUnprocessableEntity, errResponse{
				Error:   "validation_error",
				Details: out.Errors,
			})
		case out.LocalErr != nil:
			logger.Error("api_create_failed", slog.String("error", out.LocalErr.Error()))
			writeJSON(w, http.StatusInternalServerError, errResponse{Error: "local_storage_error"})
		default:
			resp := createTaskResponse{Task: out.Task}
			if out.RemoteErr != nil {
				resp.Warning = "Task saved locally but failed to sync with server."
			}
			writeJSON(w, http.StatusCreated, resp)
		}
	}
}

func deleteTask(b *board.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := b.Delete(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("title"))
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, tasks.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errResponse{Error: "not_found"})
		default:
			writeJSON(w, http.StatusInternalServerError, errResponse{Error: "local_storage_error"})
		}
	}
}

func deleteAllTasks(b *board.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := b.DeleteAll(r.Context(), r.URL.Query().Get("confirm") == "yes")
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, board.ErrNotConfirmed):
			writeJSON(w, http.StatusBadRequest, errResponse{Error: "confirmation_required"})
		default:
			writeJSON(w, http.StatusInternalServerError, errResponse{Error: "local_storage_error"})
		}
	}
}

func toggleForm(b *board.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]board.Visibility{"visibility": b.Toggle()})
	}
}

func snapshotResponse(s board.Snapshot) boardResponse {
	resp := boardResponse{
		Visibility: s.Visibility,
		Tasks:      s.Cards,
		Stats:      s.Stats,
		Notices:    s.Notices,
	}
	if resp.Tasks == nil {
		resp.Tasks = []tasks.Task{}
	}
	if resp.Notices == nil {
		resp.Notices = []board.Notice{}
	}
	return resp
}

func budgetString(v any) string {
	switch b := v.(type) {
	case nil:
		return ""
	case string:
		return b
	case json.Number:
		return b.String()
	default:
		// anything else fails validation as not a number
		return fmt.Sprint(b)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
