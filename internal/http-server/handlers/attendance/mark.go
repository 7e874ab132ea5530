package attendance

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"SchoolScan/entity"
	"SchoolScan/internal/lib/api/cont"
	"SchoolScan/internal/lib/api/response"
	"SchoolScan/internal/lib/sl"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type MarkRequest struct {
	IndexNumber string `json:"index_number"`
	Status      string `json:"status"`
	At          string `json:"at,omitempty"` // RFC3339
	Location    string `json:"scan_location,omitempty"`
	Device      string `json:"device_info,omitempty"`
}

// Mark is the administrative override: it writes an explicit status without
// the two-scan logic.
func Mark(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.attendance")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req MarkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if req.IndexNumber == "" || req.Status == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("index_number and status are required"))
			return
		}

		var at *time.Time
		if req.At != "" {
			parsed, err := time.Parse(time.RFC3339, req.At)
			if err != nil {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("at must be RFC3339"))
				return
			}
			at = &parsed
		}

		actor := ""
		if user := cont.GetUser(r.Context()); user != nil {
			actor = user.Username
		}

		record, err := handler.MarkAttendance(r.Context(), req.IndexNumber, entity.Status(req.Status), actor, at, req.Location, req.Device)
		if err != nil {
			switch {
			case errors.Is(err, entity.ErrInvalidStatus):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("Invalid status"))
			case errors.Is(err, entity.ErrStudentNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Student not found"))
			default:
				logger.Error("mark attendance", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to mark attendance"))
			}
			return
		}

		render.JSON(w, r, response.Ok(record))
	}
}
