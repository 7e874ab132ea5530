package attendance

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"SchoolScan/entity"
	"SchoolScan/internal/lib/api/response"
	"SchoolScan/internal/lib/sl"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type ClearRequest struct {
	IndexNumber string `json:"index_number"`
}

// Clear wipes a student's ledger and derived fields. Destructive.
func Clear(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.attendance")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req ClearRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if req.IndexNumber == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("index_number is required"))
			return
		}

		if err := handler.ClearAttendance(r.Context(), req.IndexNumber); err != nil {
			if errors.Is(err, entity.ErrStudentNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Student not found"))
				return
			}
			logger.Error("clear attendance", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to clear attendance"))
			return
		}

		render.JSON(w, r, response.Ok("Attendance history cleared"))
	}
}
