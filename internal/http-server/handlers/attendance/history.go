package attendance

import (
	"errors"
	"log/slog"
	"net/http"

	"SchoolScan/entity"
	"SchoolScan/internal/lib/api/response"
	"SchoolScan/internal/lib/sl"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// History returns a student's full ledger with the derived aggregates.
func History(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.attendance")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		indexNumber := r.URL.Query().Get("index_number")
		if indexNumber == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("index_number is required"))
			return
		}

		student, err := handler.StudentHistory(r.Context(), indexNumber)
		if err != nil {
			if errors.Is(err, entity.ErrStudentNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Student not found"))
				return
			}
			logger.Error("student history", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to load history"))
			return
		}

		render.JSON(w, r, response.Ok(student))
	}
}
