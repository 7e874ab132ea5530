package attendance

import (
	"log/slog"
	"net/http"

	"SchoolScan/internal/lib/api/response"
	"SchoolScan/internal/lib/sl"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Stats returns the dashboard attendance summary.
func Stats(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.attendance")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		summary, err := handler.AttendanceStats(r.Context())
		if err != nil {
			logger.Error("attendance stats", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to collect stats"))
			return
		}

		render.JSON(w, r, response.Ok(summary))
	}
}

// Devices returns the per-scanner traffic counters.
func Devices(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.attendance")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		stats, err := handler.ScanStats(r.Context())
		if err != nil {
			logger.Error("scan stats", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to collect scan stats"))
			return
		}

		render.JSON(w, r, response.Ok(stats))
	}
}
