package attendance

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"SchoolScan/internal/lib/api/response"
	"SchoolScan/internal/lib/sl"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type SweepRequest struct {
	Mode string `json:"mode"` // startup | previous_day | cutoff
}

// Sweep triggers one reconciliation pass. Every mode is idempotent.
func Sweep(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.attendance")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req SweepRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if req.Mode == "" {
			req.Mode = "startup"
		}

		result, err := handler.RunSweep(r.Context(), req.Mode)
		if err != nil {
			logger.Error("run sweep", slog.String("mode", req.Mode), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Sweep failed"))
			return
		}

		render.JSON(w, r, response.Ok(result))
	}
}
