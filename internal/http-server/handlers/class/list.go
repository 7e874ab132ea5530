package class

import (
	"log/slog"
	"net/http"

	"SchoolScan/internal/lib/api/response"
	"SchoolScan/internal/lib/sl"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.class")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		activeOnly := r.URL.Query().Get("active") == "true"

		classes, err := handler.ListClasses(r.Context(), activeOnly)
		if err != nil {
			logger.Error("list classes", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list classes"))
			return
		}

		render.JSON(w, r, response.Ok(classes))
	}
}
