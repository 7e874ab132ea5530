package class

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"SchoolScan/internal/lib/api/response"
	"SchoolScan/internal/lib/sl"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type AddRequest struct {
	Name string `json:"name"`
}

func Add(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.class")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req AddRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if req.Name == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("name is required"))
			return
		}

		class, err := handler.AddClass(r.Context(), req.Name)
		if err != nil {
			logger.Error("add class", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to add class"))
			return
		}

		render.JSON(w, r, response.Ok(class))
	}
}
