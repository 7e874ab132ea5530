package student

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type CreateRequest struct {
	IndexNumber   string `json:"index_number"`
	Name          string `json:"name"`
	Class         string `json:"class"`
	GuardianPhone string `json:"guardian_phone"`
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.IndexNumber == "" || req.Name == "" {
			http.Error(w, "index_number and name are required", http.StatusBadRequest)
			return
		}

		student, err := handler.CreateStudent(r.Context(), req.IndexNumber, req.Name, req.Class, req.GuardianPhone)
		if err != nil {
			log.Error("Failed to create student", slog.Any("error", err))
			http.Error(w, "Failed to create student", http.StatusInternalServerError)
			return
		}

		var response struct {
			UUID        string `json:"uuid"`
			IndexNumber string `json:"index_number"`
			Name        string `json:"name"`
		}

		response.UUID = student.UUID
		response.IndexNumber = student.IndexNumber
		response.Name = student.Name

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
