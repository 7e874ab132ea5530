package scan

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"SchoolScan/entity"
	"SchoolScan/internal/lib/api/response"
	"SchoolScan/internal/lib/sl"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type RecordRequest struct {
	IndexNumber string `json:"index_number"`
	ScanTime    string `json:"scan_time,omitempty"` // RFC3339, defaults to server time
	Location    string `json:"scan_location,omitempty"`
	Device      string `json:"device_info,omitempty"`
}

type RecordResponse struct {
	Event  entity.EventKind         `json:"event"`
	Record *entity.AttendanceRecord `json:"record"`
}

// Record applies one QR scan to a student's ledger.
func Record(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.scan")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("attendance engine not available")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Attendance engine not available"))
			return
		}

		var req RecordRequest
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

		var scanTime time.Time
		if req.ScanTime != "" {
			parsed, err := time.Parse(time.RFC3339, req.ScanTime)
			if err != nil {
				logger.Error("invalid scan_time", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("scan_time must be RFC3339"))
				return
			}
			scanTime = parsed
		}

		record, kind, err := handler.RecordScan(r.Context(), req.IndexNumber, scanTime, req.Location, req.Device)
		if err != nil {
			if errors.Is(err, entity.ErrStudentNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Student not found"))
				return
			}
			logger.Error("record scan", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to record scan"))
			return
		}

		render.JSON(w, r, response.Ok(RecordResponse{Event: kind, Record: record}))
	}
}
