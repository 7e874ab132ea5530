package report

import (
	"fmt"
	"log/slog"
	"net/http"

	"SchoolScan/entity"
	"SchoolScan/internal/lib/sl"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/xuri/excelize/v2"
)

// AttendanceReport streams an Excel workbook with one sheet per class plus
// an overview sheet. Percentages come straight from the ledger's derived
// fields; the handler never recomputes them.
func AttendanceReport(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.report")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if handler == nil {
			logger.Error("report service not available")
			http.Error(w, "Report service not available", http.StatusServiceUnavailable)
			return
		}

		students, err := handler.ListStudents(r.Context(), false)
		if err != nil {
			logger.Error("failed to fetch students", sl.Err(err))
			http.Error(w, fmt.Sprintf("Failed to fetch students: %v", err), http.StatusInternalServerError)
			return
		}

		classes, err := handler.ListClasses(r.Context(), false)
		if err != nil {
			logger.Error("failed to fetch classes", sl.Err(err))
			http.Error(w, fmt.Sprintf("Failed to fetch classes: %v", err), http.StatusInternalServerError)
			return
		}

		byClass := make(map[string][]entity.Student)
		for _, st := range students {
			byClass[st.Class] = append(byClass[st.Class], st)
		}

		f := excelize.NewFile()

		writeSheet(f, "Overview", students)
		for _, class := range classes {
			if group, ok := byClass[class.Name]; ok {
				writeSheet(f, class.Name, group)
			}
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="attendance_report.xlsx"`)
		w.WriteHeader(http.StatusOK)
		if err := f.Write(w); err != nil {
			logger.Error("failed to write excel file", sl.Err(err))
			http.Error(w, "Failed to generate Excel", http.StatusInternalServerError)
			return
		}

		logger.Info("attendance report sent successfully", slog.Int("students", len(students)))
	}
}

func writeSheet(f *excelize.File, sheet string, students []entity.Student) {
	f.NewSheet(sheet)
	headers := []string{"Index Number", "Name", "Class", "Status", "Days Present", "Days Recorded", "Attendance %", "Last Attendance"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, st := range students {
		state := "active"
		if !st.Active {
			state = "inactive"
		}
		last := ""
		if !st.LastAttendance.IsZero() {
			last = st.LastAttendance.Format("2006-01-02 15:04")
		}

		values := []interface{}{
			st.IndexNumber,
			st.Name,
			st.Class,
			state,
			st.AttendanceCount,
			len(st.AttendanceHistory),
			fmt.Sprintf("%.1f%%", st.AttendancePercentage),
			last,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
}
