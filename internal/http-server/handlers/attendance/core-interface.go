package attendance

import (
	"context"
	"time"

	"SchoolScan/entity"
	service "SchoolScan/internal/service/attendance"
)

type Core interface {
	MarkAttendance(ctx context.Context, indexNumber string, status entity.Status, actorID string, at *time.Time, location, device string) (*entity.AttendanceRecord, error)
	StudentHistory(ctx context.Context, indexNumber string) (*entity.Student, error)
	AttendanceStats(ctx context.Context) (*entity.AttendanceSummary, error)
	ScanStats(ctx context.Context) ([]entity.ScanStat, error)
	RunSweep(ctx context.Context, mode string) (*service.SweepResult, error)
	ClearAttendance(ctx context.Context, indexNumber string) error
}
