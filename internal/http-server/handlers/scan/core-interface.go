package scan

import (
	"context"
	"time"

	"SchoolScan/entity"
)

type Core interface {
	RecordScan(ctx context.Context, indexNumber string, scanTime time.Time, location, device string) (*entity.AttendanceRecord, entity.EventKind, error)
}
