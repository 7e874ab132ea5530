package core

import (
	"context"
	"fmt"
	"time"

	"SchoolScan/entity"
	"SchoolScan/internal/service/attendance"
)

func (c *Core) RecordScan(ctx context.Context, indexNumber string, scanTime time.Time, location, device string) (*entity.AttendanceRecord, entity.EventKind, error) {
	if c.engine == nil {
		return nil, "", fmt.Errorf("attendance engine is not set")
	}
	return c.engine.RecordScan(ctx, indexNumber, scanTime, location, device)
}

func (c *Core) MarkAttendance(ctx context.Context, indexNumber string, status entity.Status, actorID string, at *time.Time, location, device string) (*entity.AttendanceRecord, error) {
	if c.engine == nil {
		return nil, fmt.Errorf("attendance engine is not set")
	}
	return c.engine.MarkManually(ctx, indexNumber, status, actorID, at, location, device)
}

// RunSweep triggers one reconciliation pass by mode. Every mode is safe to
// invoke repeatedly.
func (c *Core) RunSweep(ctx context.Context, mode string) (*attendance.SweepResult, error) {
	if c.engine == nil {
		return nil, fmt.Errorf("attendance engine is not set")
	}

	switch mode {
	case "startup", "backlog":
		return c.engine.RunStartupSweep(ctx)
	case "previous_day":
		return c.engine.RunPreviousDaySweep(ctx)
	case "cutoff":
		return c.engine.RunCutoffSweep(ctx)
	}
	return nil, fmt.Errorf("unknown sweep mode: %s", mode)
}

func (c *Core) StudentHistory(ctx context.Context, indexNumber string) (*entity.Student, error) {
	if c.engine == nil {
		return nil, fmt.Errorf("attendance engine is not set")
	}
	return c.engine.History(ctx, indexNumber)
}

func (c *Core) AttendanceStats(ctx context.Context) (*entity.AttendanceSummary, error) {
	if c.engine == nil {
		return nil, fmt.Errorf("attendance engine is not set")
	}
	return c.engine.Stats(ctx)
}

func (c *Core) ClearAttendance(ctx context.Context, indexNumber string) error {
	if c.engine == nil {
		return fmt.Errorf("attendance engine is not set")
	}
	return c.engine.ClearHistory(ctx, indexNumber)
}

// Stats is the admin bot surface for the /summary command.
func (c *Core) Stats(ctx context.Context) (*entity.AttendanceSummary, error) {
	return c.AttendanceStats(ctx)
}
