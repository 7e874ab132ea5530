package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"SchoolScan/entity"
	"SchoolScan/internal/lib/sl"
)

// SweepResult reports one reconciliation pass.
type SweepResult struct {
	Mode     string         `json:"mode"`
	Students int            `json:"students"`
	Closed   int            `json:"closed"`
	Notified int            `json:"notified"`
	Failures []SweepFailure `json:"failures,omitempty"`
}

type SweepFailure struct {
	IndexNumber string `json:"index_number"`
	Error       string `json:"error"`
}

// RunStartupSweep closes every record dated before today that is still
// open. Safe to call repeatedly: a second pass finds nothing to close.
func (s *Service) RunStartupSweep(ctx context.Context) (*SweepResult, error) {
	return s.sweepBefore(ctx, s.DayOf(s.now()), "startup")
}

// RunPreviousDaySweep runs the backlog sweep and then reports yesterday's
// closures separately. Behaviorally the backlog pass subsumes it; the
// second pass exists for observability.
func (s *Service) RunPreviousDaySweep(ctx context.Context) (*SweepResult, error) {
	today := s.DayOf(s.now())

	result, err := s.sweepBefore(ctx, today, "previous_day")
	if err != nil {
		return result, err
	}

	yesterday := today.AddDate(0, 0, -1)
	leftover, err := s.sweepBefore(ctx, today, "previous_day")
	if err == nil && leftover.Closed > 0 {
		s.log.With(
			slog.Time("day", yesterday),
			slog.Int("closed", leftover.Closed),
		).Warn("previous day records closed on second pass")
		result.Closed += leftover.Closed
		result.Notified += leftover.Notified
		result.Failures = append(result.Failures, leftover.Failures...)
	}

	return result, nil
}

// RunCutoffSweep is the scheduled end-of-day pass: it also closes records
// for today that are still open at the cutoff.
func (s *Service) RunCutoffSweep(ctx context.Context) (*SweepResult, error) {
	tomorrow := s.DayOf(s.now()).AddDate(0, 0, 1)
	return s.sweepBefore(ctx, tomorrow, "cutoff")
}

// sweepBefore closes every open record dated strictly before the given
// day boundary. Failures are isolated per student; only an unreachable
// store fails the sweep as a whole.
func (s *Service) sweepBefore(ctx context.Context, before time.Time, mode string) (*SweepResult, error) {
	result := &SweepResult{Mode: mode}

	if s.repo == nil {
		return result, entity.ErrStoreUnavailable
	}

	students, err := s.repo.FindStudentsWithOpenRecordsBefore(ctx, before)
	if err != nil {
		return result, fmt.Errorf("find open records: %w", err)
	}
	result.Students = len(students)

	for i := range students {
		closed, student, err := s.closeOpenRecords(ctx, students[i].IndexNumber, before)
		if err != nil {
			s.log.With(
				slog.String("index_number", students[i].IndexNumber),
				sl.Err(err),
			).Error("sweep closure failed")
			result.Failures = append(result.Failures, SweepFailure{
				IndexNumber: students[i].IndexNumber,
				Error:       err.Error(),
			})
			continue
		}

		result.Closed += len(closed)

		for _, record := range closed {
			s.afterMutation(ctx, student, record, entity.EventAutoCheckout, *record.LeaveTime)
			result.Notified++
		}
	}

	if result.Closed > 0 || len(result.Failures) > 0 {
		s.log.With(
			slog.String("mode", mode),
			slog.Int("students", result.Students),
			slog.Int("closed", result.Closed),
			slog.Int("failures", len(result.Failures)),
		).Info("reconciliation sweep finished")
	}

	return result, nil
}

// closeOpenRecords reloads one student under the per-student lock and
// stamps every qualifying open record with the cutoff of its own date.
func (s *Service) closeOpenRecords(ctx context.Context, indexNumber string, before time.Time) ([]*entity.AttendanceRecord, *entity.Student, error) {
	unlock := s.lock(indexNumber)
	defer unlock()

	student, err := s.repo.GetStudentByIndex(ctx, indexNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("load student: %w", err)
	}
	if student == nil {
		return nil, nil, entity.ErrStudentNotFound
	}

	updated := student.Clone()

	var closed []*entity.AttendanceRecord
	for _, record := range updated.OpenRecordsBefore(before) {
		leave := s.CutoffOn(record.Date)
		record.Status = entity.StatusLeft
		record.LeaveTime = &leave
		closed = append(closed, record)
	}

	if len(closed) == 0 {
		return nil, updated, nil
	}

	updated.Recalculate()

	if err := s.repo.UpsertStudent(ctx, updated); err != nil {
		return nil, nil, fmt.Errorf("save student: %w", err)
	}

	return closed, updated, nil
}
