package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"SchoolScan/entity"
	"SchoolScan/internal/lib/sl"
)

// RecordScan applies one QR scan to the student's ledger. The decision
// depends only on today's record: no record creates an entry, an open
// record closes, a closed record re-opens for a new session. Exactly one
// record exists per student per calendar day.
func (s *Service) RecordScan(ctx context.Context, indexNumber string, scanTime time.Time, location, device string) (*entity.AttendanceRecord, entity.EventKind, error) {
	if s.repo == nil {
		return nil, "", entity.ErrStoreUnavailable
	}
	if scanTime.IsZero() {
		scanTime = s.now()
	}

	unlock := s.lock(indexNumber)

	student, err := s.repo.GetStudentByIndex(ctx, indexNumber)
	if err != nil {
		unlock()
		return nil, "", fmt.Errorf("load student: %w", err)
	}
	if student == nil {
		unlock()
		return nil, "", entity.ErrStudentNotFound
	}

	updated := student.Clone()
	record, kind := s.transition(updated, scanTime, location, device)
	updated.Recalculate()

	if err := s.repo.UpsertStudent(ctx, updated); err != nil {
		unlock()
		return nil, "", fmt.Errorf("save student: %w", err)
	}
	unlock()

	s.log.With(
		slog.String("index_number", indexNumber),
		slog.String("event", string(kind)),
		slog.Time("scan_time", scanTime),
	).Info("scan recorded")

	s.afterMutation(ctx, updated, record, kind, scanTime)

	if device != "" || location != "" {
		if err := s.repo.BumpScanStat(ctx, device, location); err != nil {
			s.log.With(sl.Err(err)).Debug("bump scan stat")
		}
	}

	result := *record
	return &result, kind, nil
}

// transition is the scan state machine. It mutates the student's ledger in
// memory and returns the touched record plus the event kind.
func (s *Service) transition(student *entity.Student, scanTime time.Time, location, device string) (*entity.AttendanceRecord, entity.EventKind) {
	today := s.DayOf(scanTime)

	record := student.RecordFor(today)
	if record == nil {
		entry := scanTime
		student.AttendanceHistory = append(student.AttendanceHistory, entity.AttendanceRecord{
			Date:         today,
			Status:       entity.StatusEntered,
			EntryTime:    &entry,
			ScanLocation: location,
			DeviceInfo:   device,
		})
		return student.RecordFor(today), entity.EventEntry
	}

	switch {
	case record.Closed():
		// Day already closed: a new scan starts a fresh session on the
		// same record rather than a second record for the day.
		entry := scanTime
		record.Status = entity.StatusEntered
		record.EntryTime = &entry
		record.LeaveTime = nil
		return record, entity.EventEntry

	case record.EntryTime != nil:
		leave := scanTime
		record.Status = entity.StatusLeft
		record.LeaveTime = &leave
		return record, entity.EventExit

	default:
		// Record created by the admin path with no timestamps yet.
		entry := scanTime
		record.Status = entity.StatusEntered
		record.EntryTime = &entry
		if record.ScanLocation == "" {
			record.ScanLocation = location
		}
		if record.DeviceInfo == "" {
			record.DeviceInfo = device
		}
		return record, entity.EventEntry
	}
}

// MarkManually is the administrative override: it bypasses the two-scan
// logic and writes an explicit status onto today's record (or the day of
// the supplied timestamp). Statuses outside the closed enum are rejected.
func (s *Service) MarkManually(ctx context.Context, indexNumber string, status entity.Status, actorID string, at *time.Time, location, device string) (*entity.AttendanceRecord, error) {
	if s.repo == nil {
		return nil, entity.ErrStoreUnavailable
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidStatus, status)
	}

	when := s.now()
	if at != nil {
		when = *at
	}
	day := s.DayOf(when)

	unlock := s.lock(indexNumber)
	defer unlock()

	student, err := s.repo.GetStudentByIndex(ctx, indexNumber)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if student == nil {
		return nil, entity.ErrStudentNotFound
	}

	updated := student.Clone()

	record := updated.RecordFor(day)
	if record == nil {
		updated.AttendanceHistory = append(updated.AttendanceHistory, entity.AttendanceRecord{
			Date: day,
		})
		record = updated.RecordFor(day)
	}

	record.Status = status
	switch status {
	case entity.StatusEntered, entity.StatusPresent, entity.StatusLate:
		if record.EntryTime == nil {
			entry := when
			record.EntryTime = &entry
		}
	case entity.StatusLeft:
		if record.LeaveTime == nil {
			leave := when
			record.LeaveTime = &leave
		}
	}
	if record.ScanLocation == "" {
		record.ScanLocation = location
	}
	if record.DeviceInfo == "" {
		if device == "" && actorID != "" {
			device = "manual/" + actorID
		}
		record.DeviceInfo = device
	}

	updated.Recalculate()

	if err := s.repo.UpsertStudent(ctx, updated); err != nil {
		return nil, fmt.Errorf("save student: %w", err)
	}

	s.log.With(
		slog.String("index_number", indexNumber),
		slog.String("status", string(status)),
		slog.String("actor", actorID),
	).Info("attendance marked manually")

	result := *record
	return &result, nil
}

// ClearHistory is the destructive admin purge: it drops the whole ledger
// and zeroes the derived fields.
func (s *Service) ClearHistory(ctx context.Context, indexNumber string) error {
	if s.repo == nil {
		return entity.ErrStoreUnavailable
	}

	unlock := s.lock(indexNumber)
	defer unlock()

	student, err := s.repo.GetStudentByIndex(ctx, indexNumber)
	if err != nil {
		return fmt.Errorf("load student: %w", err)
	}
	if student == nil {
		return entity.ErrStudentNotFound
	}

	updated := student.Clone()
	updated.ClearHistory()

	if err := s.repo.UpsertStudent(ctx, updated); err != nil {
		return fmt.Errorf("save student: %w", err)
	}

	s.log.With(
		slog.String("index_number", indexNumber),
	).Warn("attendance history cleared")

	return nil
}
