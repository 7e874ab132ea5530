package entity

import (
	"time"

	"github.com/google/uuid"
)

// Status is the attendance status of a single day record. Scan-driven
// transitions only ever produce entered/left; present/absent/late come
// from the manual override path and from report mapping.
type Status string

const (
	StatusEntered Status = "entered"
	StatusLeft    Status = "left"
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
)

func (s Status) Valid() bool {
	switch s {
	case StatusEntered, StatusLeft, StatusPresent, StatusAbsent, StatusLate:
		return true
	}
	return false
}

// ReportStatus maps a scan-driven status onto the status set used by the
// reporting surface. entered and left both display as present; the manual
// statuses pass through unchanged.
func (s Status) ReportStatus() Status {
	switch s {
	case StatusEntered, StatusLeft:
		return StatusPresent
	}
	return s
}

type EventKind string

const (
	EventEntry        EventKind = "entry"
	EventExit         EventKind = "exit"
	EventAutoCheckout EventKind = "auto_checkout"
)

// AttendanceRecord is one calendar day in a student's ledger. Date is
// normalized to midnight in the service timezone. EntryTime and LeaveTime
// are set once each; a set LeaveTime marks the day as closed.
type AttendanceRecord struct {
	Date         time.Time  `json:"date" bson:"date"`
	Status       Status     `json:"status" bson:"status"`
	EntryTime    *time.Time `json:"entry_time,omitempty" bson:"entry_time,omitempty"`
	LeaveTime    *time.Time `json:"leave_time,omitempty" bson:"leave_time,omitempty"`
	ScanLocation string     `json:"scan_location,omitempty" bson:"scan_location,omitempty"`
	DeviceInfo   string     `json:"device_info,omitempty" bson:"device_info,omitempty"`
}

// Open reports whether the day has been entered but not yet closed.
func (r *AttendanceRecord) Open() bool {
	return r.EntryTime != nil && r.LeaveTime == nil
}

func (r *AttendanceRecord) Closed() bool {
	return r.LeaveTime != nil
}

// Student owns its attendance ledger. AttendanceCount, AttendancePercentage
// and LastAttendance are caches derived from AttendanceHistory; Recalculate
// is the only writer of those fields.
type Student struct {
	UUID                 string             `json:"uuid" bson:"uuid"`
	IndexNumber          string             `json:"index_number" bson:"index_number" validate:"required"`
	Name                 string             `json:"name" bson:"name" validate:"required"`
	Class                string             `json:"class" bson:"class" validate:"omitempty"`
	GuardianPhone        string             `json:"guardian_phone" bson:"guardian_phone" validate:"omitempty"`
	Active               bool               `json:"active" bson:"active"`
	CreatedAt            time.Time          `json:"created_at" bson:"created_at"`
	AttendanceHistory    []AttendanceRecord `json:"attendance_history" bson:"attendance_history"`
	AttendanceCount      int                `json:"attendance_count" bson:"attendance_count"`
	AttendancePercentage float64            `json:"attendance_percentage" bson:"attendance_percentage"`
	LastAttendance       time.Time          `json:"last_attendance" bson:"last_attendance"`
}

func NewStudent(indexNumber, name, class, guardianPhone string) *Student {
	return &Student{
		UUID:          uuid.NewString(),
		IndexNumber:   indexNumber,
		Name:          name,
		Class:         class,
		GuardianPhone: guardianPhone,
		Active:        true,
		CreatedAt:     time.Now(),
	}
}

// RecordFor returns the ledger record for the given day, or nil. The day
// must already be normalized to midnight; records are matched by instant so
// the comparison survives the UTC round trip through the store.
func (s *Student) RecordFor(day time.Time) *AttendanceRecord {
	for i := range s.AttendanceHistory {
		if s.AttendanceHistory[i].Date.Equal(day) {
			return &s.AttendanceHistory[i]
		}
	}
	return nil
}

// OpenRecordsBefore returns pointers to every open record dated strictly
// before the given day.
func (s *Student) OpenRecordsBefore(day time.Time) []*AttendanceRecord {
	var open []*AttendanceRecord
	for i := range s.AttendanceHistory {
		r := &s.AttendanceHistory[i]
		if r.Date.Before(day) && r.Open() {
			open = append(open, r)
		}
	}
	return open
}

// Recalculate rewrites the derived fields from the full history. Always a
// from-scratch pass so the caches self-heal after out-of-band edits.
func (s *Student) Recalculate() {
	count := 0
	var last time.Time
	for i := range s.AttendanceHistory {
		r := &s.AttendanceHistory[i]
		if r.Status == StatusPresent || r.Status == StatusEntered {
			count++
		}
		if r.LeaveTime != nil && r.LeaveTime.After(last) {
			last = *r.LeaveTime
		} else if r.LeaveTime == nil && r.EntryTime != nil && r.EntryTime.After(last) {
			last = *r.EntryTime
		}
	}
	s.AttendanceCount = count
	if len(s.AttendanceHistory) == 0 {
		s.AttendancePercentage = 0
	} else {
		s.AttendancePercentage = float64(count) / float64(len(s.AttendanceHistory)) * 100
	}
	s.LastAttendance = last
}

// AttendedDays counts days the student showed up at all, including days
// already closed as left. The reporting aggregates use AttendanceCount
// instead, which does not count left; the two rules are intentionally
// distinct and must not be merged.
func (s *Student) AttendedDays() int {
	count := 0
	for i := range s.AttendanceHistory {
		switch s.AttendanceHistory[i].Status {
		case StatusPresent, StatusEntered, StatusLeft:
			count++
		}
	}
	return count
}

// ClearHistory wipes the ledger and resets every derived field.
func (s *Student) ClearHistory() {
	s.AttendanceHistory = nil
	s.AttendanceCount = 0
	s.AttendancePercentage = 0
	s.LastAttendance = time.Time{}
}

// Clone returns a deep copy, detached from the receiver's history slice.
func (s *Student) Clone() *Student {
	dup := *s
	if s.AttendanceHistory != nil {
		dup.AttendanceHistory = make([]AttendanceRecord, len(s.AttendanceHistory))
		copy(dup.AttendanceHistory, s.AttendanceHistory)
		for i := range dup.AttendanceHistory {
			r := &dup.AttendanceHistory[i]
			if r.EntryTime != nil {
				t := *r.EntryTime
				r.EntryTime = &t
			}
			if r.LeaveTime != nil {
				t := *r.LeaveTime
				r.LeaveTime = &t
			}
		}
	}
	return &dup
}
