package attendance

import (
	"context"
	"fmt"

	"SchoolScan/entity"
)

// History returns the student with ledger and derived fields, for the
// reporting surface.
func (s *Service) History(ctx context.Context, indexNumber string) (*entity.Student, error) {
	if s.repo == nil {
		return nil, entity.ErrStoreUnavailable
	}

	student, err := s.repo.GetStudentByIndex(ctx, indexNumber)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if student == nil {
		return nil, entity.ErrStudentNotFound
	}

	return student, nil
}

// Stats builds the dashboard summary over the whole ledger. PresentToday
// counts open records for today; AttendedDays uses the wider counting rule
// that also counts left days.
func (s *Service) Stats(ctx context.Context) (*entity.AttendanceSummary, error) {
	if s.repo == nil {
		return nil, entity.ErrStoreUnavailable
	}

	students, err := s.repo.GetAllStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}

	today := s.DayOf(s.now())

	summary := &entity.AttendanceSummary{TotalStudents: len(students)}
	for i := range students {
		st := &students[i]
		if st.Active {
			summary.ActiveStudents++
		}
		summary.AttendedDays += st.AttendedDays()
		summary.RecordedDays += len(st.AttendanceHistory)

		for j := range st.AttendanceHistory {
			r := &st.AttendanceHistory[j]
			if r.Open() {
				summary.OpenRecordTotal++
			}
			if r.Date.Equal(today) {
				if r.Open() {
					summary.PresentToday++
				} else if r.Closed() {
					summary.ClosedToday++
				}
			}
		}
	}

	return summary, nil
}
