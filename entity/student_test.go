package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hh, mm int) *time.Time {
	t := time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
	return &t
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusEntered, StatusLeft, StatusPresent, StatusAbsent, StatusLate} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Status("checked_in").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatus_ReportStatus(t *testing.T) {
	assert.Equal(t, StatusPresent, StatusEntered.ReportStatus())
	assert.Equal(t, StatusPresent, StatusLeft.ReportStatus())
	assert.Equal(t, StatusAbsent, StatusAbsent.ReportStatus())
	assert.Equal(t, StatusLate, StatusLate.ReportStatus())
}

func TestStudent_RecordFor(t *testing.T) {
	student := NewStudent("S-001", "Ama Mensah", "JHS 2A", "+233200000001")
	student.AttendanceHistory = []AttendanceRecord{
		{Date: day(2026, time.March, 2), Status: StatusPresent},
		{Date: day(2026, time.March, 3), Status: StatusEntered, EntryTime: at(2026, time.March, 3, 7, 45)},
	}

	record := student.RecordFor(day(2026, time.March, 3))
	require.NotNil(t, record)
	assert.Equal(t, StatusEntered, record.Status)

	// matched by instant, not wall-clock representation
	record = student.RecordFor(day(2026, time.March, 3).In(time.FixedZone("UTC+2", 2*3600)))
	require.NotNil(t, record)
	assert.Equal(t, StatusEntered, record.Status)

	assert.Nil(t, student.RecordFor(day(2026, time.March, 4)))
}

func TestStudent_OpenRecordsBefore(t *testing.T) {
	student := NewStudent("S-002", "Kofi Boateng", "JHS 2A", "")
	student.AttendanceHistory = []AttendanceRecord{
		{Date: day(2026, time.March, 1), Status: StatusLeft, EntryTime: at(2026, time.March, 1, 7, 30), LeaveTime: at(2026, time.March, 1, 15, 0)},
		{Date: day(2026, time.March, 2), Status: StatusEntered, EntryTime: at(2026, time.March, 2, 7, 30)},
		{Date: day(2026, time.March, 3), Status: StatusAbsent},
		{Date: day(2026, time.March, 4), Status: StatusEntered, EntryTime: at(2026, time.March, 4, 7, 30)},
	}

	open := student.OpenRecordsBefore(day(2026, time.March, 4))
	require.Len(t, open, 1)
	assert.True(t, open[0].Date.Equal(day(2026, time.March, 2)))

	// the boundary day itself is excluded
	open = student.OpenRecordsBefore(day(2026, time.March, 5))
	assert.Len(t, open, 2)

	assert.Empty(t, student.OpenRecordsBefore(day(2026, time.March, 1)))
}

func TestStudent_Recalculate(t *testing.T) {
	student := NewStudent("S-003", "Esi Owusu", "JHS 3B", "")

	student.Recalculate()
	assert.Equal(t, 0, student.AttendanceCount)
	assert.Equal(t, float64(0), student.AttendancePercentage)
	assert.True(t, student.LastAttendance.IsZero())

	student.AttendanceHistory = []AttendanceRecord{
		{Date: day(2026, time.March, 1), Status: StatusPresent, EntryTime: at(2026, time.March, 1, 7, 30)},
		{Date: day(2026, time.March, 2), Status: StatusLeft, EntryTime: at(2026, time.March, 2, 7, 30), LeaveTime: at(2026, time.March, 2, 15, 10)},
		{Date: day(2026, time.March, 3), Status: StatusAbsent},
		{Date: day(2026, time.March, 4), Status: StatusEntered, EntryTime: at(2026, time.March, 4, 7, 45)},
	}
	student.Recalculate()

	// left and absent days do not count toward the aggregate
	assert.Equal(t, 2, student.AttendanceCount)
	assert.Equal(t, float64(50), student.AttendancePercentage)
	assert.True(t, student.LastAttendance.Equal(*at(2026, time.March, 4, 7, 45)))
}

func TestStudent_Recalculate_lastAttendancePrefersLeaveTime(t *testing.T) {
	student := NewStudent("S-004", "Yaw Darko", "JHS 1C", "")
	student.AttendanceHistory = []AttendanceRecord{
		{Date: day(2026, time.March, 2), Status: StatusLeft, EntryTime: at(2026, time.March, 2, 7, 30), LeaveTime: at(2026, time.March, 2, 15, 10)},
	}
	student.Recalculate()
	assert.True(t, student.LastAttendance.Equal(*at(2026, time.March, 2, 15, 10)))
}

func TestStudent_AttendedDays(t *testing.T) {
	student := NewStudent("S-005", "Akosua Asante", "JHS 3B", "")
	student.AttendanceHistory = []AttendanceRecord{
		{Date: day(2026, time.March, 1), Status: StatusPresent},
		{Date: day(2026, time.March, 2), Status: StatusLeft},
		{Date: day(2026, time.March, 3), Status: StatusEntered},
		{Date: day(2026, time.March, 4), Status: StatusAbsent},
		{Date: day(2026, time.March, 5), Status: StatusLate},
	}

	// wider rule than Recalculate: left counts here
	assert.Equal(t, 3, student.AttendedDays())

	student.Recalculate()
	assert.Equal(t, 2, student.AttendanceCount)
}

func TestStudent_ClearHistory(t *testing.T) {
	student := NewStudent("S-006", "Kwame Addo", "JHS 2A", "")
	student.AttendanceHistory = []AttendanceRecord{
		{Date: day(2026, time.March, 1), Status: StatusPresent, EntryTime: at(2026, time.March, 1, 7, 30)},
	}
	student.Recalculate()
	require.Equal(t, 1, student.AttendanceCount)

	student.ClearHistory()
	assert.Nil(t, student.AttendanceHistory)
	assert.Equal(t, 0, student.AttendanceCount)
	assert.Equal(t, float64(0), student.AttendancePercentage)
	assert.True(t, student.LastAttendance.IsZero())
}

func TestStudent_Clone(t *testing.T) {
	student := NewStudent("S-007", "Abena Frimpong", "JHS 1C", "+233200000007")
	student.AttendanceHistory = []AttendanceRecord{
		{Date: day(2026, time.March, 2), Status: StatusEntered, EntryTime: at(2026, time.March, 2, 7, 30)},
	}

	dup := student.Clone()
	dup.AttendanceHistory[0].Status = StatusLeft
	dup.AttendanceHistory[0].LeaveTime = at(2026, time.March, 2, 15, 0)
	*dup.AttendanceHistory[0].EntryTime = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	dup.AttendanceHistory = append(dup.AttendanceHistory, AttendanceRecord{Date: day(2026, time.March, 3)})

	assert.Equal(t, StatusEntered, student.AttendanceHistory[0].Status)
	assert.Nil(t, student.AttendanceHistory[0].LeaveTime)
	assert.True(t, student.AttendanceHistory[0].EntryTime.Equal(*at(2026, time.March, 2, 7, 30)))
	assert.Len(t, student.AttendanceHistory, 1)
}

func TestAttendanceRecord_OpenClosed(t *testing.T) {
	record := AttendanceRecord{Date: day(2026, time.March, 2)}
	assert.False(t, record.Open())
	assert.False(t, record.Closed())

	record.EntryTime = at(2026, time.March, 2, 7, 30)
	assert.True(t, record.Open())
	assert.False(t, record.Closed())

	record.LeaveTime = at(2026, time.March, 2, 15, 0)
	assert.False(t, record.Open())
	assert.True(t, record.Closed())
}
