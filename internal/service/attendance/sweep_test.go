package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SchoolScan/entity"
)

func openRecordOn(day time.Time, hh, mm int) entity.AttendanceRecord {
	entry := time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, day.Location())
	return entity.AttendanceRecord{
		Date:      day,
		Status:    entity.StatusEntered,
		EntryTime: &entry,
	}
}

func TestStartupSweep_closesOnlyPastDays(t *testing.T) {
	yesterday := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)

	student := entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", "")
	student.AttendanceHistory = []entity.AttendanceRecord{
		openRecordOn(yesterday, 7, 42),
		openRecordOn(today, 7, 40),
	}

	repo := newFakeRepo(student)
	svc := newTestService(repo)

	result, err := svc.RunStartupSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "startup", result.Mode)
	assert.Equal(t, 1, result.Students)
	assert.Equal(t, 1, result.Closed)
	assert.Empty(t, result.Failures)

	stored := repo.stored("S-001")
	past := stored.RecordFor(yesterday)
	require.NotNil(t, past)
	assert.Equal(t, entity.StatusLeft, past.Status)
	require.NotNil(t, past.LeaveTime)

	// stamped with the cutoff of the record's own date, not the sweep time
	assert.True(t, past.LeaveTime.Equal(time.Date(2026, time.March, 4, 18, 30, 0, 0, time.UTC)))

	current := stored.RecordFor(today)
	require.NotNil(t, current)
	assert.True(t, current.Open())
}

func TestStartupSweep_idempotent(t *testing.T) {
	yesterday := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	student := entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", "")
	student.AttendanceHistory = []entity.AttendanceRecord{openRecordOn(yesterday, 7, 42)}

	repo := newFakeRepo(student)
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.RunStartupSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Closed)

	second, err := svc.RunStartupSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Students)
	assert.Equal(t, 0, second.Closed)
}

func TestStartupSweep_closesMultipleBackloggedDays(t *testing.T) {
	student := entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", "")
	student.AttendanceHistory = []entity.AttendanceRecord{
		openRecordOn(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), 7, 42),
		openRecordOn(time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC), 7, 45),
	}

	repo := newFakeRepo(student)
	svc := newTestService(repo)

	result, err := svc.RunStartupSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Closed)

	stored := repo.stored("S-001")
	for _, d := range []int{2, 3} {
		record := stored.RecordFor(time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC))
		require.NotNil(t, record)
		require.NotNil(t, record.LeaveTime)
		assert.True(t, record.LeaveTime.Equal(time.Date(2026, time.March, d, 18, 30, 0, 0, time.UTC)))
	}
}

func TestCutoffSweep_closesToday(t *testing.T) {
	today := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	student := entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", "")
	student.AttendanceHistory = []entity.AttendanceRecord{openRecordOn(today, 7, 40)}

	repo := newFakeRepo(student)
	svc := newTestService(repo)

	result, err := svc.RunCutoffSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "cutoff", result.Mode)
	assert.Equal(t, 1, result.Closed)

	record := repo.stored("S-001").RecordFor(today)
	require.NotNil(t, record)
	assert.Equal(t, entity.StatusLeft, record.Status)
	assert.True(t, record.LeaveTime.Equal(time.Date(2026, time.March, 5, 18, 30, 0, 0, time.UTC)))
}

func TestSweep_perStudentFailureIsolation(t *testing.T) {
	yesterday := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)

	broken := entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", "")
	broken.AttendanceHistory = []entity.AttendanceRecord{openRecordOn(yesterday, 7, 42)}
	healthy := entity.NewStudent("S-002", "Kofi Boateng", "JHS 2A", "")
	healthy.AttendanceHistory = []entity.AttendanceRecord{openRecordOn(yesterday, 7, 50)}

	repo := newFakeRepo(broken, healthy)
	repo.upsertErr["S-001"] = errors.New("write conflict")
	svc := newTestService(repo)

	result, err := svc.RunStartupSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Students)
	assert.Equal(t, 1, result.Closed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "S-001", result.Failures[0].IndexNumber)

	assert.True(t, repo.stored("S-001").RecordFor(yesterday).Open())
	assert.True(t, repo.stored("S-002").RecordFor(yesterday).Closed())
}

func TestSweep_notifiesAutoCheckout(t *testing.T) {
	yesterday := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	student := entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", "+233200000001")
	student.AttendanceHistory = []entity.AttendanceRecord{openRecordOn(yesterday, 7, 42)}

	repo := newFakeRepo(student)
	notifier := &fakeNotifier{}
	feed := &fakeFeed{}
	svc := newTestService(repo)
	svc.SetNotifier(notifier)
	svc.SetFeed(feed)

	result, err := svc.RunStartupSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Notified)
	assert.Equal(t, []entity.EventKind{entity.EventAutoCheckout}, notifier.calls)
	assert.Equal(t, []entity.EventKind{entity.EventAutoCheckout}, feed.events)
}

func TestSweep_notificationFailureStillCloses(t *testing.T) {
	yesterday := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	student := entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", "+233200000001")
	student.AttendanceHistory = []entity.AttendanceRecord{openRecordOn(yesterday, 7, 42)}

	repo := newFakeRepo(student)
	notifier := &fakeNotifier{err: errors.New("graph api 500")}
	svc := newTestService(repo)
	svc.SetNotifier(notifier)

	result, err := svc.RunStartupSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Closed)
	assert.Empty(t, result.Failures)
	assert.True(t, repo.stored("S-001").RecordFor(yesterday).Closed())
}

func TestPreviousDaySweep_reportsBacklog(t *testing.T) {
	student := entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", "")
	student.AttendanceHistory = []entity.AttendanceRecord{
		openRecordOn(time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC), 7, 42),
	}

	repo := newFakeRepo(student)
	svc := newTestService(repo)

	result, err := svc.RunPreviousDaySweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "previous_day", result.Mode)
	assert.Equal(t, 1, result.Closed)
}

func TestSweep_storeFailureAborts(t *testing.T) {
	repo := newFakeRepo()
	repo.listErr = errors.New("no reachable servers")
	svc := newTestService(repo)

	_, err := svc.RunStartupSweep(context.Background())
	assert.Error(t, err)
}

func TestSweep_recalculatesAggregates(t *testing.T) {
	yesterday := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	student := entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", "")
	student.AttendanceHistory = []entity.AttendanceRecord{openRecordOn(yesterday, 7, 42)}
	student.Recalculate()
	require.Equal(t, 1, student.AttendanceCount)

	repo := newFakeRepo(student)
	svc := newTestService(repo)

	_, err := svc.RunStartupSweep(context.Background())
	require.NoError(t, err)

	stored := repo.stored("S-001")
	assert.Equal(t, 0, stored.AttendanceCount)
	assert.Equal(t, 1, stored.AttendedDays())
	assert.True(t, stored.LastAttendance.Equal(time.Date(2026, time.March, 4, 18, 30, 0, 0, time.UTC)))
}
