package attendance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SchoolScan/entity"
)

type fakeRepo struct {
	mu       sync.Mutex
	students map[string]*entity.Student

	upsertErr map[string]error
	findErr   error
	listErr   error

	scanStats map[string]int
}

func newFakeRepo(students ...*entity.Student) *fakeRepo {
	repo := &fakeRepo{
		students:  make(map[string]*entity.Student),
		upsertErr: make(map[string]error),
		scanStats: make(map[string]int),
	}
	for _, s := range students {
		repo.students[s.IndexNumber] = s
	}
	return repo
}

func (r *fakeRepo) GetStudentByIndex(_ context.Context, indexNumber string) (*entity.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	student, ok := r.students[indexNumber]
	if !ok {
		return nil, nil
	}
	return student.Clone(), nil
}

func (r *fakeRepo) GetAllStudents(_ context.Context) ([]entity.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	keys := make([]string, 0, len(r.students))
	for k := range r.students {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]entity.Student, 0, len(keys))
	for _, k := range keys {
		out = append(out, *r.students[k].Clone())
	}
	return out, nil
}

func (r *fakeRepo) GetActiveStudents(ctx context.Context) ([]entity.Student, error) {
	all, err := r.GetAllStudents(ctx)
	if err != nil {
		return nil, err
	}
	var active []entity.Student
	for _, s := range all {
		if s.Active {
			active = append(active, s)
		}
	}
	return active, nil
}

func (r *fakeRepo) FindStudentsWithOpenRecordsBefore(ctx context.Context, day time.Time) ([]entity.Student, error) {
	all, err := r.GetAllStudents(ctx)
	if err != nil {
		return nil, err
	}
	var matched []entity.Student
	for _, s := range all {
		if len(s.OpenRecordsBefore(day)) > 0 {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

func (r *fakeRepo) UpsertStudent(_ context.Context, student *entity.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.upsertErr[student.IndexNumber]; err != nil {
		return err
	}
	r.students[student.IndexNumber] = student.Clone()
	return nil
}

func (r *fakeRepo) CountActiveStudents(ctx context.Context) (int64, error) {
	active, err := r.GetActiveStudents(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(active)), nil
}

func (r *fakeRepo) BumpScanStat(_ context.Context, device, location string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scanStats[device+"|"+location]++
	return nil
}

func (r *fakeRepo) stored(indexNumber string) *entity.Student {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.students[indexNumber].Clone()
}

type fakeNotifier struct {
	mu    sync.Mutex
	err   error
	calls []entity.EventKind
}

func (n *fakeNotifier) NotifyGuardian(_ context.Context, _ *entity.Student, kind entity.EventKind, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, kind)
	return n.err
}

type fakeFeed struct {
	mu     sync.Mutex
	events []entity.EventKind
}

func (f *fakeFeed) BroadcastAttendance(_ *entity.Student, _ *entity.AttendanceRecord, kind entity.EventKind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, kind)
}

var testClock = time.Date(2026, time.March, 5, 10, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := &Service{
		repo:         repo,
		loc:          time.UTC,
		cutoffHour:   18,
		cutoffMinute: 30,
		now:          func() time.Time { return testClock },
		locks:        make(map[string]*sync.Mutex),
		log:          log,
	}
	return svc
}

func TestRecordScan_firstScanOpensDay(t *testing.T) {
	repo := newFakeRepo(entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", "+233200000001"))
	svc := newTestService(repo)

	scanTime := time.Date(2026, time.March, 5, 7, 42, 0, 0, time.UTC)
	record, kind, err := svc.RecordScan(context.Background(), "S-001", scanTime, "main gate", "scanner-01")
	require.NoError(t, err)

	assert.Equal(t, entity.EventEntry, kind)
	assert.Equal(t, entity.StatusEntered, record.Status)
	require.NotNil(t, record.EntryTime)
	assert.True(t, record.EntryTime.Equal(scanTime))
	assert.Nil(t, record.LeaveTime)
	assert.Equal(t, "main gate", record.ScanLocation)
	assert.Equal(t, "scanner-01", record.DeviceInfo)

	stored := repo.stored("S-001")
	require.Len(t, stored.AttendanceHistory, 1)
	assert.Equal(t, 1, stored.AttendanceCount)
	assert.Equal(t, float64(100), stored.AttendancePercentage)
}

func TestRecordScan_secondScanClosesDay(t *testing.T) {
	repo := newFakeRepo(entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", ""))
	svc := newTestService(repo)
	ctx := context.Background()

	entry := time.Date(2026, time.March, 5, 7, 42, 0, 0, time.UTC)
	leave := time.Date(2026, time.March, 5, 15, 5, 0, 0, time.UTC)

	_, _, err := svc.RecordScan(ctx, "S-001", entry, "main gate", "scanner-01")
	require.NoError(t, err)

	record, kind, err := svc.RecordScan(ctx, "S-001", leave, "main gate", "scanner-01")
	require.NoError(t, err)

	assert.Equal(t, entity.EventExit, kind)
	assert.Equal(t, entity.StatusLeft, record.Status)
	require.NotNil(t, record.LeaveTime)
	assert.True(t, record.LeaveTime.Equal(leave))
	assert.True(t, record.EntryTime.Equal(entry))

	// still one record for the day, and left no longer counts as attended
	stored := repo.stored("S-001")
	require.Len(t, stored.AttendanceHistory, 1)
	assert.Equal(t, 0, stored.AttendanceCount)
	assert.True(t, stored.LastAttendance.Equal(leave))
}

func TestRecordScan_thirdScanReopensSameRecord(t *testing.T) {
	repo := newFakeRepo(entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", ""))
	svc := newTestService(repo)
	ctx := context.Background()

	times := []time.Time{
		time.Date(2026, time.March, 5, 7, 42, 0, 0, time.UTC),
		time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 5, 13, 30, 0, 0, time.UTC),
	}
	for _, ts := range times[:2] {
		_, _, err := svc.RecordScan(ctx, "S-001", ts, "", "")
		require.NoError(t, err)
	}

	record, kind, err := svc.RecordScan(ctx, "S-001", times[2], "", "")
	require.NoError(t, err)

	assert.Equal(t, entity.EventEntry, kind)
	assert.Equal(t, entity.StatusEntered, record.Status)
	assert.True(t, record.EntryTime.Equal(times[2]))
	assert.Nil(t, record.LeaveTime)

	require.Len(t, repo.stored("S-001").AttendanceHistory, 1)
}

func TestRecordScan_newDayNewRecord(t *testing.T) {
	repo := newFakeRepo(entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", ""))
	svc := newTestService(repo)
	ctx := context.Background()

	_, _, err := svc.RecordScan(ctx, "S-001", time.Date(2026, time.March, 4, 7, 42, 0, 0, time.UTC), "", "")
	require.NoError(t, err)
	_, _, err = svc.RecordScan(ctx, "S-001", time.Date(2026, time.March, 5, 7, 40, 0, 0, time.UTC), "", "")
	require.NoError(t, err)

	stored := repo.stored("S-001")
	require.Len(t, stored.AttendanceHistory, 2)
	assert.False(t, stored.AttendanceHistory[0].Date.Equal(stored.AttendanceHistory[1].Date))
}

func TestRecordScan_unknownStudent(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, _, err := svc.RecordScan(context.Background(), "S-404", testClock, "", "")
	assert.ErrorIs(t, err, entity.ErrStudentNotFound)
}

func TestRecordScan_saveFailureLeavesLedgerUntouched(t *testing.T) {
	student := entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", "")
	repo := newFakeRepo(student)
	repo.upsertErr["S-001"] = errors.New("connection reset")
	svc := newTestService(repo)

	_, _, err := svc.RecordScan(context.Background(), "S-001", testClock, "", "")
	require.Error(t, err)

	// all-or-nothing: the stored document did not change
	assert.Empty(t, repo.stored("S-001").AttendanceHistory)
}

func TestRecordScan_notificationFailureDoesNotFailScan(t *testing.T) {
	repo := newFakeRepo(entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", "+233200000001"))
	notifier := &fakeNotifier{err: errors.New("graph api 500")}
	svc := newTestService(repo)
	svc.SetNotifier(notifier)

	_, _, err := svc.RecordScan(context.Background(), "S-001", testClock, "", "")
	require.NoError(t, err)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, entity.EventEntry, notifier.calls[0])
	require.Len(t, repo.stored("S-001").AttendanceHistory, 1)
}

func TestRecordScan_broadcastsToFeed(t *testing.T) {
	repo := newFakeRepo(entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", ""))
	feed := &fakeFeed{}
	svc := newTestService(repo)
	svc.SetFeed(feed)
	ctx := context.Background()

	_, _, err := svc.RecordScan(ctx, "S-001", time.Date(2026, time.March, 5, 7, 42, 0, 0, time.UTC), "", "")
	require.NoError(t, err)
	_, _, err = svc.RecordScan(ctx, "S-001", time.Date(2026, time.March, 5, 15, 0, 0, 0, time.UTC), "", "")
	require.NoError(t, err)

	assert.Equal(t, []entity.EventKind{entity.EventEntry, entity.EventExit}, feed.events)
}

func TestRecordScan_bumpsScanStat(t *testing.T) {
	repo := newFakeRepo(entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", ""))
	svc := newTestService(repo)
	ctx := context.Background()

	_, _, err := svc.RecordScan(ctx, "S-001", time.Date(2026, time.March, 5, 7, 42, 0, 0, time.UTC), "main gate", "scanner-01")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.scanStats["scanner-01|main gate"])

	// no provenance, no stat row
	_, _, err = svc.RecordScan(ctx, "S-001", time.Date(2026, time.March, 5, 15, 0, 0, 0, time.UTC), "", "")
	require.NoError(t, err)
	assert.Len(t, repo.scanStats, 1)
}

func TestRecordScan_zeroScanTimeUsesClock(t *testing.T) {
	repo := newFakeRepo(entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", ""))
	svc := newTestService(repo)

	record, _, err := svc.RecordScan(context.Background(), "S-001", time.Time{}, "", "")
	require.NoError(t, err)
	assert.True(t, record.EntryTime.Equal(testClock))
}

func TestMarkManually_rejectsUnknownStatus(t *testing.T) {
	repo := newFakeRepo(entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", ""))
	svc := newTestService(repo)

	_, err := svc.MarkManually(context.Background(), "S-001", entity.Status("checked_in"), "admin-1", nil, "", "")
	assert.ErrorIs(t, err, entity.ErrInvalidStatus)
	assert.Empty(t, repo.stored("S-001").AttendanceHistory)
}

func TestMarkManually_absentLeavesTimestampsEmpty(t *testing.T) {
	repo := newFakeRepo(entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", ""))
	svc := newTestService(repo)

	record, err := svc.MarkManually(context.Background(), "S-001", entity.StatusAbsent, "admin-1", nil, "", "")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusAbsent, record.Status)
	assert.Nil(t, record.EntryTime)
	assert.Nil(t, record.LeaveTime)
	assert.Equal(t, "manual/admin-1", record.DeviceInfo)

	stored := repo.stored("S-001")
	require.Len(t, stored.AttendanceHistory, 1)
	assert.Equal(t, 0, stored.AttendanceCount)
}

func TestMarkManually_lateStampsEntryTime(t *testing.T) {
	repo := newFakeRepo(entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", ""))
	svc := newTestService(repo)

	at := time.Date(2026, time.March, 4, 9, 15, 0, 0, time.UTC)
	record, err := svc.MarkManually(context.Background(), "S-001", entity.StatusLate, "admin-1", &at, "office", "")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusLate, record.Status)
	require.NotNil(t, record.EntryTime)
	assert.True(t, record.EntryTime.Equal(at))
	assert.True(t, record.Date.Equal(time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "office", record.ScanLocation)
}

func TestMarkManually_overridesScanRecord(t *testing.T) {
	repo := newFakeRepo(entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", ""))
	svc := newTestService(repo)
	ctx := context.Background()

	_, _, err := svc.RecordScan(ctx, "S-001", time.Date(2026, time.March, 5, 7, 42, 0, 0, time.UTC), "main gate", "scanner-01")
	require.NoError(t, err)

	record, err := svc.MarkManually(ctx, "S-001", entity.StatusAbsent, "admin-1", nil, "", "")
	require.NoError(t, err)

	// same day record rewritten in place, original provenance kept
	assert.Equal(t, entity.StatusAbsent, record.Status)
	assert.Equal(t, "scanner-01", record.DeviceInfo)
	require.Len(t, repo.stored("S-001").AttendanceHistory, 1)
}

func TestClearHistory(t *testing.T) {
	repo := newFakeRepo(entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", ""))
	svc := newTestService(repo)
	ctx := context.Background()

	_, _, err := svc.RecordScan(ctx, "S-001", testClock, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.ClearHistory(ctx, "S-001"))

	stored := repo.stored("S-001")
	assert.Empty(t, stored.AttendanceHistory)
	assert.Equal(t, 0, stored.AttendanceCount)
	assert.True(t, stored.LastAttendance.IsZero())
}

func TestClearHistory_unknownStudent(t *testing.T) {
	svc := newTestService(newFakeRepo())
	assert.ErrorIs(t, svc.ClearHistory(context.Background(), "S-404"), entity.ErrStudentNotFound)
}

func TestStoreUnavailable(t *testing.T) {
	svc := newTestService(newFakeRepo())
	svc.repo = nil

	_, _, err := svc.RecordScan(context.Background(), "S-001", testClock, "", "")
	assert.ErrorIs(t, err, entity.ErrStoreUnavailable)

	_, err = svc.MarkManually(context.Background(), "S-001", entity.StatusPresent, "", nil, "", "")
	assert.ErrorIs(t, err, entity.ErrStoreUnavailable)

	_, err = svc.Stats(context.Background())
	assert.ErrorIs(t, err, entity.ErrStoreUnavailable)
}

func TestDayOf(t *testing.T) {
	svc := newTestService(newFakeRepo())
	loc, err := time.LoadLocation("Africa/Accra")
	require.NoError(t, err)
	svc.loc = loc

	// 23:30 UTC in Accra is still the same calendar day
	day := svc.DayOf(time.Date(2026, time.March, 5, 23, 30, 0, 0, time.UTC))
	assert.True(t, day.Equal(time.Date(2026, time.March, 5, 0, 0, 0, 0, loc)))
}

func TestStats(t *testing.T) {
	active := entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", "")
	inactive := entity.NewStudent("S-002", "Kofi Boateng", "JHS 2A", "")
	inactive.Active = false

	repo := newFakeRepo(active, inactive)
	svc := newTestService(repo)
	ctx := context.Background()

	// yesterday closed, today open
	_, _, err := svc.RecordScan(ctx, "S-001", time.Date(2026, time.March, 4, 7, 42, 0, 0, time.UTC), "", "")
	require.NoError(t, err)
	_, _, err = svc.RecordScan(ctx, "S-001", time.Date(2026, time.March, 4, 15, 0, 0, 0, time.UTC), "", "")
	require.NoError(t, err)
	_, _, err = svc.RecordScan(ctx, "S-001", time.Date(2026, time.March, 5, 7, 40, 0, 0, time.UTC), "", "")
	require.NoError(t, err)

	summary, err := svc.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalStudents)
	assert.Equal(t, 1, summary.ActiveStudents)
	assert.Equal(t, 1, summary.PresentToday)
	assert.Equal(t, 0, summary.ClosedToday)
	assert.Equal(t, 2, summary.AttendedDays)
	assert.Equal(t, 2, summary.RecordedDays)
	assert.Equal(t, 1, summary.OpenRecordTotal)
}

func TestHistory(t *testing.T) {
	repo := newFakeRepo(entity.NewStudent("S-001", "Ama Mensah", "JHS 2A", ""))
	svc := newTestService(repo)

	student, err := svc.History(context.Background(), "S-001")
	require.NoError(t, err)
	assert.Equal(t, "S-001", student.IndexNumber)

	_, err = svc.History(context.Background(), "S-404")
	assert.ErrorIs(t, err, entity.ErrStudentNotFound)
}
