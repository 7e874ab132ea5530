package attendance

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"SchoolScan/entity"
	"SchoolScan/internal/config"
	"SchoolScan/internal/lib/sl"
)

// Repository is the ledger store consumed by the engine. Saves are whole
// student documents, last writer wins.
type Repository interface {
	GetStudentByIndex(ctx context.Context, indexNumber string) (*entity.Student, error)
	GetAllStudents(ctx context.Context) ([]entity.Student, error)
	GetActiveStudents(ctx context.Context) ([]entity.Student, error)
	FindStudentsWithOpenRecordsBefore(ctx context.Context, day time.Time) ([]entity.Student, error)
	UpsertStudent(ctx context.Context, student *entity.Student) error
	CountActiveStudents(ctx context.Context) (int64, error)
	BumpScanStat(ctx context.Context, device, location string) error
}

// Notifier delivers guardian messages. Attempts are fire-and-forget: the
// engine logs a failure and moves on, it never retries and never blocks a
// ledger mutation on delivery.
type Notifier interface {
	NotifyGuardian(ctx context.Context, student *entity.Student, kind entity.EventKind, when time.Time) error
}

// Feed receives attendance events for live dashboard clients.
type Feed interface {
	BroadcastAttendance(student *entity.Student, record *entity.AttendanceRecord, kind entity.EventKind)
}

type Service struct {
	repo     Repository
	notifier Notifier
	feed     Feed

	loc          *time.Location
	cutoffHour   int
	cutoffMinute int
	now          func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	log *slog.Logger
}

func NewService(conf *config.Config, logger *slog.Logger) *Service {
	loc, err := time.LoadLocation(conf.Attendance.Timezone)
	if err != nil {
		logger.With(
			slog.String("timezone", conf.Attendance.Timezone),
			sl.Err(err),
		).Error("load attendance timezone, falling back to local")
		loc = time.Local
	}

	return &Service{
		loc:          loc,
		cutoffHour:   conf.Attendance.CutoffHour,
		cutoffMinute: conf.Attendance.CutoffMinute,
		now:          time.Now,
		locks:        make(map[string]*sync.Mutex),
		log:          logger.With(sl.Module("attendance")),
	}
}

func (s *Service) SetRepository(repo Repository) {
	s.repo = repo
}

func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) SetFeed(feed Feed) {
	s.feed = feed
}

// Location returns the single calendar used for every day boundary.
func (s *Service) Location() *time.Location {
	return s.loc
}

// DayOf floors a timestamp to midnight of its calendar day in the service
// timezone. Every day-boundary comparison in the engine goes through here.
func (s *Service) DayOf(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

// CutoffOn returns the forced-closure timestamp for the given day: the
// configured wall clock on that day's own date, not the sweep's run time.
func (s *Service) CutoffOn(day time.Time) time.Time {
	day = day.In(s.loc)
	return time.Date(day.Year(), day.Month(), day.Day(), s.cutoffHour, s.cutoffMinute, 0, 0, s.loc)
}

// lock serializes mutations per student. Held only around the in-memory
// read-modify-write, never across notification calls.
func (s *Service) lock(indexNumber string) func() {
	s.mu.Lock()
	l, ok := s.locks[indexNumber]
	if !ok {
		l = &sync.Mutex{}
		s.locks[indexNumber] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// afterMutation runs the best-effort side effects of a committed ledger
// change. Failures are logged and swallowed.
func (s *Service) afterMutation(ctx context.Context, student *entity.Student, record *entity.AttendanceRecord, kind entity.EventKind, when time.Time) {
	if s.notifier != nil {
		if err := s.notifier.NotifyGuardian(ctx, student, kind, when); err != nil {
			s.log.With(
				slog.String("index_number", student.IndexNumber),
				slog.String("event", string(kind)),
				sl.Err(err),
			).Warn("guardian notification failed")
		}
	}

	if s.feed != nil {
		s.feed.BroadcastAttendance(student, record, kind)
	}
}
