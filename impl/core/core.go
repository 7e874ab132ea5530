package core

import (
	"context"
	"log/slog"
	"time"

	"SchoolScan/entity"
	"SchoolScan/internal/lib/sl"
	"SchoolScan/internal/service/attendance"
)

type Repository interface {
	CheckApiKey(key string) (string, error)
	GenerateApiKey(username string) (string, error)

	GetStudentByIndex(ctx context.Context, indexNumber string) (*entity.Student, error)
	GetAllStudents(ctx context.Context) ([]entity.Student, error)
	GetActiveStudents(ctx context.Context) ([]entity.Student, error)
	UpsertStudent(ctx context.Context, student *entity.Student) error
	SetStudentActive(ctx context.Context, indexNumber string, active bool) error
	CountActiveStudents(ctx context.Context) (int64, error)

	GetClassByName(ctx context.Context, name string) (*entity.Class, error)
	GetAllClasses(ctx context.Context) ([]entity.Class, error)
	GetActiveClasses(ctx context.Context) ([]entity.Class, error)
	UpsertClass(ctx context.Context, class *entity.Class) error

	GetAllScanStat(ctx context.Context) ([]entity.ScanStat, error)
}

// Engine is the attendance ledger engine behind the HTTP surface.
type Engine interface {
	RecordScan(ctx context.Context, indexNumber string, scanTime time.Time, location, device string) (*entity.AttendanceRecord, entity.EventKind, error)
	MarkManually(ctx context.Context, indexNumber string, status entity.Status, actorID string, at *time.Time, location, device string) (*entity.AttendanceRecord, error)
	RunStartupSweep(ctx context.Context) (*attendance.SweepResult, error)
	RunPreviousDaySweep(ctx context.Context) (*attendance.SweepResult, error)
	RunCutoffSweep(ctx context.Context) (*attendance.SweepResult, error)
	History(ctx context.Context, indexNumber string) (*entity.Student, error)
	Stats(ctx context.Context) (*entity.AttendanceSummary, error)
	ClearHistory(ctx context.Context, indexNumber string) error
}

type Core struct {
	repo    Repository
	engine  Engine
	authKey string
	keys    map[string]string
	log     *slog.Logger
}

func New(log *slog.Logger) *Core {
	return &Core{
		log:  log.With(sl.Module("core")),
		keys: make(map[string]string),
	}
}

func (c *Core) SetRepository(repo Repository) {
	c.repo = repo
}

func (c *Core) SetEngine(engine Engine) {
	c.engine = engine
}

func (c *Core) SetAuthKey(key string) {
	c.authKey = key
}
