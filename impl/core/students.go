package core

import (
	"context"
	"fmt"

	"SchoolScan/entity"
	"SchoolScan/internal/lib/sl"
	"github.com/google/uuid"
)

func (c *Core) CreateStudent(ctx context.Context, indexNumber, name, class, guardianPhone string) (*entity.Student, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository is not set")
	}

	existing, err := c.repo.GetStudentByIndex(ctx, indexNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to look up student: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("student %s already exists", indexNumber)
	}

	student := entity.NewStudent(indexNumber, name, class, guardianPhone)
	if err := c.repo.UpsertStudent(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	if class != "" {
		if err := c.ensureClass(ctx, class); err != nil {
			c.log.With(sl.Err(err)).Warn("ensure class")
		}
	}

	return student, nil
}

func (c *Core) ensureClass(ctx context.Context, name string) error {
	existing, err := c.repo.GetClassByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return c.repo.UpsertClass(ctx, entity.NewClass(uuid.NewString(), name))
}

func (c *Core) GetStudent(ctx context.Context, indexNumber string) (*entity.Student, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository is not set")
	}

	student, err := c.repo.GetStudentByIndex(ctx, indexNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, entity.ErrStudentNotFound
	}

	return student, nil
}

func (c *Core) ListStudents(ctx context.Context, activeOnly bool) ([]entity.Student, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository is not set")
	}

	if activeOnly {
		return c.repo.GetActiveStudents(ctx)
	}
	return c.repo.GetAllStudents(ctx)
}

func (c *Core) SetStudentActive(ctx context.Context, indexNumber string, active bool) error {
	if c.repo == nil {
		return fmt.Errorf("repository is not set")
	}

	student, err := c.repo.GetStudentByIndex(ctx, indexNumber)
	if err != nil {
		return fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return entity.ErrStudentNotFound
	}

	return c.repo.SetStudentActive(ctx, indexNumber, active)
}

func (c *Core) AddClass(ctx context.Context, name string) (*entity.Class, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository is not set")
	}

	existing, err := c.repo.GetClassByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up class: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	class := entity.NewClass(uuid.NewString(), name)
	if err := c.repo.UpsertClass(ctx, class); err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}

	return class, nil
}

func (c *Core) ListClasses(ctx context.Context, activeOnly bool) ([]entity.Class, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository is not set")
	}

	if activeOnly {
		return c.repo.GetActiveClasses(ctx)
	}
	return c.repo.GetAllClasses(ctx)
}

func (c *Core) ScanStats(ctx context.Context) ([]entity.ScanStat, error) {
	if c.repo == nil {
		return nil, fmt.Errorf("repository is not set")
	}
	return c.repo.GetAllScanStat(ctx)
}
