package student

import (
	"context"

	"SchoolScan/entity"
)

type Core interface {
	CreateStudent(ctx context.Context, indexNumber, name, class, guardianPhone string) (*entity.Student, error)
	GetStudent(ctx context.Context, indexNumber string) (*entity.Student, error)
	ListStudents(ctx context.Context, activeOnly bool) ([]entity.Student, error)
	SetStudentActive(ctx context.Context, indexNumber string, active bool) error
}
