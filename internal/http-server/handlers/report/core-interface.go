package report

import (
	"context"

	"SchoolScan/entity"
)

type Core interface {
	ListStudents(ctx context.Context, activeOnly bool) ([]entity.Student, error)
	ListClasses(ctx context.Context, activeOnly bool) ([]entity.Class, error)
}
