package class

import (
	"context"

	"SchoolScan/entity"
)

type Core interface {
	AddClass(ctx context.Context, name string) (*entity.Class, error)
	ListClasses(ctx context.Context, activeOnly bool) ([]entity.Class, error)
}
