package directory

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	// List returns doctors whose specialization contains the given substring,
	// case-insensitively. An empty filter returns every doctor.
	List(ctx context.Context, specialization string) ([]*Doctor, error)
}
