package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SlotTaken reports whether an active appointment already holds the
	// doctor's slot. The insert path still races through the unique
	// index; this is the fast path for a clean error.
	SlotTaken(ctx context.Context, doctorID uuid.UUID, date time.Time, slot string) (bool, error)
}

// DoctorDirectory is the slice of the doctor directory the booking
// service needs. The server wires it from the directory service.
type DoctorDirectory interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*DoctorInfo, error)
	GetDoctorByUser(ctx context.Context, userID uuid.UUID) (*DoctorInfo, error)
}
