package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/docease/docease/pkg/apperror"
)

// Service owns the booking ledger: creating appointments against a
// doctor's slots, walking them through the status lifecycle, and
// scoping every read to the caller.
type Service struct {
	repo    Repository
	doctors DoctorDirectory
}

func NewService(repo Repository, doctors DoctorDirectory) *Service {
	return &Service{repo: repo, doctors: doctors}
}

// BookInput is the patient's booking request.
type BookInput struct {
	DoctorID        uuid.UUID `json:"doctor_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	Reason          string    `json:"reason"`
	Notes           string    `json:"notes"`
}

// Create books a slot for the calling patient. The repository's unique
// index is the last word on slot ownership; the SlotTaken probe only
// shortcuts the common case.
func (s *Service) Create(ctx context.Context, caller Caller, in BookInput) (*Appointment, error) {
	if caller.Role != "patient" {
		return nil, apperror.Forbidden("only patients can book appointments")
	}
	if in.DoctorID == uuid.Nil {
		return nil, apperror.Validation("doctor id is required")
	}
	if in.AppointmentDate.IsZero() {
		return nil, apperror.Validation("appointment date is required")
	}
	if !ValidSlotTime(in.AppointmentTime) {
		return nil, apperror.Validation("invalid appointment time slot")
	}
	if in.Reason == "" {
		return nil, apperror.Validation("reason is required")
	}

	if _, err := s.doctors.GetDoctor(ctx, in.DoctorID); err != nil {
		return nil, err
	}

	date := NormalizeDate(in.AppointmentDate)
	taken, err := s.repo.SlotTaken(ctx, in.DoctorID, date, in.AppointmentTime)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict("Time slot is already booked")
	}

	a := &Appointment{
		PatientID:       caller.UserID,
		DoctorID:        in.DoctorID,
		AppointmentDate: date,
		AppointmentTime: in.AppointmentTime,
		Reason:          in.Reason,
		Notes:           in.Notes,
		Status:          StatusPending,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, a.ID)
}

// List returns the caller's own appointments. A patient sees bookings
// they made; a doctor sees bookings held against their profile. A
// doctor without a profile has nothing booked yet.
func (s *Service) List(ctx context.Context, caller Caller) ([]*Appointment, error) {
	var items []*Appointment
	var err error
	switch caller.Role {
	case "patient":
		items, err = s.repo.ListByPatient(ctx, caller.UserID)
	case "doctor":
		d, derr := s.doctors.GetDoctorByUser(ctx, caller.UserID)
		if derr != nil {
			if apperror.IsKind(derr, apperror.KindNotFound) {
				return []*Appointment{}, nil
			}
			return nil, derr
		}
		items, err = s.repo.ListByDoctor(ctx, d.ID)
	default:
		return nil, apperror.Forbidden("access denied")
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Appointment{}
	}
	return items, nil
}

// ListForDoctorProfile returns a doctor profile's appointments. Only
// the doctor who owns the profile may read it.
func (s *Service) ListForDoctorProfile(ctx context.Context, caller Caller, doctorID uuid.UUID) ([]*Appointment, error) {
	if caller.Role != "doctor" {
		return nil, apperror.Forbidden("access denied")
	}
	d, err := s.doctors.GetDoctorByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if d.ID != doctorID {
		return nil, apperror.Forbidden("access denied")
	}
	items, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Appointment{}
	}
	return items, nil
}

func (s *Service) callerDoctorID(ctx context.Context, caller Caller) uuid.UUID {
	if caller.Role != "doctor" {
		return uuid.Nil
	}
	d, err := s.doctors.GetDoctorByUser(ctx, caller.UserID)
	if err != nil {
		return uuid.Nil
	}
	return d.ID
}

// Get returns one appointment, visible only to its patient or doctor.
func (s *Service) Get(ctx context.Context, caller Caller, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(caller, s.callerDoctorID(ctx, caller), a) {
		return nil, apperror.Forbidden("access denied")
	}
	return a, nil
}

// SetStatus moves an appointment along the status lifecycle. Doctors
// confirm and complete; either party may cancel. Moves outside the
// lifecycle are rejected.
func (s *Service) SetStatus(ctx context.Context, caller Caller, id uuid.UUID, status string) (*Appointment, error) {
	if !ValidStatus(status) {
		return nil, apperror.Validation("invalid appointment status")
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(caller, s.callerDoctorID(ctx, caller), a) {
		return nil, apperror.Forbidden("access denied")
	}
	if status != StatusCancelled && caller.Role != "doctor" {
		return nil, apperror.Forbidden("only the doctor can change the appointment status")
	}
	if !CanTransition(a.Status, status) {
		return nil, apperror.Validation("cannot change status from " + a.Status + " to " + status)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Cancel removes the appointment outright, freeing its slot. Any
// appointment the caller can access may be removed regardless of
// status; the lifecycle gate applies only to status writes.
func (s *Service) Cancel(ctx context.Context, caller Caller, id uuid.UUID) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanAccess(caller, s.callerDoctorID(ctx, caller), a) {
		return apperror.Forbidden("access denied")
	}
	return s.repo.Delete(ctx, id)
}
