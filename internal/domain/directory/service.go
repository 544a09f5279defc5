package directory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/docease/docease/pkg/apperror"
)

// Service owns doctor profile lifecycle and the public directory listing.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// ProfileInput carries the doctor-editable fields of a profile.
type ProfileInput struct {
	Specialization  string          `json:"specialization"`
	Experience      int             `json:"experience"`
	Education       string          `json:"education"`
	ConsultationFee float64         `json:"consultation_fee"`
	AvailableSlots  []AvailableSlot `json:"available_slots"`
}

func (in *ProfileInput) validate() error {
	if in.Specialization == "" {
		return apperror.Validation("specialization is required")
	}
	if in.Experience < 0 {
		return apperror.Validation("experience must not be negative")
	}
	if in.ConsultationFee < 0 {
		return apperror.Validation("consultation fee must not be negative")
	}
	for _, s := range in.AvailableSlots {
		if !validDays[strings.ToLower(s.Day)] {
			return apperror.Validation("invalid day in available slots: " + s.Day)
		}
		if s.StartTime == "" || s.EndTime == "" {
			return apperror.Validation("available slots need a start and end time")
		}
	}
	return nil
}

// CreateProfile attaches a doctor profile to a user. A user carries at
// most one profile; the unique index on user_id backs this up under
// concurrent requests.
func (s *Service) CreateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*Doctor, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByUserID(ctx, userID); err == nil {
		return nil, apperror.Conflict("doctor profile already exists")
	} else if !apperror.IsKind(err, apperror.KindNotFound) {
		return nil, err
	}

	d := &Doctor{
		UserID:          userID,
		Specialization:  in.Specialization,
		Experience:      in.Experience,
		Education:       in.Education,
		ConsultationFee: in.ConsultationFee,
		AvailableSlots:  in.AvailableSlots,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, d.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// List returns doctors whose specialization contains the given filter,
// or every doctor when the filter is empty.
func (s *Service) List(ctx context.Context, specialization string) ([]*Doctor, error) {
	items, err := s.repo.List(ctx, specialization)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Doctor{}
	}
	return items, nil
}

// UpdateOwn updates the calling doctor's profile. The caller is
// identified by user, never by a profile id taken from the request.
func (s *Service) UpdateOwn(ctx context.Context, userID uuid.UUID, in ProfileInput) (*Doctor, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	d, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.Specialization = in.Specialization
	d.Experience = in.Experience
	d.Education = in.Education
	d.ConsultationFee = in.ConsultationFee
	if in.AvailableSlots != nil {
		d.AvailableSlots = in.AvailableSlots
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, d.ID)
}
