package directory

import (
	"time"

	"github.com/google/uuid"
)

// AvailableSlot is a weekly availability descriptor declared on a doctor's
// profile. It is stored verbatim and is not consulted by the booking
// conflict check.
type AvailableSlot struct {
	Day         string `json:"day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

var validDays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// UserInfo is the expanded identity projection attached to a doctor record.
type UserInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Doctor maps to the doctor table. Exactly one profile exists per doctor
// identity.
type Doctor struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	UserID          uuid.UUID       `db:"user_id" json:"user_id"`
	Specialization  string          `db:"specialization" json:"specialization"`
	Experience      int             `db:"experience" json:"experience"`
	Education       string          `db:"education" json:"education"`
	ConsultationFee float64         `db:"consultation_fee" json:"consultation_fee"`
	Rating          float64         `db:"rating" json:"rating"`
	TotalReviews    int             `db:"total_reviews" json:"total_reviews"`
	AvailableSlots  []AvailableSlot `db:"available_slots" json:"available_slots"`
	User            *UserInfo       `db:"-" json:"user,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}
