package booking

import (
	"time"

	"github.com/google/uuid"
)

// Appointment status lifecycle. New bookings start pending; a doctor
// moves them forward, either side can cancel an active one.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// SlotTimes are the bookable labels of a working day. A slot is a
// label, not a timestamp; the date carries the day.
var SlotTimes = []string{"09:00", "10:00", "11:00", "12:00", "14:00", "15:00", "16:00", "17:00"}

func ValidSlotTime(t string) bool {
	for _, s := range SlotTimes {
		if s == t {
			return true
		}
	}
	return false
}

// transitions lists the allowed status moves. Cancelled and completed
// are terminal.
var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// ActiveStatus reports whether an appointment in this status still
// holds its slot.
func ActiveStatus(s string) bool {
	return s == StatusPending || s == StatusConfirmed
}

// PatientInfo is the patient view embedded in a resolved appointment.
type PatientInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// DoctorInfo is the doctor view embedded in a resolved appointment.
type DoctorInfo struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
}

type Appointment struct {
	ID              uuid.UUID    `json:"id"`
	PatientID       uuid.UUID    `json:"patient_id"`
	DoctorID        uuid.UUID    `json:"doctor_id"`
	AppointmentDate time.Time    `json:"appointment_date"`
	AppointmentTime string       `json:"appointment_time"`
	Reason          string       `json:"reason"`
	Status          string       `json:"status"`
	Notes           string       `json:"notes,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Patient         *PatientInfo `json:"patient,omitempty"`
	Doctor          *DoctorInfo  `json:"doctor,omitempty"`
}

// NormalizeDate strips the time of day so a booking date compares by
// calendar day regardless of how the client sent it.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
