package booking

import "github.com/google/uuid"

// Caller is the authenticated principal acting on an appointment.
type Caller struct {
	UserID uuid.UUID
	Role   string
}

// CanAccess decides whether the caller may read or act on the
// appointment. Patients reach their own bookings; doctors reach
// bookings held against their profile. callerDoctorID is the caller's
// doctor profile id, uuid.Nil when the caller has none.
func CanAccess(caller Caller, callerDoctorID uuid.UUID, appt *Appointment) bool {
	switch caller.Role {
	case "patient":
		return appt.PatientID == caller.UserID
	case "doctor":
		return callerDoctorID != uuid.Nil && appt.DoctorID == callerDoctorID
	}
	return false
}
