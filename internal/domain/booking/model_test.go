package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestValidSlotTime(t *testing.T) {
	for _, s := range SlotTimes {
		if !ValidSlotTime(s) {
			t.Errorf("expected %q to be a valid slot", s)
		}
	}
	for _, s := range []string{"13:00", "08:00", "9:00", "", "noon"} {
		if ValidSlotTime(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
	}
	for _, tr := range allowed {
		if !CanTransition(tr[0], tr[1]) {
			t.Errorf("expected %s -> %s to be allowed", tr[0], tr[1])
		}
	}

	denied := [][2]string{
		{StatusPending, StatusCompleted},
		{StatusCancelled, StatusConfirmed},
		{StatusCancelled, StatusCancelled},
		{StatusCompleted, StatusCancelled},
		{StatusCompleted, StatusConfirmed},
	}
	for _, tr := range denied {
		if CanTransition(tr[0], tr[1]) {
			t.Errorf("expected %s -> %s to be denied", tr[0], tr[1])
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	in := time.Date(2026, 9, 14, 15, 42, 7, 0, time.FixedZone("X", 3600))
	got := NormalizeDate(in)
	want := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCanAccess(t *testing.T) {
	patientID := uuid.New()
	doctorProfileID := uuid.New()
	appt := &Appointment{PatientID: patientID, DoctorID: doctorProfileID}

	if !CanAccess(Caller{UserID: patientID, Role: "patient"}, uuid.Nil, appt) {
		t.Error("owning patient should have access")
	}
	if CanAccess(Caller{UserID: uuid.New(), Role: "patient"}, uuid.Nil, appt) {
		t.Error("other patients should be refused")
	}
	if !CanAccess(Caller{UserID: uuid.New(), Role: "doctor"}, doctorProfileID, appt) {
		t.Error("booked doctor should have access")
	}
	if CanAccess(Caller{UserID: uuid.New(), Role: "doctor"}, uuid.New(), appt) {
		t.Error("unrelated doctors should be refused")
	}
	if CanAccess(Caller{UserID: uuid.New(), Role: "doctor"}, uuid.Nil, appt) {
		t.Error("a doctor without a profile should be refused")
	}
	if CanAccess(Caller{UserID: patientID, Role: "admin"}, uuid.Nil, appt) {
		t.Error("unknown roles should be refused")
	}
}
