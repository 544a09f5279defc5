package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/docease/docease/pkg/apperror"
)

type mockRepo struct {
	byID map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(ctx context.Context, a *Appointment) error {
	for _, other := range m.byID {
		if other.DoctorID == a.DoctorID &&
			other.AppointmentDate.Equal(a.AppointmentDate) &&
			other.AppointmentTime == a.AppointmentTime &&
			ActiveStatus(other.Status) {
			return apperror.Conflict("Time slot is already booked")
		}
	}
	a.ID = uuid.New()
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, apperror.NotFound("appointment not found")
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	var out []*Appointment
	for _, a := range m.byID {
		if a.PatientID == patientID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	var out []*Appointment
	for _, a := range m.byID {
		if a.DoctorID == doctorID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	a, ok := m.byID[id]
	if !ok {
		return apperror.NotFound("appointment not found")
	}
	a.Status = status
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.byID[id]; !ok {
		return apperror.NotFound("appointment not found")
	}
	delete(m.byID, id)
	return nil
}

func (m *mockRepo) SlotTaken(ctx context.Context, doctorID uuid.UUID, date time.Time, slot string) (bool, error) {
	for _, a := range m.byID {
		if a.DoctorID == doctorID && a.AppointmentDate.Equal(date) &&
			a.AppointmentTime == slot && ActiveStatus(a.Status) {
			return true, nil
		}
	}
	return false, nil
}

type mockDirectory struct {
	doctors map[uuid.UUID]*DoctorInfo
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{doctors: make(map[uuid.UUID]*DoctorInfo)}
}

func (m *mockDirectory) addDoctor(userID uuid.UUID) *DoctorInfo {
	d := &DoctorInfo{ID: uuid.New(), UserID: userID, Name: "Dr Test", Specialization: "Cardiology"}
	m.doctors[d.ID] = d
	return d
}

func (m *mockDirectory) GetDoctor(ctx context.Context, id uuid.UUID) (*DoctorInfo, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, apperror.NotFound("doctor not found")
	}
	return d, nil
}

func (m *mockDirectory) GetDoctorByUser(ctx context.Context, userID uuid.UUID) (*DoctorInfo, error) {
	for _, d := range m.doctors {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, apperror.NotFound("doctor profile not found")
}

type fixture struct {
	svc        *Service
	repo       *mockRepo
	dir        *mockDirectory
	patient    Caller
	doctorUser Caller
	doctor     *DoctorInfo
}

func newFixture() *fixture {
	repo := newMockRepo()
	dir := newMockDirectory()
	doctorUserID := uuid.New()
	d := dir.addDoctor(doctorUserID)
	return &fixture{
		svc:        NewService(repo, dir),
		repo:       repo,
		dir:        dir,
		patient:    Caller{UserID: uuid.New(), Role: "patient"},
		doctorUser: Caller{UserID: doctorUserID, Role: "doctor"},
		doctor:     d,
	}
}

func bookInput(doctorID uuid.UUID) BookInput {
	return BookInput{
		DoctorID:        doctorID,
		AppointmentDate: time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "10:00",
		Reason:          "Annual checkup",
	}
}

func TestCreateAppointment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.Create(ctx, f.patient, bookInput(f.doctor.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("expected pending status, got %q", a.Status)
	}
	if a.PatientID != f.patient.UserID {
		t.Errorf("expected patient %s, got %s", f.patient.UserID, a.PatientID)
	}
	if a.AppointmentDate.Hour() != 0 || a.AppointmentDate.Location() != time.UTC {
		t.Errorf("expected a normalized date, got %v", a.AppointmentDate)
	}
}

func TestCreateRequiresPatientRole(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), f.doctorUser, bookInput(f.doctor.ID))
	if !apperror.IsKind(err, apperror.KindForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture()

	cases := []struct {
		name   string
		mutate func(*BookInput)
	}{
		{"missing doctor", func(in *BookInput) { in.DoctorID = uuid.Nil }},
		{"missing date", func(in *BookInput) { in.AppointmentDate = time.Time{} }},
		{"unknown slot label", func(in *BookInput) { in.AppointmentTime = "13:00" }},
		{"malformed slot", func(in *BookInput) { in.AppointmentTime = "morning" }},
		{"missing reason", func(in *BookInput) { in.Reason = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := bookInput(f.doctor.ID)
			tc.mutate(&in)
			_, err := f.svc.Create(context.Background(), f.patient, in)
			if !apperror.IsKind(err, apperror.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateUnknownDoctor(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), f.patient, bookInput(uuid.New()))
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCreateSlotConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, f.patient, bookInput(f.doctor.ID)); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	other := Caller{UserID: uuid.New(), Role: "patient"}
	_, err := f.svc.Create(ctx, other, bookInput(f.doctor.ID))
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if apperror.Message(err) != "Time slot is already booked" {
		t.Errorf("unexpected message %q", apperror.Message(err))
	}

	// Same date, different slot label is fine.
	in := bookInput(f.doctor.ID)
	in.AppointmentTime = "11:00"
	if _, err := f.svc.Create(ctx, other, in); err != nil {
		t.Errorf("different slot should book: %v", err)
	}
}

func TestCancelFreesSlot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.Create(ctx, f.patient, bookInput(f.doctor.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := f.svc.Cancel(ctx, f.patient, a.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	// The freed slot is bookable again.
	other := Caller{UserID: uuid.New(), Role: "patient"}
	if _, err := f.svc.Create(ctx, other, bookInput(f.doctor.ID)); err != nil {
		t.Errorf("rebooking a cancelled slot: %v", err)
	}
}

func TestCancelRemovesAppointment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.Create(ctx, f.patient, bookInput(f.doctor.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := f.svc.Cancel(ctx, f.patient, a.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	// The record is gone, not merely marked cancelled.
	items, err := f.svc.List(ctx, f.patient)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty list after cancel, got %d item(s)", len(items))
	}
	if _, err := f.svc.Get(ctx, f.patient, a.ID); !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("expected not found after cancel, got %v", err)
	}
	if err := f.svc.Cancel(ctx, f.patient, a.ID); !apperror.IsKind(err, apperror.KindNotFound) {
		t.Errorf("second cancel: expected not found, got %v", err)
	}
}

func TestCancelAnyStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.Create(ctx, f.patient, bookInput(f.doctor.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, f.doctorUser, a.ID, StatusConfirmed); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, f.doctorUser, a.ID, StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Completed appointments can still be removed.
	if err := f.svc.Cancel(ctx, f.patient, a.ID); err != nil {
		t.Errorf("cancel completed appointment: %v", err)
	}
}

func TestStatusLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.Create(ctx, f.patient, bookInput(f.doctor.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	a, err = f.svc.SetStatus(ctx, f.doctorUser, a.ID, StatusConfirmed)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if a.Status != StatusConfirmed {
		t.Errorf("expected confirmed, got %q", a.Status)
	}

	a, err = f.svc.SetStatus(ctx, f.doctorUser, a.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if a.Status != StatusCompleted {
		t.Errorf("expected completed, got %q", a.Status)
	}
}

func TestStatusIllegalTransitions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.Create(ctx, f.patient, bookInput(f.doctor.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// pending cannot jump straight to completed.
	if _, err := f.svc.SetStatus(ctx, f.doctorUser, a.ID, StatusCompleted); !apperror.IsKind(err, apperror.KindValidation) {
		t.Errorf("pending to completed: expected validation error, got %v", err)
	}

	if _, err := f.svc.SetStatus(ctx, f.patient, a.ID, StatusCancelled); err != nil {
		t.Fatalf("cancel via status: %v", err)
	}

	// Cancelled is terminal for status writes.
	if _, err := f.svc.SetStatus(ctx, f.doctorUser, a.ID, StatusConfirmed); !apperror.IsKind(err, apperror.KindValidation) {
		t.Errorf("cancelled to confirmed: expected validation error, got %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, f.patient, a.ID, StatusCancelled); !apperror.IsKind(err, apperror.KindValidation) {
		t.Errorf("cancelled to cancelled: expected validation error, got %v", err)
	}
}

func TestStatusPatientCannotConfirm(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.Create(ctx, f.patient, bookInput(f.doctor.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.svc.SetStatus(ctx, f.patient, a.ID, StatusConfirmed); !apperror.IsKind(err, apperror.KindForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}

	// Patients can still cancel through SetStatus.
	if _, err := f.svc.SetStatus(ctx, f.patient, a.ID, StatusCancelled); err != nil {
		t.Errorf("patient cancel via status: %v", err)
	}
}

func TestGetAccessPolicy(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.Create(ctx, f.patient, bookInput(f.doctor.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Owner and the booked doctor both see it.
	if _, err := f.svc.Get(ctx, f.patient, a.ID); err != nil {
		t.Errorf("patient access: %v", err)
	}
	if _, err := f.svc.Get(ctx, f.doctorUser, a.ID); err != nil {
		t.Errorf("doctor access: %v", err)
	}

	// A stranger patient and an unrelated doctor are both refused.
	stranger := Caller{UserID: uuid.New(), Role: "patient"}
	if _, err := f.svc.Get(ctx, stranger, a.ID); !apperror.IsKind(err, apperror.KindForbidden) {
		t.Errorf("stranger access: expected forbidden, got %v", err)
	}
	otherDoctorUser := uuid.New()
	f.dir.addDoctor(otherDoctorUser)
	if _, err := f.svc.Get(ctx, Caller{UserID: otherDoctorUser, Role: "doctor"}, a.ID); !apperror.IsKind(err, apperror.KindForbidden) {
		t.Errorf("unrelated doctor access: expected forbidden, got %v", err)
	}
}

func TestListScopedToCaller(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, f.patient, bookInput(f.doctor.ID)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	other := Caller{UserID: uuid.New(), Role: "patient"}
	in := bookInput(f.doctor.ID)
	in.AppointmentTime = "11:00"
	if _, err := f.svc.Create(ctx, other, in); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mine, err := f.svc.List(ctx, f.patient)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("expected 1 appointment for patient, got %d", len(mine))
	}

	docs, err := f.svc.List(ctx, f.doctorUser)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("expected 2 appointments for doctor, got %d", len(docs))
	}
}

func TestListDoctorWithoutProfile(t *testing.T) {
	f := newFixture()

	bare := Caller{UserID: uuid.New(), Role: "doctor"}
	items, err := f.svc.List(context.Background(), bare)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty list, got %d", len(items))
	}
}

func TestListForDoctorProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, f.patient, bookInput(f.doctor.ID)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	items, err := f.svc.ListForDoctorProfile(ctx, f.doctorUser, f.doctor.ID)
	if err != nil {
		t.Fatalf("ListForDoctorProfile: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 appointment, got %d", len(items))
	}

	// Another doctor cannot read this profile's schedule.
	otherUser := uuid.New()
	f.dir.addDoctor(otherUser)
	if _, err := f.svc.ListForDoctorProfile(ctx, Caller{UserID: otherUser, Role: "doctor"}, f.doctor.ID); !apperror.IsKind(err, apperror.KindForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}

	// Patients cannot use the doctor schedule route at all.
	if _, err := f.svc.ListForDoctorProfile(ctx, f.patient, f.doctor.ID); !apperror.IsKind(err, apperror.KindForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

// Full booking cycle: book, collide, confirm, cancel, rebook.
func TestBookingCycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.Create(ctx, f.patient, bookInput(f.doctor.ID))
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	other := Caller{UserID: uuid.New(), Role: "patient"}
	if _, err := f.svc.Create(ctx, other, bookInput(f.doctor.ID)); !apperror.IsKind(err, apperror.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if _, err := f.svc.SetStatus(ctx, f.doctorUser, a.ID, StatusConfirmed); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	// Confirmed still holds the slot.
	if _, err := f.svc.Create(ctx, other, bookInput(f.doctor.ID)); !apperror.IsKind(err, apperror.KindConflict) {
		t.Fatalf("expected conflict against confirmed, got %v", err)
	}

	if err := f.svc.Cancel(ctx, f.doctorUser, a.ID); err != nil {
		t.Fatalf("doctor cancel: %v", err)
	}
	if _, err := f.svc.Create(ctx, other, bookInput(f.doctor.ID)); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
}
