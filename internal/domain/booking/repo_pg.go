package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docease/docease/pkg/apperror"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `a.id, a.patient_id, a.doctor_id, a.appointment_date, a.appointment_time,
	a.reason, a.status, a.notes, a.created_at, a.updated_at,
	p.name, p.email, p.phone,
	d.id, d.user_id, du.name, d.specialization`

const apptFrom = ` FROM appointment a
	JOIN app_user p ON p.id = a.patient_id
	JOIN doctor d ON d.id = a.doctor_id
	JOIN app_user du ON du.id = d.user_id`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var p PatientInfo
	var d DoctorInfo
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate, &a.AppointmentTime,
		&a.Reason, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		&p.Name, &p.Email, &p.Phone,
		&d.ID, &d.UserID, &d.Name, &d.Specialization)
	if err != nil {
		return nil, err
	}
	a.Patient = &p
	a.Doctor = &d
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment (id, patient_id, doctor_id, appointment_date, appointment_time, reason, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.PatientID, a.DoctorID, a.AppointmentDate, a.AppointmentTime, a.Reason, a.Status, a.Notes)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" &&
			strings.Contains(pgErr.ConstraintName, "appointment_active_slot") {
			return apperror.Conflict("Time slot is already booked")
		}
		return apperror.Internal("create appointment", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.pool.QueryRow(ctx, `SELECT `+apptCols+apptFrom+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("appointment not found")
		}
		return nil, apperror.Internal("get appointment", err)
	}
	return a, nil
}

func (r *repoPG) list(ctx context.Context, where string, arg interface{}) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+apptCols+apptFrom+` WHERE `+where+` ORDER BY a.appointment_date ASC, a.appointment_time ASC`, arg)
	if err != nil {
		return nil, apperror.Internal("list appointments", err)
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, apperror.Internal("scan appointment", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal("iterate appointments", err)
	}
	return items, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return r.list(ctx, `a.patient_id = $1`, patientID)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	return r.list(ctx, `a.doctor_id = $1`, doctorID)
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE appointment SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return apperror.Internal("update appointment status", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("appointment not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return apperror.Internal("delete appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("appointment not found")
	}
	return nil
}

func (r *repoPG) SlotTaken(ctx context.Context, doctorID uuid.UUID, date time.Time, slot string) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointment
			WHERE doctor_id = $1 AND appointment_date = $2 AND appointment_time = $3
			  AND status IN ('pending', 'confirmed')
		)`, doctorID, date, slot).Scan(&taken)
	if err != nil {
		return false, apperror.Internal("check slot", err)
	}
	return taken, nil
}
