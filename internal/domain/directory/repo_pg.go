package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docease/docease/pkg/apperror"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const doctorCols = `d.id, d.user_id, d.specialization, d.experience, d.education,
	d.consultation_fee, d.rating, d.total_reviews, d.available_slots, d.created_at, d.updated_at,
	u.name, u.email, u.phone`

const doctorFrom = ` FROM doctor d JOIN app_user u ON u.id = d.user_id`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var u UserInfo
	err := row.Scan(&d.ID, &d.UserID, &d.Specialization, &d.Experience, &d.Education,
		&d.ConsultationFee, &d.Rating, &d.TotalReviews, &d.AvailableSlots, &d.CreatedAt, &d.UpdatedAt,
		&u.Name, &u.Email, &u.Phone)
	if err != nil {
		return nil, err
	}
	d.User = &u
	return &d, nil
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	if d.AvailableSlots == nil {
		d.AvailableSlots = []AvailableSlot{}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctor (id, user_id, specialization, experience, education, consultation_fee, available_slots)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		d.ID, d.UserID, d.Specialization, d.Experience, d.Education, d.ConsultationFee, d.AvailableSlots)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.Conflict("doctor profile already exists")
		}
		return apperror.Internal("create doctor", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+doctorFrom+` WHERE d.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("doctor not found")
		}
		return nil, apperror.Internal("get doctor", err)
	}
	return d, nil
}

func (r *repoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+doctorFrom+` WHERE d.user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("doctor profile not found")
		}
		return nil, apperror.Internal("get doctor by user", err)
	}
	return d, nil
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE doctor SET specialization=$2, experience=$3, education=$4,
			consultation_fee=$5, available_slots=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Specialization, d.Experience, d.Education, d.ConsultationFee, d.AvailableSlots)
	if err != nil {
		return apperror.Internal("update doctor", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("doctor not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, specialization string) ([]*Doctor, error) {
	query := `SELECT ` + doctorCols + doctorFrom
	var args []interface{}
	if specialization != "" {
		query += ` WHERE d.specialization ILIKE '%' || $1 || '%'`
		args = append(args, specialization)
	}
	query += ` ORDER BY d.created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Internal("list doctors", err)
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, apperror.Internal("scan doctor", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal("iterate doctors", err)
	}
	return items, nil
}
