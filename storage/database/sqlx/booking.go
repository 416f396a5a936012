package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/booking"
)

const bookingTable = "booking"

var bookingColumns = []string{"id", "student_id", "instructor_id", "vehicle_reg_no", "course", "date", "time_slot", "status", "created_at", "updated_at"}

type bookingRow struct {
	ID           string    `db:"id"`
	StudentID    string    `db:"student_id"`
	InstructorID string    `db:"instructor_id"`
	VehicleRegNo string    `db:"vehicle_reg_no"`
	Course       string    `db:"course"`
	Date         string    `db:"date"`
	TimeSlot     string    `db:"time_slot"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r bookingRow) toBooking() booking.Booking {
	return booking.Booking{
		ID:           r.ID,
		StudentID:    r.StudentID,
		InstructorID: r.InstructorID,
		VehicleRegNo: r.VehicleRegNo,
		Course:       r.Course,
		Date:         r.Date,
		TimeSlot:     r.TimeSlot,
		Status:       booking.Status(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type bookingRepository struct {
	db *sqlx.DB
}

var _ booking.Repository = (*bookingRepository)(nil)

func NewBookingRepository(db *sqlx.DB) booking.Repository {
	return &bookingRepository{db: db}
}

func (repo *bookingRepository) CreateBooking(ctx context.Context, bkg booking.Booking) (booking.Booking, error) {
	bkg.ID = newID()
	stmt, args, err := psql.Insert(bookingTable).
		Columns(bookingColumns...).
		Values(bkg.ID, bkg.StudentID, bkg.InstructorID, bkg.VehicleRegNo, bkg.Course, bkg.Date, bkg.TimeSlot, string(bkg.Status), bkg.CreatedAt, bkg.UpdatedAt).
		ToSql()
	if err != nil {
		return booking.Booking{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		// the partial unique index rejects concurrent claims on the same slot
		if isUniqueViolation(err) {
			return booking.Booking{}, booking.ErrSlotUnavailable
		}
		return booking.Booking{}, errors.Wrap(err, "inserting booking")
	}
	return bkg, nil
}

func (repo *bookingRepository) GetBooking(ctx context.Context, filter booking.GetFilter) (booking.Booking, error) {
	q := psql.Select(bookingColumns...).From(bookingTable)
	if filter.ID != "" {
		q = q.Where(sq.Eq{"id": filter.ID})
	} else {
		q = q.Where(sq.Eq{
			"instructor_id": filter.InstructorID,
			"date":          filter.Date,
			"time_slot":     filter.TimeSlot,
		}).Where(sq.Eq{"status": []string{string(booking.StatusPending), string(booking.StatusBooked)}})
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return booking.Booking{}, errors.Wrap(err, "building query")
	}
	var row bookingRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return booking.Booking{}, booking.ErrNotFound
		}
		return booking.Booking{}, errors.Wrap(err, "getting booking")
	}
	return row.toBooking(), nil
}

func (repo *bookingRepository) QueryBookings(ctx context.Context, filter *booking.QueryFilter, ordering []core.DBOrdering) ([]booking.Booking, error) {
	q := psql.Select(bookingColumns...).From(bookingTable)
	if filter != nil {
		if filter.StudentID != "" {
			q = q.Where(sq.Eq{"student_id": filter.StudentID})
		}
		if filter.InstructorID != "" {
			q = q.Where(sq.Eq{"instructor_id": filter.InstructorID})
		}
		if filter.VehicleRegNo != "" {
			q = q.Where(sq.Eq{"vehicle_reg_no": filter.VehicleRegNo})
		}
		if filter.Date != "" {
			q = q.Where(sq.Eq{"date": filter.Date})
		}
		if filter.Status != "" {
			q = q.Where(sq.Eq{"status": string(filter.Status)})
		}
	}
	q = applyOrdering(q, ordering)

	stmt, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []bookingRow
	if err = repo.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "querying bookings")
	}
	bookings := make([]booking.Booking, 0, len(rows))
	for _, row := range rows {
		bookings = append(bookings, row.toBooking())
	}
	return bookings, nil
}

func (repo *bookingRepository) UpdateBooking(ctx context.Context, bkg booking.Booking) (booking.Booking, error) {
	stmt, args, err := psql.Update(bookingTable).
		Set("status", string(bkg.Status)).
		Set("updated_at", bkg.UpdatedAt).
		Where(sq.Eq{"id": bkg.ID}).
		Suffix("RETURNING " + columnList(bookingColumns)).
		ToSql()
	if err != nil {
		return booking.Booking{}, errors.Wrap(err, "building query")
	}
	var row bookingRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return booking.Booking{}, booking.ErrNotFound
		}
		return booking.Booking{}, errors.Wrap(err, "updating booking")
	}
	return row.toBooking(), nil
}
