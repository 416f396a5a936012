package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/instructor"
)

const instructorTable = "instructor"

var instructorColumns = []string{"id", "name", "email", "phone", "license_no", "availability", "is_active", "created_at", "updated_at"}

type instructorRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	LicenseNo    string    `db:"license_no"`
	Availability []byte    `db:"availability"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r instructorRow) toInstructor() (instructor.Instructor, error) {
	ins := instructor.Instructor{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		LicenseNo: r.LicenseNo,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	ins.SetActive(r.IsActive)
	if len(r.Availability) > 0 {
		if err := json.Unmarshal(r.Availability, &ins.Availability); err != nil {
			return instructor.Instructor{}, errors.Wrap(err, "decoding availability")
		}
	}
	return ins, nil
}

func marshalAvailability(availability []instructor.DayAvailability) ([]byte, error) {
	if availability == nil {
		availability = []instructor.DayAvailability{}
	}
	doc, err := json.Marshal(availability)
	return doc, errors.Wrap(err, "encoding availability")
}

type instructorRepository struct {
	db *sqlx.DB
}

var _ instructor.Repository = (*instructorRepository)(nil)

func NewInstructorRepository(db *sqlx.DB) instructor.Repository {
	return &instructorRepository{db: db}
}

func (repo *instructorRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedInstructors ...instructor.Instructor) error {
	q := psql.Select("COUNT(*)").From(instructorTable).Where(sq.Eq{"email": email})
	if len(excludedInstructors) > 0 {
		ids := make([]string, 0, len(excludedInstructors))
		for _, ins := range excludedInstructors {
			ids = append(ids, ins.ID)
		}
		q = q.Where(sq.NotEq{"id": ids})
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	var count int
	if err = repo.db.GetContext(ctx, &count, stmt, args...); err != nil {
		return errors.Wrap(err, "querying instructors")
	}
	if count > 0 {
		return instructor.ErrEmailExists
	}
	return nil
}

func (repo *instructorRepository) CreateInstructor(ctx context.Context, ins instructor.Instructor) (instructor.Instructor, error) {
	ins.ID = newID()
	availability, err := marshalAvailability(ins.Availability)
	if err != nil {
		return instructor.Instructor{}, err
	}

	stmt, args, err := psql.Insert(instructorTable).
		Columns(instructorColumns...).
		Values(ins.ID, ins.Name, ins.Email, ins.Phone, ins.LicenseNo, availability, ins.Active(), ins.CreatedAt, ins.UpdatedAt).
		ToSql()
	if err != nil {
		return instructor.Instructor{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return instructor.Instructor{}, errors.Wrap(err, "inserting instructor")
	}
	return ins, nil
}

func (repo *instructorRepository) GetInstructor(ctx context.Context, filter instructor.GetFilter) (instructor.Instructor, error) {
	q := psql.Select(instructorColumns...).From(instructorTable)
	switch {
	case filter.ID != "":
		q = q.Where(sq.Eq{"id": filter.ID})
	case filter.Email != "":
		q = q.Where(sq.Eq{"email": filter.Email})
	default:
		return instructor.Instructor{}, instructor.ErrNotFound
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return instructor.Instructor{}, errors.Wrap(err, "building query")
	}
	var row instructorRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return instructor.Instructor{}, instructor.ErrNotFound
		}
		return instructor.Instructor{}, errors.Wrap(err, "getting instructor")
	}
	return row.toInstructor()
}

func (repo *instructorRepository) QueryInstructors(ctx context.Context, filter *instructor.QueryFilter, ordering []core.DBOrdering) ([]instructor.Instructor, error) {
	q := psql.Select(instructorColumns...).From(instructorTable)
	if filter != nil {
		if filter.Search != "" {
			pattern := contains(filter.Search)
			q = q.Where(sq.Or{
				sq.ILike{"name": pattern},
				sq.ILike{"email": pattern},
				sq.ILike{"license_no": pattern},
			})
		}
		if filter.IsActive != nil {
			q = q.Where(sq.Eq{"is_active": *filter.IsActive})
		}
	}
	q = applyOrdering(q, ordering)

	stmt, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []instructorRow
	if err = repo.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "querying instructors")
	}
	instructors := make([]instructor.Instructor, 0, len(rows))
	for _, row := range rows {
		ins, err := row.toInstructor()
		if err != nil {
			return nil, err
		}
		instructors = append(instructors, ins)
	}
	return instructors, nil
}

func (repo *instructorRepository) UpdateInstructor(ctx context.Context, ins instructor.Instructor) (instructor.Instructor, error) {
	// only save set fields
	q := psql.Update(instructorTable).Where(sq.Eq{"id": ins.ID})
	if ins.Name != "" {
		q = q.Set("name", ins.Name)
	}
	if ins.Email != "" {
		q = q.Set("email", ins.Email)
	}
	if ins.Phone != "" {
		q = q.Set("phone", ins.Phone)
	}
	if ins.LicenseNo != "" {
		q = q.Set("license_no", ins.LicenseNo)
	}
	if ins.IsActive != nil {
		q = q.Set("is_active", *ins.IsActive)
	}
	if !ins.UpdatedAt.IsZero() {
		q = q.Set("updated_at", ins.UpdatedAt)
	}

	stmt, args, err := q.Suffix("RETURNING " + columnList(instructorColumns)).ToSql()
	if err != nil {
		return instructor.Instructor{}, errors.Wrap(err, "building query")
	}
	var row instructorRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return instructor.Instructor{}, instructor.ErrNotFound
		}
		return instructor.Instructor{}, errors.Wrap(err, "updating instructor")
	}
	return row.toInstructor()
}

func (repo *instructorRepository) SetInstructorAvailability(ctx context.Context, id string, availability []instructor.DayAvailability) (instructor.Instructor, error) {
	doc, err := marshalAvailability(availability)
	if err != nil {
		return instructor.Instructor{}, err
	}

	stmt, args, err := psql.Update(instructorTable).
		Set("availability", doc).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + columnList(instructorColumns)).
		ToSql()
	if err != nil {
		return instructor.Instructor{}, errors.Wrap(err, "building query")
	}
	var row instructorRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return instructor.Instructor{}, instructor.ErrNotFound
		}
		return instructor.Instructor{}, errors.Wrap(err, "updating availability")
	}
	return row.toInstructor()
}

func (repo *instructorRepository) DeleteInstructorsByID(ctx context.Context, ids []string) (int, error) {
	stmt, args, err := psql.Delete(instructorTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting instructors")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "counting deleted instructors")
}
