package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/student"
)

const studentTable = "student"

var studentColumns = []string{"id", "name", "email", "phone", "license_no", "course", "is_active", "created_at", "updated_at"}

type studentRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	LicenseNo string    `db:"license_no"`
	Course    string    `db:"course"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r studentRow) toStudent() student.Student {
	stu := student.Student{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		LicenseNo: r.LicenseNo,
		Course:    r.Course,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	stu.SetActive(r.IsActive)
	return stu
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedStudents ...student.Student) error {
	q := psql.Select("COUNT(*)").From(studentTable).Where(sq.Eq{"email": email})
	if len(excludedStudents) > 0 {
		ids := make([]string, 0, len(excludedStudents))
		for _, stu := range excludedStudents {
			ids = append(ids, stu.ID)
		}
		q = q.Where(sq.NotEq{"id": ids})
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	var count int
	if err = repo.db.GetContext(ctx, &count, stmt, args...); err != nil {
		return errors.Wrap(err, "querying students")
	}
	if count > 0 {
		return student.ErrEmailExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	stu.ID = newID()
	stmt, args, err := psql.Insert(studentTable).
		Columns(studentColumns...).
		Values(stu.ID, stu.Name, stu.Email, stu.Phone, stu.LicenseNo, stu.Course, stu.Active(), stu.CreatedAt, stu.UpdatedAt).
		ToSql()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return stu, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, filter student.GetFilter) (student.Student, error) {
	q := psql.Select(studentColumns...).From(studentTable)
	switch {
	case filter.ID != "":
		q = q.Where(sq.Eq{"id": filter.ID})
	case filter.Email != "":
		q = q.Where(sq.Eq{"email": filter.Email})
	default:
		return student.Student{}, student.ErrNotFound
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "building query")
	}
	var row studentRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	q := psql.Select(studentColumns...).From(studentTable)
	if filter != nil {
		if filter.Search != "" {
			pattern := contains(filter.Search)
			q = q.Where(sq.Or{
				sq.ILike{"name": pattern},
				sq.ILike{"email": pattern},
				sq.ILike{"license_no": pattern},
			})
		}
		if filter.Course != "" {
			q = q.Where(sq.Eq{"course": filter.Course})
		}
		if filter.IsActive != nil {
			q = q.Where(sq.Eq{"is_active": *filter.IsActive})
		}
		if !filter.CreatedFrom.IsZero() {
			q = q.Where(sq.GtOrEq{"created_at": filter.CreatedFrom})
		}
		if !filter.CreatedTo.IsZero() {
			q = q.Where(sq.LtOrEq{"created_at": filter.CreatedTo})
		}
	}
	q = applyOrdering(q, ordering)

	stmt, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []studentRow
	if err = repo.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	// only save set fields
	q := psql.Update(studentTable).Where(sq.Eq{"id": stu.ID})
	if stu.Name != "" {
		q = q.Set("name", stu.Name)
	}
	if stu.Email != "" {
		q = q.Set("email", stu.Email)
	}
	if stu.Phone != "" {
		q = q.Set("phone", stu.Phone)
	}
	if stu.LicenseNo != "" {
		q = q.Set("license_no", stu.LicenseNo)
	}
	if stu.Course != "" {
		q = q.Set("course", stu.Course)
	}
	if stu.IsActive != nil {
		q = q.Set("is_active", *stu.IsActive)
	}
	if !stu.UpdatedAt.IsZero() {
		q = q.Set("updated_at", stu.UpdatedAt)
	}

	stmt, args, err := q.Suffix("RETURNING " + columnList(studentColumns)).ToSql()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "building query")
	}
	var row studentRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids []string) (int, error) {
	stmt, args, err := psql.Delete(studentTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting students")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "counting deleted students")
}
