package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core"
)

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrEmailExists = errors.New("a student with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedStudents ...Student) error
		CreateStudent(ctx context.Context, stu Student) (Student, error)
		GetStudent(ctx context.Context, filter GetFilter) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Name, Email or LicenseNo.
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		UpdateStudent(ctx context.Context, stu Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		CheckUniqueness(email string, exclStudents ...Student) error
		Create(ctx context.Context, ns NewStudent) (Student, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		GetByEmail(ctx context.Context, email string) (Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(email string, exclStudents ...Student) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclStudents...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	stu := Student{
		Name:      ns.Name,
		Email:     ns.Email,
		Phone:     ns.Phone,
		LicenseNo: ns.LicenseNo,
		Course:    ns.Course,
		CreatedAt: now,
		UpdatedAt: now,
	}
	stu.SetActive(true)
	return svc.repo.CreateStudent(ctx, stu)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (Student, error) {
	return svc.repo.GetStudent(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	stu := Student{
		ID:        id,
		Name:      us.Name,
		Email:     us.Email,
		Phone:     us.Phone,
		LicenseNo: us.LicenseNo,
		Course:    us.Course,
		IsActive:  us.IsActive,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateStudent(ctx, stu)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteStudentsByID(ctx, ids)
	return err
}
