package instructor

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core"
)

var (
	// errors
	ErrNotFound    = errors.New("instructor not found")
	ErrEmailExists = errors.New("an instructor with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedInstructors ...Instructor) error
		CreateInstructor(ctx context.Context, ins Instructor) (Instructor, error)
		GetInstructor(ctx context.Context, filter GetFilter) (Instructor, error)
		// QueryInstructors applies AND operation on available QueryFilter fields.
		QueryInstructors(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Instructor, error)
		UpdateInstructor(ctx context.Context, ins Instructor) (Instructor, error)
		// SetInstructorAvailability replaces the availability document for the instructor.
		SetInstructorAvailability(ctx context.Context, id string, availability []DayAvailability) (Instructor, error)
		DeleteInstructorsByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		CheckUniqueness(email string, exclInstructors ...Instructor) error
		Create(ctx context.Context, ni NewInstructor) (Instructor, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Instructor, error)
		GetByID(ctx context.Context, id string) (Instructor, error)
		Update(ctx context.Context, id string, ui UpdateInstructor) (Instructor, error)
		SetAvailability(ctx context.Context, id string, sa SetAvailability) (Instructor, error)
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

func (svc *service) CheckUniqueness(email string, exclInstructors ...Instructor) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclInstructors...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ni NewInstructor) (Instructor, error) {
	now := time.Now().UTC()
	ins := Instructor{
		Name:      ni.Name,
		Email:     ni.Email,
		Phone:     ni.Phone,
		LicenseNo: ni.LicenseNo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ins.SetActive(true)
	return svc.repo.CreateInstructor(ctx, ins)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Instructor, error) {
	return svc.repo.QueryInstructors(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Instructor, error) {
	return svc.repo.GetInstructor(ctx, GetFilter{ID: id})
}

func (svc *service) Update(ctx context.Context, id string, ui UpdateInstructor) (Instructor, error) {
	ins := Instructor{
		ID:        id,
		Name:      ui.Name,
		Email:     ui.Email,
		Phone:     ui.Phone,
		LicenseNo: ui.LicenseNo,
		IsActive:  ui.IsActive,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateInstructor(ctx, ins)
}

func (svc *service) SetAvailability(ctx context.Context, id string, sa SetAvailability) (Instructor, error) {
	return svc.repo.SetInstructorAvailability(ctx, id, sa.Availability)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteInstructorsByID(ctx, ids)
	return err
}
