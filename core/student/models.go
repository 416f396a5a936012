package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/dereva/core"
)

type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	LicenseNo string    `json:"license_no"`
	Course    string    `json:"course"`
	IsActive  *bool     `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (s *Student) SetActive(active bool) { s.IsActive = &active }

func (s *Student) Active() bool { return s.IsActive != nil && *s.IsActive }

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,min=7"`
	LicenseNo string `json:"license_no"`
	Course    string `json:"course" validate:"required"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.LicenseNo = core.CleanString(ns.LicenseNo, true /* lower */)
	ns.Course = core.CleanString(ns.Course)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(ns.Email)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Name      string `json:"name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,min=7"`
	LicenseNo string `json:"license_no"`
	Course    string `json:"course"`
	IsActive  *bool  `json:"is_active"`
}

func (us *UpdateStudent) Validate(origStu Student, validate *validator.Validate, svc Service) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = origStu.Name
	}

	email := core.CleanString(us.Email, true /* lower */)
	if email != "" {
		us.Email = email
	} else {
		us.Email = origStu.Email
	}

	if us.Phone = core.CleanString(us.Phone); us.Phone == "" {
		us.Phone = origStu.Phone
	}
	if us.LicenseNo = core.CleanString(us.LicenseNo, true /* lower */); us.LicenseNo == "" {
		us.LicenseNo = origStu.LicenseNo
	}
	if us.Course = core.CleanString(us.Course); us.Course == "" {
		us.Course = origStu.Course
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	return svc.CheckUniqueness(us.Email, origStu)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Course      string    `query:"course"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Course == "" && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Course = core.CleanString(qf.Course)
}

// GetFilter selects a single Student by one of its unique attributes.
type GetFilter struct {
	ID    string
	Email string
}
