package instructor

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/dereva/core"
)

// DayAvailability declares an instructor's bookable time slots for one
// calendar date. Slots are "HH:MM-HH:MM" ranges.
type DayAvailability struct {
	Date      string   `json:"date" validate:"required,dateonly"`
	TimeSlots []string `json:"time_slots" validate:"required,min=1,dive,timeslot"`
}

type Instructor struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	LicenseNo    string            `json:"license_no"`
	Availability []DayAvailability `json:"availability"`
	IsActive     *bool             `json:"is_active"`
	CreatedAt    time.Time         `json:"created_at"` // UTC
	UpdatedAt    time.Time         `json:"updated_at"` // UTC
}

func (ins *Instructor) SetActive(active bool) { ins.IsActive = &active }

func (ins *Instructor) Active() bool { return ins.IsActive != nil && *ins.IsActive }

// SlotsOn returns the declared time slots for the given date, nil when the
// instructor has no availability entry for it.
func (ins *Instructor) SlotsOn(date string) []string {
	for _, day := range ins.Availability {
		if day.Date == date {
			return day.TimeSlots
		}
	}
	return nil
}

// NewInstructor contains information needed to register a new Instructor.
type NewInstructor struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,min=7"`
	LicenseNo string `json:"license_no" validate:"required"`
}

func (ni *NewInstructor) Validate(validate *validator.Validate, svc Service) error {
	ni.Name = core.CleanString(ni.Name)
	ni.Email = core.CleanString(ni.Email, true /* lower */)
	ni.Phone = core.CleanString(ni.Phone)
	ni.LicenseNo = core.CleanString(ni.LicenseNo, true /* lower */)

	if err := validate.Struct(ni); err != nil {
		return err
	}
	return svc.CheckUniqueness(ni.Email)
}

// UpdateInstructor defines what information may be provided to modify an existing Instructor.
type UpdateInstructor struct {
	Name      string `json:"name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,min=7"`
	LicenseNo string `json:"license_no"`
	IsActive  *bool  `json:"is_active"`
}

func (ui *UpdateInstructor) Validate(origIns Instructor, validate *validator.Validate, svc Service) error {
	name := core.CleanString(ui.Name)
	if name != "" {
		ui.Name = name
	} else {
		ui.Name = origIns.Name
	}

	email := core.CleanString(ui.Email, true /* lower */)
	if email != "" {
		ui.Email = email
	} else {
		ui.Email = origIns.Email
	}

	if ui.Phone = core.CleanString(ui.Phone); ui.Phone == "" {
		ui.Phone = origIns.Phone
	}
	if ui.LicenseNo = core.CleanString(ui.LicenseNo, true /* lower */); ui.LicenseNo == "" {
		ui.LicenseNo = origIns.LicenseNo
	}

	if err := validate.Struct(ui); err != nil {
		return err
	}
	return svc.CheckUniqueness(ui.Email, origIns)
}

// SetAvailability replaces the instructor's declared availability.
type SetAvailability struct {
	Availability []DayAvailability `json:"availability" validate:"required,dive"`
}

func (sa *SetAvailability) Validate(validate *validator.Validate) error {
	return validate.Struct(sa)
}

type QueryFilter struct {
	Search   string `query:"search"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// GetFilter selects a single Instructor by one of its unique attributes.
type GetFilter struct {
	ID    string
	Email string
}
