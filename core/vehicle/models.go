package vehicle

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/dereva/core"
)

// Transmissions
const (
	TransmissionManual    = "manual"
	TransmissionAutomatic = "automatic"
)

type Vehicle struct {
	ID           string    `json:"id"`
	RegNo        string    `json:"reg_no"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Transmission string    `json:"transmission"`
	Year         int       `json:"year"`
	IsActive     *bool     `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (v *Vehicle) SetActive(active bool) { v.IsActive = &active }

func (v *Vehicle) Active() bool { return v.IsActive != nil && *v.IsActive }

// NewVehicle contains information needed to register a new Vehicle.
type NewVehicle struct {
	RegNo        string `json:"reg_no" validate:"required"`
	Make         string `json:"make" validate:"required"`
	Model        string `json:"model" validate:"required"`
	Transmission string `json:"transmission" validate:"required,oneof=manual automatic"`
	Year         int    `json:"year" validate:"omitempty,min=1980"`
}

func (nv *NewVehicle) Validate(validate *validator.Validate, svc Service) error {
	nv.RegNo = core.CleanString(nv.RegNo, true /* lower */)
	nv.Make = core.CleanString(nv.Make)
	nv.Model = core.CleanString(nv.Model)
	nv.Transmission = core.CleanString(nv.Transmission, true /* lower */)

	if err := validate.Struct(nv); err != nil {
		return err
	}
	return svc.CheckUniqueness(nv.RegNo)
}

// UpdateVehicle defines what information may be provided to modify an existing Vehicle.
type UpdateVehicle struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	Transmission string `json:"transmission" validate:"omitempty,oneof=manual automatic"`
	Year         int    `json:"year" validate:"omitempty,min=1980"`
	IsActive     *bool  `json:"is_active"`
}

func (uv *UpdateVehicle) Validate(origVeh Vehicle, validate *validator.Validate) error {
	if uv.Make = core.CleanString(uv.Make); uv.Make == "" {
		uv.Make = origVeh.Make
	}
	if uv.Model = core.CleanString(uv.Model); uv.Model == "" {
		uv.Model = origVeh.Model
	}
	if uv.Transmission = core.CleanString(uv.Transmission, true /* lower */); uv.Transmission == "" {
		uv.Transmission = origVeh.Transmission
	}
	if uv.Year == 0 {
		uv.Year = origVeh.Year
	}
	return validate.Struct(uv)
}

type QueryFilter struct {
	Search       string `query:"search"`
	Transmission string `query:"transmission"`
	IsActive     *bool  `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Transmission == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Transmission = core.CleanString(qf.Transmission, true /* lower */)
}

// GetFilter selects a single Vehicle by one of its unique attributes.
type GetFilter struct {
	ID    string
	RegNo string
}
