package maintenance

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/dereva/core"
)

// Record is one service entry in a vehicle's maintenance history.
type Record struct {
	ID           string          `json:"id"`
	VehicleRegNo string          `json:"vehicle_reg_no"`
	ServiceDate  time.Time       `json:"service_date"`
	ServiceType  string          `json:"service_type"`
	Cost         decimal.Decimal `json:"cost"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"` // UTC
	UpdatedAt    time.Time       `json:"updated_at"` // UTC
}

// NewRecord contains information needed to log a new maintenance Record.
type NewRecord struct {
	VehicleRegNo string          `json:"vehicle_reg_no" validate:"required"`
	ServiceDate  string          `json:"service_date" validate:"required,dateonly"`
	ServiceType  string          `json:"service_type" validate:"required"`
	Cost         decimal.Decimal `json:"cost" validate:"required"`
	Description  string          `json:"description"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.VehicleRegNo = core.CleanString(nr.VehicleRegNo, true /* lower */)
	nr.ServiceType = core.CleanString(nr.ServiceType)
	nr.Description = core.CleanString(nr.Description)

	if err := validate.Struct(nr); err != nil {
		return err
	}
	if nr.Cost.IsNegative() {
		return core.NewValidationError(nil, core.FieldError{Field: "cost", Error: "cost cannot be negative"})
	}
	return nil
}

type QueryFilter struct {
	VehicleRegNo string    `query:"vehicle_reg_no"`
	ServiceType  string    `query:"service_type"`
	DateFrom     time.Time `query:"date_from"`
	DateTo       time.Time `query:"date_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.VehicleRegNo == "" && qf.ServiceType == "" && qf.DateFrom.IsZero() && qf.DateTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.VehicleRegNo = core.CleanString(qf.VehicleRegNo, true /* lower */)
	qf.ServiceType = core.CleanString(qf.ServiceType)
}
