package installment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/dereva/core"
)

// Item statuses
const (
	ItemStatusPending  = "pending"
	ItemStatusApproved = "approved"
	ItemStatusOverdue  = "overdue"
)

// Plan statuses
const (
	PlanStatusActive    = "active"
	PlanStatusCompleted = "completed"
	PlanStatusOverdue   = "overdue"
)

// Item is one dated, amount-bearing entry within a Plan's schedule.
// It is owned exclusively by its Plan and has no independent identity.
type Item struct {
	InstallmentNumber int             `json:"installment_number"`
	Amount            decimal.Decimal `json:"amount"`
	DueDate           time.Time       `json:"due_date"`
	Status            string          `json:"status"`
	PaidDate          *time.Time      `json:"paid_date,omitempty"`
}

// Plan splits a course fee into a down payment plus N dated installments.
// One active plan exists per (student, course) pair; plans are never
// deleted, only superseded.
type Plan struct {
	ID                string          `json:"id"`
	StudentID         string          `json:"student_id"`
	Course            string          `json:"course"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	DownPayment       decimal.Decimal `json:"down_payment"`
	TotalInstallments int             `json:"total_installments"`
	Schedule          []Item          `json:"schedule"`
	AdminApproved     bool            `json:"admin_approved"`
	Rejected          bool            `json:"rejected"`
	ReviewComment     string          `json:"review_comment,omitempty"`
	ReviewedAt        *time.Time      `json:"reviewed_at,omitempty"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"` // UTC
	UpdatedAt         time.Time       `json:"updated_at"` // UTC
}

// Reviewed reports whether an admin decision has already been recorded.
func (p *Plan) Reviewed() bool { return p.AdminApproved || p.Rejected }

// NewPlan contains information needed to create a new Plan.
type NewPlan struct {
	StudentID         string          `json:"student_id" validate:"required"`
	Course            string          `json:"course" validate:"required"`
	TotalAmount       decimal.Decimal `json:"total_amount" validate:"required"`
	DownPayment       decimal.Decimal `json:"down_payment"`
	TotalInstallments int             `json:"total_installments" validate:"required,min=1"`
	StartDate         string          `json:"start_date" validate:"omitempty,dateonly"`
}

func (np *NewPlan) Validate(validate *validator.Validate) error {
	np.StudentID = core.CleanString(np.StudentID)
	np.Course = core.CleanString(np.Course)
	return validate.Struct(np)
}

// RecordPayment marks a schedule line item as paid.
type RecordPayment struct {
	InstallmentNumber int    `json:"installment_number" validate:"required,min=1"`
	PaidDate          string `json:"paid_date" validate:"omitempty,dateonly"`
}

func (rp RecordPayment) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

type QueryFilter struct {
	StudentID   string    `query:"student_id"`
	Course      string    `query:"course"`
	Status      string    `query:"status"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.Course == "" && qf.Status == "" && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Course = core.CleanString(qf.Course)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

// GetFilter selects a single Plan by ID or by its (student, course) identity.
type GetFilter struct {
	ID        string
	StudentID string
	Course    string
}
