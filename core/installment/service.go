package installment

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/student"
)

var (
	// errors
	ErrNotFound        = errors.New("installment plan not found")
	ErrPlanExists      = errors.New("an active installment plan already exists for this student and course")
	ErrAlreadyReviewed = errors.New("installment plan has already been reviewed")
	ErrItemNotFound    = errors.New("installment not found in schedule")
	ErrItemAlreadyPaid = errors.New("installment has already been paid")
)

type (
	Repository interface {
		CreatePlan(ctx context.Context, plan Plan) (Plan, error)
		GetPlan(ctx context.Context, filter GetFilter) (Plan, error)
		// QueryPlans applies AND operation on available QueryFilter fields.
		QueryPlans(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Plan, error)
		// UpdatePlan replaces the plan document (schedule included) as a
		// single-row write.
		UpdatePlan(ctx context.Context, plan Plan) (Plan, error)
	}

	Service interface {
		Create(ctx context.Context, np NewPlan) (Plan, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Plan, error)
		GetByID(ctx context.Context, id string) (Plan, error)
		RecordPayment(ctx context.Context, planID string, rp RecordPayment) (Plan, error)
		Approve(ctx context.Context, planID, comment string) (Plan, error)
		Reject(ctx context.Context, planID, comment string) (Plan, error)
	}

	service struct {
		repo       Repository
		studentSvc student.Service
		mailSvc    core.EmailService
		conf       *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, studentSvc student.Service, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:       repo,
		studentSvc: studentSvc,
		mailSvc:    mailSvc,
		conf:       conf,
	}
}

func (svc *service) Create(ctx context.Context, np NewPlan) (Plan, error) {
	// one active plan per (student, course); a rejected plan does not block
	// new terms.
	existing, err := svc.repo.GetPlan(ctx, GetFilter{StudentID: np.StudentID, Course: np.Course})
	if err == nil && !existing.Rejected {
		return Plan{}, ErrPlanExists
	} else if err != nil && errors.Cause(err) != ErrNotFound {
		return Plan{}, errors.Wrap(err, "checking existing plan")
	}

	if _, err = svc.studentSvc.GetByID(ctx, np.StudentID); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return Plan{}, core.NewValidationError(err, core.FieldError{Field: "student_id", Error: "unknown student"})
		}
		return Plan{}, errors.Wrap(err, "finding student")
	}

	now := time.Now().UTC()
	start := now
	if np.StartDate != "" {
		start, _ = time.Parse(core.DateFormat, np.StartDate) // validated upstream
	}
	schedule, err := GenerateSchedule(np.TotalAmount, np.DownPayment, np.TotalInstallments, start)
	if err != nil {
		if errors.Cause(err) == ErrInvalidPlan {
			return Plan{}, core.NewValidationError(err)
		}
		return Plan{}, errors.Wrap(err, "generating schedule")
	}

	plan := Plan{
		StudentID:         np.StudentID,
		Course:            np.Course,
		TotalAmount:       np.TotalAmount,
		DownPayment:       np.DownPayment,
		TotalInstallments: np.TotalInstallments,
		Schedule:          schedule,
		Status:            PlanStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	plan.Refresh(now)
	return svc.repo.CreatePlan(ctx, plan)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Plan, error) {
	plans, err := svc.repo.QueryPlans(ctx, filter, ordering)
	if err != nil {
		return nil, err
	}
	// overdue detection is lazy; derive as of now on every read
	now := time.Now()
	for i := range plans {
		plans[i].Refresh(now)
	}
	return plans, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Plan, error) {
	plan, err := svc.repo.GetPlan(ctx, GetFilter{ID: id})
	if err != nil {
		return Plan{}, err
	}
	plan.Refresh(time.Now())
	return plan, nil
}

func (svc *service) RecordPayment(ctx context.Context, planID string, rp RecordPayment) (Plan, error) {
	plan, err := svc.repo.GetPlan(ctx, GetFilter{ID: planID})
	if err != nil {
		return Plan{}, err
	}

	idx := -1
	for i, item := range plan.Schedule {
		if item.InstallmentNumber == rp.InstallmentNumber {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Plan{}, ErrItemNotFound
	}
	if plan.Schedule[idx].PaidDate != nil {
		return Plan{}, ErrItemAlreadyPaid
	}

	now := time.Now().UTC()
	paid := now
	if rp.PaidDate != "" {
		paid, _ = time.Parse(core.DateFormat, rp.PaidDate) // validated upstream
	}
	plan.Schedule[idx].PaidDate = &paid
	plan.Refresh(now)
	plan.UpdatedAt = now
	return svc.repo.UpdatePlan(ctx, plan)
}

// Approve records the admin decision on the plan terms. It does not mark
// individual installments approved; those remain driven by payment records.
// The idempotency guard is a re-read inside this call; there is no atomic
// compare-and-set, so two racing approvals may both pass the guard and the
// second write wins.
func (svc *service) Approve(ctx context.Context, planID, comment string) (Plan, error) {
	return svc.review(ctx, planID, comment, true)
}

// Reject flags the plan as rejected with a mandatory reason. The plan is not
// deleted; the audit trail is preserved.
func (svc *service) Reject(ctx context.Context, planID, comment string) (Plan, error) {
	if core.CleanString(comment) == "" {
		return Plan{}, core.NewValidationError(nil, core.FieldError{Field: "comment", Error: "a rejection reason is required"})
	}
	return svc.review(ctx, planID, comment, false)
}

func (svc *service) review(ctx context.Context, planID, comment string, approve bool) (Plan, error) {
	plan, err := svc.repo.GetPlan(ctx, GetFilter{ID: planID})
	if err != nil {
		return Plan{}, err
	}
	if plan.Reviewed() {
		return Plan{}, ErrAlreadyReviewed
	}

	now := time.Now().UTC()
	if approve {
		plan.AdminApproved = true
	} else {
		plan.Rejected = true
	}
	plan.ReviewComment = core.CleanString(comment)
	plan.ReviewedAt = &now
	plan.Refresh(now)
	plan.UpdatedAt = now

	plan, err = svc.repo.UpdatePlan(ctx, plan)
	if err != nil {
		return Plan{}, errors.Wrap(err, "updating plan")
	}

	go svc.sendReviewedMail(plan)
	return plan, nil
}

func (svc *service) sendReviewedMail(plan Plan) {
	stu, err := svc.studentSvc.GetByID(context.Background(), plan.StudentID)
	if err != nil || stu.Email == "" {
		return
	}
	decision := "approved"
	if plan.Rejected {
		decision = "rejected"
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: stu.Name, Address: stu.Email}},
		Subject:      "Installment Plan " + decision,
		TemplateName: "plan-reviewed",
		TemplateData: struct {
			Name     string
			Course   string
			Decision string
			Comment  string
		}{
			Name:     stu.Name,
			Course:   plan.Course,
			Decision: decision,
			Comment:  plan.ReviewComment,
		},
	})
}
