package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/installment"
)

const installmentTable = "installment_plan"

var installmentColumns = []string{
	"id", "student_id", "course", "total_amount", "down_payment", "total_installments",
	"schedule", "admin_approved", "rejected", "review_comment", "reviewed_at", "status",
	"created_at", "updated_at",
}

type installmentRow struct {
	ID                string          `db:"id"`
	StudentID         string          `db:"student_id"`
	Course            string          `db:"course"`
	TotalAmount       decimal.Decimal `db:"total_amount"`
	DownPayment       decimal.Decimal `db:"down_payment"`
	TotalInstallments int             `db:"total_installments"`
	Schedule          []byte          `db:"schedule"`
	AdminApproved     bool            `db:"admin_approved"`
	Rejected          bool            `db:"rejected"`
	ReviewComment     string          `db:"review_comment"`
	ReviewedAt        *time.Time      `db:"reviewed_at"`
	Status            string          `db:"status"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r installmentRow) toPlan() (installment.Plan, error) {
	plan := installment.Plan{
		ID:                r.ID,
		StudentID:         r.StudentID,
		Course:            r.Course,
		TotalAmount:       r.TotalAmount,
		DownPayment:       r.DownPayment,
		TotalInstallments: r.TotalInstallments,
		AdminApproved:     r.AdminApproved,
		Rejected:          r.Rejected,
		ReviewComment:     r.ReviewComment,
		ReviewedAt:        r.ReviewedAt,
		Status:            r.Status,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if len(r.Schedule) > 0 {
		if err := json.Unmarshal(r.Schedule, &plan.Schedule); err != nil {
			return installment.Plan{}, errors.Wrap(err, "decoding schedule")
		}
	}
	return plan, nil
}

func marshalSchedule(schedule []installment.Item) ([]byte, error) {
	if schedule == nil {
		schedule = []installment.Item{}
	}
	doc, err := json.Marshal(schedule)
	return doc, errors.Wrap(err, "encoding schedule")
}

type installmentRepository struct {
	db *sqlx.DB
}

var _ installment.Repository = (*installmentRepository)(nil)

func NewInstallmentRepository(db *sqlx.DB) installment.Repository {
	return &installmentRepository{db: db}
}

func (repo *installmentRepository) CreatePlan(ctx context.Context, plan installment.Plan) (installment.Plan, error) {
	plan.ID = newID()
	schedule, err := marshalSchedule(plan.Schedule)
	if err != nil {
		return installment.Plan{}, err
	}

	stmt, args, err := psql.Insert(installmentTable).
		Columns(installmentColumns...).
		Values(
			plan.ID, plan.StudentID, plan.Course, plan.TotalAmount, plan.DownPayment, plan.TotalInstallments,
			schedule, plan.AdminApproved, plan.Rejected, plan.ReviewComment, plan.ReviewedAt, plan.Status,
			plan.CreatedAt, plan.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return installment.Plan{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		// the partial unique index rejects concurrent plans for the same student and course
		if isUniqueViolation(err) {
			return installment.Plan{}, installment.ErrPlanExists
		}
		return installment.Plan{}, errors.Wrap(err, "inserting plan")
	}
	return plan, nil
}

func (repo *installmentRepository) GetPlan(ctx context.Context, filter installment.GetFilter) (installment.Plan, error) {
	q := psql.Select(installmentColumns...).From(installmentTable)
	if filter.ID != "" {
		q = q.Where(sq.Eq{"id": filter.ID})
	} else {
		// (student, course) identity; the latest plan wins when a rejected
		// one was superseded
		q = q.Where(sq.Eq{"student_id": filter.StudentID, "course": filter.Course}).
			OrderBy("created_at DESC").
			Limit(1)
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return installment.Plan{}, errors.Wrap(err, "building query")
	}
	var row installmentRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return installment.Plan{}, installment.ErrNotFound
		}
		return installment.Plan{}, errors.Wrap(err, "getting plan")
	}
	return row.toPlan()
}

func (repo *installmentRepository) QueryPlans(ctx context.Context, filter *installment.QueryFilter, ordering []core.DBOrdering) ([]installment.Plan, error) {
	q := psql.Select(installmentColumns...).From(installmentTable)
	if filter != nil {
		if filter.StudentID != "" {
			q = q.Where(sq.Eq{"student_id": filter.StudentID})
		}
		if filter.Course != "" {
			q = q.Where(sq.Eq{"course": filter.Course})
		}
		if filter.Status != "" {
			q = q.Where(sq.Eq{"status": filter.Status})
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
	var rows []installmentRow
	if err = repo.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "querying plans")
	}
	plans := make([]installment.Plan, 0, len(rows))
	for _, row := range rows {
		plan, err := row.toPlan()
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (repo *installmentRepository) UpdatePlan(ctx context.Context, plan installment.Plan) (installment.Plan, error) {
	schedule, err := marshalSchedule(plan.Schedule)
	if err != nil {
		return installment.Plan{}, err
	}

	stmt, args, err := psql.Update(installmentTable).
		Set("schedule", schedule).
		Set("admin_approved", plan.AdminApproved).
		Set("rejected", plan.Rejected).
		Set("review_comment", plan.ReviewComment).
		Set("reviewed_at", plan.ReviewedAt).
		Set("status", plan.Status).
		Set("updated_at", plan.UpdatedAt).
		Where(sq.Eq{"id": plan.ID}).
		Suffix("RETURNING " + columnList(installmentColumns)).
		ToSql()
	if err != nil {
		return installment.Plan{}, errors.Wrap(err, "building query")
	}
	var row installmentRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return installment.Plan{}, installment.ErrNotFound
		}
		return installment.Plan{}, errors.Wrap(err, "updating plan")
	}
	return row.toPlan()
}
