package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/installment"
)

type installmentRepository struct {
	db *installmentTable
}

var _ installment.Repository = (*installmentRepository)(nil)

func NewInstallmentRepository(db *DB) installment.Repository {
	return &installmentRepository{db: db.installment}
}

func (repo *installmentRepository) query() []installment.Plan {
	plans := make([]installment.Plan, 0, len(repo.db.table))
	for _, plan := range repo.db.table {
		plans = append(plans, clonePlan(*plan))
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].CreatedAt.Before(plans[j].CreatedAt) })
	return plans
}

func (repo *installmentRepository) CreatePlan(ctx context.Context, plan installment.Plan) (installment.Plan, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// mirrors the partial unique index on (student_id, course) WHERE NOT rejected
	for _, existing := range repo.db.table {
		if existing.StudentID == plan.StudentID && existing.Course == plan.Course && !existing.Rejected {
			return installment.Plan{}, installment.ErrPlanExists
		}
	}

	plan.ID = newID()
	stored := clonePlan(plan)
	repo.db.table[plan.ID] = &stored
	return plan, nil
}

func (repo *installmentRepository) GetPlan(ctx context.Context, filter installment.GetFilter) (installment.Plan, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if plan, ok := repo.db.table[filter.ID]; ok {
			return clonePlan(*plan), nil
		}
		return installment.Plan{}, installment.ErrNotFound
	}

	// (student, course) identity; the latest plan wins when a rejected one
	// was superseded
	var found *installment.Plan
	for _, plan := range repo.db.table {
		if plan.StudentID == filter.StudentID && plan.Course == filter.Course {
			if found == nil || plan.CreatedAt.After(found.CreatedAt) {
				found = plan
			}
		}
	}
	if found == nil {
		return installment.Plan{}, installment.ErrNotFound
	}
	return clonePlan(*found), nil
}

func (repo *installmentRepository) QueryPlans(ctx context.Context, filter *installment.QueryFilter, ordering []core.DBOrdering) ([]installment.Plan, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	plans := repo.query()
	if filter == nil || filter.IsEmpty() {
		return plans, nil
	}

	matches := make([]installment.Plan, 0, len(plans))
	for _, plan := range plans {
		if filter.StudentID != "" && plan.StudentID != filter.StudentID {
			continue
		}
		if filter.Course != "" && plan.Course != filter.Course {
			continue
		}
		if filter.Status != "" && plan.Status != filter.Status {
			continue
		}
		if !filter.CreatedFrom.IsZero() && plan.CreatedAt.Before(filter.CreatedFrom) {
			continue
		}
		if !filter.CreatedTo.IsZero() && plan.CreatedAt.After(filter.CreatedTo) {
			continue
		}
		matches = append(matches, plan)
	}
	return matches, nil
}

func (repo *installmentRepository) UpdatePlan(ctx context.Context, plan installment.Plan) (installment.Plan, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[plan.ID]; !ok {
		return installment.Plan{}, installment.ErrNotFound
	}
	stored := clonePlan(plan)
	repo.db.table[plan.ID] = &stored
	return plan, nil
}

// clonePlan deep-copies the schedule so callers cannot mutate stored state
// through the shared slice.
func clonePlan(plan installment.Plan) installment.Plan {
	schedule := make([]installment.Item, len(plan.Schedule))
	copy(schedule, plan.Schedule)
	plan.Schedule = schedule
	return plan
}
