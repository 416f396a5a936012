package installment_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/installment"
	"github.com/trezcool/dereva/core/student"
	emailsvc "github.com/trezcool/dereva/services/email"
	inmemdb "github.com/trezcool/dereva/storage/database/inmem"
)

var conf = core.NewConfig()

func setup(t *testing.T) (installment.Service, student.Student) {
	t.Helper()

	db, err := inmemdb.Open()
	require.NoError(t, err)

	stuSvc := student.NewService(inmemdb.NewStudentRepository(db))
	stu, err := stuSvc.Create(context.Background(), student.NewStudent{
		Name:      "Asha Juma",
		Email:     "asha@test.cd",
		LicenseNo: "lrn-001",
		Course:    "class b",
	})
	require.NoError(t, err)

	svc := installment.NewService(
		inmemdb.NewInstallmentRepository(db),
		stuSvc,
		emailsvc.NewConsoleServiceMock(conf),
		conf,
	)
	return svc, stu
}

func newPlan(studentID string) installment.NewPlan {
	return installment.NewPlan{
		StudentID:         studentID,
		Course:            "class b",
		TotalAmount:       decimal.NewFromInt(50000),
		DownPayment:       decimal.NewFromInt(10000),
		TotalInstallments: 4,
		StartDate:         "2024-11-01",
	}
}

func TestService_Create(t *testing.T) {
	svc, stu := setup(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, newPlan(stu.ID))
	require.NoError(t, err)
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, stu.ID, plan.StudentID)
	assert.Len(t, plan.Schedule, 4)
	assert.False(t, plan.Reviewed())

	t.Run("one active plan per student and course", func(t *testing.T) {
		_, err := svc.Create(ctx, newPlan(stu.ID))
		require.Error(t, err)
		assert.Equal(t, installment.ErrPlanExists, errors.Cause(err))
	})

	t.Run("unknown student", func(t *testing.T) {
		np := newPlan("e1b2f6a0-0000-0000-0000-000000000000")
		_, err := svc.Create(ctx, np)
		require.Error(t, err)
		assert.IsType(t, &core.ValidationError{}, err)
	})

	t.Run("invalid terms", func(t *testing.T) {
		np := newPlan(stu.ID)
		np.Course = "class a"
		np.DownPayment = np.TotalAmount
		_, err := svc.Create(ctx, np)
		require.Error(t, err)
		assert.IsType(t, &core.ValidationError{}, err)
	})
}

func TestService_Create_rejectedPlanDoesNotBlock(t *testing.T) {
	svc, stu := setup(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, newPlan(stu.ID))
	require.NoError(t, err)

	_, err = svc.Reject(ctx, plan.ID, "terms too long")
	require.NoError(t, err)

	np := newPlan(stu.ID)
	np.TotalInstallments = 2
	plan2, err := svc.Create(ctx, np)
	require.NoError(t, err)
	assert.NotEqual(t, plan.ID, plan2.ID)
	assert.Len(t, plan2.Schedule, 2)
}

func TestService_Approve(t *testing.T) {
	svc, stu := setup(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, newPlan(stu.ID))
	require.NoError(t, err)

	reviewed, err := svc.Approve(ctx, plan.ID, "terms look fine")
	require.NoError(t, err)
	assert.True(t, reviewed.AdminApproved)
	assert.False(t, reviewed.Rejected)
	assert.Equal(t, "terms look fine", reviewed.ReviewComment)
	require.NotNil(t, reviewed.ReviewedAt)

	// approval does not mark installments paid
	for _, item := range reviewed.Schedule {
		assert.Nil(t, item.PaidDate)
	}

	t.Run("second approval fails and leaves the plan unchanged", func(t *testing.T) {
		_, err := svc.Approve(ctx, plan.ID, "again")
		assert.Equal(t, installment.ErrAlreadyReviewed, errors.Cause(err))

		got, err := svc.GetByID(ctx, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, "terms look fine", got.ReviewComment)
		assert.True(t, got.ReviewedAt.Equal(*reviewed.ReviewedAt))
	})

	t.Run("rejecting an approved plan fails", func(t *testing.T) {
		_, err := svc.Reject(ctx, plan.ID, "changed my mind")
		assert.Equal(t, installment.ErrAlreadyReviewed, errors.Cause(err))
	})
}

func TestService_Reject(t *testing.T) {
	svc, stu := setup(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, newPlan(stu.ID))
	require.NoError(t, err)

	t.Run("empty comment fails without mutating the plan", func(t *testing.T) {
		_, err := svc.Reject(ctx, plan.ID, "  ")
		require.Error(t, err)
		assert.IsType(t, &core.ValidationError{}, err)

		got, err := svc.GetByID(ctx, plan.ID)
		require.NoError(t, err)
		assert.False(t, got.Reviewed())
	})

	rejected, err := svc.Reject(ctx, plan.ID, "down payment too low")
	require.NoError(t, err)
	assert.True(t, rejected.Rejected)
	assert.False(t, rejected.AdminApproved)

	// audit trail preserved
	got, err := svc.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "down payment too low", got.ReviewComment)
}

func TestService_RecordPayment(t *testing.T) {
	svc, stu := setup(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, newPlan(stu.ID))
	require.NoError(t, err)

	plan, err = svc.RecordPayment(ctx, plan.ID, installment.RecordPayment{InstallmentNumber: 1, PaidDate: "2024-11-20"})
	require.NoError(t, err)
	assert.Equal(t, installment.ItemStatusApproved, plan.Schedule[0].Status)
	require.NotNil(t, plan.Schedule[0].PaidDate)

	t.Run("already paid", func(t *testing.T) {
		_, err := svc.RecordPayment(ctx, plan.ID, installment.RecordPayment{InstallmentNumber: 1})
		assert.Equal(t, installment.ErrItemAlreadyPaid, errors.Cause(err))
	})

	t.Run("unknown installment number", func(t *testing.T) {
		_, err := svc.RecordPayment(ctx, plan.ID, installment.RecordPayment{InstallmentNumber: 9})
		assert.Equal(t, installment.ErrItemNotFound, errors.Cause(err))
	})

	t.Run("paying every installment completes the plan", func(t *testing.T) {
		var err error
		for n := 2; n <= 4; n++ {
			plan, err = svc.RecordPayment(ctx, plan.ID, installment.RecordPayment{InstallmentNumber: n})
			require.NoError(t, err)
		}
		assert.Equal(t, installment.PlanStatusCompleted, plan.Status)
	})
}

func TestService_GetByID_derivesStatusOnRead(t *testing.T) {
	svc, stu := setup(t)
	ctx := context.Background()

	np := newPlan(stu.ID)
	np.StartDate = time.Now().UTC().AddDate(0, -3, 0).Format(core.DateFormat)
	plan, err := svc.Create(ctx, np)
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, installment.PlanStatusOverdue, got.Status)
	assert.Equal(t, installment.ItemStatusOverdue, got.Schedule[0].Status)
}
