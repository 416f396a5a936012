package installment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateItem(t *testing.T) {
	now := date(2025, time.January, 15)
	paid := date(2025, time.January, 10)

	tests := []struct {
		name string
		item Item
		want string
	}{
		{
			name: "due in the future",
			item: Item{DueDate: date(2025, time.February, 1)},
			want: ItemStatusPending,
		},
		{
			name: "due today is still pending",
			item: Item{DueDate: date(2025, time.January, 15)},
			want: ItemStatusPending,
		},
		{
			name: "past due unpaid",
			item: Item{DueDate: date(2025, time.January, 1)},
			want: ItemStatusOverdue,
		},
		{
			name: "paid wins over past due",
			item: Item{DueDate: date(2025, time.January, 1), PaidDate: &paid},
			want: ItemStatusApproved,
		},
		{
			name: "paid before due",
			item: Item{DueDate: date(2025, time.February, 1), PaidDate: &paid},
			want: ItemStatusApproved,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateItem(now, tt.item))
		})
	}
}

func TestEvaluatePlan(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"all pending", []string{ItemStatusPending, ItemStatusPending}, PlanStatusActive},
		{"mixed pending and approved", []string{ItemStatusApproved, ItemStatusPending}, PlanStatusActive},
		{"all approved", []string{ItemStatusApproved, ItemStatusApproved}, PlanStatusCompleted},
		{"one overdue among approved", []string{ItemStatusApproved, ItemStatusOverdue, ItemStatusApproved}, PlanStatusOverdue},
		{"overdue wins over pending", []string{ItemStatusPending, ItemStatusOverdue}, PlanStatusOverdue},
		{"empty schedule", nil, PlanStatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]Item, len(tt.statuses))
			for i, s := range tt.statuses {
				items[i] = Item{InstallmentNumber: i + 1, Status: s}
			}
			assert.Equal(t, tt.want, EvaluatePlan(items))
		})
	}
}

func TestPlanRefresh(t *testing.T) {
	now := date(2025, time.March, 2)
	paid := date(2025, time.January, 1)

	plan := Plan{
		Status: PlanStatusActive,
		Schedule: []Item{
			{InstallmentNumber: 1, DueDate: date(2025, time.January, 1), Status: ItemStatusPending, PaidDate: &paid},
			{InstallmentNumber: 2, DueDate: date(2025, time.February, 1), Status: ItemStatusPending},
			{InstallmentNumber: 3, DueDate: date(2025, time.April, 1), Status: ItemStatusPending},
		},
	}

	assert.True(t, plan.Refresh(now))
	assert.Equal(t, ItemStatusApproved, plan.Schedule[0].Status)
	assert.Equal(t, ItemStatusOverdue, plan.Schedule[1].Status)
	assert.Equal(t, ItemStatusPending, plan.Schedule[2].Status)
	assert.Equal(t, PlanStatusOverdue, plan.Status)

	// second run is a no-op
	assert.False(t, plan.Refresh(now))
}
