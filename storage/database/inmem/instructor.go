package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/instructor"
)

type instructorRepository struct {
	db *instructorTable
}

var _ instructor.Repository = (*instructorRepository)(nil)

func NewInstructorRepository(db *DB) instructor.Repository {
	return &instructorRepository{db: db.instructor}
}

func (repo *instructorRepository) query() []instructor.Instructor {
	instructors := make([]instructor.Instructor, 0, len(repo.db.table))
	for _, ins := range repo.db.table {
		instructors = append(instructors, *ins)
	}
	sort.Slice(instructors, func(i, j int) bool { return instructors[i].CreatedAt.Before(instructors[j].CreatedAt) })
	return instructors
}

func (repo *instructorRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedInstructors ...instructor.Instructor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]struct{}, len(excludedInstructors))
	for _, ins := range excludedInstructors {
		excluded[ins.ID] = struct{}{}
	}

	for _, ins := range repo.query() {
		if _, ok := excluded[ins.ID]; ok {
			continue
		}
		if ins.Email == email {
			return instructor.ErrEmailExists
		}
	}
	return nil
}

func (repo *instructorRepository) CreateInstructor(ctx context.Context, ins instructor.Instructor) (instructor.Instructor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ins.ID = newID()
	repo.db.table[ins.ID] = &ins
	return ins, nil
}

func (repo *instructorRepository) GetInstructor(ctx context.Context, filter instructor.GetFilter) (instructor.Instructor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if ins, ok := repo.db.table[filter.ID]; ok {
			return *ins, nil
		}
		return instructor.Instructor{}, instructor.ErrNotFound
	}
	if filter.Email != "" {
		for _, ins := range repo.query() {
			if ins.Email == filter.Email {
				return ins, nil
			}
		}
	}
	return instructor.Instructor{}, instructor.ErrNotFound
}

func (repo *instructorRepository) QueryInstructors(ctx context.Context, filter *instructor.QueryFilter, ordering []core.DBOrdering) ([]instructor.Instructor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	instructors := repo.query()
	if filter == nil || filter.IsEmpty() {
		return instructors, nil
	}

	matches := make([]instructor.Instructor, 0, len(instructors))
	for _, ins := range instructors {
		if filter.Search != "" && !matchSearch(filter.Search, ins.Name, ins.Email, ins.LicenseNo) {
			continue
		}
		if filter.IsActive != nil && ins.Active() != *filter.IsActive {
			continue
		}
		matches = append(matches, ins)
	}
	return matches, nil
}

func (repo *instructorRepository) UpdateInstructor(ctx context.Context, ins instructor.Instructor) (instructor.Instructor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origIns, ok := repo.db.table[ins.ID]
	if !ok {
		return instructor.Instructor{}, instructor.ErrNotFound
	}
	if ins.Name != "" {
		origIns.Name = ins.Name
	}
	if ins.Email != "" {
		origIns.Email = ins.Email
	}
	if ins.Phone != "" {
		origIns.Phone = ins.Phone
	}
	if ins.LicenseNo != "" {
		origIns.LicenseNo = ins.LicenseNo
	}
	if ins.IsActive != nil {
		origIns.IsActive = ins.IsActive
	}
	if !ins.UpdatedAt.IsZero() {
		origIns.UpdatedAt = ins.UpdatedAt
	}
	return *origIns, nil
}

func (repo *instructorRepository) SetInstructorAvailability(ctx context.Context, id string, availability []instructor.DayAvailability) (instructor.Instructor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origIns, ok := repo.db.table[id]
	if !ok {
		return instructor.Instructor{}, instructor.ErrNotFound
	}
	origIns.Availability = availability
	return *origIns, nil
}

func (repo *instructorRepository) DeleteInstructorsByID(ctx context.Context, ids []string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			n++
		}
	}
	return n, nil
}
