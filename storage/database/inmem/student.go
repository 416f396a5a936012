package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, stu := range repo.db.table {
		students = append(students, *stu)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].CreatedAt.Before(students[j].CreatedAt) })
	return students
}

func (repo *studentRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedStudents ...student.Student) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]struct{}, len(excludedStudents))
	for _, stu := range excludedStudents {
		excluded[stu.ID] = struct{}{}
	}

	for _, stu := range repo.query() {
		if _, ok := excluded[stu.ID]; ok {
			continue
		}
		if stu.Email == email {
			return student.ErrEmailExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stu.ID = newID()
	repo.db.table[stu.ID] = &stu
	return stu, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, filter student.GetFilter) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if stu, ok := repo.db.table[filter.ID]; ok {
			return *stu, nil
		}
		return student.Student{}, student.ErrNotFound
	}
	if filter.Email != "" {
		for _, stu := range repo.query() {
			if stu.Email == filter.Email {
				return stu, nil
			}
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := repo.query()
	if filter == nil || filter.IsEmpty() {
		return students, nil
	}

	matches := make([]student.Student, 0, len(students))
	for _, stu := range students {
		if filter.Search != "" && !matchSearch(filter.Search, stu.Name, stu.Email, stu.LicenseNo) {
			continue
		}
		if filter.Course != "" && stu.Course != filter.Course {
			continue
		}
		if filter.IsActive != nil && stu.Active() != *filter.IsActive {
			continue
		}
		if !filter.CreatedFrom.IsZero() && stu.CreatedAt.Before(filter.CreatedFrom) {
			continue
		}
		if !filter.CreatedTo.IsZero() && stu.CreatedAt.After(filter.CreatedTo) {
			continue
		}
		matches = append(matches, stu)
	}
	return matches, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origStu, ok := repo.db.table[stu.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if stu.Name != "" {
		origStu.Name = stu.Name
	}
	if stu.Email != "" {
		origStu.Email = stu.Email
	}
	if stu.Phone != "" {
		origStu.Phone = stu.Phone
	}
	if stu.LicenseNo != "" {
		origStu.LicenseNo = stu.LicenseNo
	}
	if stu.Course != "" {
		origStu.Course = stu.Course
	}
	if stu.IsActive != nil {
		origStu.IsActive = stu.IsActive
	}
	if !stu.UpdatedAt.IsZero() {
		origStu.UpdatedAt = stu.UpdatedAt
	}
	return *origStu, nil
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids []string) (int, error) {
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
