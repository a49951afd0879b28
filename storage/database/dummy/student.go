package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, *s)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].LastName != students[j].LastName {
			return students[i].LastName < students[j].LastName
		}
		return students[i].FirstName < students[j].FirstName
	})
	return students
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	std.ID = uuid.New().String()
	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := repo.query()
	if filter == nil {
		return students, nil
	}

	if filter.Search != "" {
		var filtered []student.Student
		for _, s := range students {
			if strings.Contains(strings.ToLower(s.FirstName), strings.ToLower(filter.Search)) ||
				strings.Contains(strings.ToLower(s.LastName), strings.ToLower(filter.Search)) {
				filtered = append(filtered, s)
			}
		}
		students = filtered
	}
	if students != nil && filter.GradeLevel != "" {
		var filtered []student.Student
		for _, s := range students {
			if s.GradeLevel == filter.GradeLevel {
				filtered = append(filtered, s)
			}
		}
		students = filtered
	}
	if students != nil && filter.GuardianID != "" {
		var filtered []student.Student
		for _, s := range students {
			if s.GuardianID == filter.GuardianID {
				filtered = append(filtered, s)
			}
		}
		students = filtered
	}

	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student, paidInFull *bool, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origStd, ok := repo.db.table[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if std.FirstName != "" {
		origStd.FirstName = std.FirstName
	}
	if std.LastName != "" {
		origStd.LastName = std.LastName
	}
	if std.GradeLevel != "" {
		origStd.GradeLevel = std.GradeLevel
	}
	if std.GuardianID != "" {
		origStd.GuardianID = std.GuardianID
	}
	if paidInFull != nil {
		origStd.PaidInFull = *paidInFull
	}
	origStd.UpdatedAt = std.UpdatedAt

	repo.db.table[std.ID] = origStd
	return *origStd, nil
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, exec core.DBExecutor, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
