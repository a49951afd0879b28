package student

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of
		// Student.FirstName or Student.LastName.
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Student, error)
		GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, std Student, paidInFull *bool, exec ...core.DBExecutor) (Student, error)
		DeleteStudentsByID(ctx context.Context, exec core.DBExecutor, ids ...string) error
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	std := Student{
		FirstName:  ns.FirstName,
		LastName:   ns.LastName,
		GradeLevel: ns.GradeLevel,
		GuardianID: ns.GuardianID,
		PaidInFull: ns.PaidInFull,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Student, error) {
	if filter != nil {
		filter.Clean()
		if filter.IsEmpty() {
			filter = nil
		}
	}
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

// Siblings returns all students sharing a guardian, the given student included.
func (svc *Service) Siblings(ctx context.Context, guardianID string) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, &QueryFilter{GuardianID: guardianID}, nil)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	std := Student{
		ID:         id,
		FirstName:  us.FirstName,
		LastName:   us.LastName,
		GradeLevel: us.GradeLevel,
		GuardianID: us.GuardianID,
		UpdatedAt:  time.Now().UTC(),
	}
	return svc.repo.UpdateStudent(ctx, std, us.PaidInFull)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteStudentsByID(ctx, svc.db, ids...)
}
