package guardian

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound    = errors.New("guardian not found")
	ErrEmailExists = errors.New("a guardian with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedGuardians []Guardian, exec ...core.DBExecutor) error
		CreateGuardian(ctx context.Context, gdn Guardian, exec ...core.DBExecutor) (Guardian, error)
		// QueryGuardians applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of
		// Guardian.Name or Guardian.Email.
		QueryGuardians(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Guardian, error)
		GetGuardianByID(ctx context.Context, id string, exec ...core.DBExecutor) (Guardian, error)
		GetGuardianByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (Guardian, error)
		UpdateGuardian(ctx context.Context, gdn Guardian, isStaff *bool, exec ...core.DBExecutor) (Guardian, error)
		DeleteGuardiansByID(ctx context.Context, exec core.DBExecutor, ids ...string) error
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, exclGdns ...Guardian) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclGdns); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ng NewGuardian) (Guardian, error) {
	if err := svc.checkUniqueness(ctx, ng.Email); err != nil {
		return Guardian{}, err
	}
	now := time.Now().UTC()
	gdn := Guardian{
		Name:      ng.Name,
		Email:     ng.Email,
		Phone:     ng.Phone,
		IsStaff:   ng.IsStaff,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateGuardian(ctx, gdn)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Guardian, error) {
	if filter != nil {
		filter.Clean()
		if filter.IsEmpty() {
			filter = nil
		}
	}
	return svc.repo.QueryGuardians(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Guardian, error) {
	return svc.repo.GetGuardianByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Guardian, error) {
	return svc.repo.GetGuardianByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, id string, ug UpdateGuardian) (Guardian, error) {
	if ug.Email != "" {
		origGdn, err := svc.GetByID(ctx, id)
		if err != nil {
			return Guardian{}, err
		}
		if ug.Email != origGdn.Email {
			if err := svc.checkUniqueness(ctx, ug.Email, origGdn); err != nil {
				return Guardian{}, err
			}
		}
	}
	gdn := Guardian{
		ID:        id,
		Name:      ug.Name,
		Email:     ug.Email,
		Phone:     ug.Phone,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateGuardian(ctx, gdn, ug.IsStaff)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteGuardiansByID(ctx, svc.db, ids...)
}
