package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/guardian"
)

type guardianRepository struct {
	db *guardianTable
}

var _ guardian.Repository = (*guardianRepository)(nil) // interface compliance check

func NewGuardianRepository(db *DB) guardian.Repository {
	return &guardianRepository{db: db.guardian}
}

func (repo *guardianRepository) query() []guardian.Guardian {
	guardians := make([]guardian.Guardian, 0, len(repo.db.table))
	for _, g := range repo.db.table {
		guardians = append(guardians, *g)
	}
	sort.Slice(guardians, func(i, j int) bool { return guardians[i].Name < guardians[j].Name })
	return guardians
}

func (repo *guardianRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedGuardians []guardian.Guardian, exec ...core.DBExecutor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]struct{}, len(excludedGuardians))
	for _, g := range excludedGuardians {
		excluded[g.ID] = struct{}{}
	}
	for _, gdn := range repo.query() {
		if _, ok := excluded[gdn.ID]; ok {
			continue
		}
		if gdn.Email == email {
			return guardian.ErrEmailExists
		}
	}
	return nil
}

func (repo *guardianRepository) CreateGuardian(ctx context.Context, gdn guardian.Guardian, exec ...core.DBExecutor) (guardian.Guardian, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	gdn.ID = uuid.New().String()
	repo.db.table[gdn.ID] = &gdn
	return gdn, nil
}

func (repo *guardianRepository) QueryGuardians(ctx context.Context, filter *guardian.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]guardian.Guardian, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	guardians := repo.query()
	if filter == nil {
		return guardians, nil
	}

	if filter.Search != "" {
		var filtered []guardian.Guardian
		for _, g := range guardians {
			if strings.Contains(strings.ToLower(g.Name), strings.ToLower(filter.Search)) ||
				strings.Contains(strings.ToLower(g.Email), strings.ToLower(filter.Search)) {
				filtered = append(filtered, g)
			}
		}
		guardians = filtered
	}
	if guardians != nil && filter.IsStaff != nil {
		var filtered []guardian.Guardian
		for _, g := range guardians {
			if g.IsStaff == *filter.IsStaff {
				filtered = append(filtered, g)
			}
		}
		guardians = filtered
	}

	return guardians, nil
}

func (repo *guardianRepository) GetGuardianByID(ctx context.Context, id string, exec ...core.DBExecutor) (guardian.Guardian, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if gdn, ok := repo.db.table[id]; ok {
		return *gdn, nil
	}
	return guardian.Guardian{}, guardian.ErrNotFound
}

func (repo *guardianRepository) GetGuardianByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (guardian.Guardian, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, gdn := range repo.query() {
		if gdn.Email == email {
			return gdn, nil
		}
	}
	return guardian.Guardian{}, guardian.ErrNotFound
}

func (repo *guardianRepository) UpdateGuardian(ctx context.Context, gdn guardian.Guardian, isStaff *bool, exec ...core.DBExecutor) (guardian.Guardian, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origGdn, ok := repo.db.table[gdn.ID]
	if !ok {
		return guardian.Guardian{}, guardian.ErrNotFound
	}
	if gdn.Name != "" {
		origGdn.Name = gdn.Name
	}
	if gdn.Email != "" {
		origGdn.Email = gdn.Email
	}
	if gdn.Phone != "" {
		origGdn.Phone = gdn.Phone
	}
	if isStaff != nil {
		origGdn.IsStaff = *isStaff
	}
	origGdn.UpdatedAt = gdn.UpdatedAt

	repo.db.table[gdn.ID] = origGdn
	return *origGdn, nil
}

func (repo *guardianRepository) DeleteGuardiansByID(ctx context.Context, exec core.DBExecutor, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
