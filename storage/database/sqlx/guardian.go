package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/guardian"
)

type dbGuardian struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Email     string      `db:"email"`
	Phone     null.String `db:"phone"`
	IsStaff   bool        `db:"is_staff"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func unpackGuardian(g dbGuardian) guardian.Guardian {
	return guardian.Guardian{
		ID:        g.ID,
		Name:      g.Name,
		Email:     g.Email,
		Phone:     g.Phone.String,
		IsStaff:   g.IsStaff,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

type guardianRepository struct {
	exec core.DBExecutor
}

var _ guardian.Repository = (*guardianRepository)(nil) // interface compliance check

func NewGuardianRepository(exec core.DBExecutor) *guardianRepository {
	return &guardianRepository{exec: exec}
}

func (repo guardianRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo guardianRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedGuardians []guardian.Guardian, exec ...core.DBExecutor) error {
	args := []interface{}{email}
	query := "SELECT COUNT(*) FROM guardian WHERE email = $1"
	if len(excludedGuardians) > 0 {
		ids := make([]string, 0, len(excludedGuardians))
		for _, g := range excludedGuardians {
			ids = append(ids, g.ID)
		}
		query += " AND NOT (id = ANY($2))"
		args = append(args, pq.Array(ids))
	}

	var count int
	if err := repo.getExec(exec).GetContext(ctx, &count, query, args...); err != nil {
		return errors.Wrap(err, "checking guardian uniqueness")
	}
	if count > 0 {
		return guardian.ErrEmailExists
	}
	return nil
}

func (repo guardianRepository) CreateGuardian(ctx context.Context, gdn guardian.Guardian, exec ...core.DBExecutor) (guardian.Guardian, error) {
	gdn.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO guardian (id, name, email, phone, is_staff, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		gdn.ID, gdn.Name, gdn.Email, null.NewString(gdn.Phone, gdn.Phone != ""), gdn.IsStaff,
		gdn.CreatedAt.UTC(), gdn.UpdatedAt.UTC(),
	)
	if err != nil {
		return guardian.Guardian{}, errors.Wrap(err, "inserting guardian")
	}
	return gdn, nil
}

func (repo guardianRepository) QueryGuardians(ctx context.Context, filter *guardian.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]guardian.Guardian, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			val := arg("%" + filter.Search + "%")
			conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR email ILIKE %[1]s)", val))
		}
		if filter.IsStaff != nil {
			conds = append(conds, "is_staff = "+arg(*filter.IsStaff))
		}
	}

	query := "SELECT * FROM guardian"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, "name ASC")

	var rows []dbGuardian
	if err := repo.getExec(exec).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying guardians")
	}
	guardians := make([]guardian.Guardian, 0, len(rows))
	for _, row := range rows {
		guardians = append(guardians, unpackGuardian(row))
	}
	return guardians, nil
}

func (repo guardianRepository) getGuardian(ctx context.Context, exec []core.DBExecutor, query string, args ...interface{}) (guardian.Guardian, error) {
	var row dbGuardian
	if err := repo.getExec(exec).GetContext(ctx, &row, query, args...); err != nil {
		return guardian.Guardian{}, trapNoRowsErr(err, guardian.ErrNotFound, "getting guardian")
	}
	return unpackGuardian(row), nil
}

func (repo guardianRepository) GetGuardianByID(ctx context.Context, id string, exec ...core.DBExecutor) (guardian.Guardian, error) {
	return repo.getGuardian(ctx, exec, "SELECT * FROM guardian WHERE id = $1", id)
}

func (repo guardianRepository) GetGuardianByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (guardian.Guardian, error) {
	return repo.getGuardian(ctx, exec, "SELECT * FROM guardian WHERE email = $1", email)
}

func (repo guardianRepository) UpdateGuardian(ctx context.Context, gdn guardian.Guardian, isStaff *bool, exec ...core.DBExecutor) (guardian.Guardian, error) {
	var (
		sets []string
		args []interface{}
	)
	set := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if gdn.Name != "" {
		set("name", gdn.Name)
	}
	if gdn.Email != "" {
		set("email", gdn.Email)
	}
	if gdn.Phone != "" {
		set("phone", gdn.Phone)
	}
	if isStaff != nil {
		set("is_staff", *isStaff)
	}
	if gdn.UpdatedAt.IsZero() {
		gdn.UpdatedAt = time.Now()
	}
	set("updated_at", gdn.UpdatedAt.UTC())

	args = append(args, gdn.ID)
	query := fmt.Sprintf("UPDATE guardian SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	if _, err := repo.getExec(exec).ExecContext(ctx, query, args...); err != nil {
		return guardian.Guardian{}, errors.Wrap(err, "updating guardian")
	}
	return repo.GetGuardianByID(ctx, gdn.ID, exec...)
}

func (repo guardianRepository) DeleteGuardiansByID(ctx context.Context, exec core.DBExecutor, ids ...string) error {
	if exec == nil {
		exec = repo.exec
	}
	if _, err := exec.ExecContext(ctx, "DELETE FROM guardian WHERE id = ANY($1)", pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting guardians")
	}
	return nil
}
