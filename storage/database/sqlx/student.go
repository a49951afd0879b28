package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

type dbStudent struct {
	ID         string    `db:"id"`
	FirstName  string    `db:"first_name"`
	LastName   string    `db:"last_name"`
	GradeLevel string    `db:"grade_level"`
	GuardianID string    `db:"guardian_id"`
	PaidInFull bool      `db:"paid_in_full"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func unpackStudent(s dbStudent) student.Student {
	return student.Student{
		ID:         s.ID,
		FirstName:  s.FirstName,
		LastName:   s.LastName,
		GradeLevel: s.GradeLevel,
		GuardianID: s.GuardianID,
		PaidInFull: s.PaidInFull,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo studentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	std.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO student (id, first_name, last_name, grade_level, guardian_id, paid_in_full, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		std.ID, std.FirstName, std.LastName, std.GradeLevel, std.GuardianID, std.PaidInFull,
		std.CreatedAt.UTC(), std.UpdatedAt.UTC(),
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Student, error) {
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
			conds = append(conds, fmt.Sprintf("(first_name ILIKE %[1]s OR last_name ILIKE %[1]s)", val))
		}
		if filter.GradeLevel != "" {
			conds = append(conds, "grade_level = "+arg(filter.GradeLevel))
		}
		if filter.GuardianID != "" {
			conds = append(conds, "guardian_id = "+arg(filter.GuardianID))
		}
	}

	query := "SELECT * FROM student"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, "last_name ASC, first_name ASC")

	var rows []dbStudent
	if err := repo.getExec(exec).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, unpackStudent(row))
	}
	return students, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	var row dbStudent
	if err := repo.getExec(exec).GetContext(ctx, &row, "SELECT * FROM student WHERE id = $1", id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student")
	}
	return unpackStudent(row), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student, paidInFull *bool, exec ...core.DBExecutor) (student.Student, error) {
	var (
		sets []string
		args []interface{}
	)
	set := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if std.FirstName != "" {
		set("first_name", std.FirstName)
	}
	if std.LastName != "" {
		set("last_name", std.LastName)
	}
	if std.GradeLevel != "" {
		set("grade_level", std.GradeLevel)
	}
	if std.GuardianID != "" {
		set("guardian_id", std.GuardianID)
	}
	if paidInFull != nil {
		set("paid_in_full", *paidInFull)
	}
	if std.UpdatedAt.IsZero() {
		std.UpdatedAt = time.Now()
	}
	set("updated_at", std.UpdatedAt.UTC())

	args = append(args, std.ID)
	query := fmt.Sprintf("UPDATE student SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	if _, err := repo.getExec(exec).ExecContext(ctx, query, args...); err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return repo.GetStudentByID(ctx, std.ID, exec...)
}

func (repo studentRepository) DeleteStudentsByID(ctx context.Context, exec core.DBExecutor, ids ...string) error {
	if exec == nil {
		exec = repo.exec
	}
	if _, err := exec.ExecContext(ctx, "DELETE FROM student WHERE id = ANY($1)", pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}
