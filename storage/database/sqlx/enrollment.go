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
	"github.com/trezcool/shule/core/enrollment"
)

type dbClassroom struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Capacity  int       `db:"capacity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type dbClass struct {
	ID              string         `db:"id"`
	Name            string         `db:"name"`
	GradeLevels     pq.StringArray `db:"grade_levels"`
	Term            string         `db:"term"`
	Program         string         `db:"program"`
	Days            pq.Int64Array  `db:"days"`
	ScheduleBlocks  pq.Int64Array  `db:"schedule_blocks"`
	MaxSize         int            `db:"max_size"`
	AdditionalCosts float64        `db:"additional_costs"`
	TeacherID       null.String    `db:"teacher_id"`
	ClassroomID     null.String    `db:"classroom_id"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type dbAssignment struct {
	ID            string    `db:"id"`
	StudentID     string    `db:"student_id"`
	ClassID       string    `db:"class_id"`
	Program       string    `db:"program"`
	ScheduledDays int       `db:"scheduled_days"`
	CreatedAt     time.Time `db:"created_at"`
}

func packInts(vals []int) pq.Int64Array {
	out := make(pq.Int64Array, 0, len(vals))
	for _, v := range vals {
		out = append(out, int64(v))
	}
	return out
}

func unpackInts(vals pq.Int64Array) []int {
	if len(vals) == 0 {
		return nil
	}
	out := make([]int, 0, len(vals))
	for _, v := range vals {
		out = append(out, int(v))
	}
	return out
}

func unpackClass(c dbClass) enrollment.Class {
	return enrollment.Class{
		ID:              c.ID,
		Name:            c.Name,
		GradeLevels:     c.GradeLevels,
		Term:            enrollment.Term(c.Term),
		Program:         enrollment.ProgramType(c.Program),
		Days:            unpackInts(c.Days),
		ScheduleBlocks:  unpackInts(c.ScheduleBlocks),
		MaxSize:         c.MaxSize,
		AdditionalCosts: c.AdditionalCosts,
		TeacherID:       c.TeacherID.String,
		ClassroomID:     c.ClassroomID.String,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func unpackAssignment(a dbAssignment) enrollment.Assignment {
	return enrollment.Assignment{
		ID:            a.ID,
		StudentID:     a.StudentID,
		ClassID:       a.ClassID,
		Program:       enrollment.ProgramType(a.Program),
		ScheduledDays: a.ScheduledDays,
		CreatedAt:     a.CreatedAt,
	}
}

type enrollmentRepository struct {
	exec core.DBExecutor
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(exec core.DBExecutor) *enrollmentRepository {
	return &enrollmentRepository{exec: exec}
}

func (repo enrollmentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// Classrooms

func (repo enrollmentRepository) CreateClassroom(ctx context.Context, room enrollment.Classroom, exec ...core.DBExecutor) (enrollment.Classroom, error) {
	room.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO classroom (id, name, capacity, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		room.ID, room.Name, room.Capacity, room.CreatedAt.UTC(), room.UpdatedAt.UTC(),
	)
	if err != nil {
		return enrollment.Classroom{}, errors.Wrap(err, "inserting classroom")
	}
	return room, nil
}

func (repo enrollmentRepository) QueryClassrooms(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]enrollment.Classroom, error) {
	query := "SELECT * FROM classroom" + orderBy(ordering, "name ASC")
	var rows []dbClassroom
	if err := repo.getExec(exec).SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying classrooms")
	}
	rooms := make([]enrollment.Classroom, 0, len(rows))
	for _, row := range rows {
		rooms = append(rooms, enrollment.Classroom(row))
	}
	return rooms, nil
}

func (repo enrollmentRepository) GetClassroomByID(ctx context.Context, id string, exec ...core.DBExecutor) (enrollment.Classroom, error) {
	var row dbClassroom
	if err := repo.getExec(exec).GetContext(ctx, &row, "SELECT * FROM classroom WHERE id = $1", id); err != nil {
		return enrollment.Classroom{}, trapNoRowsErr(err, enrollment.ErrClassroomNotFound, "getting classroom")
	}
	return enrollment.Classroom(row), nil
}

func (repo enrollmentRepository) UpdateClassroom(ctx context.Context, room enrollment.Classroom, exec ...core.DBExecutor) (enrollment.Classroom, error) {
	if room.UpdatedAt.IsZero() {
		room.UpdatedAt = time.Now()
	}
	_, err := repo.getExec(exec).ExecContext(ctx,
		"UPDATE classroom SET name = $1, capacity = $2, updated_at = $3 WHERE id = $4",
		room.Name, room.Capacity, room.UpdatedAt.UTC(), room.ID,
	)
	if err != nil {
		return enrollment.Classroom{}, errors.Wrap(err, "updating classroom")
	}
	return repo.GetClassroomByID(ctx, room.ID, exec...)
}

func (repo enrollmentRepository) DeleteClassroomsByID(ctx context.Context, exec core.DBExecutor, ids ...string) error {
	if exec == nil {
		exec = repo.exec
	}
	if _, err := exec.ExecContext(ctx, "DELETE FROM classroom WHERE id = ANY($1)", pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting classrooms")
	}
	return nil
}

// Classes

func (repo enrollmentRepository) CheckClassUniqueness(ctx context.Context, name string, term enrollment.Term, excludedClasses []enrollment.Class, exec ...core.DBExecutor) error {
	args := []interface{}{name, string(term)}
	query := "SELECT COUNT(*) FROM class WHERE name = $1 AND term = $2"
	if len(excludedClasses) > 0 {
		ids := make([]string, 0, len(excludedClasses))
		for _, cls := range excludedClasses {
			ids = append(ids, cls.ID)
		}
		query += " AND NOT (id = ANY($3))"
		args = append(args, pq.Array(ids))
	}

	var count int
	if err := repo.getExec(exec).GetContext(ctx, &count, query, args...); err != nil {
		return errors.Wrap(err, "checking class uniqueness")
	}
	if count > 0 {
		return enrollment.ErrClassExists
	}
	return nil
}

func (repo enrollmentRepository) CreateClass(ctx context.Context, cls enrollment.Class, exec ...core.DBExecutor) (enrollment.Class, error) {
	cls.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO class (id, name, grade_levels, term, program, days, schedule_blocks, max_size,
		                    additional_costs, teacher_id, classroom_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		cls.ID, cls.Name, pq.StringArray(cls.GradeLevels), string(cls.Term), string(cls.Program),
		packInts(cls.Days), packInts(cls.ScheduleBlocks), cls.MaxSize, cls.AdditionalCosts,
		null.NewString(cls.TeacherID, cls.TeacherID != ""), null.NewString(cls.ClassroomID, cls.ClassroomID != ""),
		cls.CreatedAt.UTC(), cls.UpdatedAt.UTC(),
	)
	if err != nil {
		return enrollment.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo enrollmentRepository) QueryClasses(ctx context.Context, filter *enrollment.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]enrollment.Class, error) {
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
			conds = append(conds, "name ILIKE "+arg("%"+filter.Search+"%"))
		}
		if filter.Term != "" {
			conds = append(conds, "term = "+arg(string(filter.Term)))
		}
		if filter.Grade != "" {
			conds = append(conds, arg(filter.Grade)+" = ANY(grade_levels)")
		}
	}

	query := "SELECT * FROM class"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, "name ASC")

	var rows []dbClass
	if err := repo.getExec(exec).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]enrollment.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, unpackClass(row))
	}
	return classes, nil
}

func (repo enrollmentRepository) GetClass(ctx context.Context, filter enrollment.GetFilter, exec ...core.DBExecutor) (enrollment.Class, error) {
	var (
		row dbClass
		err error
		exc = repo.getExec(exec)
	)
	if filter.ID != "" {
		err = exc.GetContext(ctx, &row, "SELECT * FROM class WHERE id = $1", filter.ID)
	} else {
		err = exc.GetContext(ctx, &row, "SELECT * FROM class WHERE name = $1 AND term = $2", filter.Name, string(filter.Term))
	}
	if err != nil {
		return enrollment.Class{}, trapNoRowsErr(err, enrollment.ErrClassNotFound, "getting class")
	}
	return unpackClass(row), nil
}

func (repo enrollmentRepository) UpdateClass(ctx context.Context, cls enrollment.Class, exec ...core.DBExecutor) (enrollment.Class, error) {
	var (
		sets []string
		args []interface{}
	)
	set := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if cls.Name != "" {
		set("name", cls.Name)
	}
	if cls.GradeLevels != nil {
		set("grade_levels", pq.StringArray(cls.GradeLevels))
	}
	if cls.Term != "" {
		set("term", string(cls.Term))
	}
	if cls.Program != "" {
		set("program", string(cls.Program))
	}
	if cls.Days != nil {
		set("days", packInts(cls.Days))
	}
	if cls.ScheduleBlocks != nil {
		set("schedule_blocks", packInts(cls.ScheduleBlocks))
	}
	if cls.TeacherID != "" {
		set("teacher_id", cls.TeacherID)
	}
	if cls.ClassroomID != "" {
		set("classroom_id", cls.ClassroomID)
	}
	set("max_size", cls.MaxSize)
	set("additional_costs", cls.AdditionalCosts)
	if cls.UpdatedAt.IsZero() {
		cls.UpdatedAt = time.Now()
	}
	set("updated_at", cls.UpdatedAt.UTC())

	args = append(args, cls.ID)
	query := fmt.Sprintf("UPDATE class SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	if _, err := repo.getExec(exec).ExecContext(ctx, query, args...); err != nil {
		return enrollment.Class{}, errors.Wrap(err, "updating class")
	}
	return repo.GetClass(ctx, enrollment.GetFilter{ID: cls.ID}, exec...)
}

func (repo enrollmentRepository) DeleteClassesByID(ctx context.Context, exec core.DBExecutor, ids ...string) error {
	if exec == nil {
		exec = repo.exec
	}
	if _, err := exec.ExecContext(ctx, "DELETE FROM class WHERE id = ANY($1)", pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting classes")
	}
	return nil
}

// Assignments

func (repo enrollmentRepository) CreateAssignment(ctx context.Context, asg enrollment.Assignment, exec ...core.DBExecutor) (enrollment.Assignment, error) {
	asg.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO class_assignment (id, student_id, class_id, program, scheduled_days, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		asg.ID, asg.StudentID, asg.ClassID, string(asg.Program), asg.ScheduledDays, asg.CreatedAt.UTC(),
	)
	if err != nil {
		return enrollment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (repo enrollmentRepository) QueryAssignments(ctx context.Context, filter *enrollment.AssignmentFilter, exec ...core.DBExecutor) ([]enrollment.Assignment, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.StudentID != "" {
			conds = append(conds, "student_id = "+arg(filter.StudentID))
		}
		if filter.ClassID != "" {
			conds = append(conds, "class_id = "+arg(filter.ClassID))
		}
	}

	query := "SELECT * FROM class_assignment"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at ASC"

	var rows []dbAssignment
	if err := repo.getExec(exec).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := make([]enrollment.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, unpackAssignment(row))
	}
	return assignments, nil
}

func (repo enrollmentRepository) CountAssignmentsByClass(ctx context.Context, classID string, exec ...core.DBExecutor) (int, error) {
	var count int
	err := repo.getExec(exec).GetContext(ctx, &count, "SELECT COUNT(*) FROM class_assignment WHERE class_id = $1", classID)
	if err != nil {
		return 0, errors.Wrap(err, "counting assignments")
	}
	return count, nil
}

func (repo enrollmentRepository) DeleteAssignmentsByID(ctx context.Context, exec core.DBExecutor, ids ...string) error {
	if exec == nil {
		exec = repo.exec
	}
	if _, err := exec.ExecContext(ctx, "DELETE FROM class_assignment WHERE id = ANY($1)", pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting assignments")
	}
	return nil
}
