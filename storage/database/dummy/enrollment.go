package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/enrollment"
)

type enrollmentRepository struct {
	db *enrollmentTables
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db.enrollment}
}

func (repo *enrollmentRepository) CreateClassroom(ctx context.Context, room enrollment.Classroom, exec ...core.DBExecutor) (enrollment.Classroom, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	room.ID = uuid.New().String()
	repo.db.classrooms[room.ID] = &room
	return room, nil
}

func (repo *enrollmentRepository) QueryClassrooms(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]enrollment.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rooms := make([]enrollment.Classroom, 0, len(repo.db.classrooms))
	for _, room := range repo.db.classrooms {
		rooms = append(rooms, *room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

func (repo *enrollmentRepository) GetClassroomByID(ctx context.Context, id string, exec ...core.DBExecutor) (enrollment.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if room, ok := repo.db.classrooms[id]; ok {
		return *room, nil
	}
	return enrollment.Classroom{}, enrollment.ErrClassroomNotFound
}

func (repo *enrollmentRepository) UpdateClassroom(ctx context.Context, room enrollment.Classroom, exec ...core.DBExecutor) (enrollment.Classroom, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origRoom, ok := repo.db.classrooms[room.ID]
	if !ok {
		return enrollment.Classroom{}, enrollment.ErrClassroomNotFound
	}
	if room.Name != "" {
		origRoom.Name = room.Name
	}
	if room.Capacity > 0 {
		origRoom.Capacity = room.Capacity
	}
	origRoom.UpdatedAt = room.UpdatedAt

	repo.db.classrooms[room.ID] = origRoom
	return *origRoom, nil
}

func (repo *enrollmentRepository) DeleteClassroomsByID(ctx context.Context, exec core.DBExecutor, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.classrooms, id)
	}
	return nil
}

func (repo *enrollmentRepository) queryClasses() []enrollment.Class {
	classes := make([]enrollment.Class, 0, len(repo.db.classes))
	for _, cls := range repo.db.classes {
		classes = append(classes, *cls)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes
}

func (repo *enrollmentRepository) CheckClassUniqueness(ctx context.Context, name string, term enrollment.Term, excludedClasses []enrollment.Class, exec ...core.DBExecutor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]struct{}, len(excludedClasses))
	for _, cls := range excludedClasses {
		excluded[cls.ID] = struct{}{}
	}
	for _, cls := range repo.queryClasses() {
		if _, ok := excluded[cls.ID]; ok {
			continue
		}
		if cls.Name == name && cls.Term == term {
			return enrollment.ErrClassExists
		}
	}
	return nil
}

func (repo *enrollmentRepository) CreateClass(ctx context.Context, cls enrollment.Class, exec ...core.DBExecutor) (enrollment.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cls.ID = uuid.New().String()
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *enrollmentRepository) QueryClasses(ctx context.Context, filter *enrollment.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]enrollment.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := repo.queryClasses()
	if filter == nil {
		return classes, nil
	}

	if filter.Search != "" {
		var filtered []enrollment.Class
		for _, cls := range classes {
			if strings.Contains(strings.ToLower(cls.Name), strings.ToLower(filter.Search)) {
				filtered = append(filtered, cls)
			}
		}
		classes = filtered
	}
	if classes != nil && filter.Term != "" {
		var filtered []enrollment.Class
		for _, cls := range classes {
			if cls.Term == filter.Term {
				filtered = append(filtered, cls)
			}
		}
		classes = filtered
	}
	if classes != nil && filter.Grade != "" {
		var filtered []enrollment.Class
		for _, cls := range classes {
			for _, grade := range cls.GradeLevels {
				if grade == filter.Grade {
					filtered = append(filtered, cls)
					break
				}
			}
		}
		classes = filtered
	}

	return classes, nil
}

func (repo *enrollmentRepository) GetClass(ctx context.Context, filter enrollment.GetFilter, exec ...core.DBExecutor) (enrollment.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if cls, ok := repo.db.classes[filter.ID]; ok {
			return *cls, nil
		}
		return enrollment.Class{}, enrollment.ErrClassNotFound
	}
	for _, cls := range repo.queryClasses() {
		if cls.Name == filter.Name && cls.Term == filter.Term {
			return cls, nil
		}
	}
	return enrollment.Class{}, enrollment.ErrClassNotFound
}

func (repo *enrollmentRepository) UpdateClass(ctx context.Context, cls enrollment.Class, exec ...core.DBExecutor) (enrollment.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	origCls, ok := repo.db.classes[cls.ID]
	if !ok {
		return enrollment.Class{}, enrollment.ErrClassNotFound
	}
	if cls.Name != "" {
		origCls.Name = cls.Name
	}
	if cls.GradeLevels != nil {
		origCls.GradeLevels = cls.GradeLevels
	}
	if cls.Term != "" {
		origCls.Term = cls.Term
	}
	if cls.Program != "" {
		origCls.Program = cls.Program
	}
	if cls.Days != nil {
		origCls.Days = cls.Days
	}
	if cls.ScheduleBlocks != nil {
		origCls.ScheduleBlocks = cls.ScheduleBlocks
	}
	origCls.MaxSize = cls.MaxSize
	origCls.AdditionalCosts = cls.AdditionalCosts
	origCls.TeacherID = cls.TeacherID
	origCls.ClassroomID = cls.ClassroomID
	origCls.UpdatedAt = cls.UpdatedAt

	repo.db.classes[cls.ID] = origCls
	return *origCls, nil
}

func (repo *enrollmentRepository) DeleteClassesByID(ctx context.Context, exec core.DBExecutor, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.classes, id)
	}
	return nil
}

func (repo *enrollmentRepository) CreateAssignment(ctx context.Context, asg enrollment.Assignment, exec ...core.DBExecutor) (enrollment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	asg.ID = uuid.New().String()
	repo.db.assignments[asg.ID] = &asg
	return asg, nil
}

func (repo *enrollmentRepository) QueryAssignments(ctx context.Context, filter *enrollment.AssignmentFilter, exec ...core.DBExecutor) ([]enrollment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	assignments := make([]enrollment.Assignment, 0, len(repo.db.assignments))
	for _, asg := range repo.db.assignments {
		if filter != nil {
			if filter.StudentID != "" && asg.StudentID != filter.StudentID {
				continue
			}
			if filter.ClassID != "" && asg.ClassID != filter.ClassID {
				continue
			}
		}
		assignments = append(assignments, *asg)
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].CreatedAt.Before(assignments[j].CreatedAt) })
	return assignments, nil
}

func (repo *enrollmentRepository) CountAssignmentsByClass(ctx context.Context, classID string, exec ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, asg := range repo.db.assignments {
		if asg.ClassID == classID {
			count++
		}
	}
	return count, nil
}

func (repo *enrollmentRepository) DeleteAssignmentsByID(ctx context.Context, exec core.DBExecutor, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.assignments, id)
	}
	return nil
}
