package enrollment

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrClassNotFound     = errors.New("class not found")
	ErrClassroomNotFound = errors.New("classroom not found")
	ErrClassExists       = errors.New("a class with this name already exists for this term")
	ErrClassFull         = errors.New("class is full")
	ErrAlreadyAssigned   = errors.New("student is already assigned to this class")
	ErrTeacherRequired   = errors.New("user is not a teacher")
)

type (
	Repository interface {
		CreateClassroom(ctx context.Context, room Classroom, exec ...core.DBExecutor) (Classroom, error)
		QueryClassrooms(ctx context.Context, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Classroom, error)
		GetClassroomByID(ctx context.Context, id string, exec ...core.DBExecutor) (Classroom, error)
		UpdateClassroom(ctx context.Context, room Classroom, exec ...core.DBExecutor) (Classroom, error)
		DeleteClassroomsByID(ctx context.Context, exec core.DBExecutor, ids ...string) error

		CheckClassUniqueness(ctx context.Context, name string, term Term, excludedClasses []Class, exec ...core.DBExecutor) error
		CreateClass(ctx context.Context, cls Class, exec ...core.DBExecutor) (Class, error)
		// QueryClasses applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Class.Name.
		QueryClasses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Class, error)
		GetClass(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Class, error)
		UpdateClass(ctx context.Context, cls Class, exec ...core.DBExecutor) (Class, error)
		DeleteClassesByID(ctx context.Context, exec core.DBExecutor, ids ...string) error

		CreateAssignment(ctx context.Context, asg Assignment, exec ...core.DBExecutor) (Assignment, error)
		QueryAssignments(ctx context.Context, filter *AssignmentFilter, exec ...core.DBExecutor) ([]Assignment, error)
		CountAssignmentsByClass(ctx context.Context, classID string, exec ...core.DBExecutor) (int, error)
		DeleteAssignmentsByID(ctx context.Context, exec core.DBExecutor, ids ...string) error
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) CreateClassroom(ctx context.Context, nc NewClassroom) (Classroom, error) {
	now := time.Now().UTC()
	room := Classroom{
		Name:      nc.Name,
		Capacity:  nc.Capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateClassroom(ctx, room)
}

func (svc *Service) QueryClassrooms(ctx context.Context, ordering ...core.DBOrdering) ([]Classroom, error) {
	return svc.repo.QueryClassrooms(ctx, ordering)
}

func (svc *Service) GetClassroom(ctx context.Context, id string) (Classroom, error) {
	return svc.repo.GetClassroomByID(ctx, id)
}

func (svc *Service) DeleteClassrooms(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteClassroomsByID(ctx, svc.db, ids...)
}

func (svc *Service) checkClassUniqueness(ctx context.Context, name string, term Term, exclClasses ...Class) error {
	if err := svc.repo.CheckClassUniqueness(ctx, name, term, exclClasses); err != nil {
		if err == ErrClassExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	if err := svc.checkClassUniqueness(ctx, nc.Name, nc.Term); err != nil {
		return Class{}, err
	}
	now := time.Now().UTC()
	cls := Class{
		Name:            nc.Name,
		GradeLevels:     nc.GradeLevels,
		Term:            nc.Term,
		Program:         nc.Program,
		Days:            nc.Days,
		ScheduleBlocks:  nc.ScheduleBlocks,
		MaxSize:         nc.MaxSize,
		AdditionalCosts: nc.AdditionalCosts,
		TeacherID:       nc.TeacherID,
		ClassroomID:     nc.ClassroomID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return svc.repo.CreateClass(ctx, cls)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Class, error) {
	if filter != nil {
		filter.Clean()
		if filter.IsEmpty() {
			filter = nil
		}
	}
	return svc.repo.QueryClasses(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClass(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByNameAndTerm(ctx context.Context, name string, term Term) (Class, error) {
	return svc.repo.GetClass(ctx, GetFilter{Name: core.CleanString(name), Term: term})
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	origCls, err := svc.GetByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if uc.Name != origCls.Name || uc.Term != origCls.Term {
		if err := svc.checkClassUniqueness(ctx, uc.Name, uc.Term, origCls); err != nil {
			return Class{}, err
		}
	}
	cls := Class{
		ID:             id,
		Name:           uc.Name,
		GradeLevels:    uc.GradeLevels,
		Term:           uc.Term,
		Program:        uc.Program,
		Days:           uc.Days,
		ScheduleBlocks: uc.ScheduleBlocks,
		TeacherID:      uc.TeacherID,
		ClassroomID:    uc.ClassroomID,
		UpdatedAt:      time.Now().UTC(),
	}
	if uc.MaxSize != nil {
		cls.MaxSize = *uc.MaxSize
	} else {
		cls.MaxSize = origCls.MaxSize
	}
	if uc.AdditionalCosts != nil {
		cls.AdditionalCosts = *uc.AdditionalCosts
	} else {
		cls.AdditionalCosts = origCls.AdditionalCosts
	}
	return svc.repo.UpdateClass(ctx, cls)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteClassesByID(ctx, svc.db, ids...)
}

// Assign enrolls a student into a class, denormalizing the class's program
// and schedule onto the assignment. Enrollment is refused once the class
// has reached MaxSize (0 means unbounded).
func (svc *Service) Assign(ctx context.Context, na NewAssignment) (Assignment, error) {
	cls, err := svc.GetByID(ctx, na.ClassID)
	if err != nil {
		return Assignment{}, err
	}

	existing, err := svc.repo.QueryAssignments(ctx, &AssignmentFilter{StudentID: na.StudentID, ClassID: na.ClassID})
	if err != nil {
		return Assignment{}, err
	}
	if len(existing) > 0 {
		return Assignment{}, core.NewValidationError(ErrAlreadyAssigned,
			core.FieldError{Field: "class_id", Error: ErrAlreadyAssigned.Error()})
	}

	if cls.MaxSize > 0 {
		count, err := svc.repo.CountAssignmentsByClass(ctx, cls.ID)
		if err != nil {
			return Assignment{}, err
		}
		if count >= cls.MaxSize {
			return Assignment{}, core.NewValidationError(ErrClassFull,
				core.FieldError{Field: "class_id", Error: ErrClassFull.Error()})
		}
	}

	asg := Assignment{
		StudentID:     na.StudentID,
		ClassID:       cls.ID,
		Program:       cls.Program,
		ScheduledDays: cls.ScheduledDayCount(),
		CreatedAt:     time.Now().UTC(),
	}
	return svc.repo.CreateAssignment(ctx, asg)
}

func (svc *Service) QueryAssignments(ctx context.Context, filter *AssignmentFilter) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, filter)
}

// StudentAssignments returns the assignments of a single student.
func (svc *Service) StudentAssignments(ctx context.Context, studentID string) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, &AssignmentFilter{StudentID: studentID})
}

func (svc *Service) Unassign(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteAssignmentsByID(ctx, svc.db, ids...)
}
