package enrollment

import (
	"time"

	"github.com/trezcool/shule/core"
)

// ProgramType is the kind of class/time-block a student is enrolled in.
// Valid members differ per pricing tier (e.g. kindergarten only runs
// morning/afternoon programs).
type ProgramType string

const (
	ProgramMorning    ProgramType = "morning"
	ProgramAfternoon  ProgramType = "afternoon"
	ProgramFull       ProgramType = "full"
	ProgramEnrichment ProgramType = "enrichment"
	ProgramAcademic   ProgramType = "academic"
)

var AllPrograms = []ProgramType{ProgramMorning, ProgramAfternoon, ProgramFull, ProgramEnrichment, ProgramAcademic}

type Term string

const (
	TermSemester1 Term = "Semester 1"
	TermSemester2 Term = "Semester 2"
	TermBoth      Term = "Both"
)

var AllTerms = []Term{TermSemester1, TermSemester2, TermBoth}

type Classroom struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewClassroom contains information needed to create a new Classroom.
type NewClassroom struct {
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"omitempty,gte=0"`
}

func (nc *NewClassroom) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

type Class struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	GradeLevels     []string    `json:"grade_levels"`
	Term            Term        `json:"term"`
	Program         ProgramType `json:"program"`
	Days            []int       `json:"days"`            // ISO weekdays, 1 = Monday
	ScheduleBlocks  []int       `json:"schedule_blocks"` // period blocks within a day
	MaxSize         int         `json:"max_size"`
	AdditionalCosts float64     `json:"additional_costs"`
	TeacherID       string      `json:"teacher_id,omitempty"`
	ClassroomID     string      `json:"classroom_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"` // UTC
	UpdatedAt       time.Time   `json:"updated_at"` // UTC
}

// ScheduledDayCount is the number of days per week this class meets.
func (c *Class) ScheduledDayCount() int { return len(c.Days) }

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name            string      `json:"name" validate:"required"`
	GradeLevels     []string    `json:"grade_levels" validate:"omitempty,dive,gradelevel"`
	Term            Term        `json:"term" validate:"required,term"`
	Program         ProgramType `json:"program" validate:"required,program"`
	Days            []int       `json:"days" validate:"omitempty,dive,min=1,max=5"`
	ScheduleBlocks  []int       `json:"schedule_blocks" validate:"omitempty,dive,min=1,max=9"`
	MaxSize         int         `json:"max_size" validate:"omitempty,gte=0"`
	AdditionalCosts float64     `json:"additional_costs" validate:"omitempty,gte=0"`
	TeacherID       string      `json:"teacher_id" validate:"omitempty,uuid4"`
	ClassroomID     string      `json:"classroom_id" validate:"omitempty,uuid4"`
}

func (nc *NewClass) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing Class.
type UpdateClass struct {
	Name            string      `json:"name"`
	GradeLevels     []string    `json:"grade_levels" validate:"omitempty,dive,gradelevel"`
	Term            Term        `json:"term" validate:"omitempty,term"`
	Program         ProgramType `json:"program" validate:"omitempty,program"`
	Days            []int       `json:"days" validate:"omitempty,dive,min=1,max=5"`
	ScheduleBlocks  []int       `json:"schedule_blocks" validate:"omitempty,dive,min=1,max=9"`
	MaxSize         *int        `json:"max_size" validate:"omitempty,gte=0"`
	AdditionalCosts *float64    `json:"additional_costs" validate:"omitempty,gte=0"`
	TeacherID       string      `json:"teacher_id" validate:"omitempty,uuid4"`
	ClassroomID     string      `json:"classroom_id" validate:"omitempty,uuid4"`
}

func (uc *UpdateClass) Validate(origCls Class) error {
	name := core.CleanString(uc.Name)
	if name != "" {
		uc.Name = name
	} else {
		uc.Name = origCls.Name
	}
	if uc.Term == "" {
		uc.Term = origCls.Term
	}
	if uc.Program == "" {
		uc.Program = origCls.Program
	}
	return core.Validate.Struct(uc)
}

// Assignment enrolls a student into a class. Program and ScheduledDays are
// denormalized from the class at assignment time; they are what the tuition
// calculator consumes.
type Assignment struct {
	ID            string      `json:"id"`
	StudentID     string      `json:"student_id"`
	ClassID       string      `json:"class_id"`
	Program       ProgramType `json:"program"`
	ScheduledDays int         `json:"scheduled_days"`
	CreatedAt     time.Time   `json:"created_at"` // UTC
}

// NewAssignment contains information needed to enroll a student into a class.
type NewAssignment struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
	ClassID   string `json:"class_id" validate:"required,uuid4"`
}

func (na *NewAssignment) Validate() error { return core.Validate.Struct(na) }

type QueryFilter struct {
	Search string `query:"search"`
	Term   Term   `query:"term"`
	Grade  string `query:"grade"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Term == "" && qf.Grade == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Grade = core.CleanString(qf.Grade, true /* lower */)
	if qf.Grade == "k" {
		qf.Grade = "K"
	}
}

type AssignmentFilter struct {
	StudentID string `query:"student_id"`
	ClassID   string `query:"class_id"`
}

// GetFilter filters a single-Class lookup; ID takes precedence.
type GetFilter struct {
	ID   string
	Name string
	Term Term
}
