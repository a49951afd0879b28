package student

import (
	"time"

	"github.com/trezcool/shule/core"
)

// ValidGrades are the grade levels the school enrolls, kindergarten first.
var ValidGrades = []string{"K", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}

type Student struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	GradeLevel string    `json:"grade_level"`
	GuardianID string    `json:"guardian_id"`
	// PaidInFull marks the family's payment plan for this student as a
	// single upfront payment rather than installments.
	PaidInFull bool      `json:"paid_in_full"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

func (s *Student) FullName() string {
	if s.FirstName == "" {
		return s.LastName
	}
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	GradeLevel string `json:"grade_level" validate:"required,gradelevel"`
	GuardianID string `json:"guardian_id" validate:"required,uuid4"`
	PaidInFull bool   `json:"paid_in_full"`
}

func (ns *NewStudent) Validate() error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.GradeLevel = cleanGrade(ns.GradeLevel)
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Zero-valued fields are left untouched.
type UpdateStudent struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	GradeLevel string `json:"grade_level" validate:"omitempty,gradelevel"`
	GuardianID string `json:"guardian_id" validate:"omitempty,uuid4"`
	PaidInFull *bool  `json:"paid_in_full"`
}

func (us *UpdateStudent) Validate() error {
	us.FirstName = core.CleanString(us.FirstName)
	us.LastName = core.CleanString(us.LastName)
	us.GradeLevel = cleanGrade(us.GradeLevel)
	return core.Validate.Struct(us)
}

type QueryFilter struct {
	Search     string `query:"search"`
	GradeLevel string `query:"grade_level"`
	GuardianID string `query:"guardian_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.GradeLevel == "" && qf.GuardianID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.GradeLevel = cleanGrade(qf.GradeLevel)
}

// cleanGrade canonicalizes a grade level; "k" becomes "K", numeric grades
// keep their digits.
func cleanGrade(grade string) string {
	grade = core.CleanString(grade)
	if grade == "k" {
		return "K"
	}
	return grade
}
