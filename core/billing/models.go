package billing

import "github.com/trezcool/shule/core/enrollment"

type Status string

const (
	StatusPending  Status = "Pending"
	StatusNoCharge Status = "No Charge"
)

// Enrollee is a complete snapshot of one student's billing inputs, gathered
// by the caller before the pipeline runs. Computation never reads storage.
type Enrollee struct {
	StudentID  string
	FamilyID   string
	GradeLevel string
	// IsStaff is true when the student's guardian is a school employee.
	IsStaff    bool
	PaidInFull bool

	Assignments []enrollment.Assignment
}

// LineItem is one student's computed tuition. RawAmount is the tuition
// before any discount; Amount is the final billed amount after sibling,
// staff and prepayment discounts, rounded to cents.
type LineItem struct {
	StudentID  string  `json:"student_id"`
	FamilyID   string  `json:"family_id"`
	GradeLevel string  `json:"grade_level"`
	RawAmount  float64 `json:"raw_amount"`
	Amount     float64 `json:"amount"`
	Status     Status  `json:"status"`
}
