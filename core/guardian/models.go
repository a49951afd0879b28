package guardian

import (
	"time"

	"github.com/trezcool/shule/core"
)

// Guardian is the billing contact for a family. Students sharing a guardian
// are siblings for tuition purposes.
type Guardian struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	// IsStaff marks the guardian as a school employee; their children's
	// tuition is discounted.
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewGuardian contains information needed to create a new Guardian.
type NewGuardian struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	IsStaff bool   `json:"is_staff"`
}

func (ng *NewGuardian) Validate() error {
	ng.Name = core.CleanString(ng.Name)
	ng.Email = core.CleanString(ng.Email, true /* lower */)
	ng.Phone = core.CleanString(ng.Phone)
	return core.Validate.Struct(ng)
}

// UpdateGuardian defines what information may be provided to modify an existing Guardian.
type UpdateGuardian struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	IsStaff *bool  `json:"is_staff"`
}

func (ug *UpdateGuardian) Validate() error {
	ug.Name = core.CleanString(ug.Name)
	ug.Email = core.CleanString(ug.Email, true /* lower */)
	ug.Phone = core.CleanString(ug.Phone)
	return core.Validate.Struct(ug)
}

type QueryFilter struct {
	Search  string `query:"search"`
	IsStaff *bool  `query:"is_staff"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.IsStaff == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
