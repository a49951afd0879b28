package billing

import (
	"github.com/trezcool/shule/core"
)

// Engine runs the tuition pipeline: classify each enrollee's grade,
// calculate raw tuition, allocate the sibling discount per family, then
// apply the staff and prepayment adjustments and round to cents.
//
// The pipeline is pure; identical input always yields identical output.
type Engine struct {
	calc *Calculator
	conf core.BillingConfig
}

func NewEngine(table PriceTable, conf core.BillingConfig, logger core.Logger) *Engine {
	return &Engine{
		calc: NewCalculator(table, conf.AcademicSurcharge, logger),
		conf: conf,
	}
}

// Run computes final line items for a batch of enrollees. Each family's
// roster must be complete within the batch; a partial roster would discount
// the wrong children. Input order is preserved in the output.
//
// A grade level that cannot be classified fails the whole batch with
// ErrInvalidGrade; it is never silently defaulted.
func (eng *Engine) Run(enrollees []Enrollee) ([]LineItem, error) {
	items := make([]LineItem, 0, len(enrollees))
	flags := make(map[string]Enrollee, len(enrollees))

	for _, enr := range enrollees {
		tier, err := ClassifyGrade(enr.GradeLevel)
		if err != nil {
			return nil, err
		}
		raw := eng.calc.Calculate(tier, enr.Assignments)
		items = append(items, LineItem{
			StudentID:  enr.StudentID,
			FamilyID:   enr.FamilyID,
			GradeLevel: enr.GradeLevel,
			RawAmount:  raw,
			Amount:     raw,
		})
		flags[enr.StudentID] = enr
	}

	// group line item indices per family, preserving order
	families := make(map[string][]int)
	var familyOrder []string
	for i, item := range items {
		if _, ok := families[item.FamilyID]; !ok {
			familyOrder = append(familyOrder, item.FamilyID)
		}
		families[item.FamilyID] = append(families[item.FamilyID], i)
	}

	for _, familyID := range familyOrder {
		idx := families[familyID]
		familyItems := make([]LineItem, len(idx))
		for j, i := range idx {
			familyItems[j] = items[i]
		}
		familyItems = AllocateSiblingDiscount(familyItems, eng.conf.SiblingDiscountRate)
		for j, i := range idx {
			items[i] = familyItems[j]
		}
	}

	for i := range items {
		enr := flags[items[i].StudentID]
		amount := Adjust(items[i].Amount, enr.IsStaff, enr.PaidInFull,
			eng.conf.StaffDiscountRate, eng.conf.PrepaidDiscountRate)
		amount = core.Round2(amount)
		items[i].Amount = amount
		if amount > 0 {
			items[i].Status = StatusPending
		} else {
			items[i].Status = StatusNoCharge
		}
	}
	return items, nil
}
