package billing

import (
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/enrollment"
)

// PriceTable maps (tier, program type) to a per-day rate. Combinations
// absent from the table are not billable for that tier.
type PriceTable map[Tier]map[enrollment.ProgramType]float64

// DefaultPriceTable returns the school's standard rates. Kindergarten only
// runs morning and afternoon programs; the other tiers bill full-day,
// enrichment and academic programs.
func DefaultPriceTable() PriceTable {
	return PriceTable{
		TierK: {
			enrollment.ProgramMorning:   45,
			enrollment.ProgramAfternoon: 40,
		},
		TierGrades1to2: {
			enrollment.ProgramFull:       95,
			enrollment.ProgramEnrichment: 55,
			enrollment.ProgramAcademic:   75,
		},
		TierGrades3to8: {
			enrollment.ProgramFull:       105,
			enrollment.ProgramEnrichment: 60,
			enrollment.ProgramAcademic:   85,
		},
		TierGrades9to12: {
			enrollment.ProgramFull:       115,
			enrollment.ProgramEnrichment: 65,
			enrollment.ProgramAcademic:   95,
		},
	}
}

// Rate returns the per-day rate for a (tier, program) combination.
func (t PriceTable) Rate(tier Tier, program enrollment.ProgramType) (float64, bool) {
	programs, ok := t[tier]
	if !ok {
		return 0, false
	}
	rate, ok := programs[program]
	return rate, ok
}

// Calculator computes a student's raw tuition from their class assignments.
// The price table is injected so pricing changes are a configuration update,
// not a code change.
type Calculator struct {
	table             PriceTable
	academicSurcharge float64
	logger            core.Logger
}

func NewCalculator(table PriceTable, academicSurcharge float64, logger core.Logger) *Calculator {
	return &Calculator{table: table, academicSurcharge: academicSurcharge, logger: logger}
}

// Calculate sums per-assignment contributions of rate * scheduled day count.
// A program not billable for the tier contributes zero and is logged; the
// flat academic surcharge is added at most once however many academic
// classes the student takes. No rounding happens here.
func (c *Calculator) Calculate(tier Tier, assignments []enrollment.Assignment) float64 {
	var amount float64
	var academic bool
	for _, asg := range assignments {
		if asg.Program == enrollment.ProgramAcademic {
			academic = true
		}
		rate, ok := c.table.Rate(tier, asg.Program)
		if !ok {
			c.logger.Warn("program not billable for tier", map[string]interface{}{
				"tier": tier, "program": asg.Program, "student_id": asg.StudentID,
			})
			continue
		}
		amount += rate * float64(asg.ScheduledDays)
	}
	if academic {
		amount += c.academicSurcharge
	}
	return amount
}
