package billing

import (
	"testing"

	"github.com/trezcool/shule/core/enrollment"
)

func testPriceTable() PriceTable {
	return PriceTable{
		TierK: {
			enrollment.ProgramMorning:   40,
			enrollment.ProgramAfternoon: 35,
		},
		TierGrades3to8: {
			enrollment.ProgramFull:     100,
			enrollment.ProgramAcademic: 80,
		},
	}
}

func TestCalculatorCalculate(t *testing.T) {
	const surcharge = 300.0
	calc := NewCalculator(testPriceTable(), surcharge, nopLogger{})

	tests := []struct {
		name        string
		tier        Tier
		assignments []enrollment.Assignment
		want        float64
	}{
		{
			name: "zero assignments",
			tier: TierGrades3to8,
			want: 0,
		},
		{
			name: "rate times scheduled days",
			tier: TierGrades3to8,
			assignments: []enrollment.Assignment{
				{Program: enrollment.ProgramFull, ScheduledDays: 4},
			},
			want: 400,
		},
		{
			name: "academic class adds one surcharge",
			tier: TierGrades3to8,
			assignments: []enrollment.Assignment{
				{Program: enrollment.ProgramAcademic, ScheduledDays: 3},
			},
			want: 80*3 + surcharge,
		},
		{
			name: "surcharge applied once for multiple academic classes",
			tier: TierGrades3to8,
			assignments: []enrollment.Assignment{
				{Program: enrollment.ProgramAcademic, ScheduledDays: 2},
				{Program: enrollment.ProgramAcademic, ScheduledDays: 1},
			},
			want: 80*2 + 80*1 + surcharge,
		},
		{
			name: "unbillable program contributes zero",
			tier: TierK,
			assignments: []enrollment.Assignment{
				{Program: enrollment.ProgramMorning, ScheduledDays: 2},
				{Program: enrollment.ProgramFull, ScheduledDays: 5},
			},
			want: 40 * 2,
		},
		{
			name: "mixed programs",
			tier: TierGrades3to8,
			assignments: []enrollment.Assignment{
				{Program: enrollment.ProgramFull, ScheduledDays: 2},
				{Program: enrollment.ProgramAcademic, ScheduledDays: 1},
			},
			want: 100*2 + 80*1 + surcharge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.Calculate(tt.tier, tt.assignments); got != tt.want {
				t.Errorf("Calculate() = %v, want %v", got, tt.want)
			}
		})
	}
}
