package billing

import (
	"reflect"
	"testing"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/enrollment"
)

func testEngine() *Engine {
	conf := core.BillingConfig{
		AcademicSurcharge:   300,
		SiblingDiscountRate: 0.9,
		StaffDiscountRate:   0.8,
		PrepaidDiscountRate: 0.95,
	}
	return NewEngine(testPriceTable(), conf, nopLogger{})
}

func TestEngineRun(t *testing.T) {
	eng := testEngine()

	t.Run("invalid grade fails the batch", func(t *testing.T) {
		_, err := eng.Run([]Enrollee{{StudentID: "a", FamilyID: "f", GradeLevel: "13"}})
		if err == nil {
			t.Fatal("expected ErrInvalidGrade, got nil")
		}
	})

	t.Run("no assignments yields no charge", func(t *testing.T) {
		items, err := eng.Run([]Enrollee{{StudentID: "a", FamilyID: "f", GradeLevel: "5"}})
		if err != nil {
			t.Fatal(err)
		}
		if items[0].Amount != 0 {
			t.Errorf("Amount = %v, want 0", items[0].Amount)
		}
		if items[0].Status != StatusNoCharge {
			t.Errorf("Status = %v, want %v", items[0].Status, StatusNoCharge)
		}
	})

	t.Run("sibling staff and prepaid discounts compound", func(t *testing.T) {
		// full-day class, 5 days at 100 -> 500 raw per child
		assignments := []enrollment.Assignment{{Program: enrollment.ProgramFull, ScheduledDays: 5}}
		enrollees := []Enrollee{
			{StudentID: "a", FamilyID: "f", GradeLevel: "4", IsStaff: true, PaidInFull: true, Assignments: assignments},
			{StudentID: "b", FamilyID: "f", GradeLevel: "6", IsStaff: true, PaidInFull: true, Assignments: assignments},
		}
		items, err := eng.Run(enrollees)
		if err != nil {
			t.Fatal(err)
		}
		// first child: 500 * 0.8 * 0.95
		if want := 380.0; items[0].Amount != want {
			t.Errorf("first child Amount = %v, want %v", items[0].Amount, want)
		}
		// sibling: 500 * 0.9 * 0.8 * 0.95
		if want := 342.0; items[1].Amount != want {
			t.Errorf("sibling Amount = %v, want %v", items[1].Amount, want)
		}
		for _, item := range items {
			if item.RawAmount != 500 {
				t.Errorf("RawAmount = %v, want 500", item.RawAmount)
			}
			if item.Status != StatusPending {
				t.Errorf("Status = %v, want %v", item.Status, StatusPending)
			}
		}
	})

	t.Run("families are discounted independently", func(t *testing.T) {
		assignments := []enrollment.Assignment{{Program: enrollment.ProgramFull, ScheduledDays: 2}}
		enrollees := []Enrollee{
			{StudentID: "a", FamilyID: "f1", GradeLevel: "4", Assignments: assignments},
			{StudentID: "b", FamilyID: "f2", GradeLevel: "4", Assignments: assignments},
		}
		items, err := eng.Run(enrollees)
		if err != nil {
			t.Fatal(err)
		}
		for _, item := range items {
			if item.Amount != 200 {
				t.Errorf("only child %s Amount = %v, want 200", item.StudentID, item.Amount)
			}
		}
	})

	t.Run("amounts are rounded to cents", func(t *testing.T) {
		// K morning, 3 days at 40 -> 120; staff+prepaid: 120*0.8*0.95 = 91.2
		enrollees := []Enrollee{{
			StudentID: "a", FamilyID: "f", GradeLevel: "K", IsStaff: true, PaidInFull: true,
			Assignments: []enrollment.Assignment{{Program: enrollment.ProgramMorning, ScheduledDays: 3}},
		}}
		items, err := eng.Run(enrollees)
		if err != nil {
			t.Fatal(err)
		}
		if want := 91.2; items[0].Amount != want {
			t.Errorf("Amount = %v, want %v", items[0].Amount, want)
		}
	})

	t.Run("pipeline is idempotent", func(t *testing.T) {
		assignments := []enrollment.Assignment{{Program: enrollment.ProgramAcademic, ScheduledDays: 3}}
		enrollees := []Enrollee{
			{StudentID: "a", FamilyID: "f", GradeLevel: "5", Assignments: assignments},
			{StudentID: "b", FamilyID: "f", GradeLevel: "7", PaidInFull: true, Assignments: assignments},
		}
		first, err := eng.Run(enrollees)
		if err != nil {
			t.Fatal(err)
		}
		second, err := eng.Run(enrollees)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("second run differs from first:\n%+v\n%+v", second, first)
		}
	})
}
