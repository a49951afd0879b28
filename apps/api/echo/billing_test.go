package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/billing"
	"github.com/trezcool/shule/core/enrollment"
	"github.com/trezcool/shule/core/user"
)

func Test_billingApi_familyStatement(t *testing.T) {
	ts := setup(t)
	registrar := createUser(t, ts.usrRepo, "Reg", "registrar", "reg@test.cd", "", []string{user.RoleRegistrar}, true)
	teacher := createUser(t, ts.usrRepo, "Teach", "teacher1", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	regToken := getToken(t, registrar)

	// staff family, older child prepaid
	gdn := createGuardian(t, ts.gdnSvc, "Jane Smith", "jane@family.cd", true)
	kid1 := createStudent(t, ts.stdSvc, "Amy", "Smith", "3", gdn.ID, true)
	kid2 := createStudent(t, ts.stdSvc, "Ben", "Smith", "5", gdn.ID, false)

	homeroom := createClass(t, ts.enrSvc, enrollment.NewClass{
		Name:        "Homeroom",
		GradeLevels: []string{"3", "4", "5"},
		Term:        enrollment.TermBoth,
		Program:     enrollment.ProgramFull,
		Days:        []int{1, 2, 3, 4},
	})
	mathLab := createClass(t, ts.enrSvc, enrollment.NewClass{
		Name:        "Math Lab",
		GradeLevels: []string{"5"},
		Term:        enrollment.TermBoth,
		Program:     enrollment.ProgramAcademic,
		Days:        []int{5},
	})
	assignStudent(t, ts.enrSvc, kid1.ID, homeroom.ID)
	assignStudent(t, ts.enrSvc, kid2.ID, homeroom.ID)
	assignStudent(t, ts.enrSvc, kid2.ID, mathLab.ID)

	// full program at 105/day for 4 days; academic at 95/day for 1 day plus
	// the one-time academic surcharge
	raw1 := 105.0 * 4
	raw2 := 105.0*4 + 95.0 + core.Conf.Billing.AcademicSurcharge

	conf := core.Conf.Billing
	want1, want2 := raw1, raw2
	if kid1.ID < kid2.ID {
		want2 *= conf.SiblingDiscountRate
	} else {
		want1 *= conf.SiblingDiscountRate
	}
	want1 = core.Round2(want1 * conf.StaffDiscountRate * conf.PrepaidDiscountRate)
	want2 = core.Round2(want2 * conf.StaffDiscountRate)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/billing/statements/"+gdn.ID)
		ts.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("staff required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/billing/statements/"+gdn.ID, getToken(t, teacher))
		ts.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}, rec)
	})

	t.Run("unknown guardian", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/billing/statements/6ba7b810-9dad-41d1-80b4-00c04fd430c8", regToken)
		ts.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})}, rec)
	})

	t.Run("family statement", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/billing/statements/"+gdn.ID, regToken)
		ts.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}

		var items []billing.LineItem
		if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("len(items) = %d; want 2", len(items))
		}
		for _, item := range items {
			if item.FamilyID != gdn.ID {
				t.Errorf("FamilyID = %s; want %s", item.FamilyID, gdn.ID)
			}
			if item.Status != billing.StatusPending {
				t.Errorf("Status = %s; want %s", item.Status, billing.StatusPending)
			}
			switch item.StudentID {
			case kid1.ID:
				if item.RawAmount != raw1 {
					t.Errorf("RawAmount = %v; want %v", item.RawAmount, raw1)
				}
				if item.Amount != want1 {
					t.Errorf("Amount = %v; want %v", item.Amount, want1)
				}
			case kid2.ID:
				if item.RawAmount != raw2 {
					t.Errorf("RawAmount = %v; want %v", item.RawAmount, raw2)
				}
				if item.Amount != want2 {
					t.Errorf("Amount = %v; want %v", item.Amount, want2)
				}
			default:
				t.Errorf("unexpected StudentID %s", item.StudentID)
			}
		}
	})

	t.Run("all statements", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/billing/statements", regToken)
		ts.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}

		var items []billing.LineItem
		if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(items) != 2 {
			t.Errorf("len(items) = %d; want 2", len(items))
		}
	})
}

func Test_billingApi_emailFamilyStatement(t *testing.T) {
	ts := setup(t)
	registrar := createUser(t, ts.usrRepo, "Reg", "registrar", "reg@test.cd", "", []string{user.RoleRegistrar}, true)
	regToken := getToken(t, registrar)

	gdn := createGuardian(t, ts.gdnSvc, "John Doe", "john@family.cd", false)
	kid := createStudent(t, ts.stdSvc, "Kim", "Doe", "K", gdn.ID, false)
	morning := createClass(t, ts.enrSvc, enrollment.NewClass{
		Name:        "Morning K",
		GradeLevels: []string{"K"},
		Term:        enrollment.TermBoth,
		Program:     enrollment.ProgramMorning,
		Days:        []int{1, 2, 3, 4, 5},
	})
	assignStudent(t, ts.enrSvc, kid.ID, morning.ID)

	req, rec := newAuthRequest(http.MethodPost, "/v1/billing/statements/"+gdn.ID+"/email", regToken)
	ts.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}

	var items []billing.LineItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d; want 1", len(items))
	}
	if want := core.Round2(45.0 * 5); items[0].Amount != want {
		t.Errorf("Amount = %v; want %v", items[0].Amount, want)
	}
}
