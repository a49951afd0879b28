package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/trezcool/shule/core/enrollment"
	"github.com/trezcool/shule/core/user"
)

func Test_enrollmentApi_createClass(t *testing.T) {
	ts := setup(t)
	registrar := createUser(t, ts.usrRepo, "Reg", "registrar", "reg@test.cd", "", []string{user.RoleRegistrar}, true)
	teacher := createUser(t, ts.usrRepo, "Teach", "teacher1", "teach@test.cd", "", []string{user.RoleTeacher}, true)
	regToken := getToken(t, registrar)

	newCls := enrollment.NewClass{
		Name:        "Chess Club",
		GradeLevels: []string{"3", "4"},
		Term:        enrollment.TermSemester1,
		Program:     enrollment.ProgramEnrichment,
		Days:        []int{2},
		MaxSize:     12,
	}

	tests := []httpTest{
		{name: "auth required", body: marchallObj(t, newCls),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "staff required", body: marchallObj(t, newCls), token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})},
		{name: "empty body", body: nil, token: regToken, wantCode: http.StatusBadRequest},
		{name: "invalid term", token: regToken, wantCode: http.StatusBadRequest,
			body: marchallObj(t, enrollment.NewClass{Name: "Bad", Term: "Trimester 3", Program: enrollment.ProgramFull})},
		{name: "create", body: marchallObj(t, newCls), token: regToken, wantCode: http.StatusCreated},
		{name: "duplicate name and term", body: marchallObj(t, newCls), token: regToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": enrollment.ErrClassExists.Error()})},
		{name: "same name, other term", token: regToken, wantCode: http.StatusCreated,
			body: marchallObj(t, enrollment.NewClass{
				Name:    "Chess Club",
				Term:    enrollment.TermSemester2,
				Program: enrollment.ProgramEnrichment,
				Days:    []int{2},
			})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/classes", tt.token, tt.body)
			ts.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var cls enrollment.Class
				if err := json.Unmarshal(rec.Body.Bytes(), &cls); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if cls.ID == "" {
					t.Error("expected a class ID")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_enrollmentApi_assign(t *testing.T) {
	ts := setup(t)
	registrar := createUser(t, ts.usrRepo, "Reg", "registrar", "reg@test.cd", "", []string{user.RoleRegistrar}, true)
	regToken := getToken(t, registrar)

	gdn := createGuardian(t, ts.gdnSvc, "Jane Smith", "jane@family.cd", false)
	kid1 := createStudent(t, ts.stdSvc, "Amy", "Smith", "3", gdn.ID, false)
	kid2 := createStudent(t, ts.stdSvc, "Ben", "Smith", "3", gdn.ID, false)

	tiny := createClass(t, ts.enrSvc, enrollment.NewClass{
		Name:        "Pottery",
		GradeLevels: []string{"3"},
		Term:        enrollment.TermBoth,
		Program:     enrollment.ProgramEnrichment,
		Days:        []int{1, 3},
		MaxSize:     1,
	})

	t.Run("assign", func(t *testing.T) {
		body := marchallObj(t, enrollment.NewAssignment{StudentID: kid1.ID, ClassID: tiny.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", regToken, body)
		ts.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}

		var asg enrollment.Assignment
		if err := json.Unmarshal(rec.Body.Bytes(), &asg); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if asg.Program != enrollment.ProgramEnrichment {
			t.Errorf("Program = %s; want %s", asg.Program, enrollment.ProgramEnrichment)
		}
		if asg.ScheduledDays != 2 {
			t.Errorf("ScheduledDays = %d; want 2", asg.ScheduledDays)
		}
	})

	t.Run("already assigned", func(t *testing.T) {
		body := marchallObj(t, enrollment.NewAssignment{StudentID: kid1.ID, ClassID: tiny.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", regToken, body)
		ts.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"class_id": enrollment.ErrAlreadyAssigned.Error()})}, rec)
	})

	t.Run("class is full", func(t *testing.T) {
		body := marchallObj(t, enrollment.NewAssignment{StudentID: kid2.ID, ClassID: tiny.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", regToken, body)
		ts.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"class_id": enrollment.ErrClassFull.Error()})}, rec)
	})

	t.Run("unknown class", func(t *testing.T) {
		body := marchallObj(t, enrollment.NewAssignment{StudentID: kid2.ID, ClassID: "6ba7b810-9dad-41d1-80b4-00c04fd430c8"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/assignments", regToken, body)
		ts.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"})}, rec)
	})

	t.Run("query by student", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/assignments?student_id="+kid1.ID, regToken)
		ts.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var assignments []enrollment.Assignment
		if err := json.Unmarshal(rec.Body.Bytes(), &assignments); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if len(assignments) != 1 {
			t.Errorf("len(assignments) = %d; want 1", len(assignments))
		}
	})
}

func Test_enrollmentApi_importClasses(t *testing.T) {
	ts := setup(t)
	registrar := createUser(t, ts.usrRepo, "Reg", "registrar", "reg@test.cd", "", []string{user.RoleRegistrar}, true)
	frizzle := createUser(t, ts.usrRepo, "Valerie Frizzle", "frizzle", "frizzle@test.cd", "", []string{user.RoleTeacher}, true)
	regToken := getToken(t, registrar)

	csvData := "\uFEFFClass Name,Grade Level,Term,Schedule,Teacher,Student Count/Max\n" + // leading BOM, as the tool exports it
		`Chess Club [S1],"1st, 2nd",S1,"B1, - B2",,5 / 10` + "\n" +
		`Magic Bus,K-2,S2,--- B4,"Frizzle, Valerie",8 / 12` + "\n" +
		`Chess Club,1st,S1,B1,,5 / 10` + "\n" +
		`Drama,K,Trimester 3,B1,,1 / 5` + "\n"

	newImportRequest := func(t *testing.T, content string) (*http.Request, *httptest.ResponseRecorder) {
		t.Helper()

		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		fw, err := w.CreateFormFile("file", "classes.csv")
		if err != nil {
			t.Fatalf("CreateFormFile() failed: %v", err)
		}
		if _, err = fw.Write([]byte(content)); err != nil {
			t.Fatalf("writing CSV part failed: %v", err)
		}
		if err = w.Close(); err != nil {
			t.Fatalf("closing multipart writer failed: %v", err)
		}

		req := httptest.NewRequest(http.MethodPost, "/v1/classes/import", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+regToken)
		return req, httptest.NewRecorder()
	}

	t.Run("missing file", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/classes/import", regToken)
		ts.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"file": "a CSV file is required"})}, rec)
	})

	t.Run("missing headers", func(t *testing.T) {
		req, rec := newImportRequest(t, "Class Name,Grade Level\nChess Club,1st\n")
		ts.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var fldErrs map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &fldErrs); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		if _, ok := fldErrs["file"]; !ok {
			t.Errorf("expected a field error on \"file\"; got %s", rec.Body.String())
		}
	})

	t.Run("import", func(t *testing.T) {
		req, rec := newImportRequest(t, csvData)
		ts.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}

		var res enrollment.ImportResult
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		want := enrollment.ImportResult{Created: 2, Skipped: 2, Failed: 0}
		if res != want {
			t.Errorf("ImportResult = %+v; want %+v", res, want)
		}

		chess, err := ts.enrSvc.GetByNameAndTerm(context.Background(), "Chess Club", enrollment.TermSemester1)
		if err != nil {
			t.Fatalf("GetByNameAndTerm() failed: %v", err)
		}
		if want := []string{"1", "2"}; !reflect.DeepEqual(chess.GradeLevels, want) {
			t.Errorf("GradeLevels = %v; want %v", chess.GradeLevels, want)
		}
		if want := []int{1, 2}; !reflect.DeepEqual(chess.Days, want) {
			t.Errorf("Days = %v; want %v", chess.Days, want)
		}
		if chess.MaxSize != 10 {
			t.Errorf("MaxSize = %d; want 10", chess.MaxSize)
		}

		bus, err := ts.enrSvc.GetByNameAndTerm(context.Background(), "Magic Bus", enrollment.TermSemester2)
		if err != nil {
			t.Fatalf("GetByNameAndTerm() failed: %v", err)
		}
		if bus.TeacherID != frizzle.ID {
			t.Errorf("TeacherID = %s; want %s", bus.TeacherID, frizzle.ID)
		}
		if want := []string{"K", "1", "2"}; !reflect.DeepEqual(bus.GradeLevels, want) {
			t.Errorf("GradeLevels = %v; want %v", bus.GradeLevels, want)
		}
	})
}
