package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/billing"
	"github.com/trezcool/shule/core/enrollment"
	"github.com/trezcool/shule/core/guardian"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/services/email"
	"github.com/trezcool/shule/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type testServer struct {
	app Server

	usrSvc  *user.Service
	gdnSvc  *guardian.Service
	stdSvc  *student.Service
	enrSvc  *enrollment.Service
	billSvc *billing.Service

	usrRepo user.Repository
	gdnRepo guardian.Repository
	stdRepo student.Repository
}

func setup(t *testing.T) *testServer {
	t.Helper()

	core.Conf.Debug = false
	core.Conf.TestMode = true

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	logger := nopLogger{}
	mailSvc := emailsvc.NewConsoleServiceMock()

	usrRepo := dummydb.NewUserRepository(db)
	gdnRepo := dummydb.NewGuardianRepository(db)
	stdRepo := dummydb.NewStudentRepository(db)

	usrSvc := user.NewService(nil, usrRepo, mailSvc, logger)
	gdnSvc := guardian.NewService(nil, gdnRepo)
	stdSvc := student.NewService(nil, stdRepo)
	enrSvc := enrollment.NewService(nil, dummydb.NewEnrollmentRepository(db))
	engine := billing.NewEngine(billing.DefaultPriceTable(), core.Conf.Billing, logger)
	billSvc := billing.NewService(engine, stdSvc, gdnSvc, enrSvc, mailSvc, logger)

	app := NewServer(&Options{
		Address:        ":0",
		DisableReqLogs: true,
		Logger:         logger,
		UserSvc:        usrSvc,
		StudentSvc:     stdSvc,
		GuardianSvc:    gdnSvc,
		EnrollmentSvc:  enrSvc,
		BillingSvc:     billSvc,
	})

	return &testServer{
		app:     app,
		usrSvc:  usrSvc,
		gdnSvc:  gdnSvc,
		stdSvc:  stdSvc,
		enrSvc:  enrSvc,
		billSvc: billSvc,
		usrRepo: usrRepo,
		gdnRepo: gdnRepo,
		stdRepo: stdRepo,
	}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()

	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func createUser(t *testing.T, repo user.Repository, name, uname, email, pwd string, roles []string, isActive bool) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func createGuardian(t *testing.T, svc *guardian.Service, name, email string, isStaff bool) guardian.Guardian {
	t.Helper()

	gdn, err := svc.Create(context.Background(), guardian.NewGuardian{Name: name, Email: email, IsStaff: isStaff})
	if err != nil {
		t.Fatalf("createGuardian() failed: %v", err)
	}
	return gdn
}

func createStudent(t *testing.T, svc *student.Service, firstName, lastName, grade, guardianID string, paidInFull bool) student.Student {
	t.Helper()

	std, err := svc.Create(context.Background(), student.NewStudent{
		FirstName:  firstName,
		LastName:   lastName,
		GradeLevel: grade,
		GuardianID: guardianID,
		PaidInFull: paidInFull,
	})
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return std
}

func createClass(t *testing.T, svc *enrollment.Service, nc enrollment.NewClass) enrollment.Class {
	t.Helper()

	cls, err := svc.CreateClass(context.Background(), nc)
	if err != nil {
		t.Fatalf("createClass() failed: %v", err)
	}
	return cls
}

func assignStudent(t *testing.T, svc *enrollment.Service, studentID, classID string) enrollment.Assignment {
	t.Helper()

	asg, err := svc.Assign(context.Background(), enrollment.NewAssignment{StudentID: studentID, ClassID: classID})
	if err != nil {
		t.Fatalf("assignStudent() failed: %v", err)
	}
	return asg
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	t.Helper()

	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
