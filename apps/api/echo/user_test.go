package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/shule/core/user"
)

func Test_userApi_login(t *testing.T) {
	ts := setup(t)
	usr := createUser(t, ts.usrRepo, "Jane Doe", "janedoe", "jane@test.cd", "LePass123", nil, true)
	_ = createUser(t, ts.usrRepo, "Sleepy Head", "sleepy", "sleepy@test.cd", "LePass123", nil, false)

	tests := []httpTest{
		{name: "empty body", wantCode: http.StatusBadRequest},
		{name: "unknown user", body: marchallObj(t, LoginRequest{Username: "ghost", Password: "LePass123"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"})},
		{name: "wrong password", body: marchallObj(t, LoginRequest{Username: "janedoe", Password: "nope"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"})},
		{name: "deactivated account", body: marchallObj(t, LoginRequest{Username: "sleepy", Password: "LePass123"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
		{name: "login with username", body: marchallObj(t, LoginRequest{Username: usr.Username, Password: "LePass123"}),
			wantCode: http.StatusOK},
		{name: "login with email", body: marchallObj(t, LoginRequest{Username: usr.Email, Password: "LePass123"}),
			wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			ts.app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var res LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				if res.Token == "" {
					t.Error("expected a token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_query(t *testing.T) {
	ts := setup(t)
	admin := createUser(t, ts.usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	teacher := createUser(t, ts.usrRepo, "Ms Frizzle", "frizzle", "frizzle@test.cd", "", []string{user.RoleTeacher}, true)
	adminToken := getToken(t, admin)
	teacherToken := getToken(t, teacher)

	tests := []httpTest{
		{name: "auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "admin required", path: "/v1/users", token: teacherToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})},
		{name: "get all", path: "/v1/users", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, []user.User{admin, teacher})},
		{name: "search", path: "/v1/users?search=frizzle", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, []user.User{teacher})},
		{name: "filter on role", path: "/v1/users?role=teacher%3A", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, []user.User{teacher})},
		{name: "search (unknown)", path: "/v1/users?search=lol", token: adminToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, []user.User{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			ts.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_retrieve(t *testing.T) {
	ts := setup(t)
	admin := createUser(t, ts.usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	teacher := createUser(t, ts.usrRepo, "Ms Frizzle", "frizzle", "frizzle@test.cd", "", []string{user.RoleTeacher}, true)
	adminToken := getToken(t, admin)
	teacherToken := getToken(t, teacher)

	tests := []httpTest{
		{name: "admin can retrieve anyone", path: "/v1/users/" + teacher.ID, token: adminToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, teacher)},
		{name: "user can retrieve self", path: "/v1/users/" + teacher.ID, token: teacherToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, teacher)},
		{name: "user cannot retrieve others", path: "/v1/users/" + admin.ID, token: teacherToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})},
		{name: "unknown user", path: "/v1/users/6ba7b810-9dad-41d1-80b4-00c04fd430c8", token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			ts.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
