package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/dereva/core/user"
)

func Test_userApi_login(t *testing.T) {
	createUser(t, "Login", "loginusr", "loginusr@test.cd", "LePassw0rd", []string{user.RoleStudent}, true)
	createUser(t, "Sleeper", "sleeper", "sleeper@test.cd", "LePassw0rd", []string{user.RoleStudent}, false)

	tests := []httpTest{
		{
			name: "empty body", body: []byte(`{}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown user", body: []byte(`{"username":"ghost","password":"lol"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: []byte(`{"username":"loginusr","password":"lol"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: []byte(`{"username":"sleeper","password":"LePassw0rd"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "login with username", body: []byte(`{"username":"loginusr","password":"LePassw0rd"}`),
			wantCode: http.StatusOK,
		},
		{
			name: "login with email", body: []byte(`{"username":"loginusr@test.cd","password":"LePassw0rd"}`),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			} else if tt.wantCode == http.StatusOK {
				var res struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if res.Token == "" {
					t.Error("expected a token")
				}
			}
		})
	}
}

func Test_userApi_accessControl(t *testing.T) {
	admin := createUser(t, "Root", "rootusr", "rootusr@test.cd", "", []string{user.RoleAdmin}, true)
	plebe := createUser(t, "Plebe", "plebe", "plebe@test.cd", "", []string{user.RoleStudent}, true)

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodGet, path: "/api/users",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "admin required", method: http.MethodGet, path: "/api/users", token: getToken(t, plebe),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "roles list", method: http.MethodGet, path: "/api/users/roles", token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallObj(t, user.Roles),
		},
		{
			name: "self retrieve", method: http.MethodGet, path: "/api/users/" + plebe.ID, token: getToken(t, plebe),
			wantCode: http.StatusOK, wantData: marchallObj(t, plebe),
		},
		{
			name: "other's profile hidden", method: http.MethodGet, path: "/api/users/" + admin.ID, token: getToken(t, plebe),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
