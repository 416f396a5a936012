package tests

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

	. "github.com/trezcool/dereva/apps/api/echo"
	"github.com/trezcool/dereva/core/instructor"
	"github.com/trezcool/dereva/core/student"
	"github.com/trezcool/dereva/core/user"
	"github.com/trezcool/dereva/core/vehicle"
)

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
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
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
	if j1 == nil || j2 == nil {
		return false, nil
	}
	l1, ok1 := j1.([]interface{})
	l2, ok2 := j2.([]interface{})
	if ok1 && ok2 {
		return assert.ElementsMatch(t, l1, l2), nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// Fixtures

func createUser(t *testing.T, name, uname, email, pwd string, roles []string, isActive bool) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("SetPassword(): %v", err)
		}
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func createStudent(t *testing.T, name, email, course string) student.Student {
	t.Helper()

	now := time.Now().UTC()
	stu := student.Student{
		Name:      name,
		Email:     email,
		Course:    course,
		CreatedAt: now,
		UpdatedAt: now,
	}
	stu.SetActive(true)
	stu, err := stuRepo.CreateStudent(context.Background(), stu)
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	return stu
}

func createInstructor(t *testing.T, name, email string, availability []instructor.DayAvailability) instructor.Instructor {
	t.Helper()

	now := time.Now().UTC()
	ins := instructor.Instructor{
		Name:         name,
		Email:        email,
		LicenseNo:    "dl-" + name,
		Availability: availability,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	ins.SetActive(true)
	ins, err := insRepo.CreateInstructor(context.Background(), ins)
	if err != nil {
		t.Fatalf("CreateInstructor(): %v", err)
	}
	return ins
}

func createVehicle(t *testing.T, regNo string) vehicle.Vehicle {
	t.Helper()

	now := time.Now().UTC()
	veh := vehicle.Vehicle{
		RegNo:        regNo,
		Make:         "toyota",
		Model:        "vitz",
		Transmission: "manual",
		Year:         2018,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	veh.SetActive(true)
	veh, err := vehRepo.CreateVehicle(context.Background(), veh)
	if err != nil {
		t.Fatalf("CreateVehicle(): %v", err)
	}
	return veh
}
