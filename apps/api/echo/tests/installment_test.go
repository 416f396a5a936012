package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/trezcool/dereva/core/installment"
	"github.com/trezcool/dereva/core/user"
)

func Test_installmentApi_lifecycle(t *testing.T) {
	admin := createUser(t, "Admin", "plnadmin", "plnadmin@test.cd", "", []string{user.RoleAdmin}, true)
	stuUsr := createUser(t, "Payer", "payer", "payer@test.cd", "", []string{user.RoleStudent}, true)
	stu := createStudent(t, "Payer", "payer@test.cd", "class b")

	adminToken := getToken(t, admin)
	stuToken := getToken(t, stuUsr)

	newPlan := []byte(fmt.Sprintf(
		`{"student_id":%q,"course":"class b","total_amount":50000,"down_payment":10000,"total_installments":4,"start_date":"2024-11-01"}`,
		stu.ID,
	))

	// auth required
	req, rec := newRequest(http.MethodPost, "/api/installments", newPlan)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusUnauthorized)
	}

	// student requests a plan
	req, rec = newAuthRequest(http.MethodPost, "/api/installments", stuToken, newPlan)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var plan installment.Plan
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("unmarshalling plan: %v", err)
	}
	if len(plan.Schedule) != 4 {
		t.Fatalf("len(schedule) = %v; want 4", len(plan.Schedule))
	}
	wantDues := []string{"2024-12-01", "2025-01-01", "2025-02-01", "2025-03-01"}
	for i, item := range plan.Schedule {
		if !item.Amount.Equal(decimal.NewFromInt(10000)) {
			t.Errorf("schedule[%d].amount = %v; want 10000", i, item.Amount)
		}
		if got := item.DueDate.Format("2006-01-02"); got != wantDues[i] {
			t.Errorf("schedule[%d].due_date = %v; want %v", i, got, wantDues[i])
		}
	}

	// a second active plan for the same student and course conflicts
	req, rec = newAuthRequest(http.MethodPost, "/api/installments", stuToken, newPlan)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusConflict, rec.Body.String())
	}

	// review endpoints are admin only
	req, rec = newAuthRequest(http.MethodPost, "/api/installments/"+plan.ID+"/approve", stuToken, []byte(`{"comment":"ok"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	// reject requires a comment
	req, rec = newAuthRequest(http.MethodPost, "/api/installments/"+plan.ID+"/reject", adminToken, []byte(`{"comment":"  "}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}

	// admin approves
	req, rec = newAuthRequest(http.MethodPost, "/api/installments/"+plan.ID+"/approve", adminToken, []byte(`{"comment":"looks good"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("unmarshalling plan: %v", err)
	}
	if !plan.AdminApproved {
		t.Error("plan should be approved")
	}

	// approving twice conflicts
	req, rec = newAuthRequest(http.MethodPost, "/api/installments/"+plan.ID+"/approve", adminToken, []byte(`{"comment":"again"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusConflict)
	}

	// record a payment
	req, rec = newAuthRequest(http.MethodPost, "/api/installments/"+plan.ID+"/payments", adminToken, []byte(`{"installment_number":1}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// paying the same item again conflicts
	req, rec = newAuthRequest(http.MethodPost, "/api/installments/"+plan.ID+"/payments", adminToken, []byte(`{"installment_number":1}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusConflict)
	}

	// unknown item
	req, rec = newAuthRequest(http.MethodPost, "/api/installments/"+plan.ID+"/payments", adminToken, []byte(`{"installment_number":9}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
	}

	// the student sees their own plan
	req, rec = newAuthRequest(http.MethodGet, "/api/installments/"+plan.ID, stuToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
	}

	// another student does not
	otherUsr := createUser(t, "Nosy", "nosy", "nosy@test.cd", "", []string{user.RoleStudent}, true)
	createStudent(t, "Nosy", "nosy@test.cd", "class a")
	req, rec = newAuthRequest(http.MethodGet, "/api/installments/"+plan.ID, getToken(t, otherUsr))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
	}
}

func Test_installmentApi_remainderOnLastItem(t *testing.T) {
	admin := createUser(t, "Admin", "plnadmin2", "plnadmin2@test.cd", "", []string{user.RoleAdmin}, true)
	stu := createStudent(t, "Cents", "cents@test.cd", "class a")

	newPlan := []byte(fmt.Sprintf(
		`{"student_id":%q,"course":"class a","total_amount":75000.01,"down_payment":25000,"total_installments":2}`,
		stu.ID,
	))
	req, rec := newAuthRequest(http.MethodPost, "/api/installments", getToken(t, admin), newPlan)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var plan installment.Plan
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("unmarshalling plan: %v", err)
	}
	if len(plan.Schedule) != 2 {
		t.Fatalf("len(schedule) = %v; want 2", len(plan.Schedule))
	}
	if want := decimal.RequireFromString("25000.00"); !plan.Schedule[0].Amount.Equal(want) {
		t.Errorf("schedule[0].amount = %v; want %v", plan.Schedule[0].Amount, want)
	}
	if want := decimal.RequireFromString("25000.01"); !plan.Schedule[1].Amount.Equal(want) {
		t.Errorf("schedule[1].amount = %v; want %v", plan.Schedule[1].Amount, want)
	}
}
