package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/trezcool/dereva/apps/api/echo"
	"github.com/trezcool/dereva/core/booking"
	"github.com/trezcool/dereva/core/instructor"
	"github.com/trezcool/dereva/core/user"
)

func Test_bookingApi_lifecycle(t *testing.T) {
	admin := createUser(t, "Admin", "bkgadmin", "bkgadmin@test.cd", "", []string{user.RoleAdmin}, true)
	stuUsr := createUser(t, "Hero", "hero", "hero@test.cd", "", []string{user.RoleStudent}, true)
	otherUsr := createUser(t, "Other", "other", "other@test.cd", "", []string{user.RoleStudent}, true)

	stu := createStudent(t, "Hero", "hero@test.cd", "class b")
	createStudent(t, "Other", "other@test.cd", "class b")

	ins := createInstructor(t, "mweng", "mweng@test.cd", []instructor.DayAvailability{
		{Date: "2025-09-10", TimeSlots: []string{"09:00-10:00", "10:00-11:00"}},
	})
	veh := createVehicle(t, "cgo-123-ab")

	adminToken := getToken(t, admin)
	stuToken := getToken(t, stuUsr)
	otherToken := getToken(t, otherUsr)

	newBooking := func(timeSlot string) []byte {
		data, _ := json.Marshal(booking.NewBooking{
			StudentID:    stu.ID,
			InstructorID: ins.ID,
			VehicleRegNo: veh.RegNo,
			Course:       "class b",
			Date:         "2025-09-10",
			TimeSlot:     timeSlot,
		})
		return data
	}

	// auth required
	req, rec := newRequest(http.MethodPost, "/api/bookings", newBooking("09:00-10:00"))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusUnauthorized)
	}

	// student books a free slot
	req, rec = newAuthRequest(http.MethodPost, "/api/bookings", stuToken, newBooking("09:00-10:00"))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var bkg booking.Booking
	if err := json.Unmarshal(rec.Body.Bytes(), &bkg); err != nil {
		t.Fatalf("unmarshalling booking: %v", err)
	}
	if bkg.Status != booking.StatusPending {
		t.Errorf("status = %v; want %v", bkg.Status, booking.StatusPending)
	}
	if bkg.StudentID != stu.ID {
		t.Errorf("student_id = %v; want %v", bkg.StudentID, stu.ID)
	}

	// same slot again conflicts
	req, rec = newAuthRequest(http.MethodPost, "/api/bookings", stuToken, newBooking("09:00-10:00"))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusConflict)
	}

	// the held slot no longer shows as free
	req, rec = newAuthRequest(http.MethodGet, "/api/instructors/"+ins.ID+"/slots?date=2025-09-10", stuToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var slots AvailableSlotsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &slots); err != nil {
		t.Fatalf("unmarshalling slots: %v", err)
	}
	if len(slots.Slots) != 1 || slots.Slots[0] != "10:00-11:00" {
		t.Errorf("slots = %v; want [10:00-11:00]", slots.Slots)
	}

	// another student cannot see it
	req, rec = newAuthRequest(http.MethodGet, "/api/bookings/"+bkg.ID, otherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
	}

	// nor cancel it
	req, rec = newAuthRequest(http.MethodDelete, "/api/bookings/"+bkg.ID, otherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
	}

	// admin confirms
	req, rec = newAuthRequest(http.MethodPatch, "/api/bookings/"+bkg.ID+"/status", adminToken, []byte(`{"status":"booked"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// pending -> completed is not allowed later; booked -> completed is
	req, rec = newAuthRequest(http.MethodPatch, "/api/bookings/"+bkg.ID+"/status", adminToken, []byte(`{"status":"booked"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusConflict)
	}

	// student transition endpoint is admin only
	req, rec = newAuthRequest(http.MethodPatch, "/api/bookings/"+bkg.ID+"/status", stuToken, []byte(`{"status":"completed"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	// owner cancels, freeing the slot
	req, rec = newAuthRequest(http.MethodDelete, "/api/bookings/"+bkg.ID, stuToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &bkg); err != nil {
		t.Fatalf("unmarshalling booking: %v", err)
	}
	if bkg.Status != booking.StatusCancelled {
		t.Errorf("status = %v; want %v", bkg.Status, booking.StatusCancelled)
	}

	// slot is bookable again
	req, rec = newAuthRequest(http.MethodPost, "/api/bookings", stuToken, newBooking("09:00-10:00"))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
}

func Test_bookingApi_query(t *testing.T) {
	admin := createUser(t, "Admin", "bkgadmin2", "bkgadmin2@test.cd", "", []string{user.RoleAdmin}, true)
	stuUsr := createUser(t, "Queryer", "queryer", "queryer@test.cd", "", []string{user.RoleStudent}, true)
	stu := createStudent(t, "Queryer", "queryer@test.cd", "class a")

	ins := createInstructor(t, "kasongo", "kasongo@test.cd", []instructor.DayAvailability{
		{Date: "2025-10-01", TimeSlots: []string{"08:00-09:00", "09:00-10:00"}},
	})
	veh := createVehicle(t, "cgo-456-cd")

	stuToken := getToken(t, stuUsr)

	for _, slot := range []string{"08:00-09:00", "09:00-10:00"} {
		data, _ := json.Marshal(booking.NewBooking{
			StudentID:    stu.ID,
			InstructorID: ins.ID,
			VehicleRegNo: veh.RegNo,
			Course:       "class a",
			Date:         "2025-10-01",
			TimeSlot:     slot,
		})
		req, rec := newAuthRequest(http.MethodPost, "/api/bookings", stuToken, data)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
	}

	// student only sees their own
	req, rec := newAuthRequest(http.MethodGet, "/api/bookings", stuToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
	}
	var bookings []booking.Booking
	if err := json.Unmarshal(rec.Body.Bytes(), &bookings); err != nil {
		t.Fatalf("unmarshalling bookings: %v", err)
	}
	if len(bookings) != 2 {
		t.Errorf("len(bookings) = %v; want 2", len(bookings))
	}
	for _, b := range bookings {
		if b.StudentID != stu.ID {
			t.Errorf("student_id = %v; want %v", b.StudentID, stu.ID)
		}
	}

	// admin filters by instructor
	req, rec = newAuthRequest(http.MethodGet, "/api/bookings?instructor_id="+ins.ID+"&status=pending", getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &bookings); err != nil {
		t.Fatalf("unmarshalling bookings: %v", err)
	}
	if len(bookings) != 2 {
		t.Errorf("len(bookings) = %v; want 2", len(bookings))
	}

	// the instructor is fully booked at 08:00-09:00 on that date
	req, rec = newAuthRequest(http.MethodGet, "/api/instructors/availability/check?date=2025-10-01&time=08:00-09:00", stuToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
	}
	var free []instructor.Instructor
	if err := json.Unmarshal(rec.Body.Bytes(), &free); err != nil {
		t.Fatalf("unmarshalling instructors: %v", err)
	}
	for _, f := range free {
		if f.ID == ins.ID {
			t.Errorf("instructor %v should not be free at 08:00-09:00", ins.ID)
		}
	}
}
