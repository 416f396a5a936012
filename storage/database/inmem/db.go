// Package inmemdb provides map-backed Repository implementations used by
// tests and local development. All tables share one lock discipline: an
// RWMutex per table, records stored by ID.
package inmemdb

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/dereva/core/booking"
	"github.com/trezcool/dereva/core/installment"
	"github.com/trezcool/dereva/core/instructor"
	"github.com/trezcool/dereva/core/maintenance"
	"github.com/trezcool/dereva/core/student"
	"github.com/trezcool/dereva/core/user"
	"github.com/trezcool/dereva/core/vehicle"
)

type (
	DB struct {
		user        *userTable
		student     *studentTable
		instructor  *instructorTable
		vehicle     *vehicleTable
		maintenance *maintenanceTable
		booking     *bookingTable
		installment *installmentTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}
	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}
	instructorTable struct {
		sync.RWMutex
		table map[string]*instructor.Instructor
	}
	vehicleTable struct {
		sync.RWMutex
		table map[string]*vehicle.Vehicle
	}
	maintenanceTable struct {
		sync.RWMutex
		table map[string]*maintenance.Record
	}
	bookingTable struct {
		sync.RWMutex
		table map[string]*booking.Booking
	}
	installmentTable struct {
		sync.RWMutex
		table map[string]*installment.Plan
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:        &userTable{table: make(map[string]*user.User)},
		student:     &studentTable{table: make(map[string]*student.Student)},
		instructor:  &instructorTable{table: make(map[string]*instructor.Instructor)},
		vehicle:     &vehicleTable{table: make(map[string]*vehicle.Vehicle)},
		maintenance: &maintenanceTable{table: make(map[string]*maintenance.Record)},
		booking:     &bookingTable{table: make(map[string]*booking.Booking)},
		installment: &installmentTable{table: make(map[string]*installment.Plan)},
	}
	return db, nil
}

func newID() string { return uuid.New().String() }

func matchSearch(search string, fields ...string) bool {
	search = strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}
