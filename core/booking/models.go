package booking

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/dereva/core"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusBooked    Status = "booked"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions maps each Status to the set it may move to. Completed and
// cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending: {StatusBooked, StatusCancelled},
	StatusBooked:  {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a booking in `from` may move to `to`.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Active reports whether the status still holds its time slot.
func (s Status) Active() bool { return s == StatusPending || s == StatusBooked }

// Booking is a driving lesson reservation tying a student, an instructor and
// a vehicle to one of the instructor's declared time slots.
type Booking struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	InstructorID string    `json:"instructor_id"`
	VehicleRegNo string    `json:"vehicle_reg_no"`
	Course       string    `json:"course"`
	Date         string    `json:"date"`      // DateFormat
	TimeSlot     string    `json:"time_slot"` // "HH:MM-HH:MM"
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// NewBooking contains information needed to reserve a lesson slot.
type NewBooking struct {
	StudentID    string `json:"student_id" validate:"required"`
	InstructorID string `json:"instructor_id" validate:"required"`
	VehicleRegNo string `json:"vehicle_reg_no" validate:"required"`
	Course       string `json:"course" validate:"required"`
	Date         string `json:"date" validate:"required,dateonly"`
	TimeSlot     string `json:"time_slot" validate:"required,timeslot"`
}

func (nb *NewBooking) Validate(validate *validator.Validate) error {
	nb.StudentID = core.CleanString(nb.StudentID)
	nb.InstructorID = core.CleanString(nb.InstructorID)
	nb.VehicleRegNo = core.CleanString(nb.VehicleRegNo, true /* lower */)
	nb.Course = core.CleanString(nb.Course, true /* lower */)
	nb.Date = core.CleanString(nb.Date)
	nb.TimeSlot = core.CleanString(nb.TimeSlot)
	return validate.Struct(nb)
}

// UpdateStatus defines the admin status transition request.
type UpdateStatus struct {
	Status Status `json:"status" validate:"required,oneof=booked completed cancelled"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}

type QueryFilter struct {
	StudentID    string `query:"student_id"`
	InstructorID string `query:"instructor_id"`
	VehicleRegNo string `query:"vehicle_reg_no"`
	Date         string `query:"date"`
	Status       Status `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.InstructorID == "" && qf.VehicleRegNo == "" &&
		qf.Date == "" && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.InstructorID = core.CleanString(qf.InstructorID)
	qf.VehicleRegNo = core.CleanString(qf.VehicleRegNo, true /* lower */)
	qf.Date = core.CleanString(qf.Date)
}

// GetFilter selects a single Booking.
type GetFilter struct {
	ID string

	// Slot selects the booking currently holding (InstructorID, Date,
	// TimeSlot) with an active status.
	InstructorID string
	Date         string
	TimeSlot     string
}
