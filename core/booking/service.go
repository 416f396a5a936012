package booking

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/instructor"
	"github.com/trezcool/dereva/core/student"
	"github.com/trezcool/dereva/core/vehicle"
)

var (
	// errors
	ErrNotFound          = errors.New("booking not found")
	ErrSlotUnavailable   = errors.New("this time slot is not available")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrNotOwner          = errors.New("booking belongs to another student")
)

type (
	Repository interface {
		CreateBooking(ctx context.Context, bkg Booking) (Booking, error)
		GetBooking(ctx context.Context, filter GetFilter) (Booking, error)
		// QueryBookings applies AND operation on available QueryFilter fields.
		QueryBookings(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Booking, error)
		UpdateBooking(ctx context.Context, bkg Booking) (Booking, error)
	}

	Service interface {
		// CheckAvailability reports whether the instructor declared the slot
		// for that date and no active booking already holds it.
		CheckAvailability(ctx context.Context, instructorID, date, timeSlot string) (bool, error)
		// ListAvailableSlots returns the instructor's declared slots for the
		// date minus those held by active bookings.
		ListAvailableSlots(ctx context.Context, instructorID, date string) ([]string, error)
		// ListAvailableInstructors returns active instructors free at (date, timeSlot).
		ListAvailableInstructors(ctx context.Context, date, timeSlot string) ([]instructor.Instructor, error)
		Create(ctx context.Context, nb NewBooking) (Booking, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Booking, error)
		GetByID(ctx context.Context, id string) (Booking, error)
		UpdateStatus(ctx context.Context, id string, us UpdateStatus) (Booking, error)
		// Cancel transitions the student's own booking to cancelled.
		Cancel(ctx context.Context, id, studentID string) (Booking, error)
	}

	service struct {
		repo          Repository
		instructorSvc instructor.Service
		studentSvc    student.Service
		vehicleSvc    vehicle.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, instructorSvc instructor.Service, studentSvc student.Service, vehicleSvc vehicle.Service) Service {
	return &service{
		repo:          repo,
		instructorSvc: instructorSvc,
		studentSvc:    studentSvc,
		vehicleSvc:    vehicleSvc,
	}
}

func (svc *service) CheckAvailability(ctx context.Context, instructorID, date, timeSlot string) (bool, error) {
	ins, err := svc.instructorSvc.GetByID(ctx, instructorID)
	if err != nil {
		return false, errors.Wrap(err, "finding instructor")
	}

	declared := false
	for _, slot := range ins.SlotsOn(date) {
		if slot == timeSlot {
			declared = true
			break
		}
	}
	if !declared {
		return false, nil
	}

	_, err = svc.repo.GetBooking(ctx, GetFilter{InstructorID: instructorID, Date: date, TimeSlot: timeSlot})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return true, nil
		}
		return false, errors.Wrap(err, "finding holding booking")
	}
	return false, nil // slot held by an active booking
}

func (svc *service) ListAvailableSlots(ctx context.Context, instructorID, date string) ([]string, error) {
	ins, err := svc.instructorSvc.GetByID(ctx, instructorID)
	if err != nil {
		return nil, errors.Wrap(err, "finding instructor")
	}
	declared := ins.SlotsOn(date)
	if len(declared) == 0 {
		return nil, nil
	}

	bkgs, err := svc.repo.QueryBookings(ctx, &QueryFilter{InstructorID: instructorID, Date: date}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying bookings")
	}
	held := make(map[string]struct{}, len(bkgs))
	for _, bkg := range bkgs {
		if bkg.Status.Active() {
			held[bkg.TimeSlot] = struct{}{}
		}
	}

	free := make([]string, 0, len(declared))
	for _, slot := range declared {
		if _, ok := held[slot]; !ok {
			free = append(free, slot)
		}
	}
	return free, nil
}

func (svc *service) ListAvailableInstructors(ctx context.Context, date, timeSlot string) ([]instructor.Instructor, error) {
	active := true
	instructors, err := svc.instructorSvc.Query(ctx, &instructor.QueryFilter{IsActive: &active}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying instructors")
	}

	available := make([]instructor.Instructor, 0, len(instructors))
	for _, ins := range instructors {
		free, err := svc.CheckAvailability(ctx, ins.ID, date, timeSlot)
		if err != nil {
			return nil, err
		}
		if free {
			available = append(available, ins)
		}
	}
	return available, nil
}

func (svc *service) Create(ctx context.Context, nb NewBooking) (Booking, error) {
	if _, err := svc.studentSvc.GetByID(ctx, nb.StudentID); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return Booking{}, core.NewValidationError(err, core.FieldError{Field: "student_id", Error: "unknown student"})
		}
		return Booking{}, errors.Wrap(err, "finding student")
	}
	if _, err := svc.vehicleSvc.GetByRegNo(ctx, nb.VehicleRegNo); err != nil {
		if errors.Cause(err) == vehicle.ErrNotFound {
			return Booking{}, core.NewValidationError(err, core.FieldError{Field: "vehicle_reg_no", Error: "unknown vehicle"})
		}
		return Booking{}, errors.Wrap(err, "finding vehicle")
	}

	free, err := svc.CheckAvailability(ctx, nb.InstructorID, nb.Date, nb.TimeSlot)
	if err != nil {
		if errors.Cause(err) == instructor.ErrNotFound {
			return Booking{}, core.NewValidationError(err, core.FieldError{Field: "instructor_id", Error: "unknown instructor"})
		}
		return Booking{}, err
	}
	if !free {
		return Booking{}, ErrSlotUnavailable
	}

	now := time.Now().UTC()
	bkg := Booking{
		StudentID:    nb.StudentID,
		InstructorID: nb.InstructorID,
		VehicleRegNo: nb.VehicleRegNo,
		Course:       nb.Course,
		Date:         nb.Date,
		TimeSlot:     nb.TimeSlot,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateBooking(ctx, bkg)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Booking, error) {
	return svc.repo.QueryBookings(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Booking, error) {
	return svc.repo.GetBooking(ctx, GetFilter{ID: id})
}

func (svc *service) UpdateStatus(ctx context.Context, id string, us UpdateStatus) (Booking, error) {
	bkg, err := svc.repo.GetBooking(ctx, GetFilter{ID: id})
	if err != nil {
		return Booking{}, err
	}
	if !CanTransition(bkg.Status, us.Status) {
		return Booking{}, ErrInvalidTransition
	}
	bkg.Status = us.Status
	bkg.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateBooking(ctx, bkg)
}

func (svc *service) Cancel(ctx context.Context, id, studentID string) (Booking, error) {
	bkg, err := svc.repo.GetBooking(ctx, GetFilter{ID: id})
	if err != nil {
		return Booking{}, err
	}
	if bkg.StudentID != studentID {
		return Booking{}, ErrNotOwner
	}
	if !CanTransition(bkg.Status, StatusCancelled) {
		return Booking{}, ErrInvalidTransition
	}
	bkg.Status = StatusCancelled
	bkg.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateBooking(ctx, bkg)
}
