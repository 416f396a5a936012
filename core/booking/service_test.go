package booking_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/dereva/core/booking"
	"github.com/trezcool/dereva/core/instructor"
	"github.com/trezcool/dereva/core/student"
	"github.com/trezcool/dereva/core/vehicle"
	inmemdb "github.com/trezcool/dereva/storage/database/inmem"
)

type fixture struct {
	svc        booking.Service
	insSvc     instructor.Service
	instructor instructor.Instructor
	student    student.Student
	vehicle    vehicle.Vehicle
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	db, err := inmemdb.Open()
	require.NoError(t, err)

	insSvc := instructor.NewService(inmemdb.NewInstructorRepository(db))
	stuSvc := student.NewService(inmemdb.NewStudentRepository(db))
	vehSvc := vehicle.NewService(inmemdb.NewVehicleRepository(db))

	ins, err := insSvc.Create(ctx, instructor.NewInstructor{
		Name:      "John Kamau",
		Email:     "kamau@test.cd",
		LicenseNo: "ins-001",
	})
	require.NoError(t, err)
	ins, err = insSvc.SetAvailability(ctx, ins.ID, instructor.SetAvailability{
		Availability: []instructor.DayAvailability{
			{Date: "2025-09-10", TimeSlots: []string{"09:00-10:00", "10:00-11:00", "14:00-15:00"}},
		},
	})
	require.NoError(t, err)

	stu, err := stuSvc.Create(ctx, student.NewStudent{
		Name:      "Asha Juma",
		Email:     "asha@test.cd",
		LicenseNo: "lrn-001",
		Course:    "class b",
	})
	require.NoError(t, err)

	veh, err := vehSvc.Create(ctx, vehicle.NewVehicle{
		RegNo:        "kda-123x",
		Make:         "Toyota",
		Model:        "Vitz",
		Transmission: vehicle.TransmissionManual,
		Year:         2018,
	})
	require.NoError(t, err)

	svc := booking.NewService(inmemdb.NewBookingRepository(db), insSvc, stuSvc, vehSvc)
	return fixture{svc: svc, insSvc: insSvc, instructor: ins, student: stu, vehicle: veh}
}

func (f fixture) newBooking(slot string) booking.NewBooking {
	return booking.NewBooking{
		StudentID:    f.student.ID,
		InstructorID: f.instructor.ID,
		VehicleRegNo: f.vehicle.RegNo,
		Course:       "class b",
		Date:         "2025-09-10",
		TimeSlot:     slot,
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to booking.Status
		want     bool
	}{
		{booking.StatusPending, booking.StatusBooked, true},
		{booking.StatusPending, booking.StatusCancelled, true},
		{booking.StatusPending, booking.StatusCompleted, false},
		{booking.StatusBooked, booking.StatusCompleted, true},
		{booking.StatusBooked, booking.StatusCancelled, true},
		{booking.StatusBooked, booking.StatusPending, false},
		{booking.StatusCompleted, booking.StatusCancelled, false},
		{booking.StatusCancelled, booking.StatusBooked, false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, booking.CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestService_CheckAvailability(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	t.Run("declared and unclaimed slot is free", func(t *testing.T) {
		free, err := f.svc.CheckAvailability(ctx, f.instructor.ID, "2025-09-10", "09:00-10:00")
		require.NoError(t, err)
		assert.True(t, free)
	})

	t.Run("undeclared slot is unavailable", func(t *testing.T) {
		free, err := f.svc.CheckAvailability(ctx, f.instructor.ID, "2025-09-10", "11:00-12:00")
		require.NoError(t, err)
		assert.False(t, free)
	})

	t.Run("day without availability is unavailable", func(t *testing.T) {
		free, err := f.svc.CheckAvailability(ctx, f.instructor.ID, "2025-09-11", "09:00-10:00")
		require.NoError(t, err)
		assert.False(t, free)
	})

	t.Run("unknown instructor", func(t *testing.T) {
		_, err := f.svc.CheckAvailability(ctx, "nope", "2025-09-10", "09:00-10:00")
		assert.Equal(t, instructor.ErrNotFound, errors.Cause(err))
	})
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	bkg, err := f.svc.Create(ctx, f.newBooking("09:00-10:00"))
	require.NoError(t, err)
	assert.NotEmpty(t, bkg.ID)
	assert.Equal(t, booking.StatusPending, bkg.Status)

	t.Run("slot is consumed", func(t *testing.T) {
		free, err := f.svc.CheckAvailability(ctx, f.instructor.ID, "2025-09-10", "09:00-10:00")
		require.NoError(t, err)
		assert.False(t, free)

		_, err = f.svc.Create(ctx, f.newBooking("09:00-10:00"))
		assert.Equal(t, booking.ErrSlotUnavailable, errors.Cause(err))
	})

	t.Run("other slots remain free", func(t *testing.T) {
		slots, err := f.svc.ListAvailableSlots(ctx, f.instructor.ID, "2025-09-10")
		require.NoError(t, err)
		assert.Equal(t, []string{"10:00-11:00", "14:00-15:00"}, slots)
	})

	t.Run("cancelling frees the slot again", func(t *testing.T) {
		_, err := f.svc.Cancel(ctx, bkg.ID, f.student.ID)
		require.NoError(t, err)

		free, err := f.svc.CheckAvailability(ctx, f.instructor.ID, "2025-09-10", "09:00-10:00")
		require.NoError(t, err)
		assert.True(t, free)
	})
}

func TestService_Create_unknownReferences(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	nb := f.newBooking("09:00-10:00")
	nb.StudentID = "nope"
	_, err := f.svc.Create(ctx, nb)
	require.Error(t, err)

	nb = f.newBooking("09:00-10:00")
	nb.VehicleRegNo = "nope"
	_, err = f.svc.Create(ctx, nb)
	require.Error(t, err)

	nb = f.newBooking("09:00-10:00")
	nb.InstructorID = "nope"
	_, err = f.svc.Create(ctx, nb)
	require.Error(t, err)
}

func TestService_UpdateStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	bkg, err := f.svc.Create(ctx, f.newBooking("10:00-11:00"))
	require.NoError(t, err)

	t.Run("pending cannot complete", func(t *testing.T) {
		_, err := f.svc.UpdateStatus(ctx, bkg.ID, booking.UpdateStatus{Status: booking.StatusCompleted})
		assert.Equal(t, booking.ErrInvalidTransition, errors.Cause(err))
	})

	bkg, err = f.svc.UpdateStatus(ctx, bkg.ID, booking.UpdateStatus{Status: booking.StatusBooked})
	require.NoError(t, err)
	assert.Equal(t, booking.StatusBooked, bkg.Status)

	t.Run("booked still holds the slot", func(t *testing.T) {
		free, err := f.svc.CheckAvailability(ctx, f.instructor.ID, "2025-09-10", "10:00-11:00")
		require.NoError(t, err)
		assert.False(t, free)
	})

	bkg, err = f.svc.UpdateStatus(ctx, bkg.ID, booking.UpdateStatus{Status: booking.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCompleted, bkg.Status)

	t.Run("completed is terminal", func(t *testing.T) {
		_, err := f.svc.UpdateStatus(ctx, bkg.ID, booking.UpdateStatus{Status: booking.StatusCancelled})
		assert.Equal(t, booking.ErrInvalidTransition, errors.Cause(err))
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, err := f.svc.UpdateStatus(ctx, "nope", booking.UpdateStatus{Status: booking.StatusBooked})
		assert.Equal(t, booking.ErrNotFound, errors.Cause(err))
	})
}

func TestService_Cancel(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	bkg, err := f.svc.Create(ctx, f.newBooking("14:00-15:00"))
	require.NoError(t, err)

	t.Run("only the owner may cancel", func(t *testing.T) {
		_, err := f.svc.Cancel(ctx, bkg.ID, "someone-else")
		assert.Equal(t, booking.ErrNotOwner, errors.Cause(err))
	})

	cancelled, err := f.svc.Cancel(ctx, bkg.ID, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, cancelled.Status)

	t.Run("cancelled is terminal", func(t *testing.T) {
		_, err := f.svc.Cancel(ctx, bkg.ID, f.student.ID)
		assert.Equal(t, booking.ErrInvalidTransition, errors.Cause(err))
	})
}

func TestService_ListAvailableInstructors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// a second instructor with no availability on the date
	_, err := f.insSvc.Create(ctx, instructor.NewInstructor{
		Name:      "Grace Mwangi",
		Email:     "grace@test.cd",
		LicenseNo: "ins-002",
	})
	require.NoError(t, err)

	instructors, err := f.svc.ListAvailableInstructors(ctx, "2025-09-10", "09:00-10:00")
	require.NoError(t, err)
	require.Len(t, instructors, 1)
	assert.Equal(t, f.instructor.ID, instructors[0].ID)

	t.Run("booked instructor drops out", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.newBooking("09:00-10:00"))
		require.NoError(t, err)

		instructors, err := f.svc.ListAvailableInstructors(ctx, "2025-09-10", "09:00-10:00")
		require.NoError(t, err)
		assert.Empty(t, instructors)
	})
}
