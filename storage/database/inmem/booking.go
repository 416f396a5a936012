package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/booking"
)

type bookingRepository struct {
	db *bookingTable
}

var _ booking.Repository = (*bookingRepository)(nil)

func NewBookingRepository(db *DB) booking.Repository {
	return &bookingRepository{db: db.booking}
}

func (repo *bookingRepository) query() []booking.Booking {
	bookings := make([]booking.Booking, 0, len(repo.db.table))
	for _, bkg := range repo.db.table {
		bookings = append(bookings, *bkg)
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.Before(bookings[j].CreatedAt) })
	return bookings
}

func (repo *bookingRepository) CreateBooking(ctx context.Context, bkg booking.Booking) (booking.Booking, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// mirrors the partial unique index on (instructor_id, date, time_slot)
	for _, existing := range repo.db.table {
		if existing.InstructorID == bkg.InstructorID && existing.Date == bkg.Date &&
			existing.TimeSlot == bkg.TimeSlot && existing.Status.Active() {
			return booking.Booking{}, booking.ErrSlotUnavailable
		}
	}

	bkg.ID = newID()
	repo.db.table[bkg.ID] = &bkg
	return bkg, nil
}

func (repo *bookingRepository) GetBooking(ctx context.Context, filter booking.GetFilter) (booking.Booking, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if bkg, ok := repo.db.table[filter.ID]; ok {
			return *bkg, nil
		}
		return booking.Booking{}, booking.ErrNotFound
	}

	// slot lookup: the active booking holding (instructor, date, time slot)
	for _, bkg := range repo.query() {
		if bkg.InstructorID == filter.InstructorID && bkg.Date == filter.Date &&
			bkg.TimeSlot == filter.TimeSlot && bkg.Status.Active() {
			return bkg, nil
		}
	}
	return booking.Booking{}, booking.ErrNotFound
}

func (repo *bookingRepository) QueryBookings(ctx context.Context, filter *booking.QueryFilter, ordering []core.DBOrdering) ([]booking.Booking, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	bookings := repo.query()
	if filter == nil || filter.IsEmpty() {
		return bookings, nil
	}

	matches := make([]booking.Booking, 0, len(bookings))
	for _, bkg := range bookings {
		if filter.StudentID != "" && bkg.StudentID != filter.StudentID {
			continue
		}
		if filter.InstructorID != "" && bkg.InstructorID != filter.InstructorID {
			continue
		}
		if filter.VehicleRegNo != "" && bkg.VehicleRegNo != filter.VehicleRegNo {
			continue
		}
		if filter.Date != "" && bkg.Date != filter.Date {
			continue
		}
		if filter.Status != "" && bkg.Status != filter.Status {
			continue
		}
		matches = append(matches, bkg)
	}
	return matches, nil
}

func (repo *bookingRepository) UpdateBooking(ctx context.Context, bkg booking.Booking) (booking.Booking, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[bkg.ID]; !ok {
		return booking.Booking{}, booking.ErrNotFound
	}
	repo.db.table[bkg.ID] = &bkg
	return bkg, nil
}
