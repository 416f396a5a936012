package maintenance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/vehicle"
)

// ErrNotFound is returned when a maintenance record does not resolve.
var ErrNotFound = errors.New("maintenance record not found")

type (
	Repository interface {
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		GetRecordByID(ctx context.Context, id string) (Record, error)
		// QueryRecords applies AND operation on available QueryFilter fields.
		QueryRecords(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Record, error)
		DeleteRecordsByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		Create(ctx context.Context, nr NewRecord) (Record, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Record, error)
		GetByID(ctx context.Context, id string) (Record, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo       Repository
		vehicleSvc vehicle.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, vehicleSvc vehicle.Service) Service {
	return &service{repo: repo, vehicleSvc: vehicleSvc}
}

func (svc *service) Create(ctx context.Context, nr NewRecord) (Record, error) {
	if _, err := svc.vehicleSvc.GetByRegNo(ctx, nr.VehicleRegNo); err != nil {
		if errors.Cause(err) == vehicle.ErrNotFound {
			return Record{}, core.NewValidationError(err, core.FieldError{Field: "vehicle_reg_no", Error: "unknown vehicle"})
		}
		return Record{}, errors.Wrap(err, "finding vehicle")
	}

	serviceDate, _ := time.Parse(core.DateFormat, nr.ServiceDate) // validated upstream
	now := time.Now().UTC()
	rec := Record{
		VehicleRegNo: nr.VehicleRegNo,
		ServiceDate:  serviceDate,
		ServiceType:  nr.ServiceType,
		Cost:         nr.Cost,
		Description:  nr.Description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateRecord(ctx, rec)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Record, error) {
	return svc.repo.GetRecordByID(ctx, id)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteRecordsByID(ctx, ids)
	return err
}
