package vehicle

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core"
)

var (
	// errors
	ErrNotFound    = errors.New("vehicle not found")
	ErrRegNoExists = errors.New("a vehicle with this registration number already exists")
)

type (
	Repository interface {
		CheckRegNoUniqueness(ctx context.Context, regNo string, excludedVehicles ...Vehicle) error
		CreateVehicle(ctx context.Context, veh Vehicle) (Vehicle, error)
		GetVehicle(ctx context.Context, filter GetFilter) (Vehicle, error)
		// QueryVehicles applies AND operation on available QueryFilter fields.
		QueryVehicles(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Vehicle, error)
		UpdateVehicle(ctx context.Context, veh Vehicle) (Vehicle, error)
		DeleteVehiclesByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		CheckUniqueness(regNo string, exclVehicles ...Vehicle) error
		Create(ctx context.Context, nv NewVehicle) (Vehicle, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Vehicle, error)
		GetByID(ctx context.Context, id string) (Vehicle, error)
		GetByRegNo(ctx context.Context, regNo string) (Vehicle, error)
		Update(ctx context.Context, id string, uv UpdateVehicle) (Vehicle, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(regNo string, exclVehicles ...Vehicle) error {
	if err := svc.repo.CheckRegNoUniqueness(context.Background(), regNo, exclVehicles...); err != nil {
		if errors.Cause(err) == ErrRegNoExists {
			return core.NewValidationError(err, core.FieldError{Field: "reg_no", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nv NewVehicle) (Vehicle, error) {
	now := time.Now().UTC()
	veh := Vehicle{
		RegNo:        nv.RegNo,
		Make:         nv.Make,
		Model:        nv.Model,
		Transmission: nv.Transmission,
		Year:         nv.Year,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	veh.SetActive(true)
	return svc.repo.CreateVehicle(ctx, veh)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Vehicle, error) {
	return svc.repo.QueryVehicles(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Vehicle, error) {
	return svc.repo.GetVehicle(ctx, GetFilter{ID: id})
}

func (svc *service) GetByRegNo(ctx context.Context, regNo string) (Vehicle, error) {
	return svc.repo.GetVehicle(ctx, GetFilter{RegNo: core.CleanString(regNo, true /* lower */)})
}

func (svc *service) Update(ctx context.Context, id string, uv UpdateVehicle) (Vehicle, error) {
	veh := Vehicle{
		ID:           id,
		Make:         uv.Make,
		Model:        uv.Model,
		Transmission: uv.Transmission,
		Year:         uv.Year,
		IsActive:     uv.IsActive,
		UpdatedAt:    time.Now().UTC(),
	}
	return svc.repo.UpdateVehicle(ctx, veh)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteVehiclesByID(ctx, ids)
	return err
}
