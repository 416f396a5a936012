package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/vehicle"
)

type vehicleRepository struct {
	db *vehicleTable
}

var _ vehicle.Repository = (*vehicleRepository)(nil)

func NewVehicleRepository(db *DB) vehicle.Repository {
	return &vehicleRepository{db: db.vehicle}
}

func (repo *vehicleRepository) query() []vehicle.Vehicle {
	vehicles := make([]vehicle.Vehicle, 0, len(repo.db.table))
	for _, veh := range repo.db.table {
		vehicles = append(vehicles, *veh)
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].CreatedAt.Before(vehicles[j].CreatedAt) })
	return vehicles
}

func (repo *vehicleRepository) CheckRegNoUniqueness(ctx context.Context, regNo string, excludedVehicles ...vehicle.Vehicle) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]struct{}, len(excludedVehicles))
	for _, veh := range excludedVehicles {
		excluded[veh.ID] = struct{}{}
	}

	for _, veh := range repo.query() {
		if _, ok := excluded[veh.ID]; ok {
			continue
		}
		if veh.RegNo == regNo {
			return vehicle.ErrRegNoExists
		}
	}
	return nil
}

func (repo *vehicleRepository) CreateVehicle(ctx context.Context, veh vehicle.Vehicle) (vehicle.Vehicle, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	veh.ID = newID()
	repo.db.table[veh.ID] = &veh
	return veh, nil
}

func (repo *vehicleRepository) GetVehicle(ctx context.Context, filter vehicle.GetFilter) (vehicle.Vehicle, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if veh, ok := repo.db.table[filter.ID]; ok {
			return *veh, nil
		}
		return vehicle.Vehicle{}, vehicle.ErrNotFound
	}
	if filter.RegNo != "" {
		for _, veh := range repo.query() {
			if veh.RegNo == filter.RegNo {
				return veh, nil
			}
		}
	}
	return vehicle.Vehicle{}, vehicle.ErrNotFound
}

func (repo *vehicleRepository) QueryVehicles(ctx context.Context, filter *vehicle.QueryFilter, ordering []core.DBOrdering) ([]vehicle.Vehicle, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	vehicles := repo.query()
	if filter == nil || filter.IsEmpty() {
		return vehicles, nil
	}

	matches := make([]vehicle.Vehicle, 0, len(vehicles))
	for _, veh := range vehicles {
		if filter.Search != "" && !matchSearch(filter.Search, veh.RegNo, veh.Make, veh.Model) {
			continue
		}
		if filter.Transmission != "" && veh.Transmission != filter.Transmission {
			continue
		}
		if filter.IsActive != nil && veh.Active() != *filter.IsActive {
			continue
		}
		matches = append(matches, veh)
	}
	return matches, nil
}

func (repo *vehicleRepository) UpdateVehicle(ctx context.Context, veh vehicle.Vehicle) (vehicle.Vehicle, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	origVeh, ok := repo.db.table[veh.ID]
	if !ok {
		return vehicle.Vehicle{}, vehicle.ErrNotFound
	}
	if veh.RegNo != "" {
		origVeh.RegNo = veh.RegNo
	}
	if veh.Make != "" {
		origVeh.Make = veh.Make
	}
	if veh.Model != "" {
		origVeh.Model = veh.Model
	}
	if veh.Transmission != "" {
		origVeh.Transmission = veh.Transmission
	}
	if veh.Year != 0 {
		origVeh.Year = veh.Year
	}
	if veh.IsActive != nil {
		origVeh.IsActive = veh.IsActive
	}
	if !veh.UpdatedAt.IsZero() {
		origVeh.UpdatedAt = veh.UpdatedAt
	}
	return *origVeh, nil
}

func (repo *vehicleRepository) DeleteVehiclesByID(ctx context.Context, ids []string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			n++
		}
	}
	return n, nil
}
