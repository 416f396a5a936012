package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/maintenance"
)

type maintenanceRepository struct {
	db *maintenanceTable
}

var _ maintenance.Repository = (*maintenanceRepository)(nil)

func NewMaintenanceRepository(db *DB) maintenance.Repository {
	return &maintenanceRepository{db: db.maintenance}
}

func (repo *maintenanceRepository) query() []maintenance.Record {
	records := make([]maintenance.Record, 0, len(repo.db.table))
	for _, rec := range repo.db.table {
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ServiceDate.Before(records[j].ServiceDate) })
	return records
}

func (repo *maintenanceRepository) CreateRecord(ctx context.Context, rec maintenance.Record) (maintenance.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec.ID = newID()
	repo.db.table[rec.ID] = &rec
	return rec, nil
}

func (repo *maintenanceRepository) GetRecordByID(ctx context.Context, id string) (maintenance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[id]; ok {
		return *rec, nil
	}
	return maintenance.Record{}, maintenance.ErrNotFound
}

func (repo *maintenanceRepository) QueryRecords(ctx context.Context, filter *maintenance.QueryFilter, ordering []core.DBOrdering) ([]maintenance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := repo.query()
	if filter == nil || filter.IsEmpty() {
		return records, nil
	}

	matches := make([]maintenance.Record, 0, len(records))
	for _, rec := range records {
		if filter.VehicleRegNo != "" && rec.VehicleRegNo != filter.VehicleRegNo {
			continue
		}
		if filter.ServiceType != "" && rec.ServiceType != filter.ServiceType {
			continue
		}
		if !filter.DateFrom.IsZero() && rec.ServiceDate.Before(filter.DateFrom) {
			continue
		}
		if !filter.DateTo.IsZero() && rec.ServiceDate.After(filter.DateTo) {
			continue
		}
		matches = append(matches, rec)
	}
	return matches, nil
}

func (repo *maintenanceRepository) DeleteRecordsByID(ctx context.Context, ids []string) (int, error) {
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
