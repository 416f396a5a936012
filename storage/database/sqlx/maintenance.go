package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/maintenance"
)

const maintenanceTable = "maintenance_record"

var maintenanceColumns = []string{"id", "vehicle_reg_no", "service_date", "service_type", "cost", "description", "created_at", "updated_at"}

type maintenanceRow struct {
	ID           string          `db:"id"`
	VehicleRegNo string          `db:"vehicle_reg_no"`
	ServiceDate  time.Time       `db:"service_date"`
	ServiceType  string          `db:"service_type"`
	Cost         decimal.Decimal `db:"cost"`
	Description  string          `db:"description"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (r maintenanceRow) toRecord() maintenance.Record {
	return maintenance.Record{
		ID:           r.ID,
		VehicleRegNo: r.VehicleRegNo,
		ServiceDate:  r.ServiceDate,
		ServiceType:  r.ServiceType,
		Cost:         r.Cost,
		Description:  r.Description,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type maintenanceRepository struct {
	db *sqlx.DB
}

var _ maintenance.Repository = (*maintenanceRepository)(nil)

func NewMaintenanceRepository(db *sqlx.DB) maintenance.Repository {
	return &maintenanceRepository{db: db}
}

func (repo *maintenanceRepository) CreateRecord(ctx context.Context, rec maintenance.Record) (maintenance.Record, error) {
	rec.ID = newID()
	stmt, args, err := psql.Insert(maintenanceTable).
		Columns(maintenanceColumns...).
		Values(rec.ID, rec.VehicleRegNo, rec.ServiceDate, rec.ServiceType, rec.Cost, rec.Description, rec.CreatedAt, rec.UpdatedAt).
		ToSql()
	if err != nil {
		return maintenance.Record{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return maintenance.Record{}, errors.Wrap(err, "inserting maintenance record")
	}
	return rec, nil
}

func (repo *maintenanceRepository) GetRecordByID(ctx context.Context, id string) (maintenance.Record, error) {
	stmt, args, err := psql.Select(maintenanceColumns...).
		From(maintenanceTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return maintenance.Record{}, errors.Wrap(err, "building query")
	}
	var row maintenanceRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return maintenance.Record{}, maintenance.ErrNotFound
		}
		return maintenance.Record{}, errors.Wrap(err, "getting maintenance record")
	}
	return row.toRecord(), nil
}

func (repo *maintenanceRepository) QueryRecords(ctx context.Context, filter *maintenance.QueryFilter, ordering []core.DBOrdering) ([]maintenance.Record, error) {
	q := psql.Select(maintenanceColumns...).From(maintenanceTable)
	if filter != nil {
		if filter.VehicleRegNo != "" {
			q = q.Where(sq.Eq{"vehicle_reg_no": filter.VehicleRegNo})
		}
		if filter.ServiceType != "" {
			q = q.Where(sq.Eq{"service_type": filter.ServiceType})
		}
		if !filter.DateFrom.IsZero() {
			q = q.Where(sq.GtOrEq{"service_date": filter.DateFrom})
		}
		if !filter.DateTo.IsZero() {
			q = q.Where(sq.LtOrEq{"service_date": filter.DateTo})
		}
	}
	q = applyOrdering(q, ordering)

	stmt, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []maintenanceRow
	if err = repo.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "querying maintenance records")
	}
	records := make([]maintenance.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRecord())
	}
	return records, nil
}

func (repo *maintenanceRepository) DeleteRecordsByID(ctx context.Context, ids []string) (int, error) {
	stmt, args, err := psql.Delete(maintenanceTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting maintenance records")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "counting deleted maintenance records")
}
