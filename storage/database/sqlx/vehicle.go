package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/vehicle"
)

const vehicleTable = "vehicle"

var vehicleColumns = []string{"id", "reg_no", "make", "model", "transmission", "year", "is_active", "created_at", "updated_at"}

type vehicleRow struct {
	ID           string    `db:"id"`
	RegNo        string    `db:"reg_no"`
	Make         string    `db:"make"`
	Model        string    `db:"model"`
	Transmission string    `db:"transmission"`
	Year         int       `db:"year"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r vehicleRow) toVehicle() vehicle.Vehicle {
	veh := vehicle.Vehicle{
		ID:           r.ID,
		RegNo:        r.RegNo,
		Make:         r.Make,
		Model:        r.Model,
		Transmission: r.Transmission,
		Year:         r.Year,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	veh.SetActive(r.IsActive)
	return veh
}

type vehicleRepository struct {
	db *sqlx.DB
}

var _ vehicle.Repository = (*vehicleRepository)(nil)

func NewVehicleRepository(db *sqlx.DB) vehicle.Repository {
	return &vehicleRepository{db: db}
}

func (repo *vehicleRepository) CheckRegNoUniqueness(ctx context.Context, regNo string, excludedVehicles ...vehicle.Vehicle) error {
	q := psql.Select("COUNT(*)").From(vehicleTable).Where(sq.Eq{"reg_no": regNo})
	if len(excludedVehicles) > 0 {
		ids := make([]string, 0, len(excludedVehicles))
		for _, veh := range excludedVehicles {
			ids = append(ids, veh.ID)
		}
		q = q.Where(sq.NotEq{"id": ids})
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	var count int
	if err = repo.db.GetContext(ctx, &count, stmt, args...); err != nil {
		return errors.Wrap(err, "querying vehicles")
	}
	if count > 0 {
		return vehicle.ErrRegNoExists
	}
	return nil
}

func (repo *vehicleRepository) CreateVehicle(ctx context.Context, veh vehicle.Vehicle) (vehicle.Vehicle, error) {
	veh.ID = newID()
	stmt, args, err := psql.Insert(vehicleTable).
		Columns(vehicleColumns...).
		Values(veh.ID, veh.RegNo, veh.Make, veh.Model, veh.Transmission, veh.Year, veh.Active(), veh.CreatedAt, veh.UpdatedAt).
		ToSql()
	if err != nil {
		return vehicle.Vehicle{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return vehicle.Vehicle{}, errors.Wrap(err, "inserting vehicle")
	}
	return veh, nil
}

func (repo *vehicleRepository) GetVehicle(ctx context.Context, filter vehicle.GetFilter) (vehicle.Vehicle, error) {
	q := psql.Select(vehicleColumns...).From(vehicleTable)
	switch {
	case filter.ID != "":
		q = q.Where(sq.Eq{"id": filter.ID})
	case filter.RegNo != "":
		q = q.Where(sq.Eq{"reg_no": filter.RegNo})
	default:
		return vehicle.Vehicle{}, vehicle.ErrNotFound
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return vehicle.Vehicle{}, errors.Wrap(err, "building query")
	}
	var row vehicleRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return vehicle.Vehicle{}, vehicle.ErrNotFound
		}
		return vehicle.Vehicle{}, errors.Wrap(err, "getting vehicle")
	}
	return row.toVehicle(), nil
}

func (repo *vehicleRepository) QueryVehicles(ctx context.Context, filter *vehicle.QueryFilter, ordering []core.DBOrdering) ([]vehicle.Vehicle, error) {
	q := psql.Select(vehicleColumns...).From(vehicleTable)
	if filter != nil {
		if filter.Search != "" {
			pattern := contains(filter.Search)
			q = q.Where(sq.Or{
				sq.ILike{"reg_no": pattern},
				sq.ILike{"make": pattern},
				sq.ILike{"model": pattern},
			})
		}
		if filter.Transmission != "" {
			q = q.Where(sq.Eq{"transmission": filter.Transmission})
		}
		if filter.IsActive != nil {
			q = q.Where(sq.Eq{"is_active": *filter.IsActive})
		}
	}
	q = applyOrdering(q, ordering)

	stmt, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []vehicleRow
	if err = repo.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "querying vehicles")
	}
	vehicles := make([]vehicle.Vehicle, 0, len(rows))
	for _, row := range rows {
		vehicles = append(vehicles, row.toVehicle())
	}
	return vehicles, nil
}

func (repo *vehicleRepository) UpdateVehicle(ctx context.Context, veh vehicle.Vehicle) (vehicle.Vehicle, error) {
	// only save set fields
	q := psql.Update(vehicleTable).Where(sq.Eq{"id": veh.ID})
	if veh.RegNo != "" {
		q = q.Set("reg_no", veh.RegNo)
	}
	if veh.Make != "" {
		q = q.Set("make", veh.Make)
	}
	if veh.Model != "" {
		q = q.Set("model", veh.Model)
	}
	if veh.Transmission != "" {
		q = q.Set("transmission", veh.Transmission)
	}
	if veh.Year != 0 {
		q = q.Set("year", veh.Year)
	}
	if veh.IsActive != nil {
		q = q.Set("is_active", *veh.IsActive)
	}
	if !veh.UpdatedAt.IsZero() {
		q = q.Set("updated_at", veh.UpdatedAt)
	}

	stmt, args, err := q.Suffix("RETURNING " + columnList(vehicleColumns)).ToSql()
	if err != nil {
		return vehicle.Vehicle{}, errors.Wrap(err, "building query")
	}
	var row vehicleRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return vehicle.Vehicle{}, vehicle.ErrNotFound
		}
		return vehicle.Vehicle{}, errors.Wrap(err, "updating vehicle")
	}
	return row.toVehicle(), nil
}

func (repo *vehicleRepository) DeleteVehiclesByID(ctx context.Context, ids []string) (int, error) {
	stmt, args, err := psql.Delete(vehicleTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting vehicles")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "counting deleted vehicles")
}
