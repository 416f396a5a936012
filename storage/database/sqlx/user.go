package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core"
	"github.com/trezcool/dereva/core/user"
)

const userTable = `"user"`

var userColumns = []string{"id", "name", "username", "email", "is_active", "roles", "password_hash", "created_at", "updated_at", "last_login"}

type userRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    time.Time      `db:"last_login"`
}

func (r userRow) toUser() user.User {
	usr := user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		Roles:        r.Roles,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin,
	}
	usr.SetActive(r.IsActive)
	return usr
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	q := psql.Select("username", "email").
		From(userTable).
		Where(sq.Or{sq.Eq{"username": username}, sq.Eq{"email": email}})
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		q = q.Where(sq.NotEq{"id": ids})
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	var rows []struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	if err = repo.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return errors.Wrap(err, "querying users")
	}
	for _, row := range rows {
		if row.Username == username {
			return user.ErrUsernameExists
		}
		if row.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = newID()
	stmt, args, err := psql.Insert(userTable).
		Columns(userColumns...).
		Values(usr.ID, usr.Name, usr.Username, usr.Email, usr.Active(), pq.StringArray(usr.Roles), usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt, usr.LastLogin).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, stmt, args...); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	q := psql.Select(userColumns...).From(userTable)
	switch {
	case filter.ID != "":
		q = q.Where(sq.Eq{"id": filter.ID})
	case filter.Username != "":
		q = q.Where(sq.Eq{"username": filter.Username})
	case filter.Email != "":
		q = q.Where(sq.Eq{"email": filter.Email})
	case len(filter.UsernameOrEmail) > 0:
		q = q.Where(sq.Or{sq.Eq{"username": filter.UsernameOrEmail}, sq.Eq{"email": filter.UsernameOrEmail}})
	default:
		return user.User{}, user.ErrNotFound
	}

	stmt, args, err := q.ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	var row userRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	q := psql.Select(userColumns...).From(userTable)
	if filter != nil {
		if filter.Search != "" {
			pattern := contains(filter.Search)
			q = q.Where(sq.Or{
				sq.ILike{"name": pattern},
				sq.ILike{"username": pattern},
				sq.ILike{"email": pattern},
			})
		}
		if len(filter.Roles) > 0 {
			q = q.Where(sq.Expr("roles && ?", pq.StringArray(filter.Roles)))
		}
		if filter.IsActive != nil {
			q = q.Where(sq.Eq{"is_active": *filter.IsActive})
		}
		if !filter.CreatedFrom.IsZero() {
			q = q.Where(sq.GtOrEq{"created_at": filter.CreatedFrom})
		}
		if !filter.CreatedTo.IsZero() {
			q = q.Where(sq.LtOrEq{"created_at": filter.CreatedTo})
		}
	}
	q = applyOrdering(q, ordering)

	stmt, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []userRow
	if err = repo.db.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	// only save set fields
	q := psql.Update(userTable).Where(sq.Eq{"id": usr.ID})
	if usr.Name != "" {
		q = q.Set("name", usr.Name)
	}
	if usr.Username != "" {
		q = q.Set("username", usr.Username)
	}
	if usr.Email != "" {
		q = q.Set("email", usr.Email)
	}
	if usr.Roles != nil {
		q = q.Set("roles", pq.StringArray(usr.Roles))
	}
	if usr.PasswordHash != nil {
		q = q.Set("password_hash", usr.PasswordHash)
	}
	if usr.IsActive != nil {
		q = q.Set("is_active", *usr.IsActive)
	}
	if !usr.LastLogin.IsZero() {
		q = q.Set("last_login", usr.LastLogin)
	}
	if !usr.UpdatedAt.IsZero() {
		q = q.Set("updated_at", usr.UpdatedAt)
	}

	stmt, args, err := q.Suffix("RETURNING " + columnList(userColumns)).ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}
	var row userRow
	if err = repo.db.GetContext(ctx, &row, stmt, args...); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID != "" {
		updated, err := repo.UpdateUser(ctx, usr)
		if err == nil {
			return updated, nil
		}
		if errors.Cause(err) != user.ErrNotFound {
			return user.User{}, err
		}
	}
	return repo.CreateUser(ctx, usr)
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids []string) (int, error) {
	stmt, args, err := psql.Delete(userTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "counting deleted users")
}
