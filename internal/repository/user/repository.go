package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/database"
	"github.com/AndersBondeLudvigsen/FoodOrdering/internal/entity"
)

var repoTracer = otel.Tracer("github.com/AndersBondeLudvigsen/FoodOrdering/repository/user")

var (
	// ErrNotFound is returned when a user is missing.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when another account already uses the email.
	ErrEmailTaken = errors.New("email already in use")
)

// Changes lists the user fields to overwrite; nil fields are left untouched.
type Changes struct {
	Username     *string
	Email        *string
	Role         *entity.Role
	PasswordHash *string
}

// Empty reports whether no field is set.
func (c Changes) Empty() bool {
	return c.Username == nil && c.Email == nil && c.Role == nil && c.PasswordHash == nil
}

// Repository encapsulates read/write access for user accounts.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create inserts a user unless the email is already registered.
func (r *Repository) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	ctx, span := repoTracer.Start(ctx, "UserRepository.Create")
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		taken, err := emailTaken(ctx, tx, u.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		if _, err := tx.NewInsert().Model(u).Exec(ctx); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrEmailTaken) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a user by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.GetByID", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	return r.getOne(ctx, span, "u.id = ?", id)
}

// GetByEmail fetches a user by login email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.GetByEmail")
	defer span.End()

	return r.getOne(ctx, span, "u.email = ?", email)
}

// List returns every user ordered by username.
func (r *Repository) List(ctx context.Context) ([]*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.List")
	defer span.End()

	users := make([]*entity.User, 0)
	if err := r.reader.NewSelect().Model(&users).OrderExpr("u.username ASC, u.id ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return users, nil
}

// Update applies changes to the user and returns the stored row.
func (r *Repository) Update(ctx context.Context, id int64, changes Changes) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.Update", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	u := new(entity.User)
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().Model(u).Where("u.id = ?", id).Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("select user: %w", err)
		}

		columns := make([]string, 0, 4)
		if changes.Username != nil {
			u.Username = *changes.Username
			columns = append(columns, "username")
		}
		if changes.Email != nil {
			taken, err := emailTaken(ctx, tx, *changes.Email, id)
			if err != nil {
				return err
			}
			if taken {
				return ErrEmailTaken
			}
			u.Email = *changes.Email
			columns = append(columns, "email")
		}
		if changes.Role != nil {
			u.Role = *changes.Role
			columns = append(columns, "role")
		}
		if changes.PasswordHash != nil {
			u.Password = *changes.PasswordHash
			columns = append(columns, "password")
		}
		if len(columns) == 0 {
			return nil
		}

		if _, err := tx.NewUpdate().Model(u).Column(columns...).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrEmailTaken):
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}
	return u, nil
}

// UpdatePassword stores a new password hash for the user.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	_, err := r.Update(ctx, id, Changes{PasswordHash: &hash})
	return err
}

func (r *Repository) getOne(ctx context.Context, span trace.Span, where string, arg any) (*entity.User, error) {
	u := new(entity.User)
	err := r.reader.NewSelect().Model(u).Where(where, arg).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return u, nil
}

func emailTaken(ctx context.Context, tx bun.Tx, email string, exceptID int64) (bool, error) {
	q := tx.NewSelect().Model((*entity.User)(nil)).Where("u.email = ?", email)
	if exceptID != 0 {
		q = q.Where("u.id <> ?", exceptID)
	}
	taken, err := q.Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return taken, nil
}
