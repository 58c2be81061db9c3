package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pronoelite/pronoelite-api/internal/database"
	"github.com/pronoelite/pronoelite-api/internal/model"
)

const userColumns = "id, google_id, username, email, is_vip, is_admin, stripe_customer_id, stripe_subscription_id, created_at"

type UserRepo struct{ db *database.DB }

func NewUserRepo(db *database.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts u after assigning its id and creation time. The email is
// stored normalized.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.NewString()
	u.Email = normalizeEmail(u.Email)
	u.CreatedAt = time.Now().UTC()
	const q = "INSERT INTO users (" + userColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.GoogleID, u.Username, u.Email, u.IsVIP, u.IsAdmin,
		u.StripeCustomerID, u.StripeSubscriptionID, database.FormatTime(u.CreatedAt))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "email = ?", normalizeEmail(email))
}

// GetByGoogleID fetches a user by identity provider subject.
func (r *UserRepo) GetByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.getOne(ctx, "google_id = ?", googleID)
}

// GetBySubscriptionID fetches the user owning a payment subscription.
func (r *UserRepo) GetBySubscriptionID(ctx context.Context, subID string) (*model.User, error) {
	return r.getOne(ctx, "stripe_subscription_id = ?", subID)
}

// LinkGoogleID attaches an identity provider subject to an existing account.
func (r *UserRepo) LinkGoogleID(ctx context.Context, id, googleID string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET google_id = ? WHERE id = ?", googleID, id)
	if err != nil {
		return err
	}
	return r.affectedOrMissing(ctx, res, "id = ?", id)
}

// UpdateUsername renames a user.
func (r *UserRepo) UpdateUsername(ctx context.Context, id, username string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET username = ? WHERE id = ?", username, id)
	if err != nil {
		return err
	}
	return r.affectedOrMissing(ctx, res, "id = ?", id)
}

// UpdateMembership overwrites the billing-controlled columns in one statement.
func (r *UserRepo) UpdateMembership(ctx context.Context, id string, m model.Membership) error {
	const q = "UPDATE users SET is_vip = ?, stripe_customer_id = ?, stripe_subscription_id = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, m.IsVIP, m.StripeCustomerID, m.StripeSubscriptionID, id)
	if err != nil {
		return err
	}
	return r.affectedOrMissing(ctx, res, "id = ?", id)
}

// SetAdmin grants or revokes the admin flag of the account owning email.
func (r *UserRepo) SetAdmin(ctx context.Context, email string, admin bool) error {
	email = normalizeEmail(email)
	res, err := r.db.ExecContext(ctx, "UPDATE users SET is_admin = ? WHERE email = ?", admin, email)
	if err != nil {
		return err
	}
	return r.affectedOrMissing(ctx, res, "email = ?", email)
}

// ListAdmins returns every account holding the admin flag, oldest first.
func (r *UserRepo) ListAdmins(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_admin = ? ORDER BY created_at ASC", true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *UserRepo) getOne(ctx context.Context, cond string, arg any) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+cond+" LIMIT 1", arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) affectedOrMissing(ctx context.Context, res sql.Result, cond string, arg any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = r.db.QueryRowContext(ctx, "SELECT 1 FROM users WHERE "+cond, arg).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u                    model.User
		googleID, cust, subs sql.NullString
		created              database.Time
	)
	if err := s.Scan(&u.ID, &googleID, &u.Username, &u.Email, &u.IsVIP, &u.IsAdmin,
		&cust, &subs, &created); err != nil {
		return nil, err
	}
	u.GoogleID = nullString(googleID)
	u.StripeCustomerID = nullString(cust)
	u.StripeSubscriptionID = nullString(subs)
	u.CreatedAt = created.T
	return &u, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
