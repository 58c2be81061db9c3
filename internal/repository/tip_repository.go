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

// TipFilter narrows tip queries. Zero values mean "no constraint".
type TipFilter struct {
	League     string           // case-insensitive (Unicode) substring of the league
	Visibility model.Visibility // exact audience
	Outcome    model.Outcome    // exact outcome
	From       *time.Time       // kick-off at or after
	To         *time.Time       // kick-off at or before
}

// TipOrder selects the sort order of a listing.
type TipOrder int

const (
	// NewestFirst sorts by insertion time, most recent first.
	NewestFirst TipOrder = iota
	// KickoffDesc sorts by fixture date, most recent first.
	KickoffDesc
	// KickoffAsc sorts by fixture date, oldest first.
	KickoffAsc
)

func (o TipOrder) clause() string {
	switch o {
	case KickoffDesc:
		return " ORDER BY kickoff_at DESC, created_at DESC"
	case KickoffAsc:
		return " ORDER BY kickoff_at ASC, created_at ASC"
	default:
		return " ORDER BY created_at DESC, id DESC"
	}
}

// Page bounds a listing. A zero Limit returns every matching row.
type Page struct {
	Limit  int
	Offset int
}

const tipColumns = "id, league, match_name, pick, odds, kickoff_at, visibility, tag, analysis, outcome, created_at"

// TipRepo encapsulates all database queries related to tips.
type TipRepo struct {
	db *database.DB
}

// NewTipRepo constructs a TipRepo with the provided DB handle.
func NewTipRepo(db *database.DB) *TipRepo {
	return &TipRepo{db: db}
}

// Create inserts a new tip. The id and creation time are always assigned
// here; an empty date, visibility or outcome gets its default.
func (r *TipRepo) Create(ctx context.Context, t *model.Tip) error {
	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	if t.Date.IsZero() {
		t.Date = now
	}
	if t.Visibility == "" {
		t.Visibility = model.VisibilityPublic
	}
	if t.Outcome == "" {
		t.Outcome = model.OutcomePending
	}
	const q = "INSERT INTO tips (" + tipColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, q,
		t.ID, t.League, t.Match, t.Pick, t.Odds, database.FormatTime(t.Date),
		string(t.Visibility), t.Tag, t.Analysis, string(t.Outcome), database.FormatTime(t.CreatedAt))
	return err
}

// GetByID fetches a tip by id. It returns ErrTipNotFound if no row exists.
func (r *TipRepo) GetByID(ctx context.Context, id string) (*model.Tip, error) {
	const q = "SELECT " + tipColumns + " FROM tips WHERE id = ?"
	t, err := scanTip(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTipNotFound
		}
		return nil, err
	}
	return t, nil
}

// Update writes every mutable column of t. CreatedAt is left untouched.
func (r *TipRepo) Update(ctx context.Context, t *model.Tip) error {
	const q = `UPDATE tips SET league = ?, match_name = ?, pick = ?, odds = ?, kickoff_at = ?,
		visibility = ?, tag = ?, analysis = ?, outcome = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		t.League, t.Match, t.Pick, t.Odds, database.FormatTime(t.Date),
		string(t.Visibility), t.Tag, t.Analysis, string(t.Outcome), t.ID)
	if err != nil {
		return err
	}
	return r.affectedOrMissing(ctx, res, t.ID)
}

// SetOutcome records the settled result of a single tip. The update touches
// one row so concurrent settlements never interleave partially.
func (r *TipRepo) SetOutcome(ctx context.Context, id string, o model.Outcome) error {
	res, err := r.db.ExecContext(ctx, "UPDATE tips SET outcome = ? WHERE id = ?", string(o), id)
	if err != nil {
		return err
	}
	return r.affectedOrMissing(ctx, res, id)
}

// Delete removes a tip. It returns ErrTipNotFound if nothing was deleted.
func (r *TipRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tips WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTipNotFound
	}
	return nil
}

// List returns the tips matching f in the requested order.
func (r *TipRepo) List(ctx context.Context, f TipFilter, order TipOrder, p Page) ([]model.Tip, error) {
	where, args := f.where(r.db.Dialect)
	q := "SELECT " + tipColumns + " FROM tips" + where + order.clause()
	if p.Limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, p.Limit, p.Offset)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Tip, 0)
	for rows.Next() {
		t, err := scanTip(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// ListAll returns every tip matching f, newest first. Used for aggregation.
func (r *TipRepo) ListAll(ctx context.Context, f TipFilter) ([]model.Tip, error) {
	return r.List(ctx, f, NewestFirst, Page{})
}

// Count returns how many tips match f.
func (r *TipRepo) Count(ctx context.Context, f TipFilter) (int, error) {
	where, args := f.where(r.db.Dialect)
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tips"+where, args...).Scan(&n)
	return n, err
}

// affectedOrMissing turns a zero-row update into ErrTipNotFound only when
// the row is really absent. MySQL reports zero affected rows for updates
// that do not change any value.
func (r *TipRepo) affectedOrMissing(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = r.db.QueryRowContext(ctx, "SELECT 1 FROM tips WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTipNotFound
	}
	return err
}

func (f TipFilter) where(d database.Dialect) (string, []any) {
	var conds []string
	var args []any
	if league := strings.TrimSpace(f.League); league != "" {
		conds = append(conds, d.LowerFunc()+"(league) LIKE ? ESCAPE '!'")
		args = append(args, "%"+escapeLike(strings.ToLower(league))+"%")
	}
	if f.Visibility != "" {
		conds = append(conds, "visibility = ?")
		args = append(args, string(f.Visibility))
	}
	if f.Outcome != "" {
		conds = append(conds, "outcome = ?")
		args = append(args, string(f.Outcome))
	}
	if f.From != nil {
		conds = append(conds, "kickoff_at >= ?")
		args = append(args, database.FormatTime(*f.From))
	}
	if f.To != nil {
		conds = append(conds, "kickoff_at <= ?")
		args = append(args, database.FormatTime(*f.To))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTip(s rowScanner) (*model.Tip, error) {
	var (
		t          model.Tip
		odds       sql.NullFloat64
		date, made database.Time
		vis, out   string
	)
	if err := s.Scan(&t.ID, &t.League, &t.Match, &t.Pick, &odds, &date,
		&vis, &t.Tag, &t.Analysis, &out, &made); err != nil {
		return nil, err
	}
	if odds.Valid {
		v := odds.Float64
		t.Odds = &v
	}
	t.Date = date.T
	t.CreatedAt = made.T
	t.Visibility = model.Visibility(vis)
	t.Outcome = model.Outcome(out)
	return &t, nil
}
