package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Rater is one row of the owner dashboard listing: a user together with the
// rating they gave the owner's store and when it was first submitted.
type Rater struct {
	UserID  uint64    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Rating  int       `json:"rating"`
	RatedAt time.Time `json:"created_at"`
}

// RatingRepo encapsulates rating persistence and aggregation. Each user has
// at most one rating per store; the uniqueness is enforced by a composite
// key on (user_id, store_id) and the upsert below.
type RatingRepo struct {
	db *sql.DB
}

func NewRatingRepo(db *sql.DB) *RatingRepo {
	return &RatingRepo{db: db}
}

// Upsert records a user's rating for a store. Values outside 1..5 are
// rejected with ErrInvalidRating before any query runs. The write is a
// single INSERT ... ON DUPLICATE KEY UPDATE statement so two concurrent
// submissions by the same user can never produce two rows: the second one
// simply overwrites the value and refreshes updated_at.
func (r *RatingRepo) Upsert(ctx context.Context, userID, storeID uint64, rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	const q = `INSERT INTO ratings (user_id, store_id, rating)
	           VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE rating = VALUES(rating), updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, q, userID, storeID, rating)
	return err
}

// StoreAverage returns the arithmetic mean of all ratings for one store,
// or nil when the store has none. A nil result must stay nil through the
// JSON layer; reporting 0 would claim the store is rated worst possible.
func (r *RatingRepo) StoreAverage(ctx context.Context, storeID uint64) (*float64, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		"SELECT AVG(rating) FROM ratings WHERE store_id = ?", storeID).Scan(&avg)
	if err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	v := avg.Float64
	return &v, nil
}

// UserRating returns the one rating this user has for this store, or nil
// when they have not rated it.
func (r *RatingRepo) UserRating(ctx context.Context, userID, storeID uint64) (*int, error) {
	var rating int
	err := r.db.QueryRowContext(ctx,
		"SELECT rating FROM ratings WHERE user_id = ? AND store_id = ? LIMIT 1",
		userID, storeID).Scan(&rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}

// OwnerAverage returns the mean rating across every store registered under
// the given owner email, or nil when none of those stores has ratings.
// This is the owner-wide figure shown in the admin user listing and is
// distinct from StoreAverage, which is scoped to a single store.
func (r *RatingRepo) OwnerAverage(ctx context.Context, ownerEmail string) (*float64, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(r.rating)
		 FROM ratings r
		 JOIN stores s ON r.store_id = s.id
		 WHERE s.owner_email = ?`, ownerEmail).Scan(&avg)
	if err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	v := avg.Float64
	return &v, nil
}

// RatersForStore lists every user that rated the store, joined with their
// name and email for the owner dashboard.
func (r *RatingRepo) RatersForStore(ctx context.Context, storeID uint64) ([]Rater, error) {
	const q = `SELECT u.id, u.name, u.email, r.rating, r.created_at
	           FROM ratings r
	           JOIN users u ON u.id = r.user_id
	           WHERE r.store_id = ?
	           ORDER BY r.created_at`
	rows, err := r.db.QueryContext(ctx, q, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rater
	for rows.Next() {
		var rr Rater
		if err := rows.Scan(&rr.UserID, &rr.Name, &rr.Email, &rr.Rating, &rr.RatedAt); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the total number of rating rows for the admin stats block.
func (r *RatingRepo) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ratings").Scan(&n)
	return n, err
}
