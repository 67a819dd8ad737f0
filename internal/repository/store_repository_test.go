package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newStoreRepo(t *testing.T) (*StoreRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	return NewStoreRepo(db), mock, func() { db.Close() }
}

func TestCreateStoreRejectsUnknownOwner(t *testing.T) {
	repo, mock, done := newStoreRepo(t)
	defer done()

	// Owner check matches nothing; the INSERT must never run.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE email = ? AND role = 'OWNER'")).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	s := &Store{Name: "Shop", Email: "shop@example.com", Address: "1 Main St", OwnerEmail: "ghost@example.com"}
	if err := repo.Create(context.Background(), s); !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateStoreInsertsAfterOwnerCheck(t *testing.T) {
	repo, mock, done := newStoreRepo(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE email = ? AND role = 'OWNER'")).
		WithArgs("owner@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO stores (name, email, address, owner_email)")).
		WithArgs("Shop", "shop@example.com", "1 Main St", "owner@example.com").
		WillReturnResult(sqlmock.NewResult(11, 1))

	s := &Store{Name: "Shop", Email: "shop@example.com", Address: "1 Main St", OwnerEmail: "Owner@Example.com"}
	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("create: %v", err)
	}
	if s.ID != 11 {
		t.Fatalf("expected ID 11, got %d", s.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFirstByOwnerNotFound(t *testing.T) {
	repo, mock, done := newStoreRepo(t)
	defer done()

	mock.ExpectQuery("SELECT email FROM users WHERE id").
		WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "address", "owner_email", "created_at", "updated_at"}))

	if _, err := repo.FirstByOwner(context.Background(), 8); !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}
}

func TestFirstByOwnerReturnsEarliestStore(t *testing.T) {
	repo, mock, done := newStoreRepo(t)
	defer done()

	mock.ExpectQuery("ORDER BY id LIMIT 1").
		WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "address", "owner_email", "created_at", "updated_at"}).
			AddRow(4, "Corner Shop", "shop@x.com", "2 High St", "owner@x.com", "2026-01-01 00:00:00", "2026-01-01 00:00:00"))

	s, err := repo.FirstByOwner(context.Background(), 8)
	if err != nil {
		t.Fatalf("first by owner: %v", err)
	}
	if s.ID != 4 || s.Name != "Corner Shop" {
		t.Fatalf("unexpected store: %+v", s)
	}
}

func TestListForUserWithoutSearch(t *testing.T) {
	repo, mock, done := newStoreRepo(t)
	defer done()

	mock.ExpectQuery("FROM stores s").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "overall_rating", "user_rating"}).
			AddRow(1, "A", "addr a", 4.5, 4).
			AddRow(2, "B", "addr b", nil, nil))

	out, err := repo.ListForUser(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	if out[0].OverallRating == nil || *out[0].OverallRating != 4.5 {
		t.Fatalf("unexpected overall rating: %+v", out[0])
	}
	if out[1].OverallRating != nil || out[1].UserRating != nil {
		t.Fatalf("unrated store must report nils, got %+v", out[1])
	}
}

func TestListForUserSearchFiltersNameOrAddress(t *testing.T) {
	repo, mock, done := newStoreRepo(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.name LIKE ? OR s.address LIKE ?")).
		WithArgs(uint64(1), "%coffee%", "%coffee%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "overall_rating", "user_rating"}).
			AddRow(3, "Coffee Corner", "3 Bean St", 5.0, nil))

	out, err := repo.ListForUser(context.Background(), 1, "coffee")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 1 || out[0].Name != "Coffee Corner" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestListWithOverallNullForUnratedStore(t *testing.T) {
	repo, mock, done := newStoreRepo(t)
	defer done()

	mock.ExpectQuery("LEFT JOIN ratings r ON r.store_id = s.id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "address", "owner_email", "rating"}).
			AddRow(1, "A", "a@x.com", "addr", "owner@x.com", 3.0).
			AddRow(2, "B", "b@x.com", "addr", "owner@x.com", nil))

	out, err := repo.ListWithOverall(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out[0].Rating == nil || *out[0].Rating != 3.0 {
		t.Fatalf("unexpected rating: %+v", out[0])
	}
	if out[1].Rating != nil {
		t.Fatalf("unrated store must be nil, not zero: %+v", out[1])
	}
}
