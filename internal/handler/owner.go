package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-ratings/internal/config"
	"github.com/iliyamo/store-ratings/internal/repository"
)

// OwnerHandler bundles the repositories behind the OWNER-only endpoints:
// the store dashboard and the owner's password change.
type OwnerHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Stores  *repository.StoreRepo
	Ratings *repository.RatingRepo
}

// NewOwnerHandler constructs an OwnerHandler and panics if any dependency is nil.
func NewOwnerHandler(cfg config.Config, users *repository.UserRepo, stores *repository.StoreRepo, ratings *repository.RatingRepo) *OwnerHandler {
	if users == nil || stores == nil || ratings == nil {
		panic("nil repository passed to NewOwnerHandler")
	}
	return &OwnerHandler{Cfg: cfg, Users: users, Stores: stores, Ratings: ratings}
}

type ownerStorePart struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type ownerDashboardResp struct {
	Store         ownerStorePart     `json:"store"`
	Users         []repository.Rater `json:"users"`
	AverageRating *string            `json:"average_rating"`
}

// Dashboard returns the owner's store, everyone who rated it, and the
// average rating formatted to two decimals (null when unrated). An owner
// identity with no registered store fails whole with 404 rather than
// rendering an empty dashboard.
func (h *OwnerHandler) Dashboard(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	store, err := h.Stores.FirstByOwner(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "No store found for owner"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	raters, err := h.Ratings.RatersForStore(ctx, store.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if raters == nil {
		raters = []repository.Rater{}
	}

	avg, err := h.Ratings.StoreAverage(ctx, store.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	var avgStr *string
	if avg != nil {
		s := fmt.Sprintf("%.2f", *avg)
		avgStr = &s
	}

	return c.JSON(http.StatusOK, ownerDashboardResp{
		Store: ownerStorePart{
			ID:      store.ID,
			Name:    store.Name,
			Email:   store.Email,
			Address: store.Address,
		},
		Users:         raters,
		AverageRating: avgStr,
	})
}

// ChangePassword lets the owner rotate their password. Role gating happens
// in the route group; the shared flow verifies the old password first.
func (h *OwnerHandler) ChangePassword(c echo.Context) error {
	return changePassword(c, h.Users, h.Cfg.BcryptCost)
}
