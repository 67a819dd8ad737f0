package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-ratings/internal/config"
	"github.com/iliyamo/store-ratings/internal/queue"
	"github.com/iliyamo/store-ratings/internal/repository"
	queue_publisher "github.com/iliyamo/store-ratings/internal/service"
)

// UserHandler bundles the repositories behind the authenticated user
// endpoints: browsing stores, submitting ratings, password change and the
// stateless logout handshake.
type UserHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Stores  *repository.StoreRepo
	Ratings *repository.RatingRepo
}

// NewUserHandler constructs a UserHandler and panics if any dependency is nil.
func NewUserHandler(cfg config.Config, users *repository.UserRepo, stores *repository.StoreRepo, ratings *repository.RatingRepo) *UserHandler {
	if users == nil || stores == nil || ratings == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Cfg: cfg, Users: users, Stores: stores, Ratings: ratings}
}

type submitRatingReq struct {
	Rating int `json:"rating"`
}

// ListStores returns every store with its overall average and the caller's
// own rating. An optional ?search= term filters by name or address as a
// case-insensitive substring. Rows come back in insertion order.
func (h *UserHandler) ListStores(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stores, err := h.Stores.ListForUser(ctx, uid, c.QueryParam("search"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if stores == nil {
		stores = []repository.StoreListing{}
	}
	return c.JSON(http.StatusOK, stores)
}

// SubmitRating upserts the caller's rating for the store in the path. The
// repository performs the range check and the atomic insert-or-overwrite,
// so resubmitting replaces the previous value instead of adding a row.
// A rating.submitted event is published best-effort after the write.
func (h *UserHandler) SubmitRating(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	storeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
	}

	var req submitRatingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Ratings.Upsert(ctx, uid, storeID, req.Rating); err != nil {
		if errors.Is(err, repository.ErrInvalidRating) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Rating must be between 1 and 5"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "submit rating failed"})
	}

	// Best-effort notification event; a broker outage never fails the request.
	go func(userID, storeID uint64, rating int) {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishRatingSubmitted(pubCtx, queue.RatingSubmittedEvent{
			UserID:      userID,
			StoreID:     storeID,
			Rating:      rating,
			SubmittedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}(uid, storeID, req.Rating)

	return c.JSON(http.StatusOK, echo.Map{"message": "Rating submitted/updated successfully"})
}

// ChangePassword lets any authenticated account rotate its password via the
// shared flow.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	return changePassword(c, h.Users, h.Cfg.BcryptCost)
}

// Logout is stateless: tokens carry their own expiry and there is no
// server-side session to destroy, so the handler only confirms that the
// client should discard the token.
func (h *UserHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Logout successful (clear token on frontend)"})
}
