package reservation

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	reservationsvc "librarydesk/service/reservation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc reservationsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/reservations
func (h *Controller) Create(c echo.Context) error {
	var req ReserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payload"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	res, err := h.Svc.Reserve(c.Request().Context(), req.BookID, req.MemberID)
	if err != nil {
		switch reservationsvc.Code(err) {
		case reservationsvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case reservationsvc.ErrMemberNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "member not found"})
		case reservationsvc.ErrMemberInactive:
			return c.JSON(http.StatusConflict, echo.Map{"message": "member is not active"})
		case reservationsvc.ErrDuplicate:
			return c.JSON(http.StatusConflict, echo.Map{"message": "member already has a pending reservation for this book"})
		default:
			h.Log.Error("reservation create error", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, res)
}

// POST /v1/reservations/:id/cancel
func (h *Controller) Cancel(c echo.Context) error {
	return h.transition(c, h.Svc.Cancel, "cancelled")
}

// POST /v1/reservations/:id/fulfill
func (h *Controller) Fulfill(c echo.Context) error {
	return h.transition(c, h.Svc.Fulfill, "fulfilled")
}

func (h *Controller) transition(c echo.Context, fn func(context.Context, int64) error, done string) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	if err := fn(c.Request().Context(), id); err != nil {
		switch reservationsvc.Code(err) {
		case reservationsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "reservation not found"})
		case reservationsvc.ErrNotPending:
			return c.JSON(http.StatusConflict, echo.Map{"message": "reservation is no longer pending"})
		default:
			h.Log.Error("reservation transition error", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": done})
}

// GET /v1/reservations
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.ListAll(c.Request().Context())
	if err != nil {
		h.Log.Error("reservation list error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
