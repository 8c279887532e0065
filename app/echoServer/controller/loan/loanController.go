package loan

import (
	"log/slog"
	"net/http"
	"strconv"

	loansvc "librarydesk/service/loan"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc loansvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/loans — issue a book to a member
func (h *Controller) Issue(c echo.Context) error {
	var req IssueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payload"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	l, err := h.Svc.Issue(c.Request().Context(), req.BookID, req.MemberID)
	if err != nil {
		switch loansvc.Code(err) {
		case loansvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case loansvc.ErrMemberNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "member not found"})
		case loansvc.ErrMemberInactive:
			return c.JSON(http.StatusConflict, echo.Map{"message": "member is not active"})
		case loansvc.ErrNotAvailable:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book not available"})
		default:
			h.Log.Error("loan issue error", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, l)
}

// POST /v1/loans/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	l, err := h.Svc.Return(c.Request().Context(), id)
	if err != nil {
		switch loansvc.Code(err) {
		case loansvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "loan not found"})
		case loansvc.ErrAlreadyReturned:
			return c.JSON(http.StatusConflict, echo.Map{"message": "loan already returned"})
		default:
			h.Log.Error("loan return error", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, l)
}

// GET /v1/loans
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.ListAll(c.Request().Context())
	if err != nil {
		h.Log.Error("loan list error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
