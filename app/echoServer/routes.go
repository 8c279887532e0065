package echoServer

import (
	"net/http"

	"librarydesk/app/echoServer/controller/auth"
	"librarydesk/app/echoServer/controller/book"
	"librarydesk/app/echoServer/controller/loan"
	"librarydesk/app/echoServer/controller/member"
	"librarydesk/app/echoServer/controller/reservation"
	"librarydesk/app/echoServer/jwtx"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth        *auth.Controller
	Book        *book.Controller
	Member      *member.Controller
	Loan        *loan.Controller
	Reservation *reservation.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)

	// Everything else requires a logged-in librarian.
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	authed.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			uid, err := jwtx.UserIDFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", uid)
			return next(ctx)
		}
	})

	// Catalog
	authed.GET("/books", c.Book.List)
	authed.GET("/books/:id", c.Book.Detail)
	authed.POST("/books", c.Book.Create)
	authed.PUT("/books/:id", c.Book.Update)
	authed.DELETE("/books/:id", c.Book.Delete)

	// Membership
	authed.GET("/members", c.Member.List)
	authed.GET("/members/:id", c.Member.Detail)
	authed.POST("/members", c.Member.Create)
	authed.PUT("/members/:id", c.Member.Update)
	authed.DELETE("/members/:id", c.Member.Delete)

	// Circulation
	authed.GET("/loans", c.Loan.List)
	authed.POST("/loans", c.Loan.Issue)
	authed.POST("/loans/:id/return", c.Loan.Return)

	// Reservations
	authed.GET("/reservations", c.Reservation.List)
	authed.POST("/reservations", c.Reservation.Create)
	authed.POST("/reservations/:id/cancel", c.Reservation.Cancel)
	authed.POST("/reservations/:id/fulfill", c.Reservation.Fulfill)
}
