package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Skotchmaster/bakery/internal/models"
	"github.com/Skotchmaster/bakery/pkg/apperr"
	pkgdb "github.com/Skotchmaster/bakery/pkg/db"
	middleware "github.com/Skotchmaster/bakery/pkg/middleware/auth"
	"github.com/Skotchmaster/bakery/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/bakery/pkg/middleware/logging"
	"github.com/Skotchmaster/bakery/pkg/validate"
)

type Deps struct {
	DB   *gorm.DB
	Auth *middleware.Middleware

	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	ReviewHandler  *ReviewHTTP
	UserHandler    *UserHTTP
}

// New builds the echo instance with the shared middleware stack.
func New(logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(loggingmw.RequestLogger(logger), echomw.Recover())
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := pkgdb.Ping(c.Request().Context(), d.DB); err != nil {
			return apperr.ErrServer.Msg("database unavailable").Wrap(err)
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	customer := middleware.RequireRole(string(models.RoleCustomer))
	driver := middleware.RequireRole(string(models.RoleDriver))
	admin := middleware.RequireRole(string(models.RoleAdmin))

	api := e.Group("/api", csrf.Middleware(csrf.Config{
		SessionCookie: middleware.CookieName,
		Secure:        d.Auth.CookieSecure,
		SkipPaths:     []string{"/api/auth/request-otp", "/api/auth/login-otp"},
	}))

	auth := api.Group("/auth")
	auth.POST("/request-otp", d.AuthHandler.RequestOTP)
	auth.POST("/login-otp", d.AuthHandler.LoginOTP)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/me", d.AuthHandler.Me, d.Auth.RequireAuth)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.List)
	products.GET("/:id", d.CatalogHandler.Get)
	productsAdmin := products.Group("", d.Auth.RequireAuth, admin)
	productsAdmin.POST("", d.CatalogHandler.Create)
	productsAdmin.PUT("/:id", d.CatalogHandler.Update)
	productsAdmin.DELETE("/:id", d.CatalogHandler.Delete)

	cart := api.Group("/cart", d.Auth.RequireAuth)
	cart.GET("", d.CartHandler.Get)
	cart.POST("", d.CartHandler.Add)
	cart.PUT("/:productId", d.CartHandler.Update)
	cart.DELETE("/:productId", d.CartHandler.Remove)
	cart.DELETE("", d.CartHandler.Clear)

	orders := api.Group("/orders", d.Auth.RequireAuth)
	orders.POST("", d.OrderHandler.Place, customer)
	orders.GET("/my", d.OrderHandler.Mine, customer)
	orders.GET("/driver", d.OrderHandler.Assigned, driver)
	orders.GET("/stream", d.OrderHandler.Stream)
	orders.GET("", d.OrderHandler.All, admin)
	orders.GET("/:id", d.OrderHandler.Get)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateStatus, admin)
	orders.PATCH("/:id/assign-driver", d.OrderHandler.AssignDriver, admin)
	orders.PATCH("/:id/delivery-status", d.OrderHandler.UpdateDeliveryStatus, driver)

	reviews := api.Group("/reviews")
	reviews.GET("/product/:productId", d.ReviewHandler.ByProduct)
	reviews.GET("/rating/:productId", d.ReviewHandler.Rating)
	reviews.POST("", d.ReviewHandler.Create, d.Auth.RequireAuth)
	reviews.GET("/can-review/:productId", d.ReviewHandler.CanReview, d.Auth.RequireAuth)
	reviews.GET("/my-reviews", d.ReviewHandler.Mine, d.Auth.RequireAuth)

	users := api.Group("/users", d.Auth.RequireAuth, admin)
	users.GET("", d.UserHandler.List)
	users.GET("/drivers", d.UserHandler.Drivers)
	users.POST("/drivers", d.UserHandler.PromoteDriver)
	users.DELETE("/drivers/:id", d.UserHandler.DeleteDriver)
}
