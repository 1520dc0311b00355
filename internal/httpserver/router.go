package httpserver

import (
	"context"
	"slices"
	"time"

	"detailing-booking/internal/domain"
	"detailing-booking/internal/schedule"
	customersvc "detailing-booking/internal/service/customer"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

type bookingService interface {
	Create(ctx context.Context, sub domain.BookingSubmission) (*domain.Booking, error)
	Get(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	Complete(ctx context.Context, id string) (*domain.Booking, error)
	Schedule(ctx context.Context) ([]schedule.Day, error)
}

type customerService interface {
	Get(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	Create(ctx context.Context, in customersvc.Input) (*domain.Customer, error)
	Update(ctx context.Context, id string, in customersvc.Input) (*domain.Customer, error)
}

// Deps are the services the handlers call.
type Deps struct {
	BookingSvc  bookingService
	CustomerSvc customerService
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps, allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		requestID(),
		gin.LoggerWithWriter(zap.NewStdLog(logger).Writer()),
		gin.Recovery(),
		cors.New(corsConfig(allowedOrigins)),
	)

	h := &handlers{logger: logger, bookings: deps.BookingSvc, customers: deps.CustomerSvc}

	api := router.Group("/api")
	api.GET("/packages", listPackages)
	api.POST("/bookings", h.createBooking)

	admin := api.Group("/admin")
	admin.GET("/customers", h.listCustomers)
	admin.POST("/customers", h.createCustomer)
	admin.GET("/customers/:id", h.getCustomer)
	admin.PUT("/customers/:id", h.updateCustomer)
	admin.GET("/bookings", h.listBookings)
	admin.GET("/bookings/:id", h.getBooking)
	admin.PUT("/bookings/:id/complete", h.completeBooking)
	admin.GET("/schedule", h.schedule)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// requestID tags every request with an id, reusing the caller's when sent.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
