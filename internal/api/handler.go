package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"pos-service/internal/service"
	"pos-service/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const apiVersion = "1.0.0"

// Pinger reports whether the database answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the services the handlers call into
type Services struct {
	Orders    *service.OrderService
	Payments  *service.PaymentService
	Menu      *service.MenuService
	Customers *service.CustomerService
	Reports   *service.ReportService
}

// Handler contains HTTP handlers
type Handler struct {
	orders         *service.OrderService
	payments       *service.PaymentService
	menu           *service.MenuService
	customers      *service.CustomerService
	reports        *service.ReportService
	db             Pinger
	allowedOrigins []string
	logger         *zap.Logger
}

// NewHandler creates a new HTTP handler. With no allowed origins CORS headers are not sent.
func NewHandler(svc Services, db Pinger, allowedOrigins []string) *Handler {
	return &Handler{
		orders:         svc.Orders,
		payments:       svc.Payments,
		menu:           svc.Menu,
		customers:      svc.Customers,
		reports:        svc.Reports,
		db:             db,
		allowedOrigins: allowedOrigins,
		logger:         util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	if len(h.allowedOrigins) > 0 {
		router.Use(corsMiddleware(h.allowedOrigins))
	}
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())
	router.RedirectTrailingSlash = false

	router.GET("/", h.home)
	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/test-connection", h.testConnection)

	menu := api.Group("/menu")
	{
		menu.GET("", h.listMenu)
		menu.POST("", h.createMenuItem)
		menu.GET("/cuisines", h.listCuisines)
		menu.GET("/categories", h.listCategories)
		menu.GET("/:id", h.getMenuItem)
		menu.PUT("/:id", h.updateMenuItem)
		menu.PATCH("/:id/availability", h.setAvailability)
		menu.DELETE("/:id", h.deleteMenuItem)
	}

	customers := api.Group("/customers")
	{
		customers.GET("", h.listCustomers)
		customers.POST("", h.createCustomer)
		customers.GET("/phone/:phone", h.getCustomerByPhone)
		customers.GET("/:id", h.getCustomer)
		customers.PUT("/:id", h.updateCustomer)
		customers.DELETE("/:id", h.deleteCustomer)
		customers.GET("/:id/orders", h.customerOrders)
		customers.GET("/:id/stats", h.customerStats)
	}

	orders := api.Group("/orders")
	{
		orders.GET("", h.listOrders)
		orders.POST("", h.createOrder)
		orders.GET("/active", h.activeOrders)
		orders.GET("/dine-in", h.dineInOrders)
		orders.GET("/takeaway", h.takeawayOrders)
		orders.GET("/:id", h.getOrder)
		orders.DELETE("/:id", h.cancelOrder)
		orders.PATCH("/:id/status", h.updateOrderStatus)
		orders.PATCH("/:id/items/:item_id/status", h.updateOrderItemStatus)
	}

	payments := api.Group("/payments")
	{
		payments.GET("", h.listPayments)
		payments.POST("", h.settlePayment)
		payments.GET("/summary/today", h.todaySummary)
		payments.GET("/order/:order_id", h.getPaymentByOrder)
		payments.GET("/bill/:order_id", h.getBill)
		payments.GET("/:id", h.getPayment)
	}

	api.GET("/tables", h.listTables)

	reports := api.Group("/reports")
	{
		reports.GET("/daily-sales", h.dailySales)
		reports.GET("/popular-items", h.popularItems)
		reports.GET("/revenue-by-cuisine", h.revenueByCuisine)
		reports.GET("/peak-hours", h.peakHours)
		reports.GET("/payment-methods", h.paymentMethods)
		reports.GET("/weekly-comparison", h.weeklyComparison)
		reports.GET("/order-status", h.orderStatus)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  statusError,
			"message": "Endpoint not found",
		})
	})
}

// home answers with the service banner
func (h *Handler) home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  statusSuccess,
		"message": "Restaurant Management System API",
		"version": apiVersion,
	})
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready only while the database answers
func (h *Handler) readinessCheck(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"time":   time.Now().Unix(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// testConnection pings the database
func (h *Handler) testConnection(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.logger.Error("Database connection test failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  statusError,
			"message": "Database connection failed",
		})
		return
	}
	respond(c, http.StatusOK, "Database connected successfully", nil)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
