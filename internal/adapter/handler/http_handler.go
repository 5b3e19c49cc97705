package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/smart-pos/internal/core/domain"
	"github.com/rl1809/smart-pos/internal/core/service"
	"github.com/rl1809/smart-pos/internal/port"
)

const userKey = "user"

type HTTPHandler struct {
	ledger  *service.Ledger
	session *service.SessionManager
	pages   *service.Pages
	till    *service.Till
	store   port.CollectionStore
	log     *logrus.Logger
}

type ErrorResponse struct {
	Error    string      `json:"error"`
	Redirect domain.Page `json:"redirect,omitempty"`
}

func NewHTTPHandler(
	ledger *service.Ledger,
	session *service.SessionManager,
	pages *service.Pages,
	till *service.Till,
	store port.CollectionStore,
	logger *logrus.Logger,
) *HTTPHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &HTTPHandler{
		ledger:  ledger,
		session: session,
		pages:   pages,
		till:    till,
		store:   store,
		log:     logger,
	}
}

// Router builds the gin engine with every route registered.
func (h *HTTPHandler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.GET("/health", h.HealthCheck)

	auth := r.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.GET("/me", h.Me)

	r.GET("/pages/:page", h.GuardPage)

	api := r.Group("/", h.requireSession())
	api.GET("/home/stats", h.HomeStats)
	api.GET("/dashboard", h.Dashboard)
	api.GET("/products", h.ListProducts)
	api.POST("/products", h.AddProduct)
	api.PATCH("/products/:id", h.UpdateProduct)
	api.DELETE("/products/:id", h.DeleteProduct)
	api.POST("/products/:id/restock", h.Restock)
	api.GET("/sales", h.ListSales)

	sell := api.Group("/sell")
	sell.POST("/visit", h.StartVisit)
	sell.GET("/cart", h.GetCart)
	sell.POST("/scan", h.Scan)
	sell.PUT("/cart/lines/:index", h.SetLineQuantity)
	sell.DELETE("/cart/lines/:index", h.RemoveLine)
	sell.DELETE("/cart", h.ClearCart)
	sell.POST("/checkout", h.Checkout)

	return r
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.log.Warnf("health check: store unreachable: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *HTTPHandler) Register(c *gin.Context) {
	var req registerRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.session.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "redirect": domain.PageHome})
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bind(c, &req) {
		return
	}

	user, err := h.session.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "redirect": domain.PageHome})
}

func (h *HTTPHandler) Logout(c *gin.Context) {
	if err := h.session.Logout(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": domain.PageLogin})
}

func (h *HTTPHandler) Me(c *gin.Context) {
	user, err := h.session.CurrentUser(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *HTTPHandler) GuardPage(c *gin.Context) {
	decision, err := h.session.GuardPage(c.Request.Context(), c.Param("page"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, decision)
}

func (h *HTTPHandler) HomeStats(c *gin.Context) {
	stats, err := h.pages.HomeStats(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *HTTPHandler) Dashboard(c *gin.Context) {
	rows, err := h.pages.Dashboard(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": rows})
}

func (h *HTTPHandler) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.session.CurrentUser(c.Request.Context())
		if errors.Is(err, service.ErrNoSession) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error:    err.Error(),
				Redirect: domain.PageLogin,
			})
			return
		}
		if err != nil {
			h.writeError(c, err)
			c.Abort()
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func (h *HTTPHandler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := h.log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Debug("request served")
		}
	}
}

func (h *HTTPHandler) bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	var checkoutErr *service.CheckoutError
	if errors.As(err, &checkoutErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error": service.ErrCheckoutFailed.Error(),
			"lines": checkoutErr.Lines,
		})
		return
	}

	status := http.StatusInternalServerError
	message := "internal error"
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrLineIndex):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrInsufficientStock), errors.Is(err, service.ErrDuplicateEmail):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrNoSession):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrEmptyCart):
		status, message = http.StatusBadRequest, err.Error()
	default:
		h.log.WithField("path", c.FullPath()).Errorf("handler error: %v", err)
	}
	c.JSON(status, ErrorResponse{Error: message})
}
