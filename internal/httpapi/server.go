// Package httpapi exposes the ledger over a JSON HTTP API for the chat
// front end.
//
// Every ledger *Error is rendered as
//
//	{"error": {"code": "INSUFFICIENT_MATERIAL", "message": "..."}}
//
// with a status derived from the code (see StatusFor). Request bodies that
// fail to bind get code INVALID_REQUEST and status 400.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/craftledger/internal/ledger"
	"github.com/roach88/craftledger/internal/model"
)

// CodeInvalidRequest is returned when a request body or query can't be parsed.
const CodeInvalidRequest = "INVALID_REQUEST"

type server struct {
	ledger    *ledger.Ledger
	logger    *slog.Logger
	gatherer  prometheus.Gatherer
	auditPage int
}

// Option configures the router.
type Option func(*server)

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *server) {
		s.logger = logger
	}
}

// WithGatherer serves the gatherer's metrics on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *server) {
		s.gatherer = g
	}
}

// WithAuditPageSize sets the default limit of GET /v1/audit.
func WithAuditPageSize(n int) Option {
	return func(s *server) {
		if n > 0 {
			s.auditPage = n
		}
	}
}

// NewRouter builds the gin engine serving every route.
func NewRouter(l *ledger.Ledger, opts ...Option) *gin.Engine {
	s := &server{
		ledger:    l,
		logger:    slog.Default(),
		auditPage: ledger.DefaultAuditLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.GET("/healthz", s.health)
	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1")
	{
		v1.POST("/craft", s.craft)
		v1.POST("/sell", s.sell)
		v1.POST("/stock/adjust", s.adjustStock)

		v1.POST("/clock/in", s.clockIn)
		v1.POST("/clock/out", s.clockOut)
		v1.GET("/attendance", s.attendance)

		v1.GET("/leaderboard", s.leaderboard)
		v1.POST("/leaderboard/reset", s.resetSales)

		v1.GET("/audit", s.audit)
		v1.POST("/roles", s.roleChange)

		v1.GET("/materials", s.listMaterials)
		v1.GET("/materials/:name", s.getMaterial)
		v1.PUT("/materials/:name", s.putMaterial)
		v1.DELETE("/materials/:name", s.deleteMaterial)
		v1.PUT("/materials/:name/threshold", s.putThreshold(model.KindMaterial))

		v1.GET("/products", s.listProducts)
		v1.GET("/products/:name", s.getProduct)
		v1.PUT("/products/:name", s.putProduct)
		v1.DELETE("/products/:name", s.deleteProduct)
		v1.PUT("/products/:name/price", s.putPrice)
		v1.PUT("/products/:name/threshold", s.putThreshold(model.KindProduct))

		v1.GET("/recipes/:product", s.getRecipe)
		v1.PUT("/recipes/:product/:material", s.putRecipeLine)
		v1.DELETE("/recipes/:product/:material", s.deleteRecipeLine)
	}

	return r
}

func (s *server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *server) health(c *gin.Context) {
	if err := s.ledger.Ping(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// StatusFor maps a ledger error code to an HTTP status.
func StatusFor(code ledger.Code) int {
	switch code {
	case ledger.CodeUnknownItem:
		return http.StatusNotFound
	case ledger.CodeInvalidQuantity, ledger.CodeInvalidPrice, ledger.CodeInvalidName:
		return http.StatusBadRequest
	case ledger.CodeInsufficientMaterial, ledger.CodeInsufficientStock,
		ledger.CodeAlreadyClockedIn, ledger.CodeNotClockedIn:
		return http.StatusConflict
	case ledger.CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Item      string `json:"item,omitempty"`
	Needed    int64  `json:"needed,omitempty"`
	Available *int64 `json:"available,omitempty"`
}

// fail writes err as the standard error envelope.
func (s *server) fail(c *gin.Context, err error) {
	var le *ledger.Error
	if !errors.As(err, &le) {
		s.logger.Error("unexpected error", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errorBody{Code: "INTERNAL", Message: err.Error()}})
		return
	}

	body := errorBody{Code: string(le.Code), Message: le.Message, Item: le.Item}
	if le.Code == ledger.CodeInsufficientMaterial || le.Code == ledger.CodeInsufficientStock {
		available := le.Available
		body.Needed = le.Needed
		body.Available = &available
	}
	status := StatusFor(le.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("ledger unavailable", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": body})
}

func (s *server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": errorBody{Code: CodeInvalidRequest, Message: err.Error()}})
}
