package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roach88/craftledger/internal/ledger"
	"github.com/roach88/craftledger/internal/model"
)

type craftBody struct {
	Actor    string `json:"actor" binding:"required"`
	Product  string `json:"product" binding:"required"`
	Quantity int64  `json:"quantity"`
}

func (s *server) craft(c *gin.Context) {
	var body craftBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c, err)
		return
	}

	res, err := s.ledger.Craft(c.Request.Context(), ledger.CraftRequest{
		Actor:    body.Actor,
		Product:  body.Product,
		Quantity: body.Quantity,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type sellBody struct {
	Actor    string `json:"actor" binding:"required"`
	Product  string `json:"product" binding:"required"`
	Quantity int64  `json:"quantity"`

	// UnitPrice defaults to the catalog price, resolved before the sale.
	UnitPrice *int64 `json:"unit_price"`
}

func (s *server) sell(c *gin.Context) {
	var body sellBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	req := ledger.SellRequest{
		Actor:    body.Actor,
		Product:  body.Product,
		Quantity: body.Quantity,
	}
	if body.UnitPrice != nil {
		req.UnitPrice = *body.UnitPrice
	} else {
		p, err := s.ledger.GetProduct(ctx, body.Product)
		if err != nil {
			s.fail(c, err)
			return
		}
		req.UnitPrice = p.Price
	}

	res, err := s.ledger.Sell(ctx, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type adjustBody struct {
	Actor string `json:"actor" binding:"required"`
	Kind  string `json:"kind" binding:"required"`
	Item  string `json:"item" binding:"required"`
	Delta int64  `json:"delta"`
}

func (s *server) adjustStock(c *gin.Context) {
	var body adjustBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c, err)
		return
	}
	kind, err := model.ParseItemKind(body.Kind)
	if err != nil {
		s.badRequest(c, err)
		return
	}

	res, err := s.ledger.AdjustStock(c.Request.Context(), ledger.StockAdjustment{
		Actor: body.Actor,
		Kind:  kind,
		Item:  body.Item,
		Delta: body.Delta,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type actorBody struct {
	Actor string `json:"actor" binding:"required"`
}

func (s *server) clockIn(c *gin.Context) {
	var body actorBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c, err)
		return
	}
	ws, err := s.ledger.ClockIn(c.Request.Context(), body.Actor)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (s *server) clockOut(c *gin.Context) {
	var body actorBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c, err)
		return
	}
	ws, err := s.ledger.ClockOut(c.Request.Context(), body.Actor)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (s *server) attendance(c *gin.Context) {
	ctx := c.Request.Context()
	worked, err := s.ledger.Attendance(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	onDuty, err := s.ledger.OpenSessions(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"worked": worked, "on_duty": onDuty})
}

func (s *server) leaderboard(c *gin.Context) {
	board, err := s.ledger.Leaderboard(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": board})
}

type resetBody struct {
	Actor string `json:"actor" binding:"required"`

	// Target is the actor to reset; empty resets everyone.
	Target string `json:"target"`
}

func (s *server) resetSales(c *gin.Context) {
	var body resetBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c, err)
		return
	}

	var (
		res ledger.ResetResult
		err error
	)
	if body.Target == "" {
		res, err = s.ledger.ResetAllSales(c.Request.Context(), body.Actor)
	} else {
		res, err = s.ledger.ResetSales(c.Request.Context(), body.Actor, body.Target)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *server) audit(c *gin.Context) {
	limit := s.auditPage
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.badRequest(c, fmt.Errorf("limit must be a positive integer, got %q", raw))
			return
		}
		limit = n
	}

	recs, err := s.ledger.RecentAudit(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

type roleBody struct {
	Actor   string `json:"actor" binding:"required"`
	Target  string `json:"target" binding:"required"`
	Role    string `json:"role" binding:"required"`
	Granted bool   `json:"granted"`
}

func (s *server) roleChange(c *gin.Context) {
	var body roleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c, err)
		return
	}
	id, err := s.ledger.RecordRoleChange(c.Request.Context(), body.Actor, body.Target, body.Role, body.Granted)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request_id": id})
}
