package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/craftledger/internal/model"
)

func (s *server) listMaterials(c *gin.Context) {
	mats, err := s.ledger.ListMaterials(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"materials": mats})
}

func (s *server) getMaterial(c *gin.Context) {
	m, err := s.ledger.GetMaterial(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type materialBody struct {
	Threshold int64 `json:"threshold"`
}

func (s *server) putMaterial(c *gin.Context) {
	var body materialBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c, err)
		return
	}
	m, err := s.ledger.RegisterMaterial(c.Request.Context(), c.Param("name"), body.Threshold)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *server) deleteMaterial(c *gin.Context) {
	n, err := s.ledger.DeleteMaterial(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe_lines_removed": n})
}

func (s *server) listProducts(c *gin.Context) {
	prods, err := s.ledger.ListProducts(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": prods})
}

func (s *server) getProduct(c *gin.Context) {
	p, err := s.ledger.GetProduct(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type productBody struct {
	Price     int64 `json:"price"`
	Threshold int64 `json:"threshold"`
}

func (s *server) putProduct(c *gin.Context) {
	var body productBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c, err)
		return
	}
	p, err := s.ledger.RegisterProduct(c.Request.Context(), c.Param("name"), body.Price, body.Threshold)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *server) deleteProduct(c *gin.Context) {
	n, err := s.ledger.DeleteProduct(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe_lines_removed": n})
}

type priceBody struct {
	Price *int64 `json:"price" binding:"required"`
}

func (s *server) putPrice(c *gin.Context) {
	var body priceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := s.ledger.SetPrice(ctx, c.Param("name"), *body.Price); err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.ledger.GetProduct(ctx, c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type thresholdBody struct {
	Threshold *int64 `json:"threshold" binding:"required"`
}

func (s *server) putThreshold(kind model.ItemKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body thresholdBody
		if err := c.ShouldBindJSON(&body); err != nil {
			s.badRequest(c, err)
			return
		}
		ctx := c.Request.Context()
		if err := s.ledger.SetThreshold(ctx, kind, c.Param("name"), *body.Threshold); err != nil {
			s.fail(c, err)
			return
		}
		level, err := s.ledger.GetStock(ctx, kind, c.Param("name"))
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, level)
	}
}

func (s *server) getRecipe(c *gin.Context) {
	lines, err := s.ledger.ListRecipe(c.Request.Context(), c.Param("product"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": c.Param("product"), "lines": lines})
}

type recipeLineBody struct {
	Quantity int64 `json:"quantity"`
}

func (s *server) putRecipeLine(c *gin.Context) {
	var body recipeLineBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c, err)
		return
	}
	line, err := s.ledger.SetRecipeLine(c.Request.Context(), c.Param("product"), c.Param("material"), body.Quantity)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (s *server) deleteRecipeLine(c *gin.Context) {
	if err := s.ledger.RemoveRecipeLine(c.Request.Context(), c.Param("product"), c.Param("material")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
