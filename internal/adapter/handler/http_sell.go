package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/rl1809/smart-pos/internal/core/domain"
	"github.com/rl1809/smart-pos/internal/core/service"
)

type restockRequest struct {
	Add int `json:"add"`
}

type scanRequest struct {
	Barcode string `json:"barcode"`
}

type lineQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Lines []domain.CartLine `json:"lines"`
	Total decimal.Decimal   `json:"total"`
}

func (h *HTTPHandler) ListProducts(c *gin.Context) {
	products, err := h.ledger.ListProducts(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// AddProduct answers 200 with the existing product when the barcode is
// already stocked, so the caller can offer a restock.
func (h *HTTPHandler) AddProduct(c *gin.Context) {
	var form service.AddProductForm
	if !h.bind(c, &form) {
		return
	}

	out, err := h.pages.AddProduct(c.Request.Context(), form)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if out.Existing != nil {
		c.JSON(http.StatusOK, out)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *HTTPHandler) UpdateProduct(c *gin.Context) {
	var patch service.ProductPatch
	if !h.bind(c, &patch) {
		return
	}

	product, err := h.pages.UpdateProduct(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *HTTPHandler) DeleteProduct(c *gin.Context) {
	if err := h.ledger.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) Restock(c *gin.Context) {
	var req restockRequest
	if !h.bind(c, &req) {
		return
	}

	product, err := h.pages.Restock(c.Request.Context(), c.Param("id"), req.Add)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *HTTPHandler) ListSales(c *gin.Context) {
	sales, err := h.ledger.ListSales(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

func (h *HTTPHandler) StartVisit(c *gin.Context) {
	cart := h.till.StartVisit()
	c.JSON(http.StatusOK, newCartResponse(cart))
}

func (h *HTTPHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, newCartResponse(h.till.Cart()))
}

func (h *HTTPHandler) Scan(c *gin.Context) {
	var req scanRequest
	if !h.bind(c, &req) {
		return
	}

	cart := h.till.Cart()
	res, err := cart.Scan(c.Request.Context(), req.Barcode)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scan": res, "cart": newCartResponse(cart)})
}

func (h *HTTPHandler) SetLineQuantity(c *gin.Context) {
	index, ok := h.lineIndex(c)
	if !ok {
		return
	}
	var req lineQuantityRequest
	if !h.bind(c, &req) {
		return
	}

	cart := h.till.Cart()
	if err := cart.SetLineQuantity(index, req.Quantity); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(cart))
}

func (h *HTTPHandler) RemoveLine(c *gin.Context) {
	index, ok := h.lineIndex(c)
	if !ok {
		return
	}

	cart := h.till.Cart()
	if err := cart.RemoveLine(index); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartResponse(cart))
}

func (h *HTTPHandler) ClearCart(c *gin.Context) {
	cart := h.till.Cart()
	cart.Clear()
	c.JSON(http.StatusOK, newCartResponse(cart))
}

func (h *HTTPHandler) Checkout(c *gin.Context) {
	receipt, err := h.till.Cart().Checkout(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

func (h *HTTPHandler) lineIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "line index must be a number"})
		return 0, false
	}
	return index, true
}

func newCartResponse(cart *service.Cart) cartResponse {
	return cartResponse{Lines: cart.Lines(), Total: cart.Total()}
}
