package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SponsorAdmin is the management view of the paymaster: funding and
// sponsorship accounting.
type SponsorAdmin interface {
	Deposit(amount uint64)
	AvailableBalance() uint64
	Stats() (totalSponsored uint64, grantCount uint64)
}

type PaymasterHandler struct {
	sponsor SponsorAdmin
}

type depositRequest struct {
	Amount uint64 `json:"amount"`
}

type paymasterStatusResponse struct {
	AvailableBalance uint64 `json:"availableBalance"`
	TotalSponsored   uint64 `json:"totalSponsored"`
	GrantCount       uint64 `json:"grantCount"`
}

func NewPaymasterHandler(sponsor SponsorAdmin) *PaymasterHandler {
	return &PaymasterHandler{sponsor: sponsor}
}

func (h *PaymasterHandler) Register(router *gin.Engine) {
	group := router.Group("/api/paymaster")
	group.GET("", h.status)
	group.POST("/deposit", h.deposit)
}

func (h *PaymasterHandler) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.statusResponse())
}

func (h *PaymasterHandler) deposit(c *gin.Context) {
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deposit amount must be positive"})
		return
	}

	h.sponsor.Deposit(req.Amount)
	c.JSON(http.StatusOK, h.statusResponse())
}

func (h *PaymasterHandler) statusResponse() paymasterStatusResponse {
	totalSponsored, grantCount := h.sponsor.Stats()
	return paymasterStatusResponse{
		AvailableBalance: h.sponsor.AvailableBalance(),
		TotalSponsored:   totalSponsored,
		GrantCount:       grantCount,
	}
}
