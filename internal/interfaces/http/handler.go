// Package httpinterface exposes the trade lifecycle engine over HTTP.
// Caller identity is taken from the X-Actor-Address header: upstream
// gateways (wallet, relay) are responsible for authenticating it before
// the request reaches the engine.
package httpinterface

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/desamtralized/LocalMoney-sub003/internal/core/application"
	"github.com/desamtralized/LocalMoney-sub003/internal/core/domain"
)

const actorHeader = "X-Actor-Address"

// Handler wires the application services onto a gin router.
type Handler struct {
	tradeSvc    application.TradeService
	operatorSvc application.OperatorService
}

// NewHandler ...
func NewHandler(
	tradeSvc application.TradeService, operatorSvc application.OperatorService,
) *Handler {
	return &Handler{tradeSvc: tradeSvc, operatorSvc: operatorSvc}
}

// RegisterRoutes mounts all the engine endpoints on the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.POST("/trades", h.CreateTrade)
		v1.GET("/trades", h.ListTrades)
		v1.GET("/trades/:id", h.GetTrade)
		v1.POST("/trades/:id/accept", h.AcceptRequest)
		v1.POST("/trades/:id/fund", h.FundEscrow)
		v1.POST("/trades/:id/fiat-deposited", h.MarkFiatDeposited)
		v1.POST("/trades/:id/release", h.ReleaseEscrow)
		v1.POST("/trades/:id/cancel", h.CancelRequest)
		v1.POST("/trades/:id/refund", h.RefundEscrow)
		v1.POST("/trades/:id/dispute", h.InitiateDispute)
		v1.POST("/trades/:id/settle", h.SettleDispute)

		operator := v1.Group("/operator")
		{
			operator.POST("/arbitrators", h.RegisterArbitrator)
			operator.GET("/arbitrators/:currency", h.ListArbitrators)
			operator.PUT("/arbitrators/:currency/:address/active", h.SetArbitratorActive)
			operator.POST("/trades/:id/reassign", h.ReassignArbitrator)
			operator.POST("/pause", h.Pause)
			operator.POST("/resume", h.Resume)
			operator.GET("/config", h.GetConfig)
			operator.PUT("/config/fees", h.UpdateFeeRates)
		}
	}
}

type createTradeRequest struct {
	OfferId      string `json:"offerId" binding:"required"`
	Amount       uint64 `json:"amount" binding:"required"`
	BuyerContact string `json:"buyerContact"`
}

// CreateTrade handles POST /v1/trades.
func (h *Handler) CreateTrade(c *gin.Context) {
	var req createTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	offerId, err := uuid.Parse(req.OfferId)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid offer id"})
		return
	}

	trade, err := h.tradeSvc.CreateTrade(c.Request.Context(), application.CreateTradeRequest{
		OfferId:      offerId,
		Amount:       req.Amount,
		Taker:        c.GetHeader(actorHeader),
		BuyerContact: req.BuyerContact,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"trade": trade})
}

// GetTrade handles GET /v1/trades/:id.
func (h *Handler) GetTrade(c *gin.Context) {
	tradeId, ok := h.tradeId(c)
	if !ok {
		return
	}
	trade, err := h.tradeSvc.GetTrade(c.Request.Context(), tradeId)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

// ListTrades handles GET /v1/trades with an optional trader query param.
func (h *Handler) ListTrades(c *gin.Context) {
	var (
		trades []*domain.Trade
		err    error
	)
	if trader := c.Query("trader"); trader != "" {
		trades, err = h.tradeSvc.ListTradesByTrader(c.Request.Context(), trader)
	} else if stateName := c.Query("state"); stateName != "" {
		var state domain.TradeState
		state, err = domain.ParseTradeState(stateName)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		trades, err = h.tradeSvc.ListTradesByState(c.Request.Context(), state)
	} else {
		trades, err = h.tradeSvc.ListTrades(c.Request.Context())
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades, "count": len(trades)})
}

type acceptRequest struct {
	SellerContact string `json:"sellerContact" binding:"required"`
}

// AcceptRequest handles POST /v1/trades/:id/accept.
func (h *Handler) AcceptRequest(c *gin.Context) {
	tradeId, ok := h.tradeId(c)
	if !ok {
		return
	}
	var req acceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}

	if err := h.tradeSvc.AcceptRequest(
		c.Request.Context(), tradeId, c.GetHeader(actorHeader), req.SellerContact,
	); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

// FundEscrow handles POST /v1/trades/:id/fund.
func (h *Handler) FundEscrow(c *gin.Context) {
	h.simpleTradeOp(c, h.tradeSvc.FundEscrow, "funded")
}

// MarkFiatDeposited handles POST /v1/trades/:id/fiat-deposited.
func (h *Handler) MarkFiatDeposited(c *gin.Context) {
	h.simpleTradeOp(c, h.tradeSvc.MarkFiatDeposited, "fiat_deposited")
}

// ReleaseEscrow handles POST /v1/trades/:id/release.
func (h *Handler) ReleaseEscrow(c *gin.Context) {
	h.simpleTradeOp(c, h.tradeSvc.ReleaseEscrow, "released")
}

// CancelRequest handles POST /v1/trades/:id/cancel.
func (h *Handler) CancelRequest(c *gin.Context) {
	h.simpleTradeOp(c, h.tradeSvc.CancelRequest, "cancelled")
}

// RefundEscrow handles POST /v1/trades/:id/refund.
func (h *Handler) RefundEscrow(c *gin.Context) {
	h.simpleTradeOp(c, h.tradeSvc.RefundEscrow, "refunded")
}

type disputeRequest struct {
	BuyerContact  string `json:"buyerContact" binding:"required"`
	SellerContact string `json:"sellerContact" binding:"required"`
}

// InitiateDispute handles POST /v1/trades/:id/dispute.
func (h *Handler) InitiateDispute(c *gin.Context) {
	tradeId, ok := h.tradeId(c)
	if !ok {
		return
	}
	var req disputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}

	if err := h.tradeSvc.InitiateDispute(
		c.Request.Context(), tradeId, c.GetHeader(actorHeader),
		req.BuyerContact, req.SellerContact,
	); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "disputed"})
}

type settleRequest struct {
	Winner string `json:"winner" binding:"required"`
}

// SettleDispute handles POST /v1/trades/:id/settle.
func (h *Handler) SettleDispute(c *gin.Context) {
	tradeId, ok := h.tradeId(c)
	if !ok {
		return
	}
	var req settleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}

	if err := h.tradeSvc.SettleDispute(
		c.Request.Context(), tradeId, c.GetHeader(actorHeader), req.Winner,
	); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "settled"})
}

type registerArbitratorRequest struct {
	FiatCurrency       string `json:"fiatCurrency" binding:"required"`
	Address            string `json:"address" binding:"required"`
	MaxConcurrentCases uint32 `json:"maxConcurrentCases" binding:"required"`
}

// RegisterArbitrator handles POST /v1/operator/arbitrators.
func (h *Handler) RegisterArbitrator(c *gin.Context) {
	var req registerArbitratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}

	if err := h.operatorSvc.RegisterArbitrator(
		c.Request.Context(), req.FiatCurrency, req.Address, req.MaxConcurrentCases,
	); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}

// ListArbitrators handles GET /v1/operator/arbitrators/:currency.
func (h *Handler) ListArbitrators(c *gin.Context) {
	arbitrators, err := h.operatorSvc.ListArbitrators(
		c.Request.Context(), c.Param("currency"),
	)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"arbitrators": arbitrators})
}

type setArbitratorActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetArbitratorActive handles PUT /v1/operator/arbitrators/:currency/:address/active.
func (h *Handler) SetArbitratorActive(c *gin.Context) {
	var req setArbitratorActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}

	if err := h.operatorSvc.SetArbitratorActive(
		c.Request.Context(), c.Param("currency"), c.Param("address"), *req.Active,
	); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// GetConfig handles GET /v1/operator/config.
func (h *Handler) GetConfig(c *gin.Context) {
	cfg, err := h.operatorSvc.GetConfig(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type updateFeeRatesRequest struct {
	BurnBps       uint64 `json:"burnBps"`
	ChainBps      uint64 `json:"chainBps"`
	WarchestBps   uint64 `json:"warchestBps"`
	ConversionBps uint64 `json:"conversionBps"`
	ArbitratorBps uint64 `json:"arbitratorBps"`
}

// UpdateFeeRates handles PUT /v1/operator/config/fees.
func (h *Handler) UpdateFeeRates(c *gin.Context) {
	var req updateFeeRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}

	if err := h.operatorSvc.UpdateFeeRates(c.Request.Context(), domain.FeeRates{
		BurnBps:       req.BurnBps,
		ChainBps:      req.ChainBps,
		WarchestBps:   req.WarchestBps,
		ConversionBps: req.ConversionBps,
		ArbitratorBps: req.ArbitratorBps,
	}); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// ReassignArbitrator handles POST /v1/operator/trades/:id/reassign.
func (h *Handler) ReassignArbitrator(c *gin.Context) {
	tradeId, ok := h.tradeId(c)
	if !ok {
		return
	}
	if err := h.operatorSvc.ReassignArbitrator(c.Request.Context(), tradeId); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reassigned"})
}

// Pause handles POST /v1/operator/pause.
func (h *Handler) Pause(c *gin.Context) {
	if err := h.operatorSvc.Pause(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "paused"})
}

// Resume handles POST /v1/operator/resume.
func (h *Handler) Resume(c *gin.Context) {
	if err := h.operatorSvc.Resume(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resumed"})
}

func (h *Handler) simpleTradeOp(
	c *gin.Context,
	op func(ctx context.Context, tradeId uint64, actor string) error,
	status string,
) {
	tradeId, ok := h.tradeId(c)
	if !ok {
		return
	}
	if err := op(c.Request.Context(), tradeId, c.GetHeader(actorHeader)); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *Handler) tradeId(c *gin.Context) (uint64, bool) {
	tradeId, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid trade id"})
		return 0, false
	}
	return tradeId, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case errors.Is(err, domain.ErrTradeNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidDisputeWinner):
		status, code = http.StatusForbidden, "unauthorized"
	case errors.Is(err, domain.ErrInvalidTradeState),
		errors.Is(err, domain.ErrTradeExpired),
		errors.Is(err, domain.ErrTradeNotExpired),
		errors.Is(err, domain.ErrDisputeWindowNotOpen),
		errors.Is(err, domain.ErrEscrowAlreadyFunded),
		errors.Is(err, domain.ErrEscrowNotFunded):
		status, code = http.StatusConflict, "invalid_state"
	case errors.Is(err, domain.ErrInvalidAmountRange),
		errors.Is(err, domain.ErrMissingContact),
		errors.Is(err, domain.ErrInvalidFeeConfiguration),
		errors.Is(err, domain.ErrArithmeticOverflow),
		errors.Is(err, application.ErrOfferNotActive),
		errors.Is(err, application.ErrTooManyActiveTrades):
		status, code = http.StatusUnprocessableEntity, "rejected"
	case errors.Is(err, application.ErrSystemPaused):
		status, code = http.StatusServiceUnavailable, "paused"
	case errors.Is(err, application.ErrPriceStale),
		errors.Is(err, application.ErrPriceOutOfRange),
		errors.Is(err, application.ErrServiceUnavailable):
		status, code = http.StatusServiceUnavailable, "upstream_unavailable"
	case errors.Is(err, domain.ErrNoEligibleArbitrators):
		status, code = http.StatusServiceUnavailable, "no_arbitrators"
	}
	c.JSON(status, gin.H{"error": code, "message": err.Error()})
}
