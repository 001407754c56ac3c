package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/flippulse/internal/domain/dto"
	"github.com/guttosm/flippulse/internal/middleware"
	"github.com/guttosm/flippulse/internal/ranking"
	"github.com/guttosm/flippulse/internal/scoring"
	"github.com/guttosm/flippulse/internal/service"
)

// Handler provides HTTP handlers for the flip log endpoints.
//
// Responsibilities:
//   - Validate query parameters and request bodies
//   - Delegate to the flip service
//   - Translate service results into response DTOs
//   - Map service errors onto HTTP status codes
type Handler struct {
	svc service.FlipService
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - svc (service.FlipService): business logic over the flip log.
//
// Returns:
//   - *Handler: A handler ready to be registered with the router.
func NewHandler(svc service.FlipService) *Handler {
	return &Handler{svc: svc}
}

// fail writes the response for a service error. Unknown errors are handed
// to middleware.ErrorHandler.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound), errors.Is(err, service.ErrFlipNotFound):
		middleware.AbortWithError(c, http.StatusNotFound, "not found", err)
	case errors.Is(err, service.ErrInvalidFlip):
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid flip", err)
	case errors.Is(err, service.ErrInsufficientData):
		middleware.AbortWithError(c, http.StatusUnprocessableEntity, "not enough flips recorded", err)
	default:
		_ = c.Error(err)
		c.Abort()
	}
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, errors.New(key + " must be a non-negative integer")
	}
	return v, nil
}

func activeID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		middleware.AbortWithError(c, http.StatusBadRequest, "id must be a non-negative integer", err)
		return 0, false
	}
	return id, true
}

// GetStats handles GET /api/v1/stats.
//
// GetStats godoc
// @Summary      Per-item statistics
// @Description  Ranks every traded item by ROI, profit or recommendation score
// @Tags         stats
// @Produce      json
// @Param        sort   query     string  false  "roi, profit or recommendation" example(profit)
// @Param        limit  query     int     false  "Keep only the top N items" example(20)
// @Success      200    {object}  dto.StatsResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      500    {object}  dto.ErrorResponse
// @Router       /api/v1/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	metric, err := ranking.ParseMetric(c.Query("sort"))
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid sort", err)
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid limit", err)
		return
	}

	report, err := h.svc.Stats(c.Request.Context(), metric, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatsResponse(report))
}

// GetRecommendations handles GET /api/v1/recommendations.
//
// GetRecommendations godoc
// @Summary      Flip recommendations
// @Description  Ranked items to flip next plus a few random extras from below the cut-off
// @Tags         recommendations
// @Produce      json
// @Param        count      query     int      false  "Maximum recommendations" example(35)
// @Param        threshold  query     number   false  "Minimum rolling average profit" example(1000)
// @Param        algorithm  query     int      false  "Scoring algorithm, 1 or 2" example(2)
// @Param        blacklist  query     bool     false  "Apply the item blacklist" example(true)
// @Param        random     query     int      false  "Random extras to draw" example(5)
// @Success      200        {object}  dto.RecommendationResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Failure      422        {object}  dto.ErrorResponse
// @Failure      500        {object}  dto.ErrorResponse
// @Router       /api/v1/recommendations [get]
func (h *Handler) GetRecommendations(c *gin.Context) {
	var req service.RecommendRequest
	var err error

	if req.Count, err = queryInt(c, "count", 0); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid count", err)
		return
	}
	if s := c.Query("threshold"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, "invalid threshold", err)
			return
		}
		req.Threshold = &v
	}
	if s := c.Query("algorithm"); s != "" {
		v, err := strconv.Atoi(s)
		if err == nil {
			req.Strategy, err = scoring.ParseStrategy(v)
		}
		if err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, "invalid algorithm", err)
			return
		}
	}
	if s := c.Query("blacklist"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, "invalid blacklist flag", err)
			return
		}
		req.UseBlacklist = &v
	}
	if s := c.Query("random"); s != "" {
		v, err := queryInt(c, "random", 0)
		if err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, "invalid random", err)
			return
		}
		req.RandomCount = &v
	}

	report, err := h.svc.Recommend(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecommendationResponse(report))
}

// GetItem handles GET /api/v1/items/{name}.
//
// GetItem godoc
// @Summary      Item detail
// @Description  Statistics, price ranges and every logged flip of one item
// @Tags         items
// @Produce      json
// @Param        name  path      string  true  "Item name" example(Yew logs)
// @Success      200   {object}  dto.ItemResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/v1/items/{name} [get]
func (h *Handler) GetItem(c *gin.Context) {
	report, err := h.svc.Item(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(report))
}

// CreateFlip handles POST /api/v1/flips.
//
// CreateFlip godoc
// @Summary      Record a flip
// @Description  Adds a new active flip to the log
// @Tags         flips
// @Accept       json
// @Produce      json
// @Param        flip  body      dto.CreateFlipRequest  true  "Flip to record"
// @Success      201   {object}  dto.ActiveFlipResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/v1/flips [post]
func (h *Handler) CreateFlip(c *gin.Context) {
	var req dto.CreateFlipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	added, err := h.svc.Add(c.Request.Context(), req.ToFlip())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toActiveFlipResponse(*added))
}

// ListActiveFlips handles GET /api/v1/flips/active.
//
// ListActiveFlips godoc
// @Summary      Active flips
// @Description  Flips that are neither sold nor cancelled, optionally for one account
// @Tags         flips
// @Produce      json
// @Param        account  query     string  false  "Account filter" example(main)
// @Success      200      {array}   dto.ActiveFlipResponse
// @Failure      500      {object}  dto.ErrorResponse
// @Router       /api/v1/flips/active [get]
func (h *Handler) ListActiveFlips(c *gin.Context) {
	flips, err := h.svc.Active(c.Request.Context(), strings.TrimSpace(c.Query("account")))
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]dto.ActiveFlipResponse, len(flips))
	for i, f := range flips {
		out[i] = toActiveFlipResponse(f)
	}
	c.JSON(http.StatusOK, out)
}

// SellFlip handles POST /api/v1/flips/active/{id}/sell.
//
// SellFlip godoc
// @Summary      Sell an active flip
// @Description  Completes the flip. Zero price sells at the offer price, zero quantity keeps the bought quantity
// @Tags         flips
// @Accept       json
// @Produce      json
// @Param        id    path      int                  true  "Active flip id"
// @Param        sale  body      dto.SellFlipRequest  false "Sale details"
// @Success      200   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/v1/flips/active/{id}/sell [post]
func (h *Handler) SellFlip(c *gin.Context) {
	id, ok := activeID(c)
	if !ok {
		return
	}
	var req dto.SellFlipRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}

	sale, err := h.svc.Sell(c.Request.Context(), id, req.Price, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SaleResponse{
		Flip:   sale.Flip,
		Profit: sale.Profit,
		ROI:    sale.ROI,
		Totals: sale.Totals,
	})
}

// CancelFlip handles POST /api/v1/flips/active/{id}/cancel.
//
// CancelFlip godoc
// @Summary      Cancel an active flip
// @Tags         flips
// @Produce      json
// @Param        id   path      int  true  "Active flip id"
// @Success      200  {object}  models.Flip
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/flips/active/{id}/cancel [post]
func (h *Handler) CancelFlip(c *gin.Context) {
	id, ok := activeID(c)
	if !ok {
		return
	}
	f, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// UpdateFlip handles PATCH /api/v1/flips/active/{id}.
//
// UpdateFlip godoc
// @Summary      Edit an active flip
// @Description  Fields left out or zero keep their value
// @Tags         flips
// @Accept       json
// @Produce      json
// @Param        id     path      int                    true  "Active flip id"
// @Param        patch  body      dto.UpdateFlipRequest  true  "Fields to change"
// @Success      200    {object}  models.Flip
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/v1/flips/active/{id} [patch]
func (h *Handler) UpdateFlip(c *gin.Context) {
	id, ok := activeID(c)
	if !ok {
		return
	}
	var req dto.UpdateFlipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	f, err := h.svc.Update(c.Request.Context(), id, service.FlipPatch{
		Item:    strings.TrimSpace(req.Item),
		Buy:     req.Buy,
		Sell:    req.Sell,
		Limit:   req.Limit,
		Account: strings.TrimSpace(req.Account),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}
