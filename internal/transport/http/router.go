package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wordmatch-service/internal/app"
	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/lookup"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type generateRequest struct {
	Words []string `json:"words" binding:"required,min=1,dive,required"`
}

type searchResponse struct {
	Query   string          `json:"query"`
	Type    string          `json:"type"`
	Results []lookup.Record `json:"results"`
}

type checkResponse struct {
	GameID  string             `json:"gameId"`
	Result  domain.ScoreResult `json:"result"`
	Passed  bool               `json:"passed"`
	Summary string             `json:"summary"`
}

// NewRouter wires the websocket endpoint and the JSON API.
func NewRouter(service *app.GameService, logger *zap.Logger, searchLimit int) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &apiHandler{service: service, logger: logger, searchLimit: searchLimit}
	ws := NewWSHandler(service, logger)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/ws", gin.WrapF(ws.ServeWS))

	api := router.Group("/api")
	{
		api.GET("/search", h.search)

		sets := api.Group("/sets")
		{
			sets.GET("/:id", h.getSet)
			sets.POST("", h.saveSet)
			sets.POST("/generate", h.generateSet)
		}

		games := api.Group("/games")
		{
			games.GET("/:id", h.getGame)
			games.POST("/:id/check", h.checkGame)
		}
	}
	return router
}

type apiHandler struct {
	service     *app.GameService
	logger      *zap.Logger
	searchLimit int
}

func (h *apiHandler) search(c *gin.Context) {
	query := c.Query("q")
	typ := c.DefaultQuery("type", lookup.TypeWord)
	limit := h.searchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	results, err := h.service.Search(c.Request.Context(), query, typ, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, searchResponse{Query: query, Type: typ, Results: results})
}

func (h *apiHandler) getSet(c *gin.Context) {
	set, err := h.service.GetSet(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *apiHandler) saveSet(c *gin.Context) {
	var set domain.MatchingSet
	if err := c.ShouldBindJSON(&set); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}
	if set.ID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "id is required"})
		return
	}
	if err := h.service.SaveSet(c.Request.Context(), set); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, set)
}

func (h *apiHandler) generateSet(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}
	set, err := h.service.GenerateSet(c.Request.Context(), req.Words)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, set)
}

func (h *apiHandler) getGame(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *apiHandler) checkGame(c *gin.Context) {
	gameID := c.Param("id")
	report, err := h.service.Check(c.Request.Context(), gameID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, checkResponse{
		GameID:  gameID,
		Result:  report.Result,
		Passed:  report.Passed,
		Summary: report.Summary,
	})
}

func (h *apiHandler) fail(c *gin.Context, err error) {
	var items domain.ItemErrors
	switch {
	case errors.As(err, &items):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: domain.ErrMalformedItems.Error(), Details: []domain.ItemError(items)})
	case errors.Is(err, domain.ErrGameNotFound), errors.Is(err, domain.ErrSetNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrNoWords):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrLookupUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: err.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal error"})
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
