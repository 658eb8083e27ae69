package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/azhar1598/xplore-be/internal/constants"
	"github.com/azhar1598/xplore-be/internal/domain"
	"github.com/azhar1598/xplore-be/pkg/errors"
)

// InsightSynthesizer serves the anonymous root route.
type InsightSynthesizer interface {
	GetBusinessInsights(ctx context.Context, businessName string) (*domain.BusinessInsight, error)
}

// InsightController serves the owner-scoped routes.
type InsightController interface {
	GetInsights(ctx context.Context, ownerID, businessName string) (*domain.InsightResult, error)
	History(ctx context.Context, filter domain.HistoryFilter) ([]domain.InsightRecord, error)
}

type InsightHandler struct {
	synth      InsightSynthesizer
	controller InsightController
	logger     *zap.Logger
}

func NewInsightHandler(synth InsightSynthesizer, controller InsightController, logger *zap.Logger) *InsightHandler {
	return &InsightHandler{
		synth:      synth,
		controller: controller,
		logger:     logger,
	}
}

// Root handles GET /?name= and returns the bare insight object.
func (h *InsightHandler) Root(c echo.Context) error {
	name, problem := businessNameParam(c)
	if problem != "" {
		return c.JSON(http.StatusBadRequest, legacyError{Error: problem})
	}

	insight, err := h.synth.GetBusinessInsights(c.Request().Context(), name)
	if err != nil {
		h.logFailure(c, name, err)
		return legacyErrorFrom(c, err)
	}
	return c.JSON(http.StatusOK, insight)
}

// Get handles GET /business-insights?name= for the owner in X-User-ID.
func (h *InsightHandler) Get(c echo.Context) error {
	name, problem := businessNameParam(c)
	if problem != "" {
		return Error(c, http.StatusBadRequest, errors.CodeValidation, problem)
	}
	owner := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
	if owner == "" {
		return Error(c, http.StatusBadRequest, errors.CodeValidation, "User id is required")
	}

	result, err := h.controller.GetInsights(c.Request().Context(), owner, name)
	if err != nil {
		h.logFailure(c, name, err)
		return ErrorFrom(c, err)
	}
	return Success(c, http.StatusOK, "", result)
}

// History handles GET /business-insights/history for the owner in X-User-ID.
func (h *InsightHandler) History(c echo.Context) error {
	owner := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
	if owner == "" {
		return Error(c, http.StatusBadRequest, errors.CodeValidation, "User id is required")
	}
	filter := domain.HistoryFilter{
		OwnerID:      owner,
		BusinessName: c.QueryParam("name"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return Error(c, http.StatusBadRequest, errors.CodeValidation, "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}

	records, err := h.controller.History(c.Request().Context(), filter)
	if err != nil {
		h.logFailure(c, filter.BusinessName, err)
		return ErrorFrom(c, err)
	}
	return Success(c, http.StatusOK, "", records)
}

// businessNameParam returns the name query parameter exactly as supplied, or a
// client-facing problem when it is unusable. Trimming only drives the checks;
// the raw value is the cache and store key.
func businessNameParam(c echo.Context) (string, string) {
	name := c.QueryParam("name")
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return "", "Business name is required"
	case utf8.RuneCountInString(trimmed) > constants.AIInputLimits.MaxBusinessNameLength:
		return "", "Business name is too long"
	}
	return name, ""
}

func (h *InsightHandler) logFailure(c echo.Context, name string, err error) {
	h.logger.Error("Insight request failed",
		zap.String("request_id", RequestIDFromContext(c)),
		zap.String("business", name),
		zap.String("code", errors.Code(err)),
		zap.Error(err),
	)
}
