package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"

	"carelink-compliance-core/internal/modules/compliance/dto"
	"carelink-compliance-core/internal/modules/compliance/services"
)

// SweepEngine is the controller-facing surface of the sweep service
type SweepEngine interface {
	RunSweep(ctx context.Context, trigger string) (*dto.SweepReport, error)
	CheckExpiringSoon(ctx context.Context, daysAhead int, kinds ...dto.ProviderKind) ([]dto.ExpiringLicense, error)
	LookAheadDays(requested int) int
}

// ReportReader serves recorded sweep run reports
type ReportReader interface {
	LastReport(ctx context.Context) (*dto.SweepReport, error)
	History(ctx context.Context, limit int64) ([]bson.M, error)
}

type ComplianceController struct {
	engine    SweepEngine
	reports   ReportReader
	validator *validator.Validate
}

func NewComplianceController(
	engine SweepEngine,
	reports ReportReader,
) *ComplianceController {
	return &ComplianceController{
		engine:    engine,
		reports:   reports,
		validator: validator.New(),
	}
}

// RunSweep - POST /api/v1/compliance/sweep/run
// Manual trigger for operators; goes through the same lease as the schedule.
func (c *ComplianceController) RunSweep(ctx *gin.Context) {
	report, err := c.engine.RunSweep(ctx.Request.Context(), dto.TriggerManual)
	if err != nil {
		if errors.Is(err, services.ErrSweepInProgress) {
			ctx.JSON(http.StatusConflict, gin.H{
				"error": "A compliance sweep is already in progress",
				"details": map[string]interface{}{
					"code": "SWEEP_IN_PROGRESS",
				},
			})
			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error": "Compliance sweep failed",
			"details": map[string]interface{}{
				"code":  "SWEEP_FAILED",
				"cause": err.Error(),
			},
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// LastReport - GET /api/v1/compliance/sweep/last
func (c *ComplianceController) LastReport(ctx *gin.Context) {
	report, err := c.reports.LastReport(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load last sweep report",
			"details": map[string]interface{}{
				"code":  "REPORT_LOAD_FAILED",
				"cause": err.Error(),
			},
		})
		return
	}
	if report == nil {
		ctx.JSON(http.StatusNotFound, gin.H{
			"error": "No sweep has been recorded yet",
			"details": map[string]interface{}{
				"code": "REPORT_NOT_FOUND",
			},
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}

// SweepHistory - GET /api/v1/compliance/sweep/history?limit=20
// Reads the MongoDB archive, newest first.
func (c *ComplianceController) SweepHistory(ctx *gin.Context) {
	var req dto.SweepHistoryRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
			"details": map[string]interface{}{
				"code":    "INVALID_QUERY_PARAMS",
				"message": err.Error(),
			},
		})
		return
	}

	if err := c.validator.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid limit parameter",
			"details": map[string]interface{}{
				"code":      "VALIDATION_ERROR",
				"max_limit": 100,
				"message":   err.Error(),
			},
		})
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = 20
	}

	reports, err := c.reports.History(ctx.Request.Context(), int64(limit))
	if err != nil {
		if errors.Is(err, services.ErrArchiveUnavailable) {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Sweep report archive is not available",
				"details": map[string]interface{}{
					"code": "ARCHIVE_UNAVAILABLE",
				},
			})
			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load sweep history",
			"details": map[string]interface{}{
				"code":  "HISTORY_LOAD_FAILED",
				"cause": err.Error(),
			},
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"count":   len(reports),
			"reports": reports,
		},
	})
}

// ExpiringSoon - GET /api/v1/compliance/expiring-soon?days_ahead=30&kinds=doctor,pharmacy
func (c *ComplianceController) ExpiringSoon(ctx *gin.Context) {
	var req dto.ExpiringSoonRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
			"details": map[string]interface{}{
				"code":    "INVALID_QUERY_PARAMS",
				"message": err.Error(),
			},
		})
		return
	}

	if err := c.validator.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
			"details": map[string]interface{}{
				"code":        "VALIDATION_ERROR",
				"valid_kinds": []string{"doctor", "pharmacy", "laboratory"},
				"range":       "days_ahead: 1-365",
				"message":     err.Error(),
			},
		})
		return
	}

	kinds := make([]dto.ProviderKind, 0, len(req.Kinds))
	for _, kind := range req.Kinds {
		kinds = append(kinds, dto.ProviderKind(kind))
	}

	licenses, err := c.engine.CheckExpiringSoon(ctx.Request.Context(), req.DaysAhead, kinds...)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error": "Expiring-soon lookup failed",
			"details": map[string]interface{}{
				"code":  "EXPIRING_SOON_FAILED",
				"cause": err.Error(),
			},
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": dto.ExpiringSoonResponse{
			DaysAhead: c.engine.LookAheadDays(req.DaysAhead),
			Count:     len(licenses),
			Licenses:  licenses,
		},
	})
}
