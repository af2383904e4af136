package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/rahmatrdn/go-query-insight/internal/usecase"
)

type ReportHandler struct {
	reportUsecase usecase.ReportUsecase
}

func NewReportHandler(reportUsecase usecase.ReportUsecase) *ReportHandler {
	return &ReportHandler{
		reportUsecase: reportUsecase,
	}
}

func (h *ReportHandler) Register(app *fiber.App) {
	group := app.Group("/connections/:id/reports")
	group.Get("/slow-queries", h.GetSlowQueries)

	app.Post("/analyze", h.Analyze)
}

// GetSlowQueries godoc
// @Summary      Ranked slow query report
// @Description  Serves the stored snapshot unless refresh is set or none exists yet.
// @Tags         reports
// @Produce      json
// @Param        id path int true "Connection ID"
// @Param        refresh query bool false "Rebuild the snapshot"
// @Success      200 {object} handler.slowQueryResponse
// @Failure      404 {object} handler.errorResponse
// @Router       /connections/{id}/reports/slow-queries [get]
func (h *ReportHandler) GetSlowQueries(c *fiber.Ctx) error {
	connectionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid connection id")
	}

	refresh := c.QueryBool("refresh", false)

	reports, lastRefresh, err := h.reportUsecase.GetTopSlowQueries(c.Context(), connectionID, refresh)
	if err != nil {
		return err
	}
	if reports == nil {
		reports = []*entity.SlowQueryReport{}
	}

	return c.JSON(slowQueryResponse{
		Data:        reports,
		LastRefresh: lastRefresh,
	})
}

// Analyze godoc
// @Summary      Analyze raw query records
// @Description  Fingerprints, aggregates and ranks the posted records without storing them.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request body handler.analyzeRequest true "Records and optional top N"
// @Success      200 {object} handler.analyzeResponse
// @Failure      400 {object} handler.errorResponse
// @Router       /analyze [post]
func (h *ReportHandler) Analyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.reportUsecase.AnalyzeRecords(c.Context(), req.Records, req.Top)
	if err != nil {
		return err
	}
	if result.Patterns == nil {
		result.Patterns = []usecase.PatternSummary{}
	}

	return c.JSON(analyzeResponse{Data: result})
}
