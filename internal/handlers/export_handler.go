package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/services"
	"github.com/SAP-F-2025/story-survey-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// ExportSubmissions downloads archived submissions as a workbook
// @Summary Export submissions
// @Tags submissions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param study_id query string false "Study ID"
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /submissions/export [get]
func (h *ExportHandler) ExportSubmissions(c *gin.Context) {
	studyID := c.Query("study_id")
	h.LogRequest(c, "Exporting submissions", "study_id", studyID)

	data, err := h.exportService.ExportStudy(c.Request.Context(), studyID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	name := "submissions"
	if studyID != "" {
		name += "_" + studyID
	}
	filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
