package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/recipe-costing/services"
	"github.com/yeremiapane/recipe-costing/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SpreadsheetController struct {
	Service        *services.SpreadsheetService
	MaxUploadBytes int64
}

func NewSpreadsheetController(service *services.SpreadsheetService, maxUploadBytes int64) *SpreadsheetController {
	return &SpreadsheetController{Service: service, MaxUploadBytes: maxUploadBytes}
}

func (sc *SpreadsheetController) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := sc.Service.Export(c.Request.Context(), &buf); err != nil {
		respondServiceError(c, err)
		return
	}
	filename := fmt.Sprintf("recipes-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Import accepts a multipart upload in the "file" field.
func (sc *SpreadsheetController) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		utils.RespondFieldError(c, http.StatusBadRequest, string(services.KindValidation), "file", "a .xlsx upload in the \"file\" field is required")
		return
	}
	if sc.MaxUploadBytes > 0 && header.Size > sc.MaxUploadBytes {
		utils.RespondFieldError(c, http.StatusBadRequest, string(services.KindValidation), "file",
			fmt.Sprintf("file is larger than %d bytes", sc.MaxUploadBytes))
		return
	}

	f, err := header.Open()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, string(services.KindValidation), err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, string(services.KindValidation), errors.New("could not read upload"))
		return
	}

	summary, err := sc.Service.Import(c.Request.Context(), data)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Import finished", summary)
}
