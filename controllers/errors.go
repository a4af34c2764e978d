package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/recipe-costing/services"
	"github.com/yeremiapane/recipe-costing/utils"
)

var statusByKind = map[services.ErrorKind]int{
	services.KindValidation:   http.StatusBadRequest,
	services.KindUnauthorized: http.StatusUnauthorized,
	services.KindNotFound:     http.StatusNotFound,
	services.KindConflict:     http.StatusConflict,
	services.KindPersistence:  http.StatusInternalServerError,
}

// respondServiceError writes err with the status that matches its kind.
func respondServiceError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	code, ok := statusByKind[kind]
	if !ok {
		code = http.StatusInternalServerError
	}
	if code == http.StatusInternalServerError {
		utils.ErrorLogger.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}

	var svcErr *services.Error
	if errors.As(err, &svcErr) && svcErr.Field != "" {
		utils.RespondFieldError(c, code, string(kind), svcErr.Field, svcErr.Message)
		return
	}
	utils.RespondError(c, code, string(kind), err)
}

// bindJSON decodes the request body into dst, answering 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondError(c, http.StatusBadRequest, string(services.KindValidation), err)
		return false
	}
	return true
}

// paramID parses the :id path parameter, answering 400 when it is not a
// positive integer.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.RespondFieldError(c, http.StatusBadRequest, string(services.KindValidation), "id", "id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
