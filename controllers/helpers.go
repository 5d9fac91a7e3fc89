package controllers

import (
	"strconv"

	apperrors "commerce-api/common/errors"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// parsePaginationParams reads page/limit query params, clamping to sane
// bounds.
func parsePaginationParams(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// respondError writes the application error as the response body.
func respondError(c *gin.Context, e *apperrors.Error) {
	c.JSON(e.Code, e)
}

// respondBindError maps a JSON binding failure to a validation error.
func respondBindError(c *gin.Context) {
	respondError(c, apperrors.Validation("Invalid request payload"))
}
