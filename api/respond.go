package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/judyrop/bookstore/apperr"
	"github.com/judyrop/bookstore/dto"
	"github.com/judyrop/bookstore/repository"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:     http.StatusBadRequest,
	apperr.KindConflict:       http.StatusBadRequest,
	apperr.KindNotFound:       http.StatusNotFound,
	apperr.KindAuthentication: http.StatusUnauthorized,
	apperr.KindAuthorization:  http.StatusForbidden,
	apperr.KindUnexpected:     http.StatusInternalServerError,
}

// fail writes err as the response. Validation errors become a field to
// message object, everything else {"error": message}. Details of
// unexpected errors are only logged.
func (h *handler) fail(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Unexpected(err)
	}
	_ = c.Error(err)

	status := statusByKind[appErr.Kind]
	switch appErr.Kind {
	case apperr.KindValidation:
		c.AbortWithStatusJSON(status, appErr.Fields)
	case apperr.KindUnexpected:
		h.log.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"path":       c.Request.URL.Path,
		}).WithError(err).Error("unexpected error")
		c.AbortWithStatusJSON(status, gin.H{"error": appErr.Message})
	default:
		c.AbortWithStatusJSON(status, gin.H{"error": appErr.Message})
	}
}

// bindJSON decodes and validates the request body into v. On failure the
// response is already written and false is returned.
func (h *handler) bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		h.fail(c, bindError(err))
		return false
	}
	return true
}

func (h *handler) bindQuery(c *gin.Context, v any) bool {
	if err := c.ShouldBindQuery(v); err != nil {
		h.fail(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return dto.ValidationError(verrs)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.InvalidField(typeErr.Field, "has an invalid type")
	}
	if errors.Is(err, io.EOF) {
		return apperr.InvalidField("body", "is required")
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return apperr.InvalidField("query", "must be a number")
	}
	return apperr.InvalidField("body", "is malformed")
}

// idParam parses a positive integer path parameter.
func (h *handler) idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		h.fail(c, apperr.InvalidField(name, "must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

// pageRequest reads page, size and sort from the query string.
func (h *handler) pageRequest(c *gin.Context) (repository.PageRequest, bool) {
	var params dto.PageParams
	if !h.bindQuery(c, &params) {
		return repository.PageRequest{}, false
	}
	page, err := repository.NewPageRequest(params.Page, params.Size, params.Sort, repository.BookSortColumns, "title")
	if err != nil {
		h.fail(c, apperr.InvalidField("sort", err.Error()))
		return repository.PageRequest{}, false
	}
	return page, true
}
