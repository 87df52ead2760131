package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/awquery/activitywatch"
	"github.com/meghashyamc/awquery/logger"
	"github.com/meghashyamc/awquery/services/search"
	"github.com/meghashyamc/awquery/validation"
)

// Service is the query adapter behind the REST endpoints.
type Service interface {
	Search(ctx context.Context, query string, limit int, cursor string) (*search.Response, error)
	Fetch(ctx context.Context, id string) (*search.FetchResult, error)
}

type SearchRequest struct {
	search.Request
}

func (r *SearchRequest) setDefaults() {
	if r.Limit == 0 {
		r.Limit = search.DefaultLimit
	}
}

func SetupSearch(router *gin.Engine, logger logger.Logger, service Service, validator *validation.Validator) {
	router.GET("/search", handleSearch(service, logger, validator))

}

func handleSearch(service Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request.Request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request query parameters"})
			return
		}
		request.setDefaults()

		if err := validator.Validate(request.Request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		response, err := service.Search(c.Request.Context(), request.Query, request.Limit, request.Cursor)
		if err != nil {
			logger.Error("search failed", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, statusForError(err), []string{"Search failed: " + err.Error()})
			return
		}

		writeResponse(c, response, http.StatusOK, nil)
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, search.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, activitywatch.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
