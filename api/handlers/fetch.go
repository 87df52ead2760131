package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/awquery/logger"
	"github.com/meghashyamc/awquery/services/search"
)

type FetchRequest struct {
	ID string `form:"id"`
}

func SetupFetch(router *gin.Engine, logger logger.Logger, service Service) {
	router.GET("/fetch", handleFetch(service, logger))
}

func handleFetch(service Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := FetchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from fetch request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request query parameters"})
			return
		}

		result, err := service.Fetch(c.Request.Context(), request.ID)
		if err != nil {
			c.Abort()
			writeResponse(c, nil, statusForError(err), []string{fetchErrorMessage(err)})
			return
		}

		writeResponse(c, result, http.StatusOK, nil)
	}
}

func fetchErrorMessage(err error) string {
	switch {
	case errors.Is(err, search.ErrInvalidID):
		return "Invalid id"
	case errors.Is(err, search.ErrNotFound):
		return "Event not found"
	default:
		return "Fetch failed: " + err.Error()
	}
}
