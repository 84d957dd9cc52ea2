package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerrors "tontine.backend/internal/domain/errors"
	"tontine.backend/internal/interfaces/http/middleware"
	"tontine.backend/internal/interfaces/http/response"
	"tontine.backend/internal/usecases"
	"tontine.backend/pkg/utils"
)

// actorFrom returns the authenticated actor or writes a 401
func actorFrom(c *gin.Context) (usecases.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Account not authenticated"))
		return usecases.Actor{}, false
	}
	return actor, true
}

// uuidParam parses a path parameter or writes a 400 naming the resource
func uuidParam(c *gin.Context, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid "+resource+" ID"))
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) utils.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(utils.DefaultPageLimit)))
	return utils.GetPaginationParams(page, limit)
}

// enumQuery reads an optional query value restricted to the allowed set
func enumQuery[T ~string](c *gin.Context, name string, allowed ...T) (T, bool) {
	raw := c.Query(name)
	if raw == "" {
		return "", true
	}
	for _, v := range allowed {
		if string(v) == raw {
			return v, true
		}
	}
	response.Error(c, domainerrors.Validation("invalid "+name+" filter"))
	return "", false
}

func paginated[T any](c *gin.Context, items []T, total int64, page utils.PaginationParams) {
	if items == nil {
		items = []T{}
	}
	response.Paginated(c, http.StatusOK, items, utils.CalculateMeta(total, page.Page, page.Limit))
}
