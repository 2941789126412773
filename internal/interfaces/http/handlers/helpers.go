package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/interfaces/http/middleware"
	"cardswap.backend/internal/interfaces/http/response"
	"cardswap.backend/pkg/utils"
)

// requireActor writes 401 and returns false when no actor is attached.
func requireActor(c *gin.Context) (entities.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return entities.Actor{}, false
	}
	return actor, true
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.ValidationFailed("Invalid "+what+" ID"))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, domainerrors.ValidationFailed(err.Error()))
		return false
	}
	return true
}

func pagination(c *gin.Context) (utils.PaginationParams, bool) {
	var p utils.PaginationParams
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, domainerrors.ValidationFailed("Invalid pagination parameters"))
		return p, false
	}
	return p.Normalize(), true
}

type reasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}
