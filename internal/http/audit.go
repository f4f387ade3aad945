package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/authgate/internal/auth"
	"github.com/mrlokans/authgate/internal/entities"
)

const maxEventsPageSize = 100

// AuditEventReader lists recorded authentication events.
type AuditEventReader interface {
	GetEvents(ctx context.Context, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
}

type AuditEventsResponse struct {
	Events []entities.AuditEvent `json:"events"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

type AuditController struct {
	events AuditEventReader
}

func NewAuditController(events AuditEventReader) *AuditController {
	return &AuditController{events: events}
}

// MyEvents lists the caller's own authentication history. GET /users/me/events
func (ac *AuditController) MyEvents(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	limit := queryInt(c, "limit", 20)
	if limit <= 0 || limit > maxEventsPageSize {
		limit = maxEventsPageSize
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	events, total, err := ac.events.GetEvents(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	c.JSON(http.StatusOK, AuditEventsResponse{
		Events: events,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
