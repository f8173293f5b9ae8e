package shape

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List returns the current snapshot map of a room, used for the initial
// document load and for debugging a live room.
func (h *Handler) List(c *gin.Context) {
	roomID := c.Param("id")

	shapes, err := h.service.ListShapes(c.Request.Context(), roomID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shapes": shapes,
		"count":  len(shapes),
	})
}

// Clear removes every shape in the room through the sequencer.
func (h *Handler) Clear(c *gin.Context) {
	roomID := c.Param("id")

	if err := h.service.ClearShapes(c.Request.Context(), roomID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
