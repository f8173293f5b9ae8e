package thread

import (
	"net/http"

	"collaborative-whiteboard/internal/errors"
	"collaborative-whiteboard/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CreateThreadRequest struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Body string  `json:"body" binding:"required,min=1"`
}

func (h *Handler) Create(c *gin.Context) {
	roomID := c.Param("id")

	var form CreateThreadRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	author := c.GetString("participant_name")
	if author == "" {
		author = c.GetString("participant_id")
	}

	t, err := h.service.CreateThread(c.Request.Context(), roomID, author, form.X, form.Y, form.Body)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, t)
}

func (h *Handler) List(c *gin.Context) {
	roomID := c.Param("id")
	includeResolved := c.Query("resolved") == "true"

	page, pageSize := utils.GetPaginationParams(c)
	result, err := h.service.ListThreads(c.Request.Context(), roomID, includeResolved, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type AddCommentRequest struct {
	Body string `json:"body" binding:"required,min=1"`
}

func (h *Handler) AddComment(c *gin.Context) {
	threadID := c.Param("id")

	var form AddCommentRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	author := c.GetString("participant_name")
	if author == "" {
		author = c.GetString("participant_id")
	}

	t, err := h.service.AddComment(c.Request.Context(), threadID, author, form.Body)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, t)
}

// Focus brings a thread to the top of the stacking order.
func (h *Handler) Focus(c *gin.Context) {
	threadID := c.Param("id")

	t, err := h.service.Focus(c.Request.Context(), threadID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, t)
}

type ResolveRequest struct {
	Resolved *bool `json:"resolved" binding:"required"`
}

func (h *Handler) Resolve(c *gin.Context) {
	threadID := c.Param("id")

	var form ResolveRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	t, err := h.service.SetResolved(c.Request.Context(), threadID, *form.Resolved)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, t)
}
