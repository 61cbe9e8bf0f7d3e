package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onboardhq/onboard/internal/dto"
	"github.com/onboardhq/onboard/internal/service"
	"github.com/onboardhq/onboard/pkg/response"
	"github.com/onboardhq/onboard/pkg/validator"
)

type CalendarHandler struct {
	events service.EventService
}

func NewCalendarHandler(events service.EventService) *CalendarHandler {
	return &CalendarHandler{events: events}
}

func (h *CalendarHandler) List(c *gin.Context) {
	var filter dto.EventFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := h.events.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *CalendarHandler) Create(c *gin.Context) {
	var input dto.CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	event, err := h.events.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}
