package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gatherly/gatherly/internal/models"
	"github.com/gatherly/gatherly/internal/services"
	"github.com/gatherly/gatherly/internal/store"
	apperrors "github.com/gatherly/gatherly/pkg/errors"
	"github.com/gatherly/gatherly/pkg/response"
)

// EventHandler exposes event creation, invitation, response, and listing APIs.
type EventHandler struct {
	events *services.EventService
}

func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

type createEventRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required"`
	Location    string `json:"location" validate:"max=200"`
}

type updateEventRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	Status      *string `json:"status"`
}

type inviteRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role"`
}

type respondRequest struct {
	Status string `json:"status" validate:"required"`
}

func parseEventDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if date, err := time.Parse("2006-01-02", value); err == nil {
		return date, nil
	}
	date, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.NewBadRequest("date must be YYYY-MM-DD or RFC 3339")
	}
	return date, nil
}

// POST /api/events
func (h *EventHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createEventRequest
	if !bindAndValidate(c, &req) {
		return
	}

	date, err := parseEventDate(req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}

	created, err := h.events.CreateEvent(requestContext(c), user.ID, services.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Time:        req.Time,
		Location:    req.Location,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated, "Event created", created)
}

// PATCH /api/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateEventRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.UpdateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Time:        req.Time,
		Location:    req.Location,
	}
	if req.Date != nil {
		date, err := parseEventDate(*req.Date)
		if err != nil {
			response.Error(c, err)
			return
		}
		input.Date = &date
	}
	if req.Status != nil {
		status, err := models.ParseEventStatus(*req.Status)
		if err != nil {
			response.Error(c, apperrors.NewBadRequest(err.Error()))
			return
		}
		input.Status = &status
	}

	event, err := h.events.UpdateEvent(requestContext(c), user.ID, c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, event)
}

// DELETE /api/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.events.DeleteEvent(requestContext(c), user.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Event cancelled", result)
}

// POST /api/events/:id/invite
func (h *EventHandler) Invite(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req inviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	invitation, err := h.events.InviteUser(requestContext(c), user.ID, c.Param("id"), req.UserID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated, "Invitation sent", invitation)
}

// PATCH /api/events/:id/response
func (h *EventHandler) Respond(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req respondRequest
	if !bindAndValidate(c, &req) {
		return
	}

	status, err := models.ParseResponseStatus(req.Status)
	if err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return
	}
	// Pending is the absence of a response; it cannot be chosen explicitly.
	if !status.HasResponded() {
		response.Error(c, apperrors.NewBadRequest("status must be Going, Maybe, or NotGoing"))
		return
	}

	participant, err := h.events.UpdateResponse(requestContext(c), user.ID, c.Param("id"), status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, participant)
}

// GET /api/events/organized
func (h *EventHandler) Organized(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	events, err := h.events.OrganizerEvents(requestContext(c), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, events)
}

// GET /api/events/invited
func (h *EventHandler) Invited(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	events, err := h.events.InvitedEvents(requestContext(c), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, events)
}

// GET /api/events/:id/participants
func (h *EventHandler) Participants(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	participants, err := h.events.Participants(requestContext(c), user.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, participants)
}

// GET /api/events/search
func (h *EventHandler) Search(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	filters := store.SearchFilters{
		Keyword: strings.TrimSpace(c.Query("keyword")),
		Limit:   parseIntQuery(c, "limit", 0),
		Offset:  parseIntQuery(c, "offset", 0),
	}

	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		date, err := parseEventDate(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		filters.Date = &date
	}
	if raw := c.Query("status"); strings.TrimSpace(raw) != "" {
		status, err := models.ParseResponseStatus(raw)
		if err != nil {
			response.Error(c, apperrors.NewBadRequest(err.Error()))
			return
		}
		filters.UserStatus = status
	}
	if raw := c.Query("event_status"); strings.TrimSpace(raw) != "" {
		status, err := models.ParseEventStatus(raw)
		if err != nil {
			response.Error(c, apperrors.NewBadRequest(err.Error()))
			return
		}
		filters.EventStatus = status
	}
	if raw := c.Query("role"); strings.TrimSpace(raw) != "" {
		role, err := models.ParseRole(raw)
		if err != nil {
			response.Error(c, apperrors.NewBadRequest(err.Error()))
			return
		}
		filters.Role = role
	}

	page, err := h.events.Search(requestContext(c), user.ID, filters)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, page.Results, &response.Meta{
		Total:   int(page.Total),
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore,
	})
}
