package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/health-records-service/internal/api/dto"
	"github.com/spec-kit/health-records-service/internal/auth"
	"github.com/spec-kit/health-records-service/internal/domain"
	"github.com/spec-kit/health-records-service/internal/service"
	apperrors "github.com/spec-kit/health-records-service/pkg/util"
)

// AppointmentsHandler exposes the appointment scheduler.
type AppointmentsHandler struct {
	scheduler *service.SchedulerService
}

// NewAppointmentsHandler constructs handler.
func NewAppointmentsHandler(scheduler *service.SchedulerService) *AppointmentsHandler {
	return &AppointmentsHandler{scheduler: scheduler}
}

// Schedule POST /appointments.
func (h *AppointmentsHandler) Schedule(c *fiber.Ctx) error {
	actorID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ScheduleAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.SubjectID == "" || req.CounterpartID == "" || req.ScheduledAt.IsZero() {
		return apperrors.NewValidationError("subject_id, counterpart_id, scheduled_at required", nil)
	}
	appointment, err := h.scheduler.Schedule(c.Context(), actorID, req.SubjectID, req.CounterpartID, req.ScheduledAt)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": appointmentResponse(appointment)})
}

// Confirm POST /appointments/:id/confirm.
func (h *AppointmentsHandler) Confirm(c *fiber.Ctx) error {
	actorID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseAppointmentID(c)
	if err != nil {
		return err
	}
	appointment, err := h.scheduler.Confirm(c.Context(), actorID, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appointment)})
}

// Cancel POST /appointments/:id/cancel.
func (h *AppointmentsHandler) Cancel(c *fiber.Ctx) error {
	actorID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseAppointmentID(c)
	if err != nil {
		return err
	}
	appointment, err := h.scheduler.Cancel(c.Context(), actorID, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appointment)})
}

// Get GET /appointments/:id.
func (h *AppointmentsHandler) Get(c *fiber.Ctx) error {
	actorID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseAppointmentID(c)
	if err != nil {
		return err
	}
	appointment, err := h.scheduler.GetDetails(c.Context(), actorID, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appointment)})
}

// List GET /appointments?party=.
func (h *AppointmentsHandler) List(c *fiber.Ctx) error {
	actorID, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	partyID := c.Query("party", actorID)
	appointments, err := h.scheduler.ListFor(c.Context(), actorID, partyID)
	if err != nil {
		return err
	}
	items := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		items = append(items, appointmentResponse(&appointments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseAppointmentID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid appointment id", nil)
	}
	return id, nil
}

func appointmentResponse(appointment *domain.Appointment) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID:            appointment.ID,
		SubjectID:     appointment.SubjectID,
		CounterpartID: appointment.CounterpartID,
		ScheduledAt:   appointment.ScheduledAt,
		Status:        string(appointment.Status),
		CreatedAt:     appointment.CreatedAt,
	}
}
