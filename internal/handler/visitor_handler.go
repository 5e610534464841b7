package handler

import (
	"net/http"

	"vms/internal/apperr"
	"vms/internal/middleware"
	"vms/internal/model"
	"vms/internal/service"
	"vms/pkg/response"

	"github.com/gin-gonic/gin"
)

type VisitorHandler struct {
	appointments service.AppointmentService
	jwtSecret    []byte
}

func NewVisitorHandler(appointments service.AppointmentService, jwtSecret []byte) *VisitorHandler {
	return &VisitorHandler{appointments: appointments, jwtSecret: jwtSecret}
}

func (h *VisitorHandler) RegisterRoutes(router *gin.RouterGroup) {
	visitors := router.Group("/visitors")
	visitors.Use(middleware.RequireRole(h.jwtSecret, model.RoleVisitor))
	{
		visitors.POST("/appointments", h.BookAppointment)
		visitors.GET("/appointments", h.MyAppointments)
		visitors.GET("/host-schedule", h.HostSchedule)
	}
}

// BookAppointment creates a pending appointment for the logged-in visitor
// @Summary      Book an appointment
// @Description  Schedules a pre-planned visit. The appointment starts pending and must be accepted by the host before check-in.
// @Tags         visitors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BookingRequest  true  "Booking details"
// @Success      201      {object}  response.Response{data=service.AppointmentResponse}
// @Failure      400      {object}  response.Response
// @Router       /visitors/appointments [post]
func (h *VisitorHandler) BookAppointment(c *gin.Context) {
	var req service.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	appt, err := h.appointments.CreateVisitorBooking(c.Request.Context(), middleware.Subject(c), req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, appt))
}

// MyAppointments lists every appointment booked by the logged-in visitor
// @Summary      My appointments
// @Tags         visitors
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.AppointmentResponse}
// @Router       /visitors/appointments [get]
func (h *VisitorHandler) MyAppointments(c *gin.Context) {
	appts, err := h.appointments.ListForVisitor(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, appts))
}

// HostSchedule shows a host's visible bookings so visitors can pick a free slot
// @Summary      Host schedule
// @Tags         visitors
// @Produce      json
// @Security     BearerAuth
// @Param        host_name  query     string  true  "Host to look up"
// @Success      200        {object}  response.Response{data=[]service.AppointmentResponse}
// @Router       /visitors/host-schedule [get]
func (h *VisitorHandler) HostSchedule(c *gin.Context) {
	hostName := c.Query("host_name")
	if hostName == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "host_name query parameter is required"))
		return
	}

	appts, err := h.appointments.HostSchedule(c.Request.Context(), hostName)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, appts))
}
