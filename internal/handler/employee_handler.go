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

type EmployeeHandler struct {
	appointments service.AppointmentService
	admin        service.AdminService
	jwtSecret    []byte
}

func NewEmployeeHandler(appointments service.AppointmentService, admin service.AdminService, jwtSecret []byte) *EmployeeHandler {
	return &EmployeeHandler{appointments: appointments, admin: admin, jwtSecret: jwtSecret}
}

func (h *EmployeeHandler) RegisterRoutes(router *gin.RouterGroup) {
	employees := router.Group("/employees")
	employees.Use(middleware.RequireRole(h.jwtSecret, model.RoleEmployee, model.RoleAdmin))
	{
		employees.POST("/book-for-visitor", h.BookForVisitor)
		employees.GET("/my-schedule", h.MySchedule)
		employees.PATCH("/appointments/:id/status", h.UpdateStatus)
		employees.PATCH("/appointments/:id/duration", h.UpdateDuration)
		employees.POST("/schedule/block", h.BlockSchedule)
		employees.POST("/sync-calendar", h.SyncCalendar)
		employees.GET("/visitor-list", h.VisitorList)
	}
}

// BookForVisitor books on behalf of a visitor, provisioning the account if needed
// @Summary      Book for a visitor
// @Description  Resolves the visitor by id or phone (creating a verified account when unknown) and books an already-accepted appointment hosted by the caller.
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.StaffBookingRequest  true  "Booking details"
// @Success      201      {object}  response.Response{data=service.AppointmentResponse}
// @Failure      400      {object}  response.Response
// @Router       /employees/book-for-visitor [post]
func (h *EmployeeHandler) BookForVisitor(c *gin.Context) {
	var req service.StaffBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	appt, err := h.appointments.CreateStaffBooking(c.Request.Context(), middleware.Subject(c), req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, appt))
}

// MySchedule lists appointments hosted by the logged-in employee
// @Summary      My schedule
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.AppointmentResponse}
// @Router       /employees/my-schedule [get]
func (h *EmployeeHandler) MySchedule(c *gin.Context) {
	appts, err := h.appointments.EmployeeSchedule(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, appts))
}

type statusUpdateRequest struct {
	Status model.AppointmentStatus `json:"status" binding:"required"`
}

// UpdateStatus moves an appointment to the requested status
// @Summary      Update appointment status
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Appointment ID"
// @Param        payload  body      statusUpdateRequest  true  "Target status"
// @Success      200      {object}  response.Response{data=service.AppointmentResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /employees/appointments/{id}/status [patch]
func (h *EmployeeHandler) UpdateStatus(c *gin.Context) {
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	appt, err := h.appointments.SetStatus(c.Request.Context(), middleware.Subject(c), c.Param("id"), req.Status)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, appt))
}

type durationUpdateRequest struct {
	DurationMinutes int `json:"duration_minutes" binding:"required"`
}

// UpdateDuration changes the planned meeting length
// @Summary      Update appointment duration
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Appointment ID"
// @Param        payload  body      durationUpdateRequest  true  "Duration in minutes"
// @Success      200      {object}  response.Response{data=service.AppointmentResponse}
// @Failure      400      {object}  response.Response
// @Router       /employees/appointments/{id}/duration [patch]
func (h *EmployeeHandler) UpdateDuration(c *gin.Context) {
	var req durationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	appt, err := h.appointments.SetDuration(c.Request.Context(), c.Param("id"), req.DurationMinutes)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, appt))
}

// BlockSchedule reserves a slot on the employee's own calendar
// @Summary      Block a time slot
// @Description  Creates a visitor-less blocked appointment. Past times are allowed so existing busy periods can be recorded.
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BlockScheduleRequest  true  "Slot to block"
// @Success      201      {object}  response.Response{data=service.AppointmentResponse}
// @Router       /employees/schedule/block [post]
func (h *EmployeeHandler) BlockSchedule(c *gin.Context) {
	var req service.BlockScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	appt, err := h.appointments.BlockSchedule(c.Request.Context(), middleware.Subject(c), req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, appt))
}

type calendarSyncRequest struct {
	CalendarURL string `json:"calendar_url" binding:"required"`
}

// SyncCalendar records an external calendar feed for the employee
// @Summary      Sync external calendar
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      calendarSyncRequest  true  "Calendar feed URL"
// @Success      200      {object}  response.Response
// @Router       /employees/sync-calendar [post]
func (h *EmployeeHandler) SyncCalendar(c *gin.Context) {
	var req calendarSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	if err := h.appointments.SyncCalendar(c.Request.Context(), middleware.Subject(c), req.CalendarURL); err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Calendar synced successfully"))
}

// VisitorList lists registered visitors for staff booking lookups
// @Summary      List visitors
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.UserSummary}
// @Router       /employees/visitor-list [get]
func (h *EmployeeHandler) VisitorList(c *gin.Context) {
	users, err := h.admin.ListByRole(c.Request.Context(), model.RoleVisitor)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, users))
}
