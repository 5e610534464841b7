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

type SecurityHandler struct {
	appointments service.AppointmentService
	jwtSecret    []byte
}

func NewSecurityHandler(appointments service.AppointmentService, jwtSecret []byte) *SecurityHandler {
	return &SecurityHandler{appointments: appointments, jwtSecret: jwtSecret}
}

func (h *SecurityHandler) RegisterRoutes(router *gin.RouterGroup) {
	security := router.Group("/security")
	security.Use(middleware.RequireRole(h.jwtSecret, model.RoleSecurity, model.RoleAdmin))
	{
		security.GET("/daily-appointments", h.DailyAppointments)
		security.GET("/recent-activity", h.RecentActivity)
		security.POST("/check-in/:id", h.CheckIn)
		security.POST("/check-out/:id", h.CheckOut)
		security.GET("/visitor-profile/:phone", h.VisitorProfile)
		security.GET("/verify-identity", h.VerifyIdentity)
	}
}

// DailyAppointments lists appointments the gate should expect today
// @Summary      Gate worklist
// @Tags         security
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.AppointmentResponse}
// @Router       /security/daily-appointments [get]
func (h *SecurityHandler) DailyAppointments(c *gin.Context) {
	appts, err := h.appointments.DailyAppointments(c.Request.Context())
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, appts))
}

// RecentActivity lists the latest gate movements
// @Summary      Recent gate activity
// @Tags         security
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.AppointmentResponse}
// @Router       /security/recent-activity [get]
func (h *SecurityHandler) RecentActivity(c *gin.Context) {
	appts, err := h.appointments.RecentActivity(c.Request.Context())
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, appts))
}

// CheckIn admits the visitor of an accepted appointment
// @Summary      Check a visitor in
// @Description  Only accepted appointments can be checked in. A second check-in attempt on the same appointment is rejected.
// @Tags         security
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Appointment ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /security/check-in/{id} [post]
func (h *SecurityHandler) CheckIn(c *gin.Context) {
	if err := h.appointments.CheckIn(c.Request.Context(), middleware.Subject(c), c.Param("id")); err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Visitor checked in successfully"))
}

// CheckOut completes a checked-in appointment
// @Summary      Check a visitor out
// @Tags         security
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Appointment ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /security/check-out/{id} [post]
func (h *SecurityHandler) CheckOut(c *gin.Context) {
	if err := h.appointments.CheckOut(c.Request.Context(), middleware.Subject(c), c.Param("id")); err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Visitor checked out successfully"))
}

// VisitorProfile shows a visitor's details and visit history by phone
// @Summary      Visitor profile
// @Tags         security
// @Produce      json
// @Security     BearerAuth
// @Param        phone  path      string  true  "Phone number"
// @Success      200    {object}  response.Response{data=service.VisitorProfileResponse}
// @Failure      404    {object}  response.Response
// @Router       /security/visitor-profile/{phone} [get]
func (h *SecurityHandler) VisitorProfile(c *gin.Context) {
	profile, err := h.appointments.VisitorProfile(c.Request.Context(), c.Param("phone"))
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

// VerifyIdentity checks whether a phone belongs to a registered visitor
// @Summary      Verify visitor identity
// @Tags         security
// @Produce      json
// @Security     BearerAuth
// @Param        phone_number  query     string  true  "Phone number"
// @Success      200           {object}  response.Response{data=service.IdentityCheckResponse}
// @Router       /security/verify-identity [get]
func (h *SecurityHandler) VerifyIdentity(c *gin.Context) {
	phone := c.Query("phone_number")
	if phone == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "phone_number query parameter is required"))
		return
	}

	result, err := h.appointments.VerifyIdentity(c.Request.Context(), phone)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
