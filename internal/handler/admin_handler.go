package handler

import (
	"net/http"
	"path/filepath"

	"vms/internal/apperr"
	"vms/internal/middleware"
	"vms/internal/model"
	"vms/internal/service"
	"vms/pkg/pagination"
	"vms/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	admin        service.AdminService
	appointments service.AppointmentService
	faceImageDir string
	jwtSecret    []byte
}

func NewAdminHandler(admin service.AdminService, appointments service.AppointmentService, faceImageDir string, jwtSecret []byte) *AdminHandler {
	return &AdminHandler{
		admin:        admin,
		appointments: appointments,
		faceImageDir: faceImageDir,
		jwtSecret:    jwtSecret,
	}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	admin.Use(middleware.RequireRole(h.jwtSecret, model.RoleAdmin))
	{
		admin.POST("/create-user", h.CreateUser)
		admin.GET("/appointments/all", h.AllAppointments)
		admin.GET("/users/employees", h.ListEmployees)
		admin.GET("/users/security", h.ListSecurity)
		admin.GET("/users/all-staff", h.ListAllStaff)
		admin.PATCH("/users/:id", h.UpdateUser)
		admin.GET("/reports/stats", h.Stats)
		admin.GET("/reports/appointments/csv", h.ExportAppointmentsCSV)
		admin.GET("/audit-log", h.AuditLog)
		admin.GET("/proxy-image", h.ProxyImage)
	}
}

// CreateUser registers a staff account with the default first-login password
// @Summary      Create a staff account
// @Description  New staff get the configured default password and must change it on first login.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateStaffRequest  true  "Staff details"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /admin/create-user [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req service.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.admin.CreateStaff(c.Request.Context(), middleware.Subject(c), req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// AllAppointments lists every appointment in the system
// @Summary      All appointments
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.AppointmentResponse}
// @Router       /admin/appointments/all [get]
func (h *AdminHandler) AllAppointments(c *gin.Context) {
	appts, err := h.appointments.ListAll(c.Request.Context())
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, appts))
}

// ListEmployees lists employee accounts
// @Summary      List employees
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.UserSummary}
// @Router       /admin/users/employees [get]
func (h *AdminHandler) ListEmployees(c *gin.Context) {
	h.listByRole(c, model.RoleEmployee)
}

// ListSecurity lists security accounts
// @Summary      List security staff
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.UserSummary}
// @Router       /admin/users/security [get]
func (h *AdminHandler) ListSecurity(c *gin.Context) {
	h.listByRole(c, model.RoleSecurity)
}

func (h *AdminHandler) listByRole(c *gin.Context, role model.Role) {
	users, err := h.admin.ListByRole(c.Request.Context(), role)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, users))
}

// ListAllStaff lists every non-visitor account
// @Summary      List all staff
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.UserSummary}
// @Router       /admin/users/all-staff [get]
func (h *AdminHandler) ListAllStaff(c *gin.Context) {
	users, err := h.admin.ListAllStaff(c.Request.Context())
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, users))
}

// UpdateUser applies a partial update to any account
// @Summary      Update a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "User ID"
// @Param        payload  body      service.UpdateUserRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /admin/users/{id} [patch]
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	user, err := h.admin.UpdateUser(c.Request.Context(), middleware.Subject(c), c.Param("id"), req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// Stats summarizes headcounts and appointment volume
// @Summary      System statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.SystemStats}
// @Router       /admin/reports/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// ExportAppointmentsCSV streams the full appointment register as CSV
// @Summary      Appointment report
// @Tags         admin
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200  {string}  string  "CSV file"
// @Router       /admin/reports/appointments/csv [get]
func (h *AdminHandler) ExportAppointmentsCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=appointments_report.csv")

	if err := h.admin.ExportAppointmentsCSV(c.Request.Context(), c.Writer); err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}
}

type auditLogPage struct {
	Items []model.AuditLog `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// AuditLog lists recorded administrative actions, newest first
// @Summary      Audit log
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response
// @Router       /admin/audit-log [get]
func (h *AdminHandler) AuditLog(c *gin.Context) {
	params := pagination.Parse(c)

	entries, total, err := h.admin.ListAuditLog(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, auditLogPage{
		Items: entries,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}))
}

// ProxyImage serves a stored face image so browsers avoid cross-origin file paths
// @Summary      Serve a face image
// @Tags         admin
// @Produce      image/jpeg
// @Security     BearerAuth
// @Param        path  query     string  true  "Stored image path"
// @Success      200   {string}  string  "Image bytes"
// @Failure      404   {object}  response.Response
// @Router       /admin/proxy-image [get]
func (h *AdminHandler) ProxyImage(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "path query parameter is required"))
		return
	}

	// Only the bare filename is honored, keeping requests inside the image dir.
	c.File(filepath.Join(h.faceImageDir, filepath.Base(path)))
}
