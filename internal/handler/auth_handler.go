package handler

import (
	"net/http"

	"vms/internal/apperr"
	"vms/internal/service"
	"vms/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
	otpService  service.OTPService
}

// NewAuthHandler sets up the routing dependencies for authentication endpoints
func NewAuthHandler(authService service.AuthService, otpService service.OTPService) *AuthHandler {
	return &AuthHandler{authService: authService, otpService: otpService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup. All auth
// endpoints are public by nature.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/send-otp", h.SendOTP)
		auth.POST("/signup", h.Signup)
		auth.POST("/login/request", h.LoginRequest)
		auth.POST("/login/verify", h.LoginVerify)
		auth.POST("/login/staff", h.StaffLogin)
		auth.POST("/login/face", h.FaceLogin)
		auth.POST("/reset-password", h.ResetPassword)
	}
}

type phoneRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}

type otpVerifyRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
}

// SendOTP issues a one-time code for any phone number
// @Summary      Request an OTP
// @Description  Issues a 4-digit code for the phone, replacing any outstanding one. Works for unregistered phones (signup flow). The code is surfaced on the server console, not delivered.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      phoneRequest  true  "Phone number"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /auth/send-otp [post]
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req phoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.otpService.RequestCode(c.Request.Context(), req.PhoneNumber); err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "OTP sent successfully (Check console for mock OTP)"))
}

// Signup registers a new visitor account
// @Summary      Visitor self-signup
// @Description  Creates an unverified visitor. Fails if the phone is already registered; an invalid inline face image aborts the signup.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.VisitorEnrollment  true  "Visitor enrollment"
// @Success      201      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req service.VisitorEnrollment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// LoginRequest issues a login OTP for a registered phone
// @Summary      Request a login OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      phoneRequest  true  "Phone number"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /auth/login/request [post]
func (h *AuthHandler) LoginRequest(c *gin.Context) {
	var req phoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	if err := h.otpService.RequestLoginCode(c.Request.Context(), req.PhoneNumber); err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "OTP sent successfully"))
}

// LoginVerify exchanges a valid OTP for a session token
// @Summary      Verify a login OTP
// @Description  Consumes the code (single use) and returns a session whose validity window depends on the account's role.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      otpVerifyRequest  true  "Phone and code"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /auth/login/verify [post]
func (h *AuthHandler) LoginVerify(c *gin.Context) {
	var req otpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	token, err := h.otpService.VerifyLogin(c.Request.Context(), req.PhoneNumber, req.OTP)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}

// StaffLogin authenticates staff by email and password
// @Summary      Staff login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.StaffLoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      401      {object}  response.Response
// @Router       /auth/login/staff [post]
func (h *AuthHandler) StaffLogin(c *gin.Context) {
	var req service.StaffLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	token, err := h.authService.StaffLogin(c.Request.Context(), req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}

// FaceLogin authenticates by enrolled face reference
// @Summary      Face login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.FaceLoginRequest  true  "Phone and captured image"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /auth/login/face [post]
func (h *AuthHandler) FaceLogin(c *gin.Context) {
	var req service.FaceLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	token, err := h.authService.FaceLogin(c.Request.Context(), req)
	if err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}

// ResetPassword overwrites a staff password and clears the reset flag
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.PasswordResetRequest  true  "Email and new password"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req service.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req); err != nil {
		code := apperr.StatusCode(err)
		c.JSON(code, response.Error(code, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Password updated successfully"))
}
