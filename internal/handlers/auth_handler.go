package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"accountsvc/internal/models"
	"accountsvc/internal/services"
)

type AuthHandler struct {
	accounts services.AccountService
}

func NewAuthHandler(accounts services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// @Summary      Register a new account
// @Description  Creates an account in pending state and emails a 6-digit OTP
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        register  body      models.RegisterRequest  true  "Registration data"
// @Success      201       {object}  handlers.apiResponse
// @Failure      400       {object}  handlers.apiResponse
// @Failure      500       {object}  handlers.apiResponse
// @Router       /api/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, bindingErrMessage(err))
		return
	}

	if _, err := h.accounts.Register(req.Name, req.Email, req.Password); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			respondErr(c, http.StatusBadRequest, "User already exists")
			return
		}
		log.Printf("[auth][register] email=%q: %v", req.Email, err)
		respondErr(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondMsg(c, http.StatusCreated, "Verification email sent")
}

// @Summary      Verify email with OTP
// @Description  Matches the pending OTP and marks the account verified
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        verify  body      models.VerifyEmailRequest  true  "Email and OTP"
// @Success      201     {object}  handlers.apiResponse
// @Failure      400     {object}  handlers.apiResponse
// @Failure      500     {object}  handlers.apiResponse
// @Router       /api/email/verify [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req models.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, bindingErrMessage(err))
		return
	}

	if err := h.accounts.VerifyEmail(req.Email, req.OTP.String()); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			respondErr(c, http.StatusBadRequest, "User not found")
		case errors.Is(err, services.ErrInvalidOTP):
			respondErr(c, http.StatusBadRequest, "Invalid OTP")
		case errors.Is(err, services.ErrOTPExpired):
			respondErr(c, http.StatusBadRequest, "OTP expired, please resend")
		default:
			log.Printf("[auth][verify] email=%q: %v", req.Email, err)
			respondErr(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondMsg(c, http.StatusCreated, "Registered successfully")
}

// @Summary      Login
// @Description  Authenticates a verified account and returns a bearer token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  handlers.apiResponse
// @Failure      400    {object}  handlers.apiResponse
// @Failure      500    {object}  handlers.apiResponse
// @Router       /api/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, bindingErrMessage(err))
		return
	}

	user, token, err := h.accounts.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotVerified):
			// also covers an unknown email, on purpose
			respondErr(c, http.StatusBadRequest, "Please verify your email first")
		case errors.Is(err, services.ErrInvalidCredentials):
			respondErr(c, http.StatusBadRequest, "Invalid credentials")
		default:
			log.Printf("[auth][login] email=%q: %v", req.Email, err)
			respondErr(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	// password hash, OTP and bookkeeping fields carry `json:"-"`,
	// so the marshalled user is already sanitized
	respondToken(c, http.StatusOK, "Login successful", token, user)
}

// @Summary      Resend OTP
// @Description  Issues a fresh OTP and drops the account back to pending
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        resend  body      models.ResendOTPRequest  true  "Email"
// @Success      201     {object}  handlers.apiResponse
// @Failure      400     {object}  handlers.apiResponse
// @Failure      500     {object}  handlers.apiResponse
// @Router       /api/resend/otp [post]
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req models.ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, bindingErrMessage(err))
		return
	}

	if err := h.accounts.ResendOTP(req.Email); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondErr(c, http.StatusBadRequest, "No user found")
			return
		}
		log.Printf("[auth][resend] email=%q: %v", req.Email, err)
		respondErr(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondMsg(c, http.StatusCreated, "Please verify your email")
}

// @Summary      Set a new password after forgot-password verification
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        change  body      models.ForgotPasswordChangeRequest  true  "Email and new password"
// @Success      201     {object}  handlers.apiResponse
// @Failure      400     {object}  handlers.apiResponse
// @Failure      500     {object}  handlers.apiResponse
// @Router       /api/user/forget/pass/change [post]
func (h *AuthHandler) ForgotPasswordChange(c *gin.Context) {
	var req models.ForgotPasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, bindingErrMessage(err))
		return
	}

	if err := h.accounts.ForgotPasswordChange(req.Email, req.Password); err != nil {
		if errors.Is(err, services.ErrEmailNotFound) {
			respondErr(c, http.StatusBadRequest, "Email not found")
			return
		}
		log.Printf("[auth][forgot-pass] email=%q: %v", req.Email, err)
		respondErr(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondMsg(c, http.StatusCreated, "Password changed successfully")
}
