package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"accountsvc/internal/models"
	"accountsvc/internal/services"
)

type UserHandler struct {
	accounts services.AccountService
}

func NewUserHandler(accounts services.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// @Summary      Profile details of the authenticated user
// @Tags         User
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  handlers.apiResponse
// @Failure      403  {object}  handlers.apiResponse
// @Failure      404  {object}  handlers.apiResponse
// @Router       /api/user/profile/details [get]
func (h *UserHandler) ProfileDetails(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	user, err := h.accounts.ProfileDetails(userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondErr(c, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("[user][profile] id=%d: %v", userID, err)
		respondErr(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondData(c, http.StatusOK, "User details", user)
}

// @Summary      Edit name, email and role
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile  body      models.EditProfileRequest  true  "Profile fields"
// @Success      201      {object}  handlers.apiResponse
// @Failure      400      {object}  handlers.apiResponse
// @Failure      403      {object}  handlers.apiResponse
// @Router       /api/edit/profile [post]
func (h *UserHandler) EditProfile(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req models.EditProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, bindingErrMessage(err))
		return
	}

	if err := h.accounts.UpdateProfile(userID, req.Name, req.Email, req.Role); err != nil {
		log.Printf("[user][edit-profile] id=%d: %v", userID, err)
		respondErr(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondMsg(c, http.StatusCreated, "Profile updated successfully")
}

// @Summary      Change password of the authenticated user
// @Tags         User
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        password  body      models.ChangePasswordRequest  true  "New password"
// @Success      201       {object}  handlers.apiResponse
// @Failure      400       {object}  handlers.apiResponse
// @Failure      403       {object}  handlers.apiResponse
// @Router       /api/change/password [post]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, http.StatusBadRequest, bindingErrMessage(err))
		return
	}

	if err := h.accounts.ChangePassword(userID, req.Password); err != nil {
		log.Printf("[user][change-password] id=%d: %v", userID, err)
		respondErr(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondMsg(c, http.StatusCreated, "Password changed successfully")
}
