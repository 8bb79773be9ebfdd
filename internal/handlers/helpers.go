package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// apiResponse is the envelope every endpoint answers with.
type apiResponse struct {
	Success    int    `json:"success"`
	StatusCode int    `json:"statusCode"`
	Msg        string `json:"msg"`
	Data       any    `json:"data,omitempty"`
	Token      string `json:"token,omitempty"`
}

func respondMsg(c *gin.Context, status int, msg string) {
	c.JSON(status, apiResponse{Success: 1, StatusCode: status, Msg: msg})
}

func respondData(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, apiResponse{Success: 1, StatusCode: status, Msg: msg, Data: data})
}

func respondToken(c *gin.Context, status int, msg, token string, data any) {
	c.JSON(status, apiResponse{Success: 1, StatusCode: status, Msg: msg, Data: data, Token: token})
}

func respondErr(c *gin.Context, status int, msg string) {
	c.JSON(status, apiResponse{Success: 0, StatusCode: status, Msg: msg})
}

// bindingErrMessage renders the first failing field of a binding error,
// e.g. "Name is required" or "Password must be at least 4 characters".
func bindingErrMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "email":
			return fe.Field() + " must be a valid email address"
		case "min":
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fe.Field() + " is invalid"
	}
	return "Invalid request body"
}

// tolerant to the types middleware may store (int / int64 / float64 / string)
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

// authedUserID reads the id the auth middleware stored; a miss means the
// route was wired without the middleware, answered as forbidden.
func authedUserID(c *gin.Context) (int, bool) {
	id, ok := getIntFromCtx(c, "user_id")
	if !ok {
		respondErr(c, http.StatusForbidden, "Forbidden: No token provided")
	}
	return id, ok
}
