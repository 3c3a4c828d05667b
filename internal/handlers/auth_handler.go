package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentinout/internal/helpers"
	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/joshua-takyi/rentinout/internal/services"
)

func SignUp(as *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SignupRequest
		if !bindJSON(c, &req) {
			return
		}

		user, err := as.SignUp(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(user, "verification email sent"))
	}
}

func Login(as *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if !bindJSON(c, &req) {
			return
		}

		session, err := as.Login(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(session, "logged in"))
	}
}

func LoginWithGoogle(as *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.GoogleLoginRequest
		if !bindJSON(c, &req) {
			return
		}

		session, err := as.LoginWithGoogle(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(session, "logged in"))
	}
}

// VerifyEmail is opened from the mailed link, so every outcome is a redirect
// to the landing endpoint rather than a JSON error.
func VerifyEmail(as *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := helpers.ParseObjectID("userId", c.Param("userId"))
		if err != nil {
			redirectVerified(c, true, "Invalid verification link")
			return
		}

		err = as.VerifyEmail(c.Request.Context(), userID, c.Param("uniqueString"))
		switch {
		case err == nil:
			redirectVerified(c, false, "Your email has been verified")
		case errors.Is(err, models.ErrNotFound):
			redirectVerified(c, true, "Account doesnt exist or has been verified already. Please sign up or login in.")
		case errors.Is(err, models.ErrExpired):
			redirectVerified(c, true, "Link has expired. Please request a new verification email.")
		case errors.Is(err, models.ErrInvalidToken):
			redirectVerified(c, true, "Invalid verification details passed. Please request a new verification email.")
		default:
			_ = c.Error(err)
			redirectVerified(c, true, "An error occurred while verifying your email")
		}
	}
}

func redirectVerified(c *gin.Context, failed bool, message string) {
	q := url.Values{}
	if failed {
		q.Set("error", "true")
	} else {
		q.Set("error", "false")
	}
	q.Set("message", message)
	c.Redirect(http.StatusFound, "/users/verified?"+q.Encode())
}

// Verified is the landing endpoint for verification redirects.
func Verified() gin.HandlerFunc {
	return func(c *gin.Context) {
		failed := c.Query("error") == "true"
		c.JSON(http.StatusOK, gin.H{
			"error":   failed,
			"message": c.Query("message"),
		})
	}
}

func ResendVerification(as *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.EmailRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := as.ResendVerification(c.Request.Context(), &req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "verification email sent"))
	}
}

func RequestPasswordReset(as *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.PasswordResetRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := as.RequestPasswordReset(c.Request.Context(), &req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"status":  "PENDING",
			"message": "Password reset email sent",
		})
	}
}

func ResetPassword(as *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ResetPasswordRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := as.ResetPassword(c.Request.Context(), &req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Password has been reset successfully"))
	}
}

func ContactEmail(as *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ContactRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := as.Contact(c.Request.Context(), &req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "message sent"))
	}
}
