package handlers

import (
	"errors"
	"log"
	"net/http"

	"civicdesk/internal/db"
	"civicdesk/internal/models"
	"civicdesk/internal/services"
	"civicdesk/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler owns both login flows: phone OTP for citizens and
// email/password for administrators.
type AuthHandler struct {
	smsService *services.SMSService
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		smsService: services.NewSMSService(),
	}
}

type requestOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// RequestOTP asks the SMS provider to send a login code to the phone.
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req requestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Phone number is required."})
		return
	}

	if !h.smsService.Enabled {
		log.Println("[Auth] Twilio credentials missing")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "SMS service not configured."})
		return
	}

	sid, err := h.smsService.SendOTP(req.Phone)
	if err != nil {
		log.Printf("[Auth] RequestOTP failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Unable to send OTP right now."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "OTP sent successfully. Please check your phone.",
		"sid":     sid,
	})
}

type verifyOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// VerifyOTP checks the code, finds or auto-registers the user by phone
// number, and issues a user token.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Phone number and OTP are required."})
		return
	}

	if !h.smsService.Enabled {
		log.Println("[Auth] Twilio credentials missing")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "SMS service not configured."})
		return
	}

	approved, err := h.smsService.CheckOTP(req.Phone, req.OTP)
	if err != nil {
		log.Printf("[Auth] VerifyOTP failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Unable to verify OTP right now."})
		return
	}
	if !approved {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired OTP."})
		return
	}

	var user models.User
	err = db.DB.Where("number = ?", req.Phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{Number: req.Phone}
		err = db.DB.Create(&user).Error
	}
	if err != nil {
		log.Printf("[Auth] VerifyOTP user lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Unable to verify OTP right now."})
		return
	}

	token, err := utils.SignToken(user.ID, utils.RoleUser, user.Number, "")
	if err != nil {
		log.Printf("[Auth] token signing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server misconfiguration."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful. OTP verified.",
		"token":   token,
		"user": gin.H{
			"id":     user.ID,
			"number": user.Number,
			"role":   utils.RoleUser,
		},
	})
}

type adminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin authenticates an administrator by email and password and
// issues an admin token.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required."})
		return
	}

	var admin models.Admin
	if err := db.DB.Where("email = ?", req.Email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Admin not found"})
			return
		}
		log.Printf("[Auth] AdminLogin failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
		return
	}

	if !utils.CheckPassword(admin.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid password"})
		return
	}

	token, err := utils.SignToken(admin.ID, utils.RoleAdmin, "", admin.Email)
	if err != nil {
		log.Printf("[Auth] token signing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server misconfiguration."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Admin logged in successfully",
		"token":   token,
		"admin": gin.H{
			"id":    admin.ID,
			"email": admin.Email,
			"role":  utils.RoleAdmin,
		},
	})
}
