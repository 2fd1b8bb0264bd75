package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/reservation-app/middlewares"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB        *gorm.DB
	Tokens    *utils.TokenManager
	Blacklist utils.TokenBlacklist
}

func NewAuthController(db *gorm.DB, tokens *utils.TokenManager, blacklist utils.TokenBlacklist) *AuthController {
	return &AuthController{DB: db, Tokens: tokens, Blacklist: blacklist}
}

// Register creates a customer account.
func (ac *AuthController) Register(c *gin.Context) {
	var req struct {
		Username        string  `json:"username" binding:"required,min=4,max=50"`
		Password        string  `json:"password" binding:"required,min=8"`
		ConfirmPassword string  `json:"confirm_password" binding:"required,eqfield=Password"`
		FullName        string  `json:"full_name" binding:"max=100"`
		Email           string  `json:"email" binding:"required,email"`
		Phone           *string `json:"phone" binding:"omitempty,phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	customer := models.Customer{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: string(hashed),
		FullName:     req.FullName,
		Email:        strings.ToLower(req.Email),
		Phone:        req.Phone,
	}
	if err := ac.DB.Create(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondError(c, http.StatusConflict, errors.New("Username or email already registered"))
			return
		}
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.WithField("customer_id", customer.ID).Infof("New customer registered: %s", customer.Username)
	utils.RespondJSON(c, http.StatusCreated, "Registration successful", customer)
}

// Login issues a session token for a customer or, with who=admin, an admin.
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Who      string `json:"who" binding:"omitempty,oneof=admin customer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var (
		userID uint
		hash   string
		role   = utils.RoleCustomer
	)
	if req.Who == utils.RoleAdmin {
		role = utils.RoleAdmin
		var admin models.Admin
		if err := ac.DB.Where("name = ?", req.Username).First(&admin).Error; err != nil {
			ac.loginFailed(c, req.Username, err)
			return
		}
		userID, hash = admin.ID, admin.PasswordHash
	} else {
		var customer models.Customer
		if err := ac.DB.Where("username = ?", req.Username).First(&customer).Error; err != nil {
			ac.loginFailed(c, req.Username, err)
			return
		}
		userID, hash = customer.ID, customer.PasswordHash
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		ac.loginFailed(c, req.Username, gorm.ErrRecordNotFound)
		return
	}

	token, claims, err := ac.Tokens.GenerateToken(userID, role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.TokenCookie, token, int(ac.Tokens.TTL()/time.Second), "/", "", c.Request.TLS != nil, true)

	utils.InfoLogger.WithField("role", role).Infof("Login successful for %s", req.Username)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":      token,
		"role":       role,
		"user_id":    userID,
		"expires_at": claims.ExpiresAt.Time,
	})
}

func (ac *AuthController) loginFailed(c *gin.Context, username string, err error) {
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Warnf("Failed login for %s from %s", username, c.ClientIP())
	utils.RespondError(c, http.StatusUnauthorized, ErrInvalidCredentials)
}

// Logout revokes the current token until it would have expired.
func (ac *AuthController) Logout(c *gin.Context) {
	tokenID := c.GetString(middlewares.CtxTokenID)
	expiry := c.GetTime(middlewares.CtxTokenExpiry)
	if expiry.IsZero() {
		expiry = time.Now().Add(ac.Tokens.TTL())
	}
	if ac.Blacklist != nil && tokenID != "" {
		if err := ac.Blacklist.Revoke(c.Request.Context(), tokenID, expiry); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	c.SetCookie(middlewares.TokenCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	utils.RespondJSON(c, http.StatusOK, "You have been logged out.", nil)
}

// GetProfile returns the account behind the current token.
func (ac *AuthController) GetProfile(c *gin.Context) {
	userID := middlewares.UserID(c)
	if middlewares.Role(c) == utils.RoleAdmin {
		var admin models.Admin
		if err := ac.DB.First(&admin, userID).Error; err != nil {
			respondServiceError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", admin)
		return
	}

	var customer models.Customer
	if err := ac.DB.First(&customer, userID).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", customer)
}

// UpdateProfile changes a customer's contact details.
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var req struct {
		FullName *string `json:"full_name" binding:"omitempty,max=100"`
		Email    *string `json:"email" binding:"omitempty,email"`
		Phone    *string `json:"phone" binding:"omitempty,phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customer models.Customer
	if err := ac.DB.First(&customer, middlewares.UserID(c)).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if req.FullName != nil {
		customer.FullName = *req.FullName
	}
	if req.Email != nil {
		customer.Email = strings.ToLower(*req.Email)
	}
	if req.Phone != nil {
		customer.Phone = req.Phone
	}

	if err := ac.DB.Save(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondError(c, http.StatusConflict, errors.New("Email already registered"))
			return
		}
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile updated", customer)
}

// ChangePassword requires the current password.
func (ac *AuthController) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword     string `json:"old_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
		ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var model interface{}
	var hash *string
	if middlewares.Role(c) == utils.RoleAdmin {
		admin := &models.Admin{}
		model, hash = admin, &admin.PasswordHash
	} else {
		customer := &models.Customer{}
		model, hash = customer, &customer.PasswordHash
	}
	if err := ac.DB.First(model, middlewares.UserID(c)).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*hash), []byte(req.OldPassword)); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Current password is incorrect"))
		return
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if err := ac.DB.Model(model).Update("password_hash", string(hashed)).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Password changed", nil)
}
