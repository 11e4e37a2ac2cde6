package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"rfid-access-backend/internal/model"
	"rfid-access-backend/internal/mw"
)

type adminAuthRequest struct {
	Username string `json:"username" binding:"required,min=3,max=128"`
	Password string `json:"password" binding:"required,min=8"`
}

type adminAuthResponse struct {
	Token   string    `json:"token"`
	Message string    `json:"message"`
	Admin   adminInfo `json:"admin"`
}

type adminInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// RegisterAdmin handles the POST /api/auth/register request.
func (h *Handler) RegisterAdmin(c *gin.Context) {
	var req adminAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.store.FindAdminByUsername(c.Request.Context(), req.Username); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	admin, err := h.store.CreateAdmin(c.Request.Context(), req.Username, string(hash))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	token, err := h.issueToken(admin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}

	c.JSON(http.StatusOK, adminAuthResponse{
		Token:   token,
		Message: "Admin created successfully",
		Admin:   adminInfo{ID: admin.ID, Username: admin.Username},
	})
}

// LoginAdmin handles the POST /api/auth/login request.
func (h *Handler) LoginAdmin(c *gin.Context) {
	var req adminAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, err := h.store.FindAdminByUsername(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.issueToken(admin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}

	c.JSON(http.StatusOK, adminAuthResponse{
		Token:   token,
		Message: "Login successful",
		Admin:   adminInfo{ID: admin.ID, Username: admin.Username},
	})
}

func (h *Handler) issueToken(admin *model.Admin) (string, error) {
	now := time.Now()
	claims := mw.AdminClaims{
		AdminID:  admin.ID,
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(h.auth.TokenTTLMinutes) * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.auth.JWTSecret))
}
