package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"rfid-access-backend/internal/model"
)

type createUserRequest struct {
	RFIDTag  string         `json:"rfid_tag" binding:"required,min=1,max=100"`
	Name     string         `json:"name"`
	NIC      string         `json:"nic"`
	UserType model.UserType `json:"user_type" binding:"omitempty,oneof=Common VIP Backstage"`
}

type createUserResponse struct {
	ID      *int64 `json:"id"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CreateUser handles the POST /api/users request.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := model.User{
		RFIDTag:  req.RFIDTag,
		Name:     req.Name,
		NIC:      req.NIC,
		UserType: req.UserType,
	}
	if err := h.store.CreateUser(c.Request.Context(), &user); err != nil {
		log.Printf("[users] create failed: %v", err)
		c.JSON(http.StatusOK, createUserResponse{
			Success: false,
			Message: "RFID tag already exists or database error",
		})
		return
	}

	c.JSON(http.StatusOK, createUserResponse{
		ID:      &user.ID,
		Success: true,
		Message: "User created successfully",
	})
}

// ImportUsers handles the POST /api/users/import request: a CSV upload with
// header rfid_tag,name,nic,user_type.
func (h *Handler) ImportUsers(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}
	defer f.Close()

	result, err := h.store.ImportUsersCSV(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Non-duplicate failures stay folded into the duplicate count in the
	// response; the split is visible in the server log.
	c.JSON(http.StatusOK, gin.H{
		"inserted":   result.Inserted,
		"duplicates": result.Duplicates + result.OtherErrors,
	})
}

// GetUser handles the GET /api/users/:user_id request.
func (h *Handler) GetUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers handles the GET /api/users request with skip/limit pagination.
func (h *Handler) ListUsers(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	users, err := h.store.ListUsers(c.Request.Context(), skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	c.JSON(http.StatusOK, users)
}
