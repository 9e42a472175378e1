package api

import (
	"net/http"
	"time"

	"creatorhub/models"
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// UserResponse is a profile without its password hash.
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLogin   time.Time `json:"lastLogin"`
	CloudSync   bool      `json:"cloudSync"`
}

func newUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
		CloudSync:   u.CloudSync,
	}
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
	EnableSync  bool   `json:"enableSync"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// RegisterHandler creates a profile. The caller logs in separately.
func RegisterHandler(c *gin.Context, deps *Deps) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := deps.Session.Register(c.Request.Context(), req.Username, req.Password, req.DisplayName, req.EnableSync)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(user))
}

// LoginHandler authenticates, makes the profile current and issues a token for it.
func LoginHandler(c *gin.Context, deps *Deps) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := deps.Session.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := utils.GenerateJWT(&user, deps.Config)
	if err != nil {
		utils.GinInternalServerError(c, "Failed to issue token: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: newUserResponse(user)})
}

func LogoutHandler(c *gin.Context, deps *Deps) {
	if err := deps.Session.Logout(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}

func GetMeHandler(c *gin.Context, deps *Deps) {
	user, ok := deps.Session.CurrentUser()
	if !ok {
		utils.GinUnauthorized(c, "No user logged in.")
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// DeleteMeHandler removes the current profile with its document, backups and sync state.
func DeleteMeHandler(c *gin.Context, deps *Deps) {
	userID := c.GetString("userID")
	if err := deps.Session.DeleteUser(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	log.WithField("userID", userID).Info("api: profile deleted")
	c.Status(http.StatusNoContent)
}
