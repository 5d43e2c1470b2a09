package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanhldev/accountd"
)

type adminCreateBody struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	Verified bool   `json:"isVerified"`
}

func (a *API) adminCreate(c *gin.Context) {
	var body adminCreateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	user, err := a.engine.AdminCreate(c.Request.Context(), accountd.AdminCreateRequest{
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
		Role:     accountd.Role(body.Role),
		Verified: body.Verified,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user created", "user": user})
}

func (a *API) listUsers(c *gin.Context) {
	users, err := a.engine.ListAccounts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (a *API) getUser(c *gin.Context) {
	user, err := a.engine.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type adminUpdateBody struct {
	Username   *string `json:"username"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	IsVerified *bool   `json:"isVerified"`
}

func (a *API) updateUser(c *gin.Context) {
	var body adminUpdateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	var role *accountd.Role
	if body.Role != nil {
		r := accountd.Role(*body.Role)
		role = &r
	}

	user, err := a.engine.AdminUpdate(c.Request.Context(), c.Param("id"), accountd.AdminUpdateRequest{
		Username:   body.Username,
		Email:      body.Email,
		Role:       role,
		IsVerified: body.IsVerified,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user updated", "user": user})
}

// disableUser is the administrative delete. The record is kept and
// flipped to unverified, which blocks login until re-enabled.
func (a *API) disableUser(c *gin.Context) {
	if err := a.engine.DisableAccount(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user disabled"})
}
