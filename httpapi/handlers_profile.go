package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanhldev/accountd"
)

// maxAvatarBytes bounds multipart avatar uploads.
const maxAvatarBytes = 5 << 20

func (a *API) profile(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		abortError(c, accountd.ErrUnauthenticated)
		return
	}

	user, err := a.engine.Profile(c.Request.Context(), id.Account.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type profileUpdateBody struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

func (a *API) updateProfile(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		abortError(c, accountd.ErrUnauthenticated)
		return
	}

	var body profileUpdateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	user, err := a.engine.UpdateProfile(c.Request.Context(), id.Account.ID, accountd.ProfileUpdateRequest{
		Username: body.Username,
		Email:    body.Email,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile updated", "user": user})
}

func (a *API) uploadAvatar(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		abortError(c, accountd.ErrUnauthenticated)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes)

	header, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "avatar file required"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable avatar file"})
		return
	}
	defer file.Close()

	user, err := a.engine.UploadAvatar(
		c.Request.Context(),
		id.Account.ID,
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "avatar uploaded", "user": user})
}

func (a *API) deleteProfile(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		abortError(c, accountd.ErrUnauthenticated)
		return
	}

	if err := a.engine.DeleteAccount(c.Request.Context(), id.Account.ID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

// protected echoes the resolved identity. Kept as a connectivity check
// for clients wiring up bearer auth.
func (a *API) protected(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		abortError(c, accountd.ErrUnauthenticated)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "access granted",
		"user":    id.Account,
	})
}
