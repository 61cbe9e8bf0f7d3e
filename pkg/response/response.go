package response

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onboardhq/onboard/pkg/apperror"
)

// CurrentUser is the trimmed identity the auth middleware stores in the
// request context. It never carries the password hash.
type CurrentUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// GetCurrentUser retrieves the authenticated user from the context
func GetCurrentUser(c *gin.Context) (*CurrentUser, error) {
	value, exists := c.Get("current_user")
	if !exists {
		return nil, apperror.ErrUnauthorized
	}

	user, ok := value.(*CurrentUser)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}

	return user, nil
}

// Error writes a standardized error response
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors, hide their detail from the client
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
		c.JSON(code, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
