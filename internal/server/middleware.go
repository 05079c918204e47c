package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tasktracker/internal/auth"
)

// callerKey is the gin context key holding the authenticated user's id.
const callerKey = "callerID"

// requireAuth gates protected routes: it extracts the bearer credential,
// verifies it and resolves it to a user id before the handler runs. Any
// failure ends the request here.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access denied"})
			return
		}

		userID, err := s.tokens.Verify(bearerToken(header))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenRevoked):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token has been revoked"})
			case errors.Is(err, auth.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token expired"})
			default:
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid token"})
			}
			return
		}

		caller, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid token"})
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

// bearerToken strips the optional "Bearer " scheme prefix; a bare token is
// accepted as-is.
func bearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return header[len("Bearer "):]
	}
	return header
}

// callerID returns the user id requireAuth resolved for this request.
func callerID(c *gin.Context) primitive.ObjectID {
	v, _ := c.Get(callerKey)
	id, _ := v.(primitive.ObjectID)
	return id
}
