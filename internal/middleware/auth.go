package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"mehryaan-backend/internal/models"
)

// SessionCookie is the name of the httpOnly session cookie.
const SessionCookie = "session_token"

const identityKey = "authUser"

// AuthUser is the authenticated identity injected into the request context.
type AuthUser struct {
	ID   primitive.ObjectID
	Role string
}

// SetUser stores an identity on the context the way Protect does. Route
// tests use it in place of the full middleware chain.
func SetUser(c *gin.Context, user AuthUser) {
	c.Set(identityKey, user)
}

// CurrentUser returns the identity Protect stored on the context.
func CurrentUser(c *gin.Context) (AuthUser, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return AuthUser{}, false
	}
	user, ok := value.(AuthUser)
	return user, ok
}

// Protect authenticates the request: a bearer JWT is checked first, then an
// active session looked up by cookie. Either populates the identity; neither
// rejects with 401.
func Protect(db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := userFromBearer(c.GetHeader("Authorization"), jwtSecret); ok {
			c.Set(identityKey, user)
			c.Next()
			return
		}

		if user, ok := userFromSession(c, db); ok {
			c.Set(identityKey, user)
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Not authorized to access this route",
		})
	}
}

// Authorize rejects identities whose role is not in the allowed set. Must run
// after Protect.
func Authorize(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized to access this route",
			})
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "User role '" + user.Role + "' is not authorized to access this route",
		})
	}
}

func userFromBearer(header, secret string) (AuthUser, bool) {
	raw := strings.TrimSpace(header)
	if raw == "" {
		return AuthUser{}, false
	}

	parts := strings.Split(raw, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return AuthUser{}, false
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return AuthUser{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AuthUser{}, false
	}

	idValue, _ := claims["id"].(string)
	userID, err := primitive.ObjectIDFromHex(idValue)
	if err != nil {
		return AuthUser{}, false
	}

	role, _ := claims["role"].(string)
	return AuthUser{ID: userID, Role: role}, true
}

func userFromSession(c *gin.Context, db *mongo.Database) (AuthUser, bool) {
	token, err := c.Cookie(SessionCookie)
	if err != nil || token == "" {
		return AuthUser{}, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var session models.Session
	err = db.Collection("sessions").FindOne(ctx, bson.M{
		"token":     token,
		"expiresAt": bson.M{"$gt": time.Now()},
	}).Decode(&session)
	if err != nil {
		return AuthUser{}, false
	}

	return AuthUser{ID: session.UserID, Role: session.Role}, true
}
