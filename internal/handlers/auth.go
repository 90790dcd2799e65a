package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"mehryaan-backend/internal/config"
	"mehryaan-backend/internal/middleware"
	"mehryaan-backend/internal/models"
)

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// Signup registers a new account, signs a JWT, and opens a cookie session so
// either credential works on subsequent requests.
func Signup(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/signup"
		defer handlePanic(c, route)

		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Please provide name, email and a password of at least 6 characters")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		email := strings.ToLower(strings.TrimSpace(req.Email))

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			respondServerError(c, route, err)
			return
		}
		if count > 0 {
			respondError(c, http.StatusBadRequest, "User already exists")
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
		if err != nil {
			respondServerError(c, route, err)
			return
		}

		now := time.Now()
		user := models.User{
			Name:      strings.TrimSpace(req.Name),
			Email:     email,
			Password:  string(hashed),
			Role:      "user",
			Phone:     req.Phone,
			Address:   req.Address,
			City:      req.City,
			State:     req.State,
			Pincode:   req.Pincode,
			CreatedAt: now,
			UpdatedAt: now,
		}

		result, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondError(c, http.StatusBadRequest, "User already exists")
				return
			}
			respondServerError(c, route, err)
			return
		}
		user.ID = result.InsertedID.(primitive.ObjectID)

		token, err := signToken(user, cfg)
		if err != nil {
			respondServerError(c, route, err)
			return
		}

		if err := openSession(ctx, c, db, user, cfg.SessionTTL); err != nil {
			respondServerError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Account created successfully",
			"token":   token,
			"user":    user,
		})
	}
}

// Login verifies credentials and issues the same JWT plus cookie session pair
// as Signup.
func Login(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/login"
		defer handlePanic(c, route)

		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Please provide email and password")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{
			"email": strings.ToLower(strings.TrimSpace(req.Email)),
		}).Decode(&user)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := signToken(user, cfg)
		if err != nil {
			respondServerError(c, route, err)
			return
		}

		if err := openSession(ctx, c, db, user, cfg.SessionTTL); err != nil {
			respondServerError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Logged in successfully",
			"token":   token,
			"user":    user,
		})
	}
}

// Me returns the authenticated user's account document.
func Me(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/auth/me"
		defer handlePanic(c, route)

		auth, ok := requireUser(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": auth.ID}).Decode(&user); err != nil {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user":    user,
		})
	}
}

// ProfileWithOrders returns the account together with its order history and
// lifetime spend.
func ProfileWithOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/auth/profile"
		defer handlePanic(c, route)

		auth, ok := requireUser(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": auth.ID}).Decode(&user); err != nil {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}

		orders, err := findOrders(ctx, db, bson.M{"userId": auth.ID})
		if err != nil {
			respondServerError(c, route, err)
			return
		}

		totalSpent := 0.0
		for _, order := range orders {
			totalSpent += order.OrderSummary.Total
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"user":        user,
			"orders":      orders,
			"totalOrders": len(orders),
			"totalSpent":  totalSpent,
		})
	}
}

// UpdateProfile patches the mutable account fields.
func UpdateProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/auth/profile"
		defer handlePanic(c, route)

		auth, ok := requireUser(c)
		if !ok {
			return
		}

		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		update := bson.M{"updatedAt": time.Now()}
		if req.Name != "" {
			update["name"] = req.Name
		}
		if req.Phone != "" {
			update["phone"] = req.Phone
		}
		if req.Address != "" {
			update["address"] = req.Address
		}
		if req.City != "" {
			update["city"] = req.City
		}
		if req.State != "" {
			update["state"] = req.State
		}
		if req.Pincode != "" {
			update["pincode"] = req.Pincode
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := db.Collection("users").UpdateOne(ctx, bson.M{"_id": auth.ID}, bson.M{"$set": update}); err != nil {
			respondServerError(c, route, err)
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": auth.ID}).Decode(&user); err != nil {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Profile updated successfully",
			"user":    user,
		})
	}
}

// Logout deletes the cookie session. A bearer token stays valid until it
// expires on its own.
func Logout(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/logout"
		defer handlePanic(c, route)

		if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			db.Collection("sessions").DeleteOne(ctx, bson.M{"token": token})
		}

		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Logged out successfully",
		})
	}
}

// SessionInfo reports whether the cookie maps to a live session and, if so,
// the identity attached to it.
func SessionInfo(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/auth/session"
		defer handlePanic(c, route)

		token, err := c.Cookie(middleware.SessionCookie)
		if err != nil || token == "" {
			c.JSON(http.StatusOK, gin.H{"success": true, "active": false})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var session models.Session
		err = db.Collection("sessions").FindOne(ctx, bson.M{
			"token":     token,
			"expiresAt": bson.M{"$gt": time.Now()},
		}).Decode(&session)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"success": true, "active": false})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"active":  true,
			"session": session,
		})
	}
}

// CheckSession is the lightweight probe frontends poll on page load. It never
// returns an error status.
func CheckSession(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/auth/check-session"
		defer handlePanic(c, route)

		token, err := c.Cookie(middleware.SessionCookie)
		if err != nil || token == "" {
			c.JSON(http.StatusOK, gin.H{"success": true, "authenticated": false})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("sessions").CountDocuments(ctx, bson.M{
			"token":     token,
			"expiresAt": bson.M{"$gt": time.Now()},
		})
		if err != nil || count == 0 {
			c.JSON(http.StatusOK, gin.H{"success": true, "authenticated": false})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "authenticated": true})
	}
}

func signToken(user models.User, cfg config.Config) (string, error) {
	claims := jwt.MapClaims{
		"id":   user.ID.Hex(),
		"role": user.Role,
		"exp":  time.Now().Add(cfg.AccessTokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}

func openSession(ctx context.Context, c *gin.Context, db *mongo.Database, user models.User, ttl time.Duration) error {
	session := models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}

	if _, err := db.Collection("sessions").InsertOne(ctx, session); err != nil {
		return err
	}

	c.SetCookie(middleware.SessionCookie, session.Token, int(ttl.Seconds()), "/", "", false, true)
	return nil
}
