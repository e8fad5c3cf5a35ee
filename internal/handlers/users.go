// internal/handlers/users.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"campus-findu/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserHandler struct {
	userCollection *mongo.Collection
}

func NewUserHandler(userCollection *mongo.Collection) *UserHandler {
	return &UserHandler{userCollection: userCollection}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := h.userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching user",
		})
		return
	}

	user.PasswordHash = ""
	c.JSON(http.StatusOK, user)
}

type UpdateProfileRequest struct {
	Username   string `json:"username" binding:"omitempty,min=2,max=50"`
	Phone      string `json:"phone"`
	Campus     string `json:"campus"`
	ProfilePic string `json:"profile_pic"`
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	update := bson.M{"updated_at": time.Now()}
	if req.Username != "" {
		update["username"] = req.Username
	}
	if req.Phone != "" {
		update["phone"] = req.Phone
	}
	if req.Campus != "" {
		update["campus"] = req.Campus
	}
	if req.ProfilePic != "" {
		update["profile_pic"] = req.ProfilePic
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.userCollection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": update},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating profile",
		})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "User not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
	})
}
