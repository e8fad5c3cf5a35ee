// internal/handlers/items.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"campus-findu/internal/matching"
	"campus-findu/internal/models"
	"campus-findu/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ItemService — контракт прикладного сервиса предметов, который нужен
// хендлеру. Реализуется services.ItemService.
type ItemService interface {
	SubmitFound(ctx context.Context, ownerID primitive.ObjectID, req services.SubmitFoundRequest) (*models.FoundItem, *matching.MatchOutcome, error)
	SubmitLost(ctx context.Context, ownerID primitive.ObjectID, req services.SubmitLostRequest) (*models.LostItem, *matching.MatchOutcome, error)
	GetFound(ctx context.Context, id primitive.ObjectID) (*models.FoundItem, error)
	GetLostWithMatch(ctx context.Context, id primitive.ObjectID) (*models.LostItem, *models.FoundItem, error)
	ListUserItems(ctx context.Context, ownerID primitive.ObjectID) ([]models.FoundItem, []models.LostItem, error)
	RecentActivity(ctx context.Context, limit int64) ([]models.FoundItem, []models.LostItem, error)
	CompleteFound(ctx context.Context, id, ownerID primitive.ObjectID) error
	CompleteLost(ctx context.Context, id, ownerID primitive.ObjectID) error
}

type ItemHandler struct {
	itemService ItemService
}

func NewItemHandler(itemService ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// SubmitFound принимает новую находку и сразу запускает подбор.
func (h *ItemHandler) SubmitFound(c *gin.Context) {
	var req services.SubmitFoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	item, outcome, err := h.itemService.SubmitFound(ctx, ownerID, req)
	if err != nil {
		var persisted interface{}
		if item != nil {
			persisted = item
		}
		h.respondSubmitError(c, persisted, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"item":    item,
		"match":   outcome,
		"message": foundSubmitMessage(outcome),
	})
}

func (h *ItemHandler) SubmitLost(c *gin.Context) {
	var req services.SubmitLostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	item, outcome, err := h.itemService.SubmitLost(ctx, ownerID, req)
	if err != nil {
		var persisted interface{}
		if item != nil {
			persisted = item
		}
		h.respondSubmitError(c, persisted, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"item":    item,
		"match":   outcome,
		"message": lostSubmitMessage(outcome),
	})
}

// respondSubmitError различает отказ валидации, сбой сохранения и сбой
// подбора уже сохранённой записи.
func (h *ItemHandler) respondSubmitError(c *gin.Context, persisted interface{}, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCategory), errors.Is(err, services.ErrFutureTimestamp):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	case persisted != nil:
		// Запись сохранена, но кандидаты не прочитались: подбор
		// временно недоступен, заявка не потеряна. Клиенту нужен
		// id сохранённой записи.
		c.JSON(http.StatusCreated, gin.H{
			"item":    persisted,
			"message": "提交成功，但匹配服务暂时不可用，请稍后查看。",
			"match":   gin.H{"status": "unavailable"},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error saving item",
		})
	}
}

func foundSubmitMessage(outcome *matching.MatchOutcome) string {
	switch outcome.Status {
	case matching.OutcomeMatched:
		return "提交成功，已匹配到相关失主并发送通知！"
	case matching.OutcomePartial:
		return "提交成功，但匹配结果暂未完全保存，请稍后查看消息。"
	default:
		return "提交成功，感谢您的帮助！"
	}
}

func lostSubmitMessage(outcome *matching.MatchOutcome) string {
	switch outcome.Status {
	case matching.OutcomeMatched:
		return "匹配成功！"
	case matching.OutcomePartial:
		return "提交成功，但匹配结果暂未完全保存，请稍后查看消息。"
	default:
		return "提交成功，我们会持续为您寻找。"
	}
}

func (h *ItemHandler) GetFoundItem(c *gin.Context) {
	itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid item ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	item, err := h.itemService.GetFound(ctx, itemID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Item not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching item",
		})
		return
	}

	c.JSON(http.StatusOK, item)
}

// GetLostItem отдаёт потерю вместе с найденной парой, если она есть.
func (h *ItemHandler) GetLostItem(c *gin.Context) {
	itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid item ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	item, matchedFound, err := h.itemService.GetLostWithMatch(ctx, itemID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Item not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching item",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item":               item,
		"matched_found_item": matchedFound,
	})
}

func (h *ItemHandler) GetMyItems(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	found, lost, err := h.itemService.ListUserItems(ctx, ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching items",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"found_items": found,
		"lost_items":  lost,
	})
}

// GetRecentActivity — лента последних заявок для главного экрана.
func (h *ItemHandler) GetRecentActivity(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	found, lost, err := h.itemService.RecentActivity(ctx, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching activity",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"found_items": found,
		"lost_items":  lost,
	})
}

// CompleteFoundItem — владелец подтверждает передачу предмета.
func (h *ItemHandler) CompleteFoundItem(c *gin.Context) {
	h.complete(c, h.itemService.CompleteFound)
}

func (h *ItemHandler) CompleteLostItem(c *gin.Context) {
	h.complete(c, h.itemService.CompleteLost)
}

func (h *ItemHandler) complete(c *gin.Context, completeFn func(ctx context.Context, id, ownerID primitive.ObjectID) error) {
	itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid item ID",
		})
		return
	}

	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := completeFn(ctx, itemID, ownerID); err != nil {
		if errors.Is(err, services.ErrNotCompletable) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Item cannot be completed",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error completing item",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item marked as completed",
	})
}

// currentUserID достаёт ID пользователя, положенный auth-middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, _ := c.Get("user_id")
	userIDStr, _ := userID.(string)
	userIDObj, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return primitive.NilObjectID, false
	}
	return userIDObj, true
}
