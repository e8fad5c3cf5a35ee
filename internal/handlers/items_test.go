package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus-findu/internal/matching"
	"campus-findu/internal/models"
	"campus-findu/internal/services"
	"campus-findu/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeItemService struct {
	submitFound      func(ctx context.Context, ownerID primitive.ObjectID, req services.SubmitFoundRequest) (*models.FoundItem, *matching.MatchOutcome, error)
	submitLost       func(ctx context.Context, ownerID primitive.ObjectID, req services.SubmitLostRequest) (*models.LostItem, *matching.MatchOutcome, error)
	getFound         func(ctx context.Context, id primitive.ObjectID) (*models.FoundItem, error)
	getLostWithMatch func(ctx context.Context, id primitive.ObjectID) (*models.LostItem, *models.FoundItem, error)
	completeFound    func(ctx context.Context, id, ownerID primitive.ObjectID) error
}

func (f *fakeItemService) SubmitFound(ctx context.Context, ownerID primitive.ObjectID, req services.SubmitFoundRequest) (*models.FoundItem, *matching.MatchOutcome, error) {
	return f.submitFound(ctx, ownerID, req)
}

func (f *fakeItemService) SubmitLost(ctx context.Context, ownerID primitive.ObjectID, req services.SubmitLostRequest) (*models.LostItem, *matching.MatchOutcome, error) {
	return f.submitLost(ctx, ownerID, req)
}

func (f *fakeItemService) GetFound(ctx context.Context, id primitive.ObjectID) (*models.FoundItem, error) {
	return f.getFound(ctx, id)
}

func (f *fakeItemService) GetLostWithMatch(ctx context.Context, id primitive.ObjectID) (*models.LostItem, *models.FoundItem, error) {
	return f.getLostWithMatch(ctx, id)
}

func (f *fakeItemService) ListUserItems(ctx context.Context, ownerID primitive.ObjectID) ([]models.FoundItem, []models.LostItem, error) {
	return nil, nil, nil
}

func (f *fakeItemService) RecentActivity(ctx context.Context, limit int64) ([]models.FoundItem, []models.LostItem, error) {
	return nil, nil, nil
}

func (f *fakeItemService) CompleteFound(ctx context.Context, id, ownerID primitive.ObjectID) error {
	return f.completeFound(ctx, id, ownerID)
}

func (f *fakeItemService) CompleteLost(ctx context.Context, id, ownerID primitive.ObjectID) error {
	return nil
}

func setupItemRouter(svc ItemService, userID primitive.ObjectID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.Init()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID.Hex())
	})

	h := NewItemHandler(svc)
	router.POST("/items/found", h.SubmitFound)
	router.POST("/items/lost", h.SubmitLost)
	router.GET("/items/lost/:id", h.GetLostItem)
	router.POST("/items/found/:id/complete", h.CompleteFoundItem)
	return router
}

func submitBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(gin.H{
		"category":  models.CategoryKeys,
		"features":  gin.H{"钥匙串数量": "3"},
		"latitude":  39.9042,
		"longitude": 116.4074,
		"found_at":  time.Now().Add(-time.Hour).Format(time.RFC3339),
		"lost_at":   time.Now().Add(-time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	return body
}

func TestSubmitFoundMatched(t *testing.T) {
	userID := primitive.NewObjectID()
	svc := &fakeItemService{
		submitFound: func(ctx context.Context, ownerID primitive.ObjectID, req services.SubmitFoundRequest) (*models.FoundItem, *matching.MatchOutcome, error) {
			assert.Equal(t, userID, ownerID)
			assert.Equal(t, models.CategoryKeys, req.Category)
			item := &models.FoundItem{ID: primitive.NewObjectID(), Status: models.ItemStatusMatched}
			return item, &matching.MatchOutcome{Status: matching.OutcomeMatched, Score: 0.95}, nil
		},
	}
	router := setupItemRouter(svc, userID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items/found", bytes.NewReader(submitBody(t)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Match   matching.MatchOutcome `json:"match"`
		Message string                `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, matching.OutcomeMatched, resp.Match.Status)
	assert.Contains(t, resp.Message, "匹配")
}

func TestSubmitFoundInvalidCategory(t *testing.T) {
	svc := &fakeItemService{
		submitFound: func(ctx context.Context, ownerID primitive.ObjectID, req services.SubmitFoundRequest) (*models.FoundItem, *matching.MatchOutcome, error) {
			return nil, nil, services.ErrInvalidCategory
		},
	}
	router := setupItemRouter(svc, primitive.NewObjectID())

	body, err := json.Marshal(gin.H{
		"category":  "bicycle",
		"latitude":  39.9,
		"longitude": 116.4,
		"found_at":  time.Now().Format(time.RFC3339),
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items/found", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	// Неизвестная категория режется ещё на биндинге
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitLostMatchingUnavailable(t *testing.T) {
	itemID := primitive.NewObjectID()
	svc := &fakeItemService{
		submitLost: func(ctx context.Context, ownerID primitive.ObjectID, req services.SubmitLostRequest) (*models.LostItem, *matching.MatchOutcome, error) {
			item := &models.LostItem{ID: itemID, Status: models.ItemStatusSearching}
			return item, nil, errors.New("failed to fetch found candidates")
		},
	}
	router := setupItemRouter(svc, primitive.NewObjectID())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items/lost", bytes.NewReader(submitBody(t)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	// Заявка сохранена, подбор не состоялся: всё равно 201, и клиент
	// получает id сохранённой записи
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "unavailable")
	assert.Contains(t, w.Body.String(), itemID.Hex())
}

func TestSubmitFoundNotPersistedIsServerError(t *testing.T) {
	svc := &fakeItemService{
		submitFound: func(ctx context.Context, ownerID primitive.ObjectID, req services.SubmitFoundRequest) (*models.FoundItem, *matching.MatchOutcome, error) {
			return nil, nil, errors.New("failed to persist found item")
		},
	}
	router := setupItemRouter(svc, primitive.NewObjectID())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items/found", bytes.NewReader(submitBody(t)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetLostItemWithMatch(t *testing.T) {
	lostID := primitive.NewObjectID()
	foundID := primitive.NewObjectID()
	svc := &fakeItemService{
		getLostWithMatch: func(ctx context.Context, id primitive.ObjectID) (*models.LostItem, *models.FoundItem, error) {
			assert.Equal(t, lostID, id)
			lost := &models.LostItem{ID: lostID, Status: models.ItemStatusMatched, MatchedFoundItemID: &foundID}
			found := &models.FoundItem{ID: foundID, Status: models.ItemStatusMatched}
			return lost, found, nil
		},
	}
	router := setupItemRouter(svc, primitive.NewObjectID())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items/lost/"+lostID.Hex(), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), foundID.Hex())
}

func TestGetLostItemInvalidID(t *testing.T) {
	router := setupItemRouter(&fakeItemService{}, primitive.NewObjectID())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items/lost/not-an-id", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompleteFoundItemConflict(t *testing.T) {
	svc := &fakeItemService{
		completeFound: func(ctx context.Context, id, ownerID primitive.ObjectID) error {
			return services.ErrNotCompletable
		},
	}
	router := setupItemRouter(svc, primitive.NewObjectID())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items/found/"+primitive.NewObjectID().Hex()+"/complete", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
