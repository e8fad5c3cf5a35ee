// internal/services/items.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-findu/internal/matching"
	"campus-findu/internal/models"
	"campus-findu/internal/store"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidCategory = errors.New("unknown item category")
	ErrFutureTimestamp = errors.New("item timestamp is in the future")
	ErrNotCompletable  = errors.New("item is not in matched status or not owned by user")
)

// SubmitFoundRequest — данные новой находки от мобильного клиента.
type SubmitFoundRequest struct {
	Category  string            `json:"category" binding:"required,itemcategory"`
	Features  map[string]string `json:"features"`
	Latitude  float64           `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64           `json:"longitude" binding:"min=-180,max=180"`
	Address   string            `json:"address"`
	ImagePath string            `json:"image_path"`
	FoundAt   time.Time         `json:"found_at" binding:"required"`
}

type SubmitLostRequest struct {
	Category  string            `json:"category" binding:"required,itemcategory"`
	Features  map[string]string `json:"features"`
	Latitude  float64           `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64           `json:"longitude" binding:"min=-180,max=180"`
	Address   string            `json:"address"`
	LostAt    time.Time         `json:"lost_at" binding:"required"`
}

// ItemService — прикладной сервис предметов: сохранить запись и сразу
// запустить один проход подбора. Повторных попыток нет, фоновых — тоже:
// подбор выполняется синхронно в рамках запроса подачи.
type ItemService struct {
	store   *store.ItemStore
	matcher *matching.Matcher
	log     *logrus.Logger
}

func NewItemService(itemStore *store.ItemStore, matcher *matching.Matcher, log *logrus.Logger) *ItemService {
	return &ItemService{
		store:   itemStore,
		matcher: matcher,
		log:     log,
	}
}

// SubmitFound сохраняет находку и пытается подобрать потерю.
// Предмет возвращается всегда, когда он сохранён, даже если подбор
// не удался: сам факт подачи уже зафиксирован.
func (s *ItemService) SubmitFound(ctx context.Context, ownerID primitive.ObjectID, req SubmitFoundRequest) (*models.FoundItem, *matching.MatchOutcome, error) {
	if err := validateSubmission(req.Category, req.FoundAt); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	item := &models.FoundItem{
		OwnerID:     ownerID,
		Category:    req.Category,
		Features:    req.Features,
		Location:    models.NewLocation(req.Latitude, req.Longitude),
		Address:     req.Address,
		ImagePath:   req.ImagePath,
		FoundAt:     req.FoundAt,
		SubmittedAt: now,
		Status:      models.ItemStatusSearching,
	}

	if err := s.store.InsertFound(ctx, item); err != nil {
		return nil, nil, fmt.Errorf("failed to persist found item: %w", err)
	}

	outcome, err := s.matcher.AttemptMatchForFound(ctx, item)
	if err != nil {
		// Находка сохранена, подбор не состоялся
		s.log.WithError(err).WithField("item_id", item.ID.Hex()).
			Error("found item persisted but matching failed")
		return item, nil, err
	}

	s.applyFoundOutcome(item, outcome)
	return item, outcome, nil
}

func (s *ItemService) SubmitLost(ctx context.Context, ownerID primitive.ObjectID, req SubmitLostRequest) (*models.LostItem, *matching.MatchOutcome, error) {
	if err := validateSubmission(req.Category, req.LostAt); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	item := &models.LostItem{
		OwnerID:     ownerID,
		Category:    req.Category,
		Features:    req.Features,
		Location:    models.NewLocation(req.Latitude, req.Longitude),
		Address:     req.Address,
		LostAt:      req.LostAt,
		SubmittedAt: now,
		Status:      models.ItemStatusSearching,
	}

	if err := s.store.InsertLost(ctx, item); err != nil {
		return nil, nil, fmt.Errorf("failed to persist lost item: %w", err)
	}

	outcome, err := s.matcher.AttemptMatchForLost(ctx, item)
	if err != nil {
		s.log.WithError(err).WithField("item_id", item.ID.Hex()).
			Error("lost item persisted but matching failed")
		return item, nil, err
	}

	s.applyLostOutcome(item, outcome)
	return item, outcome, nil
}

// applyFoundOutcome отражает результат подбора в возвращаемой записи,
// чтобы клиент не увидел устаревший статус.
func (s *ItemService) applyFoundOutcome(item *models.FoundItem, outcome *matching.MatchOutcome) {
	if outcome.Status == matching.OutcomeMatched && outcome.FoundItemID == item.ID {
		item.Status = models.ItemStatusMatched
	}
}

func (s *ItemService) applyLostOutcome(item *models.LostItem, outcome *matching.MatchOutcome) {
	if outcome.Status == matching.OutcomeMatched && outcome.LostItemID == item.ID {
		item.Status = models.ItemStatusMatched
		foundID := outcome.FoundItemID
		item.MatchedFoundItemID = &foundID
	}
}

func (s *ItemService) GetFound(ctx context.Context, id primitive.ObjectID) (*models.FoundItem, error) {
	return s.store.GetFoundByID(ctx, id)
}

// GetLostWithMatch отдаёт потерю вместе с сопоставленной находкой,
// если подбор уже состоялся.
func (s *ItemService) GetLostWithMatch(ctx context.Context, id primitive.ObjectID) (*models.LostItem, *models.FoundItem, error) {
	lost, err := s.store.GetLostByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if lost.MatchedFoundItemID == nil {
		return lost, nil, nil
	}

	found, err := s.store.GetFoundByID(ctx, *lost.MatchedFoundItemID)
	if err != nil {
		// Ссылка есть, находка не прочиталась — не прячем саму потерю
		s.log.WithError(err).WithField("lost_item_id", id.Hex()).
			Warn("failed to load matched found item")
		return lost, nil, nil
	}
	return lost, found, nil
}

func (s *ItemService) ListUserItems(ctx context.Context, ownerID primitive.ObjectID) ([]models.FoundItem, []models.LostItem, error) {
	found, err := s.store.ListFoundByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	lost, err := s.store.ListLostByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	return found, lost, nil
}

func (s *ItemService) RecentActivity(ctx context.Context, limit int64) ([]models.FoundItem, []models.LostItem, error) {
	found, err := s.store.RecentFound(ctx, limit)
	if err != nil {
		return nil, nil, err
	}
	lost, err := s.store.RecentLost(ctx, limit)
	if err != nil {
		return nil, nil, err
	}
	return found, lost, nil
}

// CompleteFound закрывает находку после передачи владельцу.
func (s *ItemService) CompleteFound(ctx context.Context, id, ownerID primitive.ObjectID) error {
	ok, err := s.store.CompleteFound(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotCompletable
	}
	return nil
}

func (s *ItemService) CompleteLost(ctx context.Context, id, ownerID primitive.ObjectID) error {
	ok, err := s.store.CompleteLost(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotCompletable
	}
	return nil
}

// validateSubmission отсекает некорректный ввод до запуска подбора.
func validateSubmission(category string, happenedAt time.Time) error {
	if !models.IsValidCategory(category) {
		return ErrInvalidCategory
	}
	if happenedAt.After(time.Now().Add(time.Minute)) {
		return ErrFutureTimestamp
	}
	return nil
}
