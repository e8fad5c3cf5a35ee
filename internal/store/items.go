// internal/store/items.go
package store

import (
	"context"
	"fmt"
	"time"

	"campus-findu/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ItemStore — хранилище предметов поверх MongoDB. Реализует
// matching.CandidateStore.
type ItemStore struct {
	foundCollection *mongo.Collection
	lostCollection  *mongo.Collection
}

func NewItemStore(foundCollection, lostCollection *mongo.Collection) *ItemStore {
	return &ItemStore{
		foundCollection: foundCollection,
		lostCollection:  lostCollection,
	}
}

// searchingFilter учитывает legacy-записи без статуса.
func searchingFilter() bson.M {
	return bson.M{"$in": bson.A{models.ItemStatusSearching, "", nil}}
}

func (s *ItemStore) InsertFound(ctx context.Context, item *models.FoundItem) error {
	result, err := s.foundCollection.InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to insert found item: %w", err)
	}
	item.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *ItemStore) InsertLost(ctx context.Context, item *models.LostItem) error {
	result, err := s.lostCollection.InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to insert lost item: %w", err)
	}
	item.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *ItemStore) GetFoundByID(ctx context.Context, id primitive.ObjectID) (*models.FoundItem, error) {
	var item models.FoundItem
	err := s.foundCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *ItemStore) GetLostByID(ctx context.Context, id primitive.ObjectID) (*models.LostItem, error) {
	var item models.LostItem
	err := s.lostCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SearchingFoundByCategory отдаёт кандидатов стабильно: старые первыми,
// чтобы выбор лучшего при равных оценках был детерминирован.
func (s *ItemStore) SearchingFoundByCategory(ctx context.Context, category string) ([]models.FoundItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})
	cursor, err := s.foundCollection.Find(ctx, bson.M{
		"category": category,
		"status":   searchingFilter(),
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query found items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.FoundItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode found items: %w", err)
	}
	return items, nil
}

func (s *ItemStore) SearchingLostByCategory(ctx context.Context, category string) ([]models.LostItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})
	cursor, err := s.lostCollection.Find(ctx, bson.M{
		"category": category,
		"status":   searchingFilter(),
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query lost items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.LostItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode lost items: %w", err)
	}
	return items, nil
}

// ClaimFoundItem — условный перевод searching → matched.
// MatchedCount == 0 означает, что запись уже занята конкурентом.
func (s *ItemStore) ClaimFoundItem(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := s.foundCollection.UpdateOne(ctx,
		bson.M{
			"_id":    id,
			"status": searchingFilter(),
		},
		bson.M{
			"$set": bson.M{
				"status":     models.ItemStatusMatched,
				"matched_at": time.Now(),
			},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim found item: %w", err)
	}
	return result.MatchedCount > 0, nil
}

// ReleaseFoundItem откатывает собственный недавний claim: matched →
// searching. Нужен, когда вторую сторону пары успел занять конкурентный
// проход: без отката находка зависнет в matched без пары и навсегда
// выпадет из пула кандидатов.
func (s *ItemStore) ReleaseFoundItem(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := s.foundCollection.UpdateOne(ctx,
		bson.M{
			"_id":    id,
			"status": models.ItemStatusMatched,
		},
		bson.M{
			"$set":   bson.M{"status": models.ItemStatusSearching},
			"$unset": bson.M{"matched_at": ""},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to release found item: %w", err)
	}
	return result.MatchedCount > 0, nil
}

func (s *ItemStore) ClaimLostItem(ctx context.Context, id, foundItemID primitive.ObjectID) (bool, error) {
	result, err := s.lostCollection.UpdateOne(ctx,
		bson.M{
			"_id":    id,
			"status": searchingFilter(),
		},
		bson.M{
			"$set": bson.M{
				"status":                models.ItemStatusMatched,
				"matched_found_item_id": foundItemID,
				"matched_at":            time.Now(),
			},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim lost item: %w", err)
	}
	return result.MatchedCount > 0, nil
}

// CompleteFound — условный перевод matched → completed владельцем.
func (s *ItemStore) CompleteFound(ctx context.Context, id, ownerID primitive.ObjectID) (bool, error) {
	result, err := s.foundCollection.UpdateOne(ctx,
		bson.M{
			"_id":      id,
			"owner_id": ownerID,
			"status":   models.ItemStatusMatched,
		},
		bson.M{"$set": bson.M{"status": models.ItemStatusCompleted}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete found item: %w", err)
	}
	return result.MatchedCount > 0, nil
}

func (s *ItemStore) CompleteLost(ctx context.Context, id, ownerID primitive.ObjectID) (bool, error) {
	result, err := s.lostCollection.UpdateOne(ctx,
		bson.M{
			"_id":      id,
			"owner_id": ownerID,
			"status":   models.ItemStatusMatched,
		},
		bson.M{"$set": bson.M{"status": models.ItemStatusCompleted}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete lost item: %w", err)
	}
	return result.MatchedCount > 0, nil
}

func (s *ItemStore) ListFoundByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.FoundItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cursor, err := s.foundCollection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query found items by owner: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.FoundItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode found items: %w", err)
	}
	return items, nil
}

func (s *ItemStore) ListLostByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.LostItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	cursor, err := s.lostCollection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query lost items by owner: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.LostItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode lost items: %w", err)
	}
	return items, nil
}

// RecentFound — лента последних находок для главного экрана.
func (s *ItemStore) RecentFound(ctx context.Context, limit int64) ([]models.FoundItem, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := s.foundCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent found items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.FoundItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode found items: %w", err)
	}
	return items, nil
}

func (s *ItemStore) RecentLost(ctx context.Context, limit int64) ([]models.LostItem, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := s.lostCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent lost items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.LostItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode lost items: %w", err)
	}
	return items, nil
}
