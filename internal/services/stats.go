// internal/services/stats.go
package services

import (
	"context"
	"fmt"
	"time"

	"campus-findu/internal/models"

	"github.com/montanaflynn/stats"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// StatsService считает сводку по работе подбора для админ-панели.
type StatsService struct {
	foundCollection *mongo.Collection
	lostCollection  *mongo.Collection
	userCollection  *mongo.Collection
}

type MatchingStats struct {
	TotalUsers int64 `json:"total_users"`
	TotalFound int64 `json:"total_found"`
	TotalLost  int64 `json:"total_lost"`

	FoundByStatus  map[string]int64 `json:"found_by_status"`
	LostByStatus   map[string]int64 `json:"lost_by_status"`
	LostByCategory map[string]int64 `json:"lost_by_category"`

	// Скорость подбора по закрытым за период потерям
	MeanHoursToMatch   float64 `json:"mean_hours_to_match"`
	MedianHoursToMatch float64 `json:"median_hours_to_match"`
	MatchedLast30Days  int     `json:"matched_last_30_days"`
}

func NewStatsService(foundCollection, lostCollection, userCollection *mongo.Collection) *StatsService {
	return &StatsService{
		foundCollection: foundCollection,
		lostCollection:  lostCollection,
		userCollection:  userCollection,
	}
}

func (s *StatsService) GetMatchingStats(ctx context.Context) (*MatchingStats, error) {
	result := &MatchingStats{
		FoundByStatus:  make(map[string]int64),
		LostByStatus:   make(map[string]int64),
		LostByCategory: make(map[string]int64),
	}

	var err error
	if result.TotalUsers, err = s.userCollection.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if result.TotalFound, err = s.foundCollection.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("failed to count found items: %w", err)
	}
	if result.TotalLost, err = s.lostCollection.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("failed to count lost items: %w", err)
	}

	statuses := []string{models.ItemStatusSearching, models.ItemStatusMatched, models.ItemStatusCompleted}
	for _, status := range statuses {
		filter := bson.M{"status": status}
		if status == models.ItemStatusSearching {
			// Legacy-записи без статуса тоже ищутся
			filter = bson.M{"status": bson.M{"$in": bson.A{models.ItemStatusSearching, "", nil}}}
		}

		if result.FoundByStatus[status], err = s.foundCollection.CountDocuments(ctx, filter); err != nil {
			return nil, fmt.Errorf("failed to count found items by status: %w", err)
		}
		if result.LostByStatus[status], err = s.lostCollection.CountDocuments(ctx, filter); err != nil {
			return nil, fmt.Errorf("failed to count lost items by status: %w", err)
		}
	}

	for _, category := range models.AllCategories {
		count, err := s.lostCollection.CountDocuments(ctx, bson.M{"category": category})
		if err != nil {
			return nil, fmt.Errorf("failed to count lost items by category: %w", err)
		}
		if count > 0 {
			result.LostByCategory[category] = count
		}
	}

	if err := s.fillMatchSpeed(ctx, result); err != nil {
		return nil, err
	}

	return result, nil
}

// fillMatchSpeed считает среднее и медиану часов от подачи потери до
// подбора за последние 30 дней.
func (s *StatsService) fillMatchSpeed(ctx context.Context, result *MatchingStats) error {
	cutoff := time.Now().AddDate(0, 0, -30)
	cursor, err := s.lostCollection.Find(ctx, bson.M{
		"matched_at": bson.M{"$gte": cutoff},
	})
	if err != nil {
		return fmt.Errorf("failed to query matched lost items: %w", err)
	}
	defer cursor.Close(ctx)

	var hours []float64
	for cursor.Next(ctx) {
		var item models.LostItem
		if err := cursor.Decode(&item); err != nil {
			continue
		}
		if item.MatchedAt == nil {
			continue
		}
		hours = append(hours, item.MatchedAt.Sub(item.SubmittedAt).Hours())
	}

	result.MatchedLast30Days = len(hours)
	if len(hours) == 0 {
		return nil
	}

	if mean, err := stats.Mean(hours); err == nil {
		result.MeanHoursToMatch = mean
	}
	if median, err := stats.Median(hours); err == nil {
		result.MedianHoursToMatch = median
	}
	return nil
}
