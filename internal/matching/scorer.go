// internal/matching/scorer.go
package matching

import (
	"strings"
	"time"

	"campus-findu/internal/models"
	"campus-findu/internal/utils"
)

// Веса составляющих похожести
const (
	featureWeight = 0.5
	geoWeight     = 0.3
	timeWeight    = 0.2
)

// Scorer считает похожесть пары (найдено, потеряно). Чистая арифметика,
// без I/O; пороги и ключевые поля берутся из статической конфигурации.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score возвращает похожесть в диапазоне [0,1].
// Разные категории никогда не совпадают: сразу 0, без взвешивания.
func (s *Scorer) Score(found *models.FoundItem, lost *models.LostItem) float64 {
	if found.Category != lost.Category {
		return 0
	}

	totalScore := 0.0
	totalWeight := 0.0

	featureScore := s.featureSimilarity(found.Category, found.Features, lost.Features)
	totalScore += featureScore * featureWeight
	totalWeight += featureWeight

	distance := utils.CalculateDistance(found.Location, lost.Location)
	totalScore += geoScore(distance) * geoWeight
	totalWeight += geoWeight

	totalScore += timeScore(found.FoundAt, lost.LostAt) * timeWeight
	totalWeight += timeWeight

	if totalWeight == 0 {
		return 0
	}
	return totalScore / totalWeight
}

// Threshold возвращает минимальную похожесть для подтверждения
// совпадения в данной категории.
func (s *Scorer) Threshold(category string) float64 {
	return models.MatchThresholdForCategory(category)
}

// IsMatch проверяет, проходит ли пара порог своей категории.
func (s *Scorer) IsMatch(found *models.FoundItem, lost *models.LostItem) bool {
	return s.Score(found, lost) >= s.Threshold(found.Category)
}

// featureSimilarity — доля совпавших ключевых полей среди сравнимых.
// Поле сравнимо, когда значение непустое с обеих сторон. Совпадением
// считается равенство без учета регистра и пробелов по краям либо
// вхождение одного значения в другое.
func (s *Scorer) featureSimilarity(category string, foundFeatures, lostFeatures map[string]string) float64 {
	fields := models.KeyFieldsForCategory(category)
	if fields == nil {
		// Категории без ключевых полей сравниваются по всем полям
		// найденного предмета.
		fields = make([]string, 0, len(foundFeatures))
		for key := range foundFeatures {
			fields = append(fields, key)
		}
	}

	matchCount := 0
	totalFields := 0

	for _, key := range fields {
		foundValue := strings.TrimSpace(foundFeatures[key])
		lostValue := strings.TrimSpace(lostFeatures[key])
		if foundValue == "" || lostValue == "" {
			continue
		}

		totalFields++
		if strings.EqualFold(foundValue, lostValue) ||
			strings.Contains(foundValue, lostValue) ||
			strings.Contains(lostValue, foundValue) {
			matchCount++
		}
	}

	if totalFields == 0 {
		return 0
	}
	return float64(matchCount) / float64(totalFields)
}

// geoScore: до 500 метров — 1.0, дальше 2 км — 0, между ними линейно.
func geoScore(distanceMeters float64) float64 {
	switch {
	case distanceMeters < 500:
		return 1.0
	case distanceMeters > 2000:
		return 0.0
	default:
		return (2000 - distanceMeters) / 1500
	}
}

// timeScore: находка раньше потери логически невозможна — 0.
// До 3 полных суток разницы — 1.0, дальше минус 0.1 за каждые сутки.
func timeScore(foundAt, lostAt time.Time) float64 {
	diff := foundAt.Sub(lostAt)
	if diff < 0 {
		return 0
	}

	daysDiff := int(diff.Hours() / 24)
	if daysDiff < 3 {
		return 1.0
	}
	score := 1.0 - float64(daysDiff-3)*0.1
	if score < 0 {
		return 0
	}
	return score
}
