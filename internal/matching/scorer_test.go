package matching

import (
	"testing"
	"time"

	"campus-findu/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestScoreCrossCategoryIsZero(t *testing.T) {
	scorer := NewScorer()
	now := time.Now()

	found := &models.FoundItem{
		Category: models.CategoryKeys,
		Features: map[string]string{"钥匙串数量": "3"},
		Location: models.NewLocation(39.9042, 116.4074),
		FoundAt:  now,
	}
	lost := &models.LostItem{
		Category: models.CategoryWallet,
		Features: map[string]string{"钥匙串数量": "3"},
		Location: models.NewLocation(39.9042, 116.4074),
		LostAt:   now,
	}

	assert.Equal(t, 0.0, scorer.Score(found, lost))
	assert.False(t, scorer.IsMatch(found, lost))
}

func TestScorePerfectPairIsOne(t *testing.T) {
	scorer := NewScorer()
	now := time.Now()

	found := &models.FoundItem{
		Category: models.CategoryKeys,
		Features: map[string]string{
			"钥匙串数量": "3",
			"钥匙颜色":  "银色",
		},
		Location: models.NewLocation(39.9042, 116.4074),
		FoundAt:  now,
	}
	lost := &models.LostItem{
		Category: models.CategoryKeys,
		Features: map[string]string{
			"钥匙串数量": "3",
			"钥匙颜色":  "银色",
		},
		Location: models.NewLocation(39.9042, 116.4074),
		LostAt:   now,
	}

	assert.InDelta(t, 1.0, scorer.Score(found, lost), 1e-9)
}

func TestGeoScoreBoundaries(t *testing.T) {
	assert.Equal(t, 1.0, geoScore(0))
	assert.Equal(t, 1.0, geoScore(499.9))
	assert.InDelta(t, 1.0, geoScore(500), 1e-9)
	assert.InDelta(t, 0.5, geoScore(1250), 1e-9)
	assert.InDelta(t, 0.0, geoScore(2000), 1e-9)
	assert.Equal(t, 0.0, geoScore(2500))
}

func TestTimeScore(t *testing.T) {
	lostAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Находка раньше потери невозможна
	assert.Equal(t, 0.0, timeScore(lostAt.Add(-time.Hour), lostAt))

	// До трёх полных суток — максимум
	assert.Equal(t, 1.0, timeScore(lostAt, lostAt))
	assert.Equal(t, 1.0, timeScore(lostAt.Add(24*time.Hour), lostAt))
	assert.Equal(t, 1.0, timeScore(lostAt.Add(71*time.Hour), lostAt))

	// Ровно трое суток всё ещё не штрафуются
	assert.Equal(t, 1.0, timeScore(lostAt.Add(72*time.Hour), lostAt))

	// Дальше минус 0.1 за сутки
	assert.InDelta(t, 0.9, timeScore(lostAt.Add(4*24*time.Hour), lostAt), 1e-9)
	assert.InDelta(t, 0.0, timeScore(lostAt.Add(13*24*time.Hour), lostAt), 1e-9)
	assert.Equal(t, 0.0, timeScore(lostAt.Add(30*24*time.Hour), lostAt))

	// Неполные сутки отбрасываются
	assert.InDelta(t, 0.9, timeScore(lostAt.Add(4*24*time.Hour+23*time.Hour), lostAt), 1e-9)
}

func TestFeatureSimilarity(t *testing.T) {
	scorer := NewScorer()

	t.Run("partial match on key fields", func(t *testing.T) {
		score := scorer.featureSimilarity(models.CategoryKeys,
			map[string]string{"钥匙串数量": "3", "钥匙颜色": "银色"},
			map[string]string{"钥匙串数量": "3", "钥匙颜色": "黑色"},
		)
		assert.InDelta(t, 0.5, score, 1e-9)
	})

	t.Run("case insensitive and containment", func(t *testing.T) {
		score := scorer.featureSimilarity(models.CategoryHeadphones,
			map[string]string{"耳机品牌": "Sony", "耳机类型": "头戴式降噪"},
			map[string]string{"耳机品牌": "SONY", "耳机类型": "头戴式"},
		)
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("blank values are not comparable", func(t *testing.T) {
		score := scorer.featureSimilarity(models.CategoryKeys,
			map[string]string{"钥匙串数量": "3", "钥匙颜色": "  "},
			map[string]string{"钥匙串数量": "3", "钥匙颜色": "黑色"},
		)
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("nothing comparable scores zero", func(t *testing.T) {
		score := scorer.featureSimilarity(models.CategoryKeys,
			map[string]string{},
			map[string]string{"钥匙串数量": "3"},
		)
		assert.Equal(t, 0.0, score)
	})

	t.Run("category without key fields compares all found keys", func(t *testing.T) {
		score := scorer.featureSimilarity(models.CategoryOthers,
			map[string]string{"物品描述": "黑色雨伞"},
			map[string]string{"物品描述": "雨伞"},
		)
		assert.InDelta(t, 1.0, score, 1e-9)
	})
}

// Сравнение признаков направленное: для категорий без списка ключевых
// полей набор берётся из полей НАЙДЕННОГО предмета. Поля, которые есть
// только у потерянного, в знаменатель не попадают.
func TestFeatureSimilarityKeySelectionIsDirectional(t *testing.T) {
	scorer := NewScorer()

	foundFeatures := map[string]string{"物品描述": "黑色雨伞"}
	lostFeatures := map[string]string{"物品描述": "红色水杯", "品牌": "乐扣"}

	// Сравнивается только 物品描述 (не совпало); 品牌 потерянного
	// предмета игнорируется
	score := scorer.featureSimilarity(models.CategoryOthers, foundFeatures, lostFeatures)
	assert.Equal(t, 0.0, score)

	// При смене ролей набор полей другой: 物品描述 не совпало, а 品牌
	// с пустой второй стороной выпадает из знаменателя
	swapped := scorer.featureSimilarity(models.CategoryOthers, lostFeatures, foundFeatures)
	assert.Equal(t, 0.0, swapped)
}

// Пара ключей: совпавшие ключевые поля, ~70 метров, сутки разницы.
func TestScoreKeysScenario(t *testing.T) {
	scorer := NewScorer()
	lostAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	found := &models.FoundItem{
		Category: models.CategoryKeys,
		Features: map[string]string{
			"钥匙串数量": "3",
			"钥匙颜色":  "银色",
		},
		Location: models.NewLocation(39.9048, 116.4074),
		FoundAt:  lostAt.Add(24 * time.Hour),
	}
	lost := &models.LostItem{
		Category: models.CategoryKeys,
		Features: map[string]string{
			"钥匙串数量": "3",
			"钥匙颜色":  "银色",
		},
		Location: models.NewLocation(39.9042, 116.4074),
		LostAt:   lostAt,
	}

	score := scorer.Score(found, lost)
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.True(t, scorer.IsMatch(found, lost))
}

// Студенческая карта с высоким порогом: идеальные поля и время, но
// 5 километров между точками не дают пройти порог 0.9.
func TestScoreCampusCardFarAwayBelowThreshold(t *testing.T) {
	scorer := NewScorer()
	now := time.Now()

	found := &models.FoundItem{
		Category: models.CategoryCampusCard,
		Features: map[string]string{
			"证件号后四位": "8812",
			"卡套颜色":   "蓝色",
		},
		Location: models.NewLocation(39.9492, 116.4074), // ~5 км севернее
		FoundAt:  now,
	}
	lost := &models.LostItem{
		Category: models.CategoryCampusCard,
		Features: map[string]string{
			"证件号后四位": "8812",
			"卡套颜色":   "蓝色",
		},
		Location: models.NewLocation(39.9042, 116.4074),
		LostAt:   now,
	}

	score := scorer.Score(found, lost)
	assert.InDelta(t, 0.7, score, 1e-9)
	assert.False(t, scorer.IsMatch(found, lost))
}

func TestThresholdPerCategory(t *testing.T) {
	scorer := NewScorer()

	assert.Equal(t, 0.9, scorer.Threshold(models.CategoryCampusCard))
	assert.Equal(t, 0.7, scorer.Threshold(models.CategoryKeys))
	assert.Equal(t, 0.5, scorer.Threshold(models.CategoryClothes))
	assert.Equal(t, 0.6, scorer.Threshold("unknown_category"))
}
