// internal/matching/matcher.go
package matching

import (
	"context"
	"fmt"

	"campus-findu/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CandidateStore — доступ к записям предметов, нужный оркестратору.
// Выборки кандидатов отдают только записи в статусе searching (включая
// legacy-записи без статуса) в стабильном порядке. Claim-методы меняют
// статус условно: только если запись всё ещё searching.
type CandidateStore interface {
	SearchingFoundByCategory(ctx context.Context, category string) ([]models.FoundItem, error)
	SearchingLostByCategory(ctx context.Context, category string) ([]models.LostItem, error)

	// ClaimFoundItem переводит найденный предмет в matched.
	// Возвращает false без ошибки, если предмет уже занят конкурентом.
	ClaimFoundItem(ctx context.Context, id primitive.ObjectID) (bool, error)

	// ClaimLostItem переводит потерянный предмет в matched и записывает
	// ссылку на найденный предмет.
	ClaimLostItem(ctx context.Context, id, foundItemID primitive.ObjectID) (bool, error)

	// ReleaseFoundItem возвращает найденный предмет из matched в
	// searching. Откат собственного claim, когда пара не состоялась.
	ReleaseFoundItem(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// NotificationSink доставляет уведомление пользователю. Сбой доставки
// push-канала скрыт внутри реализации; ошибка означает, что уведомление
// не удалось даже сохранить.
type NotificationSink interface {
	Send(ctx context.Context, userID primitive.ObjectID, title, body string, relatedItemID primitive.ObjectID) error
}

// Статусы исхода одной попытки подбора
const (
	OutcomeMatched = "matched"
	OutcomeNoMatch = "no_match"
	// Совпадение найдено, но часть записи результата не применилась.
	// Уже применённые изменения не откатываются.
	OutcomePartial = "partial"
)

// MatchOutcome — результат одной попытки подбора для нового предмета.
type MatchOutcome struct {
	Status string  `json:"status"`
	Score  float64 `json:"score,omitempty"`

	FoundItemID primitive.ObjectID `json:"found_item_id,omitempty"`
	LostItemID  primitive.ObjectID `json:"lost_item_id,omitempty"`

	// Заполнено только для partial
	FailedStep string `json:"failed_step,omitempty"`
}

func noMatch() *MatchOutcome {
	return &MatchOutcome{Status: OutcomeNoMatch}
}

// Matcher — оркестратор подбора: один проход по кандидатам
// противоположной роли при каждой подаче заявки.
type Matcher struct {
	store  CandidateStore
	sink   NotificationSink
	scorer *Scorer
	log    *logrus.Logger
}

func NewMatcher(store CandidateStore, sink NotificationSink, log *logrus.Logger) *Matcher {
	return &Matcher{
		store:  store,
		sink:   sink,
		scorer: NewScorer(),
		log:    log,
	}
}

// AttemptMatchForFound подбирает потерянные предметы под новую находку.
// Ошибка возвращается только при сбое чтения кандидатов; сама находка
// к этому моменту уже сохранена и остаётся в searching.
func (m *Matcher) AttemptMatchForFound(ctx context.Context, found *models.FoundItem) (*MatchOutcome, error) {
	if !found.IsSearching() {
		return noMatch(), nil
	}

	candidates, err := m.store.SearchingLostByCategory(ctx, found.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lost candidates: %w", err)
	}

	var best *models.LostItem
	maxScore := 0.0
	for i := range candidates {
		score := m.scorer.Score(found, &candidates[i])
		if score > maxScore {
			maxScore = score
			best = &candidates[i]
		}
	}

	if best == nil || maxScore < m.scorer.Threshold(found.Category) {
		return noMatch(), nil
	}

	return m.applyMatch(ctx, found, best, maxScore)
}

// AttemptMatchForLost подбирает находки под новую заявку о потере.
func (m *Matcher) AttemptMatchForLost(ctx context.Context, lost *models.LostItem) (*MatchOutcome, error) {
	if !lost.IsSearching() {
		return noMatch(), nil
	}

	candidates, err := m.store.SearchingFoundByCategory(ctx, lost.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch found candidates: %w", err)
	}

	var best *models.FoundItem
	maxScore := 0.0
	for i := range candidates {
		score := m.scorer.Score(&candidates[i], lost)
		if score > maxScore {
			maxScore = score
			best = &candidates[i]
		}
	}

	if best == nil || maxScore < m.scorer.Threshold(lost.Category) {
		return noMatch(), nil
	}

	return m.applyMatch(ctx, best, lost, maxScore)
}

// applyMatch применяет исход: оба предмета в matched, ссылка на находку,
// уведомления обеим сторонам. Частичный сбой не маскируется и не
// откатывается — вызывающий получает partial.
func (m *Matcher) applyMatch(ctx context.Context, found *models.FoundItem, lost *models.LostItem, score float64) (*MatchOutcome, error) {
	outcome := &MatchOutcome{
		Status:      OutcomeMatched,
		Score:       score,
		FoundItemID: found.ID,
		LostItemID:  lost.ID,
	}

	claimed, err := m.store.ClaimFoundItem(ctx, found.ID)
	if err != nil {
		outcome.Status = OutcomePartial
		outcome.FailedStep = "claim_found"
		m.log.WithError(err).WithField("found_item_id", found.ID.Hex()).
			Error("match: failed to claim found item")
		return outcome, nil
	}
	if !claimed {
		// Кандидата уже занял конкурентный подбор
		m.log.WithField("found_item_id", found.ID.Hex()).
			Info("match: found item claimed concurrently, treating as no match")
		return noMatch(), nil
	}

	claimed, err = m.store.ClaimLostItem(ctx, lost.ID, found.ID)
	if err != nil {
		outcome.Status = OutcomePartial
		outcome.FailedStep = "claim_lost"
		m.log.WithError(err).WithField("lost_item_id", lost.ID.Hex()).
			Error("match: failed to claim lost item, found item left matched")
		return outcome, nil
	}
	if !claimed {
		// Потерю перехватил другой проход. Возвращаем находку в поиск:
		// обе стороны пары либо переведены вместе, либо никак.
		if released, relErr := m.store.ReleaseFoundItem(ctx, found.ID); relErr != nil || !released {
			m.log.WithError(relErr).WithField("found_item_id", found.ID.Hex()).
				Error("match: failed to release found item after losing race for lost item")
		}
		m.log.WithField("lost_item_id", lost.ID.Hex()).
			Warn("match: lost item claimed concurrently after found item")
		return noMatch(), nil
	}

	displayName := models.GetCategoryDisplayName(found.Category)

	err = m.sink.Send(ctx, lost.OwnerID,
		"匹配成功",
		fmt.Sprintf("您丢失的 %s 可能找到了！", displayName),
		lost.ID)
	if err != nil {
		outcome.Status = OutcomePartial
		outcome.FailedStep = "notify_lost_owner"
		m.log.WithError(err).Error("match: failed to notify lost item owner")
		return outcome, nil
	}

	if found.OwnerID != lost.OwnerID {
		err = m.sink.Send(ctx, found.OwnerID,
			"物品已匹配",
			fmt.Sprintf("您拾得的 %s 已匹配到失主！", displayName),
			found.ID)
		if err != nil {
			outcome.Status = OutcomePartial
			outcome.FailedStep = "notify_found_owner"
			m.log.WithError(err).Error("match: failed to notify found item owner")
			return outcome, nil
		}
	}

	m.log.WithFields(logrus.Fields{
		"found_item_id": found.ID.Hex(),
		"lost_item_id":  lost.ID.Hex(),
		"category":      found.Category,
		"score":         score,
	}).Info("match: pair confirmed")

	return outcome, nil
}
