// internal/services/notification.go
package services

import (
	"context"
	"fmt"
	"time"

	"campus-findu/internal/config"
	"campus-findu/internal/models"
	"campus-findu/internal/websocket"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationService сохраняет уведомление в базе, отдаёт его в
// websocket-хаб и пушит через FCM. Реализует matching.NotificationSink.
type NotificationService struct {
	config                 *config.Config
	notificationCollection *mongo.Collection
	deviceTokenCollection  *mongo.Collection
	hub                    *websocket.Hub
	fcmClient              *resty.Client
	log                    *logrus.Logger
}

type FCMMessage struct {
	RegistrationIDs []string               `json:"registration_ids,omitempty"`
	Notification    FCMNotification        `json:"notification"`
	Data            map[string]interface{} `json:"data,omitempty"`
	Priority        string                 `json:"priority"`
	TimeToLive      int                    `json:"time_to_live,omitempty"`
}

type FCMNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
	Sound string `json:"sound,omitempty"`
}

type FCMResponse struct {
	MulticastID int64       `json:"multicast_id"`
	Success     int         `json:"success"`
	Failure     int         `json:"failure"`
	Results     []FCMResult `json:"results"`
}

type FCMResult struct {
	MessageID      string `json:"message_id,omitempty"`
	RegistrationID string `json:"registration_id,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Токен устройства пользователя
type DeviceToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	FCMToken  string             `bson:"fcm_token" json:"fcm_token"`
	Platform  string             `bson:"platform" json:"platform"` // android, ios, web
	IsActive  bool               `bson:"is_active" json:"is_active"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

const FCMEndpoint = "https://fcm.googleapis.com/fcm/send"

func NewNotificationService(
	cfg *config.Config,
	notificationCollection, deviceTokenCollection *mongo.Collection,
	hub *websocket.Hub,
	log *logrus.Logger,
) *NotificationService {
	return &NotificationService{
		config:                 cfg,
		notificationCollection: notificationCollection,
		deviceTokenCollection:  deviceTokenCollection,
		hub:                    hub,
		fcmClient: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("Content-Type", "application/json"),
		log: log,
	}
}

// Send сохраняет уведомление и рассылает его по каналам доставки.
// Ошибка возвращается только если не удалось сохранить документ: сбой
// push-доставки логируется и не считается ошибкой отправки.
func (ns *NotificationService) Send(ctx context.Context, userID primitive.ObjectID, title, body string, relatedItemID primitive.ObjectID) error {
	notification := models.Notification{
		UserID:        userID,
		Type:          models.NotificationTypeMatch,
		Title:         title,
		Body:          body,
		RelatedItemID: &relatedItemID,
		IsRead:        false,
		IsSent:        false,
		CreatedAt:     time.Now(),
	}

	result, err := ns.notificationCollection.InsertOne(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	notification.ID = result.InsertedID.(primitive.ObjectID)

	// Real-time канал для открытого приложения
	if ns.hub != nil {
		ns.hub.SendToUser(userID.Hex(), websocket.Message{
			Type: "notification",
			Data: notification,
		})
	}

	// Push-канал, best-effort
	tokens, err := ns.getUserFCMTokens(ctx, userID)
	if err != nil {
		ns.log.WithError(err).Warn("notification: failed to load device tokens")
		return nil
	}

	if len(tokens) == 0 {
		ns.markNotificationAsSent(ctx, notification.ID)
		return nil
	}

	if err := ns.sendFCMNotification(tokens, title, body, map[string]interface{}{
		"notification_id": notification.ID.Hex(),
		"related_item_id": relatedItemID.Hex(),
		"action":          "open_match_result",
	}); err != nil {
		ns.log.WithError(err).Warn("notification: FCM delivery failed")
		return nil
	}

	ns.markNotificationAsSent(ctx, notification.ID)
	return nil
}

// SendSystemNotification — служебное уведомление без привязки к предмету.
func (ns *NotificationService) SendSystemNotification(ctx context.Context, userID primitive.ObjectID, title, body string) error {
	notification := models.Notification{
		UserID:    userID,
		Type:      models.NotificationTypeSystem,
		Title:     title,
		Body:      body,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if _, err := ns.notificationCollection.InsertOne(ctx, notification); err != nil {
		return fmt.Errorf("failed to save system notification: %w", err)
	}
	return nil
}

// RegisterDevice сохраняет или реактивирует FCM-токен устройства.
func (ns *NotificationService) RegisterDevice(ctx context.Context, userID primitive.ObjectID, fcmToken, platform string) error {
	now := time.Now()
	_, err := ns.deviceTokenCollection.UpdateOne(ctx,
		bson.M{"fcm_token": fcmToken},
		bson.M{
			"$set": bson.M{
				"user_id":    userID,
				"platform":   platform,
				"is_active":  true,
				"updated_at": now,
			},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to register device token: %w", err)
	}
	return nil
}

func (ns *NotificationService) UnregisterDevice(ctx context.Context, userID primitive.ObjectID, fcmToken string) error {
	_, err := ns.deviceTokenCollection.UpdateOne(ctx,
		bson.M{"fcm_token": fcmToken, "user_id": userID},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to unregister device token: %w", err)
	}
	return nil
}

// Вспомогательные функции

func (ns *NotificationService) getUserFCMTokens(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	cursor, err := ns.deviceTokenCollection.Find(ctx, bson.M{
		"user_id":   userID,
		"is_active": true,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tokens []string
	for cursor.Next(ctx) {
		var deviceToken DeviceToken
		if err := cursor.Decode(&deviceToken); err != nil {
			continue
		}
		tokens = append(tokens, deviceToken.FCMToken)
	}
	return tokens, nil
}

func (ns *NotificationService) sendFCMNotification(tokens []string, title, body string, data map[string]interface{}) error {
	if ns.config.FirebaseKey == "" {
		return fmt.Errorf("firebase key is not configured")
	}

	// Лимит FCM — 1000 токенов на запрос
	batchSize := 1000
	for i := 0; i < len(tokens); i += batchSize {
		end := i + batchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		if err := ns.sendFCMBatch(tokens[i:end], title, body, data); err != nil {
			return err
		}
	}
	return nil
}

func (ns *NotificationService) sendFCMBatch(tokens []string, title, body string, data map[string]interface{}) error {
	message := FCMMessage{
		RegistrationIDs: tokens,
		Notification: FCMNotification{
			Title: title,
			Body:  body,
			Icon:  "ic_notification",
			Sound: "default",
		},
		Data:       data,
		Priority:   "high",
		TimeToLive: 3600,
	}

	var fcmResp FCMResponse
	resp, err := ns.fcmClient.R().
		SetHeader("Authorization", "key="+ns.config.FirebaseKey).
		SetBody(message).
		SetResult(&fcmResp).
		Post(FCMEndpoint)
	if err != nil {
		return fmt.Errorf("failed to send FCM request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("FCM request failed with status: %d", resp.StatusCode())
	}

	ns.handleFCMResponse(fcmResp, tokens)
	return nil
}

// handleFCMResponse деактивирует мёртвые токены и подхватывает canonical ID.
func (ns *NotificationService) handleFCMResponse(response FCMResponse, tokens []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i, result := range response.Results {
		if i >= len(tokens) {
			break
		}
		token := tokens[i]

		if result.Error == "NotRegistered" || result.Error == "InvalidRegistration" {
			ns.deviceTokenCollection.UpdateOne(ctx,
				bson.M{"fcm_token": token},
				bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}},
			)
		}

		if result.RegistrationID != "" {
			ns.deviceTokenCollection.UpdateOne(ctx,
				bson.M{"fcm_token": token},
				bson.M{"$set": bson.M{"fcm_token": result.RegistrationID, "updated_at": time.Now()}},
			)
		}
	}
}

func (ns *NotificationService) markNotificationAsSent(ctx context.Context, notificationID primitive.ObjectID) {
	ns.notificationCollection.UpdateOne(ctx,
		bson.M{"_id": notificationID},
		bson.M{"$set": bson.M{"is_sent": true}},
	)
}
