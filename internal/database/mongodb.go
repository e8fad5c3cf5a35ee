// internal/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"time"

	"campus-findu/internal/config"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(cfg *config.Config, log *logrus.Logger) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.MongoTimeout)*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(cfg.DatabaseName)

	log.WithField("database", cfg.DatabaseName).Info("connected to MongoDB")

	return &MongoDB{
		Client:   client,
		Database: database,
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}

// CreateIndexes создает индексы для всех коллекций.
// ВАЖНО: используем bson.D вместо map для сохранения порядка ключей.
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	// Индексы для пользователей
	userCollection := m.Database.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	if _, err := userCollection.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	// Индексы для предметов: выборка кандидатов идёт по category+status,
	// ленты — по submitted_at
	itemIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "status", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "submitted_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "location", Value: "2dsphere"}},
		},
	}

	foundCollection := m.Database.Collection("found_items")
	if _, err := foundCollection.Indexes().CreateMany(ctx, itemIndexes); err != nil {
		return fmt.Errorf("failed to create found item indexes: %w", err)
	}

	lostCollection := m.Database.Collection("lost_items")
	lostIndexes := append(itemIndexes, mongo.IndexModel{
		Keys:    bson.D{{Key: "matched_found_item_id", Value: 1}},
		Options: options.Index().SetSparse(true),
	}, mongo.IndexModel{
		Keys:    bson.D{{Key: "matched_at", Value: -1}},
		Options: options.Index().SetSparse(true),
	})
	if _, err := lostCollection.Indexes().CreateMany(ctx, lostIndexes); err != nil {
		return fmt.Errorf("failed to create lost item indexes: %w", err)
	}

	// Индексы для уведомлений
	notificationCollection := m.Database.Collection("notifications")
	notificationIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_read", Value: 1},
			},
		},
	}

	if _, err := notificationCollection.Indexes().CreateMany(ctx, notificationIndexes); err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}

	// Индексы для токенов устройств
	deviceTokenCollection := m.Database.Collection("device_tokens")
	deviceTokenIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "fcm_token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := deviceTokenCollection.Indexes().CreateMany(ctx, deviceTokenIndexes); err != nil {
		return fmt.Errorf("failed to create device token indexes: %w", err)
	}

	return nil
}
