package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	UserID        primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Type          string              `bson:"type" json:"type"`
	Title         string              `bson:"title" json:"title"`
	Body          string              `bson:"body" json:"body"`
	RelatedItemID *primitive.ObjectID `bson:"related_item_id,omitempty" json:"related_item_id,omitempty"`
	IsRead        bool                `bson:"is_read" json:"is_read"`
	IsSent        bool                `bson:"is_sent" json:"is_sent"`
	ReadAt        *time.Time          `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
}

// Типы уведомлений
const (
	NotificationTypeMatch  = "match"
	NotificationTypeClue   = "clue"
	NotificationTypeSystem = "system"
)
