package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoJSON Point, координаты в порядке [longitude, latitude]
type Location struct {
	Type        string    `bson:"type" json:"type" validate:"required"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates" validate:"required,coordinates"`
}

func NewLocation(latitude, longitude float64) Location {
	return Location{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
	}
}

func (l Location) Longitude() float64 {
	if len(l.Coordinates) != 2 {
		return 0
	}
	return l.Coordinates[0]
}

func (l Location) Latitude() float64 {
	if len(l.Coordinates) != 2 {
		return 0
	}
	return l.Coordinates[1]
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string             `bson:"email" json:"email" validate:"required,email"`
	Phone        string             `bson:"phone" json:"phone" validate:"omitempty,min=10,max=15"`
	PasswordHash string             `bson:"password_hash" json:"-"`

	// Личная информация
	Username   string `bson:"username" json:"username" validate:"required,min=2,max=50"`
	Campus     string `bson:"campus" json:"campus"`
	ProfilePic string `bson:"profile_pic" json:"profile_pic"`

	IsBlocked bool `bson:"is_blocked" json:"is_blocked"`

	// Временные метки
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
}
