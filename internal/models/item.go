// internal/models/item.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FoundItem is a record of an item someone picked up on campus.
type FoundItem struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OwnerID primitive.ObjectID `bson:"owner_id" json:"owner_id" validate:"required"`

	Category string            `bson:"category" json:"category" validate:"required,itemcategory"`
	Features map[string]string `bson:"features" json:"features"`

	// Where the item was picked up
	Location Location `bson:"location" json:"location" validate:"required"`
	Address  string   `bson:"address" json:"address"`

	ImagePath string `bson:"image_path,omitempty" json:"image_path,omitempty"`

	FoundAt     time.Time `bson:"found_at" json:"found_at" validate:"required"`
	SubmittedAt time.Time `bson:"submitted_at" json:"submitted_at"`

	Status    string     `bson:"status" json:"status"`
	MatchedAt *time.Time `bson:"matched_at,omitempty" json:"matched_at,omitempty"`
}

// LostItem is a record of an item someone is searching for.
type LostItem struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OwnerID primitive.ObjectID `bson:"owner_id" json:"owner_id" validate:"required"`

	Category string            `bson:"category" json:"category" validate:"required,itemcategory"`
	Features map[string]string `bson:"features" json:"features"`

	// Last known location
	Location Location `bson:"location" json:"location" validate:"required"`
	Address  string   `bson:"address" json:"address"`

	LostAt      time.Time `bson:"lost_at" json:"lost_at" validate:"required"`
	SubmittedAt time.Time `bson:"submitted_at" json:"submitted_at"`

	Status             string              `bson:"status" json:"status"`
	MatchedFoundItemID *primitive.ObjectID `bson:"matched_found_item_id,omitempty" json:"matched_found_item_id,omitempty"`
	MatchedAt          *time.Time          `bson:"matched_at,omitempty" json:"matched_at,omitempty"`
}

// Категории предметов
const (
	CategoryCampusCard  = "campus_card"
	CategoryKeys        = "keys"
	CategoryHeadphones  = "headphones"
	CategoryWallet      = "wallet"
	CategoryClothes     = "clothes"
	CategoryBackpack    = "backpack"
	CategoryElectronics = "electronics"
	CategoryOthers      = "others"
)

// Статусы предметов. Старые записи могут иметь пустой статус,
// он везде трактуется как searching.
const (
	ItemStatusSearching = "searching"
	ItemStatusMatched   = "matched"
	ItemStatusCompleted = "completed"
)

var AllCategories = []string{
	CategoryCampusCard,
	CategoryKeys,
	CategoryHeadphones,
	CategoryWallet,
	CategoryClothes,
	CategoryBackpack,
	CategoryElectronics,
	CategoryOthers,
}

func IsValidCategory(category string) bool {
	for _, c := range AllCategories {
		if c == category {
			return true
		}
	}
	return false
}

// IsSearching учитывает пустой legacy-статус.
func IsSearching(status string) bool {
	return status == "" || status == ItemStatusSearching
}

func (f *FoundItem) IsSearching() bool { return IsSearching(f.Status) }
func (l *LostItem) IsSearching() bool  { return IsSearching(l.Status) }

func (f *FoundItem) IsMatched() bool { return f.Status == ItemStatusMatched }
func (l *LostItem) IsMatched() bool  { return l.Status == ItemStatusMatched }

func (l *LostItem) DaysOpen() int {
	if l.MatchedAt != nil {
		return int(l.MatchedAt.Sub(l.SubmittedAt).Hours() / 24)
	}
	return int(time.Since(l.SubmittedAt).Hours() / 24)
}

// Локализованные названия категорий для мобильного клиента
func GetCategoryDisplayName(category string) string {
	names := map[string]string{
		CategoryCampusCard:  "校园卡",
		CategoryKeys:        "钥匙",
		CategoryHeadphones:  "耳机",
		CategoryWallet:      "钱包",
		CategoryClothes:     "衣物",
		CategoryBackpack:    "背包",
		CategoryElectronics: "电子产品",
		CategoryOthers:      "其他",
	}
	if name, exists := names[category]; exists {
		return name
	}
	return category
}
