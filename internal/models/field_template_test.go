package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFieldTemplate(t *testing.T) {
	tmpl := GetFieldTemplate(CategoryKeys)
	assert.Equal(t, CategoryKeys, tmpl.Category)
	assert.Len(t, tmpl.Fields, 4)
	assert.Equal(t, "钥匙串数量", tmpl.Fields[0].Label)

	// Категории без собственной формы получают общую
	fallback := GetFieldTemplate(CategoryWallet)
	assert.Equal(t, CategoryWallet, fallback.Category)
	assert.Len(t, fallback.Fields, 1)
	assert.Equal(t, "物品描述", fallback.Fields[0].Label)
}

func TestKeyFieldsForCategory(t *testing.T) {
	assert.Equal(t, []string{"钥匙串数量", "钥匙颜色"}, KeyFieldsForCategory(CategoryKeys))
	assert.Equal(t, []string{"证件号后四位", "卡套颜色"}, KeyFieldsForCategory(CategoryCampusCard))
	assert.Nil(t, KeyFieldsForCategory(CategoryWallet))
	assert.Nil(t, KeyFieldsForCategory(CategoryOthers))
}

func TestMatchThresholdForCategory(t *testing.T) {
	assert.Equal(t, 0.9, MatchThresholdForCategory(CategoryCampusCard))
	assert.Equal(t, 0.75, MatchThresholdForCategory(CategoryWallet))
	assert.Equal(t, 0.6, MatchThresholdForCategory("something_else"))
}

func TestIsValidCategory(t *testing.T) {
	for _, c := range AllCategories {
		assert.True(t, IsValidCategory(c), c)
	}
	assert.False(t, IsValidCategory(""))
	assert.False(t, IsValidCategory("bicycle"))
}

func TestIsSearchingTreatsLegacyEmptyStatus(t *testing.T) {
	assert.True(t, IsSearching(""))
	assert.True(t, IsSearching(ItemStatusSearching))
	assert.False(t, IsSearching(ItemStatusMatched))
	assert.False(t, IsSearching(ItemStatusCompleted))
}

func TestLocationHelpers(t *testing.T) {
	loc := NewLocation(39.9042, 116.4074)
	assert.Equal(t, "Point", loc.Type)
	assert.Equal(t, 39.9042, loc.Latitude())
	assert.Equal(t, 116.4074, loc.Longitude())
}
