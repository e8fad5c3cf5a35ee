package utils

import (
	"testing"

	"campus-findu/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDistanceSamePoint(t *testing.T) {
	loc := models.NewLocation(39.9042, 116.4074)
	assert.Equal(t, 0.0, CalculateDistance(loc, loc))
}

func TestCalculateDistanceSymmetric(t *testing.T) {
	a := models.NewLocation(39.9042, 116.4074)
	b := models.NewLocation(39.9142, 116.4174)
	assert.InDelta(t, CalculateDistance(a, b), CalculateDistance(b, a), 1e-9)
}

func TestCalculateDistanceKnownValue(t *testing.T) {
	// Один градус широты ≈ 111.19 км
	a := models.NewLocation(39.0, 116.0)
	b := models.NewLocation(40.0, 116.0)
	assert.InDelta(t, 111195, CalculateDistance(a, b), 100)
}

func TestCalculateDistanceShortRange(t *testing.T) {
	// ~67 метров по широте
	a := models.NewLocation(39.9042, 116.4074)
	b := models.NewLocation(39.9048, 116.4074)

	d := CalculateDistance(a, b)
	assert.Greater(t, d, 60.0)
	assert.Less(t, d, 75.0)
}
