package utils

import (
	"math"

	"campus-findu/internal/models"
)

// Вычисляет расстояние между двумя точками в метрах используя формулу Haversine
func CalculateDistance(loc1, loc2 models.Location) float64 {
	const earthRadiusMeters = 6371000

	lat1Rad := toRadians(loc1.Latitude())
	lon1Rad := toRadians(loc1.Longitude())
	lat2Rad := toRadians(loc2.Latitude())
	lon2Rad := toRadians(loc2.Longitude())

	deltaLat := lat2Rad - lat1Rad
	deltaLon := lon2Rad - lon1Rad

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
