package utils

import (
	"math"

	"github.com/heritage-sites-service/internal/domain"
)

const earthRadiusKm = 6371.0

// HaversineDistance вычисляет расстояние между двумя точками в километрах
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// KmBetween - расстояние между двумя точками в километрах.
// Для совпадающих точек возвращает строго 0; NaN на входе даёт NaN на выходе.
func KmBetween(a, b domain.Point) float64 {
	if a == b {
		return 0
	}
	return HaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon)
}

// RoundKm округляет дистанцию до двух знаков для хранения и отображения
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
