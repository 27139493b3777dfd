package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heritage-sites-service/internal/domain"
)

func TestKmBetween_SamePoint(t *testing.T) {
	points := []domain.Point{
		{Lat: 0, Lon: 0},
		{Lat: 6.9271, Lon: 79.8612},
		{Lat: -45.5, Lon: 170.2},
	}

	for _, p := range points {
		assert.Equal(t, 0.0, KmBetween(p, p))
	}
}

func TestKmBetween_Symmetry(t *testing.T) {
	a := domain.Point{Lat: 6.9271, Lon: 79.8612}
	b := domain.Point{Lat: 7.2906, Lon: 80.6337}

	assert.Equal(t, KmBetween(a, b), KmBetween(b, a))
}

func TestKmBetween_ColomboToKandy(t *testing.T) {
	colombo := domain.Point{Lat: 6.9271, Lon: 79.8612}
	kandy := domain.Point{Lat: 7.2906, Lon: 80.6337}

	// Great-circle distance; the road between the cities runs ~116 km
	km := KmBetween(colombo, kandy)
	assert.InDelta(t, 94.3, km, 2.0)
}

func TestKmBetween_NaNPropagates(t *testing.T) {
	a := domain.Point{Lat: math.NaN(), Lon: 79.8612}
	b := domain.Point{Lat: 7.2906, Lon: 80.6337}

	assert.True(t, math.IsNaN(KmBetween(a, b)))
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 116.04, RoundKm(116.0444))
	assert.Equal(t, 116.05, RoundKm(116.0451))
	assert.Equal(t, 0.0, RoundKm(0))
}

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, ValidateCoordinates(6.9271, 79.8612))
	assert.True(t, ValidateCoordinates(-90, 180))
	assert.False(t, ValidateCoordinates(90.1, 0))
	assert.False(t, ValidateCoordinates(0, -180.5))
}
