package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBodyType(t *testing.T) {
	bt, ok := ParseBodyType("SUV")
	require.True(t, ok)
	require.Equal(t, BodySUV, bt)

	bt, ok = ParseBodyType("  Hatchback ")
	require.True(t, ok)
	require.Equal(t, BodyHatchback, bt)

	_, ok = ParseBodyType("spaceship")
	require.False(t, ok)
	_, ok = ParseBodyType("")
	require.False(t, ok)
}

func TestVehicle_Title(t *testing.T) {
	v := Vehicle{Year: 2021, Make: "Toyota", Model: "Camry"}
	require.Equal(t, "2021 Toyota Camry", v.Title())
}

func TestSlide_TextVisible(t *testing.T) {
	require.True(t, Slide{}.TextVisible())
	off := false
	require.False(t, Slide{ShowText: &off}.TextVisible())
}

func TestDefaultHeroSlides(t *testing.T) {
	s := DefaultHeroSlides()
	require.Len(t, s, 3)
	for _, sl := range s {
		require.NotEmpty(t, sl.Image)
		require.NotEmpty(t, sl.CTAs)
	}
}
