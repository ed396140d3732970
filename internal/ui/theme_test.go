package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTheme_UnknownFallsBackToNightfox(t *testing.T) {
	assert.Equal(t, "Nightfox", GetTheme("").Name)
	assert.Equal(t, "Nightfox", GetTheme("Dracula").Name)
	assert.Equal(t, "Slate", GetTheme("Slate").Name)
}

func TestNextTheme_Cycles(t *testing.T) {
	names := ThemeNames()
	for i, name := range names {
		assert.Equal(t, names[(i+1)%len(names)], NextTheme(name))
	}
	assert.Equal(t, names[0], NextTheme("missing"))
}

func TestThemeNames_ReturnsCopy(t *testing.T) {
	names := ThemeNames()
	names[0] = "changed"
	assert.Equal(t, "Nightfox", ThemeNames()[0])
}

func TestStyles_BadgeUnknownUsesMuted(t *testing.T) {
	s := GetTheme("Nightfox").Styles()
	assert.NotEmpty(t, s.Badge("nope").Render("x"))
	assert.Contains(t, s.Badge(badgeFallback).Render("local-fallback"), "local-fallback")
}
