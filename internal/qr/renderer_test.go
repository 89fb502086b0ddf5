package qr

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRender_Defaults(t *testing.T) {
	png, err := Render("https://reviews.example.com/r/cafe-milano", Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRender_CustomOptions(t *testing.T) {
	png, err := Render("https://reviews.example.com/r/cafe-milano", Options{
		Size:            512,
		ForegroundColor: "#1A2B3C",
		BackgroundColor: "#fefefe",
		ErrorCorrection: "h",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRender_SizeOutOfRange(t *testing.T) {
	_, err := Render("content", Options{Size: 64})
	assert.Error(t, err)

	_, err = Render("content", Options{Size: 2048})
	assert.Error(t, err)
}

func TestRender_BadColor(t *testing.T) {
	_, err := Render("content", Options{ForegroundColor: "red"})
	assert.Error(t, err)

	_, err = Render("content", Options{BackgroundColor: "#12345"})
	assert.Error(t, err)
}

func TestRender_BadErrorCorrection(t *testing.T) {
	_, err := Render("content", Options{ErrorCorrection: "X"})
	assert.Error(t, err)
}

func TestRecoveryLevelMapping(t *testing.T) {
	for _, ec := range []string{"L", "M", "Q", "H", "l", "m", "q", "h"} {
		_, err := recoveryLevel(ec)
		assert.NoError(t, err, "level %q", ec)
	}
}
