package constants

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LIBRARY_DRIVER", "LIBRARY_DSN", "SCORES_TABLE", "BEAT_DEBOUNCE_MS", "CORS_ORIGINS", "AUDIO_BUCKET", "AUDIO_PATH_STYLE"} {
		t.Setenv(key, "")
	}

	assert := assert.New(t)
	assert.Equal(8080, GetPort())
	assert.Equal("sqlite", GetLibraryDriver())
	assert.Equal("./out/library.db", GetLibraryDSN())
	assert.Equal("practice-scores", GetScoresTable())
	assert.Equal(10*time.Millisecond, GetBeatDebounce())
	assert.Equal([]string{"*"}, GetCorsOrigins())
	assert.Equal("", GetAudioBucket())
	assert.False(GetAudioPathStyle())
}

func TestOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BEAT_DEBOUNCE_MS", "0")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://practice.example.com,")
	t.Setenv("AUDIO_PATH_STYLE", "true")
	t.Setenv("AUDIO_URL_EXPIRY_MINUTES", "5")

	assert := assert.New(t)
	assert.Equal(9090, GetPort())
	assert.Equal(time.Duration(0), GetBeatDebounce())
	assert.Equal([]string{"http://localhost:3000", "https://practice.example.com"}, GetCorsOrigins())
	assert.True(GetAudioPathStyle())
	assert.Equal(5*time.Minute, GetAudioURLExpiry())
}

func TestBadNumberPanics(t *testing.T) {
	t.Setenv("BEAT_DEBOUNCE_MS", "soon")
	assert.Panics(t, func() { GetBeatDebounce() })
}
