package constants

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func getenv(key string, fallback string) string {
	val := os.Getenv(key)
	if val != "" {
		return val
	}
	return fallback
}

func GetPort() int {
	port, err := strconv.Atoi(getenv("PORT", "8080"))
	if err != nil {
		panic("PORT environment variable is not a number: " + err.Error())
	}
	return port
}

// GetLibraryDriver is the database/sql driver for uploaded scores, either
// "sqlite" or "pgx".
func GetLibraryDriver() string {
	return getenv("LIBRARY_DRIVER", "sqlite")
}

func GetLibraryDSN() string {
	return getenv("LIBRARY_DSN", "./out/library.db")
}

func GetScoresTable() string {
	return getenv("SCORES_TABLE", "practice-scores")
}

func GetDynamoEndpoint() string {
	return getenv("DYNAMODB_ENDPOINT", "http://localhost:8000")
}

func GetAwsRegion() string {
	return getenv("AWS_REGION", "us-east-1")
}

// GetAudioBucket is empty when recordings are not stored in S3; audio URIs
// then have to be supplied directly.
func GetAudioBucket() string {
	return os.Getenv("AUDIO_BUCKET")
}

func GetAudioEndpoint() string {
	return os.Getenv("AUDIO_ENDPOINT")
}

func GetAudioPathStyle() bool {
	return os.Getenv("AUDIO_PATH_STYLE") == "true"
}

func GetAudioURLExpiry() time.Duration {
	return getDuration("AUDIO_URL_EXPIRY_MINUTES", 60, time.Minute)
}

func GetBeatDebounce() time.Duration {
	return getDuration("BEAT_DEBOUNCE_MS", 10, time.Millisecond)
}

func GetCorsOrigins() []string {
	var res []string
	for _, origin := range strings.Split(getenv("CORS_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			res = append(res, origin)
		}
	}
	return res
}

func getDuration(key string, fallback int, unit time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return time.Duration(fallback) * unit
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		panic(key + " environment variable must be a non-negative number")
	}
	return time.Duration(n) * unit
}

const DefaultClickMeasures = 8

const MaxClickMeasures = 1024

const MaxUploadBytes = 16 * 1024 * 1024
