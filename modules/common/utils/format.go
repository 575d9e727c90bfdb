package utils

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var fileSizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize - 1536 → "1.5 KB"
func FormatFileSize(size int64) string {
	if size <= 0 {
		return "0 Bytes"
	}

	const k = 1024.0
	i := int(math.Floor(math.Log(float64(size)) / math.Log(k)))
	if i >= len(fileSizeUnits) {
		i = len(fileSizeUnits) - 1
	}

	value := float64(size) / math.Pow(k, float64(i))
	value = math.Round(value*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + fileSizeUnits[i]
}

// FormatProcessingTime - 95s → "1m 35s", 42s → "42s"
func FormatProcessingTime(d time.Duration) string {
	seconds := int(d / time.Second)
	minutes := seconds / 60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}

// UniqueFilename - photo.jpg → photo_resized_2024-01-02T03-04-05-000Z.jpg
func UniqueFilename(originalName, suffix string, now time.Time) string {
	timestamp := now.UTC().Format("2006-01-02T15:04:05.000Z")
	timestamp = strings.NewReplacer(":", "-", ".", "-").Replace(timestamp)

	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(originalName, ext)
	return base + suffix + "_" + timestamp + ext
}
