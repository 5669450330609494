package util

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var youtubeRegex = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)

// YouTubeID extracts the 11 character video id from any of the usual YouTube URL forms.
func YouTubeID(locator string) (string, bool) {
	m := youtubeRegex.FindStringSubmatch(locator)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// VideoURLValidator is registered on the gin binding engine as "videourl".
func VideoURLValidator(fl validator.FieldLevel) bool {
	_, ok := YouTubeID(fl.Field().String())
	return ok
}
