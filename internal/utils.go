package internal

import (
	"strings"

	"github.com/google/uuid"
)

// ArtifactPrefix is prepended to every generated animation filename
const ArtifactPrefix = "sign_result_"

// GenerateArtifactName creates a collision-free filename for a new animation
// Format: sign_result_<32 hex chars>.gif
func GenerateArtifactName() string {
	id := uuid.New()
	return ArtifactPrefix + strings.ReplaceAll(id.String(), "-", "") + ".gif"
}

// NormalizeText trims surrounding whitespace and lowercases recognized text
func NormalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
