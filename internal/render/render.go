// Package render writes packaged journeys to disk as JSON documents in
// the shape the mobile client consumes.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"microlearn/internal/pipeline"
)

// unsafeFilename matches everything that has no place in a filename.
var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

// WriteJourney serializes the journey into outputDir and returns the path
// of the written file. The filename combines the slugified topic with the
// generation date so repeated runs do not overwrite each other's days.
func WriteJourney(journey *pipeline.Journey, outputDir string, pretty bool) (string, error) {
	if journey == nil {
		return "", fmt.Errorf("journey is nil")
	}
	if outputDir == "" {
		outputDir = "packages"
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filename := fmt.Sprintf("%s_%s.json", Slug(journey.Topic), time.Now().UTC().Format("2006-01-02"))
	path := filepath.Join(outputDir, filename)

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(journey, "", "  ")
	} else {
		data, err = json.Marshal(journey)
	}
	if err != nil {
		return "", fmt.Errorf("failed to serialize journey %s: %w", journey.ID, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Slug reduces a topic to a lowercase ASCII filename stem. Accented
// characters common in Portuguese titles are transliterated rather than
// dropped.
func Slug(topic string) string {
	folded := strings.ToLower(strings.TrimSpace(topic))
	replacer := strings.NewReplacer(
		"á", "a", "à", "a", "â", "a", "ã", "a",
		"é", "e", "ê", "e", "í", "i",
		"ó", "o", "ô", "o", "õ", "o",
		"ú", "u", "ü", "u", "ç", "c",
	)
	folded = replacer.Replace(folded)
	folded = unsafeFilename.ReplaceAllString(folded, "-")
	folded = strings.Trim(folded, "-")
	if folded == "" {
		return "journey"
	}
	if len(folded) > 60 {
		folded = strings.Trim(folded[:60], "-")
	}
	return folded
}
