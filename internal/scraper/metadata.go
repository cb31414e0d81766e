package scraper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/thesavant42/wayback-scraper/internal/models"
)

// MetadataFilename is written inside the output directory
const MetadataFilename = "metadata.json"

// NewMetadataDocument snapshots the intended download set
func NewMetadataDocument(targetURL string, records []models.SnapshotRecord, scrapedAt time.Time) models.MetadataDocument {
	if records == nil {
		records = []models.SnapshotRecord{}
	}
	return models.MetadataDocument{
		URL:            targetURL,
		TotalSnapshots: len(records),
		ScrapedAt:      scrapedAt.Format(time.RFC3339),
		Snapshots:      records,
	}
}

// WriteMetadata writes doc as pretty-printed JSON into outputDir
func WriteMetadata(outputDir string, doc models.MetadataDocument) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}

	path := filepath.Join(outputDir, MetadataFilename)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}
	return path, nil
}

// ReadMetadata loads a metadata.json written by WriteMetadata
func ReadMetadata(path string) (models.MetadataDocument, error) {
	var doc models.MetadataDocument
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("failed to read metadata: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return doc, nil
}
