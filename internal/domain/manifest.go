package domain

import (
	"time"

	"github.com/google/uuid"
)

// ManifestEntry describes one chart written to an archive.
type ManifestEntry struct {
	Turbine  string   `json:"turbine"`
	Model    string   `json:"model"`
	Filename string   `json:"filename"`
	Metadata Metadata `json:"metadata"`

	// Points is the number of plotted operating points.
	Points int `json:"points"`

	// Dropped counts records excluded for a missing wind speed or power value.
	Dropped   int  `json:"dropped"`
	Reference bool `json:"reference_curve"`
	Renamed   bool `json:"renamed,omitempty"`
}

// Manifest summarizes one archive for downstream consumers.
type Manifest struct {
	RunID       string          `json:"run_id"`
	Archive     string          `json:"archive"`
	GeneratedAt time.Time       `json:"generated_at"`
	SizeBytes   int64           `json:"size_bytes"`
	Entries     []ManifestEntry `json:"entries"`
}

// NewManifest starts a manifest for an archive named after the current clock.
// Archive names have one-second resolution; RunID tells apart runs that share one.
func NewManifest() Manifest {
	now := clock.Now().UTC()
	return Manifest{RunID: uuid.NewString(), Archive: ArchiveName(now), GeneratedAt: now}
}
