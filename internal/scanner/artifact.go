package scanner

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/blackeagle-id/blackeagle/internal/models"
)

const (
	artifactSuffix = "_blackbird"
	pollInterval   = 250 * time.Millisecond

	statusFound = "FOUND"
)

// collect waits briefly for the result artifact to appear, then parses
// it. The boolean reports whether an artifact was found at all; parse
// failures on a malformed artifact yield (nil, true).
func (b *Bridge) collect(ctx context.Context, value string) ([]models.PresenceResult, bool) {
	path, ok := b.awaitArtifact(ctx, value)
	if !ok {
		return nil, false
	}
	return parseArtifact(path), true
}

// awaitArtifact locates the artifact for value, watching the results
// directory for a bounded grace period when it has not been written
// yet. The watch uses fsnotify with a poll fallback; either way the
// wait is capped by awaitGrace so a crashed tool cannot stall the
// investigation.
func (b *Bridge) awaitArtifact(ctx context.Context, value string) (string, bool) {
	if path, ok := b.locateArtifact(value); ok {
		return path, true
	}

	deadline := time.NewTimer(b.awaitGrace)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var events chan fsnotify.Event
	if watcher, err := fsnotify.NewWatcher(); err == nil {
		defer watcher.Close()
		if err := watcher.Add(b.resultsDir); err == nil {
			events = make(chan fsnotify.Event, 16)
			go func() {
				for {
					select {
					case ev, ok := <-watcher.Events:
						if !ok {
							return
						}
						select {
						case events <- ev:
						default:
						}
					case <-watcher.Errors:
					}
				}
			}()
		} else {
			log.Debug().Err(err).Str("dir", b.resultsDir).Msg("Results directory not watchable; polling instead")
		}
	}

	for {
		select {
		case <-ctx.Done():
			return "", false
		case <-deadline.C:
			return b.locateArtifact(value)
		case <-ticker.C:
			if path, ok := b.locateArtifact(value); ok {
				return path, true
			}
		case <-events:
			if path, ok := b.locateArtifact(value); ok {
				return path, true
			}
		}
	}
}

// locateArtifact searches the results directory for the artifact
// belonging to value. The match is delimiter-anchored: the directory
// name must be exactly the query value, an underscore, a timestamp
// segment, and the fixed suffix, so a query of "user" cannot match the
// artifact of "user@example.com".
func (b *Bridge) locateArtifact(value string) (string, bool) {
	entries, err := os.ReadDir(b.resultsDir)
	if err != nil {
		return "", false
	}

	prefix := value + "_"
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, artifactSuffix) {
			continue
		}
		dir := filepath.Join(b.resultsDir, name)
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, file := range files {
			if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
				continue
			}
			return filepath.Join(dir, file.Name()), true
		}
	}
	return "", false
}

// siteEntry mirrors one site-check object in the tool's JSON output.
// Older tool versions use "platform" where newer ones use "name".
type siteEntry struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Status   string `json:"status"`
	Category string `json:"category"`
}

// parseArtifact reads and normalizes the artifact JSON, which is either
// a flat array of site checks or an object carrying the array under a
// "sites" key. Only entries with a found status contribute results;
// everything else, including a malformed artifact, is discarded.
func parseArtifact(path string) []models.PresenceResult {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Unable to read scanner artifact")
		return nil
	}

	sites, err := normalizeSites(data)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Malformed scanner artifact")
		return nil
	}

	var results []models.PresenceResult
	for _, site := range sites {
		if site.Status != statusFound {
			continue
		}
		platform := site.Name
		if platform == "" {
			platform = site.Platform
		}
		if platform == "" {
			platform = "Unknown"
		}
		category := site.Category
		if category == "" {
			category = "unknown"
		}
		results = append(results, models.PresenceResult{
			Platform: platform,
			URL:      site.URL,
			Exists:   true,
			Category: category,
		})
	}
	return results
}

func normalizeSites(data []byte) ([]siteEntry, error) {
	var sites []siteEntry
	if err := json.Unmarshal(data, &sites); err == nil {
		return sites, nil
	}

	var wrapped struct {
		Sites []siteEntry `json:"sites"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Sites, nil
}
