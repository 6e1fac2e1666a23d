package tracker

import "sync"

// SourceStats accumulates per-source and per-language event counts. It is
// safe for concurrent use by consumer claims.
type SourceStats struct {
	mu         sync.Mutex
	total      int64
	bySource   map[string]int64
	byLanguage map[string]int64
}

// NewSourceStats returns an empty collector.
func NewSourceStats() *SourceStats {
	return &SourceStats{
		bySource:   map[string]int64{},
		byLanguage: map[string]int64{},
	}
}

// Record counts one event.
func (s *SourceStats) Record(event *ArticleEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	source := event.Source
	if source == "" {
		source = "direct"
	}
	s.bySource[source]++
	if event.Language != "" {
		s.byLanguage[event.Language]++
	}
}

// Snapshot returns copies of the current counts.
func (s *SourceStats) Snapshot() (total int64, bySource, byLanguage map[string]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySource = make(map[string]int64, len(s.bySource))
	for k, v := range s.bySource {
		bySource[k] = v
	}
	byLanguage = make(map[string]int64, len(s.byLanguage))
	for k, v := range s.byLanguage {
		byLanguage[k] = v
	}
	return s.total, bySource, byLanguage
}
