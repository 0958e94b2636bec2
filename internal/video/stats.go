package video

import (
	"sync"
	"time"
)

type Stats struct {
	TotalGenerations int64     `json:"totalGenerations"`
	Successful       int64     `json:"successful"`
	Failed           int64     `json:"failed"`
	TotalDuration    int64     `json:"totalDuration"`
	LastGeneration   time.Time `json:"lastGeneration"`
	MostUsedStyle    string    `json:"mostUsedStyle"`
	MostUsedModel    string    `json:"mostUsedModel"`
}

type StatsRecorder struct {
	mu     sync.Mutex
	stats  Stats
	styles map[string]int64
	models map[string]int64
	now    func() time.Time
}

func NewStatsRecorder(now func() time.Time) *StatsRecorder {
	if now == nil {
		now = time.Now
	}
	return &StatsRecorder{
		styles: map[string]int64{},
		models: map[string]int64{},
		now:    now,
	}
}

func (s *StatsRecorder) Record(req Request, model string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TotalGenerations++
	s.stats.LastGeneration = s.now()

	if err != nil {
		s.stats.Failed++
		return
	}

	s.stats.Successful++
	s.stats.TotalDuration += int64(req.Duration)
	if req.Style != "" {
		s.styles[req.Style]++
	}
	if model != "" {
		s.models[model]++
	}
}

func (s *StatsRecorder) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.stats
	out.MostUsedStyle = mostUsed(s.styles)
	out.MostUsedModel = mostUsed(s.models)
	return out
}

// mostUsed breaks ties by name so the answer is stable.
func mostUsed(counts map[string]int64) string {
	var best string
	var bestCount int64
	for name, n := range counts {
		if n > bestCount || (n == bestCount && name < best) {
			best, bestCount = name, n
		}
	}
	return best
}
