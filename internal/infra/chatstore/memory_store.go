package chatstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oyado/faqbot/internal/domain/chat"
)

type companyCounters struct {
	counts   map[string]int64
	displays map[string]string
}

// MemoryStore is an in-memory chat.TrendingStore used for tests/dev.
type MemoryStore struct {
	mu        sync.RWMutex
	companies map[string]*companyCounters
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{companies: make(map[string]*companyCounters)}
}

// RecordQuestion bumps the counter for the normalized question.
func (s *MemoryStore) RecordQuestion(_ context.Context, companyID, question string) error {
	canonical := canonicalize(question)
	if canonical == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	counters, ok := s.companies[companyID]
	if !ok {
		counters = &companyCounters{
			counts:   make(map[string]int64),
			displays: make(map[string]string),
		}
		s.companies[companyID] = counters
	}
	counters.counts[canonical]++
	if _, exists := counters.displays[canonical]; !exists {
		counters.displays[canonical] = strings.TrimSpace(question)
	}
	return nil
}

// TopQuestions returns the company's most frequent questions.
func (s *MemoryStore) TopQuestions(_ context.Context, companyID string, limit int) ([]chat.TrendingQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counters, ok := s.companies[companyID]
	if !ok {
		return nil, nil
	}
	if limit <= 0 {
		limit = len(counters.counts)
	}
	items := make([]chat.TrendingQuestion, 0, len(counters.counts))
	for canonical, count := range counters.counts {
		display := counters.displays[canonical]
		if display == "" {
			display = canonical
		}
		items = append(items, chat.TrendingQuestion{Question: display, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Question < items[j].Question
		}
		return items[i].Count > items[j].Count
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func canonicalize(question string) string {
	return strings.Join(strings.Fields(strings.ToLower(question)), " ")
}

var _ chat.TrendingStore = (*MemoryStore)(nil)
