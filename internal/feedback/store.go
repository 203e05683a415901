// Package feedback collects per-message ratings. The store is
// append-only and deliberately decoupled from the session store:
// records may reference messages it has never seen, and duplicate
// submissions for the same message accumulate.
package feedback

import (
	"sort"
	"sync"
	"time"
)

type Type string

const (
	TypePositive Type = "positive"
	TypeNegative Type = "negative"
)

func (t Type) Valid() bool {
	return t == TypePositive || t == TypeNegative
}

// Record is one rating of one assistant message.
type Record struct {
	MessageID string    `json:"message_id"`
	SessionID string    `json:"session_id"`
	Type      Type      `json:"feedback_type"`
	Query     string    `json:"query,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DayCount is one day of aggregated feedback for trend charts.
type DayCount struct {
	Date     string `json:"date"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
}

// Summary aggregates all collected feedback.
type Summary struct {
	PositiveCount int        `json:"positive_count"`
	NegativeCount int        `json:"negative_count"`
	Total         int        `json:"total"`
	Recent        []Record   `json:"recent"`
	Daily         []DayCount `json:"daily"`
}

const trendDays = 7

// Store holds feedback records in memory.
type Store struct {
	mu          sync.RWMutex
	records     []Record
	recentLimit int
}

func NewStore(recentLimit int) *Store {
	if recentLimit <= 0 {
		recentLimit = 10
	}
	return &Store{recentLimit: recentLimit}
}

// Record appends a feedback entry.
func (s *Store) Record(rec Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Aggregate computes totals, the most recent records, and per-day
// counts for the last week.
func (s *Store) Aggregate() Summary {
	s.mu.RLock()
	records := make([]Record, len(s.records))
	copy(records, s.records)
	limit := s.recentLimit
	s.mu.RUnlock()

	var summary Summary
	summary.Total = len(records)
	for _, r := range records {
		switch r.Type {
		case TypePositive:
			summary.PositiveCount++
		case TypeNegative:
			summary.NegativeCount++
		}
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].Timestamp.After(records[j].Timestamp) })
	if len(records) > limit {
		summary.Recent = records[:limit]
	} else {
		summary.Recent = records
	}

	summary.Daily = dailyCounts(records, time.Now().UTC())
	return summary
}

func dailyCounts(records []Record, now time.Time) []DayCount {
	out := make([]DayCount, 0, trendDays)
	for i := trendDays - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		day := DayCount{Date: date}
		for _, r := range records {
			if r.Timestamp.Format("2006-01-02") != date {
				continue
			}
			switch r.Type {
			case TypePositive:
				day.Positive++
			case TypeNegative:
				day.Negative++
			}
		}
		out = append(out, day)
	}
	return out
}
