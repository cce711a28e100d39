package sponsor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/listenupapp/chapter-timeline/internal/timeline"
)

// Static serves intervals from memory. It backs the sponsor data file and
// tests.
type Static struct {
	mu   sync.RWMutex
	data map[string][]timeline.Interval
}

// NewStatic creates a source over data. The map is copied.
func NewStatic(data map[string][]timeline.Interval) *Static {
	s := &Static{}
	s.Replace(data)
	return s
}

// LoadFile reads a sponsor data file, an object mapping video IDs to interval
// lists.
func LoadFile(path string) (*Static, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sponsor data: %w", err)
	}

	var data map[string][]timeline.Interval
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse sponsor data %s: %w", path, err)
	}
	return NewStatic(data), nil
}

// ParseIntervals decodes either a bare interval list or an object keyed by
// video ID. For the keyed form, videoID selects the list; an empty videoID is
// only valid when the object holds exactly one video.
func ParseIntervals(raw []byte, videoID string) ([]timeline.Interval, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []timeline.Interval
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("parse intervals: %w", err)
		}
		return list, nil
	}

	var keyed map[string][]timeline.Interval
	if err := json.Unmarshal(trimmed, &keyed); err != nil {
		return nil, fmt.Errorf("parse intervals: %w", err)
	}
	if videoID != "" {
		list, ok := keyed[videoID]
		if !ok {
			return nil, fmt.Errorf("video %q: %w", videoID, ErrNoData)
		}
		return list, nil
	}
	if len(keyed) != 1 {
		return nil, fmt.Errorf("sponsor data holds %d videos, pick one", len(keyed))
	}
	var only []timeline.Interval
	for _, list := range keyed {
		only = list
	}
	return only, nil
}

// Segments implements Source.
func (s *Static) Segments(ctx context.Context, videoID string) ([]timeline.Interval, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.data[videoID]
	if !ok {
		return nil, ErrNoData
	}
	return slices.Clone(list), nil
}

// Set stores the intervals for one video.
func (s *Static) Set(videoID string, intervals []timeline.Interval) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[videoID] = slices.Clone(intervals)
}

// Replace swaps the whole data set.
func (s *Static) Replace(data map[string][]timeline.Interval) {
	copied := make(map[string][]timeline.Interval, len(data))
	for id, list := range data {
		copied[id] = slices.Clone(list)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = copied
}

// Len returns the number of videos with data.
func (s *Static) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
