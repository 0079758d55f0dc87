package chatstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/valkey-io/valkey-go"

	"github.com/oyado/faqbot/internal/domain/chat"
)

// ValkeyStore tracks trending questions in a Valkey-compatible database so
// counters survive restarts and are shared across instances.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "faqbot"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// RecordQuestion bumps the sorted-set counter for the normalized question.
func (s *ValkeyStore) RecordQuestion(ctx context.Context, companyID, question string) error {
	canonical := canonicalize(question)
	if canonical == "" {
		return nil
	}
	if err := s.client.Do(ctx, s.client.B().Zincrby().Key(s.trendingKey(companyID)).Increment(1).Member(canonical).Build()).Error(); err != nil {
		return err
	}
	if display := strings.TrimSpace(question); display != "" {
		_ = s.client.Do(ctx, s.client.B().Set().Key(s.displayKey(companyID, canonical)).Value(display).Nx().Build()).Error()
	}
	return nil
}

// TopQuestions returns the company's most frequent questions.
func (s *ValkeyStore) TopQuestions(ctx context.Context, companyID string, limit int) ([]chat.TrendingQuestion, error) {
	if limit <= 0 {
		limit = 10
	}
	resp := s.client.Do(ctx, s.client.B().Zrevrange().Key(s.trendingKey(companyID)).Start(0).Stop(int64(limit-1)).Withscores().Build())
	arr, err := resp.ToArray()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]chat.TrendingQuestion, 0, len(arr))
	for i := 0; i < len(arr); {
		var (
			member string
			score  float64
		)
		if tuple, tupleErr := arr[i].ToArray(); tupleErr == nil && len(tuple) == 2 {
			// RESP3 returns [member, score] per element
			if member, err = tuple[0].ToString(); err != nil {
				if valkey.IsValkeyNil(err) {
					i++
					continue
				}
				return nil, err
			}
			if score, err = tuple[1].ToFloat64(); err != nil {
				return nil, err
			}
			i++
		} else {
			// RESP2 returns a flat alternating array.
			if i+1 >= len(arr) {
				break
			}
			if member, err = arr[i].ToString(); err != nil {
				if valkey.IsValkeyNil(err) {
					i += 2
					continue
				}
				return nil, err
			}
			if score, err = arr[i+1].ToFloat64(); err != nil {
				return nil, err
			}
			i += 2
		}
		display := s.fetchDisplay(ctx, companyID, member)
		out = append(out, chat.TrendingQuestion{Question: display, Count: int64(score)})
	}
	return out, nil
}

func (s *ValkeyStore) fetchDisplay(ctx context.Context, companyID, canonical string) string {
	resp := s.client.Do(ctx, s.client.B().Get().Key(s.displayKey(companyID, canonical)).Build())
	display, err := resp.ToString()
	if err != nil || display == "" {
		return canonical
	}
	return display
}

func (s *ValkeyStore) trendingKey(companyID string) string {
	return fmt.Sprintf("%s:%s:trending", s.prefix, companyID)
}

func (s *ValkeyStore) displayKey(companyID, canonical string) string {
	return fmt.Sprintf("%s:%s:display:%s", s.prefix, companyID, canonical)
}

var _ chat.TrendingStore = (*ValkeyStore)(nil)
