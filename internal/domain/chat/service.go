package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oyado/faqbot/internal/domain/faq"
	"github.com/oyado/faqbot/internal/domain/tenant"
	"github.com/oyado/faqbot/internal/infra/embedding"
	apperrors "github.com/oyado/faqbot/pkg/errors"
	"github.com/oyado/faqbot/pkg/metrics"
	"github.com/oyado/faqbot/pkg/util"
)

const (
	defaultHistoryLimit  = 50
	maxHistoryLimit      = 200
	defaultTrendingLimit = 10
)

// ServiceConfig tunes the chat pipeline.
type ServiceConfig struct {
	// FallbackAnswer is used when a company has not set its own.
	FallbackAnswer string
	// RequestTimeout bounds one Ask call end to end.
	RequestTimeout time.Duration
	// KeywordFallback enables token-overlap matching when vector similarity
	// is inconclusive. Meant for test mode, where hash vectors carry no
	// semantic signal.
	KeywordFallback bool
	// DefaultLineToken is used for companies that have not set their own.
	DefaultLineToken string
	// TrendingLimit caps trending results when the caller does not ask for
	// a specific count.
	TrendingLimit int
}

// Service answers end-user questions and records the conversation.
type Service interface {
	Ask(ctx context.Context, req Request) (Response, error)
	History(ctx context.Context, companyID string, limit int) ([]HistoryRecord, error)
	Trending(ctx context.Context, companyID string, limit int) ([]TrendingQuestion, error)
}

type service struct {
	tenants    tenant.Service
	faqs       faq.Repository
	embedder   embedding.Provider
	matcher    *Matcher
	classifier *Classifier
	history    HistoryRepository
	trending   TrendingStore
	notifier   Notifier
	counter    *metrics.TokenCounter
	cfg        ServiceConfig
	logger     *slog.Logger
}

// NewService wires the chat pipeline together. Notifier and trending may be
// nil; those steps are skipped.
func NewService(
	tenants tenant.Service,
	faqs faq.Repository,
	embedder embedding.Provider,
	matcher *Matcher,
	classifier *Classifier,
	history HistoryRepository,
	trending TrendingStore,
	notifier Notifier,
	counter *metrics.TokenCounter,
	cfg ServiceConfig,
	logger *slog.Logger,
) Service {
	return &service{
		tenants:    tenants,
		faqs:       faqs,
		embedder:   embedder,
		matcher:    matcher,
		classifier: classifier,
		history:    history,
		trending:   trending,
		notifier:   notifier,
		counter:    counter,
		cfg:        cfg,
		logger:     logger.With("component", "chat.service"),
	}
}

func (s *service) Ask(ctx context.Context, req Request) (Response, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return Response{}, apperrors.Wrap(CodeInvalid, "question cannot be empty", nil)
	}

	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	company, err := s.tenants.Get(ctx, req.CompanyID)
	if err != nil {
		return Response{}, err
	}

	entries, err := s.faqs.ListByCompany(ctx, req.CompanyID)
	if err != nil {
		return Response{}, err
	}

	topics := s.classifier.Classify(question)
	candidates := entries
	if company.Settings.TopicFilterEnabled && len(topics) > 0 {
		// Fall back to the full set when no entry carries a matching label.
		if filtered := filterByTopics(entries, topics); len(filtered) > 0 {
			candidates = filtered
		}
	}

	result := MatchResult{}
	if len(candidates) > 0 {
		vector, embedErr := s.embedder.Embed(ctx, question)
		switch {
		case embedErr == nil:
			result = s.matcher.Match(vector, candidates)
		case embedding.IsFatal(embedErr):
			return Response{}, embedErr
		default:
			// The user still gets an answer; transient provider trouble
			// resolves to the fallback path.
			s.logger.Warn("embedding failed, using fallback path",
				"company_id", req.CompanyID, "error", embedErr)
		}
		if !result.Confident && s.cfg.KeywordFallback {
			if kw := s.keywordMatch(question, candidates); kw.Confident {
				result = kw
			}
		}
	}

	resp := Response{
		Answer:  s.fallbackAnswer(company),
		Matched: false,
	}
	if result.Entry != nil {
		resp.Score = result.Score
		if result.Confident {
			resp.Answer = result.Entry.Answer
			resp.Matched = true
			resp.MatchedQuestion = result.Entry.Question
			resp.Topic = result.Entry.Topic
		}
	}
	resp.Usage = s.counter.Usage(question, resp.Answer)

	lineToken := company.Settings.LineToken
	if lineToken == "" {
		lineToken = s.cfg.DefaultLineToken
	}
	if !resp.Matched && s.notifier != nil && lineToken != "" {
		if notifyErr := s.notifier.NotifyLowConfidence(ctx, lineToken, req.CompanyID, question, resp.Score); notifyErr != nil {
			s.logger.Warn("low-confidence notification failed",
				"company_id", req.CompanyID, "error", notifyErr)
		}
	}

	s.record(ctx, req, question, resp)
	return resp, nil
}

func (s *service) History(ctx context.Context, companyID string, limit int) ([]HistoryRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.history.ListByCompany(ctx, companyID, limit)
}

func (s *service) Trending(ctx context.Context, companyID string, limit int) ([]TrendingQuestion, error) {
	if s.trending == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = s.cfg.TrendingLimit
	}
	if limit <= 0 {
		limit = defaultTrendingLimit
	}
	return s.trending.TopQuestions(ctx, companyID, limit)
}

func (s *service) fallbackAnswer(company tenant.Company) string {
	if company.Settings.FallbackAnswer != "" {
		return company.Settings.FallbackAnswer
	}
	return s.cfg.FallbackAnswer
}

// record persists the turn and bumps trending counters. Both are best
// effort; the user already has their answer.
func (s *service) record(ctx context.Context, req Request, question string, resp Response) {
	record := HistoryRecord{
		ID:           uuid.NewString(),
		CompanyID:    req.CompanyID,
		UserID:       req.UserID,
		UserName:     req.UserName,
		Question:     question,
		Answer:       resp.Answer,
		Matched:      resp.Matched,
		Score:        resp.Score,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		CreatedAt:    util.NowUTC(),
	}
	if err := s.history.Insert(ctx, record); err != nil {
		s.logger.Error("history insert failed", "company_id", req.CompanyID, "error", err)
	}
	if s.trending != nil {
		if err := s.trending.RecordQuestion(ctx, req.CompanyID, question); err != nil {
			s.logger.Warn("trending update failed", "company_id", req.CompanyID, "error", err)
		}
	}
}

// keywordMatch scores candidates by token overlap with the query. Scores
// are the fraction of the entry's question tokens present in the query.
func (s *service) keywordMatch(question string, candidates []faq.Entry) MatchResult {
	queryTokens := tokenize(question)
	if len(queryTokens) == 0 {
		return MatchResult{}
	}
	best := MatchResult{Score: -1}
	for i := range candidates {
		entryTokens := tokenize(candidates[i].Question)
		if len(entryTokens) == 0 {
			continue
		}
		shared := 0
		for token := range entryTokens {
			if _, ok := queryTokens[token]; ok {
				shared++
			}
		}
		score := float64(shared) / float64(len(entryTokens))
		if score > best.Score {
			best = MatchResult{Entry: &candidates[i], Score: score}
		}
	}
	if best.Entry == nil {
		return MatchResult{}
	}
	best.Confident = best.Score >= s.matcher.Threshold()
	return best
}

func filterByTopics(entries []faq.Entry, topics []string) []faq.Entry {
	var filtered []faq.Entry
	for _, entry := range entries {
		for _, topic := range topics {
			if entry.Topic == topic {
				filtered = append(filtered, entry)
				break
			}
		}
	}
	return filtered
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, token := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r < 0x80
	}) {
		if token != "" {
			tokens[token] = struct{}{}
		}
	}
	return tokens
}

var _ Service = (*service)(nil)
