package chat

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oyado/faqbot/internal/domain/faq"
	"github.com/oyado/faqbot/internal/domain/tenant"
	"github.com/oyado/faqbot/internal/infra/embedding"
	apperrors "github.com/oyado/faqbot/pkg/errors"
	"github.com/oyado/faqbot/pkg/metrics"
)

type stubTenants struct {
	company tenant.Company
	err     error
}

func (s *stubTenants) List(context.Context) ([]tenant.Company, error) { return nil, nil }
func (s *stubTenants) Get(context.Context, string) (tenant.Company, error) {
	return s.company, s.err
}
func (s *stubTenants) Create(context.Context, tenant.CreateInput) (tenant.Company, error) {
	return tenant.Company{}, nil
}
func (s *stubTenants) Update(context.Context, string, tenant.UpdateInput) (tenant.Company, error) {
	return tenant.Company{}, nil
}
func (s *stubTenants) Delete(context.Context, string) error { return nil }

type stubFAQRepo struct {
	entries []faq.Entry
}

func (s *stubFAQRepo) ListByCompany(context.Context, string) ([]faq.Entry, error) {
	return s.entries, nil
}
func (s *stubFAQRepo) Get(context.Context, string, string) (faq.Entry, error) {
	return faq.Entry{}, apperrors.Wrap(faq.CodeNotFound, "not found", nil)
}
func (s *stubFAQRepo) Insert(context.Context, faq.Entry) error                 { return nil }
func (s *stubFAQRepo) Update(context.Context, faq.Entry) error                 { return nil }
func (s *stubFAQRepo) Delete(context.Context, string, string) error            { return nil }
func (s *stubFAQRepo) ReplaceAll(context.Context, string, []faq.Entry) error   { return nil }

type stubEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	s.calls++
	return s.vector, s.err
}
func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, s.err
}

type stubHistory struct {
	records []HistoryRecord
	err     error
}

func (s *stubHistory) Insert(_ context.Context, record HistoryRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}
func (s *stubHistory) ListByCompany(_ context.Context, _ string, limit int) ([]HistoryRecord, error) {
	if limit < len(s.records) {
		return s.records[:limit], nil
	}
	return s.records, nil
}

type stubTrending struct {
	recorded []string
}

func (s *stubTrending) RecordQuestion(_ context.Context, _, question string) error {
	s.recorded = append(s.recorded, question)
	return nil
}
func (s *stubTrending) TopQuestions(context.Context, string, int) ([]TrendingQuestion, error) {
	return []TrendingQuestion{{Question: "top", Count: 3}}, nil
}

type stubNotifier struct {
	calls  int
	tokens []string
}

func (s *stubNotifier) NotifyLowConfidence(_ context.Context, token, _, _ string, _ float64) error {
	s.calls++
	s.tokens = append(s.tokens, token)
	return nil
}

type chatFixture struct {
	tenants  *stubTenants
	faqs     *stubFAQRepo
	embedder *stubEmbedder
	history  *stubHistory
	trending *stubTrending
	notifier *stubNotifier
	cfg      ServiceConfig
}

func newFixture() *chatFixture {
	return &chatFixture{
		tenants:  &stubTenants{company: tenant.Company{ID: "hotel-aoi", Name: "Hotel Aoi"}},
		faqs:     &stubFAQRepo{},
		embedder: &stubEmbedder{vector: []float32{1, 0}},
		history:  &stubHistory{},
		trending: &stubTrending{},
		notifier: &stubNotifier{},
		cfg: ServiceConfig{
			FallbackAnswer: "Sorry, I don't know. Please contact the front desk.",
		},
	}
}

func (f *chatFixture) build() Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(
		f.tenants,
		f.faqs,
		f.embedder,
		NewMatcher(0.6),
		NewClassifier(testTopics()),
		f.history,
		f.trending,
		f.notifier,
		metrics.NewTokenCounter(),
		f.cfg,
		logger,
	)
}

func TestAskConfidentMatch(t *testing.T) {
	f := newFixture()
	f.faqs.entries = []faq.Entry{
		{ID: "e1", Question: "What time is checkout?", Answer: "By 11am", Embedding: []float32{1, 0}},
		{ID: "e2", Question: "Is there wifi?", Answer: "Yes", Embedding: []float32{0, 1}},
	}
	svc := f.build()

	resp, err := svc.Ask(context.Background(), Request{CompanyID: "hotel-aoi", Question: "What time is checkout?"})
	require.NoError(t, err)
	require.True(t, resp.Matched)
	require.Equal(t, "By 11am", resp.Answer)
	require.Equal(t, "What time is checkout?", resp.MatchedQuestion)
	require.InDelta(t, 1.0, resp.Score, 1e-6)
	require.Positive(t, resp.Usage.InputTokens)
	require.Positive(t, resp.Usage.OutputTokens)

	require.Len(t, f.history.records, 1)
	require.True(t, f.history.records[0].Matched)
	require.Equal(t, resp.Usage.InputTokens, f.history.records[0].InputTokens)
	require.Len(t, f.trending.recorded, 1)
	require.Zero(t, f.notifier.calls)
}

func TestAskLowConfidenceFallsBack(t *testing.T) {
	f := newFixture()
	f.faqs.entries = []faq.Entry{
		{ID: "e1", Question: "Is there wifi?", Answer: "Yes", Embedding: []float32{0, 1}},
	}
	svc := f.build()

	resp, err := svc.Ask(context.Background(), Request{CompanyID: "hotel-aoi", Question: "Do you rent bicycles?"})
	require.NoError(t, err)
	require.False(t, resp.Matched)
	require.Equal(t, f.cfg.FallbackAnswer, resp.Answer)
	require.Empty(t, resp.MatchedQuestion)

	require.Len(t, f.history.records, 1)
	require.False(t, f.history.records[0].Matched)
}

func TestAskCompanyFallbackOverride(t *testing.T) {
	f := newFixture()
	f.tenants.company.Settings.FallbackAnswer = "Please dial 9 for assistance."
	svc := f.build()

	resp, err := svc.Ask(context.Background(), Request{CompanyID: "hotel-aoi", Question: "Anything?"})
	require.NoError(t, err)
	require.False(t, resp.Matched)
	require.Equal(t, "Please dial 9 for assistance.", resp.Answer)
}

func TestAskNotifiesOnLowConfidence(t *testing.T) {
	f := newFixture()
	f.tenants.company.Settings.LineToken = "line-token-123"
	f.faqs.entries = []faq.Entry{
		{ID: "e1", Question: "Is there wifi?", Answer: "Yes", Embedding: []float32{0, 1}},
	}
	svc := f.build()

	_, err := svc.Ask(context.Background(), Request{CompanyID: "hotel-aoi", Question: "Do you rent bicycles?"})
	require.NoError(t, err)
	require.Equal(t, 1, f.notifier.calls)
	require.Equal(t, []string{"line-token-123"}, f.notifier.tokens)
}

func TestAskNoNotifyWithoutToken(t *testing.T) {
	f := newFixture()
	svc := f.build()

	_, err := svc.Ask(context.Background(), Request{CompanyID: "hotel-aoi", Question: "Do you rent bicycles?"})
	require.NoError(t, err)
	require.Zero(t, f.notifier.calls)
}

func TestAskEmptyQuestion(t *testing.T) {
	f := newFixture()
	svc := f.build()

	_, err := svc.Ask(context.Background(), Request{CompanyID: "hotel-aoi", Question: "   "})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, CodeInvalid))
	require.Empty(t, f.history.records)
}

func TestAskEmptyFAQSetSkipsEmbedding(t *testing.T) {
	f := newFixture()
	svc := f.build()

	resp, err := svc.Ask(context.Background(), Request{CompanyID: "hotel-aoi", Question: "Hello?"})
	require.NoError(t, err)
	require.False(t, resp.Matched)
	require.Equal(t, f.cfg.FallbackAnswer, resp.Answer)
	require.Zero(t, f.embedder.calls)
}

func TestAskTopicFilterNarrowsCandidates(t *testing.T) {
	f := newFixture()
	f.tenants.company.Settings.TopicFilterEnabled = true
	f.faqs.entries = []faq.Entry{
		{ID: "general", Question: "Is there wifi?", Answer: "Yes", Embedding: []float32{1, 0}},
		{ID: "menu", Question: "Is there a menu?", Answer: "At the desk", Topic: "restaurant", Embedding: []float32{0, 1}},
	}
	svc := f.build()

	// The query classifies as restaurant, so only the labeled entry is a
	// candidate even though the general entry's vector is closer.
	resp, err := svc.Ask(context.Background(), Request{CompanyID: "hotel-aoi", Question: "restaurant dinner menu"})
	require.NoError(t, err)
	require.False(t, resp.Matched)

	f.tenants.company.Settings.TopicFilterEnabled = false
	svc = f.build()
	resp, err = svc.Ask(context.Background(), Request{CompanyID: "hotel-aoi", Question: "restaurant dinner menu"})
	require.NoError(t, err)
	require.True(t, resp.Matched)
	require.Equal(t, "Yes", resp.Answer)
}

func TestAskTopicFilterFallsBackWhenNoLabeledEntries(t *testing.T) {
	f := newFixture()
	f.tenants.company.Settings.TopicFilterEnabled = true
	f.faqs.entries = []faq.Entry{
		{ID: "general", Question: "Is there wifi?", Answer: "Yes", Embedding: []float32{1, 0}},
	}
	svc := f.build()

	resp, err := svc.Ask(context.Background(), Request{CompanyID: "hotel-aoi", Question: "restaurant dinner menu"})
	require.NoError(t, err)
	// No entry carries the restaurant label, so the full set is searched.
	require.True(t, resp.Matched)
}

func TestAskKeywordFallback(t *testing.T) {
	f := newFixture()
	f.cfg.KeywordFallback = true
	f.embedder.vector = []float32{1, 0}
	f.faqs.entries = []faq.Entry{
		{ID: "e1", Question: "What time is breakfast served", Answer: "7 to 10", Embedding: []float32{0, 1}},
	}
	svc := f.build()

	resp, err := svc.Ask(context.Background(), Request{CompanyID: "hotel-aoi", Question: "what time is breakfast served today"})
	require.NoError(t, err)
	require.True(t, resp.Matched)
	require.Equal(t, "7 to 10", resp.Answer)
}

func TestAskTransientEmbeddingErrorFallsBack(t *testing.T) {
	f := newFixture()
	f.faqs.entries = []faq.Entry{{ID: "e1", Question: "q", Answer: "a", Embedding: []float32{1, 0}}}
	f.embedder.err = apperrors.Wrap(embedding.CodeUnavailable, "upstream down", nil)
	svc := f.build()

	resp, err := svc.Ask(context.Background(), Request{CompanyID: "hotel-aoi", Question: "anything"})
	require.NoError(t, err)
	require.False(t, resp.Matched)
	require.Equal(t, f.cfg.FallbackAnswer, resp.Answer)
	require.Len(t, f.history.records, 1)
}

func TestAskFatalEmbeddingErrorPropagates(t *testing.T) {
	f := newFixture()
	f.faqs.entries = []faq.Entry{{ID: "e1", Question: "q", Answer: "a", Embedding: []float32{1, 0}}}
	f.embedder.err = apperrors.Wrap(embedding.CodeAuth, "bad key", nil)
	svc := f.build()

	_, err := svc.Ask(context.Background(), Request{CompanyID: "hotel-aoi", Question: "anything"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, embedding.CodeAuth))
}

func TestAskUnknownCompany(t *testing.T) {
	f := newFixture()
	f.tenants.err = apperrors.Wrap(tenant.CodeNotFound, "company not found", nil)
	svc := f.build()

	_, err := svc.Ask(context.Background(), Request{CompanyID: "ghost", Question: "hello"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, tenant.CodeNotFound))
}

func TestAskHistoryFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture()
	f.history.err = apperrors.Wrap("storage_unavailable", "db down", nil)
	svc := f.build()

	resp, err := svc.Ask(context.Background(), Request{CompanyID: "hotel-aoi", Question: "hello"})
	require.NoError(t, err)
	require.Equal(t, f.cfg.FallbackAnswer, resp.Answer)
}

func TestHistoryLimitClamped(t *testing.T) {
	f := newFixture()
	for i := 0; i < 3; i++ {
		f.history.records = append(f.history.records, HistoryRecord{ID: "r"})
	}
	svc := f.build()

	records, err := svc.History(context.Background(), "hotel-aoi", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	records, err = svc.History(context.Background(), "hotel-aoi", 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
}

func TestTrending(t *testing.T) {
	f := newFixture()
	svc := f.build()

	questions, err := svc.Trending(context.Background(), "hotel-aoi", 5)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	require.Equal(t, int64(3), questions[0].Count)
}
