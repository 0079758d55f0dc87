package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oyado/faqbot/internal/domain/auth"
	"github.com/oyado/faqbot/internal/domain/chat"
	"github.com/oyado/faqbot/internal/domain/faq"
	"github.com/oyado/faqbot/internal/domain/tenant"
	"github.com/oyado/faqbot/internal/infra/config"
	apperrors "github.com/oyado/faqbot/pkg/errors"
	"github.com/oyado/faqbot/pkg/metrics"
)

type stubChat struct {
	askFn      func(ctx context.Context, req chat.Request) (chat.Response, error)
	historyFn  func(ctx context.Context, companyID string, limit int) ([]chat.HistoryRecord, error)
	trendingFn func(ctx context.Context, companyID string, limit int) ([]chat.TrendingQuestion, error)
}

func (s *stubChat) Ask(ctx context.Context, req chat.Request) (chat.Response, error) {
	if s.askFn != nil {
		return s.askFn(ctx, req)
	}
	return chat.Response{}, nil
}

func (s *stubChat) History(ctx context.Context, companyID string, limit int) ([]chat.HistoryRecord, error) {
	if s.historyFn != nil {
		return s.historyFn(ctx, companyID, limit)
	}
	return nil, nil
}

func (s *stubChat) Trending(ctx context.Context, companyID string, limit int) ([]chat.TrendingQuestion, error) {
	if s.trendingFn != nil {
		return s.trendingFn(ctx, companyID, limit)
	}
	return nil, nil
}

type stubAuthSvc struct {
	verifyFn func(ctx context.Context, token string) (*auth.Claims, error)
	loginFn  func(ctx context.Context, email, password string) (auth.TokenPair, error)
}

func (s *stubAuthSvc) Register(context.Context, string, string, string) (auth.Admin, error) {
	return auth.Admin{}, nil
}

func (s *stubAuthSvc) Login(ctx context.Context, email, password string) (auth.TokenPair, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, email, password)
	}
	return auth.TokenPair{}, nil
}

func (s *stubAuthSvc) Refresh(context.Context, string) (auth.TokenPair, error) {
	return auth.TokenPair{}, nil
}

func (s *stubAuthSvc) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	if s.verifyFn != nil {
		return s.verifyFn(ctx, token)
	}
	return nil, apperrors.Wrap(auth.CodeInvalidToken, "invalid token", nil)
}

type stubFAQSvc struct {
	listFn   func(ctx context.Context, companyID string) ([]faq.Entry, error)
	createFn func(ctx context.Context, companyID string, input faq.CreateInput) (faq.Entry, error)
}

func (s *stubFAQSvc) List(ctx context.Context, companyID string) ([]faq.Entry, error) {
	if s.listFn != nil {
		return s.listFn(ctx, companyID)
	}
	return nil, nil
}

func (s *stubFAQSvc) Get(context.Context, string, string) (faq.Entry, error) {
	return faq.Entry{}, apperrors.Wrap(faq.CodeNotFound, "faq entry not found", nil)
}

func (s *stubFAQSvc) Create(ctx context.Context, companyID string, input faq.CreateInput) (faq.Entry, error) {
	if s.createFn != nil {
		return s.createFn(ctx, companyID, input)
	}
	return faq.Entry{}, nil
}

func (s *stubFAQSvc) Update(context.Context, string, string, faq.UpdateInput) (faq.Entry, error) {
	return faq.Entry{}, nil
}

func (s *stubFAQSvc) Delete(context.Context, string, string) error { return nil }

func (s *stubFAQSvc) Reembed(context.Context, string) (int, error) { return 0, nil }

func (s *stubFAQSvc) ImportCSV(context.Context, string, io.Reader, bool) (faq.ImportResult, error) {
	return faq.ImportResult{}, nil
}

func (s *stubFAQSvc) ExportCSV(_ context.Context, _ string, w io.Writer) error {
	_, err := w.Write([]byte("question,answer,topic\n"))
	return err
}

type stubTenantSvc struct {
	getFn func(ctx context.Context, id string) (tenant.Company, error)
}

func (s *stubTenantSvc) List(context.Context) ([]tenant.Company, error) { return nil, nil }

func (s *stubTenantSvc) Get(ctx context.Context, id string) (tenant.Company, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return tenant.Company{ID: id}, nil
}

func (s *stubTenantSvc) Create(_ context.Context, input tenant.CreateInput) (tenant.Company, error) {
	return tenant.Company{ID: input.ID, Name: input.Name}, nil
}

func (s *stubTenantSvc) Update(_ context.Context, id string, _ tenant.UpdateInput) (tenant.Company, error) {
	return tenant.Company{ID: id}, nil
}

func (s *stubTenantSvc) Delete(context.Context, string) error { return nil }

type routerFixture struct {
	chat   *stubChat
	auth   *stubAuthSvc
	faq    *stubFAQSvc
	tenant *stubTenantSvc
}

func newRouterFixture() *routerFixture {
	return &routerFixture{
		chat:   &stubChat{},
		auth:   &stubAuthSvc{},
		faq:    &stubFAQSvc{},
		tenant: &stubTenantSvc{},
	}
}

func (f *routerFixture) build() *http.Server {
	logger := newTestLogger()
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg,
		NewChatHandler(f.chat, logger),
		NewAuthHandler(f.auth, f.tenant, logger),
		NewAdminHandler(f.faq, f.chat, f.tenant, nil, logger),
		NewTenantHandler(f.tenant, logger),
		f.auth,
		logger,
	)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func performJSON(server *http.Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestRouter_ChatSuccess(t *testing.T) {
	f := newRouterFixture()
	f.chat.askFn = func(ctx context.Context, req chat.Request) (chat.Response, error) {
		require.Equal(t, "hotel-aoi", req.CompanyID)
		require.Equal(t, "Where is breakfast?", req.Question)
		return chat.Response{
			Answer:  "In the lobby",
			Matched: true,
			Score:   0.91,
			Usage:   metrics.TokenUsage{InputTokens: 4, OutputTokens: 3},
		}, nil
	}

	rec := performJSON(f.build(), http.MethodPost, "/api/v1/chat/hotel-aoi", `{"question":"Where is breakfast?"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got chat.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got.Matched)
	require.Equal(t, "In the lobby", got.Answer)
}

func TestRouter_ChatInvalidJSON(t *testing.T) {
	f := newRouterFixture()

	rec := performJSON(f.build(), http.MethodPost, "/api/v1/chat/hotel-aoi", `{"question":123}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
}

func TestRouter_ChatUnknownCompany(t *testing.T) {
	f := newRouterFixture()
	f.chat.askFn = func(ctx context.Context, req chat.Request) (chat.Response, error) {
		return chat.Response{}, apperrors.Wrap(tenant.CodeNotFound, "company not found", nil)
	}

	rec := performJSON(f.build(), http.MethodPost, "/api/v1/chat/ghost", `{"question":"hi"}`, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	errBody := decodeErrorBody(t, rec.Body.Bytes())
	require.Equal(t, tenant.CodeNotFound, errBody["error"]["code"])
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	f := newRouterFixture()

	rec := performJSON(f.build(), http.MethodGet, "/api/v1/admin/hotel-aoi/faqs", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AdminRejectsForeignCompanyToken(t *testing.T) {
	f := newRouterFixture()
	f.auth.verifyFn = func(ctx context.Context, token string) (*auth.Claims, error) {
		require.Equal(t, "valid-token", token)
		return &auth.Claims{CompanyID: "hotel-beni"}, nil
	}

	rec := performJSON(f.build(), http.MethodGet, "/api/v1/admin/hotel-aoi/faqs", "",
		map[string]string{"Authorization": "Bearer valid-token"})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_AdminListFAQs(t *testing.T) {
	f := newRouterFixture()
	f.auth.verifyFn = func(ctx context.Context, token string) (*auth.Claims, error) {
		return &auth.Claims{CompanyID: "hotel-aoi"}, nil
	}
	f.faq.listFn = func(ctx context.Context, companyID string) ([]faq.Entry, error) {
		require.Equal(t, "hotel-aoi", companyID)
		return []faq.Entry{{ID: "e1", Question: "q", Answer: "a"}}, nil
	}

	rec := performJSON(f.build(), http.MethodGet, "/api/v1/admin/hotel-aoi/faqs", "",
		map[string]string{"Authorization": "Bearer valid-token"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"entries"`)
}

func TestRouter_AdminExportCSV(t *testing.T) {
	f := newRouterFixture()
	f.auth.verifyFn = func(ctx context.Context, token string) (*auth.Claims, error) {
		return &auth.Claims{CompanyID: "hotel-aoi"}, nil
	}

	rec := performJSON(f.build(), http.MethodGet, "/api/v1/admin/hotel-aoi/faqs/export", "",
		map[string]string{"Authorization": "Bearer valid-token"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, rec.Body.String(), "question,answer,topic")
}

func TestRouter_LoginSuccess(t *testing.T) {
	f := newRouterFixture()
	f.auth.loginFn = func(ctx context.Context, email, password string) (auth.TokenPair, error) {
		require.Equal(t, "staff@example.com", email)
		return auth.TokenPair{AccessToken: "at", RefreshToken: "rt", ExpiresIn: 900}, nil
	}

	rec := performJSON(f.build(), http.MethodPost, "/api/v1/auth/login",
		`{"email":"staff@example.com","password":"correct-horse"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var pair auth.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.Equal(t, "at", pair.AccessToken)
}

func TestRouter_LoginBadCredentials(t *testing.T) {
	f := newRouterFixture()
	f.auth.loginFn = func(ctx context.Context, email, password string) (auth.TokenPair, error) {
		return auth.TokenPair{}, apperrors.Wrap(auth.CodeInvalidCredentials, "invalid email or password", nil)
	}

	rec := performJSON(f.build(), http.MethodPost, "/api/v1/auth/login",
		`{"email":"staff@example.com","password":"bad"}`, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_CreateCompany(t *testing.T) {
	f := newRouterFixture()

	rec := performJSON(f.build(), http.MethodPost, "/api/v1/companies",
		`{"id":"hotel-aoi","name":"Hotel Aoi"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "hotel-aoi")
}

func TestRouter_Healthz(t *testing.T) {
	f := newRouterFixture()

	rec := performJSON(f.build(), http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequestIDHeader(t *testing.T) {
	f := newRouterFixture()

	rec := performJSON(f.build(), http.MethodGet, "/healthz", "", nil)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = performJSON(f.build(), http.MethodGet, "/healthz", "",
		map[string]string{"X-Request-ID": "fixed-id"})
	require.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}
