package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizlens/competitor-insights/internal/comparison"
	"github.com/bizlens/competitor-insights/internal/errs"
	"github.com/bizlens/competitor-insights/internal/model"
	"github.com/bizlens/competitor-insights/internal/store"
)

type fakeComparisons struct {
	report *model.ComparisonReport
	err    error
	gotReq *comparison.Request
}

func (f *fakeComparisons) CreateComparison(_ context.Context, req comparison.Request) (*model.ComparisonReport, error) {
	f.gotReq = &req
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakeSearch struct {
	results []model.BusinessProfile
	err     error
}

func (f *fakeSearch) FetchProfile(_ context.Context, identifier string) (*model.BusinessProfile, error) {
	return nil, &errs.NotFoundError{Identifier: identifier, Provider: "fake"}
}

func (f *fakeSearch) Search(_ context.Context, _, _ string, _ int) ([]model.BusinessProfile, error) {
	return f.results, f.err
}

func (f *fakeSearch) Name() string { return "fake" }

type fakeStore struct {
	reports map[string]*model.ComparisonReport
	listErr error
}

func (f *fakeStore) SaveReport(_ context.Context, report *model.ComparisonReport) error {
	f.reports[report.ReportID] = report
	return nil
}

func (f *fakeStore) GetReport(_ context.Context, reportID string) (*model.ComparisonReport, error) {
	if r, ok := f.reports[reportID]; ok {
		return r, nil
	}
	return nil, &errs.NotFoundError{Identifier: reportID, Provider: "store"}
}

func (f *fakeStore) ListReports(_ context.Context, _ store.ReportFilter) ([]model.ComparisonReport, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.ComparisonReport
	for _, r := range f.reports {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Close() error                  { return nil }

func sampleReport() *model.ComparisonReport {
	return &model.ComparisonReport{
		ReportID: "comp_rpt_0123456789",
		UserBusiness: model.RankedProfile{
			Profile: model.BusinessProfile{Name: "Mario's Restaurant", Source: model.DataSourceMock},
			Score:   model.ProfileScore{CompletenessScore: 70.00, Rank: 2},
		},
		CompetitorBusinesses: []model.RankedProfile{},
		AIComparisonSummary:  model.AnalysisSummary{Overview: "ok"},
		AISuggestions:        []string{"add hours"},
		CreatedAt:            time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func newTestServer(t *testing.T, comparisons *fakeComparisons, data *fakeSearch, st store.Store) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(comparisons, data, st).Router(Options{}))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getURL(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) (string, string) {
	t.Helper()
	var env struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env.Error.Type, env.Error.Message
}

func TestCreateComparison(t *testing.T) {
	comparisons := &fakeComparisons{report: sampleReport()}
	srv := newTestServer(t, comparisons, &fakeSearch{}, nil)

	resp := postJSON(t, srv.URL+"/comparisons", map[string]any{
		"user_business_identifier": "Mario's Restaurant",
		"competitor_identifiers":   []string{"Luigi's Pizza"},
		"report_style":             "data-driven",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var report model.ComparisonReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "comp_rpt_0123456789", report.ReportID)

	require.NotNil(t, comparisons.gotReq)
	assert.Equal(t, "Mario's Restaurant", comparisons.gotReq.UserIdentifier)
	assert.Equal(t, []string{"Luigi's Pizza"}, comparisons.gotReq.CompetitorIdentifiers)
	assert.Equal(t, model.StyleDataDriven, comparisons.gotReq.Style)
}

func TestCreateComparisonErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			"user business not found",
			&errs.BusinessNotFoundError{Identifier: "Ghost"},
			http.StatusNotFound, errs.TypeBusinessNotFound,
		},
		{
			"invalid input",
			&errs.InvalidInputError{Field: "user_business_identifier", Message: "must not be empty"},
			http.StatusBadRequest, errs.TypeInvalidInput,
		},
		{
			"provider unavailable",
			&errs.ProviderUnavailableError{Provider: "serper", Err: eris.New("down")},
			http.StatusServiceUnavailable, errs.TypeProviderDown,
		},
		{
			"llm quota",
			&errs.LLMQuotaExceededError{Provider: "perplexity", Err: eris.New("429")},
			http.StatusTooManyRequests, errs.TypeLLMQuota,
		},
		{
			"unclassified error",
			eris.New("boom"),
			http.StatusInternalServerError, "INTERNAL",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeComparisons{err: tt.err}, &fakeSearch{}, nil)

			resp := postJSON(t, srv.URL+"/comparisons", map[string]any{"user_business_identifier": "x"})
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			errType, message := decodeError(t, resp)
			assert.Equal(t, tt.wantType, errType)
			assert.NotEmpty(t, message)
		})
	}
}

func TestCreateComparisonInternalErrorHidesDetails(t *testing.T) {
	srv := newTestServer(t, &fakeComparisons{err: eris.New("secret database password leaked")}, &fakeSearch{}, nil)

	resp := postJSON(t, srv.URL+"/comparisons", map[string]any{"user_business_identifier": "x"})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	_, message := decodeError(t, resp)
	assert.Equal(t, "internal error", message)
}

func TestCreateComparisonMalformedBody(t *testing.T) {
	srv := newTestServer(t, &fakeComparisons{}, &fakeSearch{}, nil)

	resp, err := http.Post(srv.URL+"/comparisons", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetReport(t *testing.T) {
	st := &fakeStore{reports: map[string]*model.ComparisonReport{}}
	report := sampleReport()
	st.reports[report.ReportID] = report
	srv := newTestServer(t, &fakeComparisons{}, &fakeSearch{}, st)

	t.Run("found", func(t *testing.T) {
		resp := getURL(t, srv.URL+"/comparisons/"+report.ReportID)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got model.ComparisonReport
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, report.ReportID, got.ReportID)
	})

	t.Run("missing", func(t *testing.T) {
		resp := getURL(t, srv.URL+"/comparisons/comp_rpt_ffffffffff")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		errType, _ := decodeError(t, resp)
		assert.Equal(t, errs.TypeNotFound, errType)
	})
}

func TestGetReportWithoutStore(t *testing.T) {
	srv := newTestServer(t, &fakeComparisons{}, &fakeSearch{}, nil)

	resp := getURL(t, srv.URL+"/comparisons/comp_rpt_0123456789")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListReports(t *testing.T) {
	st := &fakeStore{reports: map[string]*model.ComparisonReport{}}
	report := sampleReport()
	st.reports[report.ReportID] = report
	srv := newTestServer(t, &fakeComparisons{}, &fakeSearch{}, st)

	resp := getURL(t, srv.URL+"/comparisons")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Reports []model.ComparisonReport `json:"reports"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Reports, 1)
	assert.Equal(t, report.ReportID, body.Reports[0].ReportID)
}

func TestListReportsWithoutStoreReturnsEmpty(t *testing.T) {
	srv := newTestServer(t, &fakeComparisons{}, &fakeSearch{}, nil)

	resp := getURL(t, srv.URL+"/comparisons")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Reports []model.ComparisonReport `json:"reports"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Reports)
}

func TestSearchBusinesses(t *testing.T) {
	data := &fakeSearch{results: []model.BusinessProfile{
		{Name: "Luigi's Pizza", Source: model.DataSourceMock},
	}}
	srv := newTestServer(t, &fakeComparisons{}, data, nil)

	resp := getURL(t, srv.URL+"/businesses/search?query=pizza")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Results []model.BusinessProfile `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "Luigi's Pizza", body.Results[0].Name)
}

func TestSearchBusinessesMissingQuery(t *testing.T) {
	srv := newTestServer(t, &fakeComparisons{}, &fakeSearch{}, nil)

	resp := getURL(t, srv.URL+"/businesses/search")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	errType, _ := decodeError(t, resp)
	assert.Equal(t, errs.TypeInvalidInput, errType)
}

func TestSearchBusinessesEmptyResults(t *testing.T) {
	srv := newTestServer(t, &fakeComparisons{}, &fakeSearch{}, nil)

	resp := getURL(t, srv.URL+"/businesses/search?query=florist")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Results []model.BusinessProfile `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotNil(t, body.Results)
	assert.Empty(t, body.Results)
}

func TestSearchBusinessesProviderDown(t *testing.T) {
	data := &fakeSearch{err: &errs.ProviderUnavailableError{Provider: "serper", Err: eris.New("down")}}
	srv := newTestServer(t, &fakeComparisons{}, data, nil)

	resp := getURL(t, srv.URL+"/businesses/search?query=pizza")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeComparisons{}, &fakeSearch{}, nil)

	resp := getURL(t, srv.URL+"/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}
