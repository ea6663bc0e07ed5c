package reports

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/samirwankhede/pagila-reports/internal/service/reports"
	"github.com/samirwankhede/pagila-reports/internal/store"
	"github.com/samirwankhede/pagila-reports/internal/store/rentals"
	"github.com/samirwankhede/pagila-reports/web"
)

type call struct {
	report rentals.Report
	metric rentals.Metric
}

type fakeSource struct {
	tables map[rentals.Report]*store.Table
	errs   map[rentals.Report]error
	calls  []call
}

func (f *fakeSource) Fetch(_ context.Context, r rentals.Report, m rentals.Metric) (*store.Table, error) {
	f.calls = append(f.calls, call{r, m})
	if err := f.errs[r]; err != nil {
		return nil, err
	}
	t := f.tables[r]
	if t == nil {
		return store.NewTable(rentals.Columns(r)), nil
	}
	out := store.NewTable(t.Columns)
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, append([]any(nil), row...))
	}
	return out, nil
}

func newEngine(t *testing.T, src *fakeSource) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tmpl, err := web.Templates()
	require.NoError(t, err)
	r.SetHTMLTemplate(tmpl)
	svc := reports.NewReportsService(zap.NewNop(), src, nil)
	NewReportsHandler(zap.NewNop(), svc).Register(r)
	return r
}

func do(r http.Handler, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func sampleSource() *fakeSource {
	cat := store.NewTable([]string{"film_category", "value"})
	cat.Rows = append(cat.Rows, []any{"Drama", int64(150)}, []any{"Action", int64(120)}, []any{"Comedy", int64(95)})
	trend := store.NewTable([]string{"year", "month", "month_name", "value"})
	trend.Rows = append(trend.Rows,
		[]any{int64(2023), int64(12), "December", int64(10)},
		[]any{int64(2024), int64(1), "January", int64(12)},
		[]any{int64(2024), int64(2), "February", int64(9)},
	)
	return &fakeSource{tables: map[rentals.Report]*store.Table{
		rentals.ReportByCategory: cat,
		rentals.ReportOverTime:   trend,
	}}
}

func TestDashboardRendersBothReportsInOrder(t *testing.T) {
	src := sampleSource()
	r := newEngine(t, src)

	rr := do(r, "/?report1=revenue")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Pagila DWH Reporting")
	assert.Contains(t, body, "Report 1: Rentals by Film Category (Bar Chart)")
	assert.Contains(t, body, "Report 2: Rental Trends Over Time (Line Chart)")
	assert.Contains(t, body, `<option value="revenue" selected>Total Revenue</option>`)
	assert.Contains(t, body, `<option value="rentals" selected>Number of Rentals</option>`)
	assert.Contains(t, body, "<td>2024-01</td>")
	assert.Less(t, strings.Index(body, "<td>Drama</td>"), strings.Index(body, "<td>Comedy</td>"))
	assert.Less(t, strings.Index(body, "<td>2023-12</td>"), strings.Index(body, "<td>2024-02</td>"))

	assert.Equal(t, []call{
		{rentals.ReportByCategory, rentals.MetricRevenue},
		{rentals.ReportOverTime, rentals.MetricRentals},
	}, src.calls)
}

func TestDashboardEmptyResults(t *testing.T) {
	r := newEngine(t, &fakeSource{})

	rr := do(r, "/")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, strings.Count(rr.Body.String(), "No data"))
}

func TestDashboardShowsFailingReportInPlace(t *testing.T) {
	src := sampleSource()
	src.errs = map[rentals.Report]error{
		rentals.ReportByCategory: &store.ConnectionError{Err: errors.New("connection refused")},
	}
	r := newEngine(t, src)

	rr := do(r, "/")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Equal(t, 1, strings.Count(body, `class="error"`))
	assert.Contains(t, body, "connection refused")
	assert.Contains(t, body, "<td>2024-02</td>")
	assert.Len(t, src.calls, 2)
}

func TestDashboardRejectsUnknownMetric(t *testing.T) {
	src := sampleSource()
	r := newEngine(t, src)

	rr := do(r, "/?report2=profit")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, src.calls)

	rr = do(r, "/?report1=profit&report2=revenue")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, src.calls)
}

func TestGetReportJSON(t *testing.T) {
	r := newEngine(t, sampleSource())

	rr := do(r, "/v1/reports/trend?metric=revenue")

	require.Equal(t, http.StatusOK, rr.Code)
	var v reports.View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	assert.Equal(t, rentals.ReportOverTime, v.Report)
	assert.Equal(t, rentals.MetricRevenue, v.Metric)
	assert.Equal(t, []string{"2023-12", "2024-01", "2024-02"}, v.Chart.X)
	assert.Equal(t, []float64{10, 12, 9}, v.Chart.Y)
	assert.Equal(t, []string{"year", "month", "month_name", "value", "time"}, v.Table.Columns)
}

func TestGetReportErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		want   int
	}{
		{"unknown report", "/v1/reports/inventory", nil, http.StatusBadRequest},
		{"unknown metric", "/v1/reports/category?metric=avg", nil, http.StatusBadRequest},
		{"connection error", "/v1/reports/category", &store.ConnectionError{Err: errors.New("refused")}, http.StatusServiceUnavailable},
		{"query error", "/v1/reports/category", &store.QueryError{Err: errors.New("no such view")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := sampleSource()
			if tt.err != nil {
				src.errs = map[rentals.Report]error{rentals.ReportByCategory: tt.err}
			}
			rr := do(newEngine(t, src), tt.target)
			assert.Equal(t, tt.want, rr.Code)
			assert.Contains(t, rr.Body.String(), `"error"`)
		})
	}
}
