package reports

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samirwankhede/pagila-reports/internal/service/reports"
	"github.com/samirwankhede/pagila-reports/internal/store"
	"github.com/samirwankhede/pagila-reports/internal/store/rentals"
)

// Renderer is satisfied by *reports.ReportsService.
type Renderer interface {
	Render(ctx context.Context, report rentals.Report, metric rentals.Metric) (*reports.View, error)
}

type ReportsHandler struct {
	log *zap.Logger
	svc Renderer
}

func NewReportsHandler(log *zap.Logger, svc Renderer) *ReportsHandler {
	return &ReportsHandler{log: log, svc: svc}
}

func (h *ReportsHandler) Register(r *gin.Engine) {
	r.GET("/", h.dashboard)
	r.GET("/v1/reports/:report", h.get)
}

// Section is one report block of the dashboard. Err replaces chart and table
// when the report could not be produced.
type Section struct {
	*reports.View
	Err string
}

type page struct {
	Title    string
	Source   string
	Sections []Section
}

// dashboard renders every report in order, one query after the other. All
// selectors are validated before the first query. A failing report is shown
// in place and does not stop the next one.
func (h *ReportsHandler) dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	p := page{Title: "Pagila DWH Reporting", Source: "vw_rental_analysis"}

	selected := make([]*reports.View, 0, len(rentals.Reports))
	for _, r := range rentals.Reports {
		metric, err := rentals.ParseMetric(c.DefaultQuery(reports.Input(r), string(rentals.MetricRentals)))
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		v, err := reports.Describe(r, metric)
		if err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		selected = append(selected, v)
	}

	for _, sel := range selected {
		v, err := h.svc.Render(ctx, sel.Report, sel.Metric)
		if err != nil {
			h.log.Error("render report", zap.String("report", string(sel.Report)), zap.String("metric", string(sel.Metric)), zap.Error(err))
			p.Sections = append(p.Sections, Section{View: sel, Err: err.Error()})
			continue
		}
		p.Sections = append(p.Sections, Section{View: v})
	}

	c.HTML(http.StatusOK, "dashboard.html", p)
}

func (h *ReportsHandler) get(c *gin.Context) {
	report, err := rentals.ParseReport(c.Param("report"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	metric, err := rentals.ParseMetric(c.DefaultQuery("metric", string(rentals.MetricRentals)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, err := h.svc.Render(c.Request.Context(), report, metric)
	if err != nil {
		h.log.Error("render report", zap.String("report", string(report)), zap.String("metric", string(metric)), zap.Error(err))
		c.JSON(StatusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v)
}

// StatusFor maps data access errors onto HTTP status codes.
func StatusFor(err error) int {
	var connErr *store.ConnectionError
	if errors.As(err, &connErr) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
