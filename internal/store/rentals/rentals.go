package rentals

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/samirwankhede/pagila-reports/internal/store"
)

// Report identifies one of the dashboard reports.
type Report string

const (
	ReportByCategory Report = "category"
	ReportOverTime   Report = "trend"
)

// Metric selects the aggregate plotted on the y axis.
type Metric string

const (
	MetricRentals Metric = "rentals"
	MetricRevenue Metric = "revenue"
)

var (
	Reports = []Report{ReportByCategory, ReportOverTime}
	Metrics = []Metric{MetricRentals, MetricRevenue}
)

func ParseReport(s string) (Report, error) {
	for _, r := range Reports {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown report %q", s)
}

func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Every statement the dashboard can issue. Nothing is interpolated.
// SUM over a group of NULL amounts yields NULL; COALESCE renders it as 0.
var queries = map[Report]map[Metric]string{
	ReportByCategory: {
		MetricRentals: `
			SELECT film_category, COUNT(*) AS value
			FROM vw_rental_analysis
			GROUP BY film_category
			ORDER BY value DESC`,
		MetricRevenue: `
			SELECT film_category, COALESCE(SUM(rental_amount), 0) AS value
			FROM vw_rental_analysis
			GROUP BY film_category
			ORDER BY value DESC`,
	},
	ReportOverTime: {
		MetricRentals: `
			SELECT year, month, month_name, COUNT(*) AS value
			FROM vw_rental_analysis
			GROUP BY year, month, month_name
			ORDER BY year, month`,
		MetricRevenue: `
			SELECT year, month, month_name, COALESCE(SUM(rental_amount), 0) AS value
			FROM vw_rental_analysis
			GROUP BY year, month, month_name
			ORDER BY year, month`,
	},
}

var columns = map[Report][]string{
	ReportByCategory: {"film_category", "value"},
	ReportOverTime:   {"year", "month", "month_name", "value"},
}

// SQL returns the statement for a report and metric pair.
func SQL(r Report, m Metric) (string, error) {
	byMetric, ok := queries[r]
	if !ok {
		return "", fmt.Errorf("unknown report %q", r)
	}
	q, ok := byMetric[m]
	if !ok {
		return "", fmt.Errorf("unknown metric %q", m)
	}
	return q, nil
}

// Columns lists the result columns a report's statements select, in order.
func Columns(r Report) []string {
	return append([]string(nil), columns[r]...)
}

// Querier is satisfied by *store.DB.
type Querier interface {
	QueryTable(ctx context.Context, sql string) (*store.Table, error)
}

type RentalsRepository struct {
	db  Querier
	log *zap.Logger
}

func NewRentalsRepository(db Querier, log *zap.Logger) *RentalsRepository {
	return &RentalsRepository{db: db, log: log}
}

func (r *RentalsRepository) Fetch(ctx context.Context, report Report, metric Metric) (*store.Table, error) {
	q, err := SQL(report, metric)
	if err != nil {
		return nil, err
	}
	t, err := r.db.QueryTable(ctx, q)
	if err != nil {
		r.log.Error("fetch report",
			zap.String("report", string(report)),
			zap.String("metric", string(metric)),
			zap.Error(err),
		)
		return nil, err
	}
	return t, nil
}
