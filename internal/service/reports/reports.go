package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/samirwankhede/pagila-reports/internal/metrics"
	"github.com/samirwankhede/pagila-reports/internal/store"
	"github.com/samirwankhede/pagila-reports/internal/store/rentals"
)

// TimeColumn is the label column added to the trend report.
const TimeColumn = "time"

// PublishTimeout bounds how long a render waits on the event publisher.
const PublishTimeout = time.Second

// Source fetches the raw table for a report.
type Source interface {
	Fetch(ctx context.Context, report rentals.Report, metric rentals.Metric) (*store.Table, error)
}

// Publisher receives render events. It may be nil.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

type Option struct {
	Value    rentals.Metric `json:"value"`
	Label    string         `json:"label"`
	Selected bool           `json:"selected"`
}

// Chart is everything the browser needs to draw a report: the x category or
// time labels and one y value per label, in query order.
type Chart struct {
	Type   string    `json:"type"`
	X      []string  `json:"x"`
	Y      []float64 `json:"y"`
	XTitle string    `json:"x_title"`
	YTitle string    `json:"y_title"`
}

type View struct {
	Report  rentals.Report `json:"report"`
	Metric  rentals.Metric `json:"metric"`
	Header  string         `json:"header"`
	Label   string         `json:"label"`
	Input   string         `json:"input"`
	Options []Option       `json:"options"`
	Chart   Chart          `json:"chart"`
	Table   *store.Table   `json:"table"`
}

type layout struct {
	header string
	label  string
	input  string
	chart  string
	x      string
	labels map[rentals.Metric]string
}

var layouts = map[rentals.Report]layout{
	rentals.ReportByCategory: {
		header: "Report 1: Rentals by Film Category (Bar Chart)",
		label:  "Report 1 – Y-Axis",
		input:  "report1",
		chart:  "bar",
		x:      "film_category",
		labels: map[rentals.Metric]string{
			rentals.MetricRentals: "Total Rentals",
			rentals.MetricRevenue: "Total Revenue",
		},
	},
	rentals.ReportOverTime: {
		header: "Report 2: Rental Trends Over Time (Line Chart)",
		label:  "Report 2 – Y-Axis",
		input:  "report2",
		chart:  "line",
		x:      TimeColumn,
		labels: map[rentals.Metric]string{
			rentals.MetricRentals: "Number of Rentals",
			rentals.MetricRevenue: "Total Revenue",
		},
	},
}

type ReportsService struct {
	log    *zap.Logger
	source Source
	events Publisher
}

func NewReportsService(log *zap.Logger, source Source, events Publisher) *ReportsService {
	return &ReportsService{log: log, source: source, events: events}
}

// Input returns the form field name that selects the metric of a report.
func Input(r rentals.Report) string { return layouts[r].input }

// Describe returns the static part of a report view: header, selector and
// options. Chart and Table are left empty.
func Describe(report rentals.Report, metric rentals.Metric) (*View, error) {
	l, ok := layouts[report]
	if !ok {
		return nil, fmt.Errorf("unknown report %q", report)
	}
	if _, ok := l.labels[metric]; !ok {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
	v := &View{
		Report: report,
		Metric: metric,
		Header: l.header,
		Label:  l.label,
		Input:  l.input,
	}
	for _, m := range rentals.Metrics {
		v.Options = append(v.Options, Option{Value: m, Label: l.labels[m], Selected: m == metric})
	}
	return v, nil
}

// Render runs the report's query and shapes the result for display. Rows keep
// the order the database returned; nothing is sorted or aggregated here.
func (s *ReportsService) Render(ctx context.Context, report rentals.Report, metric rentals.Metric) (*View, error) {
	v, err := Describe(report, metric)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	t, err := s.source.Fetch(ctx, report, metric)
	if err != nil {
		metrics.ReportRendersTotal.WithLabelValues(string(report), string(metric), "error").Inc()
		return nil, err
	}

	if report == rentals.ReportOverTime {
		if err := t.AddColumn(TimeColumn, timeLabel(t)); err != nil {
			metrics.ReportRendersTotal.WithLabelValues(string(report), string(metric), "error").Inc()
			return nil, fmt.Errorf("derive time label: %w", err)
		}
	}

	chart, err := buildChart(t, layouts[report], metric)
	if err != nil {
		metrics.ReportRendersTotal.WithLabelValues(string(report), string(metric), "error").Inc()
		return nil, err
	}
	v.Chart = chart
	v.Table = t

	took := time.Since(start)
	metrics.ReportRendersTotal.WithLabelValues(string(report), string(metric), "ok").Inc()
	s.log.Info("report rendered",
		zap.String("report", string(report)),
		zap.String("metric", string(metric)),
		zap.Int("rows", t.Len()),
		zap.Duration("took", took),
	)
	s.publish(ctx, v, took)
	return v, nil
}

// RenderedEvent is published after every successful render.
type RenderedEvent struct {
	Type       string         `json:"type"`
	Report     rentals.Report `json:"report"`
	Metric     rentals.Metric `json:"metric"`
	Rows       int            `json:"rows"`
	DurationMS int64          `json:"duration_ms"`
	RenderedAt time.Time      `json:"rendered_at"`
}

func (s *ReportsService) publish(ctx context.Context, v *View, took time.Duration) {
	if s.events == nil {
		return
	}
	b, err := json.Marshal(RenderedEvent{
		Type:       "report.rendered",
		Report:     v.Report,
		Metric:     v.Metric,
		Rows:       v.Table.Len(),
		DurationMS: took.Milliseconds(),
		RenderedAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("encode render event", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()
	if err := s.events.Publish(ctx, []byte(v.Report), b); err != nil {
		s.log.Warn("publish render event", zap.String("report", string(v.Report)), zap.Error(err))
	}
}

// TimeLabel formats a period as YYYY-MM.
func TimeLabel(year, month int64) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

func timeLabel(t *store.Table) func(row []any) (any, error) {
	yi, mi := t.Index("year"), t.Index("month")
	return func(row []any) (any, error) {
		if yi < 0 || mi < 0 {
			return nil, fmt.Errorf("year or month column missing")
		}
		y, err := toInt(row[yi])
		if err != nil {
			return nil, fmt.Errorf("year: %w", err)
		}
		m, err := toInt(row[mi])
		if err != nil {
			return nil, fmt.Errorf("month: %w", err)
		}
		return TimeLabel(y, m), nil
	}
}

func buildChart(t *store.Table, l layout, metric rentals.Metric) (Chart, error) {
	c := Chart{
		Type:   l.chart,
		X:      make([]string, 0, t.Len()),
		Y:      make([]float64, 0, t.Len()),
		XTitle: l.x,
		YTitle: l.labels[metric],
	}
	xi, yi := t.Index(l.x), t.Index("value")
	if t.Len() > 0 && (xi < 0 || yi < 0) {
		return Chart{}, fmt.Errorf("result lacks %q or %q column", l.x, "value")
	}
	for i, row := range t.Rows {
		y, err := toFloat(row[yi])
		if err != nil {
			return Chart{}, fmt.Errorf("row %d value: %w", i, err)
		}
		c.X = append(c.X, fmt.Sprint(row[xi]))
		c.Y = append(c.Y, y)
	}
	return c, nil
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		return int64(x), nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// toFloat treats NULL as zero.
func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(x, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
