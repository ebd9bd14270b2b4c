// Package domain defines the read-side reports built on top of ingested
// market records. Field names follow the upstream reporting conventions
// consumed by the dashboards.
package domain

import (
	"context"

	recdomain "github.com/cenergia/mercado/internal/records/domain"
)

// DateRange bounds one comparison period, ISO dates inclusive.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DateRanges pairs the year-to-date period with its prior-year twin.
type DateRanges struct {
	CurrentYear  DateRange `json:"currentYear"`
	PreviousYear DateRange `json:"previousYear"`
}

// Filter echoes the request filters back to the client.
type Filter struct {
	Gerencia string `json:"gerencia"`
}

// DatePeak is the peak hourly system demand of one day.
type DatePeak struct {
	Fecha         string   `json:"Fecha"`
	MaxDemandaMWh *float64 `json:"MaxDemanda_MWh"`
}

// DemandComparison compares daily demand peaks year over year.
type DemandComparison struct {
	Status           string     `json:"status"`
	Filter           Filter     `json:"filter"`
	DateRanges       DateRanges `json:"dateRanges"`
	CurrentYearData  []DatePeak `json:"currentYearData"`
	PreviousYearData []DatePeak `json:"previousYearData"`
}

// GerenciaAggregate is one region's demand statistics for a day.
type GerenciaAggregate struct {
	Gerencia        string   `json:"Gerencia"`
	Fecha           string   `json:"Fecha"`
	PromedioDemanda *float64 `json:"Promedio_Demanda"`
	MaximoDemanda   *float64 `json:"Maximo_Demanda"`
	MinimoDemanda   *float64 `json:"Minimo_Demanda"`
}

// DemandAggregates contrasts the latest ingested day against the same
// weekday one week earlier.
type DemandAggregates struct {
	Message                string              `json:"message,omitempty"`
	LatestDate             *string             `json:"latest_date"`
	PreviousWeekDate       *string             `json:"previous_week_date"`
	LatestDayRecords       []GerenciaAggregate `json:"latest_day_records"`
	PreviousWeekDayRecords []GerenciaAggregate `json:"previous_week_day_records"`
}

// BalancePeak is the peak hourly balance estimate of one day.
type BalancePeak struct {
	Fecha                 string   `json:"Fecha"`
	MaxDemandaHorariaMWh  *float64 `json:"MaxDemandaHoraria_MWh"`
}

// YearlyPeakComparison compares settlement balance peaks year over year.
type YearlyPeakComparison struct {
	CurrentYearData  []BalancePeak `json:"currentYearData"`
	PreviousYearData []BalancePeak `json:"previousYearData"`
	DateRanges       DateRanges    `json:"dateRanges"`
}

// PNDAverage is the average day-ahead zone price of one day.
type PNDAverage struct {
	Fecha      string   `json:"Fecha"`
	AveragePML *float64 `json:"average_PML"`
}

// PNDDailyAverage compares daily zone price averages year over year.
type PNDDailyAverage struct {
	CurrentYearData  []PNDAverage `json:"currentYearData"`
	PreviousYearData []PNDAverage `json:"previousYearData"`
	CurrentYear      int          `json:"currentYear"`
	PreviousYear     int          `json:"previousYear"`
}

// Service answers aggregation queries over the ingested records.
type Service interface {
	// DemandComparison reports the daily peak of summed hourly demand for
	// the SIN system, year-to-date against the prior year, optionally
	// restricted to one gerencia.
	DemandComparison(ctx context.Context, gerencia string) (DemandComparison, error)
	// DemandAggregates reports AVG/MAX/MIN demand per gerencia on the
	// latest ingested day and one week prior.
	DemandAggregates(ctx context.Context) (DemandAggregates, error)
	// CurrentDayDemand lists the demand rows for today's operating date.
	CurrentDayDemand(ctx context.Context) ([]recdomain.DemandRecord, error)
	// YearlyPeakBalanceComparison reports the daily peak of summed hourly
	// balance estimates (Liq 0, Baja California systems excluded).
	YearlyPeakBalanceComparison(ctx context.Context) (YearlyPeakComparison, error)
	// PNDDailyAverage reports the daily average day-ahead price of the
	// configured zone claves.
	PNDDailyAverage(ctx context.Context) (PNDDailyAverage, error)
}
