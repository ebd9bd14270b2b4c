package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cenergia/mercado/internal/clock"
	"github.com/cenergia/mercado/internal/comparison/domain"
	"github.com/cenergia/mercado/internal/config"
	recdomain "github.com/cenergia/mercado/internal/records/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Params collects the dependencies for the comparison service.
type Params struct {
	fx.In

	DB    *gorm.DB
	Clock clock.Clock
	Cfg   config.Config
	Log   *zap.Logger
}

type service struct {
	db     *gorm.DB
	clock  clock.Clock
	claves []string
	log    *zap.Logger
}

// NewService builds the comparison service.
func NewService(p Params) domain.Service {
	return &service{
		db:     p.DB,
		clock:  p.Clock,
		claves: p.Cfg.PNDClaves,
		log:    p.Log.Named("comparison.service"),
	}
}

type peakRow struct {
	Fecha      opDate   `gorm:"column:Fecha"`
	MaxDemanda *float64 `gorm:"column:MaxDemanda"`
}

// DemandComparison reports the peak of the summed hourly demand per day for
// the SIN system, year-to-date against the equivalent prior-year window.
func (s *service) DemandComparison(ctx context.Context, gerencia string) (domain.DemandComparison, error) {
	today := dateOnly(s.clock.Now())
	cyStart, cyEnd, pyStart, pyEnd := comparisonPeriods(today)

	var rows []peakRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT "FechaOperacion" AS "Fecha", MAX("Demanda") AS "MaxDemanda"
		FROM (
			SELECT "FechaOperacion", "HoraOperacion", SUM("Demanda") AS "Demanda"
			FROM "Demanda"
			WHERE "Sistema" = 'SIN'
				AND (? = '' OR "Gerencia" = ?)
				AND (
					("FechaOperacion" BETWEEN ? AND ?)
					OR ("FechaOperacion" BETWEEN ? AND ?)
				)
			GROUP BY "FechaOperacion", "HoraOperacion"
		) AS "Subconsulta"
		GROUP BY "FechaOperacion"
		ORDER BY "FechaOperacion"`,
		gerencia, gerencia, cyStart, cyEnd, pyStart, pyEnd,
	).Scan(&rows).Error
	if err != nil {
		return domain.DemandComparison{}, err
	}

	out := domain.DemandComparison{
		Status:           "success",
		Filter:           domain.Filter{Gerencia: orAll(gerencia)},
		DateRanges:       dateRanges(cyStart, cyEnd, pyStart, pyEnd),
		CurrentYearData:  []domain.DatePeak{},
		PreviousYearData: []domain.DatePeak{},
	}
	for _, r := range rows {
		point := domain.DatePeak{Fecha: r.Fecha.ISO(), MaxDemandaMWh: r.MaxDemanda}
		if r.Fecha.Year() == today.Year() {
			out.CurrentYearData = append(out.CurrentYearData, point)
		} else {
			out.PreviousYearData = append(out.PreviousYearData, point)
		}
	}
	return out, nil
}

type aggregateRow struct {
	Gerencia string   `gorm:"column:Gerencia"`
	Fecha    opDate   `gorm:"column:Fecha"`
	Promedio *float64 `gorm:"column:Promedio_Demanda"`
	Maximo   *float64 `gorm:"column:Maximo_Demanda"`
	Minimo   *float64 `gorm:"column:Minimo_Demanda"`
}

// DemandAggregates reports per-gerencia demand statistics on the latest
// ingested day and the day one week before it. The anchor is the newest
// FechaOperacion on record rather than the wall clock, since upstream data
// can lag.
func (s *service) DemandAggregates(ctx context.Context) (domain.DemandAggregates, error) {
	latest, ok, err := s.latestDate(ctx, "Demanda", "FechaOperacion")
	if err != nil {
		return domain.DemandAggregates{}, err
	}
	if !ok {
		return domain.DemandAggregates{
			Message:                "No data found in Demanda table.",
			LatestDayRecords:       []domain.GerenciaAggregate{},
			PreviousWeekDayRecords: []domain.GerenciaAggregate{},
		}, nil
	}

	prior := latest.AddDate(0, 0, -7)
	priorExists, err := s.dateExists(ctx, "Demanda", "FechaOperacion", prior)
	if err != nil {
		return domain.DemandAggregates{}, err
	}
	if !priorExists {
		s.log.Warn("no demand data one week prior to latest date",
			zap.String("latest", latest.Format("2006-01-02")),
		)
	}

	dates := []time.Time{latest}
	if priorExists {
		dates = append(dates, prior)
	}

	var rows []aggregateRow
	err = s.db.WithContext(ctx).Raw(`
		SELECT "Gerencia", "FechaOperacion" AS "Fecha",
			AVG("Demanda") AS "Promedio_Demanda",
			MAX("Demanda") AS "Maximo_Demanda",
			MIN("Demanda") AS "Minimo_Demanda"
		FROM "Demanda"
		WHERE "FechaOperacion" IN ? AND "Sistema" = 'SIN'
		GROUP BY "Gerencia", "FechaOperacion"
		ORDER BY "Gerencia", "FechaOperacion"`,
		dates,
	).Scan(&rows).Error
	if err != nil {
		return domain.DemandAggregates{}, err
	}

	out := domain.DemandAggregates{
		LatestDate:             isoPtr(latest),
		LatestDayRecords:       []domain.GerenciaAggregate{},
		PreviousWeekDayRecords: []domain.GerenciaAggregate{},
	}
	if priorExists {
		out.PreviousWeekDate = isoPtr(prior)
	}
	for _, r := range rows {
		rec := domain.GerenciaAggregate{
			Gerencia:        r.Gerencia,
			Fecha:           r.Fecha.ISO(),
			PromedioDemanda: r.Promedio,
			MaximoDemanda:   r.Maximo,
			MinimoDemanda:   r.Minimo,
		}
		switch {
		case recdomain.SameDay(r.Fecha.Time(), latest):
			out.LatestDayRecords = append(out.LatestDayRecords, rec)
		case priorExists && recdomain.SameDay(r.Fecha.Time(), prior):
			out.PreviousWeekDayRecords = append(out.PreviousWeekDayRecords, rec)
		}
	}
	return out, nil
}

// CurrentDayDemand lists today's demand rows.
func (s *service) CurrentDayDemand(ctx context.Context) ([]recdomain.DemandRecord, error) {
	today := dateOnly(s.clock.Now())
	rows := []recdomain.DemandRecord{}
	err := s.db.WithContext(ctx).
		Where(map[string]any{"FechaOperacion": today}).
		Order(`"HoraOperacion", "Gerencia"`).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type balancePeakRow struct {
	Fecha   opDate   `gorm:"column:Fecha"`
	MaxSuma *float64 `gorm:"column:MaxSumaPorHora"`
}

// YearlyPeakBalanceComparison reports the daily peak of summed hourly
// balance estimates for the interconnected system, settlement version 0,
// excluding the Baja California systems.
func (s *service) YearlyPeakBalanceComparison(ctx context.Context) (domain.YearlyPeakComparison, error) {
	today := dateOnly(s.clock.Now())
	cyStart, cyEnd, pyStart, pyEnd := comparisonPeriods(today)

	var rows []balancePeakRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT "DiaOperacion" AS "Fecha", MAX("SumaEstimacion") AS "MaxSumaPorHora"
		FROM (
			SELECT "DiaOperacion", "Hora",
				SUM("Estimacion_Demanda_Por_Balance_MWh") AS "SumaEstimacion"
			FROM "DemandaRealBalance"
			WHERE "Sistema" NOT IN ('BCA', 'BCS')
				AND "Liq" = 0
				AND (
					("DiaOperacion" BETWEEN ? AND ?)
					OR ("DiaOperacion" BETWEEN ? AND ?)
				)
			GROUP BY "DiaOperacion", "Hora"
		) AS "Subconsulta"
		GROUP BY "DiaOperacion"
		ORDER BY "DiaOperacion"`,
		cyStart, cyEnd, pyStart, pyEnd,
	).Scan(&rows).Error
	if err != nil {
		return domain.YearlyPeakComparison{}, err
	}

	out := domain.YearlyPeakComparison{
		CurrentYearData:  []domain.BalancePeak{},
		PreviousYearData: []domain.BalancePeak{},
		DateRanges:       dateRanges(cyStart, cyEnd, pyStart, pyEnd),
	}
	for _, r := range rows {
		point := domain.BalancePeak{Fecha: r.Fecha.ISO(), MaxDemandaHorariaMWh: r.MaxSuma}
		if r.Fecha.Year() == today.Year() {
			out.CurrentYearData = append(out.CurrentYearData, point)
		} else {
			out.PreviousYearData = append(out.PreviousYearData, point)
		}
	}
	return out, nil
}

type pndRow struct {
	Fecha   opDate   `gorm:"column:Fecha"`
	Average *float64 `gorm:"column:average_PML"`
}

// PNDDailyAverage reports the daily average day-ahead price of the
// configured zone claves, anchored at the newest Fecha on record.
func (s *service) PNDDailyAverage(ctx context.Context) (domain.PNDDailyAverage, error) {
	latest, ok, err := s.latestDate(ctx, "PNDMDA", "Fecha")
	if err != nil {
		return domain.PNDDailyAverage{}, err
	}
	if !ok {
		return domain.PNDDailyAverage{
			CurrentYearData:  []domain.PNDAverage{},
			PreviousYearData: []domain.PNDAverage{},
		}, nil
	}

	currentYear := latest.Year()
	previousYear := currentYear - 1
	cyStart := time.Date(currentYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	pyStart := time.Date(previousYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	pyEnd := sameDayPreviousYear(latest)

	var rows []pndRow
	err = s.db.WithContext(ctx).Raw(`
		SELECT "Fecha", AVG("PML") AS "average_PML"
		FROM "PNDMDA"
		WHERE "Clave" IN ?
			AND (
				("Fecha" >= ? AND "Fecha" <= ?)
				OR ("Fecha" >= ? AND "Fecha" <= ?)
			)
		GROUP BY "Fecha"
		ORDER BY "Fecha"`,
		s.claves, cyStart, latest, pyStart, pyEnd,
	).Scan(&rows).Error
	if err != nil {
		return domain.PNDDailyAverage{}, err
	}

	out := domain.PNDDailyAverage{
		CurrentYearData:  []domain.PNDAverage{},
		PreviousYearData: []domain.PNDAverage{},
		CurrentYear:      currentYear,
		PreviousYear:     previousYear,
	}
	for _, r := range rows {
		point := domain.PNDAverage{Fecha: r.Fecha.ISO(), AveragePML: r.Average}
		switch r.Fecha.Year() {
		case currentYear:
			out.CurrentYearData = append(out.CurrentYearData, point)
		case previousYear:
			out.PreviousYearData = append(out.PreviousYearData, point)
		}
	}
	return out, nil
}

func (s *service) latestDate(ctx context.Context, table, column string) (time.Time, bool, error) {
	var row struct {
		Latest opDate `gorm:"column:latest"`
	}
	// table and column come from the registry, never from request input.
	query := fmt.Sprintf(`SELECT %q AS "latest" FROM %q ORDER BY %q DESC LIMIT 1`, column, table, column)
	tx := s.db.WithContext(ctx).Raw(query).Scan(&row)
	if tx.Error != nil {
		return time.Time{}, false, tx.Error
	}
	if tx.RowsAffected == 0 {
		return time.Time{}, false, nil
	}
	return row.Latest.Time(), true, nil
}

func orAll(gerencia string) string {
	if gerencia == "" {
		return "ALL"
	}
	return gerencia
}

func (s *service) dateExists(ctx context.Context, table, column string, date time.Time) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Table(table).
		Where(map[string]any{column: date}).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// comparisonPeriods computes the year-to-date window and the matching
// prior-year window ending on the same calendar day.
func comparisonPeriods(today time.Time) (cyStart, cyEnd, pyStart, pyEnd time.Time) {
	cyStart = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	cyEnd = today
	pyStart = time.Date(today.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
	pyEnd = sameDayPreviousYear(today)
	return
}

// sameDayPreviousYear maps a date onto the prior year, clamping Feb 29 to
// the last day of February.
func sameDayPreviousYear(t time.Time) time.Time {
	prev := time.Date(t.Year()-1, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if prev.Month() != t.Month() {
		prev = time.Date(t.Year()-1, t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	}
	return prev
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateRanges(cyStart, cyEnd, pyStart, pyEnd time.Time) domain.DateRanges {
	return domain.DateRanges{
		CurrentYear:  domain.DateRange{Start: iso(cyStart), End: iso(cyEnd)},
		PreviousYear: domain.DateRange{Start: iso(pyStart), End: iso(pyEnd)},
	}
}

func iso(t time.Time) string {
	return t.Format("2006-01-02")
}

func isoPtr(t time.Time) *string {
	s := iso(t)
	return &s
}
