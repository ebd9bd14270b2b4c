package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cenergia/mercado/internal/clock"
	comparisonservice "github.com/cenergia/mercado/internal/comparison/service"
	"github.com/cenergia/mercado/internal/config"
	"github.com/cenergia/mercado/internal/ingest/repository"
	ingestservice "github.com/cenergia/mercado/internal/ingest/service"
	"github.com/cenergia/mercado/internal/observability/metrics"
	recdomain "github.com/cenergia/mercado/internal/records/domain"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&recdomain.DemandRecord{},
		&recdomain.TransferCapacityRecord{},
		&recdomain.BalanceEstimateRecord{},
		&recdomain.SettledInterchangeRecord{},
	))
	for _, table := range recdomain.PriceTables {
		require.NoError(t, conn.Table(table).AutoMigrate(&recdomain.PriceNodeRecord{}))
	}

	log := zap.NewNop()
	cfg := config.Config{PNDClaves: []string{"MONTERREY", "PUEBLA"}}

	ingestSvc := ingestservice.NewService(ingestservice.Params{
		DB:      conn,
		Store:   repository.New(conn),
		Metrics: metrics.New(prometheus.NewRegistry()),
		Log:     log,
	})
	comparisonSvc := comparisonservice.NewService(comparisonservice.Params{
		DB:    conn,
		Clock: clock.NewFakeClock(time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)),
		Cfg:   cfg,
		Log:   log,
	})

	engine := NewEngine(log)
	NewServer(ServerParams{
		Gin:           engine,
		Cfg:           cfg,
		DB:            conn,
		IngestSvc:     ingestSvc,
		ComparisonSvc: comparisonSvc,
		Log:           log,
	})
	return engine
}

func perform(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func demandBody(hora int, demanda float64) map[string]any {
	return map[string]any{
		"FechaOperacion": "2024-03-01",
		"HoraOperacion":  hora,
		"Gerencia":       "Noroeste",
		"Sistema":        "SIN",
		"Demanda":        demanda,
	}
}

func priceBody(hora int) map[string]any {
	return map[string]any{
		"Sistema": "SIN",
		"Fecha":   "2024-03-01",
		"Hora":    hora,
		"Clave":   "MONTERREY",
		"PML":     512.34,
	}
}

func balanceBody(hora int, published string) map[string]any {
	return map[string]any{
		"DiaOperacion":                       "01/03/2024",
		"Sistema":                            "SIN",
		"Area":                               "NTE",
		"Hora":                               hora,
		"Liq":                                0,
		"FechaPublicacion":                   published,
		"Estimacion_Demanda_Por_Balance_MWh": "987.65432",
	}
}

func TestHealth(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestUpsertDemand_Lifecycle(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/demanda", demandBody(10, 1500))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "inserted", body["action"])

	// Identical payload conflicts.
	w = perform(t, engine, http.MethodPost, "/api/v1/mercado/demanda", demandBody(10, 1500))
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	body = decodeBody(t, w)
	assert.Equal(t, "conflict", body["status"])
	assert.Equal(t, "none", body["action"])

	// Changed payload updates in place.
	w = perform(t, engine, http.MethodPost, "/api/v1/mercado/demanda", demandBody(10, 1600))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "updated", decodeBody(t, w)["action"])
}

func TestUpsertDemand_MalformedBody(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/demanda", []any{demandBody(1, 100)})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["message"], "JSON object")
}

func TestUpsertDemand_ValidationError(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/demanda", map[string]any{"Demanda": 10})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "validation failed", body["message"])
	assert.NotEmpty(t, body["errors"])
}

func TestInsertPriceBatch_PartialSuccess(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/mda_mtr/pnd_mda", []any{
		priceBody(1),
		priceBody(30),
		priceBody(2),
	})
	require.Equal(t, http.StatusMultiStatus, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "partial_success", body["status"])
	summary := body["summary"].(map[string]any)
	assert.EqualValues(t, 3, summary["total_records_received"])
	assert.EqualValues(t, 2, summary["inserted"])
	assert.EqualValues(t, 1, summary["failed_validation"])
	assert.EqualValues(t, 0, summary["database_errors"])
	_, hasUpdated := summary["updated"]
	assert.False(t, hasUpdated)
	assert.Len(t, body["errors"], 1)
}

func TestInsertPriceBatch_EmptyList(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/mda_mtr/pml_mtr", []any{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "success", decodeBody(t, w)["status"])
}

func TestInsertPriceBatch_UnknownVariant(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/mda_mtr/mediciones", []any{priceBody(1)})
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	assert.Contains(t, decodeBody(t, w)["message"], "mediciones")
}

func TestInsertPriceBatch_BodyNotAList(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/mda_mtr/pnd_mda", priceBody(1))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["message"], "JSON list")
}

func TestPriceDataExists(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/mda_mtr/pnd_mda", []any{priceBody(1)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = perform(t, engine, http.MethodGet, "/api/v1/mercado/mda_mtr/pnd_mda/2024-03-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["exists"])

	w = perform(t, engine, http.MethodGet, "/api/v1/mercado/mda_mtr/pnd_mda/2024-03-02", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["exists"])

	w = perform(t, engine, http.MethodGet, "/api/v1/mercado/mda_mtr/pnd_mda/01-03-2024", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["message"], "YYYY-MM-DD")

	// Only the four price tables answer existence checks.
	w = perform(t, engine, http.MethodGet, "/api/v1/mercado/mda_mtr/demanda/2024-03-01", nil)
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestInsertBalanceBatch_GuardedLifecycle(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/demanda-real-balance", []any{
		balanceBody(1, "2024-03-08"),
		balanceBody(2, "2024-03-08"),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "success", body["status"])
	assert.EqualValues(t, 2, body["summary"].(map[string]any)["inserted"])

	// Same publication date again is refused outright.
	w = perform(t, engine, http.MethodPost, "/api/v1/mercado/demanda-real-balance", []any{
		balanceBody(3, "2024-03-08"),
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Contains(t, decodeBody(t, w)["message"], "2024-03-08")
}

func TestInsertBalanceBatch_ValidationAbortsAll(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/demanda-real-balance", []any{
		balanceBody(1, "2024-03-08"),
		balanceBody(25, "2024-03-08"),
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "validation failed", body["message"])
	assert.Len(t, body["errors"], 1)
}

func TestInsertBalanceBatch_EmptyList(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/demanda-real-balance", []any{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "input data list cannot be empty", decodeBody(t, w)["message"])
}

func TestInsertSettledInterchangeBatch(t *testing.T) {
	engine := newTestServer(t)

	record := map[string]any{
		"DiaOperacion":              "2024-03-01",
		"Fecha_Publicacion":         "2024-03-08",
		"Sistema":                   "SIN",
		"Liquidacion":               0,
		"EnlaceInternacional":       "CFE-ERCOT",
		"HoraOperacion":             1,
		"Importacion_Comercial_MWh": "1.23456",
		"Exportacion_Total_MWh":     "---",
	}
	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/imp-exp-liquidada", []any{record})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decodeBody(t, w)["summary"].(map[string]any)["inserted"])
}

func TestInsertTransferCapacityBatch(t *testing.T) {
	engine := newTestServer(t)

	record := map[string]any{
		"Sistema":              "SIN",
		"FechaOperacion":       "2024-03-01",
		"Enlace":               "B2B Norte",
		"Horario":              1,
		"CapTransDisImpComMwh": 100,
		"CapResImpEneInadMwh":  100,
		"CapResImpConfMWh":     100,
		"CapAbsTransDisImpMWh": 100,
		"CapTransDisExpComMwh": 100,
		"CapResExpEneInaMwh":   100,
		"CapResExpConfMwh":     100,
		"CapAbsTransDisExpMwh": 100,
	}
	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/capacidad-transferencia", []any{record})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "success", decodeBody(t, w)["status"])
}

func TestDemandComparison_Handler(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/demanda", demandBody(10, 1500))
	require.Equal(t, http.StatusCreated, w.Code)

	w = perform(t, engine, http.MethodGet, "/api/v1/mercado/demanda/comparison?gerencia=Noroeste", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "Noroeste", body["filter"].(map[string]any)["gerencia"])
	assert.Len(t, body["currentYearData"], 1)
}

func TestCurrentDayDemand_Handler(t *testing.T) {
	engine := newTestServer(t)

	// The fake clock pins today to 2024-03-01.
	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/demanda", demandBody(10, 1500))
	require.Equal(t, http.StatusCreated, w.Code)

	w = perform(t, engine, http.MethodGet, "/api/v1/mercado/demanda/current-day", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Noroeste", rows[0]["Gerencia"])
}

func TestDemandAggregates_Handler(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodGet, "/api/v1/mercado/demanda/aggregates", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "No data found in Demanda table.", decodeBody(t, w)["message"])
}

func TestPNDDailyAverage_Handler(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodPost, "/api/v1/mercado/mda_mtr/pnd_mda", []any{priceBody(1)})
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, engine, http.MethodGet, "/api/v1/mercado/pnd/daily-average", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.EqualValues(t, 2024, body["currentYear"])
	assert.Len(t, body["currentYearData"], 1)
}

func TestYearlyPeakComparison_Handler(t *testing.T) {
	engine := newTestServer(t)

	w := perform(t, engine, http.MethodGet, "/api/v1/mercado/demanda-real-balance/yearly-peak-comparison", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Empty(t, body["currentYearData"])
	assert.Empty(t, body["previousYearData"])
}
