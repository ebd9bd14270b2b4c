package coerce

import (
	"testing"
	"time"

	"github.com/cenergia/mercado/internal/records/domain"
	"github.com/cenergia/mercado/internal/records/registry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLookup(t *testing.T, token string) domain.Descriptor {
	t.Helper()
	desc, err := registry.Lookup(token)
	require.NoError(t, err)
	return desc
}

func validDemand() map[string]any {
	return map[string]any{
		"FechaOperacion": "2024-03-01",
		"HoraOperacion":  float64(10),
		"Gerencia":       "Noroeste",
		"Sistema":        "SIN",
		"Demanda":        float64(1500),
	}
}

func TestRecord_ValidDemand(t *testing.T) {
	desc := mustLookup(t, "demanda")

	values, reasons := Record(desc, validDemand())
	require.Empty(t, reasons)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), values["FechaOperacion"])
	assert.Equal(t, int64(10), values["HoraOperacion"])
	assert.Equal(t, "Noroeste", values["Gerencia"])
	assert.Equal(t, int64(1500), values["Demanda"])
	// Omitted optional measurements are explicit NULLs.
	assert.Nil(t, values["Generacion"])
	assert.Nil(t, values["Pronostico"])
	assert.Nil(t, values["Enlace"])
}

func TestRecord_MissingRequiredKeysReportedTogether(t *testing.T) {
	desc := mustLookup(t, "demanda")

	_, reasons := Record(desc, map[string]any{"Demanda": float64(100)})
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "missing required key fields")
	assert.Contains(t, reasons[0], "FechaOperacion")
	assert.Contains(t, reasons[0], "HoraOperacion")
	assert.Contains(t, reasons[0], "Gerencia")
}

func TestRecord_NullRequiredFieldFails(t *testing.T) {
	desc := mustLookup(t, "demanda")

	record := validDemand()
	record["Gerencia"] = nil
	_, reasons := Record(desc, record)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "Gerencia is required")
}

func TestRecord_DemandSystemDefault(t *testing.T) {
	desc := mustLookup(t, "demanda")

	record := validDemand()
	delete(record, "Sistema")
	values, reasons := Record(desc, record)
	require.Empty(t, reasons)
	assert.Equal(t, "UNK", values["Sistema"])
}

func TestRecord_HourBoundsPerVariant(t *testing.T) {
	tests := []struct {
		token string
		field string
		ok    []float64
		bad   []float64
	}{
		{token: "demanda", field: "HoraOperacion", ok: []float64{0, 23}, bad: []float64{-1, 24}},
		{token: "pnd_mda", field: "Hora", ok: []float64{0, 24}, bad: []float64{-1, 25}},
		{token: "capacidad_transferencia", field: "Horario", ok: []float64{1, 24}, bad: []float64{0, 25}},
		{token: "demanda_real_balance", field: "Hora", ok: []float64{1, 24}, bad: []float64{0, 25}},
		{token: "imp_exp_liquidada", field: "HoraOperacion", ok: []float64{1, 24}, bad: []float64{0, 25}},
	}

	for _, tc := range tests {
		desc := mustLookup(t, tc.token)
		spec, found := desc.Field(tc.field)
		require.True(t, found, tc.token)
		require.True(t, spec.HasRange, tc.token)

		for _, h := range tc.ok {
			_, err := coerceValue(spec, h)
			assert.NoError(t, err, "%s hour %v", tc.token, h)
		}
		for _, h := range tc.bad {
			_, err := coerceValue(spec, h)
			require.Error(t, err, "%s hour %v", tc.token, h)
			assert.Contains(t, err.Error(), tc.field)
			assert.Contains(t, err.Error(), "out of range")
		}
	}
}

func TestRecord_DateLayouts(t *testing.T) {
	priceDesc := mustLookup(t, "pnd_mda")
	fecha, _ := priceDesc.Field("Fecha")

	v, err := coerceValue(fecha, "2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), v)

	_, err = coerceValue(fecha, "29/02/2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")

	balanceDesc := mustLookup(t, "demanda_real_balance")
	dia, _ := balanceDesc.Field("DiaOperacion")

	v, err = coerceValue(dia, "01/03/2024")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), v)

	_, err = coerceValue(dia, "2024-03-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DD/MM/YYYY")
}

func TestRecord_OptionalDecimalLeniency(t *testing.T) {
	desc := mustLookup(t, "demanda_real_balance")
	spec, _ := desc.Field("Intercambio_Neto_Entre_Gerencias_MWh")

	for _, junk := range []any{"---", "", "n/a"} {
		v, err := coerceValue(spec, junk)
		require.NoError(t, err, "%v", junk)
		assert.Nil(t, v)
	}

	v, err := coerceValue(spec, "12.54321")
	require.NoError(t, err)
	assert.True(t, v.(decimal.Decimal).Equal(decimal.RequireFromString("12.54321")))

	v, err = coerceValue(spec, float64(-3.5))
	require.NoError(t, err)
	assert.True(t, v.(decimal.Decimal).Equal(decimal.RequireFromString("-3.5")))
}

func TestRecord_RequiredIntStrict(t *testing.T) {
	desc := mustLookup(t, "capacidad_transferencia")
	spec, _ := desc.Field("CapTransDisImpComMwh")

	_, err := coerceValue(spec, "not-a-number")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CapTransDisImpComMwh")

	// Fractional values are not integers.
	_, err = coerceValue(spec, 10.5)
	require.Error(t, err)

	v, err := coerceValue(spec, "250")
	require.NoError(t, err)
	assert.Equal(t, int64(250), v)
}

func TestRecord_OptionalIntLeniency(t *testing.T) {
	desc := mustLookup(t, "demanda")
	spec, _ := desc.Field("Generacion")

	v, err := coerceValue(spec, "junk")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRecord_StringMaxLen(t *testing.T) {
	desc := mustLookup(t, "pnd_mda")
	spec, _ := desc.Field("Sistema")

	_, err := coerceValue(spec, "SINX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Sistema too long")
	assert.Contains(t, err.Error(), "max 3")

	v, err := coerceValue(spec, "SIN")
	require.NoError(t, err)
	assert.Equal(t, "SIN", v)
}

func TestRecord_NumericClaveCastToString(t *testing.T) {
	desc := mustLookup(t, "pnd_mda")
	spec, _ := desc.Field("Clave")

	v, err := coerceValue(spec, float64(7))
	require.NoError(t, err)
	assert.Equal(t, "7", v)
}
