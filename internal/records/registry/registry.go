// Package registry holds the catalog of ingestible record variants. Every
// validation rule that differs between variants (hour bounds, field types,
// business keys, write policy) lives here as data, not as per-variant code.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cenergia/mercado/internal/records/domain"
)

const balanceDateLayout = "02/01/2006"

var descriptors = buildDescriptors()

func buildDescriptors() map[string]domain.Descriptor {
	out := make(map[string]domain.Descriptor)

	out["demanda"] = domain.Descriptor{
		Token: "demanda",
		Table: "Demanda",
		Fields: []domain.FieldSpec{
			{Name: "FechaOperacion", Kind: domain.KindDate, Required: true},
			{Name: "HoraOperacion", Kind: domain.KindHour, Required: true, HasRange: true, Min: 0, Max: 23},
			{Name: "Gerencia", Kind: domain.KindString, Required: true, MaxLen: 20},
			{Name: "Sistema", Kind: domain.KindString, MaxLen: 10, Default: "UNK"},
			{Name: "Demanda", Kind: domain.KindInt},
			{Name: "Generacion", Kind: domain.KindInt},
			{Name: "Pronostico", Kind: domain.KindInt},
			{Name: "Enlace", Kind: domain.KindInt},
		},
		BusinessKey:     []string{"FechaOperacion", "HoraOperacion", "Gerencia"},
		Payload:         []string{"Demanda", "Generacion", "Pronostico", "Enlace"},
		Policy:          domain.PolicyUpsert,
		UpdatedAtColumn: "FechaModificacion",
		DateField:       "FechaOperacion",
	}

	for token, table := range map[string]string{
		"pnd_mda": "PNDMDA",
		"pml_mda": "PMLMDA",
		"pml_mtr": "PMLMTR",
		"pnd_mtr": "PNDMTR",
	} {
		out[token] = domain.Descriptor{
			Token: token,
			Table: table,
			Fields: []domain.FieldSpec{
				{Name: "Sistema", Kind: domain.KindString, Required: true, MaxLen: 3},
				{Name: "Fecha", Kind: domain.KindDate, Required: true},
				{Name: "Hora", Kind: domain.KindHour, Required: true, HasRange: true, Min: 0, Max: 24},
				{Name: "Clave", Kind: domain.KindString, Required: true, MaxLen: 20},
				{Name: "PML", Kind: domain.KindDecimal},
				{Name: "Energia", Kind: domain.KindDecimal},
				{Name: "Congestion", Kind: domain.KindDecimal},
				{Name: "Perdidas", Kind: domain.KindDecimal},
			},
			BusinessKey: []string{"Sistema", "Fecha", "Hora", "Clave"},
			Payload:     []string{"PML", "Energia", "Congestion", "Perdidas"},
			Policy:      domain.PolicyInsertOnly,
			DateField:   "Fecha",
		}
	}

	out["capacidad_transferencia"] = domain.Descriptor{
		Token: "capacidad_transferencia",
		Table: "CapacidadTransferencia",
		Fields: []domain.FieldSpec{
			{Name: "Sistema", Kind: domain.KindString, Required: true, MaxLen: 3},
			{Name: "FechaOperacion", Kind: domain.KindDate, Required: true},
			{Name: "Enlace", Kind: domain.KindString, Required: true, MaxLen: 32},
			{Name: "Horario", Kind: domain.KindHour, Required: true, HasRange: true, Min: 1, Max: 24},
			{Name: "CapTransDisImpComMwh", Kind: domain.KindInt, Required: true},
			{Name: "CapResImpEneInadMwh", Kind: domain.KindInt, Required: true},
			{Name: "CapResImpConfMWh", Kind: domain.KindInt, Required: true},
			{Name: "CapAbsTransDisImpMWh", Kind: domain.KindInt, Required: true},
			{Name: "CapTransDisExpComMwh", Kind: domain.KindInt, Required: true},
			{Name: "CapResExpEneInaMwh", Kind: domain.KindInt, Required: true},
			{Name: "CapResExpConfMwh", Kind: domain.KindInt, Required: true},
			{Name: "CapAbsTransDisExpMwh", Kind: domain.KindInt, Required: true},
		},
		BusinessKey: []string{"Sistema", "FechaOperacion", "Enlace", "Horario"},
		Payload: []string{
			"CapTransDisImpComMwh", "CapResImpEneInadMwh", "CapResImpConfMWh",
			"CapAbsTransDisImpMWh", "CapTransDisExpComMwh", "CapResExpEneInaMwh",
			"CapResExpConfMwh", "CapAbsTransDisExpMwh",
		},
		Policy:    domain.PolicyInsertOnly,
		DateField: "FechaOperacion",
	}

	out["demanda_real_balance"] = domain.Descriptor{
		Token: "demanda_real_balance",
		Table: "DemandaRealBalance",
		Fields: []domain.FieldSpec{
			// Upstream CSV publishes the operating day as DD/MM/YYYY.
			{Name: "DiaOperacion", Kind: domain.KindDate, Required: true, Layout: balanceDateLayout},
			{Name: "Sistema", Kind: domain.KindString, Required: true, MaxLen: 49},
			{Name: "Area", Kind: domain.KindString, Required: true, MaxLen: 3},
			{Name: "Hora", Kind: domain.KindHour, Required: true, HasRange: true, Min: 1, Max: 24},
			{Name: "Liq", Kind: domain.KindInt, Required: true, HasRange: true, Min: 0, Max: 3},
			{Name: "FechaPublicacion", Kind: domain.KindDate, Required: true},
			{Name: "Generacion_MWh", Kind: domain.KindDecimal},
			{Name: "Importacion_Total_MWh", Kind: domain.KindDecimal},
			{Name: "Exportacion_Total_MWh", Kind: domain.KindDecimal},
			{Name: "Intercambio_Neto_Entre_Gerencias_MWh", Kind: domain.KindDecimal},
			{Name: "Estimacion_Demanda_Por_Balance_MWh", Kind: domain.KindDecimal},
		},
		BusinessKey: []string{"DiaOperacion", "Sistema", "Area", "Hora", "Liq", "FechaPublicacion"},
		Payload: []string{
			"Generacion_MWh", "Importacion_Total_MWh", "Exportacion_Total_MWh",
			"Intercambio_Neto_Entre_Gerencias_MWh", "Estimacion_Demanda_Por_Balance_MWh",
		},
		Policy:     domain.PolicyGuarded,
		GuardField: "FechaPublicacion",
		DateField:  "DiaOperacion",
	}

	out["imp_exp_liquidada"] = domain.Descriptor{
		Token: "imp_exp_liquidada",
		Table: "ImpExpLiquidada",
		Fields: []domain.FieldSpec{
			{Name: "DiaOperacion", Kind: domain.KindDate, Required: true},
			{Name: "Fecha_Publicacion", Kind: domain.KindDate, Required: true},
			{Name: "Sistema", Kind: domain.KindString, Required: true, MaxLen: 3},
			{Name: "Liquidacion", Kind: domain.KindInt, Required: true},
			{Name: "EnlaceInternacional", Kind: domain.KindString, Required: true, MaxLen: 50},
			{Name: "HoraOperacion", Kind: domain.KindHour, Required: true, HasRange: true, Min: 1, Max: 24},
			{Name: "Importacion_Comercial_MWh", Kind: domain.KindDecimal},
			{Name: "Importacion_Pago_Energia_Inadvertida_MWh", Kind: domain.KindDecimal},
			{Name: "Importacion_Confiabilidad_MWh", Kind: domain.KindDecimal},
			{Name: "Importacion_CIL_MWh", Kind: domain.KindDecimal},
			{Name: "Importacion_Total_MWh", Kind: domain.KindDecimal},
			{Name: "Exportacion_Comercial_MWh", Kind: domain.KindDecimal},
			{Name: "Exportacion_Cobro_Energia_Inadvertida_MWh", Kind: domain.KindDecimal},
			{Name: "Exportacion_Confiabilidad_MWh", Kind: domain.KindDecimal},
			{Name: "Exportacion_CIL_MWh", Kind: domain.KindDecimal},
			{Name: "Exportacion_Total_MWh", Kind: domain.KindDecimal},
		},
		BusinessKey: []string{
			"DiaOperacion", "Fecha_Publicacion", "Sistema", "Liquidacion",
			"EnlaceInternacional", "HoraOperacion",
		},
		Payload: []string{
			"Importacion_Comercial_MWh", "Importacion_Pago_Energia_Inadvertida_MWh",
			"Importacion_Confiabilidad_MWh", "Importacion_CIL_MWh", "Importacion_Total_MWh",
			"Exportacion_Comercial_MWh", "Exportacion_Cobro_Energia_Inadvertida_MWh",
			"Exportacion_Confiabilidad_MWh", "Exportacion_CIL_MWh", "Exportacion_Total_MWh",
		},
		Policy:     domain.PolicyGuarded,
		GuardField: "Fecha_Publicacion",
		DateField:  "DiaOperacion",
	}

	return out
}

// Lookup resolves a token to its descriptor. Tokens are case-insensitive.
func Lookup(token string) (domain.Descriptor, error) {
	desc, ok := descriptors[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return domain.Descriptor{}, fmt.Errorf("%w: %q", domain.ErrUnknownRecordType, token)
	}
	return desc, nil
}

// Tokens returns the registered tokens in sorted order.
func Tokens() []string {
	out := make([]string, 0, len(descriptors))
	for t := range descriptors {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
