package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DemandRecord is an hourly demand observation per management region.
type DemandRecord struct {
	ID             int64     `gorm:"column:id;primaryKey" json:"id"`
	FechaOperacion time.Time `gorm:"column:FechaOperacion;type:date;not null;uniqueIndex:uq_demanda_fecha_hora_gerencia" json:"FechaOperacion"`
	HoraOperacion  int       `gorm:"column:HoraOperacion;not null;uniqueIndex:uq_demanda_fecha_hora_gerencia" json:"HoraOperacion"`
	Gerencia       string    `gorm:"column:Gerencia;size:20;not null;uniqueIndex:uq_demanda_fecha_hora_gerencia" json:"Gerencia"`
	Sistema        string    `gorm:"column:Sistema;size:10;not null" json:"Sistema"`
	Demanda        *int64    `gorm:"column:Demanda" json:"Demanda"`
	Generacion     *int64    `gorm:"column:Generacion" json:"Generacion"`
	Pronostico     *int64    `gorm:"column:Pronostico" json:"Pronostico"`
	Enlace         *int64    `gorm:"column:Enlace" json:"Enlace"`

	FechaCreacion     time.Time `gorm:"column:FechaCreacion;not null;default:CURRENT_TIMESTAMP" json:"FechaCreacion"`
	FechaModificacion time.Time `gorm:"column:FechaModificacion;not null;default:CURRENT_TIMESTAMP" json:"FechaModificacion"`
}

func (DemandRecord) TableName() string { return "Demanda" }

// PriceNodeRecord is one hourly price observation for a node. The same
// shape backs the PNDMDA, PMLMDA, PMLMTR and PNDMTR tables, so it carries
// no TableName and is always scoped with Table().
type PriceNodeRecord struct {
	Sistema string    `gorm:"column:Sistema;size:3;primaryKey"`
	Fecha   time.Time `gorm:"column:Fecha;type:date;primaryKey"`
	Hora    int       `gorm:"column:Hora;primaryKey"`
	Clave   string    `gorm:"column:Clave;size:20;primaryKey"`

	PML        decimal.NullDecimal `gorm:"column:PML;type:numeric(10,2)"`
	Energia    decimal.NullDecimal `gorm:"column:Energia;type:numeric(10,2)"`
	Congestion decimal.NullDecimal `gorm:"column:Congestion;type:numeric(10,2)"`
	Perdidas   decimal.NullDecimal `gorm:"column:Perdidas;type:numeric(10,2)"`
}

// PriceTables lists the tables backed by PriceNodeRecord.
var PriceTables = []string{"PNDMDA", "PMLMDA", "PMLMTR", "PNDMTR"}

// TransferCapacityRecord is the hourly transfer capacity of one link.
type TransferCapacityRecord struct {
	ID             int64     `gorm:"column:Id;primaryKey"`
	Sistema        string    `gorm:"column:Sistema;size:3;not null;uniqueIndex:uq_capacidad_transferencia_key"`
	FechaOperacion time.Time `gorm:"column:FechaOperacion;type:date;not null;uniqueIndex:uq_capacidad_transferencia_key"`
	Enlace         string    `gorm:"column:Enlace;size:32;not null;uniqueIndex:uq_capacidad_transferencia_key"`
	Horario        int       `gorm:"column:Horario;not null;uniqueIndex:uq_capacidad_transferencia_key"`

	CapTransDisImpComMwh int64 `gorm:"column:CapTransDisImpComMwh;not null"`
	CapResImpEneInadMwh  int64 `gorm:"column:CapResImpEneInadMwh;not null"`
	CapResImpConfMWh     int64 `gorm:"column:CapResImpConfMWh;not null"`
	CapAbsTransDisImpMWh int64 `gorm:"column:CapAbsTransDisImpMWh;not null"`
	CapTransDisExpComMwh int64 `gorm:"column:CapTransDisExpComMwh;not null"`
	CapResExpEneInaMwh   int64 `gorm:"column:CapResExpEneInaMwh;not null"`
	CapResExpConfMwh     int64 `gorm:"column:CapResExpConfMwh;not null"`
	CapAbsTransDisExpMwh int64 `gorm:"column:CapAbsTransDisExpMwh;not null"`

	FechaCreacion      time.Time `gorm:"column:FechaCreacion;default:CURRENT_TIMESTAMP"`
	FechaActualizacion time.Time `gorm:"column:FechaActualizacion;default:CURRENT_TIMESTAMP"`
}

func (TransferCapacityRecord) TableName() string { return "CapacidadTransferencia" }

// BalanceEstimateRecord is one settlement row of the real demand balance.
type BalanceEstimateRecord struct {
	ID           int64     `gorm:"column:Id;primaryKey"`
	DiaOperacion time.Time `gorm:"column:DiaOperacion;type:date;not null;uniqueIndex:uq_demanda_real_balance_key"`
	Sistema      string    `gorm:"column:Sistema;size:49;not null;uniqueIndex:uq_demanda_real_balance_key"`
	Area         string    `gorm:"column:Area;size:3;not null;uniqueIndex:uq_demanda_real_balance_key"`
	Hora         int       `gorm:"column:Hora;not null;uniqueIndex:uq_demanda_real_balance_key"`
	Liq          int       `gorm:"column:Liq;not null;uniqueIndex:uq_demanda_real_balance_key"`

	GeneracionMWh                    decimal.NullDecimal `gorm:"column:Generacion_MWh;type:numeric(17,5)"`
	ImportacionTotalMWh              decimal.NullDecimal `gorm:"column:Importacion_Total_MWh;type:numeric(17,5)"`
	ExportacionTotalMWh              decimal.NullDecimal `gorm:"column:Exportacion_Total_MWh;type:numeric(17,5)"`
	IntercambioNetoEntreGerenciasMWh decimal.NullDecimal `gorm:"column:Intercambio_Neto_Entre_Gerencias_MWh;type:numeric(17,5)"`
	EstimacionDemandaPorBalanceMWh   decimal.NullDecimal `gorm:"column:Estimacion_Demanda_Por_Balance_MWh;type:numeric(17,5)"`

	FechaPublicacion time.Time `gorm:"column:FechaPublicacion;type:date;not null;uniqueIndex:uq_demanda_real_balance_key"`

	FechaCreacion      time.Time `gorm:"column:FechaCreacion;default:CURRENT_TIMESTAMP"`
	FechaActualizacion time.Time `gorm:"column:FechaActualizacion;default:CURRENT_TIMESTAMP"`
}

func (BalanceEstimateRecord) TableName() string { return "DemandaRealBalance" }

// SettledInterchangeRecord is one settled import/export row for an
// international link.
type SettledInterchangeRecord struct {
	ID                  int64     `gorm:"column:Id;primaryKey"`
	DiaOperacion        time.Time `gorm:"column:DiaOperacion;type:date;not null;uniqueIndex:uq_imp_exp_liquidada_key"`
	FechaPublicacion    time.Time `gorm:"column:Fecha_Publicacion;type:date;not null;uniqueIndex:uq_imp_exp_liquidada_key"`
	Sistema             string    `gorm:"column:Sistema;size:3;not null;uniqueIndex:uq_imp_exp_liquidada_key"`
	Liquidacion         int       `gorm:"column:Liquidacion;not null;uniqueIndex:uq_imp_exp_liquidada_key"`
	EnlaceInternacional string    `gorm:"column:EnlaceInternacional;size:50;not null;uniqueIndex:uq_imp_exp_liquidada_key"`
	HoraOperacion       int       `gorm:"column:HoraOperacion;not null;uniqueIndex:uq_imp_exp_liquidada_key"`

	ImportacionComercialMWh               decimal.NullDecimal `gorm:"column:Importacion_Comercial_MWh;type:numeric(8,5)"`
	ImportacionPagoEnergiaInadvertidaMWh  decimal.NullDecimal `gorm:"column:Importacion_Pago_Energia_Inadvertida_MWh;type:numeric(8,5)"`
	ImportacionConfiabilidadMWh           decimal.NullDecimal `gorm:"column:Importacion_Confiabilidad_MWh;type:numeric(8,5)"`
	ImportacionCILMWh                     decimal.NullDecimal `gorm:"column:Importacion_CIL_MWh;type:numeric(8,5)"`
	ImportacionTotalMWh                   decimal.NullDecimal `gorm:"column:Importacion_Total_MWh;type:numeric(8,5)"`
	ExportacionComercialMWh               decimal.NullDecimal `gorm:"column:Exportacion_Comercial_MWh;type:numeric(8,5)"`
	ExportacionCobroEnergiaInadvertidaMWh decimal.NullDecimal `gorm:"column:Exportacion_Cobro_Energia_Inadvertida_MWh;type:numeric(8,5)"`
	ExportacionConfiabilidadMWh           decimal.NullDecimal `gorm:"column:Exportacion_Confiabilidad_MWh;type:numeric(8,5)"`
	ExportacionCILMWh                     decimal.NullDecimal `gorm:"column:Exportacion_CIL_MWh;type:numeric(8,5)"`
	ExportacionTotalMWh                   decimal.NullDecimal `gorm:"column:Exportacion_Total_MWh;type:numeric(8,5)"`

	FechaCreacion      time.Time `gorm:"column:Fecha_Creacion;default:CURRENT_TIMESTAMP"`
	FechaActualizacion time.Time `gorm:"column:Fecha_Actualizacion;default:CURRENT_TIMESTAMP"`
}

func (SettledInterchangeRecord) TableName() string { return "ImpExpLiquidada" }
