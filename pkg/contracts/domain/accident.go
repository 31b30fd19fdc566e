// Package domain contains the shared domain types for the road accident
// analytics service. These types are the contract between the data pipeline,
// the services layer and the HTTP transport.
package domain

// Column names of the datatran yearly CSV export. The agency publishes the
// files with Portuguese headers; they are kept verbatim because the cleaner
// normalizes raw headers into exactly these names.
const (
	ColState          = "uf"
	ColHighway        = "br"
	ColKilometer      = "km"
	ColDate           = "data_inversa"
	ColWeekdayName    = "dia_semana"
	ColTime           = "horario"
	ColCause          = "causa_acidente"
	ColAccidentType   = "tipo_acidente"
	ColSeverity       = "classificacao_acidente"
	ColDayPhase       = "fase_dia"
	ColRoadDirection  = "sentido_via"
	ColWeather        = "condicao_metereologica"
	ColRoadType       = "tipo_pista"
	ColRoadLayout     = "tracado_via"
	ColPeople         = "pessoas"
	ColDeaths         = "mortos"
	ColLightlyInjured = "feridos_leves"
	ColSeverelyInjured = "feridos_graves"
	ColInjured        = "feridos"
	ColUnharmed       = "ilesos"
	ColVehicles       = "veiculos"
	ColLatitude       = "latitude"
	ColLongitude      = "longitude"

	// Columns derived by the cleaner and feature builder.
	ColYear       = "ano"
	ColMonth      = "mes"
	ColDay        = "dia"
	ColHour       = "hora"
	ColWeekdayNum = "dia_semana_num"
	ColIsWeekend  = "eh_fim_semana"
	ColIsNight    = "eh_noite"
	ColDayPeriod  = "periodo_dia"
)

// Severity labels form a closed set known at training time. Any other value
// in the severity column is a data defect, not a new class.
const (
	SeverityFatal     = "Com Vítimas Fatais"
	SeverityInjured   = "Com Vítimas Feridas"
	SeverityNoVictims = "Sem Vítimas"
)

// SeverityClasses lists the closed severity label set.
func SeverityClasses() []string {
	return []string{SeverityFatal, SeverityInjured, SeverityNoVictims}
}

// RequiredColumns are the columns a yearly extract must carry to be loadable.
// Extracts missing any of these fail schema validation with the offending
// names reported.
func RequiredColumns() []string {
	return []string{
		ColState,
		ColDate,
		ColWeekdayName,
		ColTime,
		ColCause,
		ColAccidentType,
		ColSeverity,
		ColPeople,
		ColDeaths,
		ColInjured,
		ColVehicles,
	}
}

// YearFile describes one discovered yearly extract on disk.
type YearFile struct {
	Year int    `json:"year"`
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Rows int    `json:"rows,omitempty"`
}

// ColumnProfile summarizes one column of a loaded dataset.
type ColumnProfile struct {
	Name        string  `json:"name"`
	Kind        string  `json:"kind"` // numeric, categorical, datetime
	NullCount   int     `json:"null_count"`
	NullPercent float64 `json:"null_percent"`
	Distinct    int     `json:"distinct"`
}

// YearlySummary aggregates one year of cleaned accident data.
type YearlySummary struct {
	Year      int     `json:"year"`
	Accidents int     `json:"accidents"`
	Deaths    int     `json:"deaths"`
	Injured   int     `json:"injured"`
	People    int     `json:"people"`
	Variation float64 `json:"variation_percent"` // vs previous year, 0 for the first
}
