// Package domain reconciles and aggregates GIOŚ hourly PM2.5 archives.
//
// # Data Source
//
// The Chief Inspectorate of Environmental Protection (GIOŚ) publishes one zip
// archive per year at https://powietrze.gios.gov.pl/pjp/archives. Each archive
// holds an hourly PM2.5 workbook with one column per measuring station. A
// separate metadata workbook maps station codes to localities and lists the
// legacy codes each station was published under in older vintages.
//
// # Workbook Conventions
//
// Header rows (first column is the row label):
//
//	basic:    Kod stacji, Wskaźnik, Czas uśredniania
//	extended: Nr, Kod stacji, Wskaźnik, Czas uśredniania, Jednostka, Kod stanowiska
//
// The layout is detected from which label rows are present (see
// [SchemaVariants]); everything except "Kod stacji" is dropped and the station
// code row becomes the column header.
//
// Timestamps:
//
//	Each row label marks the END of an hourly bucket. The last hour of a day
//	is labelled with the next day's 00:00. Those labels are moved back one
//	second (23:59:59) so daily grouping puts the reading into the day it
//	belongs to.
//
// Station codes:
//
//	Codes change between vintages. The metadata "Stary kod" column holds the
//	old codes as a comma-separated list; [MappingTable] explodes it into one
//	alias per legacy code. Columns with unknown codes are kept as they are and
//	drop out later if they are not present in every year.
//
// # Aggregation
//
// Daily and monthly means skip missing hours. A day counts as an exceedance
// when its mean is strictly above the norm (15 µg/m³ by default). Two
// locality-keyed adjustments are applied to the counts afterwards; see
// [Exceedances].
package domain
