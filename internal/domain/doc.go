// Package domain models wind turbine SCADA telemetry and the reference power
// curves it is compared against.
//
// # Data Source
//
// Operators export ten-minute SCADA averages to a spreadsheet, one row per
// sample. The columns this service reads are:
//
//	Turbine                      unit identifier, e.g. "WTG-07"
//	Model                        turbine model, e.g. "RD113"
//	Site, Customer, Week         optional reporting metadata
//	Wind speed - AVE [m/s]       nacelle anemometer average
//	Active power - AVE [kW]      grid-side active power average
//	Power curve validity - MIN   optional validity code (minimum over the window)
//
// Turbine, Model and both measurement columns are required. Missing optional
// columns are reported as [NotAvailable].
//
// # Missing Values
//
// Blank cells, text in numeric columns, NaN and infinities are all treated as
// missing. A sample is an operating point only when both wind speed and active
// power are present; other samples stay in their group but are never plotted.
//
// Validity codes must be integral. The SCADA convention is:
//
//	0  unrestricted operation
//	1  partial restriction
//	2  curtailed or derated
//	3  excluded from power curve assessment
//
// Other integer codes occur on some controllers and are kept as their own
// category.
//
// # Week
//
// The week column arrives as a number on most exports and as free text ("W5",
// "2024-W05") on some. [CoerceWeek] converts integral values and keeps anything
// else verbatim, so "5" files as Week5 and "W5" as WeekW5.
//
// # Reference Curves
//
// Curves are manufacturer tables sampled at 0.1–0.5 m/s. They are constant data:
// a [Catalog] is built once at start and shared read-only.
package domain
