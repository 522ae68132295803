// Package dataset holds the (year, rate) points that feed the chart.
//
// A [Point] pairs a calendar year with the total fertility rate recorded for
// that year. [Selection] is the ordered, de-duplicated set of points a user
// assembles; its [Selection.Add] method is the year-range gate: it only
// accepts years in [MinYear, MaxYear] that are not already selected and for
// which the built-in table has a value.
//
// # Built-in Table
//
// [Lookup] serves the Statistics Korea total fertility rate series for
// 1970-2023. It is the only data source the CLI and the server use when the
// user names years instead of supplying a file.
//
// # Files
//
// [ReadJSON], [WriteJSON] and [ImportFile] move point lists in and out of
// JSON and TOML documents:
//
//	{"points": [{"year": 1970, "rate": 4.53}, {"year": 2023, "rate": 0.72}]}
//
//	[[points]]
//	year = 1970
//	rate = 4.53
package dataset
