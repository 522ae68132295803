package dataset

// koreaTFR is the total fertility rate of the Republic of Korea by year
// (Statistics Korea, birth statistics).
var koreaTFR = map[int]float64{
	1970: 4.53, 1971: 4.54, 1972: 4.12, 1973: 4.07, 1974: 3.77,
	1975: 3.43, 1976: 3.00, 1977: 2.99, 1978: 2.64, 1979: 2.90,
	1980: 2.82, 1981: 2.57, 1982: 2.39, 1983: 2.06, 1984: 1.74,
	1985: 1.66, 1986: 1.58, 1987: 1.53, 1988: 1.55, 1989: 1.56,
	1990: 1.57, 1991: 1.71, 1992: 1.76, 1993: 1.65, 1994: 1.66,
	1995: 1.63, 1996: 1.57, 1997: 1.52, 1998: 1.46, 1999: 1.43,
	2000: 1.48, 2001: 1.31, 2002: 1.18, 2003: 1.19, 2004: 1.16,
	2005: 1.09, 2006: 1.13, 2007: 1.26, 2008: 1.19, 2009: 1.15,
	2010: 1.23, 2011: 1.24, 2012: 1.30, 2013: 1.19, 2014: 1.21,
	2015: 1.24, 2016: 1.17, 2017: 1.05, 2018: 0.98, 2019: 0.92,
	2020: 0.84, 2021: 0.81, 2022: 0.78, 2023: 0.72,
}

// Lookup returns the built-in point for year.
func Lookup(year int) (Point, bool) {
	rate, ok := koreaTFR[year]
	if !ok {
		return Point{}, false
	}
	return Point{Year: year, Rate: rate}, true
}

// All returns every built-in point ordered by year.
func All() []Point {
	out := make([]Point, 0, len(koreaTFR))
	for y := MinYear; y <= MaxYear; y++ {
		if p, ok := Lookup(y); ok {
			out = append(out, p)
		}
	}
	return out
}
