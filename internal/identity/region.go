package identity

// regionsByCountry groups ISO 3166-1 alpha-2 country codes into the coarse
// regions the rest of the system reports against. Ported from
// collector.py's _country_to_region table.
var regionsByCountry = map[string]string{
	"FR": "EU", "ES": "EU", "PT": "EU", "BE": "EU", "NL": "EU", "DE": "EU",
	"LU": "EU", "IT": "EU", "GB": "EU", "IE": "EU", "CH": "EU", "AT": "EU",
	"SE": "EU", "NO": "EU", "DK": "EU", "FI": "EU", "PL": "EU", "CZ": "EU",
	"SK": "EU", "HU": "EU", "RO": "EU", "BG": "EU", "GR": "EU", "HR": "EU",
	"SI": "EU", "EE": "EU", "LV": "EU", "LT": "EU",

	"US": "NA", "CA": "NA", "MX": "NA",

	"BR": "SA", "AR": "SA", "CL": "SA", "CO": "SA", "PE": "SA", "UY": "SA",
	"PY": "SA", "BO": "SA", "EC": "SA", "VE": "SA",

	"MA": "AF", "DZ": "AF", "TN": "AF", "EG": "AF", "ZA": "AF", "NG": "AF",
	"KE": "AF", "GH": "AF", "SN": "AF", "CI": "AF", "CM": "AF", "ET": "AF",
	"UG": "AF", "TZ": "AF", "RW": "AF",

	"TR": "AS", "SA": "AS", "AE": "AS", "QA": "AS", "KW": "AS", "OM": "AS",
	"BH": "AS", "IN": "AS", "PK": "AS", "BD": "AS", "CN": "AS", "JP": "AS",
	"KR": "AS", "SG": "AS", "MY": "AS", "TH": "AS", "VN": "AS", "ID": "AS",
	"PH": "AS", "HK": "AS", "TW": "AS",

	"AU": "OC", "NZ": "OC",
}

// countryToRegion maps a country code to its coarse region, returning
// "OTHER" for any other non-empty code and "UNKNOWN" for an empty one.
func countryToRegion(countryCode string) string {
	if countryCode == "" {
		return "UNKNOWN"
	}
	if region, ok := regionsByCountry[countryCode]; ok {
		return region
	}
	return "OTHER"
}
