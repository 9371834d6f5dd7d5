package countries

import "strings"

// Info carries display metadata for a country, used to decorate country
// detail responses.
type Info struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Region string  `json:"region"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

var infoByCode = map[string]Info{
	"US": {Code: "US", Name: "UNITED STATES", Region: "North America", Lat: 37.0902, Lng: -95.7129},
	"CA": {Code: "CA", Name: "CANADA", Region: "North America", Lat: 56.1304, Lng: -106.3468},
	"MX": {Code: "MX", Name: "MEXICO", Region: "North America", Lat: 23.6345, Lng: -102.5528},
	"VI": {Code: "VI", Name: "US VIRGIN ISLANDS", Region: "Caribbean", Lat: 18.3358, Lng: -64.8963},
	"BS": {Code: "BS", Name: "BAHAMAS", Region: "Caribbean", Lat: 25.0343, Lng: -77.3963},
	"PR": {Code: "PR", Name: "PUERTO RICO", Region: "Caribbean", Lat: 18.2208, Lng: -66.5901},
	"PA": {Code: "PA", Name: "PANAMA", Region: "Central America", Lat: 8.5380, Lng: -80.7821},
	"BR": {Code: "BR", Name: "BRAZIL", Region: "South America", Lat: -14.2350, Lng: -51.9253},
	"AR": {Code: "AR", Name: "ARGENTINA", Region: "South America", Lat: -38.4161, Lng: -63.6167},
	"CO": {Code: "CO", Name: "COLOMBIA", Region: "South America", Lat: 4.5709, Lng: -74.2973},
	"GB": {Code: "GB", Name: "UNITED KINGDOM", Region: "Europe", Lat: 55.3781, Lng: -3.4360},
	"FR": {Code: "FR", Name: "FRANCE", Region: "Europe", Lat: 46.2276, Lng: 2.2137},
	"DE": {Code: "DE", Name: "GERMANY", Region: "Europe", Lat: 51.1657, Lng: 10.4515},
	"ES": {Code: "ES", Name: "SPAIN", Region: "Europe", Lat: 40.4637, Lng: -3.7492},
	"IT": {Code: "IT", Name: "ITALY", Region: "Europe", Lat: 41.8719, Lng: 12.5674},
	"CH": {Code: "CH", Name: "SWITZERLAND", Region: "Europe", Lat: 46.8182, Lng: 8.2275},
	"NL": {Code: "NL", Name: "NETHERLANDS", Region: "Europe", Lat: 52.1326, Lng: 5.2913},
	"BE": {Code: "BE", Name: "BELGIUM", Region: "Europe", Lat: 50.5039, Lng: 4.4699},
	"AT": {Code: "AT", Name: "AUSTRIA", Region: "Europe", Lat: 47.5162, Lng: 14.5501},
	"RU": {Code: "RU", Name: "RUSSIA", Region: "Europe", Lat: 61.5240, Lng: 105.3188},
	"UA": {Code: "UA", Name: "UKRAINE", Region: "Europe", Lat: 48.3794, Lng: 31.1656},
	"PL": {Code: "PL", Name: "POLAND", Region: "Europe", Lat: 51.9194, Lng: 19.1451},
	"CZ": {Code: "CZ", Name: "CZECH REPUBLIC", Region: "Europe", Lat: 49.8175, Lng: 15.4730},
	"SE": {Code: "SE", Name: "SWEDEN", Region: "Europe", Lat: 60.1282, Lng: 18.6435},
	"NO": {Code: "NO", Name: "NORWAY", Region: "Europe", Lat: 60.4720, Lng: 8.4689},
	"DK": {Code: "DK", Name: "DENMARK", Region: "Europe", Lat: 56.2639, Lng: 9.5018},
	"FI": {Code: "FI", Name: "FINLAND", Region: "Europe", Lat: 61.9241, Lng: 25.7482},
	"IL": {Code: "IL", Name: "ISRAEL", Region: "Middle East", Lat: 31.0461, Lng: 34.8516},
	"SA": {Code: "SA", Name: "SAUDI ARABIA", Region: "Middle East", Lat: 23.8859, Lng: 45.0792},
	"AE": {Code: "AE", Name: "UNITED ARAB EMIRATES", Region: "Middle East", Lat: 23.4241, Lng: 53.8478},
	"TR": {Code: "TR", Name: "TURKEY", Region: "Middle East", Lat: 38.9637, Lng: 35.2433},
	"EG": {Code: "EG", Name: "EGYPT", Region: "Middle East", Lat: 26.8206, Lng: 30.8025},
	"CN": {Code: "CN", Name: "CHINA", Region: "Asia", Lat: 35.8617, Lng: 104.1954},
	"JP": {Code: "JP", Name: "JAPAN", Region: "Asia", Lat: 36.2048, Lng: 138.2529},
	"IN": {Code: "IN", Name: "INDIA", Region: "Asia", Lat: 20.5937, Lng: 78.9629},
	"TH": {Code: "TH", Name: "THAILAND", Region: "Asia", Lat: 15.8700, Lng: 100.9925},
	"SG": {Code: "SG", Name: "SINGAPORE", Region: "Asia", Lat: 1.3521, Lng: 103.8198},
	"HK": {Code: "HK", Name: "HONG KONG", Region: "Asia", Lat: 22.3193, Lng: 114.1694},
	"KR": {Code: "KR", Name: "SOUTH KOREA", Region: "Asia", Lat: 35.9078, Lng: 127.7669},
	"AU": {Code: "AU", Name: "AUSTRALIA", Region: "Oceania", Lat: -25.2744, Lng: 133.7751},
	"NZ": {Code: "NZ", Name: "NEW ZEALAND", Region: "Oceania", Lat: -40.9006, Lng: 174.8860},
	"ZA": {Code: "ZA", Name: "SOUTH AFRICA", Region: "Africa", Lat: -30.5595, Lng: 22.9375},
	"MA": {Code: "MA", Name: "MOROCCO", Region: "Africa", Lat: 31.7917, Lng: -7.0926},
	"KE": {Code: "KE", Name: "KENYA", Region: "Africa", Lat: -0.0236, Lng: 37.9062},
	"MC": {Code: "MC", Name: "MONACO", Region: "Europe", Lat: 43.7384, Lng: 7.4246},
	"LI": {Code: "LI", Name: "LIECHTENSTEIN", Region: "Europe", Lat: 47.1660, Lng: 9.5554},
}

// GetInfo returns display metadata for a country code. Unknown codes get a
// zero-coordinate stub carrying the code as name.
func GetInfo(code string) Info {
	code = normalizeCode(code)
	if info, ok := infoByCode[code]; ok {
		return info
	}
	return Info{Code: code, Name: code, Region: "Unknown"}
}

// AllCodes lists the codes with display metadata.
func AllCodes() []string {
	codes := make([]string, 0, len(infoByCode))
	for code := range infoByCode {
		codes = append(codes, code)
	}
	return codes
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
