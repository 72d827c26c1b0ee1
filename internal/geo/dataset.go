package geo

import "strings"

// Record is one embedded dataset entry: a city's canonical identity, its
// known aliases (transliterations, local-script forms, common
// abbreviations), and its resolved coordinate/timezone.
type Record struct {
	CanonicalName string
	Aliases       []string
	CountryCode   string
	CountryName   string
	Lat           float64
	Lon           float64
	TZ            string
}

// names returns every name this record matches under: its canonical
// name plus all aliases.
func (r Record) names() []string {
	all := make([]string, 0, len(r.Aliases)+1)
	all = append(all, r.CanonicalName)
	all = append(all, r.Aliases...)
	return all
}

// dataset is the embedded, offline-first city table (§4.4: "~30+").
// Coordinates are city-center approximations; timezones are the city's
// primary IANA zone.
var dataset = []Record{
	{"Mecca", []string{"makkah", "mekkah"}, "SA", "Saudi Arabia", 21.4225, 39.8262, "Asia/Riyadh"},
	{"Medina", []string{"madinah", "al-madinah"}, "SA", "Saudi Arabia", 24.5247, 39.5692, "Asia/Riyadh"},
	{"Riyadh", []string{"ar-riyad"}, "SA", "Saudi Arabia", 24.7136, 46.6753, "Asia/Riyadh"},
	{"Jeddah", []string{"jiddah"}, "SA", "Saudi Arabia", 21.4858, 39.1925, "Asia/Riyadh"},
	{"Istanbul", []string{"constantinople", "kostantiniyye"}, "TR", "Turkey", 41.0082, 28.9784, "Europe/Istanbul"},
	{"Ankara", nil, "TR", "Turkey", 39.9334, 32.8597, "Europe/Istanbul"},
	{"Cairo", []string{"al-qahirah"}, "EG", "Egypt", 30.0444, 31.2357, "Africa/Cairo"},
	{"Alexandria", []string{"al-iskandariyah"}, "EG", "Egypt", 31.2001, 29.9187, "Africa/Cairo"},
	{"Dubai", []string{"dubayy"}, "AE", "United Arab Emirates", 25.2048, 55.2708, "Asia/Dubai"},
	{"Abu Dhabi", []string{"abu zaby"}, "AE", "United Arab Emirates", 24.4539, 54.3773, "Asia/Dubai"},
	{"Doha", []string{"ad-dawhah"}, "QA", "Qatar", 25.2854, 51.5310, "Asia/Qatar"},
	{"Amman", nil, "JO", "Jordan", 31.9454, 35.9284, "Asia/Amman"},
	{"Baghdad", []string{"bagdad"}, "IQ", "Iraq", 33.3152, 44.3661, "Asia/Baghdad"},
	{"Tehran", []string{"teheran"}, "IR", "Iran", 35.6892, 51.3890, "Asia/Tehran"},
	{"Islamabad", nil, "PK", "Pakistan", 33.6844, 73.0479, "Asia/Karachi"},
	{"Karachi", nil, "PK", "Pakistan", 24.8607, 67.0011, "Asia/Karachi"},
	{"Lahore", nil, "PK", "Pakistan", 31.5497, 74.3436, "Asia/Karachi"},
	{"Dhaka", []string{"dacca"}, "BD", "Bangladesh", 23.8103, 90.4125, "Asia/Dhaka"},
	{"Jakarta", nil, "ID", "Indonesia", -6.2088, 106.8456, "Asia/Jakarta"},
	{"Kuala Lumpur", nil, "MY", "Malaysia", 3.1390, 101.6869, "Asia/Kuala_Lumpur"},
	{"Karaganda", []string{"qaraghandy"}, "KZ", "Kazakhstan", 49.8047, 73.1094, "Asia/Almaty"},
	{"Tashkent", nil, "UZ", "Uzbekistan", 41.2995, 69.2401, "Asia/Tashkent"},
	{"Kabul", nil, "AF", "Afghanistan", 34.5553, 69.2075, "Asia/Kabul"},
	{"London", []string{"londinium"}, "GB", "United Kingdom", 51.5074, -0.1278, "Europe/London"},
	{"Paris", nil, "FR", "France", 48.8566, 2.3522, "Europe/Paris"},
	{"Berlin", nil, "DE", "Germany", 52.5200, 13.4050, "Europe/Berlin"},
	{"Stockholm", nil, "SE", "Sweden", 59.3293, 18.0686, "Europe/Stockholm"},
	{"Oslo", []string{"christiania"}, "NO", "Norway", 59.9139, 10.7522, "Europe/Oslo"},
	{"Tromso", []string{"tromsø", "romsa"}, "NO", "Norway", 69.6492, 18.9553, "Europe/Oslo"},
	{"Reykjavik", []string{"reykjavík"}, "IS", "Iceland", 64.1466, -21.9426, "Atlantic/Reykjavik"},
	{"Moscow", []string{"moskva"}, "RU", "Russia", 55.7558, 37.6173, "Europe/Moscow"},
	{"New York", []string{"new york city", "nyc"}, "US", "United States", 40.7128, -74.0060, "America/New_York"},
	{"Toronto", nil, "CA", "Canada", 43.6532, -79.3832, "America/Toronto"},
	{"Sydney", nil, "AU", "Australia", -33.8688, 151.2093, "Australia/Sydney"},
	{"Lagos", nil, "NG", "Nigeria", 6.5244, 3.3792, "Africa/Lagos"},
	{"Nairobi", nil, "KE", "Kenya", -1.2921, 36.8219, "Africa/Nairobi"},
	{"Casablanca", []string{"dar al-bayda"}, "MA", "Morocco", 33.5731, -7.5898, "Africa/Casablanca"},
}

// candidate is the fuzzy-match verdict for one dataset record against a
// normalized query: whether it matched, and how (exact vs. substring).
// Lookup makes the same exact/substring split through matchKind and
// does not use this type; List returns every record unfiltered.
type candidate struct {
	Record Record
	Exact  bool
}

// Lookup performs the §4.4 lookup contract: case-fold and diacritic-strip
// q, match exactly against canonical name or alias first, else fall back
// to a substring (token-contains) match against the same name set.
// Zero matches returns an empty slice; multiple matches — even across
// distinct country codes — are returned unranked, since disambiguating
// them is the Resolver's job, not the dataset's.
func Lookup(q string) []Record {
	norm := normalizeQuery(q)
	if norm == "" {
		return nil
	}

	var exact, partial []Record
	for _, rec := range dataset {
		switch matchKind(rec, norm) {
		case matchExact:
			exact = append(exact, rec)
		case matchPartial:
			partial = append(partial, rec)
		}
	}

	if len(exact) > 0 {
		return exact
	}
	return partial
}

type matchResult int

const (
	matchNone matchResult = iota
	matchPartial
	matchExact
)

func matchKind(rec Record, normQuery string) matchResult {
	best := matchNone
	for _, name := range rec.names() {
		n := normalizeQuery(name)
		if n == "" {
			continue
		}
		if n == normQuery {
			return matchExact
		}
		if strings.Contains(n, normQuery) {
			best = matchPartial
		}
	}
	return best
}

func normalizeQuery(s string) string {
	return NormalizeLocalityName(s)
}

// List returns every dataset record, for a collaborator's autocomplete
// or "list known cities" UI (SPEC_FULL §D: list_dataset alias
// enrichment — canonical name, country, and the full alias set are all
// surfaced, not just canonical name + country).
func List() []Record {
	out := make([]Record, len(dataset))
	copy(out, dataset)
	return out
}
