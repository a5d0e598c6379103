// Package registry is the static table of districts known to the sync pipeline.
// Codes match the district_code values published by the upstream dataset.
package registry

import "errors"

var ErrUnknownCode = errors.New("unknown region code")

type Entry struct {
	Code   string  `json:"code"`
	NameEn string  `json:"nameEn"`
	NameHi string  `json:"nameHi"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

// Lookup is the read-only view consumed by the sync orchestrator and the seeder.
type Lookup interface {
	List() []Entry
	FindByCode(code string) (Entry, bool)
}

// Registry is an immutable, ordered set of entries.
type Registry struct {
	entries []Entry
	byCode  map[string]int
}

// New builds a registry from entries. Later duplicates of a code are ignored.
func New(entries []Entry) *Registry {
	r := &Registry{byCode: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, dup := r.byCode[e.Code]; dup {
			continue
		}
		r.byCode[e.Code] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r
}

// Haryana returns the registry of Haryana districts.
func Haryana() *Registry {
	return New(haryanaDistricts)
}

func (r *Registry) List() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Registry) FindByCode(code string) (Entry, bool) {
	i, ok := r.byCode[code]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Haryana districts with approximate centroids
var haryanaDistricts = []Entry{
	{Code: "1201", NameEn: "Ambala", NameHi: "अंबाला", Lat: 30.3782, Lon: 76.7767},
	{Code: "1213", NameEn: "Bhiwani", NameHi: "भिवानी", Lat: 28.7930, Lon: 76.1395},
	{Code: "1222", NameEn: "Charkhi Dadri", NameHi: "चरखी दादरी", Lat: 28.5917, Lon: 76.2709},
	{Code: "1209", NameEn: "Faridabad", NameHi: "फरीदाबाद", Lat: 28.4089, Lon: 77.3178},
	{Code: "1216", NameEn: "Fatehabad", NameHi: "फतेहाबाद", Lat: 29.5151, Lon: 75.4550},
	{Code: "1210", NameEn: "Gurugram", NameHi: "गुरुग्राम", Lat: 28.4595, Lon: 77.0266},
	{Code: "1215", NameEn: "Hisar", NameHi: "हिसार", Lat: 29.1492, Lon: 75.7217},
	{Code: "1214", NameEn: "Jhajjar", NameHi: "झज्जर", Lat: 28.6063, Lon: 76.6565},
	{Code: "1207", NameEn: "Jind", NameHi: "जींद", Lat: 29.3157, Lon: 76.3160},
	{Code: "1204", NameEn: "Kaithal", NameHi: "कैथल", Lat: 29.8012, Lon: 76.3997},
	{Code: "1205", NameEn: "Karnal", NameHi: "करनाल", Lat: 29.6857, Lon: 76.9905},
	{Code: "1203", NameEn: "Kurukshetra", NameHi: "कुरुक्षेत्र", Lat: 29.9695, Lon: 76.8783},
	{Code: "1212", NameEn: "Mahendragarh", NameHi: "महेंद्रगढ़", Lat: 28.2830, Lon: 76.1500},
	{Code: "1221", NameEn: "Nuh", NameHi: "नूंह", Lat: 28.1024, Lon: 77.0030},
	{Code: "1220", NameEn: "Palwal", NameHi: "पलवल", Lat: 28.1444, Lon: 77.3260},
	{Code: "1219", NameEn: "Panchkula", NameHi: "पंचकुला", Lat: 30.6942, Lon: 76.8534},
	{Code: "1206", NameEn: "Panipat", NameHi: "पानीपत", Lat: 29.3909, Lon: 76.9635},
	{Code: "1211", NameEn: "Rewari", NameHi: "रेवाड़ी", Lat: 28.1989, Lon: 76.6189},
	{Code: "1208", NameEn: "Rohtak", NameHi: "रोहतक", Lat: 28.8955, Lon: 76.6066},
	{Code: "1217", NameEn: "Sirsa", NameHi: "सिरसा", Lat: 29.5353, Lon: 75.0288},
	{Code: "1218", NameEn: "Sonipat", NameHi: "सोनीपत", Lat: 28.9931, Lon: 77.0151},
	{Code: "1202", NameEn: "Yamunanagar", NameHi: "यमुनानगर", Lat: 30.1290, Lon: 77.2674},
}
