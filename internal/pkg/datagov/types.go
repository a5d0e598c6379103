package datagov

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// FieldKind records how a value was encoded upstream.
type FieldKind int

const (
	FieldAbsent FieldKind = iota
	FieldNull
	FieldNumber
	FieldString
)

// Field is a loosely typed upstream value. The producer mixes JSON numbers and
// numeric strings for the same column, so the raw text is kept with its kind
// and interpretation is left to the normalizer.
type Field struct {
	Kind FieldKind
	Raw  string // number literal or unquoted string
}

// NumberField builds a field holding a JSON number.
func NumberField[T int | int64 | float64](v T) Field {
	switch x := any(v).(type) {
	case float64:
		return Field{Kind: FieldNumber, Raw: strconv.FormatFloat(x, 'f', -1, 64)}
	default:
		return Field{Kind: FieldNumber, Raw: fmt.Sprint(x)}
	}
}

// StringField builds a field holding a JSON string.
func StringField(s string) Field {
	return Field{Kind: FieldString, Raw: s}
}

func (f *Field) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = Field{Kind: FieldNull}
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("invalid string field %s: %w", b, err)
		}
		*f = Field{Kind: FieldString, Raw: s}
	case b[0] == '{' || b[0] == '[':
		// not expected for any column; kept as text so numeric parsing fails explicitly
		*f = Field{Kind: FieldString, Raw: string(b)}
	default:
		// numbers and the true/false literals are kept verbatim
		*f = Field{Kind: FieldNumber, Raw: string(b)}
	}
	return nil
}

func (f Field) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case FieldNumber:
		return []byte(f.Raw), nil
	case FieldString:
		return json.Marshal(f.Raw)
	default:
		return []byte("null"), nil
	}
}

// Present is false for absent and null values.
func (f Field) Present() bool {
	return f.Kind == FieldNumber || f.Kind == FieldString
}

func (f Field) String() string {
	return strings.TrimSpace(f.Raw)
}

// RawRecord is one element of the upstream "records" array.
type RawRecord struct {
	DistrictCode         Field `json:"district_code"`
	DistrictName         Field `json:"district_name"`
	StateName            Field `json:"state_name"`
	Month                Field `json:"month"`
	FinYear              Field `json:"fin_year"`
	JobCardsIssued       Field `json:"Total_No_of_JobCards_issued"`
	IndividualsWorked    Field `json:"Total_Individuals_Worked"`
	PersonDays           Field `json:"Persondays_of_Central_Liability_so_far"`
	AverageWage          Field `json:"Average_Wage_rate_per_day_per_person"`
	CompletedWorks       Field `json:"Number_of_Completed_Works"`
	OngoingWorks         Field `json:"Number_of_Ongoing_Works"`
	TotalExpenditure     Field `json:"Total_Exp"`
	ApprovedLabourBudget Field `json:"Approved_Labour_Budget"`
}

// Payload is the upstream response document.
type Payload struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Total   Field       `json:"total"`
	Count   Field       `json:"count"`
	Limit   Field       `json:"limit"`
	Offset  Field       `json:"offset"`
	Records []RawRecord `json:"records"`
}

// Query is one page request against the resource.
type Query struct {
	Filters map[string]string // upstream column -> value, sent as filters[column]
	Offset  int
	Limit   int
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Period is a reporting cycle.
type Period struct {
	Month int // 1-12
	Year  int
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// MonthName is the English month name used by the upstream month filter.
func (p Period) MonthName() string {
	if p.Month < 1 || p.Month > 12 {
		return ""
	}
	return monthNames[p.Month-1]
}

// FinYear is the upstream fin_year filter value, "YYYY-YYYY+1".
func (p Period) FinYear() string {
	return fmt.Sprintf("%d-%d", p.Year, p.Year+1)
}

// MonthsBefore returns the period n months earlier.
func (p Period) MonthsBefore(n int) Period {
	t := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -n, 0)
	return PeriodOf(t)
}

func (p Period) String() string {
	return fmt.Sprintf("%d/%d", p.Month, p.Year)
}

// MonthNumber maps a full English month name (any case) to 1-12.
func MonthNumber(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for i, m := range monthNames {
		if strings.EqualFold(m, name) {
			return i + 1, true
		}
	}
	return 0, false
}
