package listing

import (
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/domain"
)

// AllAreas is the area filter value that disables area filtering.
const AllAreas = "Todas"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// ParseDate reads the date formats the sheet produces. ok is false when none
// matches.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortInterviews orders by registration date, most recent first. Rows with an
// unreadable date go last, keeping their backend order.
func SortInterviews(items []domain.InterviewItem) {
	slices.SortStableFunc(items, func(a, b domain.InterviewItem) int {
		ta, okA := ParseDate(a.DataCadastro.String())
		tb, okB := ParseDate(b.DataCadastro.String())
		switch {
		case okA && okB:
			return tb.Compare(ta)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})
}

type InterviewFilter struct {
	Search string
	Area   string
}

// Match: the search term hits the name (case-insensitive substring) or, when
// it contains digits, the CPF digits. The area must equal Area ignoring case
// unless Area is empty or AllAreas.
func (f InterviewFilter) Match(item domain.InterviewItem) bool {
	return f.matchSearch(item) && f.matchArea(item)
}

func (f InterviewFilter) matchSearch(item domain.InterviewItem) bool {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(item.Nome.String()), term) {
		return true
	}
	digits := onlyDigits(term)
	return digits != "" && strings.Contains(onlyDigits(item.CPF.String()), digits)
}

func (f InterviewFilter) matchArea(item domain.InterviewItem) bool {
	area := strings.TrimSpace(f.Area)
	if area == "" || area == AllAreas {
		return true
	}
	return item.AreaJuridica != "" && strings.EqualFold(item.AreaJuridica.String(), area)
}

func FilterInterviews(items []domain.InterviewItem, f InterviewFilter) []domain.InterviewItem {
	out := make([]domain.InterviewItem, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Areas returns AllAreas followed by the distinct areas in first-seen order.
func Areas(items []domain.InterviewItem) []string {
	areas := []string{AllAreas}
	seen := map[string]bool{}
	for _, item := range items {
		area := item.AreaJuridica.String()
		if area == "" || seen[area] {
			continue
		}
		seen[area] = true
		areas = append(areas, area)
	}
	return areas
}

var areaBadges = map[string]string{
	"previdenciário": "bg-green-100 text-green-800",
	"trabalhista":    "bg-amber-100 text-amber-800",
	"cível":          "bg-blue-100 text-blue-800",
	"consumidor":     "bg-yellow-100 text-yellow-800",
	"família":        "bg-pink-100 text-pink-800",
}

// AreaBadge is the CSS class of the area chip.
func AreaBadge(area string) string {
	if class, ok := areaBadges[strings.ToLower(area)]; ok {
		return class
	}
	return "bg-gray-100 text-gray-800"
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
