// Package category translates between the backend category codes and the
// Korean display labels shown to users. The table is the single source of
// truth for every component that needs the mapping.
package category

// Code is one of the nine canonical backend category codes.
type Code string

const (
	Politics      Code = "POLITICS"
	Economy       Code = "ECONOMY"
	Society       Code = "SOCIETY"
	Life          Code = "LIFE"
	International Code = "INTERNATIONAL"
	ITScience     Code = "IT_SCIENCE"
	Vehicle       Code = "VEHICLE"
	TravelFood    Code = "TRAVEL_FOOD"
	Art           Code = "ART"
)

var codeToLabel = map[Code]string{
	Politics:      "정치",
	Economy:       "경제",
	Society:       "사회",
	Life:          "생활",
	International: "세계",
	ITScience:     "IT/과학",
	Vehicle:       "자동차/교통",
	TravelFood:    "여행/음식",
	Art:           "예술",
}

var labelToCode = func() map[string]Code {
	m := make(map[string]Code, len(codeToLabel))
	for code, label := range codeToLabel {
		m[label] = code
	}
	return m
}()

// ToLabel returns the display label for a code. Unknown codes pass through
// unchanged so stale or future categories stay displayable.
func ToLabel(code Code) string {
	if label, ok := codeToLabel[code]; ok {
		return label
	}
	return string(code)
}

// ToCode returns the backend code for a display label, or the label itself
// when it is not in the table.
func ToCode(label string) Code {
	if code, ok := labelToCode[label]; ok {
		return code
	}
	return Code(label)
}

// Labels returns every display label in canonical order.
func Labels() []string {
	labels := make([]string, len(canonical))
	for i, code := range canonical {
		labels[i] = codeToLabel[code]
	}
	return labels
}

var canonical = []Code{
	Politics, Economy, Society, Life, International,
	ITScience, Vehicle, TravelFood, Art,
}

// Codes returns the canonical code order.
func Codes() []Code {
	out := make([]Code, len(canonical))
	copy(out, canonical)
	return out
}
