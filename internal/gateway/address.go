package gateway

import (
	"regexp"
	"strings"
)

// DefaultCity is used when no known city appears in the address.
const DefaultCity = "Ho Chi Minh City"

var knownCities = []struct {
	variants []string
	name     string
}{
	{[]string{"ho chi minh", "hồ chí minh", "hcm"}, "Ho Chi Minh City"},
	{[]string{"hanoi", "hà nội"}, "Hanoi"},
	{[]string{"da nang", "đà nẵng"}, "Da Nang"},
	{[]string{"can tho", "cần thơ"}, "Can Tho"},
	{[]string{"hai phong", "hải phòng"}, "Hai Phong"},
}

var districtPattern = regexp.MustCompile(`(?:district|quận)\s*(\d+)`)

// ParseAddress maps a free-text address to a coarse city classification and
// a district token when one is recognizable. It never fails: any input,
// including the empty string, yields a deterministic result. This is a
// heuristic for shaping the shipment payload, not geocoding.
func ParseAddress(address string) (city, district string) {
	if address == "" {
		return DefaultCity, ""
	}

	lower := strings.ToLower(address)

	city = DefaultCity
	for _, known := range knownCities {
		matched := false
		for _, variant := range known.variants {
			if strings.Contains(lower, variant) {
				matched = true
				break
			}
		}
		if matched {
			city = known.name
			break
		}
	}

	if m := districtPattern.FindStringSubmatch(lower); m != nil {
		district = "District " + m[1]
	}

	return city, district
}
