package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		city     string
		district string
	}{
		{"empty", "", "Ho Chi Minh City", ""},
		{"hcm abbreviation", "12 Le Loi, HCM", "Ho Chi Minh City", ""},
		{"accented hcm", "Hồ Chí Minh", "Ho Chi Minh City", ""},
		{"hanoi", "34 Trang Tien, Hanoi", "Hanoi", ""},
		{"accented hanoi", "Hà Nội", "Hanoi", ""},
		{"da nang", "5 Bach Dang, Da Nang", "Da Nang", ""},
		{"can tho", "cần thơ", "Can Tho", ""},
		{"hai phong", "Hải Phòng", "Hai Phong", ""},
		{"unknown city falls back", "742 Evergreen Terrace, Springfield", "Ho Chi Minh City", ""},
		{"english district", "12 Ly Thuong Kiet, District 1, Ho Chi Minh", "Ho Chi Minh City", "District 1"},
		{"vietnamese district", "56 Nguyen Trai, Quận 7, HCM", "Ho Chi Minh City", "District 7"},
		{"district without space", "District3, Hanoi", "Hanoi", "District 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, district := ParseAddress(tt.address)
			assert.Equal(t, tt.city, city)
			assert.Equal(t, tt.district, district)
		})
	}
}
