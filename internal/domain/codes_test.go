package domain

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{8}-\d{6}-\d{4}$`)

	for i := 0; i < 50; i++ {
		code := GenerateOrderCode(time.Now())
		assert.Regexp(t, pattern, code)
	}
}

func TestGenerateOrderCodeUsesUTC(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)

	// 23:30 on Jan 1 in UTC+7 is 16:30 on Jan 1 UTC; the code must carry
	// the UTC date and time, not the local ones.
	local := time.Date(2025, 1, 1, 23, 30, 5, 0, loc)
	code := GenerateOrderCode(local)

	assert.True(t, strings.HasPrefix(code, "ORD-20250101-163005-"), "got %s", code)
}

func TestGenerateProductID(t *testing.T) {
	id := GenerateProductID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	assert.NotEqual(t, id, GenerateProductID())
}
