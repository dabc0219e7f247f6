package domain

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

const orderCodePrefix = "ORD"

// GenerateOrderCode produces a human-readable business key in the format
// ORD-YYYYMMDD-HHMMSS-XXXX (UTC date and time plus a 4-digit random suffix).
// Uniqueness is enforced by the storage constraint; on collision the caller
// regenerates and retries.
func GenerateOrderCode(now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("%s-%s-%s-%04d",
		orderCodePrefix,
		now.Format("20060102"),
		now.Format("150405"),
		rand.Intn(10000),
	)
}

// GenerateProductID returns a random opaque product identifier.
func GenerateProductID() string {
	return uuid.New().String()
}
