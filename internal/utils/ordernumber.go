package utils

import (
	"fmt"
	"time"
)

const OrderNumberPrefix = "BZ"

// FormatOrderNumber renders BZ-YYYYMMDD-NNNNNNNN from the creation date and a
// store sequence value. seq must come from a monotonic source.
func FormatOrderNumber(createdAt time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%08d", OrderNumberPrefix, createdAt.UTC().Format("20060102"), seq)
}
