package service

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"pos-service/internal/models"
)

const takeawayPrefix = "T-"

// tokenPrefix identifies the token sequence an order belongs to:
// one for takeaway and one per dine-in table
func tokenPrefix(orderType string, tableNumber *int) string {
	if orderType == models.OrderTypeDineIn && tableNumber != nil {
		return fmt.Sprintf("D%d-", *tableNumber)
	}
	return takeawayPrefix
}

// nextToken derives the token after latest in the prefix's sequence.
// It reports false when latest has no numeric suffix.
func nextToken(prefix, latest string) (string, bool) {
	n := 1
	if latest != "" {
		suffix, err := strconv.Atoi(strings.TrimPrefix(latest, prefix))
		if err != nil || suffix < 0 {
			return "", false
		}
		n = suffix + 1
	}
	if prefix == takeawayPrefix {
		return fmt.Sprintf("%s%03d", prefix, n), true
	}
	return fmt.Sprintf("%s%02d", prefix, n), true
}

// fallbackToken is issued when the sequence cannot be read
func fallbackToken() string {
	return fmt.Sprintf("ORD-%d", 1000+rand.Intn(9000))
}
