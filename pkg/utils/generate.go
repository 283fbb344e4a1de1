package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ==================== UUID & TOKEN ====================

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(uuidStr))
}

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// ==================== REFERENCES ====================

// GenerateBookingReference returns e.g. RB-20260412-4821.
func GenerateBookingReference(now time.Time) string {
	return fmt.Sprintf("RB-%s-%04d", now.Format("20060102"), randomInt(10000))
}

// GenerateMemoNumber returns e.g. CM-20260412-093011-0042.
func GenerateMemoNumber(now time.Time) string {
	return fmt.Sprintf("CM-%s-%04d", now.Format("20060102-150405"), randomInt(10000))
}

func randomInt(max int64) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return time.Now().UnixNano() % max
	}
	return n.Int64()
}

// ==================== QUERY PARAMS ====================

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil || result < 1 {
		return defaultValue
	}

	return result
}
