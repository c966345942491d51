// Package token generates page tokens and shortener aliases
package token

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxAliasLength is the longest alias the redirect providers accept
	MaxAliasLength = 28

	aliasRandomLength = 6
	base36Chars       = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var aliasRegex = regexp.MustCompile(`^[a-z0-9]{1,28}$`)

// now is swapped in tests
var now = time.Now

// GenerateToken returns a 32 character lowercase hex token. It is a UUIDv7:
// a millisecond timestamp followed by 74 random bits.
func GenerateToken() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}

// GenerateAlias builds a shortener alias for a game/provider pair. The result
// is lowercase alphanumeric and at most MaxAliasLength characters long.
func GenerateAlias(gameID int64, cloudIndex int) (string, error) {
	suffix, err := randomBase36(aliasRandomLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate alias: %w", err)
	}

	tail := strconv.FormatInt(now().UnixMilli(), 36) + suffix
	prefix := "g" + magnitude(gameID) + "c" + magnitude(int64(cloudIndex))

	// Trim the prefix rather than the tail so the time and random parts survive
	if room := MaxAliasLength - len(tail); len(prefix) > room {
		if room < 0 {
			room = 0
		}
		prefix = prefix[:room]
	}

	alias := prefix + tail
	if len(alias) > MaxAliasLength {
		alias = alias[len(alias)-MaxAliasLength:]
	}
	return alias, nil
}

// ValidAlias reports whether alias satisfies the provider charset and length rules
func ValidAlias(alias string) bool {
	return aliasRegex.MatchString(alias)
}

func randomBase36(n int) (string, error) {
	var b strings.Builder
	limit := big.NewInt(int64(len(base36Chars)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(base36Chars[idx.Int64()])
	}
	return b.String(), nil
}

// magnitude formats |n| in decimal; math.MinInt64 has no positive int64 counterpart
func magnitude(n int64) string {
	u := uint64(n)
	if n < 0 {
		u = -u
	}
	return strconv.FormatUint(u, 10)
}
