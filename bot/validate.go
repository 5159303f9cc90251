package bot

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	otpRe   = regexp.MustCompile(`^[0-9]{4,6}$`)
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// ValidOTP reports whether s is a 4 to 6 digit one-time password.
func ValidOTP(s string) bool {
	return otpRe.MatchString(strings.TrimSpace(s))
}

// ValidWalletAddress applies the platform's length rule for addresses.
func ValidWalletAddress(s string) bool {
	n := len(strings.TrimSpace(s))
	return n >= 30 && n <= 100
}

// ValidAmount reports whether s parses as a positive finite decimal number.
// ParseFloat accepts spellings like "inf", which are never valid amounts.
func ValidAmount(s string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && v > 0 && !math.IsInf(v, 0)
}

// ShortenWalletAddress abbreviates an address for display.
func ShortenWalletAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
