package mpesa

import "strings"

// NormalizePhone converts a Kenyan phone number to the single
// international convention the gateway accepts: leading 254, no plus
// sign, no leading zero.
//
//	"+254712345678" -> "254712345678"
//	"0712345678"    -> "254712345678"
//	"712345678"     -> "254712345678"
//	"254712345678"  -> "254712345678"
func NormalizePhone(phone string) string {
	p := strings.TrimSpace(phone)
	switch {
	case strings.HasPrefix(p, "+254"):
		return "254" + p[len("+254"):]
	case strings.HasPrefix(p, "0"):
		return "254" + p[1:]
	case strings.HasPrefix(p, "254"):
		return p
	default:
		return "254" + p
	}
}
