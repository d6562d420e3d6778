package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/BellSoftNetwork/ResortManagementSystem-sub001/internal/models"
	pkghttp "github.com/BellSoftNetwork/ResortManagementSystem-sub001/pkg/http"
)

const UnknownOS = "Unknown"

// osPatterns is matched in order against the User-Agent; first match wins.
// Android must precede Linux because Android user agents also contain "Linux".
var osPatterns = []struct {
	tokens []string
	label  string
}{
	{[]string{"Windows"}, "Windows"},
	{[]string{"Mac OS X"}, "macOS"},
	{[]string{"iPhone", "iPad"}, "iOS"},
	{[]string{"Android"}, "Android"},
	{[]string{"Linux"}, "Linux"},
}

// ExtractDeviceInfo derives the device signal for a request. It has no side effects.
// Header-derived fields are made valid UTF-8 and cut to the ledger column widths.
func ExtractDeviceInfo(r *http.Request, ipConfig *pkghttp.IPConfig) models.DeviceInfo {
	userAgent := r.Header.Get("User-Agent")
	osLabel := DetectOS(userAgent)

	return models.DeviceInfo{
		SourceAddress: truncateRunes(pkghttp.ExtractClientIP(r, ipConfig), models.MaxSourceAddressLength),
		OSLabel:       osLabel,
		LocaleLabel:   truncateRunes(primaryLocale(r.Header.Get("Accept-Language")), models.MaxLocaleLength),
		UserAgent:     strings.ToValidUTF8(userAgent, ""),
		Fingerprint:   Fingerprint(osLabel),
	}
}

// DetectOS maps a User-Agent to a coarse OS family label
func DetectOS(userAgent string) string {
	for _, p := range osPatterns {
		for _, token := range p.tokens {
			if strings.Contains(userAgent, token) {
				return p.label
			}
		}
	}
	return UnknownOS
}

// Fingerprint is the hex SHA-256 of the OS label. An empty label yields an empty fingerprint.
func Fingerprint(osLabel string) string {
	if osLabel == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(osLabel))
	return hex.EncodeToString(sum[:])
}

func primaryLocale(acceptLanguage string) string {
	if acceptLanguage == "" {
		return ""
	}
	return strings.TrimSpace(strings.Split(acceptLanguage, ",")[0])
}

// truncateRunes drops invalid UTF-8 and keeps at most n characters of s
func truncateRunes(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
