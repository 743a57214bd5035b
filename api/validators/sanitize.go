package validators

import "strings"

// SanitizeString trims input and caps it at maxLen bytes. Barcodes and search
// terms pass through here before reaching a service.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
