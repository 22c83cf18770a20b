package exporter

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxSheetName is the longest sheet name a workbook accepts
const maxSheetName = 31

// formatPercent renders a share with two decimals and a percent sign
func formatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// SanitizeSheetName strips the characters a sheet name may not contain,
// truncates it and makes it unique among used. Empty names become "Hoja".
func SanitizeSheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`*[]:?/\`, r) {
			return -1
		}
		return r
	}, name)
	clean = strings.Trim(strings.TrimSpace(clean), "'")
	if clean == "" {
		clean = "Hoja"
	}
	clean = truncate(clean, maxSheetName)

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncate(clean, maxSheetName-len(suffix)) + suffix
	}
	if used != nil {
		used[strings.ToLower(candidate)] = true
	}
	return candidate
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
