package instance

import "time"

// monthAbbrev are the locale-neutral English month abbreviations the
// archive filename format uses (§6), regardless of the host's locale.
var monthAbbrev = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FormatDateStamp renders t as "yyyy-MMM-dd" using the locale-neutral
// English month abbreviation (§6).
func FormatDateStamp(t time.Time) string {
	return t.Format("2006-") + monthAbbrev[t.Month()-1] + t.Format("-02")
}

// BuildKey builds the instance key "<BaseFileName> [<DateStamp>]<InternalExt>"
// (§6), the consumed contract KeyPattern's regex must match exactly (P8).
func BuildKey(baseFileName string, t time.Time, internalExt string) string {
	return baseFileName + " [" + FormatDateStamp(t) + "]" + internalExt
}
