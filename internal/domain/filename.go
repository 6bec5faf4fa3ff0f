package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ImageExtension is appended to every chart entry in the archive.
const ImageExtension = ".png"

// ChartFilename builds "{site}_{customer}_{turbine}_Week{week}.png". Each
// component is sanitized so the result is a single, portable archive entry name.
func ChartFilename(turbine string, md Metadata) string {
	return fmt.Sprintf("%s_%s_%s_Week%s%s",
		SanitizeComponent(md.Site),
		SanitizeComponent(md.Customer),
		SanitizeComponent(turbine),
		SanitizeComponent(md.Week.String()),
		ImageExtension,
	)
}

// SanitizeComponent replaces path separators, characters reserved on common
// filesystems and control characters with '-', then trims leading and trailing
// dots and spaces. An empty result becomes "N-A".
func SanitizeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r), unicode.IsControl(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ". ")
	if out == "" {
		return "N-A"
	}
	return out
}

// UniqueNamer hands out archive entry names, appending "_2", "_3", ... before the
// extension when a name has already been used.
type UniqueNamer struct {
	used map[string]bool
}

// NewUniqueNamer returns an empty namer.
func NewUniqueNamer() *UniqueNamer {
	return &UniqueNamer{used: make(map[string]bool)}
}

// Claim returns name or the first free suffixed variant of it, and whether the
// name had to be changed.
func (u *UniqueNamer) Claim(name string) (string, bool) {
	if !u.used[name] {
		u.used[name] = true
		return name, false
	}
	ext := ""
	base := name
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		base, ext = name[:i], name[i:]
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if !u.used[candidate] {
			u.used[candidate] = true
			return candidate, true
		}
	}
}

// ArchiveName is the download name of a run's archive, stamped with t.
func ArchiveName(t time.Time) string {
	return "turbine_power_curves_" + t.Format("20060102_150405") + ".zip"
}
