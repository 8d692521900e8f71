package catalog

import "time"

const (
	releaseDateLayout = "2006-01-02T15:04:05Z"
	displayDateLayout = "2006-01-02 15:04:05"
)

// Record is the normalized first entry of a lookup response
type Record struct {
	BundleID                  string `json:"bundleId"`
	Version                   string `json:"version"`
	ReleaseNotes              string `json:"releaseNotes"`
	CurrentVersionReleaseDate string `json:"currentVersionReleaseDate"`
}

// ReleaseDate returns the release date as "2006-01-02 15:04:05" in UTC, or "" if it cannot be parsed.
func (r Record) ReleaseDate() string {
	return FormatReleaseDate(r.CurrentVersionReleaseDate)
}

// FormatReleaseDate reformats a catalog timestamp such as 2022-01-26T18:25:02Z for display
func FormatReleaseDate(s string) string {
	t, err := time.ParseInLocation(releaseDateLayout, s, time.UTC)
	if err != nil {
		return ""
	}
	return t.UTC().Format(displayDateLayout)
}
