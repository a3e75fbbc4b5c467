package sink

import (
	"fmt"
	"regexp"
	"time"
)

// Artifact kinds.
const (
	KindPDF  = "pdf"
	KindText = "txt"
)

var artifactName = regexp.MustCompile(`^Account([A-Za-z0-9]+)_RedNote_Content_(\d{8})\.(pdf|txt)$`)

// ArtifactName returns the file name for an account, day and kind. One file
// per account per calendar day; a later run the same day replaces it.
func ArtifactName(accountID string, day time.Time, kind string) string {
	return fmt.Sprintf("Account%s_RedNote_Content_%s.%s", accountID, day.Format("20060102"), kind)
}

// ParseArtifactName splits a valid artifact file name into its parts.
func ParseArtifactName(name string) (accountID, date, kind string, ok bool) {
	m := artifactName.FindStringSubmatch(name)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}
