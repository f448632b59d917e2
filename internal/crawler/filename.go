package crawler

import (
	"net/url"
	"path"
	"strings"
)

// maxFilenameText caps the part of a filename derived from link text.
const maxFilenameText = 50

// SafeFilename derives a local file name for a harvested PDF link.
// The result is "<company>_<name>.pdf" where name is the URL's last path
// segment when it names a PDF, or the sanitized link text otherwise.
func SafeFilename(company, text, rawURL string) string {
	cleanCompany := strings.ToLower(underscoreNonAlnum(company))

	cleanText := strings.ToLower(underscoreNonAlnum(text))
	if len(cleanText) > maxFilenameText {
		cleanText = cleanText[:maxFilenameText]
	}

	filename := cleanText + ".pdf"
	if segment := lastPathSegment(rawURL); strings.Contains(strings.ToLower(segment), ".pdf") {
		filename = segment
	}

	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		filename += ".pdf"
	}

	return cleanCompany + "_" + filename
}

// underscoreNonAlnum replaces every character outside [A-Za-z0-9] with "_".
func underscoreNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isASCIIAlnum(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// lastPathSegment returns the unescaped last path segment of a URL with
// characters that are unsafe in file names replaced by "_".
func lastPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return ""
	}

	segment := path.Base(u.Path)
	var b strings.Builder
	for _, r := range segment {
		if isASCIIAlnum(r) || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
