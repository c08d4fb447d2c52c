package certificates

import (
	"strings"
)

// DeriveFilename returns the storage key of a certificate:
// "<student>-<type>.pdf", lowercased, with everything but [a-z0-9] removed and
// the word "certificate" dropped from the type. The same name is rebuilt by
// anything that links to /certificates/<filename>, so this must stay stable.
//
// Different inputs can collide ("Bonafide Certificate" and
// "Bona-Fide-Certificate" both give "bonafide"); the later render overwrites
// the earlier file.
func DeriveFilename(studentName, certificateType string) string {
	return normalizeKey(studentName) + "-" + normalizeCertificateType(certificateType) + ".pdf"
}

// DeriveUniqueFilename appends the request id so that two requests of the
// same student and type keep separate files.
func DeriveUniqueFilename(studentName, certificateType, requestID string) string {
	return normalizeKey(studentName) + "-" + normalizeCertificateType(certificateType) + "-" + normalizeKey(requestID) + ".pdf"
}

func normalizeCertificateType(certificateType string) string {
	return normalizeKey(strings.ReplaceAll(strings.ToLower(certificateType), "certificate", ""))
}

func normalizeKey(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}
