package service

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// NormalizeTemplateName is the form of a goal name or objective title that
// templates are keyed on.
func NormalizeTemplateName(name string) string {
	return strings.TrimSpace(name)
}

// TemplateHash is the hex MD5 of the normalized name. Blank and
// whitespace-only names all land in the hash of the empty string.
func TemplateHash(name string) string {
	sum := md5.Sum([]byte(NormalizeTemplateName(name)))
	return hex.EncodeToString(sum[:])
}
