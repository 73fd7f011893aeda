// Package tokenid derives the immutable, content-bound identifier assigned to a
// design the first time it is persisted.
package tokenid

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Algorithm is recorded next to every issued identifier.
const Algorithm = "SHA-256"

// Fields are the descriptive inputs of an identifier.
type Fields struct {
	OwnerID   uint
	OwnerName string
	FileName  string
	FileSize  int64
	Title     string
	CreatedAt time.Time
	Style     string
	Model     string
}

var escaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`, `:`, `\:`)

// Record renders the fields and the timestamp sample in their fixed order:
//
//	ownerID:ownerName|fileName:fileSize|timestamp|title:createdAt:style:model
func Record(f Fields, sampledAt time.Time) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(f.OwnerID), 10))
	b.WriteByte(':')
	b.WriteString(escaper.Replace(f.OwnerName))
	b.WriteByte('|')
	b.WriteString(escaper.Replace(f.FileName))
	b.WriteByte(':')
	b.WriteString(strconv.FormatInt(f.FileSize, 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(sampledAt.UnixNano(), 10))
	b.WriteByte('|')
	b.WriteString(escaper.Replace(f.Title))
	b.WriteByte(':')
	b.WriteString(escaper.Replace(f.CreatedAt.UTC().Format(time.RFC3339Nano)))
	b.WriteByte(':')
	b.WriteString(escaper.Replace(f.Style))
	b.WriteByte(':')
	b.WriteString(escaper.Replace(f.Model))
	return b.String()
}

// Generate returns the lowercase hex SHA-256 digest of the record.
func Generate(f Fields, sampledAt time.Time) string {
	sum := sha256.Sum256([]byte(Record(f, sampledAt)))
	return hex.EncodeToString(sum[:])
}

// Assign keeps current when it is already set; otherwise it generates a new
// identifier from f sampled at now. The boolean reports whether a new one was issued.
func Assign(current string, f Fields, now time.Time) (string, bool) {
	if current != "" {
		return current, false
	}
	return Generate(f, now), true
}
