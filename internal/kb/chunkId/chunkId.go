// Package chunkId is the naming scheme that ties a document to its chunks.
// The identifier "{name}-chunk{idx}" is the DocumentStore key, the
// VectorIndex datapoint id AND the prefix that lets deletion recover every
// chunk of a document with a single lexicographic range scan - no secondary
// document->chunks index exists anywhere.
package chunkId

import (
	"strconv"
	"strings"
)

const delimiter = "-chunk"

// Make renders the identifier for (documentName, index).
func Make(documentName string, index int) string {
	return documentName + delimiter + strconv.Itoa(index)
}

// Prefix is the common prefix of every identifier belonging to documentName.
func Prefix(documentName string) string {
	return documentName + delimiter
}

// NextPrefix is the exclusive upper bound for a range scan: the prefix with
// its last byte incremented. Because the bound is derived from the full
// "name-chunk" string and not from the bare name, a document named "A" can
// never capture chunks of "A2" ("A2-chunk0" sorts above "A-chunl").
func NextPrefix(documentName string) string {
	bound := []byte(Prefix(documentName))
	bound[len(bound)-1]++
	return string(bound)
}

// Range returns the half-open scan interval [start, end) covering exactly
// the chunks of documentName.
func Range(documentName string) (start, end string) {
	return Prefix(documentName), NextPrefix(documentName)
}

// ParseIndex recovers the sequence index from an identifier known to belong
// to documentName. Lexicographic order puts "chunk10" before "chunk2", so
// callers that need retrieval order sort by this parsed index instead.
func ParseIndex(identifier, documentName string) (int, bool) {
	prefix := Prefix(documentName)
	if !strings.HasPrefix(identifier, prefix) {
		return 0, false
	}
	idx, err := strconv.Atoi(identifier[len(prefix):])
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// DocumentName recovers the owning document from an identifier. The document
// name may itself contain the delimiter, so the split happens at the last
// occurrence that is followed by digits only.
func DocumentName(identifier string) (string, bool) {
	for at := strings.LastIndex(identifier, delimiter); at > 0; at = strings.LastIndex(identifier[:at], delimiter) {
		suffix := identifier[at+len(delimiter):]
		if suffix == "" {
			continue
		}
		if idx, err := strconv.Atoi(suffix); err == nil && idx >= 0 && suffix[0] != '-' {
			return identifier[:at], true
		}
	}
	return "", false
}
