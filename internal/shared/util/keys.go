package util

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
)

const exportsPrefix = "exports"

// SessionKey is the storage namespace for a session. Raw session IDs never reach paths or bucket keys.
func SessionKey(sessionID string) string {
	sum := sha256.Sum256([]byte("session:" + sessionID))
	return hex.EncodeToString(sum[:16])
}

// ExportKey is where an exported report for the session is kept.
func ExportKey(sessionID, fileName string) string {
	return path.Join(exportsPrefix, SessionKey(sessionID), fileName)
}

// ExtractedKey is the sibling object holding a document's extracted text.
func ExtractedKey(storageKey string) string {
	return storageKey + ".extracted.txt"
}
