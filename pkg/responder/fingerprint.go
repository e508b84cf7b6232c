package responder

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Fingerprint computes the cache-validation token for a resource payload:
// a sha256 over the JSON encoding of {version, resource, data}, returned in
// quoted ETag form. Identical version + resource + data always produce the
// same token; any change to the version or the rows changes it.
//
// json.Marshal keys struct fields in declaration order and map keys
// sorted, so the encoding is deterministic for the payload types used
// by this package.
func Fingerprint(version int64, resource string, payload any) (string, error) {
	doc, err := json.Marshal(struct {
		Version  int64  `json:"version"`
		Resource string `json:"resource"`
		Data     any    `json:"data"`
	}{
		Version:  version,
		Resource: resource,
		Data:     payload,
	})
	if err != nil {
		return "", fmt.Errorf("marshal fingerprint input: %w", err)
	}

	sum := sha256.Sum256(doc)
	return `"` + hex.EncodeToString(sum[:]) + `"`, nil
}
