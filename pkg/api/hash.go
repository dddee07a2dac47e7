package api

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// Fingerprint returns a deterministic BLAKE3 hash of the draft content.
// Tag order is significant (notes keep the order the user typed); surrounding
// whitespace in the title, body and tags is not.
func (d Draft) Fingerprint() string {
	h := blake3.New()

	// Null bytes separate fields so "ab"+"c" and "a"+"bc" differ.
	h.Write([]byte(strings.TrimSpace(d.Title)))
	h.Write([]byte{0})

	h.Write([]byte(strings.TrimSpace(d.Body)))
	h.Write([]byte{0})

	for _, t := range d.Tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	h.Write([]byte{0}) // end of tags

	return hex.EncodeToString(h.Sum(nil))
}

// Unchanged reports whether the draft would not alter note n.
func (d Draft) Unchanged(n Note) bool {
	return d.Fingerprint() == n.Draft().Fingerprint()
}
