package plan

import (
	"crypto/sha256"
	"fmt"
)

// Fingerprint identifies a script by content
type Fingerprint struct {
	Hash string `json:"hash"`
}

// Fingerprint hashes the rendered script. Two plans with the same steps in the
// same order share a fingerprint.
func (p *Plan) Fingerprint() *Fingerprint {
	return &Fingerprint{Hash: fmt.Sprintf("%x", sha256.Sum256([]byte(p.SQL())))}
}

func (f *Fingerprint) String() string {
	if len(f.Hash) >= 8 {
		return fmt.Sprintf("Plan fingerprint: %s", f.Hash[:8])
	}
	return fmt.Sprintf("Plan fingerprint: %s", f.Hash)
}

// Equal reports whether two fingerprints name the same script
func (f *Fingerprint) Equal(other *Fingerprint) bool {
	return f != nil && other != nil && f.Hash == other.Hash
}
