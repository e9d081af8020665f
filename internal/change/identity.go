package change

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Identity returns a stable hash of a change instance, derived from its operation,
// scope, object type and rendered SQL. It is used for deduplication and debugging;
// it never influences ordering.
func Identity(c Change) string {
	data := strings.Join([]string{
		string(c.Operation()),
		string(c.Scope()),
		string(c.ObjectType()),
		c.SQL(),
	}, "\x00")
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// ShortIdentity returns the first 12 characters of the identity hash
func ShortIdentity(c Change) string {
	return Identity(c)[:12]
}

// Summary returns a one line description such as "create table table:public.users"
func Summary(c Change) string {
	s := fmt.Sprintf("%s %s %s", c.Operation(), c.ObjectType(), c.Target())
	if c.Scope() != ScopeObject {
		s += " (" + string(c.Scope()) + ")"
	}
	return s
}

// Dedupe removes changes whose identity was already seen, keeping the first occurrence.
func Dedupe(changes []Change) []Change {
	seen := make(map[string]bool, len(changes))
	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		key := Identity(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
