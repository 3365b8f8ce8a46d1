package recordv1

import (
	"fmt"
	"strings"
)

// Kind is the family a record belongs to.
type Kind string

const (
	KindUser   Kind = "user"
	KindGuild  Kind = "guild"
	KindGlobal Kind = "global"
)

// Locator addresses one persisted record.
type Locator struct {
	Kind Kind
	ID   string
}

// User locates the record of a user.
func User(id string) Locator { return Locator{Kind: KindUser, ID: id} }

// Guild locates the record of a guild.
func Guild(id string) Locator { return Locator{Kind: KindGuild, ID: id} }

// Global locates a process-wide record such as the market.
func Global(name string) Locator { return Locator{Kind: KindGlobal, ID: name} }

// Key is the string used both as storage key and as task queue key, e.g. "user:42".
func (l Locator) Key() string {
	return string(l.Kind) + ":" + l.ID
}

func (l Locator) String() string {
	return l.Key()
}

// Validate rejects unknown kinds and ids that cannot be used as a single path segment.
func (l Locator) Validate() error {
	switch l.Kind {
	case KindUser, KindGuild, KindGlobal:
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidLocator, l.Kind)
	}
	if l.ID == "" || l.ID == "." || l.ID == ".." || strings.ContainsAny(l.ID, `/\:`) {
		return fmt.Errorf("%w: id %q", ErrInvalidLocator, l.ID)
	}
	return nil
}
