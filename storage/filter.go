package storage

import (
	"fmt"
	"slices"

	"github.com/poiesic/progdex/core"
)

// Predicate is an exact boolean condition over metadata fields, applied in
// conjunction with semantic ranking during search. Predicates form a small
// expression tree; new node kinds can be added without touching the store.
type Predicate interface {
	// Matches reports whether the metadata satisfies the predicate.
	Matches(m core.Metadata) bool

	// Validate checks that the predicate references existing fields of the
	// right type.
	Validate() error
}

// Eq matches entries whose string field equals Value.
type Eq struct {
	Field string
	Value string
}

func (p Eq) Matches(m core.Metadata) bool {
	v, ok := m.StringField(p.Field)
	return ok && v == p.Value
}

func (p Eq) Validate() error {
	if _, ok := (core.Metadata{}).StringField(p.Field); !ok {
		return fmt.Errorf("%w: %q is not a string field", core.ErrUnknownField, p.Field)
	}
	return nil
}

// In matches entries whose string field is one of Values.
type In struct {
	Field  string
	Values []string
}

func (p In) Matches(m core.Metadata) bool {
	v, ok := m.StringField(p.Field)
	return ok && slices.Contains(p.Values, v)
}

func (p In) Validate() error {
	if _, ok := (core.Metadata{}).StringField(p.Field); !ok {
		return fmt.Errorf("%w: %q is not a string field", core.ErrUnknownField, p.Field)
	}
	return nil
}

// NotIn matches entries whose string field is none of Values.
type NotIn struct {
	Field  string
	Values []string
}

func (p NotIn) Matches(m core.Metadata) bool {
	v, ok := m.StringField(p.Field)
	return ok && !slices.Contains(p.Values, v)
}

func (p NotIn) Validate() error {
	if _, ok := (core.Metadata{}).StringField(p.Field); !ok {
		return fmt.Errorf("%w: %q is not a string field", core.ErrUnknownField, p.Field)
	}
	return nil
}

// BoolEq matches entries whose boolean field equals Value.
type BoolEq struct {
	Field string
	Value bool
}

func (p BoolEq) Matches(m core.Metadata) bool {
	v, ok := m.BoolField(p.Field)
	return ok && v == p.Value
}

func (p BoolEq) Validate() error {
	if _, ok := (core.Metadata{}).BoolField(p.Field); !ok {
		return fmt.Errorf("%w: %q is not a boolean field", core.ErrUnknownField, p.Field)
	}
	return nil
}

// Gt matches entries whose integer field is strictly greater than Value.
type Gt struct {
	Field string
	Value int
}

func (p Gt) Matches(m core.Metadata) bool {
	v, ok := m.IntField(p.Field)
	return ok && v > p.Value
}

func (p Gt) Validate() error {
	if _, ok := (core.Metadata{}).IntField(p.Field); !ok {
		return fmt.Errorf("%w: %q is not an integer field", core.ErrUnknownField, p.Field)
	}
	return nil
}

// And matches entries satisfying every sub-predicate. An empty And matches
// everything.
type And struct {
	Preds []Predicate
}

func (p And) Matches(m core.Metadata) bool {
	for _, sub := range p.Preds {
		if !sub.Matches(m) {
			return false
		}
	}
	return true
}

func (p And) Validate() error {
	for _, sub := range p.Preds {
		if err := sub.Validate(); err != nil {
			return err
		}
	}
	return nil
}
