package dictionary

import (
	"fmt"
	"strings"

	"go.trai.ch/zerr"
)

// ErrInvalidLanguage is returned for language tags that cannot be used as
// part of a dictionary address.
var ErrInvalidLanguage = zerr.New("invalid language tag")

// Language is a language tag such as "EN", "pl" or "pt_BR". Regional
// variants use an underscore because '-' separates the two tags of a pair
// on disk.
type Language string

// Validate reports whether l can appear in an address.
func (l Language) Validate() error {
	s := string(l)
	switch {
	case strings.TrimSpace(s) == "",
		s == "." || s == "..",
		strings.ContainsAny(s, `-/\`+"\x00"):
		return zerr.With(fmt.Errorf("%w: %q", ErrInvalidLanguage, s), "language", s)
	}
	return nil
}

// LanguagePair is an ordered (source, target) pair. EN->PL and PL->EN are
// different dictionaries.
type LanguagePair struct {
	Source Language `json:"source"`
	Target Language `json:"target"`
}

// Pair builds a LanguagePair.
func Pair(source, target Language) LanguagePair {
	return LanguagePair{Source: source, Target: target}
}

// Validate checks both tags.
func (p LanguagePair) Validate() error {
	if err := p.Source.Validate(); err != nil {
		return zerr.Wrap(err, "source language")
	}
	if err := p.Target.Validate(); err != nil {
		return zerr.Wrap(err, "target language")
	}
	return nil
}

// String renders the pair the way it appears on disk.
func (p LanguagePair) String() string { return string(p.Source) + "-" + string(p.Target) }

// Reverse swaps source and target.
func (p LanguagePair) Reverse() LanguagePair { return LanguagePair{Source: p.Target, Target: p.Source} }
