// Package dictionary stores accepted translations per project and language
// pair, and turns them into suggestions for a project or for every project
// sharing a language pair.
package dictionary

import "context"

// Backend is the dictionary API. It is implemented in process by Service and
// over the daemon socket by daemon.Client.
type Backend interface {
	// SaveTranslation appends translated to the list stored for original in
	// the document's project dictionary.
	SaveTranslation(ctx context.Context, document string, pair LanguagePair, original, translated string) error
	// ProjectSuggestions returns the translations stored for original in the
	// document's project dictionary, oldest first. It never creates the
	// dictionary: a project that has none yet has no suggestions.
	ProjectSuggestions(ctx context.Context, document string, pair LanguagePair, original string) ([]Suggestion, error)
	// GlobalSuggestions returns the translations of original found in every
	// project dictionary of pair, without repeated translated texts. It fails
	// when the pair's directory cannot be listed, including when it is missing.
	GlobalSuggestions(ctx context.Context, pair LanguagePair, original string) ([]Suggestion, error)
	// Projects lists the project keys that have a dictionary for pair.
	Projects(ctx context.Context, pair LanguagePair) ([]string, error)
}
