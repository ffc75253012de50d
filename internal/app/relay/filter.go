package relay

import (
	"strings"

	goaway "github.com/TwiN/go-away"

	"chatrelay/internal/pkg/errs"
)

// restrictedWords is the fixed custom restricted-word list, matched
// case-insensitively as substrings in addition to the general dictionary.
var restrictedWords = []string{"spoiler", "leak", "confidential"}

// Filter rejects messages containing profanity or restricted words.
// Checking is two-stage and short-circuiting: the general dictionary first,
// the custom list second. Either match rejects the message.
type Filter struct {
	detector   *goaway.ProfanityDetector
	restricted []string
}

// NewFilter constructs a Filter with the default profanity dictionary and
// the built-in restricted-word list.
func NewFilter() *Filter {
	return &Filter{
		detector:   goaway.NewProfanityDetector(),
		restricted: restrictedWords,
	}
}

// Check returns nil for acceptable text, ErrProfanity when the general
// dictionary matches, and ErrRestrictedWords when the custom list matches.
// The returned Message string is what gets acknowledged to the sender; a
// rejected message is never broadcast.
func (f *Filter) Check(text string) *errs.CustomError {
	if f.detector.IsProfane(text) {
		return errs.NewError(errs.ErrProfanity)
	}

	lower := strings.ToLower(text)
	for _, word := range f.restricted {
		if strings.Contains(lower, word) {
			return errs.NewError(errs.ErrRestrictedWords)
		}
	}

	return nil
}
