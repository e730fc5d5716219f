package ghostly

import "time"

// FormField pairs a field selector with the value to type into it. Fields
// are filled in the order given.
type FormField struct {
	// Selector identifies the field, resolved within the form's scope
	Selector string

	// Value is the text to type. Any occurrence of RandomPlaceholder is
	// replaced by a random token generated once per Fill or Submit call.
	Value string
}

// RandomPlaceholder is the literal token substituted in form values.
const RandomPlaceholder = "<random>"

// randomTokenLength is the length of the generated substitution token.
const randomTokenLength = 12

// Defaults for the xpath wait routine.
const (
	DefaultXPathTimeout = 5 * time.Second
	DefaultXPathSleep   = 250 * time.Millisecond
)
