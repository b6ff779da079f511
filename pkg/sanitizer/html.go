package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy  *bluemonday.Policy
	messagePolicy *bluemonday.Policy
	initOnce      sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		// Info and denial pages carry short formatted messages, often with
		// a link back to a login or home page.
		messagePolicy = bluemonday.NewPolicy()
		messagePolicy.AllowStandardURLs()
		messagePolicy.AllowElements("p", "br", "strong", "b", "em", "i", "code", "ul", "ol", "li")
		messagePolicy.AllowAttrs("href").OnElements("a")
		messagePolicy.RequireNoFollowOnLinks(true)
	})
}

// Message keeps the basic formatting allowed in info page messages and
// strips everything else, including scripts, event handlers and
// javascript: URLs.
func Message(s string) string {
	initPolicies()
	return messagePolicy.Sanitize(s)
}

// Text strips all markup. Used for page titles.
func Text(s string) string {
	initPolicies()
	return strictPolicy.Sanitize(s)
}
