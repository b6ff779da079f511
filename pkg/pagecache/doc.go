// Package pagecache keeps rendered pages for a few seconds so repeated GET
// requests from the same session skip the controller.
//
// Entries are keyed by the raw session cookie and the request URI, so a
// logged in visitor never receives a page rendered for someone else.
package pagecache
