// Package sanitizer cleans the HTML a controller or guard hands to the
// framework's info page. Messages may contain links and emphasis; titles are
// reduced to text.
package sanitizer
