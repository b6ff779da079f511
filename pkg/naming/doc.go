// Package naming converts identifiers between the conventions used on the
// wire and in the controller registry: hyphen-case URL segments, CamelCase
// controller names and underscore action names.
//
//	naming.Controller("foo-bar")                          // "FooBar"
//	naming.Action("do-thing")                             // "do_thing"
//	naming.Convert(naming.Camel, naming.Hyphen, "FooBar") // "foo-bar"
//
// Only a separator followed by a letter starts a new word, so "v-2" stays
// "V-2" in CamelCase.
package naming
