// Package extract derives structured features from free-form announcement
// text: links, image references, event dates and keywords.
//
// All functions are pure; anything that depends on the current time takes
// it as an argument.
package extract
