// Package idgen provides short, URL-safe field ids backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// FieldPrefix is prepended to every generated field id.
var FieldPrefix = "fld_"

// Alphabet defines the character set used for the random portion of the id.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 12

// FieldID returns a new unique field id.
func FieldID() (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return FieldPrefix + id, nil
}
