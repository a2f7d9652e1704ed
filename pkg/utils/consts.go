package utils

import "errors"

var ErrNameExceedsMaxLength = errors.New("name exceeds the max length of 128 characters")
var ErrNameContainsInvalidCharacters = errors.New("name contains invalid characters, characters must be either a-z, A-Z, 0-9, -, _")

// DefaultSettingsFile is read when no --config flag is given
const DefaultSettingsFile = "collector.hcl"
