package responses

import _ "embed"

// DefaultSeed is the bundled bot-builder response set. Callers pass it
// to NewService; tests may substitute their own.
//
//go:embed bot-builder-responses.json
var DefaultSeed []byte
