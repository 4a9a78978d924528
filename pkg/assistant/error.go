package assistant

import "errors"

// ErrUnsupportedLanguage is returned for translation targets outside
// the supported set. No generation call is made.
var ErrUnsupportedLanguage = errors.New("unsupported translation language")
