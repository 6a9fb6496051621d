// Package schema validates inbound profile payloads against the
// embedded JSON schema before they reach the compiler.
package schema

import (
	"errors"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/alnah/go-cv2pdf/internal/assets"
)

// ErrProfileInvalid reports a payload that fails schema validation.
// The wrapped message lists every violated constraint.
var ErrProfileInvalid = errors.New("schema: profile validation failed")

var compiled = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(assets.ProfileSchema()))
})

// ValidateProfile checks a raw JSON profile document. It returns nil
// for a conforming payload and ErrProfileInvalid with all violations
// otherwise.
func ValidateProfile(raw []byte) error {
	s, err := compiled()
	if err != nil {
		return fmt.Errorf("schema: compiling profile schema: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProfileInvalid, err)
	}
	if result.Valid() {
		return nil
	}

	msg := ""
	for i, desc := range result.Errors() {
		if i > 0 {
			msg += "; "
		}
		msg += desc.String()
	}
	return fmt.Errorf("%w: %s", ErrProfileInvalid, msg)
}
