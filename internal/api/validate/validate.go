package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/Vijaykv5/Intereractive-GD/internal/model"
)

// MaxBodyBytes bounds request bodies; screenshots arrive as base64 strings.
const MaxBodyBytes = 32 << 20

// identifierRx covers Google subject ids, emails used as ids and test ids.
var identifierRx = regexp.MustCompile(`^[A-Za-z0-9_.@\-]{1,128}$`)

// NonEmpty fails with the given message when v is empty.
func NonEmpty(field, v, message string) error {
	if v == "" {
		return model.NewValidationError(field, message)
	}
	return nil
}

// Identifier validates a user or discussion id.
func Identifier(field, v string) error {
	if v == "" {
		return model.NewValidationError(field, fmt.Sprintf("%s is required", field))
	}
	if !identifierRx.MatchString(v) {
		return model.NewValidationError(field, fmt.Sprintf("invalid %s", field))
	}
	return nil
}

// DecodeJSON reads a bounded JSON body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewValidationError("body", "No data provided")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &model.CapacityError{Limit: int(tooLarge.Limit)}
		}
		return model.NewValidationError("body", "Invalid JSON body")
	}
	return nil
}
