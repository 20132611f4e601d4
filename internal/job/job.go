package job

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingField matches every *ValidationError via errors.Is.
var ErrMissingField = errors.New("missing required field")

// ValidationError reports a required field that was absent or not a string.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required and must be a string", e.Field)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrMissingField
}

// Job is the unit of work pushed onto the email queue. The JSON keys are the
// ones the queue consumer reads.
type Job struct {
	Recipient string `json:"email"`
	Subject   string `json:"subject"`
}

// Validate extracts a Job from a decoded request body. The recipient is read
// from "email", falling back to "recipient". Any other keys are dropped.
func Validate(raw map[string]any) (Job, error) {
	v, ok := raw["email"]
	if !ok {
		v, ok = raw["recipient"]
	}
	recipient, isString := v.(string)
	if !ok || !isString || strings.TrimSpace(recipient) == "" {
		return Job{}, &ValidationError{Field: "recipient"}
	}

	// An empty subject is accepted.
	subject, isString := raw["subject"].(string)
	if !isString {
		return Job{}, &ValidationError{Field: "subject"}
	}

	return Job{Recipient: recipient, Subject: subject}, nil
}

// Encode serializes j as a single-line JSON object. Equal jobs always encode
// to identical bytes.
func Encode(j Job) ([]byte, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("encode job: %w", err)
	}
	return b, nil
}

// Decode parses a queue entry produced by Encode.
func Decode(b []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(b, &j); err != nil {
		return Job{}, fmt.Errorf("decode job: %w", err)
	}
	return j, nil
}
