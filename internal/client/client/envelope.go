package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fmdata/internal/client/models"
)

// SuccessCode is the only message code that signals success.
const SuccessCode = "0"

// Message is one entry of the envelope's messages array.
type Message struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope is the uniform {response, messages} wrapper of every Data API
// reply. Response is left raw; each operation extracts its own payload.
type Envelope struct {
	Response json.RawMessage `json:"response,omitempty"`
	Messages []Message       `json:"messages"`
}

// Code returns the first message code.
func (e *Envelope) Code() string {
	if e == nil || len(e.Messages) == 0 {
		return ""
	}
	return e.Messages[0].Code
}

// Succeeded reports whether the first message code is "0".
func (e *Envelope) Succeeded() bool {
	return e.Code() == SuccessCode
}

// Decode parses a raw reply. Bytes that are not a JSON object with a
// non-empty messages array whose first code is a string yield
// ErrMalformedResponse. A well-formed failure returns the envelope together
// with an *APIError.
func Decode(raw []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrMalformedResponse)
	}

	var shape struct {
		Response json.RawMessage   `json:"response"`
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(trimmed, &shape); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(shape.Messages) == 0 {
		return nil, fmt.Errorf("%w: messages missing or empty", ErrMalformedResponse)
	}

	env := &Envelope{Messages: make([]Message, 0, len(shape.Messages))}
	if len(shape.Response) > 0 && !bytes.Equal(shape.Response, []byte("null")) {
		env.Response = shape.Response
	}
	for i, rawMsg := range shape.Messages {
		var m Message
		if err := json.Unmarshal(rawMsg, &m); err != nil {
			if i == 0 {
				return nil, fmt.Errorf("%w: messages[0]: %v", ErrMalformedResponse, err)
			}
			continue
		}
		env.Messages = append(env.Messages, m)
	}

	var first map[string]json.RawMessage
	if err := json.Unmarshal(shape.Messages[0], &first); err != nil {
		return nil, fmt.Errorf("%w: messages[0]: %v", ErrMalformedResponse, err)
	}
	if _, ok := first["code"]; !ok {
		return nil, fmt.Errorf("%w: messages[0].code missing", ErrMalformedResponse)
	}

	if !env.Succeeded() {
		return env, &APIError{Code: env.Messages[0].Code, Message: env.Messages[0].Message}
	}
	return env, nil
}

type recordsPayload struct {
	Data     *[]models.Record `json:"data"`
	DataInfo *models.DataInfo `json:"dataInfo"`
}

// Records extracts response.data and response.dataInfo. A missing data
// array is ErrMalformedResponse; an empty one is not.
func (e *Envelope) Records() ([]models.Record, *models.DataInfo, error) {
	if len(e.Response) == 0 {
		return nil, nil, fmt.Errorf("%w: response missing", ErrMalformedResponse)
	}
	var p recordsPayload
	if err := json.Unmarshal(e.Response, &p); err != nil {
		return nil, nil, fmt.Errorf("%w: response.data: %v", ErrMalformedResponse, err)
	}
	if p.Data == nil {
		return nil, nil, fmt.Errorf("%w: response.data missing", ErrMalformedResponse)
	}
	return *p.Data, p.DataInfo, nil
}

// Token extracts response.token.
func (e *Envelope) Token() (string, error) {
	if len(e.Response) == 0 {
		return "", fmt.Errorf("%w: response missing", ErrMalformedResponse)
	}
	var p struct {
		Token *string `json:"token"`
	}
	if err := json.Unmarshal(e.Response, &p); err != nil {
		return "", fmt.Errorf("%w: response.token: %v", ErrMalformedResponse, err)
	}
	if p.Token == nil || *p.Token == "" {
		return "", fmt.Errorf("%w: response.token missing", ErrMalformedResponse)
	}
	return *p.Token, nil
}

// IsMalformed reports whether err came from a body that is not an envelope.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}
