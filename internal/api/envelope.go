package api

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wrapper every backend reply is sent in.
// Data is only meaningful on success; failure replies usually leave it empty.
type Envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Decode parses the response body as an Envelope carrying T.
func Decode[T any](resp *Response) (*Envelope[T], error) {
	if resp == nil {
		return nil, fmt.Errorf("decoding envelope: no response")
	}
	var env Envelope[T]
	if len(resp.Body) == 0 {
		return &env, nil
	}
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, &DecodeError{Response: resp, Err: err}
	}
	return &env, nil
}

// decodeFailure tries to read an error body as an envelope. Bodies that are
// not JSON objects yield nil.
func decodeFailure(body []byte) *Envelope[json.RawMessage] {
	if len(body) == 0 {
		return nil
	}
	var env Envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	return &env
}
