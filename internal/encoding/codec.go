package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/ZanzyTHEbar/teamconstructor/internal/psychology"
)

// payloadShape accepts [[d,...],[[d,d,d,d,d],...x5]] with single signed digits.
var payloadShape = regexp.MustCompile(`^\[\[([+-]?\d,?)+],\[(\[([+-]?\d,?){5}],?){5}\]\]$`)

var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Payload is the result of decoding a transported test. All fields are nil
// when the input was not a valid payload.
type Payload struct {
	Encoded *string                 `json:"encoded"`
	Decoded *string                 `json:"decoded"`
	Data    *psychology.DecodedData `json:"data"`
}

// Valid reports whether decoding succeeded.
func (p Payload) Valid() bool {
	return p.Data != nil
}

// Decode reads a base64 payload, optionally URI-escaped. It never fails:
// malformed base64, a decoded string of the wrong shape or invalid JSON
// all yield the empty Payload.
func Decode(encoded string) Payload {
	s := strings.TrimSpace(encoded)
	if s == "" {
		return Payload{}
	}
	if strings.Contains(s, "%") {
		unescaped, err := url.PathUnescape(s)
		if err != nil {
			return Payload{}
		}
		s = unescaped
	}
	// query strings turn '+' into ' '
	s = strings.ReplaceAll(s, " ", "+")

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Payload{}
	}

	decoded := string(raw)
	if !payloadShape.MatchString(decoded) {
		return Payload{}
	}

	var data psychology.DecodedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return Payload{}
	}
	return Payload{Encoded: &s, Decoded: &decoded, Data: &data}
}

// Encode serializes data as JSON and then base64.
func Encode(data psychology.DecodedData) (string, error) {
	if err := Validate(data); err != nil {
		return "", err
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(data); err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// EncodeForURL is Encode followed by URI component escaping.
func EncodeForURL(data psychology.DecodedData) (string, error) {
	encoded, err := Encode(data)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(encoded), nil
}

// Validate checks that data fits the transport shape: at least one personal
// info code and every number a single signed digit.
func Validate(data psychology.DecodedData) error {
	if len(data.PersonalInfo) == 0 {
		return invalidPayload("personalInfo", "personal info must hold at least one code")
	}
	for i, v := range data.PersonalInfo {
		if !singleDigit(v) {
			return invalidPayload(fmt.Sprintf("personalInfo[%d]", i),
				fmt.Sprintf("personal info code %d must be a single digit, got %d", i, v))
		}
	}
	for i, row := range data.Matrix {
		for j, v := range row {
			if !singleDigit(v) {
				return invalidPayload(fmt.Sprintf("matrix[%d][%d]", i, j),
					fmt.Sprintf("matrix cell [%d][%d] must be a single digit, got %d", i, j, v))
			}
		}
	}
	return nil
}

func singleDigit(v int) bool {
	return v >= -9 && v <= 9
}

func invalidPayload(field, msg string) error {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set(field, fmt.Errorf("%s", msg))

	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg).
		WithDetails(errbuilder.NewErrDetails(errorMap))
}
