package client

import (
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/fleamarket/internal/common"
)

var errNotEnvelope = errors.New("response is not an envelope")

// Envelope is the uniform body of every backend response.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type wireEnvelope struct {
	Code    *int            `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decodeEnvelope parses body. A JSON object without "code" is not an
// envelope.
func decodeEnvelope(body []byte) (Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(body, &w); err != nil {
		return Envelope{}, err
	}
	if w.Code == nil {
		return Envelope{}, errNotEnvelope
	}
	return Envelope{Code: *w.Code, Message: w.Message, Data: w.Data}, nil
}

// result turns a decoded envelope into the data payload or a Failure.
func (e Envelope) result() (json.RawMessage, *Failure) {
	switch e.Code {
	case common.CodeOK:
		return e.Data, nil
	case common.CodeUnauthorized:
		return nil, &Failure{Kind: KindUnauthorized, Code: e.Code, Message: messageOr(e.Message, MessageRequestFailed)}
	default:
		return nil, &Failure{Kind: KindApplication, Code: e.Code, Message: messageOr(e.Message, MessageRequestFailed)}
	}
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
