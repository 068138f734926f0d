package transport

import (
	"errors"

	"github.com/Veraticus/finchat/internal/common"
	"github.com/tidwall/gjson"
)

// ErrorDetail extracts the backend-provided message from a failed request:
// a "detail" string, the first entry of a validation "detail" list, or a
// "message" field. It returns "" when none is present.
func ErrorDetail(err error) string {
	var reqErr *common.RequestError
	if !errors.As(err, &reqErr) || len(reqErr.Payload) == 0 {
		return ""
	}
	return PayloadDetail(reqErr.Payload)
}

// PayloadDetail is ErrorDetail for a raw response body.
func PayloadDetail(payload []byte) string {
	if !gjson.ValidBytes(payload) {
		return ""
	}

	detail := gjson.GetBytes(payload, "detail")
	switch {
	case detail.Type == gjson.String:
		return detail.String()
	case detail.IsArray():
		if msg := detail.Get("0.msg"); msg.Exists() {
			return msg.String()
		}
	}

	if msg := gjson.GetBytes(payload, "message"); msg.Type == gjson.String {
		return msg.String()
	}

	return ""
}
