package compat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrMissingFields is returned when a required identity field is blank.
// Its text is shown to end users as-is.
var ErrMissingFields = errors.New("필수 정보를 모두 입력해주세요.")

// Request carries both people's identity data. Birth times are optional.
type Request struct {
	MyName           string `json:"myName"`
	MyBirthDate      string `json:"myBirthDate"`
	MyGender         string `json:"myGender"`
	MyBirthTime      string `json:"myBirthTime,omitempty"`
	PartnerName      string `json:"partnerName"`
	PartnerBirthDate string `json:"partnerBirthDate"`
	PartnerGender    string `json:"partnerGender"`
	PartnerBirthTime string `json:"partnerBirthTime,omitempty"`
}

// DecodeRequest builds a Request from a loosely typed JSON object. Numbers and
// booleans are accepted for string fields, unknown keys are ignored.
func DecodeRequest(raw map[string]any) (Request, error) {
	var req Request

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &req,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Request{}, fmt.Errorf("create request decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return Request{}, fmt.Errorf("decode compatibility request: %w", err)
	}

	return req.normalized(), nil
}

func (r Request) normalized() Request {
	return Request{
		MyName:           strings.TrimSpace(r.MyName),
		MyBirthDate:      strings.TrimSpace(r.MyBirthDate),
		MyGender:         strings.TrimSpace(r.MyGender),
		MyBirthTime:      strings.TrimSpace(r.MyBirthTime),
		PartnerName:      strings.TrimSpace(r.PartnerName),
		PartnerBirthDate: strings.TrimSpace(r.PartnerBirthDate),
		PartnerGender:    strings.TrimSpace(r.PartnerGender),
		PartnerBirthTime: strings.TrimSpace(r.PartnerBirthTime),
	}
}

// Validate reports ErrMissingFields when any of the six required fields is
// blank. Birth times are never checked.
func (r Request) Validate() error {
	required := []string{
		r.MyName, r.MyBirthDate, r.MyGender,
		r.PartnerName, r.PartnerBirthDate, r.PartnerGender,
	}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return ErrMissingFields
		}
	}
	return nil
}
