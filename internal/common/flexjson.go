package common

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// FlexInt decodes a number that some APIs send as a JSON string.
// Null, empty or non numeric values leave it unset
type FlexInt struct {
	Value int
	Valid bool
}

func (flex *FlexInt) UnmarshalJSON(data []byte) error {
	*flex = FlexInt{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(text))
	}
	number, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return nil
	}
	flex.Value = int(number)
	flex.Valid = true
	return nil
}

func (flex FlexInt) Ptr() *int {
	if !flex.Valid {
		return nil
	}
	value := flex.Value
	return &value
}

// FlexString decodes either a JSON string or a number into text
type FlexString string

func (flex *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*flex = ""
		return nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*flex = FlexString(text)
		return nil
	}
	*flex = FlexString(data)
	return nil
}
