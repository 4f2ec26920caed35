package common

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexInt(t *testing.T) {
	var payload struct {
		Number  FlexInt `json:"number"`
		Text    FlexInt `json:"text"`
		Null    FlexInt `json:"null"`
		Garbage FlexInt `json:"garbage"`
		Missing FlexInt `json:"missing"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"number": 12, "text": "1234", "null": null, "garbage": "n/a"}`), &payload))

	assert.Equal(t, 12, *payload.Number.Ptr())
	assert.Equal(t, 1234, *payload.Text.Ptr())
	assert.Nil(t, payload.Null.Ptr())
	assert.Nil(t, payload.Garbage.Ptr())
	assert.Nil(t, payload.Missing.Ptr())
}

func TestFlexString(t *testing.T) {
	var payload struct {
		Number FlexString `json:"number"`
		Text   FlexString `json:"text"`
		Null   FlexString `json:"null"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"number": 3, "text": "III", "null": null}`), &payload))

	assert.Equal(t, FlexString("3"), payload.Number)
	assert.Equal(t, FlexString("III"), payload.Text)
	assert.Equal(t, FlexString(""), payload.Null)
}
