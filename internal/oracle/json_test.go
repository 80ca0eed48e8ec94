package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"sentiment": 0.9}`, `{"sentiment": 0.9}`},
		{"wrapper text", `Sure! Here is the analysis: {"sentiment": 0.9} Hope that helps.`, `{"sentiment": 0.9}`},
		{"json fence", "```json\n{\"sentiment\": 0.9}\n```", `{"sentiment": 0.9}`},
		{"plain fence", "```\n{\"sentiment\": 0.9}\n```", `{"sentiment": 0.9}`},
		{"nested braces", `note {"a": {"b": 1}} done`, `{"a": {"b": 1}}`},
		{"no object", "I could not produce JSON for that.", ""},
		{"empty input", "", ""},
		{"reversed braces", "} {", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractObject(tt.in))
		})
	}
}
