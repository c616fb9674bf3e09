package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBagID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{
			name: "mixed delimiters",
			raw:  "k1=v1, Label: Value",
			want: map[string]string{"k1": "v1", "Label": "Value"},
		},
		{
			name: "repeated equals key last wins",
			raw:  "k1=v1, k1=v2",
			want: map[string]string{"k1": "v2"},
		},
		{
			name: "colon pass overwrites equals pass",
			raw:  "Bag=FROMEQ, Bag: FROMCOLON",
			want: map[string]string{"Bag": "FROMCOLON"},
		},
		{
			name: "typical scanner payload",
			raw:  "Bag=KB0042, Seal=S-9981, Lot: L-17, Weight: 52.4",
			want: map[string]string{"Bag": "KB0042", "Seal": "S-9981", "Lot": "L-17", "Weight": "52.4"},
		},
		{
			name: "plain segments contribute nothing",
			raw:  "KB0042, loose text, Bag=KB0042",
			want: map[string]string{"Bag": "KB0042"},
		},
		{
			name: "no delimiters at all",
			raw:  "KB0042",
			want: map[string]string{},
		},
		{
			name: "equals splits on first occurrence only",
			raw:  "note=a=b",
			want: map[string]string{"note": "a=b"},
		},
		{
			name: "malformed segment keeps empty key",
			raw:  "=, Bag=KB0042",
			want: map[string]string{"": "", "Bag": "KB0042"},
		},
		{
			name: "empty string",
			raw:  "",
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseBagID(tt.raw))
		})
	}
}
