package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		unique  string
		payload string
	}{
		{"unique only", "\fadm_back", "adm_back", ""},
		{"unique and payload", "\fadm_view|17", "adm_view", "17"},
		{"payload with separator", "\fadm_view|17|3", "adm_view", "17|3"},
		{"no prefix", "adm_back", "adm_back", ""},
		{"empty", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			unique, payload := ParseCallbackData(&tele.Callback{Data: tc.data})
			if unique != tc.unique || payload != tc.payload {
				t.Fatalf("ParseCallbackData(%q) = (%q, %q), want (%q, %q)",
					tc.data, unique, payload, tc.unique, tc.payload)
			}
		})
	}
}

func TestParseCallbackDataNil(t *testing.T) {
	unique, payload := ParseCallbackData(nil)
	if unique != "" || payload != "" {
		t.Fatalf("nil callback must parse empty, got (%q, %q)", unique, payload)
	}
}
