package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStartIntent(t *testing.T) {
	cases := []struct {
		payload string
		want    StartIntent
	}{
		{"", StartIntent{Kind: StartPlain}},
		{"job_7", StartIntent{Kind: StartClaim, VacancyID: 7}},
		{"job_042", StartIntent{Kind: StartClaim, VacancyID: 42}},
		{" job_7 ", StartIntent{Kind: StartClaim, VacancyID: 7}},
		{"job_", StartIntent{Kind: StartPlain}},
		{"job_abc", StartIntent{Kind: StartPlain}},
		{"job_-3", StartIntent{Kind: StartPlain}},
		{"job_0", StartIntent{Kind: StartPlain}},
		{"ref_123", StartIntent{Kind: StartPlain}},
		{"job_99999999999999999999", StartIntent{Kind: StartPlain}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseStartIntent(tc.payload), "payload %q", tc.payload)
	}
}

func TestStartPayload(t *testing.T) {
	assert.Equal(t, "", startPayload("/start"))
	assert.Equal(t, "job_5", startPayload("/start job_5"))
	assert.Equal(t, "job_5", startPayload("/start  job_5  extra"))
}
