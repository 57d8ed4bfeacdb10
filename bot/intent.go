package bot

import (
	"strconv"
	"strings"
)

// StartIntent is the decoded /start payload. Deep links from the
// channel mirror carry a claim intent with the vacancy id; anything
// else, including malformed claim tokens, degrades to a plain start.
type StartIntent struct {
	Kind      StartKind
	VacancyID int64
}

// StartKind enumerates the supported /start payloads.
type StartKind int

const (
	// StartPlain opens the main menu.
	StartPlain StartKind = iota
	// StartClaim claims the vacancy referenced by the deep link.
	StartClaim
)

const claimLinkPrefix = "job_"

// ParseStartIntent decodes the argument that follows "/start".
// The payload is user controlled (Telegram passes deep-link parameters
// through verbatim), so unknown or malformed tokens are never errors.
func ParseStartIntent(payload string) StartIntent {
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, claimLinkPrefix) {
		return StartIntent{Kind: StartPlain}
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(payload, claimLinkPrefix), 10, 64)
	if err != nil || id <= 0 {
		return StartIntent{Kind: StartPlain}
	}
	return StartIntent{Kind: StartClaim, VacancyID: id}
}

// startPayload extracts the argument from a raw "/start ..." message.
func startPayload(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
