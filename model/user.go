package model

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Citizenship is one of the fixed labels offered during registration.
type Citizenship string

const (
	CitizenshipCapital   Citizenship = "Capital"
	CitizenshipAntegrian Citizenship = "Antegrian"
)

// Citizenships lists the labels in the order they are offered to the user.
var Citizenships = []Citizenship{CitizenshipCapital, CitizenshipAntegrian}

// ParseCitizenship maps free text to a known citizenship label.
func ParseCitizenship(s string) (Citizenship, bool) {
	for _, c := range Citizenships {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

var nicknameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidNickname reports whether the nickname consists of latin letters,
// digits and underscores only.
func ValidNickname(nickname string) bool {
	return nicknameRe.MatchString(nickname)
}

// User is a registered worker. The id comes from Telegram and users are
// never deleted.
type User struct {
	ID            int64           `db:"id"`
	Nickname      string          `db:"nickname"`
	Citizenship   Citizenship     `db:"citizenship"`
	BankAccount   string          `db:"bank_account"`
	CompletedJobs int             `db:"completed_jobs"`
	TotalEarned   decimal.Decimal `db:"total_earned"`
	RegisteredAt  time.Time       `db:"registered_at"`
}
