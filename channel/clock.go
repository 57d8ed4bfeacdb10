package channel

import "time"

const auditTimeLayout = "2006-01-02 15:04:05"

func nowFormatted() string {
	return time.Now().Format(auditTimeLayout)
}
