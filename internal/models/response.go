package models

import (
	"fmt"
	"time"
)

// AppendMarker is the separator written between the original answer and an
// appended edit. The %s is the append instant in RFC 3339 UTC.
const AppendMarker = "[appended %s]: "

// Response is a recipient's answer to one survey. Edits append behind a
// timestamped marker; the original text is never rewritten.
type Response struct {
	SurveyID  int64
	UserID    int64
	Answer    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppendAnswer joins an existing answer with an appended edit.
func AppendAnswer(existing, appended string, at time.Time) string {
	marker := fmt.Sprintf(AppendMarker, at.UTC().Format(time.RFC3339))
	return existing + "\n\n" + marker + appended
}
