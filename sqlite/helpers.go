package sqlite

import (
	"strings"
	"time"

	"github.com/fwojciec/logiris"
)

// formatTime renders t the way article timestamps are stored: UTC, RFC3339,
// whole seconds.
func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// parseTime parses a stored article timestamp. A malformed value means the
// row was written by something else, so it is reported as EINTERNAL naming
// the column.
func parseTime(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, logiris.Errorf(logiris.EINTERNAL, "article %s: invalid timestamp %q", column, value)
	}
	return t, nil
}

// appendPage adds the filter's LIMIT and OFFSET to an article query.
// SQLite only accepts OFFSET after LIMIT, so an offset without a limit
// uses LIMIT -1.
func appendPage(query *strings.Builder, args *[]any, filter logiris.ArticleFilter) {
	switch {
	case filter.Limit > 0:
		query.WriteString(" LIMIT ?")
		*args = append(*args, filter.Limit)
	case filter.Offset > 0:
		query.WriteString(" LIMIT -1")
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, filter.Offset)
	}
}
