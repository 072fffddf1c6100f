package records

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Criteria grammar, as consumed by Fetch and DeleteWhere:
//
//	<Field> == <value>
//
// Field is a record field name in CamelCase (DayID, QuoteID, ItemType, ...)
// and is mapped to its snake_case column. Value is either a double-quoted
// string with backslash escapes, or a bare token which is taken as a number
// when it parses as one and as a raw string otherwise. Exactly one equality
// test per criteria; the empty string matches every record.

var fieldRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

type condition struct {
	column string
	value  any
}

func parseCriteria(s string) (*condition, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	idx := strings.Index(s, "==")
	if idx < 0 {
		return nil, fmt.Errorf("criteria %q: missing == operator", s)
	}
	field := strings.TrimSpace(s[:idx])
	raw := strings.TrimSpace(s[idx+2:])
	if !fieldRe.MatchString(field) {
		return nil, fmt.Errorf("criteria %q: invalid field name", s)
	}
	if raw == "" {
		return nil, fmt.Errorf("criteria %q: missing value", s)
	}
	col := columnName(field)
	if strings.HasPrefix(raw, `"`) {
		unq, err := strconv.Unquote(raw)
		if err != nil {
			return nil, fmt.Errorf("criteria %q: bad quoted value: %w", s, err)
		}
		return &condition{column: col, value: unq}, nil
	}
	if strings.Contains(raw, " ") {
		return nil, fmt.Errorf("criteria %q: unquoted value contains spaces", s)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return &condition{column: col, value: n}, nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return &condition{column: col, value: f}, nil
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return &condition{column: col, value: b}, nil
	}
	return &condition{column: col, value: raw}, nil
}

// columnName converts a CamelCase record field to its snake_case column,
// keeping initialism runs together the way gorm's naming strategy does
// (DayID -> day_id, QuoteID -> quote_id).
func columnName(field string) string {
	var b strings.Builder
	runes := []rune(field)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (!unicode.IsUpper(runes[i-1]) || (i+1 < len(runes) && !unicode.IsUpper(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
