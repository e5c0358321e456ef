package social

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/robalobadob/connect2pros/internal/apperr"
)

// checks accumulates field errors in the order they are found.
type checks []apperr.FieldError

func (c *checks) require(ok bool, param, msg string) {
	if !ok {
		*c = append(*c, apperr.FieldError{Msg: msg, Param: param, Location: "body"})
	}
}

func (c checks) err() error {
	if len(c) == 0 {
		return nil
	}
	return apperr.Validation(c...)
}

func present(s string) bool { return strings.TrimSpace(s) != "" }

func presentPtr(s *string) bool { return s != nil && present(*s) }

// validEmail accepts a bare address like a@x.com.
func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// gravatarURL mirrors the avatar every account gets at registration:
// 200px, pg-rated, "mystery man" fallback.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(normalizeEmail(email)))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// SkillList decodes either a comma-separated string ("go, sql") or a JSON
// array of strings. Entries are trimmed and blanks dropped.
type SkillList []string

func (s *SkillList) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err == nil {
		*s = splitSkills(strings.Split(raw, ","))
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return errors.New("skills must be a string or an array of strings")
	}
	*s = splitSkills(list)
	return nil
}

func splitSkills(in []string) SkillList {
	out := SkillList{}
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
