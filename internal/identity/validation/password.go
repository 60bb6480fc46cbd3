package validation

import (
	"bufio"
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// UserAttributes are the account values a password is compared against.
type UserAttributes struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

// PasswordPolicy returns every rule the password breaks, or nil.
type PasswordPolicy interface {
	Check(password string, user UserAttributes) []string
}

// Rules applies each policy in order and collects all messages.
type Rules []PasswordPolicy

func (r Rules) Check(password string, user UserAttributes) []string {
	var msgs []string
	for _, p := range r {
		msgs = append(msgs, p.Check(password, user)...)
	}
	return msgs
}

// DefaultPasswordPolicy is minimum length 8, not numeric, not common and
// not too similar to the user's own attributes.
func DefaultPasswordPolicy() PasswordPolicy {
	return Rules{
		MinLength(8),
		NotNumeric{},
		NotCommon{},
		NotSimilar{MaxSimilarity: 0.7},
	}
}

// MinLength rejects passwords shorter than the given number of characters.
type MinLength int

func (n MinLength) Check(password string, _ UserAttributes) []string {
	if utf8.RuneCountInString(password) < int(n) {
		return []string{fmt.Sprintf(MsgPasswordTooShort, int(n))}
	}
	return nil
}

// NotNumeric rejects passwords made only of digits.
type NotNumeric struct{}

func (NotNumeric) Check(password string, _ UserAttributes) []string {
	if password == "" {
		return nil
	}
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return nil
		}
	}
	return []string{MsgPasswordNumeric}
}

//go:embed common_passwords.txt
var commonPasswordsFile string

var (
	commonOnce      sync.Once
	commonPasswords map[string]struct{}
)

func loadCommonPasswords() map[string]struct{} {
	commonOnce.Do(func() {
		commonPasswords = make(map[string]struct{})
		sc := bufio.NewScanner(strings.NewReader(commonPasswordsFile))
		for sc.Scan() {
			if line := strings.TrimSpace(sc.Text()); line != "" && !strings.HasPrefix(line, "#") {
				commonPasswords[strings.ToLower(line)] = struct{}{}
			}
		}
	})
	return commonPasswords
}

// NotCommon rejects passwords from the embedded common password list,
// compared case-insensitively.
type NotCommon struct{}

func (NotCommon) Check(password string, _ UserAttributes) []string {
	if _, ok := loadCommonPasswords()[strings.ToLower(strings.TrimSpace(password))]; ok {
		return []string{MsgPasswordCommon}
	}
	return nil
}

var nonWord = regexp.MustCompile(`\W+`)

// NotSimilar rejects passwords whose character overlap with the username,
// email or names reaches MaxSimilarity. Overlap is measured by quickRatio,
// which ignores character order, so an anagram of an attribute counts as
// similar. Each attribute is also split on non-word characters and the
// parts are compared on their own.
type NotSimilar struct {
	MaxSimilarity float64
}

func (s NotSimilar) Check(password string, user UserAttributes) []string {
	password = strings.ToLower(password)
	attrs := []struct{ name, value string }{
		{"username", user.Username},
		{"first name", user.FirstName},
		{"last name", user.LastName},
		{"email address", user.Email},
	}

	for _, attr := range attrs {
		if attr.value == "" {
			continue
		}
		value := strings.ToLower(attr.value)
		parts := append(nonWord.Split(value, -1), value)
		for _, part := range parts {
			if s.tooShortToCompare(password, part) {
				continue
			}
			if quickRatio(password, part) >= s.MaxSimilarity {
				return []string{fmt.Sprintf(MsgPasswordSimilarTo, attr.name)}
			}
		}
	}
	return nil
}

// tooShortToCompare skips attribute parts so short relative to a long
// password that a high ratio would be meaningless.
func (s NotSimilar) tooShortToCompare(password, part string) bool {
	pwLen := utf8.RuneCountInString(password)
	partLen := utf8.RuneCountInString(part)
	return pwLen >= 10*partLen && float64(partLen) < s.MaxSimilarity/2*float64(pwLen)
}

// quickRatio is twice the size of the character multiset intersection of
// a and b over their total length. It is the same measure as Python's
// SequenceMatcher.quick_ratio, which UserAttributeSimilarityValidator
// compares against, not the order-sensitive ratio.
func quickRatio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}

	avail := make(map[rune]int)
	for _, r := range b {
		avail[r]++
	}
	matches := 0
	for _, r := range a {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(total)
}
