// Package naming parses sequential feature names such as "A301" or
// "B3-024" and decides which name fits between or beside two neighbours.
package naming

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/jobrunner/mapassist/internal/domain"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Parts is a name split into a prefix and its trailing number.
type Parts struct {
	Prefix  string
	Number  int
	Padding int // Digit count to preserve, 0 when the number has no leading zero
}

// Parse splits name at its maximal trailing digit run.
func Parse(name string) (Parts, error) {
	if !namePattern.MatchString(name) {
		return Parts{}, fmt.Errorf("%q: %w", name, domain.ErrCharsetMismatch)
	}

	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	digits := name[i:]
	if digits == "" {
		return Parts{}, fmt.Errorf("%q: %w", name, domain.ErrNoTrailingDigits)
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return Parts{}, fmt.Errorf("%q: %v: %w", name, err, domain.ErrPatternRejected)
	}

	p := Parts{Prefix: name[:i], Number: n}
	if len(digits) > 1 && digits[0] == '0' {
		p.Padding = len(digits)
	}
	return p, nil
}

// Format renders the parts back into a name.
func (p Parts) Format() string {
	return fmt.Sprintf("%s%0*d", p.Prefix, p.Padding, p.Number)
}

// String implements fmt.Stringer.
func (p Parts) String() string {
	return p.Format()
}
