package contacts

import (
	"fmt"
	"net/mail"
	"strings"
)

// ValidateEmail checks that s is a plain, syntactically valid email address.
// Display names and address lists are rejected, and the domain must be
// qualified — "user@host" without a dot is a typo in this data set.
func ValidateEmail(s string) error {
	if s == "" {
		return fmt.Errorf("email is empty")
	}

	addr, err := mail.ParseAddress(s)
	if err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	if addr.Address != s {
		return fmt.Errorf("email must be a bare address, got %q", s)
	}

	at := strings.LastIndex(s, "@")
	domain := s[at+1:]
	if !strings.Contains(domain, ".") {
		return fmt.Errorf("email domain %q is not fully qualified", domain)
	}

	return nil
}
