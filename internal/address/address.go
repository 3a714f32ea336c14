// Package address parses dotted-decimal IPv4 host addresses.
package address

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/firefly-engineering/sshproxy-ctl/internal/errors"
)

// Address is an IPv4 host address held as four octets.
type Address [4]uint8

// Parse splits text on '.' and requires exactly four non-empty decimal
// tokens, each in 0..255. Anything else is an InvalidAddress error; no
// partial result is returned.
func Parse(text string) (Address, error) {
	var addr Address

	tokens := strings.Split(text, ".")
	if len(tokens) != 4 {
		return Address{}, errors.InvalidAddress(text)
	}

	for i, tok := range tokens {
		if tok == "" || !isDigits(tok) {
			return Address{}, errors.InvalidAddress(text)
		}
		v, err := strconv.ParseUint(tok, 10, 8)
		if err != nil {
			return Address{}, errors.InvalidAddress(text)
		}
		addr[i] = uint8(v)
	}

	return addr, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(text string) Address {
	addr, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return addr
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String renders the address in dotted-decimal form.
func (a Address) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", a[0], a[1], a[2], a[3])
}

// IsZero reports whether the address is 0.0.0.0.
func (a Address) IsZero() bool {
	return a == Address{}
}
