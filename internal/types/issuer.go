package types

// Issuer hands out fresh single-letter type-variable names (a, b, c, ...,
// z, a1, b1, ...) for rendering un-unified Variables in as_sexp, remembering
// the mapping from Id to name within one rendering call so the same
// Variable always gets the same letter.
type Issuer struct {
	names map[Id]string
	next  int
}

// NewIssuer returns an empty Issuer. Zero value is also usable.
func NewIssuer() *Issuer {
	return &Issuer{names: map[Id]string{}}
}

func (iss *Issuer) Name(id Id) string {
	if iss.names == nil {
		iss.names = map[Id]string{}
	}
	if name, ok := iss.names[id]; ok {
		return name
	}
	letter := rune('a' + iss.next%26)
	gen := iss.next / 26
	name := string(letter)
	if gen > 0 {
		name = string(letter) + itoa(gen)
	}
	iss.next++
	iss.names[id] = name
	return name
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
