package descriptor

import (
	"strings"
	"unicode"

	"gitlab.com/tozd/go/errors"
)

const invalidNameCharacters = "@!<>/?[]=\"'*"

func validateTagName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("name is whitespace")
	}
	for _, r := range name {
		if unicode.IsSpace(r) {
			return errors.New("name contains whitespace")
		}
		if strings.ContainsRune(invalidNameCharacters, r) {
			return errors.Errorf("name contains invalid character %q", r)
		}
	}
	return nil
}

func validateAttributeName(name string, isDirective bool) error {
	if isDirective {
		if !strings.HasPrefix(name, "@") {
			return errors.New("directive attribute names start with '@'")
		}
		name = name[1:]
		if name == "" {
			return errors.New("directive attribute name is empty")
		}
	}
	return validateTagName(name)
}

// SplitTypeName splits a dotted full type name into namespace and identifier. Generic
// arguments in angle brackets are kept with the identifier.
func SplitTypeName(fullName string) (namespace, identifier string) {
	head := fullName
	if i := strings.IndexByte(head, '<'); i >= 0 {
		head = head[:i]
	}
	i := strings.LastIndexByte(head, '.')
	if i < 0 {
		return "", fullName
	}
	return fullName[:i], fullName[i+1:]
}

func shortTypeName(fullName string) string {
	_, id := SplitTypeName(fullName)
	return id
}
