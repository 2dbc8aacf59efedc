// Package prompt holds the dish classification prompt shared by the model
// clients, and the parsing of their answers.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoAnswer is returned when a model reply names no catalog key.
var ErrNoAnswer = errors.New("model did not name a known dish")

const classify = `You map a grocery shopper's dish request onto a fixed menu.
Menu keys: %s
Shopper wrote: %q
Reply with exactly one menu key, lowercase, nothing else. If no key fits, reply NONE.`

// Classify builds the classification prompt.
func Classify(query string, keys []string) string {
	return fmt.Sprintf(classify, strings.Join(keys, ", "), query)
}

// PickKey extracts a key from a model reply. An exact answer wins; otherwise
// the reply must mention exactly one key.
func PickKey(reply string, keys []string) (string, error) {
	answer := strings.ToLower(strings.TrimSpace(reply))
	answer = strings.Trim(answer, "`\"'.!")
	answer = strings.TrimSpace(answer)

	for _, k := range keys {
		if answer == k {
			return k, nil
		}
	}
	if answer == "" || answer == "none" {
		return "", ErrNoAnswer
	}

	found := ""
	for _, k := range keys {
		if strings.Contains(answer, k) {
			if found != "" {
				return "", fmt.Errorf("%w: reply is ambiguous: %q", ErrNoAnswer, reply)
			}
			found = k
		}
	}
	if found == "" {
		return "", fmt.Errorf("%w: %q", ErrNoAnswer, reply)
	}
	return found, nil
}
