// internal/notify/link.go
package notify

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var ErrNoDestination = errors.New("destination has no digits")

const linkBase = "https://wa.me/"

var nonDigits = regexp.MustCompile(`\D`)

// Message is a rendered text ready to be handed to the messaging app.
type Message struct {
	Destination string `json:"destination"`
	Text        string `json:"text"`
	Link        string `json:"link"`
}

// Link builds the click-to-chat URL for destination with text prefilled.
// Spaces are escaped as %20, as a browser's encodeURIComponent would.
func Link(destination, text string) (string, error) {
	digits := nonDigits.ReplaceAllString(destination, "")
	if digits == "" {
		return "", ErrNoDestination
	}
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return linkBase + digits + "?text=" + escaped, nil
}

// Compose renders template with values and wraps it for destination.
func Compose(destination, template string, values Values) (Message, error) {
	text, err := Render(template, values)
	if err != nil {
		return Message{}, err
	}
	return Plain(destination, text)
}

// Plain wraps an already rendered text for destination.
func Plain(destination, text string) (Message, error) {
	link, err := Link(destination, text)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Destination: nonDigits.ReplaceAllString(destination, ""),
		Text:        text,
		Link:        link,
	}, nil
}
