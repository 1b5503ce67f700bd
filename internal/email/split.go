// Package email splits a model reply into the discrete coaching emails it
// contains.
package email

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoSections means the reply contained no recognizable email headers.
var ErrNoSections = errors.New("no email sections found in reply")

// Delimiter separates emails in the rendered output file.
const Delimiter = "\n\n----------------------------------------\n\n"

// Email is one message body from the series, header line included.
type Email struct {
	Index int
	Body  string
}

// Series is the ordered email sequence parsed from a reply.
type Series []Email

// headerRx matches "Email N" section markers: bare, markdown-headed, or
// bold, at line start.
var headerRx = regexp.MustCompile(`(?mi)^\s*(?:#{1,6}\s*)?\**\s*Email\s+(\d+)\b`)

// Split scans the reply for sequential "Email N" markers and returns one
// entry per section, in reply order. Text before the first marker is
// dropped.
func Split(reply string) (Series, error) {
	locs := headerRx.FindAllStringSubmatchIndex(reply, -1)
	if len(locs) == 0 {
		return nil, ErrNoSections
	}

	var series Series
	for i, loc := range locs {
		end := len(reply)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		n, err := strconv.Atoi(reply[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		series = append(series, Email{
			Index: n,
			Body:  strings.TrimSpace(reply[loc[0]:end]),
		})
	}
	if len(series) == 0 {
		return nil, ErrNoSections
	}
	return series, nil
}

// Render joins the series with the output delimiter.
func (s Series) Render() string {
	parts := make([]string, 0, len(s))
	for _, e := range s {
		parts = append(parts, e.Body)
	}
	return strings.Join(parts, Delimiter) + "\n"
}
