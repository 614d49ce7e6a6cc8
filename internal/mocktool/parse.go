package mocktool

import (
	"fmt"
	"strings"
)

const (
	beginMarker = "BEGIN MOCK"
	endMarker   = "END MOCK"
	separator   = "---"
)

// Invocation is one decoded execution of a mock tool. Records are read-only
// once constructed; assertions index into the slice returned by Parse in
// invocation order.
type Invocation struct {
	// Name is the path the tool was invoked as.
	Name string
	// Env maps environment variable names to their values at invocation time.
	Env map[string]string
	// Args holds the positional arguments, in order.
	Args []string
	// Output is the user script's stdout, trimmed of trailing whitespace.
	Output string
}

// parseState tracks the section of the transcript the scanner is in.
type parseState int

const (
	awaitingStart parseState = iota
	readingEnv
	readingArgs
	readingOutput
)

// Parse decodes the combined stdout of one or more mock tool runs into
// ordered invocation records. Each mock tool run is a blocking child
// process that finishes writing before its parent proceeds, so stream order
// is invocation order.
//
// A malformed transcript (an environment line without '=') means a broken
// mock or a protocol mismatch and is returned as an error; there is no
// recovery policy.
func Parse(output string) ([]Invocation, error) {
	var (
		invocations []Invocation
		current     Invocation
		userOut     strings.Builder
		state       = awaitingStart
	)

	for i, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch state {
		case awaitingStart:
			if strings.HasPrefix(line, beginMarker+" ") {
				current = Invocation{
					Name: strings.TrimPrefix(line, beginMarker+" "),
					Env:  make(map[string]string),
				}
				state = readingEnv
			}

		case readingEnv:
			if line == separator {
				state = readingArgs
				continue
			}
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				return nil, fmt.Errorf("transcript line %d: environment entry %q has no '='", i+1, line)
			}
			current.Env[key] = value

		case readingArgs:
			if line == separator {
				state = readingOutput
				continue
			}
			current.Args = append(current.Args, line)

		case readingOutput:
			if strings.HasPrefix(line, endMarker) {
				current.Output = strings.TrimRight(userOut.String(), " \t\r\n")
				invocations = append(invocations, current)
				userOut.Reset()
				state = awaitingStart
				continue
			}
			userOut.WriteString(line)
			userOut.WriteString("\n")
		}
	}

	if state != awaitingStart {
		return nil, fmt.Errorf("transcript ended inside an unterminated %s record", beginMarker)
	}

	return invocations, nil
}
