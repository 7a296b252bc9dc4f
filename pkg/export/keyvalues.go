package export

import (
	"fmt"
)

// The VMF map format is a nested keyvalues text format: bare class
// names introduce brace-delimited blocks, and each block holds quoted
// "key" "value" pairs and child blocks. Patching must preserve every
// byte it does not deliberately change, so the scanner records spans
// into the source instead of building a lossy tree.

// kvBlock is a top-level class block: the half-open byte span runs
// from the first character of the class name through the closing
// brace.
type kvBlock struct {
	name       string
	start, end int
}

// kvPair is a quoted key/value pair found at the top nesting level of
// a block. Spans are byte offsets into the same source the block was
// scanned from.
type kvPair struct {
	key, value       string
	valStart, valEnd int // span of the value, quotes excluded
}

// scanBlocks splits a keyvalues document into its top-level blocks.
// Text between blocks (comments, blank lines) belongs to no block and
// is preserved by span-based splicing.
func scanBlocks(data []byte) ([]kvBlock, error) {
	var blocks []kvBlock
	i := 0
	for i < len(data) {
		c := data[i]
		if isKVSpace(c) {
			i++
			continue
		}
		if c == '/' { // comment line
			for i < len(data) && data[i] != '\n' {
				i++
			}
			continue
		}
		start := i
		for i < len(data) && !isKVSpace(data[i]) && data[i] != '{' {
			i++
		}
		name := string(data[start:i])
		for i < len(data) && isKVSpace(data[i]) {
			i++
		}
		if i >= len(data) || data[i] != '{' {
			return nil, fmt.Errorf("keyvalues: class %q at offset %d has no block", name, start)
		}
		end, err := matchBrace(data, i)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, kvBlock{name: name, start: start, end: end})
		i = end
	}
	return blocks, nil
}

// matchBrace returns the offset just past the brace closing the one at
// open. Quoted strings may contain braces.
func matchBrace(data []byte, open int) (int, error) {
	depth := 0
	for i := open; i < len(data); i++ {
		switch data[i] {
		case '"':
			j, err := matchQuote(data, i)
			if err != nil {
				return 0, err
			}
			i = j - 1
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, fmt.Errorf("keyvalues: unterminated block at offset %d", open)
}

// matchQuote returns the offset just past the quote closing the one at
// open.
func matchQuote(data []byte, open int) (int, error) {
	for i := open + 1; i < len(data); i++ {
		if data[i] == '"' {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("keyvalues: unterminated string at offset %d", open)
}

// scanPairs collects the key/value pairs at the top nesting level of
// the block spanning [start, end), skipping child blocks. Offsets are
// into data.
func scanPairs(data []byte, start, end int) ([]kvPair, error) {
	var pairs []kvPair
	i := start
	// Skip the class name through its opening brace.
	for i < end && data[i] != '{' {
		i++
	}
	i++
	for i < end {
		c := data[i]
		switch {
		case isKVSpace(c):
			i++
		case c == '}':
			return pairs, nil
		case c == '"':
			keyEnd, err := matchQuote(data, i)
			if err != nil {
				return nil, err
			}
			key := string(data[i+1 : keyEnd-1])
			j := keyEnd
			for j < end && isKVSpace(data[j]) {
				j++
			}
			if j >= end || data[j] != '"' {
				return nil, fmt.Errorf("keyvalues: key %q at offset %d has no value", key, i)
			}
			valEnd, err := matchQuote(data, j)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, kvPair{
				key:      key,
				value:    string(data[j+1 : valEnd-1]),
				valStart: j + 1,
				valEnd:   valEnd - 1,
			})
			i = valEnd
		default:
			// Child block: skip it whole.
			j := i
			for j < end && data[j] != '{' {
				j++
			}
			blockEnd, err := matchBrace(data, j)
			if err != nil {
				return nil, err
			}
			i = blockEnd
		}
	}
	return pairs, nil
}

func isKVSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
