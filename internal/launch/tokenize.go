// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package launch

import "strings"

const (
	doubleQuote = '"'
	singleQuote = '\''
	backslash   = '\\'
	separator   = ' '
)

// Tokenize splits a manual startup command into arguments.
//
// Arguments are separated by spaces. Single or double quotes group a run of text,
// including spaces, into one argument; inside a run only the opening quote character
// closes it. A quote directly after a backslash is kept as a literal character and
// the backslash is kept as well. An unterminated quote extends to the end of the line.
func Tokenize(line string) Invocation {
	var (
		args    Invocation
		current strings.Builder
		quoted  bool
		quote   byte
		prev    byte
	)

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch {
		case (c == doubleQuote || c == singleQuote) && (i == 0 || prev != backslash):
			switch {
			case !quoted:
				quoted = true
				quote = c
			case c == quote:
				quoted = false
			default:
				current.WriteByte(c)
			}
		case c == separator && !quoted:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}

		prev = c
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args
}
