package protocol

import "strings"

// Split splits a raw message into its tokens. A message that ends with the
// delimiter yields a trailing empty token.
func Split(raw string) []string {
	return strings.Split(raw, Delimiter)
}

// Cursor is a forward-only view over the tokens of one message.
type Cursor struct {
	tokens []string
	pos    int
}

func NewCursor(tokens []string) *Cursor {
	return &Cursor{tokens: tokens}
}

// Next consumes and returns the next token. It fails with an
// ErrInsufficientInput RequestError once every token has been consumed.
func (c *Cursor) Next() (string, error) {
	if c.pos >= len(c.tokens) {
		return "", insufficientInput()
	}

	token := c.tokens[c.pos]
	c.pos++

	return token, nil
}

// Remaining returns the number of tokens not yet consumed.
func (c *Cursor) Remaining() int {
	return len(c.tokens) - c.pos
}

// SplitPair consumes one bulk string: a `$<len>` header token followed by
// the literal token. The literal's byte length must match the header.
func SplitPair(c *Cursor) (string, error) {
	if c.Remaining() < 2 {
		return "", insufficientInput()
	}

	header, _ := c.Next()
	literal, _ := c.Next()

	if DecodeLength(header) != len(literal) {
		return "", InvalidRequest(MsgInvalidBulkLength)
	}

	return literal, nil
}
