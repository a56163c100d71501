package protocol

import "strings"

type Verb string

const (
	PING    Verb = "ping"
	ECHO    Verb = "echo"
	SET     Verb = "set"
	GET     Verb = "get"
	COMMAND Verb = "command"
)

// ParseVerb normalises a command name as sent by a client.
func ParseVerb(name string) Verb {
	return Verb(strings.ToLower(name))
}

// Command is a client instruction, fully parsed from a message.
type Command interface {
	Verb() Verb
}

type PingCommand struct{}

func (PingCommand) Verb() Verb {
	return PING
}

type EchoCommand struct {
	Message string
}

func (*EchoCommand) Verb() Verb {
	return ECHO
}

type SetCommand struct {
	Key   string
	Value string

	// NX and XX record the options sent with the command. They are not
	// enforced by the store.
	NX bool
	XX bool
}

func (*SetCommand) Verb() Verb {
	return SET
}

type GetCommand struct {
	Key string
}

func (*GetCommand) Verb() Verb {
	return GET
}

// CommandInfoCommand is the introspection request redis-cli sends on connect.
type CommandInfoCommand struct{}

func (CommandInfoCommand) Verb() Verb {
	return COMMAND
}

// ParseCommand reads the verb of a command from c, then the arguments that
// verb declares. Tokens left over once the command is complete are not
// consumed.
func ParseCommand(c *Cursor) (Command, error) {
	name, err := SplitPair(c)
	if err != nil {
		return nil, err
	}

	switch ParseVerb(name) {
	case PING:
		return PingCommand{}, nil
	case ECHO:
		return ParseEcho(c)
	case SET:
		return ParseSet(c)
	case GET:
		return ParseGet(c)
	case COMMAND:
		return CommandInfoCommand{}, nil
	default:
		return nil, InvalidRequest("Command " + name + " not found")
	}
}

func ParseEcho(c *Cursor) (*EchoCommand, error) {
	message, err := SplitPair(c)
	if err != nil {
		return nil, err
	}

	return &EchoCommand{Message: message}, nil
}

// ParseSet reads the key and value of a SET, then scans whatever tokens are
// left for the NX and XX options. Other tokens are ignored.
func ParseSet(c *Cursor) (*SetCommand, error) {
	key, err := SplitPair(c)
	if err != nil {
		return nil, err
	}

	value, err := SplitPair(c)
	if err != nil {
		return nil, err
	}

	cmd := &SetCommand{Key: key, Value: value}

	for c.Remaining() > 0 {
		token, _ := c.Next()

		switch {
		case strings.EqualFold(token, "nx"):
			cmd.NX = true
		case strings.EqualFold(token, "xx"):
			cmd.XX = true
		}
	}

	return cmd, nil
}

func ParseGet(c *Cursor) (*GetCommand, error) {
	key, err := SplitPair(c)
	if err != nil {
		return nil, err
	}

	return &GetCommand{Key: key}, nil
}

var _ Command = PingCommand{}
var _ Command = (*EchoCommand)(nil)
var _ Command = (*SetCommand)(nil)
var _ Command = (*GetCommand)(nil)
var _ Command = CommandInfoCommand{}
