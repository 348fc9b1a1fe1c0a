package app

import (
	"errors"
	"fmt"
	"strings"
)

// Command is a user request handled by the frame loop.
type Command int

const (
	// CommandNone means no command.
	CommandNone Command = iota
	// CommandQuit stops the frame loop.
	CommandQuit
	// CommandSave writes the current word to the word log.
	CommandSave
	// CommandClear empties the current word.
	CommandClear
)

// ErrUnknownCommand is returned by ParseCommand for unrecognized names.
var ErrUnknownCommand = errors.New("unknown command")

var commandNames = map[Command]string{
	CommandNone:  "none",
	CommandQuit:  "quit",
	CommandSave:  "save",
	CommandClear: "clear",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// ParseCommand parses "quit", "save" or "clear", ignoring case.
func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quit":
		return CommandQuit, nil
	case "save":
		return CommandSave, nil
	case "clear":
		return CommandClear, nil
	}
	return CommandNone, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// KeyCommand maps a key code to its command: q quits, s saves, c clears.
func KeyCommand(key int) Command {
	switch key {
	case 'q', 'Q':
		return CommandQuit
	case 's', 'S':
		return CommandSave
	case 'c', 'C':
		return CommandClear
	}
	return CommandNone
}
