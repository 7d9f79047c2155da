package message

import (
	"fmt"
	"strings"
)

// Command identifies a run-control request or reply. Values are wire ids and
// must not be renumbered.
type Command int32

const (
	CmdUnknown Command = 0

	// transitions
	CmdBoot    Command = 101
	CmdLoad    Command = 102
	CmdStart   Command = 103
	CmdStop    Command = 104
	CmdResume  Command = 105
	CmdPause   Command = 106
	CmdAbort   Command = 107
	CmdRecover Command = 108

	// queries and replies
	CmdStateCheck Command = 201
	CmdState      Command = 202
	CmdOK         Command = 203
	CmdError      Command = 204

	CmdLog Command = 301
)

var commandNames = map[Command]string{
	CmdUnknown:    "UNKNOWN",
	CmdBoot:       "BOOT",
	CmdLoad:       "LOAD",
	CmdStart:      "START",
	CmdStop:       "STOP",
	CmdResume:     "RESUME",
	CmdPause:      "PAUSE",
	CmdAbort:      "ABORT",
	CmdRecover:    "RECOVER",
	CmdStateCheck: "STATECHECK",
	CmdState:      "STATE",
	CmdOK:         "OK",
	CmdError:      "ERROR",
	CmdLog:        "LOG",
}

// Valid reports whether c is a known command other than CmdUnknown.
func (c Command) Valid() bool {
	_, ok := commandNames[c]
	return ok && c != CmdUnknown
}

// IsTransition reports whether c asks the receiver to change run state.
func (c Command) IsTransition() bool {
	return c >= CmdBoot && c <= CmdRecover
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(%d)", int32(c))
}

// ParseCommand resolves a case-insensitive command name.
func ParseCommand(name string) (Command, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for c, n := range commandNames {
		if n == name && c != CmdUnknown {
			return c, nil
		}
	}
	return CmdUnknown, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}
