package ws

import (
	"github.com/bytedance/sonic"

	"github.com/analystapp/backend/internal/providers/terminal"
)

// Inbound message types
const (
	MsgCreateTerminal  = "create-terminal"
	MsgDestroyTerminal = "destroy-terminal"
	MsgWriteTerminal   = "write-to-terminal"
	MsgResizeTerminal  = "resize-terminal"
	MsgReadDirectory   = "read-directory"
	MsgPing            = "ping"
)

// Outbound message types
const (
	MsgTerminalData   = string(terminal.EventData)
	MsgTerminalClosed = string(terminal.EventClosed)
	MsgPong           = "pong"
	MsgError          = "error"
)

// codec is shared by every connection
var codec = sonic.ConfigStd

// Request is any message sent by the client
type Request struct {
	Type       string `json:"type"`
	RequestID  string `json:"request_id,omitempty"`
	TerminalID string `json:"terminalId,omitempty"`
	Cwd        string `json:"cwd,omitempty"`
	Data       string `json:"data,omitempty"`
	Path       string `json:"path,omitempty"`
	Pattern    string `json:"pattern,omitempty"`
	Cols       int    `json:"cols,omitempty"`
	Rows       int    `json:"rows,omitempty"`
}

// Reply answers a Request
type Reply struct {
	Type             string `json:"type"`
	RequestID        string `json:"request_id,omitempty"`
	Success          bool   `json:"success"`
	TerminalID       string `json:"terminalId,omitempty"`
	WorkingDirectory string `json:"workingDirectory,omitempty"`
	Items            any    `json:"items,omitempty"`
	Error            string `json:"error,omitempty"`
	Code             string `json:"code,omitempty"`
}

// DataFrame carries shell output
type DataFrame struct {
	Type       string `json:"type"`
	TerminalID string `json:"terminalId"`
	Data       string `json:"data"`
}

// ClosedFrame reports a shell exit
type ClosedFrame struct {
	Type       string `json:"type"`
	TerminalID string `json:"terminalId"`
	ExitCode   int    `json:"exitCode"`
	Signal     int    `json:"signal"`
}

// Frame is a bare typed message (pong, error)
type Frame struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

func encodeEvent(ev terminal.Event) ([]byte, error) {
	switch ev.Type {
	case terminal.EventData:
		return codec.Marshal(DataFrame{
			Type:       MsgTerminalData,
			TerminalID: ev.TerminalID,
			Data:       string(ev.Data),
		})
	default:
		return codec.Marshal(ClosedFrame{
			Type:       MsgTerminalClosed,
			TerminalID: ev.TerminalID,
			ExitCode:   ev.ExitCode,
			Signal:     ev.Signal,
		})
	}
}

func decodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := codec.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
