package mcp

import (
	"bufio"
	"fmt"
	"io"

	sonic "github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

// Transport frames JSON-RPC messages as one JSON object per line.
// Reads and writes are not synchronized; the server loop is the only
// writer.
type Transport struct {
	reader *bufio.Reader
	writer io.Writer
}

func NewTransport(r io.Reader, w io.Writer) *Transport {
	return &Transport{
		// Screenshot payloads never travel inbound, but UI automation
		// clients do send large argument strings.
		reader: bufio.NewReaderSize(r, 1024*1024),
		writer: w,
	}
}

// ReadLine returns the next input line without its trailing newline.
// io.EOF signals an orderly shutdown.
func (t *Transport) ReadLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return line, nil
		}
		return "", err
	}
	return line[:len(line)-1], nil
}

func (t *Transport) write(msg Message) error {
	data, err := sonic.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	log.Debug().RawJSON("msg", data).Msg("send")

	if _, err := t.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

func (t *Transport) WriteResponse(id any, result any) error {
	return t.write(Message{JSONRPC: "2.0", ID: id, Result: result})
}

func (t *Transport) WriteError(id any, code int, message string, data any) error {
	return t.write(Message{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message, Data: data},
	})
}
