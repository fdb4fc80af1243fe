package ipc

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-bulletin-notifier/internal/domain"
)

func TestConn_ReadMessagesInOrder(t *testing.T) {
	client, server := net.Pipe()
	conn := NewConn(client)
	defer conn.Close()

	go func() {
		server.Write([]byte(`{"cmd":"new","data":{"parser":"atcf","file":{"url":"a"}}}` + "\n"))
		server.Write([]byte(`{"cmd":"shutdown"}` + "\n"))
		server.Close()
	}()

	first, err := conn.Read()
	require.NoError(t, err)
	assert.Equal(t, domain.CmdNew, first.Cmd)
	require.NotNil(t, first.Data)
	assert.Equal(t, "atcf", first.Data.Parser)

	second, err := conn.Read()
	require.NoError(t, err)
	assert.Equal(t, domain.CmdShutdown, second.Cmd)

	_, err = conn.Read()
	assert.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrMalformedMessage), "eof is a transport error, not a decode error")
}

func TestConn_MalformedLineIsDecodeError(t *testing.T) {
	client, server := net.Pipe()
	conn := NewConn(client)
	defer conn.Close()

	go func() {
		server.Write([]byte("not json at all\n"))
		server.Write([]byte(`{"cmd":"shutdown"}` + "\n"))
		server.Close()
	}()

	_, err := conn.Read()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedMessage))

	// The stream survives a bad line.
	msg, err := conn.Read()
	require.NoError(t, err)
	assert.Equal(t, domain.CmdShutdown, msg.Cmd)
}

func TestDialer_NetworkSelection(t *testing.T) {
	assert.Equal(t, "unix", networkFor("/var/run/watcher.sock"))
	assert.Equal(t, "tcp", networkFor("127.0.0.1:7777"))
}
