package antivirus

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClamd answers zPING and zINSTREAM, flagging any stream containing "EICAR".
func fakeClamd(t *testing.T, reply func(data []byte) string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveClamd(conn, reply)
		}
	}()
	return ln.Addr().String()
}

func serveClamd(conn net.Conn, reply func([]byte) string) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	cmd, err := r.ReadString(0)
	if err != nil {
		return
	}
	switch cmd {
	case "zPING\x00":
		_, _ = conn.Write([]byte("PONG\x00"))
	case "zINSTREAM\x00":
		var data []byte
		var size [4]byte
		for {
			if _, err := io.ReadFull(r, size[:]); err != nil {
				return
			}
			n := binary.BigEndian.Uint32(size[:])
			if n == 0 {
				break
			}
			chunk := make([]byte, n)
			if _, err := io.ReadFull(r, chunk); err != nil {
				return
			}
			data = append(data, chunk...)
		}
		_, _ = conn.Write([]byte(reply(data) + "\x00"))
	}
}

func eicarReply(data []byte) string {
	if bytes.Contains(data, []byte("EICAR")) {
		return "stream: Eicar-Test-Signature FOUND"
	}
	return "stream: OK"
}

func TestClamAV_Ping(t *testing.T) {
	scanner := NewClamAV(fakeClamd(t, eicarReply), time.Second)
	assert.NoError(t, scanner.Ping(context.Background()))

	down := NewClamAV("127.0.0.1:1", 200*time.Millisecond)
	assert.Error(t, down.Ping(context.Background()))
}

func TestClamAV_Scan(t *testing.T) {
	scanner := NewClamAV(fakeClamd(t, eicarReply), time.Second)
	ctx := context.Background()

	v := scanner.Scan(ctx, []byte("Senior Go engineer, 8 years"))
	assert.False(t, v.Infected)
	assert.NoError(t, v.Err)
	assert.Equal(t, "clamav", v.Scanner)

	v = scanner.Scan(ctx, []byte("X5O!P%@AP EICAR-STANDARD-ANTIVIRUS-TEST-FILE"))
	assert.True(t, v.Infected)
	assert.Equal(t, "Eicar-Test-Signature", v.Threat)

	large := bytes.Repeat([]byte("a"), maxChunk+10)
	v = scanner.Scan(ctx, large)
	assert.False(t, v.Infected)
}

func TestClamAV_FailsClosed(t *testing.T) {
	v := NewClamAV("127.0.0.1:1", 200*time.Millisecond).Scan(context.Background(), []byte("cv"))
	assert.True(t, v.Infected)
	assert.Error(t, v.Err)

	scanner := NewClamAV(fakeClamd(t, func([]byte) string { return "INSTREAM size limit exceeded. ERROR" }), time.Second)
	v = scanner.Scan(context.Background(), []byte("cv"))
	assert.True(t, v.Infected)
	assert.Error(t, v.Err)
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		reply    string
		infected bool
		threat   string
		hasErr   bool
	}{
		{"stream: OK", false, "", false},
		{"stream: Win.Test.EICAR_HDB-1 FOUND", true, "Win.Test.EICAR_HDB-1", false},
		{"stream: lstat() failed ERROR", true, "", true},
		{"garbage", true, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			v := parseReply(Verdict{}, tt.reply)
			assert.Equal(t, tt.infected, v.Infected)
			assert.Equal(t, tt.threat, v.Threat)
			assert.Equal(t, tt.hasErr, v.Err != nil)
		})
	}
}
