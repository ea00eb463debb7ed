package bridge

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/codefionn/capbridge/internal/codec"
	"github.com/codefionn/capbridge/internal/consts"
	"github.com/codefionn/capbridge/internal/logger"
	"github.com/codefionn/capbridge/internal/protocol"
	"github.com/codefionn/capbridge/internal/registry"
)

// handleLog writes the decoded message to the log stream and reports
// success. The message never touches the control output.
func (s *Server) handleLog(cmd protocol.Command) {
	data, err := codec.Decode(cmd.Args[0])
	if err != nil {
		s.respond(cmd, protocol.PayloadFalse)
		return
	}

	s.msgLog.Message(string(data))
	s.respond(cmd, protocol.PayloadTrue)
}

// handleFileRead returns the full contents of the named file, or the empty
// payload when the path cannot be decoded, is outside the sandbox, or the
// read fails. The caller cannot distinguish these causes.
func (s *Server) handleFileRead(cmd protocol.Command) {
	pathBytes, err := codec.Decode(cmd.Args[0])
	if err != nil {
		s.respond(cmd, "")
		return
	}
	path := string(pathBytes)

	if !s.sandbox.IsAllowed(path) {
		logger.Warn("FileRead blocked by sandbox: %s", path)
		s.respond(cmd, "")
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("FileRead failed for %s: %v", path, err)
		s.respond(cmd, "")
		return
	}

	s.respond(cmd, codec.Encode(data))
}

// handleTime reports seconds since the Unix epoch, truncated to an
// integer. There is no failure path.
func (s *Server) handleTime(cmd protocol.Command) {
	s.respond(cmd, strconv.FormatInt(time.Now().Unix(), 10))
}

// handleServerSocketBind binds a TCP listener on the wildcard address and
// then accepts connections for the lifetime of the process. Each accepted
// connection is registered and announced as one response line carrying its
// fresh resource id, all under the original correlation id: one request,
// unboundedly many responses. The nominal backlog is consts.ListenBacklog;
// the kernel decides the effective value.
func (s *Server) handleServerSocketBind(cmd protocol.Command) {
	port, ok := parsePort(cmd.Args[0])
	if !ok {
		s.respond(cmd, "")
		return
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		logger.Debug("Bind to port %d failed: %v", port, err)
		s.respond(cmd, "")
		return
	}

	logger.Info("Listening on port %d (correlation id %s)", port, cmd.CorrelationID)
	s.acceptLoop(ln, cmd)
}

// acceptLoop announces every accepted connection as a response line under
// the bind command's correlation id. There is no unbind operation; only
// process exit or a listener error ends the loop. A failed accept
// terminates the response stream with the generic failure payload.
func (s *Server) acceptLoop(ln net.Listener, cmd protocol.Command) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			logger.Debug("Accept on %s failed: %v", ln.Addr(), err)
			s.respond(cmd, "")
			return
		}

		id := s.reg.Add(conn)
		logger.Debug("Accepted connection %s from %s", id, conn.RemoteAddr())

		if s.respond(cmd, id.String()) != nil {
			// Output stream is dead; stop accepting.
			ln.Close()
			return
		}
	}
}

// parsePort validates a decimal port token in two stages: parse as an
// arbitrary-precision integer, then narrow to the native int range. Both
// failures collapse into the same failure payload, so the caller cannot
// tell "not a number" from "too large". Out-of-range port numbers that
// still fit an int are left for the bind call to reject.
func parsePort(token string) (int, bool) {
	n, ok := new(big.Int).SetString(token, 10)
	if !ok {
		return 0, false
	}
	if !n.IsInt64() {
		return 0, false
	}
	v := n.Int64()
	if v != int64(int(v)) {
		return 0, false
	}
	return int(v), true
}

// handleClientSocketRead drains the connection into response events, up to
// consts.SocketReadBufferSize bytes per event. A read of zero bytes, a
// read that fills the whole buffer, or any read error ends the stream with
// the generic failure payload; a partial read delivered alongside an error
// still becomes a data event first. The zero/full-buffer cases deliberately
// conflate "peer closed" with "buffer exactly filled"; callers depend on
// this. A failed read does not remove the registry entry.
func (s *Server) handleClientSocketRead(cmd protocol.Command) {
	id, err := registry.ParseID(cmd.Args[0])
	if err != nil {
		s.respond(cmd, "")
		return
	}

	buf := make([]byte, consts.SocketReadBufferSize)
	for {
		// Re-resolved every iteration so a concurrent close surfaces as
		// "not found" on the next round.
		conn, ok := s.reg.Find(id)
		if !ok {
			s.respond(cmd, "")
			return
		}

		n, err := conn.Read(buf)
		if n > 0 && n < len(buf) {
			// A reader may return final bytes together with an error;
			// those bytes are owed to the caller before the stream ends.
			if s.respond(cmd, codec.Encode(buf[:n])) != nil {
				return
			}
			if err == nil {
				continue
			}
		}

		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
			logger.Debug("Read on %s failed: %v", id, err)
		}
		s.respond(cmd, "")
		return
	}
}

// handleClientSocketWrite sends the decoded payload in full and reports
// true only once every byte has been accepted by the OS.
func (s *Server) handleClientSocketWrite(cmd protocol.Command) {
	id, err := registry.ParseID(cmd.Args[0])
	if err != nil {
		s.respond(cmd, protocol.PayloadFalse)
		return
	}

	data, err := codec.Decode(cmd.Args[1])
	if err != nil {
		s.respond(cmd, protocol.PayloadFalse)
		return
	}

	conn, ok := s.reg.Find(id)
	if !ok {
		s.respond(cmd, protocol.PayloadFalse)
		return
	}

	if err := writeFull(conn, data); err != nil {
		logger.Debug("Write on %s failed: %v", id, err)
		s.respond(cmd, protocol.PayloadFalse)
		return
	}

	s.respond(cmd, protocol.PayloadTrue)
}

var errNegativeWrite = errors.New("writer reported negative byte count")

// writeFull writes p in its entirety, retrying from the first unsent byte
// after every short write. A short write is not an error; a negative count
// is a local invariant violation reported to the caller.
func writeFull(w io.Writer, p []byte) error {
	for off := 0; off < len(p); {
		n, err := w.Write(p[off:])
		if err != nil {
			return err
		}
		if n < 0 {
			return errNegativeWrite
		}
		off += n
	}
	return nil
}

// handleClientSocketClose removes the registry entry and then releases the
// handle. Success is decided by the removal alone: a close error after the
// entry is gone is logged but not observable to the caller.
func (s *Server) handleClientSocketClose(cmd protocol.Command) {
	id, err := registry.ParseID(cmd.Args[0])
	if err != nil {
		s.respond(cmd, protocol.PayloadFalse)
		return
	}

	conn, ok := s.reg.Remove(id)
	if !ok {
		s.respond(cmd, protocol.PayloadFalse)
		return
	}

	if err := conn.Close(); err != nil {
		logger.Warn("Close of %s reported %v after removal", id, err)
	}

	s.respond(cmd, protocol.PayloadTrue)
}
