package postgres

import (
	"bufio"
	"context"
	"fmt"
	"net"

	"github.com/sqlmodel-go/sqlmodel"
)

// conn is the raw, single-goroutine-at-a-time PostgreSQL connection. It is
// never exposed directly; sqlmodel.Connection is implemented on *Shared
// (shared.go), which guards every method with a mutex per spec §5.
type conn struct {
	cfg    Config
	c      net.Conn
	r      *bufio.Reader
	logger sqlmodel.Logger

	state sqlmodel.State

	txStatus byte // txIdleI / txInBlockT / txFailedE, from the last ReadyForQuery

	backendPID int32
	backendKey int32
	params     map[string]string

	nextStmtID int
}

// Dial opens a raw connection and runs the full connect flow: TCP dial,
// optional SSL upgrade, startup message, and the authentication loop
// (spec §4.2 "Connect flow"). On success the connection is in StateReady.
func Dial(ctx context.Context, cfg Config) (*conn, error) {
	cfg = cfg.withDefaults()

	cn := &conn{cfg: cfg, logger: sqlmodel.NopLogger, params: map[string]string{}}
	cn.state = sqlmodel.StateConnecting

	d := net.Dialer{Timeout: cfg.ConnectTimeout}
	nc, err := d.DialContext(ctx, "tcp", cfg.address())
	if err != nil {
		cn.state = sqlmodel.StateError
		return nil, sqlmodel.NewConnectionError(sqlmodel.ConnRefused, "dial failed", err)
	}
	cn.c = nc

	if cfg.sslRequested() {
		if err := cn.upgradeSSL(); err != nil {
			cn.c.Close()
			cn.state = sqlmodel.StateError
			return nil, err
		}
	}
	cn.r = bufio.NewReader(cn.c)

	cn.state = sqlmodel.StateAuthenticating
	if err := cn.startup(ctx); err != nil {
		cn.c.Close()
		cn.state = sqlmodel.StateError
		return nil, err
	}

	cn.state = sqlmodel.StateReady
	return cn, nil
}

// send prefixes the payload with the given tag (or no tag, for untagged
// startup-phase messages when tag == 0) and writes it to the wire.
func (cn *conn) send(tag byte, w *writeBuf) error {
	payload := w.finish()
	var out []byte
	if tag != 0 {
		out = make([]byte, 0, len(payload)+1)
		out = append(out, tag)
	}
	out = append(out, payload...)
	_, err := cn.c.Write(out)
	if err != nil {
		cn.state = sqlmodel.StateError
		return sqlmodel.NewConnectionError(sqlmodel.ConnDisconnected, "write failed", err)
	}
	return nil
}

// recv reads one backend message: a 1-byte tag, a 4-byte big-endian
// length (inclusive of itself), and the payload.
func (cn *conn) recv() (byte, readBuf, error) {
	tag, err := cn.r.ReadByte()
	if err != nil {
		cn.state = sqlmodel.StateError
		return 0, nil, sqlmodel.NewConnectionError(sqlmodel.ConnDisconnected, "read failed", err)
	}
	var lenBuf [4]byte
	if _, err := readFull(cn.r, lenBuf[:]); err != nil {
		cn.state = sqlmodel.StateError
		return 0, nil, sqlmodel.NewConnectionError(sqlmodel.ConnDisconnected, "read failed", err)
	}
	n := int(lenBuf[0])<<24 | int(lenBuf[1])<<16 | int(lenBuf[2])<<8 | int(lenBuf[3])
	if n < 4 {
		return 0, nil, sqlmodel.NewProtocolError("invalid message length", nil)
	}
	payload := make([]byte, n-4)
	if len(payload) > 0 {
		if _, err := readFull(cn.r, payload); err != nil {
			cn.state = sqlmodel.StateError
			return 0, nil, sqlmodel.NewConnectionError(sqlmodel.ConnDisconnected, "read failed", err)
		}
	}

	if tag == msgNoticeResponseN {
		// Notices are ignored at the driver level (spec §4.2); an
		// external collaborator may still observe them via the
		// logger for diagnostics.
		cn.logger.Debugf("postgres: notice received")
		return cn.recv()
	}
	if tag == msgErrorResponseE {
		return tag, readBuf(payload), cn.decodeError(readBuf(payload))
	}
	return tag, readBuf(payload), nil
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// startup sends the StartupMessage with protocol version 196608 and the
// key/value pairs named in spec §4.2 step 3, then drives the
// authentication loop and waits for ReadyForQuery.
func (cn *conn) startup(ctx context.Context) error {
	w := newWriteBuf()
	w.int32(ProtocolVersion)
	w.string("user")
	w.string(cn.cfg.User)
	if cn.cfg.Database != "" {
		w.string("database")
		w.string(cn.cfg.Database)
	}
	if cn.cfg.ApplicationName != "" {
		w.string("application_name")
		w.string(cn.cfg.ApplicationName)
	}
	w.string("client_encoding")
	w.string("UTF8")
	w.byte(0)
	if err := cn.send(0, w); err != nil {
		return err
	}

	if err := cn.authLoop(); err != nil {
		return err
	}
	return cn.waitReady()
}

// authLoop reads backend messages until AuthenticationOk, dispatching on
// the auth sub-code per spec §4.2 step 4.
func (cn *conn) authLoop() error {
	for {
		tag, r, err := cn.recv()
		if err != nil {
			return err
		}
		switch tag {
		case msgAuthenticationR:
			code := r.int32()
			switch code {
			case authOk:
				return nil
			case authCleartextPassword:
				if err := cn.sendPasswordMessage(cn.cfg.Password); err != nil {
					return err
				}
			case authMD5Password:
				salt := r.next(4)
				hashed := md5AuthResponse(cn.cfg.User, cn.cfg.Password, salt)
				if err := cn.sendPasswordMessage(hashed); err != nil {
					return err
				}
			case authSASL:
				mechanisms := collectCStrings(r)
				if !containsString(mechanisms, "SCRAM-SHA-256") {
					return sqlmodel.NewConnectionError(sqlmodel.ConnAuthentication, "no supported SASL mechanism offered", nil)
				}
				if err := cn.doScramAuth(cn.cfg.Password); err != nil {
					return err
				}
				return nil
			default:
				return sqlmodel.NewConnectionError(sqlmodel.ConnAuthentication, fmt.Sprintf("unsupported authentication method %d", code), nil)
			}
		default:
			return sqlmodel.NewProtocolError(fmt.Sprintf("unexpected message %q during authentication", tag), nil)
		}
	}
}

func collectCStrings(r readBuf) []string {
	var out []string
	for len(r) > 1 { // a lone trailing NUL terminates the list
		s, err := r.string()
		if err != nil || s == "" {
			break
		}
		out = append(out, s)
	}
	return out
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func (cn *conn) sendPasswordMessage(s string) error {
	w := newWriteBuf()
	w.string(s)
	return cn.send(msgPasswordp, w)
}

// waitReady consumes BackendKeyData and ParameterStatus* until
// ReadyForQuery, recording the transaction-status byte (spec §3.3, §8.1).
func (cn *conn) waitReady() error {
	for {
		tag, r, err := cn.recv()
		if err != nil {
			return err
		}
		switch tag {
		case msgBackendKeyDataK:
			cn.backendPID = r.int32()
			cn.backendKey = r.int32()
		case msgParameterStatusS:
			k, _ := r.string()
			v, _ := r.string()
			cn.params[k] = v
		case msgReadyForQueryZ:
			cn.txStatus = r.byte()
			return nil
		default:
			return sqlmodel.NewProtocolError(fmt.Sprintf("unexpected message %q waiting for ready", tag), nil)
		}
	}
}

func (cn *conn) close() error {
	w := newWriteBuf()
	_ = cn.send(msgTerminateX, w)
	cn.state = sqlmodel.StateClosed
	return cn.c.Close()
}
