package mysql

import (
	"context"
	"net"

	"github.com/sqlmodel-go/sqlmodel"
)

// conn is the raw, single-goroutine-at-a-time MySQL connection. It is
// never exposed directly; sqlmodel.Connection is implemented on *Shared
// (shared.go), which guards every method with a mutex per spec §5.
type conn struct {
	cfg    Config
	c      net.Conn
	pr     *packetReader
	logger sqlmodel.Logger

	state sqlmodel.State

	capabilities uint32
	statusFlags  uint16

	nextStmtID int
}

// Dial opens a raw connection and runs the full connect flow: TCP dial,
// handshake v10, and the authentication (+ auth-switch) loop (spec §4.3).
// On success the connection is in StateReady.
func Dial(ctx context.Context, cfg Config) (*conn, error) {
	cfg = cfg.withDefaults()

	cn := &conn{cfg: cfg, logger: sqlmodel.NopLogger}
	cn.state = sqlmodel.StateConnecting

	d := net.Dialer{Timeout: cfg.ConnectTimeout}
	nc, err := d.DialContext(ctx, "tcp", cfg.address())
	if err != nil {
		cn.state = sqlmodel.StateError
		return nil, sqlmodel.NewConnectionError(sqlmodel.ConnRefused, "dial failed", err)
	}
	cn.c = nc
	cn.pr = newPacketReader(nc)

	cn.state = sqlmodel.StateAuthenticating
	if err := cn.handshake(); err != nil {
		cn.c.Close()
		cn.state = sqlmodel.StateError
		return nil, err
	}

	cn.state = sqlmodel.StateReady
	return cn, nil
}

// WithLogger installs a Logger for diagnostics (debug traces, auth-switch
// notices); the zero value is sqlmodel.NopLogger.
func (cn *conn) WithLogger(l sqlmodel.Logger) { cn.logger = l }

func (cn *conn) readPacket() ([]byte, error) {
	pkt, err := cn.pr.readPacket()
	if err != nil {
		cn.state = sqlmodel.StateError
		return nil, sqlmodel.NewConnectionError(sqlmodel.ConnDisconnected, "read failed", err)
	}
	return pkt, nil
}

func (cn *conn) writePacket(payload []byte) error {
	if err := writePacket(cn.c, cn.pr, payload); err != nil {
		cn.state = sqlmodel.StateError
		return sqlmodel.NewConnectionError(sqlmodel.ConnDisconnected, "write failed", err)
	}
	return nil
}

// handshake drives the initial handshake packet, builds and sends the
// HandshakeResponse41, and then runs the auth-switch loop until OK/Error.
func (cn *conn) handshake() error {
	pkt, err := cn.readPacket()
	if err != nil {
		return err
	}
	hs, err := parseServerHandshake(pkt)
	if err != nil {
		return err
	}

	caps := clientCapabilities(cn.cfg, hs.capabilities)
	cn.capabilities = caps

	plugin := hs.authPluginName
	if plugin == "" {
		plugin = authNativePassword
	}
	authResp := computeAuthResponse(plugin, cn.cfg.Password, hs.authPluginData)

	resp := buildHandshakeResponse41(caps, cn.cfg, plugin, authResp)
	// cn.pr.seq is already 1 here: readPacket advanced it past the
	// server's packet 0, and HandshakeResponse41 is always packet 1.
	if err := cn.writePacket(resp); err != nil {
		return err
	}

	return cn.authSwitchLoop(plugin)
}

// authSwitchLoop reads the server's reply to HandshakeResponse41 and
// follows the auth-switch / more-data dance (spec §4.3) until OK or Error.
func (cn *conn) authSwitchLoop(plugin string) error {
	for {
		pkt, err := cn.readPacket()
		if err != nil {
			return err
		}
		if len(pkt) == 0 {
			return sqlmodel.NewProtocolError("empty auth response packet", nil)
		}
		switch pkt[0] {
		case 0x00: // OK_Packet
			cn.consumeOKPacket(pkt)
			return nil
		case 0xff: // ERR_Packet
			return decodeErrPacket(pkt).toError()
		case 0xfe: // auth-switch-request (or EOF, only valid pre-4.1 — not reached here)
			newPlugin, scramble := parseAuthSwitchRequest(pkt)
			resp := computeAuthResponse(newPlugin, cn.cfg.Password, scramble)
			if err := cn.writePacket(resp); err != nil {
				return err
			}
			plugin = newPlugin
		case 0x01: // auth more data (caching_sha2_password fast/full-auth)
			if len(pkt) < 2 {
				return sqlmodel.NewProtocolError("truncated auth-more-data packet", nil)
			}
			switch pkt[1] {
			case cachingSHA2FastAuthSuccess:
				// next packet is OK; loop continues
			case cachingSHA2FullAuthNeeded:
				return sqlmodel.NewConnectionError(sqlmodel.ConnAuthentication,
					"caching_sha2_password full authentication requires RSA key exchange or TLS, which this driver does not implement", nil)
			default:
				return sqlmodel.NewProtocolError("unrecognized auth-more-data status", nil)
			}
		default:
			return sqlmodel.NewProtocolError("unexpected packet during authentication", nil)
		}
	}
}

func computeAuthResponse(plugin, password string, scramble []byte) []byte {
	switch plugin {
	case authCachingSHA2:
		return scrambleCachingSHA2(password, scramble)
	default:
		return scrambleNative(password, scramble)
	}
}

func parseAuthSwitchRequest(pkt []byte) (plugin string, scramble []byte) {
	rest := pkt[1:]
	plugin, rest = readNullTerminatedString(rest)
	scramble = append([]byte{}, rest...)
	// Some servers include a trailing NUL on the scramble.
	if n := len(scramble); n > 0 && scramble[n-1] == 0 {
		scramble = scramble[:n-1]
	}
	return plugin, scramble
}

// consumeOKPacket records the status flags from an OK_Packet so transaction
// state tracking (SERVER_STATUS_IN_TRANS) stays current (spec §3.3).
func (cn *conn) consumeOKPacket(pkt []byte) okPacket {
	ok := decodeOKPacket(pkt, cn.capabilities)
	cn.statusFlags = ok.statusFlags
	return ok
}

func (cn *conn) quit() error {
	_ = cn.writePacket([]byte{comQuit})
	cn.state = sqlmodel.StateClosed
	return cn.c.Close()
}

const (
	comQuit  = 0x01
	comQuery = 0x03
	comPing  = 0x0e
)
