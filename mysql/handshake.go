package mysql

// Client/server capability flags (protocol docs), only the subset this
// driver negotiates.
const (
	capLongPassword = 1 << 0
	capFoundRows    = 1 << 1
	capLongFlag     = 1 << 2
	capConnectWithDB = 1 << 3
	capProtocol41   = 1 << 9
	capSSL          = 1 << 11
	capTransactions = 1 << 13
	capSecureConn   = 1 << 15
	capMultiResults = 1 << 17
	capPluginAuth   = 1 << 19
	capPluginAuthLenEncData = 1 << 21
	capConnAttrs    = 1 << 20
	capDeprecateEOF = 1 << 24
)

const serverMoreResultsExists = 0x0008

// serverHandshake is the parsed initial handshake packet (protocol 10)
// sent by the server immediately after the TCP connection is opened.
type serverHandshake struct {
	protocolVersion byte
	serverVersion   string
	connectionID    uint32
	authPluginData  []byte
	capabilities    uint32
	charset         byte
	statusFlags     uint16
	authPluginName  string
}

func parseServerHandshake(pkt []byte) (*serverHandshake, error) {
	h := &serverHandshake{}
	if len(pkt) < 1 {
		return nil, protocolErrf("empty handshake packet")
	}
	h.protocolVersion = pkt[0]
	rest := pkt[1:]

	var verStr string
	verStr, rest = readNullTerminatedString(rest)
	h.serverVersion = verStr

	if len(rest) < 4 {
		return nil, protocolErrf("truncated handshake: connection id")
	}
	h.connectionID = uint32(rest[0]) | uint32(rest[1])<<8 | uint32(rest[2])<<16 | uint32(rest[3])<<24
	rest = rest[4:]

	if len(rest) < 8 {
		return nil, protocolErrf("truncated handshake: auth-plugin-data-part-1")
	}
	authData := append([]byte{}, rest[:8]...)
	rest = rest[8:]

	if len(rest) < 1 {
		return nil, protocolErrf("truncated handshake: filler")
	}
	rest = rest[1:] // filler byte

	if len(rest) < 2 {
		return nil, protocolErrf("truncated handshake: capability flags (lower)")
	}
	capLower := uint32(rest[0]) | uint32(rest[1])<<8
	rest = rest[2:]

	var authDataLen byte
	if len(rest) > 0 {
		h.charset = rest[0]
		rest = rest[1:]
	}
	if len(rest) >= 2 {
		h.statusFlags = uint16(rest[0]) | uint16(rest[1])<<8
		rest = rest[2:]
	}
	if len(rest) >= 2 {
		capUpper := uint32(rest[0]) | uint32(rest[1])<<8
		h.capabilities = capLower | capUpper<<16
		rest = rest[2:]
	} else {
		h.capabilities = capLower
	}
	if h.capabilities&capPluginAuth != 0 {
		if len(rest) > 0 {
			authDataLen = rest[0]
			rest = rest[1:]
		}
	} else if len(rest) > 0 {
		rest = rest[1:]
	}
	if len(rest) >= 10 {
		rest = rest[10:] // reserved
	}

	if h.capabilities&capSecureConn != 0 {
		n := int(authDataLen) - 8
		if n < 13 {
			n = 13
		}
		if n > len(rest) {
			n = len(rest)
		}
		if n > 1 {
			authData = append(authData, rest[:n-1]...)
			rest = rest[n:]
		}
	}
	h.authPluginData = authData

	if h.capabilities&capPluginAuth != 0 {
		name, _ := readNullTerminatedString(rest)
		h.authPluginName = name
	}
	return h, nil
}

// clientCapabilities returns the flags this driver requests, gated on
// whether a database name and TLS upgrade were requested.
func clientCapabilities(cfg Config, serverCaps uint32) uint32 {
	caps := uint32(capLongPassword | capProtocol41 | capSecureConn |
		capPluginAuth | capTransactions | capMultiResults | capPluginAuthLenEncData)
	if cfg.Database != "" {
		caps |= capConnectWithDB
	}
	if cfg.TLS != TLSDisabled && serverCaps&capSSL != 0 {
		caps |= capSSL
	}
	if len(cfg.Attributes) > 0 {
		caps |= capConnAttrs
	}
	return caps & (serverCaps | capSSL) // only request what the server also advertises (except SSL pre-upgrade)
}

// buildHandshakeResponse41 serializes the HandshakeResponse41 packet
// (protocol docs §14.2.5) sent after the server's initial handshake.
func buildHandshakeResponse41(caps uint32, cfg Config, plugin string, authResponse []byte) []byte {
	var buf []byte
	buf = append(buf, byte(caps), byte(caps>>8), byte(caps>>16), byte(caps>>24))
	buf = append(buf, byte(cfg.MaxPacketSize), byte(cfg.MaxPacketSize>>8),
		byte(cfg.MaxPacketSize>>16), byte(cfg.MaxPacketSize>>24))
	buf = append(buf, collationID(cfg.Charset))
	buf = append(buf, make([]byte, 23)...)

	buf = append(buf, []byte(cfg.User)...)
	buf = append(buf, 0)

	buf = writeLenEncString(buf, authResponse)

	if cfg.Database != "" {
		buf = append(buf, []byte(cfg.Database)...)
		buf = append(buf, 0)
	}

	buf = append(buf, []byte(plugin)...)
	buf = append(buf, 0)

	if caps&capConnAttrs != 0 {
		buf = append(buf, encodeConnectAttrs(cfg.Attributes)...)
	}
	return buf
}

// encodeConnectAttrs renders attrs as the connection-attributes block
// appended to HandshakeResponse41 when CLIENT_CONNECT_ATTRS is negotiated:
// a length-encoded integer giving the block's byte length, followed by each
// key/value pair as length-encoded strings (spec §4.3).
func encodeConnectAttrs(attrs map[string]string) []byte {
	var kv []byte
	for k, v := range attrs {
		kv = writeLenEncString(kv, []byte(k))
		kv = writeLenEncString(kv, []byte(v))
	}
	buf := writeLenEncInt(nil, uint64(len(kv)))
	return append(buf, kv...)
}
