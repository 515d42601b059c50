package mysql

import "testing"

// buildHandshakePacket assembles a protocol-10 initial handshake packet
// with a 20-byte auth-plugin-data challenge and the given plugin name, the
// shape this driver's parseServerHandshake must round-trip.
func buildHandshakePacket(scramble []byte, plugin string) []byte {
	var b []byte
	b = append(b, 10) // protocol version
	b = append(b, []byte("8.0.34")...)
	b = append(b, 0)
	b = append(b, 7, 0, 0, 0) // connection id
	b = append(b, scramble[:8]...)
	b = append(b, 0) // filler

	caps := uint32(capProtocol41 | capSecureConn | capPluginAuth | capPluginAuthLenEncData)
	b = append(b, byte(caps), byte(caps>>8))
	b = append(b, 33)    // charset
	b = append(b, 2, 0)  // status flags
	b = append(b, byte(caps>>16), byte(caps>>24))
	b = append(b, byte(len(scramble)+1))
	b = append(b, make([]byte, 10)...) // reserved

	rest := scramble[8:]
	b = append(b, rest...)
	b = append(b, 0) // NUL terminator on auth-plugin-data-part-2

	b = append(b, []byte(plugin)...)
	b = append(b, 0)
	return b
}

func TestParseServerHandshake(t *testing.T) {
	scramble := make([]byte, 20)
	for i := range scramble {
		scramble[i] = byte(i + 1)
	}
	pkt := buildHandshakePacket(scramble, authCachingSHA2)
	hs, err := parseServerHandshake(pkt)
	if err != nil {
		t.Fatalf("parseServerHandshake: %v", err)
	}
	if hs.protocolVersion != 10 {
		t.Errorf("protocol version = %d, want 10", hs.protocolVersion)
	}
	if hs.serverVersion != "8.0.34" {
		t.Errorf("server version = %q", hs.serverVersion)
	}
	if hs.authPluginName != authCachingSHA2 {
		t.Errorf("plugin = %q, want %q", hs.authPluginName, authCachingSHA2)
	}
	if len(hs.authPluginData) != 20 {
		t.Fatalf("auth plugin data len = %d, want 20", len(hs.authPluginData))
	}
	for i, want := range scramble {
		if hs.authPluginData[i] != want {
			t.Errorf("scramble byte %d = %d, want %d", i, hs.authPluginData[i], want)
		}
	}
}

func TestClientCapabilitiesRequestsOnlyWhatServerOffers(t *testing.T) {
	serverCaps := uint32(capProtocol41 | capSecureConn | capPluginAuth)
	caps := clientCapabilities(Config{}, serverCaps)
	if caps&capSSL != 0 {
		t.Error("should not request SSL when server does not offer it and TLS not requested")
	}
	if caps&capProtocol41 == 0 {
		t.Error("should always request PROTOCOL_41")
	}
}

func TestClientCapabilitiesIncludesConnectWithDB(t *testing.T) {
	serverCaps := uint32(capProtocol41 | capSecureConn | capPluginAuth | capConnectWithDB)
	caps := clientCapabilities(Config{Database: "app"}, serverCaps)
	if caps&capConnectWithDB == 0 {
		t.Error("expected CLIENT_CONNECT_WITH_DB to be requested when Database is set")
	}
}

func TestClientCapabilitiesIncludesConnectAttrsOnlyWhenOffered(t *testing.T) {
	cfg := Config{Attributes: map[string]string{"program_name": "sqlmodelctl"}}

	withoutOffer := clientCapabilities(cfg, uint32(capProtocol41|capSecureConn|capPluginAuth))
	if withoutOffer&capConnAttrs != 0 {
		t.Error("should not request CLIENT_CONNECT_ATTRS when the server does not offer it")
	}

	withOffer := clientCapabilities(cfg, uint32(capProtocol41|capSecureConn|capPluginAuth|capConnAttrs))
	if withOffer&capConnAttrs == 0 {
		t.Error("expected CLIENT_CONNECT_ATTRS to be requested when Attributes is set and the server offers it")
	}
}

func TestBuildHandshakeResponse41EncodesMaxPacketSizeAndCharset(t *testing.T) {
	cfg := Config{User: "app", MaxPacketSize: 1 << 20, Charset: "utf8mb4_general_ci"}
	caps := uint32(capProtocol41 | capSecureConn | capPluginAuth)
	resp := buildHandshakeResponse41(caps, cfg, authNativePassword, []byte{})

	if len(resp) < 9 {
		t.Fatalf("response too short: %d bytes", len(resp))
	}
	gotMaxPacket := uint32(resp[4]) | uint32(resp[5])<<8 | uint32(resp[6])<<16 | uint32(resp[7])<<24
	if gotMaxPacket != 1<<20 {
		t.Errorf("max packet size = %d, want %d", gotMaxPacket, 1<<20)
	}
	if resp[8] != collationID("utf8mb4_general_ci") {
		t.Errorf("charset byte = %d, want %d", resp[8], collationID("utf8mb4_general_ci"))
	}
}

func TestBuildHandshakeResponse41AppendsConnectAttrsWhenNegotiated(t *testing.T) {
	cfg := Config{User: "app", MaxPacketSize: 1 << 20, Charset: defaultCharset,
		Attributes: map[string]string{"program_name": "sqlmodelctl"}}
	caps := uint32(capProtocol41 | capSecureConn | capPluginAuth | capConnAttrs)
	withAttrs := buildHandshakeResponse41(caps, cfg, authNativePassword, []byte{})

	withoutAttrs := buildHandshakeResponse41(caps&^capConnAttrs, cfg, authNativePassword, []byte{})
	if len(withAttrs) <= len(withoutAttrs) {
		t.Error("expected the connect-attributes block to grow the response when CLIENT_CONNECT_ATTRS is negotiated")
	}
}
