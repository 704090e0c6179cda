package transport

import (
	"context"
	"net"
	"testing"
)

func TestDialTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan struct{})
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
		close(accepted)
	}()

	conn, err := Dial(context.Background(), "tcp", "tcp", ln.Addr().String(), VerifyChain, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	conn.Close()
	<-accepted
}

func TestDialEmptySchemeDefaultsToTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	conn, err := Dial(context.Background(), "", "tcp", ln.Addr().String(), VerifyChain, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	conn.Close()
}

func TestDialRejectsUnsupportedScheme(t *testing.T) {
	if _, err := Dial(context.Background(), "ftp", "tcp", "127.0.0.1:0", VerifyChain, nil); err == nil {
		t.Error("Dial should reject an unsupported scheme")
	}
}

func TestDialTCPRefusedConnection(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close() // nothing listening now

	if _, err := Dial(context.Background(), "tcp", "tcp", addr, VerifyChain, nil); err == nil {
		t.Error("Dial should fail against a closed port")
	}
}
