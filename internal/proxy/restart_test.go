package proxy

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"
)

func TestServerPortInUseFallsBack(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer busy.Close()
	port := busy.Addr().(*net.TCPAddr).Port

	s, err := NewServer(Config{File: writePage(t, "<p>x</p>"), Port: port})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(ctx)
	}()

	_, got, err := net.SplitHostPort(s.Addr())
	if err != nil {
		t.Fatal(err)
	}
	if got == strconv.Itoa(port) {
		t.Errorf("server bound the busy port %s", got)
	}

	conn, err := net.DialTimeout("tcp", s.Addr(), time.Second)
	if err != nil {
		t.Fatalf("server not reachable on fallback port: %v", err)
	}
	conn.Close()
}
