//go:build darwin || linux

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"
	"nhooyr.io/websocket"
)

// Attach dials url, puts the local terminal into raw mode, and relays bytes
// between stdin/stdout and the socket until the server closes the
// connection or the user sends SIGINT. It's the client-side mirror of the
// teacher's WSClient.Run/connectAndRead pair, minus the reconnect-with-
// backoff loop: a foreground attach session that drops should surface the
// error, not silently retry.
func Attach(url string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dialCancel()

	conn, _, err := websocket.Dial(dialCtx, url, nil)
	if err != nil {
		return fmt.Errorf("reshell-attach: dial %s: %w", url, err)
	}
	defer conn.CloseNow()

	stdinFD := int(os.Stdin.Fd())
	if term.IsTerminal(stdinFD) {
		old, err := term.MakeRaw(stdinFD)
		if err != nil {
			return fmt.Errorf("reshell-attach: make terminal raw: %w", err)
		}
		defer term.Restore(stdinFD, old)
	}

	log.SetOutput(io.Discard) // keep stdout/stderr free for the relayed session

	done := make(chan struct{})
	go readLoop(ctx, conn, done)
	writeLoop(ctx, conn)
	<-done

	return nil
}

// readLoop copies messages arriving from the server onto local stdout
// until the context is canceled or the connection errors.
func readLoop(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		os.Stdout.Write(data)
	}
}

// writeLoop copies raw stdin bytes to the server as TEXT messages. Each
// read is forwarded immediately so the server's single-byte-oriented input
// editor (spec.md §4.7) sees individual keystrokes, the same way a raw-mode
// terminal client is expected to behave.
func writeLoop(ctx context.Context, conn *websocket.Conn) {
	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "attach client exiting")
			return
		default:
		}

		n, err := os.Stdin.Read(buf)
		if n > 0 {
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, buf[:n])
			cancel()
			if err != nil {
				return
			}
		}
		if err != nil {
			conn.Close(websocket.StatusNormalClosure, "stdin closed")
			return
		}
	}
}
