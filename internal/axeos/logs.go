package axeos

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
)

// StreamLogs follows the device's live console output over its websocket
// endpoint and calls fn once per log line until ctx is cancelled or the
// connection drops. AxeOS streams the same output here that appears on the
// serial console, which is the only way to watch a device come back up
// after a firmware flash without physical access.
func StreamLogs(ctx context.Context, addr string, fn func(line string)) error {
	url := fmt.Sprintf("ws://%s/api/ws", addr)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return classifyTransportError("stream logs", addr, err)
	}
	defer conn.Close()

	// Close the connection when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return &DeviceError{Kind: ErrKindUnreachable, Addr: addr, Op: "stream logs", Err: err}
		}

		for _, line := range strings.Split(strings.TrimRight(string(msg), "\r\n"), "\n") {
			fn(strings.TrimRight(line, "\r"))
		}
	}
}
