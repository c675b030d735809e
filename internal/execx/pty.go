package execx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/creack/pty"
	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

// DetachKey (Ctrl-]) ends an interactive Bridge without stopping the shell.
const DetachKey = 0x1d

// IsTTY reports whether stdin and stdout are both usable terminals. A
// terminal whose state cannot be read counts as absent.
func IsTTY() bool {
	in, out := int(os.Stdin.Fd()), int(os.Stdout.Fd())
	if !term.IsTerminal(in) || !term.IsTerminal(out) {
		return false
	}
	_, err := term.GetState(in)
	return err == nil
}

// Bridge connects the controlling terminal to ptmx until ctx is done, done
// is closed (the shell exited) or the user presses DetachKey. Output from the
// PTY is expected to be mirrored by the caller; Bridge only forwards input and
// window size.
//
// Stdin is read through a cancelable reader and Bridge waits for the reader
// to stop, so input typed after it returns stays with the caller. When stdin
// cannot be polled (not a terminal) the reader may outlive Bridge.
func Bridge(ctx context.Context, ptmx *os.File, done <-chan struct{}) error {
	if oldState, err := term.MakeRaw(int(os.Stdin.Fd())); err == nil {
		defer func() {
			if err := term.Restore(int(os.Stdin.Fd()), oldState); err != nil {
				_ = err // best-effort
			}
		}()
	}

	if err := pty.InheritSize(os.Stdin, ptmx); err != nil {
		_ = err // best-effort
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	defer signal.Stop(ch)
	go func() {
		for range ch {
			if err := pty.InheritSize(os.Stdin, ptmx); err != nil {
				_ = err // best-effort
			}
		}
	}()

	var in io.Reader = os.Stdin
	cancel := func() bool { return false }
	if cr, err := cancelreader.NewReader(os.Stdin); err == nil {
		defer cr.Close()
		in, cancel = cr, cr.Cancel
	}

	detached := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		buf := make([]byte, 1024)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				chunk := buf[:n]
				if i := bytes.IndexByte(chunk, DetachKey); i >= 0 {
					if i > 0 {
						_, _ = ptmx.Write(chunk[:i])
					}
					close(detached)
					return
				}
				if _, werr := ptmx.Write(chunk); werr != nil {
					return
				}
			}
			if err != nil {
				if err != io.EOF && !errors.Is(err, cancelreader.ErrCanceled) {
					_ = err // best-effort
				}
				return
			}
		}
	}()
	defer func() {
		if cancel() {
			<-stopped
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	case <-detached:
		return nil
	}
}
