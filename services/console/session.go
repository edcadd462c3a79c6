package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/shlex"

	"ledstrip-go/errcode"
	"ledstrip-go/services/strip"
	"ledstrip-go/types"
	"ledstrip-go/x/conv"
)

// requestTimeout bounds each strip control round trip.
const requestTimeout = 500 * time.Millisecond

var errLinkClosed = errors.New("link closed")

// handleLink owns one link: a reader goroutine runs each input line and
// this goroutine is the only writer.
func (s *Service) handleLink(ctx context.Context, rwc io.ReadWriteCloser) error {
	diagSub := s.conn.Subscribe(strip.TopicDiag())
	defer s.conn.Unsubscribe(diagSub)

	quit := make(chan struct{})
	defer close(quit)

	out := make(chan string, 8)
	errCh := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(rwc)
		for sc.Scan() {
			// A line that lands after the session ended belongs to no one.
			select {
			case <-quit:
				return
			default:
			}
			for _, l := range s.exec(ctx, sc.Text()) {
				select {
				case out <- l:
				case <-quit:
					return
				}
			}
		}
		err := sc.Err()
		if err == nil {
			err = errLinkClosed
		}
		errCh <- err
	}()

	if err := writeLine(rwc, "ledstrip console, type help"); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case l := <-out:
			if err := writeLine(rwc, l); err != nil {
				return err
			}
		case m, ok := <-diagSub.Channel():
			if !ok {
				return errLinkClosed
			}
			if txt, ok := m.Payload.(string); ok {
				if err := writeLine(rwc, "diag: "+txt); err != nil {
					return err
				}
			}
		}
	}
}

func writeLine(w io.Writer, l string) error {
	_, err := io.WriteString(w, l+"\r\n")
	return err
}

// exec runs one console line and returns the lines to print.
func (s *Service) exec(ctx context.Context, line string) []string {
	args, err := shlex.Split(line)
	if err != nil {
		return []string{"error: " + err.Error()}
	}
	if len(args) == 0 {
		return nil
	}

	verb := strings.ToLower(args[0])
	switch verb {
	case "help":
		return []string{
			"commands: " + strings.Join(strip.Commands(), " "),
			"also: mode <" + strings.Join(strip.Modes(), "|") + ">, code <hex>, state, help",
		}

	case "state":
		p, err := s.request(ctx, strip.VerbRead, nil)
		if err != nil {
			return errLine(err)
		}
		st, ok := p.(types.StripState)
		if !ok {
			return errLine(errcode.InvalidPayload)
		}
		return []string{st.String()}

	case "mode":
		if len(args) != 2 {
			return []string{"error: usage: mode <" + strings.Join(strip.Modes(), "|") + ">"}
		}
		name := strings.ToLower(args[1])
		for _, m := range strip.Modes() {
			if m == name {
				return s.command(ctx, types.StripCommand{Name: name})
			}
		}
		return []string{"error: unknown mode " + args[1]}

	case "code":
		if len(args) != 2 {
			return []string{"error: usage: code <hex>"}
		}
		code, ok := conv.ParseU32Hex(args[1])
		if !ok {
			return []string{"error: bad hex " + args[1]}
		}
		return s.command(ctx, types.StripCommand{Code: code})
	}

	if len(args) != 1 {
		return []string{"error: " + verb + " takes no arguments"}
	}
	return s.command(ctx, types.StripCommand{Name: verb})
}

func (s *Service) command(ctx context.Context, c types.StripCommand) []string {
	if _, err := s.request(ctx, strip.VerbCommand, c); err != nil {
		return errLine(err)
	}
	return []string{"ok"}
}

// request sends a strip control request and maps error replies to codes.
func (s *Service) request(ctx context.Context, verb string, payload any) (any, error) {
	rctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	rep, err := s.conn.RequestWait(rctx, s.conn.NewMessage(strip.TopicControl(verb), payload, false))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errcode.Timeout
		}
		return nil, err
	}
	if er, ok := rep.Payload.(types.ErrorReply); ok {
		return nil, errcode.Code(er.Error)
	}
	return rep.Payload, nil
}

func errLine(err error) []string { return []string{"error: " + string(errcode.Of(err))} }
