// Package cli is a line oriented front end for an editing session.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/session-editor/internal/autosave"
	"github.com/debemdeboas/session-editor/internal/client"
	"github.com/debemdeboas/session-editor/internal/events"
	"github.com/debemdeboas/session-editor/internal/model"
)

var cliLogger zerolog.Logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	cliLogger = l
}

const helpText = `Commands:
  title <text>       set the title
  tags <a, b, c>     set the tags
  url <url>          set the resource URL
  status <draft|published>
  show               print the form and save status
  submit             save now (publishes when status is published)
  quit               leave without submitting`

// Terminal reads commands from in and renders session events to out.
type Terminal struct {
	session *autosave.Session
	sub     *events.Subscriber
	styles  Styles

	in *bufio.Scanner

	mu  sync.Mutex
	out io.Writer
}

func NewTerminal(s *autosave.Session, sub *events.Subscriber, in io.Reader, out io.Writer, styles Styles) *Terminal {
	return &Terminal{
		session: s,
		sub:     sub,
		styles:  styles,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// Run processes commands until quit, a successful submit, end of input or
// an expired login. It returns client.ErrUnauthenticated in the last case.
func (t *Terminal) Run(ctx context.Context) error {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t.render(done)
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()

	t.println(t.styles.Muted.Render(fmt.Sprintf("Editing session %s. Type 'help' for commands.", describeID(t.session.ID()))))

	for {
		if t.session.State() == autosave.StateUnauthenticated {
			return client.ErrUnauthenticated
		}

		t.print(t.styles.Prompt.Render("> "))
		if !t.in.Scan() {
			return t.in.Err()
		}

		line := strings.TrimSpace(t.in.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch strings.ToLower(cmd) {
		case "quit", "exit":
			return nil
		case "help":
			t.println(t.styles.Output.Render(helpText))
		case "show":
			t.show()
		case "title", "tags", "url", "status":
			if err := t.edit(cmd, arg); err != nil {
				t.println(t.styles.Error.Render(err.Error()))
			}
		case "submit":
			err := t.session.Submit(ctx)
			if err == nil {
				return nil
			}
			cliLogger.Debug().Err(err).Msg("Submit failed")
			if client.IsUnauthenticated(err) {
				return err
			}
		default:
			t.println(t.styles.Error.Render(fmt.Sprintf("Unknown command %q, type 'help'", cmd)))
		}
	}
}

func (t *Terminal) edit(field, value string) error {
	form := t.session.Form()
	switch field {
	case "title":
		form.Title = value
	case "tags":
		form.Tags = value
	case "url":
		form.ResourceURL = value
	case "status":
		status := model.Status(strings.ToLower(value))
		if !status.Valid() {
			return fmt.Errorf("status must be %s or %s", model.StatusDraft, model.StatusPublished)
		}
		form.Status = status
	}
	t.session.OnFormChange(form)
	return nil
}

func (t *Terminal) show() {
	form := t.session.Form()
	st := t.session.Status()

	var b strings.Builder
	fmt.Fprintf(&b, "title:  %s\n", form.Title)
	fmt.Fprintf(&b, "tags:   %s\n", form.Tags)
	fmt.Fprintf(&b, "url:    %s\n", form.ResourceURL)
	fmt.Fprintf(&b, "status: %s", form.Status)
	t.println(t.styles.Output.Render(b.String()))

	switch {
	case st.IsSaving:
		t.println(t.styles.Muted.Render("Saving draft..."))
	case st.LastSavedAt != nil:
		t.println(t.styles.Muted.Render("Last saved at " + st.LastSavedAt.Format(time.Kitchen)))
	case t.session.Pending():
		t.println(t.styles.Muted.Render("Unsaved changes"))
	}
}

func (t *Terminal) render(done <-chan struct{}) {
	for {
		select {
		case e, ok := <-t.sub.Events:
			if !ok {
				return
			}
			t.renderEvent(e)
		case <-done:
			for {
				select {
				case e, ok := <-t.sub.Events:
					if !ok {
						return
					}
					t.renderEvent(e)
				default:
					return
				}
			}
		}
	}
}

func (t *Terminal) renderEvent(e events.Event) {
	switch e.Kind {
	case events.KindAutoSaveStarted:
		t.println(t.styles.Muted.Render("Saving draft..."))
	case events.KindAutoSaved:
		msg := e.Message
		if e.LastSavedAt != nil {
			msg += " at " + e.LastSavedAt.Format(time.Kitchen)
		}
		t.println(t.styles.Muted.Render(msg))
	case events.KindSubmitted:
		t.println(t.styles.Success.Render(e.Message))
	case events.KindError:
		t.println(t.styles.Error.Render(e.Message))
	case events.KindNotAuthenticated:
		t.println(t.styles.Error.Render(e.Message))
	case events.KindAutoSaveFailed:
		cliLogger.Debug().Err(e.Err).Msg("Auto-save failed")
	}
}

func (t *Terminal) print(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.out, s)
}

func (t *Terminal) println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, s)
}

func describeID(id model.SessionID) string {
	if id == "" {
		return "(new)"
	}
	return string(id)
}
