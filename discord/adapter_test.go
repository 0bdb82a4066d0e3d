package discord

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-sarah/v4"
)

type sentMessage struct {
	channelID string
	content   interface{}
}

// fakeSession records every call the adapter makes.
type fakeSession struct {
	handlers []interface{}
	openErr  error
	closeErr error
	sendErr  error
	closed   bool

	sent      []sentMessage
	responses []*discordgo.InteractionResponse
	answered  []*discordgo.Interaction
}

func (f *fakeSession) AddHandler(handler interface{}) func() {
	f.handlers = append(f.handlers, handler)
	return func() {}
}

func (f *fakeSession) Open() error {
	return f.openErr
}

func (f *fakeSession) Close() error {
	f.closed = true
	return f.closeErr
}

func (f *fakeSession) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, sentMessage{channelID: channelID, content: content})
	return &discordgo.Message{}, f.sendErr
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, sentMessage{channelID: channelID, content: data})
	return &discordgo.Message{}, f.sendErr
}

func (f *fakeSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.answered = append(f.answered, interaction)
	f.responses = append(f.responses, resp)
	return f.sendErr
}

func newTestAdapter(s session) *Adapter {
	return &Adapter{config: NewConfig(), session: s}
}

func newMessage(content, authorID string) *discordgo.MessageCreate {
	m := &discordgo.MessageCreate{
		Message: &discordgo.Message{
			ChannelID: "ch-1",
			Content:   content,
			Timestamp: time.Now(),
		},
	}
	if authorID != "" {
		m.Author = &discordgo.User{ID: authorID}
	}
	return m
}

// capture returns an enqueue function that stores what it receives.
func capture(received *[]sarah.Input, err error) func(sarah.Input) error {
	return func(input sarah.Input) error {
		*received = append(*received, input)
		return err
	}
}

func TestNewAdapter(t *testing.T) {
	if DISCORD != sarah.BotType("discord") {
		t.Errorf("Expected DISCORD to be %q, got %q", "discord", DISCORD)
	}

	t.Run("token creates a session", func(t *testing.T) {
		config := NewConfig()
		config.Token = "test-token"

		adapter, err := NewAdapter(config)
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}
		if adapter.config != config || adapter.session == nil {
			t.Error("Expected config and session to be set")
		}
		if adapter.BotType() != DISCORD {
			t.Errorf("Unexpected BotType %q", adapter.BotType())
		}
	})

	t.Run("neither token nor session", func(t *testing.T) {
		if _, err := NewAdapter(NewConfig()); err != ErrEmptyToken {
			t.Errorf("Expected ErrEmptyToken, got %+v", err)
		}
	})

	t.Run("injected session wins", func(t *testing.T) {
		session := &discordgo.Session{}

		adapter, err := NewAdapter(NewConfig(), WithSession(session))
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}
		if adapter.session != session {
			t.Error("Expected injected session to be used")
		}
	})
}

func TestAdapter_Run(t *testing.T) {
	run := func(adapter *Adapter, ctx context.Context) error {
		var notified error
		done := make(chan struct{})
		go func() {
			adapter.Run(ctx, func(sarah.Input) error { return nil }, func(err error) { notified = err })
			close(done)
		}()
		<-done
		return notified
	}

	t.Run("Open failure is notified", func(t *testing.T) {
		s := &fakeSession{openErr: errors.New("connection refused")}

		err := run(newTestAdapter(s), context.Background())
		if err == nil || !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("Expected the Open error to be notified, got %+v", err)
		}
		if s.closed {
			t.Error("Close should not be called when Open fails")
		}
	})

	t.Run("cancellation closes the session", func(t *testing.T) {
		for _, closeErr := range []error{nil, errors.New("close failed")} {
			s := &fakeSession{closeErr: closeErr}
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if err := run(newTestAdapter(s), ctx); err != nil {
				t.Errorf("Unexpected notification: %+v", err)
			}
			if !s.closed {
				t.Error("Expected Close to be called after context cancellation")
			}
		}
	})

	t.Run("handlers are registered in order", func(t *testing.T) {
		s := &fakeSession{openErr: errors.New("stop here")}
		adapter := newTestAdapter(s)
		WithHandlers(func(*discordgo.Session, *discordgo.Ready) {})(adapter)

		_ = run(adapter, context.Background())

		if len(s.handlers) != 3 {
			t.Fatalf("Expected 3 handlers, got %d", len(s.handlers))
		}
		if _, ok := s.handlers[0].(func(*discordgo.Session, *discordgo.MessageCreate)); !ok {
			t.Errorf("Expected the message handler first, got %T", s.handlers[0])
		}
		if _, ok := s.handlers[1].(func(*discordgo.Session, *discordgo.InteractionCreate)); !ok {
			t.Errorf("Expected the interaction handler second, got %T", s.handlers[1])
		}
		if _, ok := s.handlers[2].(func(*discordgo.Session, *discordgo.Ready)); !ok {
			t.Errorf("Expected the extra handler last, got %T", s.handlers[2])
		}
	})
}

func TestAdapter_handleMessage(t *testing.T) {
	const botID = "bot-user-123"
	withState := &discordgo.Session{State: discordgo.NewState()}
	withState.State.User = &discordgo.User{ID: botID}

	tests := []struct {
		name        string
		session     *discordgo.Session
		message     *discordgo.MessageCreate
		helpCommand *string
		expected    interface{}
	}{
		{"plain text", withState, newMessage("hello", "user-1"), nil, &Input{}},
		{"help", withState, newMessage(".help", "user-1"), nil, &sarah.HelpInput{}},
		{"help with whitespace", withState, newMessage("  .help  ", "user-1"), nil, &sarah.HelpInput{}},
		{"abort", withState, newMessage(".abort", "user-1"), nil, &sarah.AbortInput{}},
		{"help disabled", withState, newMessage(".help", "user-1"), new(string), &Input{}},
		{"session without state", &discordgo.Session{}, newMessage("hello", "user-1"), nil, &Input{}},
		{"own message", withState, newMessage("hello", botID), nil, nil},
		{"no author", withState, newMessage("hello", ""), nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newTestAdapter(tt.session)
			if tt.helpCommand != nil {
				adapter.config.HelpCommand = *tt.helpCommand
			}

			var received []sarah.Input
			adapter.handleMessage(tt.session, tt.message, capture(&received, nil))

			if tt.expected == nil {
				if len(received) != 0 {
					t.Errorf("Expected the message to be ignored, got %T", received[0])
				}
				return
			}
			if len(received) != 1 {
				t.Fatalf("Expected one input, got %d", len(received))
			}
			if got, want := typeName(received[0]), typeName(tt.expected); got != want {
				t.Errorf("Expected %s, got %s", want, got)
			}
		})
	}

	t.Run("enqueue error is handled gracefully", func(t *testing.T) {
		var received []sarah.Input
		newTestAdapter(withState).handleMessage(withState, newMessage("hello", "user-1"), capture(&received, errors.New("queue full")))

		if len(received) != 1 {
			t.Errorf("Expected enqueue to be attempted once, got %d", len(received))
		}
	})
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *Input:
		return "*Input"
	case *InteractionInput:
		return "*InteractionInput"
	case *sarah.HelpInput:
		return "*sarah.HelpInput"
	case *sarah.AbortInput:
		return "*sarah.AbortInput"
	default:
		return "unknown"
	}
}

func TestAdapter_SendMessage(t *testing.T) {
	rich := &discordgo.MessageSend{Content: "complex msg"}
	helps := &sarah.CommandHelps{
		{Identifier: "echo", Instruction: "Input .echo to echo back"},
		{Identifier: "hello", Instruction: "Input .hello to greet"},
	}

	tests := []struct {
		name        string
		destination sarah.OutputDestination
		content     interface{}
		expected    interface{}
	}{
		{"string", ChannelID("ch-1"), "hello world", "hello world"},
		{"MessageSend", ChannelID("ch-1"), rich, rich},
		{"CommandHelps", ChannelID("ch-1"), helps, "**echo**: Input .echo to echo back\n**hello**: Input .hello to greet"},
		{"unexpected content", ChannelID("ch-1"), 12345, nil},
		{"unexpected destination", "not-a-channel-id", "hello", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, sendErr := range []error{nil, errors.New("send failed")} {
				s := &fakeSession{sendErr: sendErr}
				newTestAdapter(s).SendMessage(context.Background(), sarah.NewOutputMessage(tt.destination, tt.content))

				if tt.expected == nil {
					if len(s.sent) != 0 {
						t.Errorf("Expected nothing to be sent, got %#v", s.sent)
					}
					continue
				}
				if len(s.sent) != 1 {
					t.Fatalf("Expected one message, got %d", len(s.sent))
				}
				if s.sent[0].channelID != "ch-1" {
					t.Errorf("Expected channel %q, got %q", "ch-1", s.sent[0].channelID)
				}
				if s.sent[0].content != tt.expected {
					t.Errorf("Expected content %#v, got %#v", tt.expected, s.sent[0].content)
				}
			}
		})
	}
}

func TestMessageToInput(t *testing.T) {
	if _, err := MessageToInput(newMessage("hello", "")); err != ErrNoAuthor {
		t.Errorf("Expected ErrNoAuthor, got %+v", err)
	}

	m := newMessage("hello world", "user-456")
	input, err := MessageToInput(m)
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}

	if input.SenderKey() != "ch-1_user-456" {
		t.Errorf("Unexpected SenderKey %q", input.SenderKey())
	}
	if input.Message() != "hello world" {
		t.Errorf("Unexpected Message %q", input.Message())
	}
	if !input.SentAt().Equal(m.Timestamp) {
		t.Errorf("Expected SentAt %v, got %v", m.Timestamp, input.SentAt())
	}
	if dest, ok := input.ReplyTo().(ChannelID); !ok || dest != "ch-1" {
		t.Errorf("Expected ReplyTo ChannelID %q, got %#v", "ch-1", input.ReplyTo())
	}
	if input.Event != m {
		t.Error("Original event should be preserved in Input")
	}
}

func TestNewResponse(t *testing.T) {
	input, err := MessageToInput(newMessage(".start", "user-1"))
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}

	t.Run("simple", func(t *testing.T) {
		resp, err := NewResponse(input, "hello")
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}
		if resp.Content != "hello" || resp.UserContext != nil {
			t.Errorf("Unexpected response %#v", resp)
		}
	})

	t.Run("with next", func(t *testing.T) {
		next := func(context.Context, sarah.Input) (*sarah.CommandResponse, error) {
			return &sarah.CommandResponse{Content: "next step"}, nil
		}

		resp, err := NewResponse(input, "step 1", RespWithNext(next))
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}
		if resp.UserContext == nil || resp.UserContext.Next == nil {
			t.Error("Expected UserContext.Next to be set")
		}
	})

	t.Run("with serializable next", func(t *testing.T) {
		arg := &sarah.SerializableArgument{FuncIdentifier: "myFunc", Argument: "arg"}

		resp, err := NewResponse(input, "step 1", RespWithNextSerializable(arg))
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}
		if resp.UserContext == nil || resp.UserContext.Serializable != arg {
			t.Error("Expected UserContext.Serializable to be set")
		}
	})

	t.Run("wrapped input is rejected", func(t *testing.T) {
		if _, err := NewResponse(sarah.NewHelpInput(input), "should fail"); err == nil {
			t.Fatal("Expected an error for non-discord Input")
		}
	})
}
