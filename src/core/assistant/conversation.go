package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"docchat/src/infrastructure/log"
)

// State is what the user is currently doing in the conversation.
type State int

const (
	StateIdle State = iota
	StateAwaitingFile
	StateAwaitingQuestion
	StateConfirmDelete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingFile:
		return "awaiting_file"
	case StateAwaitingQuestion:
		return "awaiting_question"
	case StateConfirmDelete:
		return "confirm_delete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EventKind is the closed set of incoming event kinds.
type EventKind int

const (
	EventCommand EventKind = iota
	EventText
	EventFile
)

// Event is one incoming user event. Exactly one of the variants is set,
// selected by Kind: Command/Args for EventCommand, Text for EventText,
// Filename/Data for EventFile.
type Event struct {
	Kind     EventKind
	Command  string
	Args     string
	Text     string
	Filename string
	Data     []byte
}

// Reply is the controller's user-visible response to one event.
type Reply struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Sources []string `json:"sources,omitempty"`
	State   string   `json:"state"`
}

const helpText = `I answer questions about your uploaded documents.

/upload - send a text file to index
/ask - ask a question (or just type it)
/list - list your indexed documents
/delete <filename> - remove one document
/reset - remove all your documents
/cancel - abort the current action

Anything else you type is treated as a question.`

type session struct {
	mu            sync.Mutex
	state         State
	pendingDelete string // filename to delete, empty means delete everything
}

// Controller owns per-user conversation state and dispatches events to the
// pipeline services. Events for one user are serialized by the session lock,
// held across the external calls; different users proceed independently.
type Controller struct {
	indexer   *IndexerService
	retriever *RetrieverService
	generator *AnswerService

	mu       sync.Mutex
	sessions map[string]*session
}

func NewController(indexer *IndexerService, retriever *RetrieverService, generator *AnswerService) *Controller {
	return &Controller{
		indexer:   indexer,
		retriever: retriever,
		generator: generator,
		sessions:  make(map[string]*session),
	}
}

func (c *Controller) session(userID string) *session {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[userID]
	if !ok {
		s = &session{state: StateIdle}
		c.sessions[userID] = s
	}
	return s
}

// State reports the user's current conversation state.
func (c *Controller) State(userID string) State {
	s := c.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Handle processes one event for a user and returns the reply. Pipeline
// failures never escape as errors: they become an apologetic reply and the
// state resets so the user is not left stuck.
func (c *Controller) Handle(ctx context.Context, userID string, ev Event) Reply {
	s := c.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case EventCommand:
		return c.handleCommand(ctx, userID, s, ev)
	case EventText:
		return c.handleText(ctx, userID, s, ev)
	case EventFile:
		return c.handleFile(ctx, userID, s, ev)
	default:
		s.state = StateIdle
		return c.reply(s, "Sorry, I did not understand that.")
	}
}

func (c *Controller) handleCommand(ctx context.Context, userID string, s *session, ev Event) Reply {
	switch strings.ToLower(ev.Command) {
	case "start", "help":
		s.state = StateIdle
		s.pendingDelete = ""
		return c.reply(s, helpText)

	case "upload":
		s.state = StateAwaitingFile
		return c.reply(s, "Send a plain text file (.txt or .md, up to 5 MB).")

	case "ask":
		s.state = StateAwaitingQuestion
		return c.reply(s, "What would you like to know?")

	case "list":
		docs, err := c.indexer.ListDocuments(ctx, userID)
		if err != nil {
			log.Error(err, "failed to list documents", "user", userID)
			return c.reply(s, "Sorry, I could not list your documents right now.")
		}
		if len(docs) == 0 {
			return c.reply(s, "You have no indexed documents yet. Use /upload to add one.")
		}
		var b strings.Builder
		b.WriteString("Your documents:\n")
		for _, doc := range docs {
			fmt.Fprintf(&b, "- %s (%d chunks)\n", doc.Filename, doc.ChunkCount)
		}
		return c.reply(s, b.String())

	case "delete":
		filename := strings.TrimSpace(ev.Args)
		if filename == "" {
			return c.reply(s, "Tell me which file to delete: /delete <filename>")
		}
		s.state = StateConfirmDelete
		s.pendingDelete = filename
		return c.reply(s, fmt.Sprintf("Delete %q? Send /confirm to proceed or /cancel to keep it.", filename))

	case "reset":
		s.state = StateConfirmDelete
		s.pendingDelete = ""
		return c.reply(s, "Delete ALL your documents? Send /confirm to proceed or /cancel to keep them.")

	case "confirm":
		if s.state != StateConfirmDelete {
			return c.reply(s, "There is nothing to confirm.")
		}
		return c.performDelete(ctx, userID, s)

	case "cancel":
		s.state = StateIdle
		s.pendingDelete = ""
		return c.reply(s, "Cancelled.")

	default:
		return c.reply(s, fmt.Sprintf("Unknown command /%s. Send /help for the command list.", ev.Command))
	}
}

func (c *Controller) performDelete(ctx context.Context, userID string, s *session) Reply {
	filename := s.pendingDelete
	s.state = StateIdle
	s.pendingDelete = ""

	if filename == "" {
		if err := c.indexer.DeleteAll(ctx, userID); err != nil {
			return c.apologize(s, userID, err)
		}
		return c.reply(s, "All your documents have been deleted.")
	}

	if err := c.indexer.DeleteDocument(ctx, userID, filename); err != nil {
		return c.apologize(s, userID, err)
	}
	return c.reply(s, fmt.Sprintf("%q has been deleted.", filename))
}

func (c *Controller) handleText(ctx context.Context, userID string, s *session, ev Event) Reply {
	switch s.state {
	case StateConfirmDelete:
		return c.reply(s, "Please send /confirm to delete or /cancel to abort.")
	case StateAwaitingFile:
		return c.reply(s, "I am waiting for a file. Attach one, or send /cancel.")
	}

	question := strings.TrimSpace(ev.Text)
	if question == "" {
		return c.reply(s, "Send me a question about your documents.")
	}

	chunks, err := c.retriever.Retrieve(ctx, userID, question)
	if err != nil {
		s.state = StateIdle
		return c.apologize(s, userID, err)
	}

	answer, err := c.generator.Generate(ctx, question, chunks)
	if err != nil {
		s.state = StateIdle
		return c.apologize(s, userID, err)
	}

	s.state = StateIdle

	text := answer.Text
	if !answer.Grounded {
		text = "I have no indexed documents to ground this answer, so take it with caution.\n\n" + text
	}

	return Reply{
		ID:      uuid.New().String(),
		Text:    text,
		Sources: answer.Sources,
		State:   s.state.String(),
	}
}

func (c *Controller) handleFile(ctx context.Context, userID string, s *session, ev Event) Reply {
	if s.state != StateAwaitingFile {
		return c.reply(s, "Send /upload first, then attach the file.")
	}

	count, err := c.indexer.UpsertDocument(ctx, userID, ev.Filename, ev.Data)
	if err != nil {
		if errors.Is(err, ErrInvalidUpload) {
			// Stay waiting so the user can resend a valid file.
			return c.reply(s, fmt.Sprintf("That file was rejected: %v. Try again, or send /cancel.", trimTaxonomy(err)))
		}
		s.state = StateIdle
		return c.apologize(s, userID, err)
	}

	s.state = StateIdle
	return c.reply(s, fmt.Sprintf("%q was indexed into %d chunks. Ask me anything about it.", ev.Filename, count))
}

func (c *Controller) reply(s *session, text string) Reply {
	return Reply{
		ID:    uuid.New().String(),
		Text:  text,
		State: s.state.String(),
	}
}

// apologize maps a pipeline failure to a user-visible message. The raw error
// is logged here and never shown to the user.
func (c *Controller) apologize(s *session, userID string, err error) Reply {
	log.Error(err, "pipeline failure", "user", userID)

	var reason string
	switch {
	case errors.Is(err, ErrEmbeddingUnavailable):
		reason = "the embedding service is unavailable"
	case errors.Is(err, ErrIndexUnavailable):
		reason = "the document index is unavailable"
	case errors.Is(err, ErrGenerationUnavailable):
		reason = "the language model is unavailable"
	default:
		reason = "something went wrong"
	}

	return c.reply(s, fmt.Sprintf("Sorry, %s right now. Please try again in a moment.", reason))
}

// trimTaxonomy strips the taxonomy sentinel prefix from a wrapped error so
// the user sees only the human-readable reason.
func trimTaxonomy(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}
