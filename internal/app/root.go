// Package app gates the conversation and upload orchestrators behind the
// session: without a stored credential only authentication is reachable.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Veraticus/finchat/internal/auth"
	"github.com/Veraticus/finchat/internal/backend"
	"github.com/Veraticus/finchat/internal/chat"
	"github.com/Veraticus/finchat/internal/common"
	"github.com/Veraticus/finchat/internal/model"
	"github.com/Veraticus/finchat/internal/session"
	"github.com/Veraticus/finchat/internal/upload"
)

// UploadedPrefix starts the chat message announcing a processed receipt.
const UploadedPrefix = "Comprobante procesado: "

// Root composes the orchestrators around one session.
type Root struct {
	service      backend.Service
	session      *session.Session
	auth         *auth.Orchestrator
	conversation *chat.Conversation
	uploader     *upload.Uploader
	unsubscribe  func()
	chatOpts     chat.Options
	mu           sync.Mutex
}

// NewRoot creates a root over sess. The conversation and uploader are
// created on first use after authentication and dropped whenever the
// session ends or expires.
func NewRoot(sess *session.Session, service backend.Service, opts chat.Options) *Root {
	r := &Root{
		service:  service,
		session:  sess,
		auth:     auth.NewOrchestrator(service, sess),
		chatOpts: opts,
	}
	r.unsubscribe = sess.Subscribe(r.onSessionEvent)
	return r
}

// Start restores the session persisted by a previous run.
func (r *Root) Start(ctx context.Context) (bool, error) {
	return r.session.Load(ctx)
}

// Close stops following session changes.
func (r *Root) Close() {
	r.unsubscribe()
}

// Auth is always reachable.
func (r *Root) Auth() *auth.Orchestrator {
	return r.auth
}

// Authenticated reports the session state. A demotion already published
// answers without touching the store; otherwise the store is re-read, so a
// credential cleared behind the root's back drops the gated orchestrators too.
func (r *Root) Authenticated(ctx context.Context) bool {
	ok := r.session.Authenticated() && r.session.IsAuthenticated(ctx)
	if !ok {
		r.drop()
	}
	return ok
}

// Conversation returns the chat orchestrator, or common.ErrNotAuthenticated
// without a session.
func (r *Root) Conversation(ctx context.Context) (*chat.Conversation, error) {
	if !r.Authenticated(ctx) {
		return nil, common.ErrNotAuthenticated
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conversation == nil {
		r.conversation = chat.NewConversation(r.service, r.service, r.chatOpts)
	}
	return r.conversation, nil
}

// Uploader returns the upload orchestrator, or common.ErrNotAuthenticated
// without a session.
func (r *Root) Uploader(ctx context.Context) (*upload.Uploader, error) {
	if !r.Authenticated(ctx) {
		return nil, common.ErrNotAuthenticated
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.uploader == nil {
		r.uploader = upload.NewUploader(r.service)
	}
	return r.uploader, nil
}

// Busy reports whether any gated orchestrator has work in flight.
func (r *Root) Busy() bool {
	r.mu.Lock()
	conv, up := r.conversation, r.uploader
	r.mu.Unlock()

	return (conv != nil && conv.Busy()) || (up != nil && up.Busy())
}

// UploadFromChat submits files through the uploader and reports the outcome
// in the conversation: the first processed receipt is announced with a
// summary of the whole batch, and a failure appends the upload apology.
// Validation failures append nothing.
func (r *Root) UploadFromChat(ctx context.Context, files []model.PendingFile) ([]model.ProcessedReceipt, error) {
	conv, err := r.Conversation(ctx)
	if err != nil {
		return nil, err
	}
	up, err := r.Uploader(ctx)
	if err != nil {
		return nil, err
	}

	receipts, err := up.Submit(ctx, files)
	if err != nil {
		var validationErr *common.ValidationError
		if !errors.As(err, &validationErr) {
			conv.AddMessage(model.NewSystemMessage(upload.FailedMessage))
		}
		return nil, err
	}

	if len(receipts) > 0 {
		msg := model.NewSystemMessage(UploadedPrefix + receipts[0].Summary())
		conv.AddMessage(msg.WithReceipts(model.Summarize(receipts)))
	}
	return receipts, nil
}

func (r *Root) onSessionEvent(evt session.Event) {
	if evt.Authenticated {
		return
	}
	slog.Info("Session ended", "reason", evt.Reason)
	r.drop()
}

func (r *Root) drop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversation = nil
	r.uploader = nil
}
