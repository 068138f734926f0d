package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/finchat/internal/app"
	"github.com/Veraticus/finchat/internal/backend"
	"github.com/Veraticus/finchat/internal/chat"
	"github.com/Veraticus/finchat/internal/common"
	"github.com/Veraticus/finchat/internal/config"
	"github.com/Veraticus/finchat/internal/session"
	"github.com/Veraticus/finchat/internal/storage"
	"github.com/Veraticus/finchat/internal/transport"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// notLoggedIn is shown by every command that needs a session.
const notLoggedIn = "No has iniciado sesión. Usa 'finchat login' o 'finchat register'."

// runtime bundles everything a command needs to talk to the backend.
type runtime struct {
	store   *storage.SQLiteStorage
	session *session.Session
	service backend.Service
	root    *app.Root
	cfg     config.Config
}

// newRuntime wires storage, session, transport and backend from the
// current viper configuration.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	sess := session.New(store)
	doer, err := transport.NewClient(transport.Config{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		Credentials: sess,
		Invalidator: sess,
		Hooks:       transport.LoggingHooks(slog.Default()),
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	service := backend.NewClient(doer, afero.NewOsFs())
	root := app.NewRoot(sess, service, chat.Options{
		Greeting:       cfg.Chat.Greeting,
		Apology:        cfg.Chat.Apology,
		ConsultApology: cfg.Chat.ConsultApology,
	})

	if _, err := root.Start(ctx); err != nil {
		root.Close()
		_ = store.Close()
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return &runtime{
		cfg:     cfg,
		store:   store,
		session: sess,
		service: service,
		root:    root,
	}, nil
}

func (r *runtime) Close() {
	r.root.Close()
	if err := r.store.Close(); err != nil {
		slog.Warn("Failed to close session store", "error", err)
	}
}

// conversation returns the session's conversation or a friendly error
// when nobody is logged in.
func (r *runtime) conversation(ctx context.Context) (*chat.Conversation, error) {
	conv, err := r.root.Conversation(ctx)
	if err != nil {
		return nil, common.NewUserError(notLoggedIn, err)
	}
	return conv, nil
}
