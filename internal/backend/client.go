// Package backend exposes the finchat backend's HTTP surface as typed
// capabilities: account creation and login, free-text answers,
// consultations, receipt processing and health checks.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Veraticus/finchat/internal/common"
	"github.com/Veraticus/finchat/internal/model"
	"github.com/Veraticus/finchat/internal/transport"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

// Backend paths, relative to the configured base URL.
const (
	PathRegister = "/auth/register"
	PathLogin    = "/auth/login"
	PathConsult  = "/comprobantes/consultar"
	PathUpload   = "/comprobantes/subir"
	PathHealth   = "/health"
)

// NoAnswer is the reply used when the backend answers without any text.
const NoAnswer = "Sin respuesta"

// ErrUnhealthy is returned when /health answers with a status other than "ok".
var ErrUnhealthy = errors.New("backend unhealthy")

// Authenticator creates accounts and exchanges credentials for a token.
type Authenticator interface {
	Register(ctx context.Context, displayName, email, password string) (model.Credential, error)
	Login(ctx context.Context, email, password string) (model.Credential, error)
}

// Answerer answers a free-text chat message.
type Answerer interface {
	Answer(ctx context.Context, text string) (string, error)
}

// Consulter runs a free-text query over the user's receipts.
type Consulter interface {
	Consult(ctx context.Context, query string) (model.ConsultationResult, error)
}

// ReceiptProcessor submits files to the receipt pipeline.
type ReceiptProcessor interface {
	ProcessReceipts(ctx context.Context, files []model.PendingFile) (model.UploadResult, error)
}

// Service is every capability the client needs from the backend.
type Service interface {
	Authenticator
	Answerer
	Consulter
	ReceiptProcessor
	HealthChecker
}

// HealthChecker reports the backend's health status.
type HealthChecker interface {
	Health(ctx context.Context) (string, error)
}

// Client implements Service over a transport.
type Client struct {
	doer transport.Doer
	fs   afero.Fs
}

var _ Service = (*Client)(nil)

// NewClient creates a backend client. Files selected for upload are read
// from fs; a nil fs means the operating system's filesystem.
func NewClient(doer transport.Doer, fs afero.Fs) *Client {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Client{doer: doer, fs: fs}
}

type registerRequest struct {
	DisplayName string `json:"nombre_mostrar"`
	Email       string `json:"correo_electronico"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"correo_electronico"`
	Password string `json:"password"`
}

type messageRequest struct {
	Message string `json:"mensaje"`
}

// Register creates an account and returns the issued credential.
func (c *Client) Register(ctx context.Context, displayName, email, password string) (model.Credential, error) {
	return c.authenticate(ctx, PathRegister, registerRequest{
		DisplayName: displayName,
		Email:       email,
		Password:    password,
	})
}

// Login exchanges an email and password for a credential.
func (c *Client) Login(ctx context.Context, email, password string) (model.Credential, error) {
	return c.authenticate(ctx, PathLogin, loginRequest{
		Email:    email,
		Password: password,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (model.Credential, error) {
	resp, err := c.doer.Do(ctx, transport.Request{
		Method:       http.MethodPost,
		Path:         path,
		Body:         body,
		NoInvalidate: true,
	})
	if err != nil {
		return model.Credential{}, err
	}

	var cred model.Credential
	if err := resp.Decode(&cred); err != nil {
		return model.Credential{}, &common.RequestError{
			Method:     http.MethodPost,
			Path:       path,
			StatusCode: resp.StatusCode,
			Payload:    resp.Body,
			Err:        err,
		}
	}

	return cred, nil
}

// Answer sends a chat message and returns the reply text: the "respuesta"
// field, else "mensaje", else NoAnswer.
func (c *Client) Answer(ctx context.Context, text string) (string, error) {
	resp, err := c.doer.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   PathConsult,
		Body:   messageRequest{Message: text},
	})
	if err != nil {
		return "", err
	}

	if !gjson.ValidBytes(resp.Body) {
		return "", &common.RequestError{
			Method:     http.MethodPost,
			Path:       PathConsult,
			StatusCode: resp.StatusCode,
			Payload:    resp.Body,
			Err:        errors.New("malformed response"),
		}
	}

	for _, field := range []string{"respuesta", "mensaje"} {
		if v := gjson.GetBytes(resp.Body, field); v.Type == gjson.String && v.String() != "" {
			return v.String(), nil
		}
	}

	return NoAnswer, nil
}

// Consult runs query against the user's receipts. Every failure is a
// *common.ConsultationError.
func (c *Client) Consult(ctx context.Context, query string) (model.ConsultationResult, error) {
	resp, err := c.doer.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   PathConsult,
		Body:   messageRequest{Message: query},
	})
	if err != nil {
		return model.ConsultationResult{}, &common.ConsultationError{Err: err}
	}

	var result model.ConsultationResult
	if err := resp.Decode(&result); err != nil {
		return model.ConsultationResult{}, &common.ConsultationError{Err: err}
	}

	return result, nil
}

// ProcessReceipts uploads files as one multipart submission and returns the
// per-file results.
func (c *Client) ProcessReceipts(ctx context.Context, files []model.PendingFile) (model.UploadResult, error) {
	if len(files) == 0 {
		return model.UploadResult{}, &common.ValidationError{Field: "archivos", Message: "no files selected"}
	}

	parts := make([]transport.FilePart, 0, len(files))
	for _, f := range files {
		parts = append(parts, transport.FilePart{
			FileName:    f.DisplayName(),
			ContentType: f.ContentType(),
			Open:        c.opener(f.Source),
		})
	}

	resp, err := c.doer.Do(ctx, transport.Request{
		Method:    http.MethodPost,
		Path:      PathUpload,
		FileField: transport.DefaultFileField,
		Files:     parts,
	})
	if err != nil {
		return model.UploadResult{}, err
	}

	var result model.UploadResult
	if err := resp.Decode(&result); err != nil {
		return model.UploadResult{}, &common.RequestError{
			Method:     http.MethodPost,
			Path:       PathUpload,
			StatusCode: resp.StatusCode,
			Payload:    resp.Body,
			Err:        err,
		}
	}

	return result, nil
}

func (c *Client) opener(path string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		f, err := c.fs.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		return f, nil
	}
}

// Health returns the status reported by GET /health. Any status other than
// "ok" is returned together with ErrUnhealthy.
func (c *Client) Health(ctx context.Context) (string, error) {
	resp, err := c.doer.Do(ctx, transport.Request{
		Method:       http.MethodGet,
		Path:         PathHealth,
		NoInvalidate: true,
	})
	if err != nil {
		return "", err
	}

	status := gjson.GetBytes(resp.Body, "status").String()
	if !strings.EqualFold(status, "ok") {
		return status, &common.RetryableError{
			Err:       fmt.Errorf("%w: status %q", ErrUnhealthy, status),
			Retryable: true,
		}
	}

	return status, nil
}

// WaitHealthy polls Health until it succeeds or opts is exhausted.
func WaitHealthy(ctx context.Context, checker HealthChecker, opts common.RetryOptions) (string, error) {
	var status string
	err := common.WithRetry(ctx, func() error {
		var err error
		status, err = checker.Health(ctx)
		return err
	}, opts)
	if err != nil {
		return status, fmt.Errorf("backend not reachable: %w", err)
	}
	return status, nil
}
