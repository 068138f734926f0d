package backend

import (
	"context"
	"sync"

	"github.com/Veraticus/finchat/internal/model"
)

// MockClient is a mock implementation of Service for testing.
type MockClient struct {
	// Functions that can be set by tests to control behavior
	RegisterFn        func(ctx context.Context, displayName, email, password string) (model.Credential, error)
	LoginFn           func(ctx context.Context, email, password string) (model.Credential, error)
	AnswerFn          func(ctx context.Context, text string) (string, error)
	ConsultFn         func(ctx context.Context, query string) (model.ConsultationResult, error)
	ProcessReceiptsFn func(ctx context.Context, files []model.PendingFile) (model.UploadResult, error)
	HealthFn          func(ctx context.Context) (string, error)

	// Call tracking
	RegisterCalls        []RegisterCall
	LoginCalls           []LoginCall
	AnswerCalls          []string
	ConsultCalls         []string
	ProcessReceiptsCalls [][]model.PendingFile
	HealthCalls          int

	mu sync.Mutex
}

// RegisterCall records the parameters of a Register call.
type RegisterCall struct {
	DisplayName string
	Email       string
	Password    string
}

// LoginCall records the parameters of a Login call.
type LoginCall struct {
	Email    string
	Password string
}

// NewMockClient creates a new mock backend client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Register implements Service.Register.
func (m *MockClient) Register(ctx context.Context, displayName, email, password string) (model.Credential, error) {
	m.mu.Lock()
	m.RegisterCalls = append(m.RegisterCalls, RegisterCall{
		DisplayName: displayName,
		Email:       email,
		Password:    password,
	})
	m.mu.Unlock()

	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, displayName, email, password)
	}

	// Default behavior: issue a fixed token
	return model.Credential{Token: "mock-token", Kind: model.DefaultTokenKind}, nil
}

// Login implements Service.Login.
func (m *MockClient) Login(ctx context.Context, email, password string) (model.Credential, error) {
	m.mu.Lock()
	m.LoginCalls = append(m.LoginCalls, LoginCall{Email: email, Password: password})
	m.mu.Unlock()

	if m.LoginFn != nil {
		return m.LoginFn(ctx, email, password)
	}

	return model.Credential{Token: "mock-token", Kind: model.DefaultTokenKind}, nil
}

// Answer implements Service.Answer.
func (m *MockClient) Answer(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.AnswerCalls = append(m.AnswerCalls, text)
	m.mu.Unlock()

	if m.AnswerFn != nil {
		return m.AnswerFn(ctx, text)
	}

	// Default behavior: echo
	return "eco: " + text, nil
}

// Consult implements Service.Consult.
func (m *MockClient) Consult(ctx context.Context, query string) (model.ConsultationResult, error) {
	m.mu.Lock()
	m.ConsultCalls = append(m.ConsultCalls, query)
	m.mu.Unlock()

	if m.ConsultFn != nil {
		return m.ConsultFn(ctx, query)
	}

	return model.ConsultationResult{Kind: "texto", Answer: "eco: " + query}, nil
}

// ProcessReceipts implements Service.ProcessReceipts.
func (m *MockClient) ProcessReceipts(ctx context.Context, files []model.PendingFile) (model.UploadResult, error) {
	m.mu.Lock()
	m.ProcessReceiptsCalls = append(m.ProcessReceiptsCalls, append([]model.PendingFile(nil), files...))
	m.mu.Unlock()

	if m.ProcessReceiptsFn != nil {
		return m.ProcessReceiptsFn(ctx, files)
	}

	// Default behavior: one bare result per file
	result := model.UploadResult{TotalFiles: len(files)}
	for _, f := range files {
		result.Processed = append(result.Processed, model.ProcessedReceipt{FileName: f.DisplayName()})
	}
	return result, nil
}

// Health implements Service.Health.
func (m *MockClient) Health(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.HealthCalls++
	m.mu.Unlock()

	if m.HealthFn != nil {
		return m.HealthFn(ctx)
	}

	return "ok", nil
}

// Reset clears all call tracking.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RegisterCalls = nil
	m.LoginCalls = nil
	m.AnswerCalls = nil
	m.ConsultCalls = nil
	m.ProcessReceiptsCalls = nil
	m.HealthCalls = 0
}

// ProcessReceiptsCallCount returns how many uploads were attempted.
func (m *MockClient) ProcessReceiptsCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ProcessReceiptsCalls)
}

// Ensure MockClient implements Service interface.
var _ Service = (*MockClient)(nil)
