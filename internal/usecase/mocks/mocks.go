package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iho/paysaga/internal/domain"
)

// MockPaymentRequestService is an in-memory PaymentRequestService.
// Lookups return copies so callers never observe later mutations.
type MockPaymentRequestService struct {
	mu       sync.RWMutex
	requests map[string]*domain.PaymentRequest
	calls    map[string]int

	GetByIDFunc      func(ctx context.Context, id string) (*domain.PaymentRequest, bool, error)
	FindByTokenFunc  func(ctx context.Context, token string) (*domain.PaymentRequest, bool, error)
	FindByCodeFunc   func(ctx context.Context, code string) (*domain.PaymentRequest, bool, error)
	UpdateStatusFunc func(ctx context.Context, id string, status domain.RequestStatus, reason string) (*domain.PaymentRequest, error)
	MarkPaidFunc     func(ctx context.Context, id string, paidAt time.Time) (*domain.PaymentRequest, error)
}

func NewMockPaymentRequestService(requests ...*domain.PaymentRequest) *MockPaymentRequestService {
	m := &MockPaymentRequestService{
		requests: make(map[string]*domain.PaymentRequest),
		calls:    make(map[string]int),
	}
	for _, r := range requests {
		cp := *r
		m.requests[r.ID] = &cp
	}
	return m
}

// Calls returns how many times method was invoked.
func (m *MockPaymentRequestService) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[method]
}

// Get returns a copy of the stored request, or nil.
func (m *MockPaymentRequestService) Get(id string) *domain.PaymentRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.requests[id]; ok {
		cp := *r
		return &cp
	}
	return nil
}

func (m *MockPaymentRequestService) find(match func(*domain.PaymentRequest) bool) (*domain.PaymentRequest, bool, error) {
	for _, r := range m.requests {
		if match(r) {
			cp := *r
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (m *MockPaymentRequestService) GetByID(ctx context.Context, id string) (*domain.PaymentRequest, bool, error) {
	m.count("GetByID")
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.find(func(r *domain.PaymentRequest) bool { return r.ID == id })
}

func (m *MockPaymentRequestService) FindByToken(ctx context.Context, token string) (*domain.PaymentRequest, bool, error) {
	m.count("FindByToken")
	if m.FindByTokenFunc != nil {
		return m.FindByTokenFunc(ctx, token)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.find(func(r *domain.PaymentRequest) bool { return r.PaymentToken == token })
}

func (m *MockPaymentRequestService) FindByCode(ctx context.Context, code string) (*domain.PaymentRequest, bool, error) {
	m.count("FindByCode")
	if m.FindByCodeFunc != nil {
		return m.FindByCodeFunc(ctx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.find(func(r *domain.PaymentRequest) bool { return r.RequestCode == code })
}

func (m *MockPaymentRequestService) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus, reason string) (*domain.PaymentRequest, error) {
	m.count("UpdateStatus")
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, reason)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, domain.ErrPaymentRequestNotFound
	}
	r.Status = status
	r.StatusReason = reason
	cp := *r
	return &cp, nil
}

func (m *MockPaymentRequestService) MarkPaid(ctx context.Context, id string, paidAt time.Time) (*domain.PaymentRequest, error) {
	m.count("MarkPaid")
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, id, paidAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, domain.ErrPaymentRequestNotFound
	}
	r.Status = domain.RequestStatusCompleted
	r.PaidAt = &paidAt
	cp := *r
	return &cp, nil
}

func (m *MockPaymentRequestService) count(method string) {
	m.mu.Lock()
	m.calls[method]++
	m.mu.Unlock()
}

// MockPaymentTransactionService is an in-memory PaymentTransactionService.
type MockPaymentTransactionService struct {
	mu           sync.RWMutex
	transactions map[string]*domain.PaymentTransaction
	calls        map[string]int

	FindByExternalIDFunc func(ctx context.Context, externalID string) (*domain.PaymentTransaction, bool, error)
	MarkProcessedFunc    func(ctx context.Context, id, externalID string, response map[string]any) (*domain.PaymentTransaction, error)
	MarkFailedFunc       func(ctx context.Context, id, code, message string) (*domain.PaymentTransaction, error)
}

func NewMockPaymentTransactionService(txns ...*domain.PaymentTransaction) *MockPaymentTransactionService {
	m := &MockPaymentTransactionService{
		transactions: make(map[string]*domain.PaymentTransaction),
		calls:        make(map[string]int),
	}
	for _, t := range txns {
		cp := *t
		m.transactions[t.ID] = &cp
	}
	return m
}

func (m *MockPaymentTransactionService) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[method]
}

func (m *MockPaymentTransactionService) Get(id string) *domain.PaymentTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok {
		cp := *t
		return &cp
	}
	return nil
}

func (m *MockPaymentTransactionService) GetByID(ctx context.Context, id string) (*domain.PaymentTransaction, bool, error) {
	m.count("GetByID")
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.transactions[id]; ok {
		cp := *t
		return &cp, true, nil
	}
	return nil, false, nil
}

func (m *MockPaymentTransactionService) FindByExternalID(ctx context.Context, externalID string) (*domain.PaymentTransaction, bool, error) {
	m.count("FindByExternalID")
	if m.FindByExternalIDFunc != nil {
		return m.FindByExternalIDFunc(ctx, externalID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.transactions {
		if t.ExternalTransactionID == externalID {
			cp := *t
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (m *MockPaymentTransactionService) MarkProcessed(ctx context.Context, id, externalID string, response map[string]any) (*domain.PaymentTransaction, error) {
	m.count("MarkProcessed")
	if m.MarkProcessedFunc != nil {
		return m.MarkProcessedFunc(ctx, id, externalID, response)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return nil, domain.ErrPaymentTransactionNotFound
	}
	now := time.Now().UTC()
	t.Status = domain.TransactionStatusSuccess
	t.ExternalTransactionID = externalID
	t.GatewayResponse = response
	t.ProcessedAt = &now
	cp := *t
	return &cp, nil
}

func (m *MockPaymentTransactionService) MarkFailed(ctx context.Context, id, code, message string) (*domain.PaymentTransaction, error) {
	m.count("MarkFailed")
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id, code, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return nil, domain.ErrPaymentTransactionNotFound
	}
	t.Status = domain.TransactionStatusFailed
	t.ErrorCode = code
	t.ErrorMessage = message
	cp := *t
	return &cp, nil
}

func (m *MockPaymentTransactionService) count(method string) {
	m.mu.Lock()
	m.calls[method]++
	m.mu.Unlock()
}

// MockPaymentRefundService is an in-memory PaymentRefundService.
type MockPaymentRefundService struct {
	mu      sync.RWMutex
	refunds map[string]*domain.PaymentRefund
	calls   map[string]int

	MarkProcessedFunc func(ctx context.Context, id, externalRefundID string, response map[string]any) (*domain.PaymentRefund, error)
	MarkFailedFunc    func(ctx context.Context, id, code, message string) (*domain.PaymentRefund, error)
}

func NewMockPaymentRefundService(refunds ...*domain.PaymentRefund) *MockPaymentRefundService {
	m := &MockPaymentRefundService{
		refunds: make(map[string]*domain.PaymentRefund),
		calls:   make(map[string]int),
	}
	for _, r := range refunds {
		cp := *r
		m.refunds[r.ID] = &cp
	}
	return m
}

func (m *MockPaymentRefundService) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[method]
}

func (m *MockPaymentRefundService) Get(id string) *domain.PaymentRefund {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.refunds[id]; ok {
		cp := *r
		return &cp
	}
	return nil
}

func (m *MockPaymentRefundService) FindByExternalID(ctx context.Context, externalRefundID string) (*domain.PaymentRefund, bool, error) {
	m.count("FindByExternalID")
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.refunds {
		if r.ExternalRefundID == externalRefundID {
			cp := *r
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (m *MockPaymentRefundService) MarkProcessed(ctx context.Context, id, externalRefundID string, response map[string]any) (*domain.PaymentRefund, error) {
	m.count("MarkProcessed")
	if m.MarkProcessedFunc != nil {
		return m.MarkProcessedFunc(ctx, id, externalRefundID, response)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.refunds[id]
	if !ok {
		return nil, domain.ErrPaymentRefundNotFound
	}
	now := time.Now().UTC()
	r.Status = domain.TransactionStatusSuccess
	r.ExternalRefundID = externalRefundID
	r.GatewayResponse = response
	r.ProcessedAt = &now
	cp := *r
	return &cp, nil
}

func (m *MockPaymentRefundService) MarkFailed(ctx context.Context, id, code, message string) (*domain.PaymentRefund, error) {
	m.count("MarkFailed")
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id, code, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.refunds[id]
	if !ok {
		return nil, domain.ErrPaymentRefundNotFound
	}
	r.Status = domain.TransactionStatusFailed
	r.ErrorCode = code
	r.ErrorMessage = message
	cp := *r
	return &cp, nil
}

func (m *MockPaymentRefundService) count(method string) {
	m.mu.Lock()
	m.calls[method]++
	m.mu.Unlock()
}

// MockAuditRepository records audit logs in memory.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc func(ctx context.Context, log *domain.AuditLog) error
	ListFunc   func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.AuditLog
	for _, l := range m.logs {
		if filter.AggregateID != "" && l.AggregateID != filter.AggregateID {
			continue
		}
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// Logs returns every recorded entry in insertion order.
func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AuditLog(nil), m.logs...)
}

// MockEventPublisher records published domain events.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []*domain.DomainEvent

	PublishFunc func(ctx context.Context, event *domain.DomainEvent) error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *domain.DomainEvent) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, event); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockEventPublisher) Events() []*domain.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.DomainEvent(nil), m.events...)
}

// MockCallbackPublisher records canonical events enqueued for processing.
type MockCallbackPublisher struct {
	mu     sync.Mutex
	events []*domain.CanonicalEvent

	PublishCallbackFunc func(ctx context.Context, event *domain.CanonicalEvent) error
}

func NewMockCallbackPublisher() *MockCallbackPublisher {
	return &MockCallbackPublisher{}
}

func (m *MockCallbackPublisher) PublishCallback(ctx context.Context, event *domain.CanonicalEvent) error {
	if m.PublishCallbackFunc != nil {
		return m.PublishCallbackFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockCallbackPublisher) Events() []*domain.CanonicalEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.CanonicalEvent(nil), m.events...)
}

// MockOutboxRepository stores outbox events in memory.
type MockOutboxRepository struct {
	mu     sync.Mutex
	events []*domain.OutboxEvent

	CreateFunc        func(ctx context.Context, event *domain.OutboxEvent) error
	MarkPublishedFunc func(ctx context.Context, id string, publishedAt time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return fmt.Errorf("outbox event %s not found", id)
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return nil
}

func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.OutboxEvent(nil), m.events...)
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockIdempotencyStore is an in-memory IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.Mutex
	data map[string]string

	ClaimFunc func(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string]string),
	}
}

func (m *MockIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(ctx, key, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = "processing"
	return true, nil
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = "done"
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// State returns the stored marker for key, or "".
func (m *MockIdempotencyStore) State(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}
