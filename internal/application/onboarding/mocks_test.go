package onboarding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
)

// In-memory fakes for the onboarding collaborators. State-holding fakes are
// preferred over call-recording mocks here because the interesting
// assertions are about what ended up persisted.

type memApplicationRepo struct {
	mu   sync.Mutex
	apps map[uuid.UUID]*onboarding.VendorApplication
}

func newMemApplicationRepo() *memApplicationRepo {
	return &memApplicationRepo{apps: make(map[uuid.UUID]*onboarding.VendorApplication)}
}

func (r *memApplicationRepo) FindByID(ctx context.Context, id uuid.UUID) (*onboarding.VendorApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return app, nil
}

func (r *memApplicationRepo) FindActiveByVendor(ctx context.Context, vendorID uuid.UUID) (*onboarding.VendorApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.apps {
		if app.VendorID == vendorID && app.IsActive() {
			return app, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memApplicationRepo) FindLastRejectedByVendor(ctx context.Context, vendorID uuid.UUID) (*onboarding.VendorApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last *onboarding.VendorApplication
	for _, app := range r.apps {
		if app.VendorID == vendorID && app.State == onboarding.StateRejected {
			if last == nil || app.UpdatedAt.After(last.UpdatedAt) {
				last = app
			}
		}
	}
	if last == nil {
		return nil, shared.ErrNotFound
	}
	return last, nil
}

func (r *memApplicationRepo) FindByState(ctx context.Context, state onboarding.ApplicationState, filter shared.Filter) ([]onboarding.VendorApplication, error) {
	return nil, nil
}

func (r *memApplicationRepo) Save(ctx context.Context, app *onboarding.VendorApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[app.ID] = app
	return nil
}

func (r *memApplicationRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(r.apps)), nil
}

type memEvidenceRepo struct {
	mu       sync.Mutex
	evidence []*onboarding.PaymentEvidence
}

func (r *memEvidenceRepo) FindByID(ctx context.Context, id uuid.UUID) (*onboarding.PaymentEvidence, error) {
	return nil, shared.ErrNotFound
}

func (r *memEvidenceRepo) FindByTransactionID(ctx context.Context, transactionID string) (*onboarding.PaymentEvidence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.evidence {
		if e.TransactionID == transactionID {
			return e, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memEvidenceRepo) FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]onboarding.PaymentEvidence, error) {
	return nil, nil
}

func (r *memEvidenceRepo) Save(ctx context.Context, evidence *onboarding.PaymentEvidence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evidence = append(r.evidence, evidence)
	return nil
}

type memLedgerRepo struct {
	mu      sync.Mutex
	entries map[string]*onboarding.PaymentLedgerEntry
	failing bool
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{entries: make(map[string]*onboarding.PaymentLedgerEntry)}
}

func (r *memLedgerRepo) FindByTransactionID(ctx context.Context, transactionID string) (*onboarding.PaymentLedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[transactionID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return entry, nil
}

func (r *memLedgerRepo) Save(ctx context.Context, entry *onboarding.PaymentLedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return shared.ErrPersistence
	}
	if _, exists := r.entries[entry.TransactionID]; exists {
		return shared.ErrAlreadyExists
	}
	r.entries[entry.TransactionID] = entry
	return nil
}

func (r *memLedgerRepo) CountByVendor(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, entry := range r.entries {
		if entry.VendorID == vendorID {
			n++
		}
	}
	return n, nil
}

type memDocumentRepo struct {
	mu      sync.Mutex
	docs    map[uuid.UUID]*onboarding.DocumentRecord
	failing bool
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{docs: make(map[uuid.UUID]*onboarding.DocumentRecord)}
}

func (r *memDocumentRepo) FindByID(ctx context.Context, id uuid.UUID) (*onboarding.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return doc, nil
}

func (r *memDocumentRepo) FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]onboarding.DocumentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []onboarding.DocumentRecord
	for _, doc := range r.docs {
		if doc.ApplicationID == applicationID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (r *memDocumentRepo) CountByVendorSince(ctx context.Context, vendorID uuid.UUID, since time.Time) (int64, error) {
	return 0, nil
}

func (r *memDocumentRepo) Save(ctx context.Context, doc *onboarding.DocumentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return shared.ErrPersistence
	}
	r.docs[doc.ID] = doc
	return nil
}

func (r *memDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

type memDecisionRepo struct {
	mu        sync.Mutex
	decisions []*onboarding.AdminDecision
}

func (r *memDecisionRepo) FindByApplication(ctx context.Context, applicationID uuid.UUID) ([]onboarding.AdminDecision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []onboarding.AdminDecision
	for _, d := range r.decisions {
		if d.ApplicationID == applicationID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *memDecisionRepo) Save(ctx context.Context, decision *onboarding.AdminDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, decision)
	return nil
}

type memAuditRepo struct {
	mu      sync.Mutex
	records []*onboarding.AuditRecord
}

func (r *memAuditRepo) Save(ctx context.Context, record *onboarding.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *memAuditRepo) FindByVendor(ctx context.Context, vendorID uuid.UUID, filter shared.Filter) ([]onboarding.AuditRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []onboarding.AuditRecord
	for _, rec := range r.records {
		if rec.VendorID == vendorID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *memAuditRepo) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Kind
	}
	return out
}

type memIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	puts    int
}

func newMemIdempotencyStore() *memIdempotencyStore {
	return &memIdempotencyStore{entries: make(map[string][]byte)}
}

func (s *memIdempotencyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.entries[key]
	return payload, ok, nil
}

func (s *memIdempotencyStore) Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[key]; !exists {
		s.entries[key] = payload
	}
	s.puts++
	return nil
}

func (s *memIdempotencyStore) Evict(ctx context.Context) error { return nil }
func (s *memIdempotencyStore) Close() error                    { return nil }

// countingLimiter allows the first n calls per key
type countingLimiter struct {
	mu    sync.Mutex
	limit int
	seen  map[string]int
}

func newCountingLimiter(limit int) *countingLimiter {
	return &countingLimiter{limit: limit, seen: make(map[string]int)}
}

func (l *countingLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[key]++
	return l.seen[key] <= l.limit
}

type stubBank struct {
	mu        sync.Mutex
	confirmed bool
	ref       string
	err       error
	calls     int
}

func (b *stubBank) Confirm(ctx context.Context, transactionID, receiver, amount, currency string) (bool, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return false, "", b.err
	}
	return b.confirmed, b.ref, nil
}

type stubScanner struct {
	infected  bool
	signature string
	err       error
}

func (s *stubScanner) Scan(ctx context.Context, content []byte) (bool, string, error) {
	return s.infected, s.signature, s.err
}

type stubStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newStubStorage() *stubStorage {
	return &stubStorage{objects: make(map[string][]byte)}
}

func (s *stubStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = data
	return nil
}

func (s *stubStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	return fmt.Sprintf("https://cdn.souqly.test/%s?signed=1", storageKey), time.Now().Add(expiresIn), nil
}

func (s *stubStorage) DeleteObject(ctx context.Context, storageKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	s.deleted = append(s.deleted, storageKey)
	return nil
}

type stubIdentity struct {
	vendorID      uuid.UUID
	emailVerified bool
	sentEmails    int
}

func (p *stubIdentity) CreateAccount(ctx context.Context, email, phone, displayName string) (uuid.UUID, error) {
	if p.vendorID == uuid.Nil {
		p.vendorID = uuid.New()
	}
	return p.vendorID, nil
}

func (p *stubIdentity) SendVerificationEmail(ctx context.Context, accountID uuid.UUID) error {
	p.sentEmails++
	return nil
}

func (p *stubIdentity) IsEmailVerified(ctx context.Context, accountID uuid.UUID) (bool, error) {
	return p.emailVerified, nil
}

type stubNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *stubNotifier) NotifyVendor(ctx context.Context, vendorID uuid.UUID, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, subject)
	return nil
}

func (n *stubNotifier) NotifyAdmins(ctx context.Context, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, subject)
	return nil
}

type stubSessions struct {
	mu       sync.Mutex
	attached map[uuid.UUID]func()
	released []uuid.UUID
}

func newStubSessions() *stubSessions {
	return &stubSessions{attached: make(map[uuid.UUID]func())}
}

func (s *stubSessions) Attach(vendorID uuid.UUID, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached[vendorID] = release
}

func (s *stubSessions) Release(vendorID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attached, vendorID)
	s.released = append(s.released, vendorID)
}

type stubFeed struct{}

func (f *stubFeed) OpenFeed(ctx context.Context, vendorID uuid.UUID) (func(), error) {
	return func() {}, nil
}

// recordingProvisioner tracks created record sets and can fail one step
type recordingProvisioner struct {
	mu             sync.Mutex
	role           map[uuid.UUID]bool
	dashboard      map[uuid.UUID]bool
	analytics      map[uuid.UUID]bool
	paymentAccount map[uuid.UUID]bool
	failStep       string
}

func newRecordingProvisioner() *recordingProvisioner {
	return &recordingProvisioner{
		role:           make(map[uuid.UUID]bool),
		dashboard:      make(map[uuid.UUID]bool),
		analytics:      make(map[uuid.UUID]bool),
		paymentAccount: make(map[uuid.UUID]bool),
	}
}

func (p *recordingProvisioner) step(name string, apply func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failStep == name {
		return errors.New(name + " failed")
	}
	apply()
	return nil
}

func (p *recordingProvisioner) SetVendorRole(ctx context.Context, id uuid.UUID) error {
	return p.step("set_role", func() { p.role[id] = true })
}

func (p *recordingProvisioner) RevertVendorRole(ctx context.Context, id uuid.UUID) error {
	return p.step("revert_role", func() { delete(p.role, id) })
}

func (p *recordingProvisioner) CreateDashboard(ctx context.Context, id uuid.UUID) error {
	return p.step("create_dashboard", func() { p.dashboard[id] = true })
}

func (p *recordingProvisioner) DeleteDashboard(ctx context.Context, id uuid.UUID) error {
	return p.step("delete_dashboard", func() { delete(p.dashboard, id) })
}

func (p *recordingProvisioner) CreateAnalytics(ctx context.Context, id uuid.UUID) error {
	return p.step("create_analytics", func() { p.analytics[id] = true })
}

func (p *recordingProvisioner) DeleteAnalytics(ctx context.Context, id uuid.UUID) error {
	return p.step("delete_analytics", func() { delete(p.analytics, id) })
}

func (p *recordingProvisioner) CreatePaymentAccount(ctx context.Context, id uuid.UUID) error {
	return p.step("create_payment_account", func() { p.paymentAccount[id] = true })
}

func (p *recordingProvisioner) DeletePaymentAccount(ctx context.Context, id uuid.UUID) error {
	return p.step("delete_payment_account", func() { delete(p.paymentAccount, id) })
}

// noopPublisher swallows domain events
type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error { return nil }

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func newVendorID() uuid.UUID { return uuid.New() }
