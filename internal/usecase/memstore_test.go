package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/internal/data/repository"
	"rental-booking/pkg/database"
	"rental-booking/pkg/mailer"
	"rental-booking/pkg/messaging"

	"github.com/google/uuid"
)

// memStore backs every repository interface with maps so services can be
// exercised without Postgres.
type memStore struct {
	mu sync.Mutex

	users         map[uuid.UUID]*entity.User
	sessions      map[string]*entity.Session
	properties    map[uuid.UUID]*entity.Property
	admins        map[uuid.UUID][]uuid.UUID
	bookings      map[uuid.UUID]*entity.Booking
	lineItems     map[uuid.UUID][]*entity.BookingLineItem
	payments      []*entity.Payment
	refunds       map[uuid.UUID]*entity.RefundRequest
	history       []*entity.RefundStatusHistory
	documents     map[uuid.UUID]*entity.RefundDocument
	comments      []*entity.RefundComment
	memos         map[uuid.UUID]*entity.CreditMemo
	notifications []*entity.Notification
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[uuid.UUID]*entity.User),
		sessions:   make(map[string]*entity.Session),
		properties: make(map[uuid.UUID]*entity.Property),
		admins:     make(map[uuid.UUID][]uuid.UUID),
		bookings:   make(map[uuid.UUID]*entity.Booking),
		lineItems:  make(map[uuid.UUID][]*entity.BookingLineItem),
		refunds:    make(map[uuid.UUID]*entity.RefundRequest),
		documents:  make(map[uuid.UUID]*entity.RefundDocument),
		memos:      make(map[uuid.UUID]*entity.CreditMemo),
	}
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		User:           memUsers{m},
		Session:        memSessions{m},
		Property:       memProperties{m},
		Booking:        memBookings{m},
		Payment:        memPayments{m},
		Refund:         memRefunds{m},
		RefundDocument: memDocuments{m},
		RefundComment:  memComments{m},
		CreditMemo:     memMemos{m},
		Notification:   memNotifications{m},
		EmailTemplate:  memTemplates{},
	}
}

func (m *memStore) historyFor(refundID uuid.UUID) []*entity.RefundStatusHistory {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*entity.RefundStatusHistory
	for _, h := range m.history {
		if h.RefundID == refundID {
			out = append(out, h)
		}
	}
	return out
}

func (m *memStore) notificationsFor(userID uuid.UUID) []*entity.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*entity.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (m *memStore) bookingCopy(id uuid.UUID) entity.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.bookings[id]
}

// ==================== USERS & SESSIONS ====================

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, user *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.users[user.ID] = user
	return nil
}

func (r memUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.users[id], nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r memUsers) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r memUsers) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.User
	for _, id := range ids {
		if u, ok := r.m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type memSessions struct{ m *memStore }

func (r memSessions) Create(_ context.Context, session *entity.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.sessions[session.Token.String()] = session
	return nil
}

func (r memSessions) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[token]
	if !ok || s.RevokedAt != nil || !s.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	return s, nil
}

func (r memSessions) Revoke(_ context.Context, token string, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[token]
	if !ok || s.RevokedAt != nil {
		return repository.ErrSessionNotFound
	}
	s.RevokedAt = &at
	return nil
}

// ==================== PROPERTIES & BOOKINGS ====================

type memProperties struct{ m *memStore }

func (r memProperties) Create(_ context.Context, p *entity.Property) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.properties[p.ID] = p
	r.m.admins[p.ID] = append(r.m.admins[p.ID], p.OwnerID)
	return nil
}

func (r memProperties) FindByID(_ context.Context, id uuid.UUID) (*entity.Property, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.properties[id], nil
}

func (r memProperties) AddAdmin(_ context.Context, admin *entity.PropertyAdmin) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, id := range r.m.admins[admin.PropertyID] {
		if id == admin.UserID {
			return nil
		}
	}
	r.m.admins[admin.PropertyID] = append(r.m.admins[admin.PropertyID], admin.UserID)
	return nil
}

func (r memProperties) IsAdmin(_ context.Context, propertyID, userID uuid.UUID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, id := range r.m.admins[propertyID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r memProperties) FindAdminIDs(_ context.Context, propertyID uuid.UUID) ([]uuid.UUID, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return append([]uuid.UUID(nil), r.m.admins[propertyID]...), nil
}

type memBookings struct{ m *memStore }

func (r memBookings) Create(_ context.Context, b *entity.Booking, lines []*entity.BookingLineItem) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.bookings[b.ID] = b
	r.m.lineItems[b.ID] = lines
	return nil
}

func (r memBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	b, ok := r.m.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r memBookings) FindByGuestID(_ context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.m.bookings {
		if b.GuestID == guestID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return page(out, limit, offset), nil
}

func (r memBookings) CountByGuestID(ctx context.Context, guestID uuid.UUID) (int64, error) {
	all, _ := r.FindByGuestID(ctx, guestID, 1<<30, 0)
	return int64(len(all)), nil
}

func (r memBookings) FindLineItems(_ context.Context, bookingID uuid.UUID) ([]*entity.BookingLineItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.lineItems[bookingID], nil
}

func (r memBookings) UpdateDates(_ context.Context, id uuid.UUID, checkIn, checkOut, at time.Time) error {
	return r.guarded(id, func(b *entity.Booking) {
		b.CheckIn, b.CheckOut, b.UpdatedAt = checkIn, checkOut, at
	})
}

func (r memBookings) UpdatePrice(_ context.Context, id uuid.UUID, cents int64, at time.Time) error {
	return r.guarded(id, func(b *entity.Booking) {
		b.TotalPriceCents, b.UpdatedAt = cents, at
	})
}

func (r memBookings) UpdateStatus(_ context.Context, id uuid.UUID, status entity.BookingStatus, at time.Time) error {
	return r.guarded(id, func(b *entity.Booking) {
		b.Status, b.UpdatedAt = status, at
	})
}

func (r memBookings) guarded(id uuid.UUID, apply func(b *entity.Booking)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, rr := range r.m.refunds {
		if rr.BookingID == id && rr.Status.IsActive() {
			return repository.ErrBookingLocked
		}
	}
	b, ok := r.m.bookings[id]
	if !ok {
		return repository.ErrBookingLocked
	}
	apply(b)
	return nil
}

type memPayments struct{ m *memStore }

func (r memPayments) Record(_ context.Context, p *entity.Payment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.payments = append(r.m.payments, p)
	if p.Status == entity.PaymentStatusCompleted {
		b := r.m.bookings[p.BookingID]
		b.AmountPaidCents += p.AmountCents
		if b.Status == entity.BookingStatusPending {
			b.Status = entity.BookingStatusConfirmed
		}
	}
	return nil
}

func (r memPayments) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*entity.Payment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.Payment
	for _, p := range r.m.payments {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memPayments) FindLatestCompleted(_ context.Context, bookingID uuid.UUID, provider entity.PaymentProvider) (*entity.Payment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var latest *entity.Payment
	for _, p := range r.m.payments {
		if p.BookingID == bookingID && p.Provider == provider && p.Status == entity.PaymentStatusCompleted {
			latest = p
		}
	}
	return latest, nil
}

// ==================== REFUNDS ====================

type memRefunds struct{ m *memStore }

func (r memRefunds) Create(_ context.Context, refund *entity.RefundRequest, h *entity.RefundStatusHistory) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.refunds {
		if existing.BookingID == refund.BookingID && existing.Status.IsActive() {
			return repository.ErrActiveRefundExists
		}
	}
	cp := *refund
	r.m.refunds[refund.ID] = &cp
	r.m.history = append(r.m.history, h)
	return nil
}

func (r memRefunds) FindByID(_ context.Context, id uuid.UUID) (*entity.RefundRequest, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rr, ok := r.m.refunds[id]
	if !ok {
		return nil, nil
	}
	cp := *rr
	return &cp, nil
}

func (r memRefunds) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*entity.RefundRequest, error) {
	return r.filter(func(rr *entity.RefundRequest) bool { return rr.BookingID == bookingID }), nil
}

func (r memRefunds) FindByGuestID(_ context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.RefundRequest, error) {
	return page(r.filter(func(rr *entity.RefundRequest) bool { return rr.GuestID == guestID }), limit, offset), nil
}

func (r memRefunds) CountByGuestID(_ context.Context, guestID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(rr *entity.RefundRequest) bool { return rr.GuestID == guestID }))), nil
}

func (r memRefunds) FindAll(_ context.Context, f repository.RefundFilter) ([]*entity.RefundRequest, error) {
	return page(r.filter(func(rr *entity.RefundRequest) bool {
		return f.Status == nil || rr.Status == *f.Status
	}), f.Limit, f.Offset), nil
}

func (r memRefunds) Count(_ context.Context, status *entity.RefundStatus) (int64, error) {
	return int64(len(r.filter(func(rr *entity.RefundRequest) bool {
		return status == nil || rr.Status == *status
	}))), nil
}

func (r memRefunds) HasActive(_ context.Context, bookingID uuid.UUID) (bool, error) {
	return len(r.filter(func(rr *entity.RefundRequest) bool {
		return rr.BookingID == bookingID && rr.Status.IsActive()
	})) > 0, nil
}

// Transition applies the same compare-and-set the SQL version does. Within runs
// outside the lock since it writes through other fakes.
func (r memRefunds) Transition(ctx context.Context, t repository.RefundTransition) (*entity.RefundRequest, error) {
	r.m.mu.Lock()
	current, ok := r.m.refunds[t.RefundID]
	if !ok || !statusIn(current.Status, t.From) {
		r.m.mu.Unlock()
		return nil, repository.ErrStaleRefundStatus
	}
	next := *current
	r.m.mu.Unlock()

	applyChanges(&next, t)

	if t.Within != nil {
		if err := t.Within(ctx, nil, &next); err != nil {
			return nil, err
		}
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if !statusIn(r.m.refunds[t.RefundID].Status, t.From) {
		return nil, repository.ErrStaleRefundStatus
	}
	r.m.refunds[t.RefundID] = &next
	r.m.history = append(r.m.history, t.History)
	if t.SettledCents > 0 {
		b := r.m.bookings[next.BookingID]
		b.TotalRefundedCents += t.SettledCents
	}

	out := next
	return &out, nil
}

func (r memRefunds) History(_ context.Context, refundID uuid.UUID) ([]*entity.RefundStatusHistory, error) {
	return r.m.historyFor(refundID), nil
}

func (r memRefunds) filter(keep func(*entity.RefundRequest) bool) []*entity.RefundRequest {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.RefundRequest
	for _, rr := range r.m.refunds {
		if keep(rr) {
			cp := *rr
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func applyChanges(rr *entity.RefundRequest, t repository.RefundTransition) {
	c := t.Changes
	rr.Status = t.To
	rr.UpdatedAt = t.At
	if c.ApprovedAmountCents != nil {
		rr.ApprovedAmountCents = c.ApprovedAmountCents
	}
	if c.RefundMethod != nil {
		rr.RefundMethod = *c.RefundMethod
	}
	if c.CustomerNotes != nil {
		rr.CustomerNotes = c.CustomerNotes
	}
	if c.InternalNotes != nil {
		notes := *c.InternalNotes
		if rr.InternalNotes != nil && *rr.InternalNotes != "" {
			notes = *rr.InternalNotes + "\n" + notes
		}
		rr.InternalNotes = &notes
	}
	if c.ProviderRef != nil {
		rr.ProviderRef = c.ProviderRef
	}
	if c.CompletionReference != nil {
		rr.CompletionReference = c.CompletionReference
	}
	if c.ApprovedAt != nil {
		rr.ApprovedAt, rr.ApprovedBy = c.ApprovedAt, c.ApprovedBy
	}
	if c.ReviewedAt != nil {
		rr.ReviewedAt, rr.ReviewedBy = c.ReviewedAt, c.ReviewedBy
	}
	if c.RejectedAt != nil {
		rr.RejectedAt, rr.RejectedBy = c.RejectedAt, c.RejectedBy
	}
	if c.ProcessedAt != nil {
		rr.ProcessedAt, rr.ProcessedBy = c.ProcessedAt, c.ProcessedBy
	}
	if c.CompletedAt != nil {
		rr.CompletedAt = c.CompletedAt
	}
}

func statusIn(s entity.RefundStatus, set []entity.RefundStatus) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ==================== DOCUMENTS, COMMENTS, MEMOS ====================

type memDocuments struct{ m *memStore }

func (r memDocuments) Create(_ context.Context, doc *entity.RefundDocument) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.documents[doc.ID] = doc
	return nil
}

func (r memDocuments) FindByID(_ context.Context, id uuid.UUID) (*entity.RefundDocument, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.documents[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r memDocuments) FindByRefundID(_ context.Context, refundID uuid.UUID) ([]*entity.RefundDocument, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.RefundDocument
	for _, d := range r.m.documents {
		if d.RefundID == refundID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memDocuments) Delete(_ context.Context, id uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if d, ok := r.m.documents[id]; ok && d.IsVerified {
		return repository.ErrDocumentVerified
	}
	delete(r.m.documents, id)
	return nil
}

func (r memDocuments) Verify(_ context.Context, id, by uuid.UUID, at time.Time) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	d, ok := r.m.documents[id]
	if !ok || d.IsVerified {
		return false, nil
	}
	d.IsVerified, d.VerifiedBy, d.VerifiedAt = true, &by, &at
	return true, nil
}

type memComments struct{ m *memStore }

func (r memComments) Create(_ context.Context, c *entity.RefundComment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.comments = append(r.m.comments, c)
	return nil
}

func (r memComments) FindByRefundID(_ context.Context, refundID uuid.UUID, includeInternal bool) ([]*entity.RefundComment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*entity.RefundComment
	for _, c := range r.m.comments {
		if c.RefundID == refundID && (includeInternal || !c.IsInternal) {
			out = append(out, c)
		}
	}
	return out, nil
}

type memMemos struct{ m *memStore }

func (r memMemos) Create(_ context.Context, _ database.Querier, cm *entity.CreditMemo) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.memos[cm.ID] = cm
	return nil
}

func (r memMemos) FindByID(_ context.Context, id uuid.UUID) (*entity.CreditMemo, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.memos[id], nil
}

func (r memMemos) FindByRefundID(_ context.Context, refundID uuid.UUID) (*entity.CreditMemo, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, cm := range r.m.memos {
		if cm.RefundID == refundID {
			return cm, nil
		}
	}
	return nil, nil
}

// ==================== NOTIFICATIONS ====================

type memNotifications struct{ m *memStore }

func (r memNotifications) CreateBatch(_ context.Context, rows []*entity.Notification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.notifications = append(r.m.notifications, rows...)
	return nil
}

func (r memNotifications) FindByUserID(_ context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	var out []*entity.Notification
	for _, n := range r.m.notificationsFor(userID) {
		if !unreadOnly || n.ReadAt == nil {
			out = append(out, n)
		}
	}
	return page(out, limit, offset), nil
}

func (r memNotifications) CountByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool) (int64, error) {
	all, _ := r.FindByUserID(ctx, userID, unreadOnly, 1<<30, 0)
	return int64(len(all)), nil
}

func (r memNotifications) MarkRead(_ context.Context, id, userID uuid.UUID, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, n := range r.m.notifications {
		if n.ID == id && n.UserID == userID {
			if n.ReadAt == nil {
				n.ReadAt = &at
			}
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

type memTemplates struct{}

func (memTemplates) LookupTemplate(context.Context, string) (string, string, error) {
	return "", "", repository.ErrTemplateNotFound
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ==================== OUTSIDE SYSTEMS ====================

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (s *memStorage) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = buf.Bytes()
	return nil
}

func (s *memStorage) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return "", errors.New("no such key")
	}
	return "https://files.test/" + key, nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStorage) object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	return b, ok
}

type outbox struct {
	mu       sync.Mutex
	messages []mailer.Message
	err      error
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)
	return o.err
}

func (o *outbox) sent() []mailer.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]mailer.Message(nil), o.messages...)
}

type eventLog struct {
	mu     sync.Mutex
	events []messaging.Event
}

func (e *eventLog) Publish(_ context.Context, ev messaging.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return nil
}

func (e *eventLog) Close() error { return nil }

func (e *eventLog) keys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, ev := range e.events {
		out = append(out, ev.RoutingKey())
	}
	return out
}
