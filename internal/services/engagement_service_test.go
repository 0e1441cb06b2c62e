package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreiCalugar/FertiHub/internal/config"
	"github.com/AndreiCalugar/FertiHub/internal/email"
	"github.com/AndreiCalugar/FertiHub/internal/models"
)

// fakeInquiryStore is an in-memory IInquiryService covering what the
// dispatcher touches. Mutations are recorded so tests can assert on them.
type fakeInquiryStore struct {
	inquiries map[string]*models.Inquiry
	contacts  map[string][]models.ContactWithSupplier // by inquiry ID
	quoteSvc  *fakeQuoteStore

	followedUp    []string // contact IDs
	undeliverable []string
	emailSent     []string
	emailFailed   []string
	statusChanges map[string]models.InquiryStatus
}

func newFakeInquiryStore() *fakeInquiryStore {
	return &fakeInquiryStore{
		inquiries:     map[string]*models.Inquiry{},
		contacts:      map[string][]models.ContactWithSupplier{},
		statusChanges: map[string]models.InquiryStatus{},
	}
}

func (f *fakeInquiryStore) Create(ctx context.Context, userID string, input *InquiryInput) (*models.Inquiry, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeInquiryStore) List(ctx context.Context, userID string) ([]models.Inquiry, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeInquiryStore) GetOwned(ctx context.Context, inquiryID, userID string) (*models.Inquiry, error) {
	inq, ok := f.inquiries[inquiryID]
	if !ok || inq.UserID != userID {
		return nil, ErrInquiryNotFound
	}
	return inq, nil
}
func (f *fakeInquiryStore) GetDetail(ctx context.Context, inquiryID, userID string) (*InquiryDetail, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeInquiryStore) Delete(ctx context.Context, inquiryID, userID string) error {
	return errors.New("not implemented")
}
func (f *fakeInquiryStore) SetStatus(ctx context.Context, inquiryID string, status models.InquiryStatus) error {
	f.statusChanges[inquiryID] = status
	if inq, ok := f.inquiries[inquiryID]; ok {
		inq.Status = status
	}
	return nil
}
func (f *fakeInquiryStore) ListEngagable(ctx context.Context) ([]models.Inquiry, error) {
	out := []models.Inquiry{}
	for _, inq := range f.inquiries {
		if inq.Status == models.InquiryStatusSent || inq.Status == models.InquiryStatusPartial {
			out = append(out, *inq)
		}
	}
	return out, nil
}
func (f *fakeInquiryStore) ListWithDeadlineBetween(ctx context.Context, from, to time.Time) ([]models.Inquiry, error) {
	out := []models.Inquiry{}
	for _, inq := range f.inquiries {
		if inq.Deadline == nil || inq.Status == models.InquiryStatusDraft || inq.Status == models.InquiryStatusCompleted {
			continue
		}
		if !inq.Deadline.Before(from) && inq.Deadline.Before(to) {
			out = append(out, *inq)
		}
	}
	return out, nil
}
func (f *fakeInquiryStore) ContactsForInquiry(ctx context.Context, inquiryID string) ([]models.ContactWithSupplier, error) {
	return f.contacts[inquiryID], nil
}
func (f *fakeInquiryStore) CountContacts(ctx context.Context, inquiryID string) (int64, error) {
	return int64(len(f.contacts[inquiryID])), nil
}
func (f *fakeInquiryStore) MarkContactEmailSent(ctx context.Context, contactID string, at time.Time) error {
	f.emailSent = append(f.emailSent, contactID)
	f.mutateContact(contactID, func(c *models.InquirySupplier) {
		c.EmailSentAt = &at
		c.EmailStatus = models.EmailStatusSent
	})
	return nil
}
func (f *fakeInquiryStore) MarkContactEmailFailed(ctx context.Context, contactID string) error {
	f.emailFailed = append(f.emailFailed, contactID)
	f.mutateContact(contactID, func(c *models.InquirySupplier) {
		c.EmailStatus = models.EmailStatusFailed
	})
	return nil
}
func (f *fakeInquiryStore) MarkContactFollowedUp(ctx context.Context, contactID string, at time.Time) error {
	f.followedUp = append(f.followedUp, contactID)
	f.mutateContact(contactID, func(c *models.InquirySupplier) {
		c.LastFollowedUpAt = &at
	})
	return nil
}
func (f *fakeInquiryStore) MarkContactUndeliverable(ctx context.Context, contactID string) error {
	f.undeliverable = append(f.undeliverable, contactID)
	f.mutateContact(contactID, func(c *models.InquirySupplier) {
		c.EmailStatus = models.EmailStatusUndeliverable
	})
	return nil
}
func (f *fakeInquiryStore) MarkContactResponded(ctx context.Context, inquiryID, supplierID string) error {
	return nil
}
func (f *fakeInquiryStore) CategoryName(ctx context.Context, categoryID *string) string { return "" }

func (f *fakeInquiryStore) mutateContact(contactID string, fn func(*models.InquirySupplier)) {
	for inqID := range f.contacts {
		for i := range f.contacts[inqID] {
			if f.contacts[inqID][i].Contact.ID == contactID {
				fn(&f.contacts[inqID][i].Contact)
			}
		}
	}
}

type fakeQuoteStore struct {
	quotes map[string][]models.Quote // by inquiry ID
}

func (f *fakeQuoteStore) Create(ctx context.Context, userID string, input *QuoteInput) (*models.Quote, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeQuoteStore) ListByInquiry(ctx context.Context, inquiryID, userID string) ([]models.Quote, error) {
	return f.quotes[inquiryID], nil
}
func (f *fakeQuoteStore) ListForInquiry(ctx context.Context, inquiryID string) ([]models.Quote, error) {
	return f.quotes[inquiryID], nil
}
func (f *fakeQuoteStore) Delete(ctx context.Context, quoteID, userID string) error {
	return errors.New("not implemented")
}

type createdNotification struct {
	userID    string
	typ       models.NotificationType
	inquiryID string
	day       string
}

type fakeNotificationStore struct {
	created []createdNotification
	unique  map[string]bool // dedupe key for one-shot/daily
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{unique: map[string]bool{}}
}

func (f *fakeNotificationStore) Create(ctx context.Context, userID string, typ models.NotificationType, title, message string, inquiryID *string) (*models.Notification, error) {
	id := ""
	if inquiryID != nil {
		id = *inquiryID
	}
	f.created = append(f.created, createdNotification{userID: userID, typ: typ, inquiryID: id})
	return &models.Notification{}, nil
}
func (f *fakeNotificationStore) CreateOneShot(ctx context.Context, userID string, typ models.NotificationType, title, message string, inquiryID string) (bool, error) {
	key := fmt.Sprintf("%s|%s|%s", userID, inquiryID, typ)
	if f.unique[key] {
		return false, nil
	}
	f.unique[key] = true
	f.created = append(f.created, createdNotification{userID: userID, typ: typ, inquiryID: inquiryID})
	return true, nil
}
func (f *fakeNotificationStore) CreateDaily(ctx context.Context, userID string, typ models.NotificationType, title, message string, inquiryID string, day string) (bool, error) {
	key := fmt.Sprintf("%s|%s|%s|%s", userID, inquiryID, typ, day)
	if f.unique[key] {
		return false, nil
	}
	f.unique[key] = true
	f.created = append(f.created, createdNotification{userID: userID, typ: typ, inquiryID: inquiryID, day: day})
	return true, nil
}
func (f *fakeNotificationStore) List(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]models.Notification, error) {
	return nil, nil
}
func (f *fakeNotificationStore) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}
func (f *fakeNotificationStore) MarkRead(ctx context.Context, userID, notificationID string) error {
	return nil
}
func (f *fakeNotificationStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}
func (f *fakeNotificationStore) DeleteByInquiry(ctx context.Context, inquiryID string) error {
	return nil
}

type fakeProfileStore struct {
	profiles map[string]*models.UserProfile
}

func (f *fakeProfileStore) Register(ctx context.Context, email, password string, input *ProfileInput) (*models.UserProfile, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeProfileStore) Authenticate(ctx context.Context, email, password string) (*models.UserProfile, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeProfileStore) GetByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p, nil
}
func (f *fakeProfileStore) Update(ctx context.Context, userID string, input *ProfileInput) (*models.UserProfile, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeProfileStore) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	return errors.New("not implemented")
}

// fakeSender records sends and can fail for chosen addresses.
type fakeSender struct {
	sent   []*email.Message
	failTo map[string]bool
}

func (f *fakeSender) Send(ctx context.Context, msg *email.Message) error {
	if len(msg.To) > 0 && f.failTo[msg.To[0]] {
		return errors.New("smtp error: connection refused")
	}
	f.sent = append(f.sent, msg)
	return nil
}

// fakeClaims is an in-memory per-(contact, day) claim table.
type fakeClaims struct {
	taken map[string]bool
}

func newFakeClaims() *fakeClaims { return &fakeClaims{taken: map[string]bool{}} }

func (f *fakeClaims) key(contactID, day string) string { return contactID + "|" + day }
func (f *fakeClaims) Claim(ctx context.Context, contactID, day string) (bool, error) {
	k := f.key(contactID, day)
	if f.taken[k] {
		return false, nil
	}
	f.taken[k] = true
	return true, nil
}
func (f *fakeClaims) Release(ctx context.Context, contactID, day string) error {
	delete(f.taken, f.key(contactID, day))
	return nil
}

type fakeEnqueuer struct {
	enqueued []*email.Message
}

func (f *fakeEnqueuer) EnqueueEmail(ctx context.Context, msg *email.Message) error {
	f.enqueued = append(f.enqueued, msg)
	return nil
}

// fakeStorage hands out deterministic presigned URLs.
type fakeStorage struct {
	presigned []string
}

func (f *fakeStorage) GenerateQuoteUploadURL(ctx context.Context, userID, inquiryID, filename, contentType string) (string, string, error) {
	return "https://s3.test/put/quote", "quotes/" + userID + "/" + inquiryID + "/" + filename, nil
}

func (f *fakeStorage) GenerateAttachmentUploadURL(ctx context.Context, userID, inquiryID, filename, contentType string) (string, string, error) {
	return "https://s3.test/put/attachment", "attachments/" + userID + "/" + inquiryID + "/" + filename, nil
}

func (f *fakeStorage) GeneratePresignedGetURL(ctx context.Context, objectKey string) (string, error) {
	f.presigned = append(f.presigned, objectKey)
	return "https://s3.test/get/" + objectKey, nil
}

// --- fixture ---

type engagementFixture struct {
	svc           IEngagementService
	inquiries     *fakeInquiryStore
	quotes        *fakeQuoteStore
	notifications *fakeNotificationStore
	profiles      *fakeProfileStore
	sender        *fakeSender
	claims        *fakeClaims
	enqueuer      *fakeEnqueuer
	storage       *fakeStorage
	now           time.Time
}

func newEngagementFixture(t *testing.T, now time.Time) *engagementFixture {
	t.Helper()
	f := &engagementFixture{
		inquiries:     newFakeInquiryStore(),
		quotes:        &fakeQuoteStore{quotes: map[string][]models.Quote{}},
		notifications: newFakeNotificationStore(),
		profiles:      &fakeProfileStore{profiles: map[string]*models.UserProfile{}},
		sender:        &fakeSender{failTo: map[string]bool{}},
		claims:        newFakeClaims(),
		enqueuer:      &fakeEnqueuer{},
		storage:       &fakeStorage{},
		now:           now,
	}
	cfg := &config.Config{
		AppBaseURL:                 "http://localhost:3000",
		DeadlineReminderWindowDays: 2,
	}
	f.svc = NewEngagementService(cfg, f.inquiries, f.quotes, f.notifications,
		f.profiles, f.sender, f.claims, f.enqueuer, f.storage,
		func() time.Time { return f.now })
	return f
}

func (f *engagementFixture) addOwner(id string) {
	f.profiles.profiles[id] = &models.UserProfile{
		Base:             models.Base{ID: id},
		Email:            id + "@lab.example",
		OrganizationName: "Aurora Fertility Lab",
	}
}

func (f *engagementFixture) addInquiry(id, userID string, urgency int, status models.InquiryStatus) *models.Inquiry {
	inq := &models.Inquiry{
		Base:               models.Base{ID: id},
		UserID:             userID,
		ProductDescription: "Sequential culture media",
		Quantity:           10,
		UrgencyLevel:       urgency,
		Status:             status,
		CreatedAt:          f.now.Add(-30 * 24 * time.Hour),
	}
	f.inquiries.inquiries[id] = inq
	return inq
}

func (f *engagementFixture) addContact(inquiryID, contactID, supplierID, supplierEmail string, sentAgo time.Duration) {
	contact := models.InquirySupplier{
		Base:        models.Base{ID: contactID},
		InquiryID:   inquiryID,
		SupplierID:  supplierID,
		EmailStatus: models.EmailStatusSent,
		CreatedAt:   f.now.Add(-sentAgo - time.Hour),
	}
	sentAt := f.now.Add(-sentAgo)
	contact.EmailSentAt = &sentAt

	f.inquiries.contacts[inquiryID] = append(f.inquiries.contacts[inquiryID], models.ContactWithSupplier{
		Contact: contact,
		Supplier: models.Supplier{
			Base:  models.Base{ID: supplierID},
			Name:  "Supplier " + supplierID,
			Email: supplierEmail,
		},
	})
}

var testNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

// --- tests ---

func TestRunFollowUpPass_SendsDueContacts(t *testing.T) {
	f := newEngagementFixture(t, testNow)
	f.addOwner("user-1")
	f.addInquiry("inq-1", "user-1", 5, models.InquiryStatusSent) // urgency 5 -> 1 day interval
	f.addContact("inq-1", "c-due", "sup-1", "due@supplier.example", 2*24*time.Hour)
	f.addContact("inq-1", "c-fresh", "sup-2", "fresh@supplier.example", 2*time.Hour)

	result, err := f.svc.RunFollowUpPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.FollowedUp)
	require.Len(t, result.Details, 1)
	assert.Equal(t, models.OutcomeSent, result.Details[0].Status)
	assert.Equal(t, "sup-1", result.Details[0].SupplierID)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, []string{"due@supplier.example"}, f.sender.sent[0].To)
	assert.Equal(t, email.KindFollowUp, f.sender.sent[0].Kind)

	assert.Equal(t, []string{"c-due"}, f.inquiries.followedUp)
	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, models.NotificationFollowUpSent, f.notifications.created[0].typ)
}

func TestRunFollowUpPass_SecondPassSameDaySkips(t *testing.T) {
	f := newEngagementFixture(t, testNow)
	f.addOwner("user-1")
	f.addInquiry("inq-1", "user-1", 5, models.InquiryStatusSent)
	f.addContact("inq-1", "c-1", "sup-1", "sup@supplier.example", 2*24*time.Hour)

	_, err := f.svc.RunFollowUpPass(context.Background())
	require.NoError(t, err)

	// Model a racing replica reading a stale row: the follow-up write is
	// rolled back so the contact still looks due. Only the claim stands
	// between it and a duplicate send.
	f.inquiries.contacts["inq-1"][0].Contact.LastFollowedUpAt = nil

	result, err := f.svc.RunFollowUpPass(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.FollowedUp)
	require.Len(t, result.Details, 1)
	assert.Equal(t, models.OutcomeSkipped, result.Details[0].Status)
	assert.Len(t, f.sender.sent, 1, "no second email on the same day")
}

func TestRunFollowUpPass_MissingEmailParksContact(t *testing.T) {
	f := newEngagementFixture(t, testNow)
	f.addOwner("user-1")
	f.addInquiry("inq-1", "user-1", 3, models.InquiryStatusSent) // 3 day interval
	f.addContact("inq-1", "c-1", "sup-1", "", 5*24*time.Hour)

	result, err := f.svc.RunFollowUpPass(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Details, 1)
	assert.Equal(t, models.OutcomeUndeliverable, result.Details[0].Status)
	assert.Equal(t, []string{"c-1"}, f.inquiries.undeliverable)
	assert.Empty(t, f.sender.sent)

	// Parked contacts never come back: the next pass sees the terminal
	// status and does not select them.
	result, err = f.svc.RunFollowUpPass(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Details)
	assert.Len(t, f.inquiries.undeliverable, 1)
}

func TestRunFollowUpPass_SendFailureReleasesClaim(t *testing.T) {
	f := newEngagementFixture(t, testNow)
	f.addOwner("user-1")
	f.addInquiry("inq-1", "user-1", 5, models.InquiryStatusSent)
	f.addContact("inq-1", "c-1", "sup-1", "broken@supplier.example", 2*24*time.Hour)
	f.sender.failTo["broken@supplier.example"] = true

	result, err := f.svc.RunFollowUpPass(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Details, 1)
	assert.Equal(t, models.OutcomeFailed, result.Details[0].Status)
	assert.NotEmpty(t, result.Details[0].Error)
	assert.Empty(t, f.inquiries.followedUp)

	// The claim was given back, so a retry pass can send once the provider
	// recovers.
	f.sender.failTo = map[string]bool{}
	result, err = f.svc.RunFollowUpPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.FollowedUp)
}

func TestRunFollowUpPass_RespondedContactNotSelected(t *testing.T) {
	f := newEngagementFixture(t, testNow)
	f.addOwner("user-1")
	f.addInquiry("inq-1", "user-1", 5, models.InquiryStatusPartial)
	f.addContact("inq-1", "c-1", "sup-1", "sup@supplier.example", 10*24*time.Hour)
	f.inquiries.contacts["inq-1"][0].Contact.ResponseReceived = true

	result, err := f.svc.RunFollowUpPass(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Details)
	assert.Empty(t, f.sender.sent)
}

func TestFollowUpInquiry_SupplierSubset(t *testing.T) {
	f := newEngagementFixture(t, testNow)
	f.addOwner("user-1")
	f.addInquiry("inq-1", "user-1", 2, models.InquiryStatusSent)
	// Neither contact is due yet; manual follow-up sends anyway.
	f.addContact("inq-1", "c-1", "sup-1", "one@supplier.example", time.Hour)
	f.addContact("inq-1", "c-2", "sup-2", "two@supplier.example", time.Hour)

	result, err := f.svc.FollowUpInquiry(context.Background(), "inq-1", "user-1", []string{"sup-2"})
	require.NoError(t, err)

	require.Len(t, result.Sent, 1)
	assert.Equal(t, "sup-2", result.Sent[0].SupplierID)
	assert.Empty(t, result.Failed)
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, []string{"two@supplier.example"}, f.sender.sent[0].To)
}

func TestFollowUpInquiry_OwnershipEnforced(t *testing.T) {
	f := newEngagementFixture(t, testNow)
	f.addOwner("user-1")
	f.addInquiry("inq-1", "user-1", 3, models.InquiryStatusSent)

	_, err := f.svc.FollowUpInquiry(context.Background(), "inq-1", "intruder", nil)
	assert.ErrorIs(t, err, ErrInquiryNotFound)
}

func TestSendInquiryEmails_MovesDraftToSent(t *testing.T) {
	f := newEngagementFixture(t, testNow)
	f.addOwner("user-1")
	inq := f.addInquiry("inq-1", "user-1", 4, models.InquiryStatusDraft)
	f.addContact("inq-1", "c-1", "sup-1", "one@supplier.example", 0)
	f.addContact("inq-1", "c-2", "sup-2", "", 0)
	// Fresh contacts have no initial send yet.
	for i := range f.inquiries.contacts["inq-1"] {
		f.inquiries.contacts["inq-1"][i].Contact.EmailSentAt = nil
		f.inquiries.contacts["inq-1"][i].Contact.EmailStatus = models.EmailStatusPending
	}

	result, err := f.svc.SendInquiryEmails(context.Background(), "inq-1", "user-1")
	require.NoError(t, err)

	require.Len(t, result.Sent, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, models.OutcomeUndeliverable, result.Failed[0].Status)
	assert.Equal(t, models.InquiryStatusSent, inq.Status)
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, email.KindInquiryRequest, f.sender.sent[0].Kind)
}

func TestSendInquiryEmails_AttachmentKeyPresigned(t *testing.T) {
	f := newEngagementFixture(t, testNow)
	f.addOwner("user-1")
	inq := f.addInquiry("inq-1", "user-1", 3, models.InquiryStatusDraft)
	objectKey := "attachments/user-1/inq-1/spec.pdf"
	inq.AttachmentURL = &objectKey
	f.addContact("inq-1", "c-1", "sup-1", "one@supplier.example", 0)
	for i := range f.inquiries.contacts["inq-1"] {
		f.inquiries.contacts["inq-1"][i].Contact.EmailSentAt = nil
		f.inquiries.contacts["inq-1"][i].Contact.EmailStatus = models.EmailStatusPending
	}

	_, err := f.svc.SendInquiryEmails(context.Background(), "inq-1", "user-1")
	require.NoError(t, err)

	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0].HTML, "https://s3.test/get/"+objectKey)
	assert.Equal(t, []string{objectKey}, f.storage.presigned)
}

func TestSendInquiryEmails_AttachmentURLPassedThrough(t *testing.T) {
	f := newEngagementFixture(t, testNow)
	f.addOwner("user-1")
	inq := f.addInquiry("inq-1", "user-1", 3, models.InquiryStatusDraft)
	link := "https://files.example/spec.pdf"
	inq.AttachmentURL = &link
	f.addContact("inq-1", "c-1", "sup-1", "one@supplier.example", 0)
	for i := range f.inquiries.contacts["inq-1"] {
		f.inquiries.contacts["inq-1"][i].Contact.EmailSentAt = nil
		f.inquiries.contacts["inq-1"][i].Contact.EmailStatus = models.EmailStatusPending
	}

	_, err := f.svc.SendInquiryEmails(context.Background(), "inq-1", "user-1")
	require.NoError(t, err)

	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0].HTML, link)
	assert.Empty(t, f.storage.presigned)
}

func TestCheckCompletion_AllQuotesReceived(t *testing.T) {
	f := newEngagementFixture(t, testNow)
	f.addOwner("user-1")
	inq := f.addInquiry("inq-1", "user-1", 3, models.InquiryStatusPartial)
	f.addContact("inq-1", "c-1", "sup-1", "one@supplier.example", 24*time.Hour)
	f.addContact("inq-1", "c-2", "sup-2", "two@supplier.example", 24*time.Hour)
	f.quotes.quotes["inq-1"] = []models.Quote{
		{InquiryID: "inq-1", SupplierID: "sup-1"},
		{InquiryID: "inq-1", SupplierID: "sup-2"},
		{InquiryID: "inq-1", SupplierID: "sup-2"}, // revision, must not inflate
	}

	result, err := f.svc.CheckCompletion(context.Background(), "inq-1", "user-1")
	require.NoError(t, err)

	assert.True(t, result.AllQuotesReceived)
	assert.Equal(t, 2, result.TotalSuppliers)
	assert.Equal(t, 2, result.QuotesReceived)
	assert.Equal(t, models.InquiryStatusCompleted, inq.Status)

	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, models.NotificationAllQuotesReceived, f.notifications.created[0].typ)
	require.Len(t, f.enqueuer.enqueued, 1)
	assert.Equal(t, email.KindAllQuotesReceived, f.enqueuer.enqueued[0].Kind)

	// A repeat check must not notify again.
	_, err = f.svc.CheckCompletion(context.Background(), "inq-1", "user-1")
	require.NoError(t, err)
	assert.Len(t, f.notifications.created, 1)
	assert.Len(t, f.enqueuer.enqueued, 1)
}

func TestCheckCompletion_PartialMovesStatus(t *testing.T) {
	f := newEngagementFixture(t, testNow)
	f.addOwner("user-1")
	inq := f.addInquiry("inq-1", "user-1", 3, models.InquiryStatusSent)
	f.addContact("inq-1", "c-1", "sup-1", "one@supplier.example", 24*time.Hour)
	f.addContact("inq-1", "c-2", "sup-2", "two@supplier.example", 24*time.Hour)
	f.quotes.quotes["inq-1"] = []models.Quote{{InquiryID: "inq-1", SupplierID: "sup-1"}}

	result, err := f.svc.CheckCompletion(context.Background(), "inq-1", "user-1")
	require.NoError(t, err)

	assert.False(t, result.AllQuotesReceived)
	assert.Equal(t, 1, result.QuotesReceived)
	assert.Equal(t, models.InquiryStatusPartial, inq.Status)
	assert.Empty(t, f.notifications.created)
}

func TestRunDeadlineReminderPass_OncePerDay(t *testing.T) {
	f := newEngagementFixture(t, testNow)
	f.addOwner("user-1")
	inq := f.addInquiry("inq-1", "user-1", 3, models.InquiryStatusSent)
	deadline := testNow.Add(36 * time.Hour)
	inq.Deadline = &deadline
	f.addContact("inq-1", "c-1", "sup-1", "one@supplier.example", 24*time.Hour)

	result, err := f.svc.RunDeadlineReminderPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.RemindersCount)
	require.Len(t, result.Reminders, 1)
	assert.Equal(t, "inq-1", result.Reminders[0].InquiryID)
	require.Len(t, f.enqueuer.enqueued, 1)
	assert.Equal(t, email.KindDeadlineReminder, f.enqueuer.enqueued[0].Kind)

	// Same day, second cron fire: nothing new.
	result, err = f.svc.RunDeadlineReminderPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.RemindersCount)
	assert.Len(t, f.enqueuer.enqueued, 1)

	// Next day it may remind again.
	f.now = f.now.Add(24 * time.Hour)
	result, err = f.svc.RunDeadlineReminderPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.RemindersCount)
}

func TestRunDeadlineReminderPass_OutsideWindow(t *testing.T) {
	f := newEngagementFixture(t, testNow)
	f.addOwner("user-1")
	inq := f.addInquiry("inq-1", "user-1", 3, models.InquiryStatusSent)
	deadline := testNow.Add(5 * 24 * time.Hour)
	inq.Deadline = &deadline

	result, err := f.svc.RunDeadlineReminderPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.RemindersCount)
}
