package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/AndreiCalugar/FertiHub/internal/cache"
	"github.com/AndreiCalugar/FertiHub/internal/config"
	"github.com/AndreiCalugar/FertiHub/internal/email"
	"github.com/AndreiCalugar/FertiHub/internal/followup"
	"github.com/AndreiCalugar/FertiHub/internal/metrics"
	"github.com/AndreiCalugar/FertiHub/internal/models"
	"github.com/AndreiCalugar/FertiHub/internal/storage"
)

const dayFormat = "2006-01-02"

// IEngagementService is the supplier engagement dispatcher: initial RFQ
// sends, scheduled follow-ups, completion checks and deadline reminders.
type IEngagementService interface {
	RunFollowUpPass(ctx context.Context) (*models.FollowUpPassResult, error)
	FollowUpInquiry(ctx context.Context, inquiryID, userID string, supplierIDs []string) (*models.FollowUpBatchResult, error)
	SendInquiryEmails(ctx context.Context, inquiryID, userID string) (*models.FollowUpBatchResult, error)
	CheckCompletion(ctx context.Context, inquiryID, userID string) (*models.CompletionResult, error)
	RunDeadlineReminderPass(ctx context.Context) (*models.DeadlineReminderResult, error)
}

type engagementService struct {
	cfg                 *config.Config
	inquiryService      IInquiryService
	quoteService        IQuoteService
	notificationService INotificationService
	profileService      IProfileService
	sender              email.Sender
	claims              cache.IFollowUpClaims
	enqueuer            ITaskEnqueuer
	storage             storage.IS3Storage
	now                 func() time.Time
}

// NewEngagementService creates the engagement dispatcher. storageService may
// be nil when S3 is not configured; attachment keys are then passed through
// untranslated. nowFn overrides the clock; pass nil for time.Now.
func NewEngagementService(cfg *config.Config, inquiryService IInquiryService,
	quoteService IQuoteService, notificationService INotificationService,
	profileService IProfileService, sender email.Sender,
	claims cache.IFollowUpClaims, enqueuer ITaskEnqueuer,
	storageService storage.IS3Storage, nowFn func() time.Time) IEngagementService {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &engagementService{
		cfg:                 cfg,
		inquiryService:      inquiryService,
		quoteService:        quoteService,
		notificationService: notificationService,
		profileService:      profileService,
		sender:              sender,
		claims:              claims,
		enqueuer:            enqueuer,
		storage:             storageService,
		now:                 nowFn,
	}
}

// RunFollowUpPass scans every sent or partial inquiry, picks the contacts
// whose follow-up interval has elapsed, and sends a reminder to each after
// winning the per-(contact, day) claim. Per-contact failures are recorded in
// the result, never raised; the pass keeps going.
func (s *engagementService) RunFollowUpPass(ctx context.Context) (*models.FollowUpPassResult, error) {
	start := time.Now()
	defer func() {
		metrics.FollowUpPassDuration.Observe(time.Since(start).Seconds())
	}()

	now := s.now().UTC()
	day := now.Format(dayFormat)
	result := &models.FollowUpPassResult{Details: []models.ContactOutcome{}}

	inquiries, err := s.inquiryService.ListEngagable(ctx)
	if err != nil {
		return nil, err
	}

	for i := range inquiries {
		inquiry := &inquiries[i]
		contacts, err := s.inquiryService.ContactsForInquiry(ctx, inquiry.ID)
		if err != nil {
			log.Printf("Follow-up pass: cannot load contacts for inquiry %s: %v", inquiry.ID, err)
			continue
		}

		var owner *models.UserProfile
		for j := range contacts {
			cw := &contacts[j]
			if !followup.IsDue(&cw.Contact, inquiry.UrgencyLevel, now) {
				continue
			}
			if owner == nil {
				owner, err = s.profileService.GetByID(ctx, inquiry.UserID)
				if err != nil {
					log.Printf("Follow-up pass: cannot load owner %s for inquiry %s: %v", inquiry.UserID, inquiry.ID, err)
					break
				}
			}

			outcome := s.followUpContact(ctx, inquiry, owner, cw, now, day)
			metrics.FollowUpContactsTotal.WithLabelValues(string(outcome.Status)).Inc()
			result.Details = append(result.Details, outcome)
			if outcome.Status == models.OutcomeSent {
				result.FollowedUp++
			}
		}
	}
	return result, nil
}

// followUpContact handles one due contact: undeliverable parking, the day
// claim, the actual send, and the bookkeeping afterwards.
func (s *engagementService) followUpContact(ctx context.Context, inquiry *models.Inquiry,
	owner *models.UserProfile, cw *models.ContactWithSupplier, now time.Time, day string) models.ContactOutcome {
	outcome := models.ContactOutcome{
		InquiryID:    inquiry.ID,
		SupplierID:   cw.Contact.SupplierID,
		SupplierName: cw.Supplier.Name,
	}

	if cw.Supplier.Email == "" {
		if err := s.inquiryService.MarkContactUndeliverable(ctx, cw.Contact.ID); err != nil {
			log.Printf("Failed to park contact %s as undeliverable: %v", cw.Contact.ID, err)
		}
		outcome.Status = models.OutcomeUndeliverable
		outcome.Error = "supplier has no email address"
		return outcome
	}

	won, err := s.claims.Claim(ctx, cw.Contact.ID, day)
	if err != nil {
		outcome.Status = models.OutcomeFailed
		outcome.Error = err.Error()
		return outcome
	}
	if !won {
		outcome.Status = models.OutcomeSkipped
		return outcome
	}

	if err := s.sendFollowUpEmail(ctx, inquiry, owner, cw, now); err != nil {
		// Give the claim back so the next pass today can retry.
		if relErr := s.claims.Release(ctx, cw.Contact.ID, day); relErr != nil {
			log.Printf("Failed to release claim for contact %s: %v", cw.Contact.ID, relErr)
		}
		metrics.EmailsSentTotal.WithLabelValues(string(email.KindFollowUp), "error").Inc()
		outcome.Status = models.OutcomeFailed
		outcome.Error = err.Error()
		return outcome
	}
	metrics.EmailsSentTotal.WithLabelValues(string(email.KindFollowUp), "ok").Inc()

	if err := s.inquiryService.MarkContactFollowedUp(ctx, cw.Contact.ID, now); err != nil {
		log.Printf("Follow-up sent but not recorded for contact %s: %v", cw.Contact.ID, err)
	}
	if _, err := s.notificationService.Create(ctx, inquiry.UserID, models.NotificationFollowUpSent,
		"Follow-up Sent",
		fmt.Sprintf("Automatic follow-up sent to %s for %s", cw.Supplier.Name, inquiry.ProductDescription),
		&inquiry.ID); err != nil {
		log.Printf("Failed to create follow_up_sent notification for inquiry %s: %v", inquiry.ID, err)
	}

	outcome.Status = models.OutcomeSent
	return outcome
}

func (s *engagementService) sendFollowUpEmail(ctx context.Context, inquiry *models.Inquiry,
	owner *models.UserProfile, cw *models.ContactWithSupplier, now time.Time) error {
	category := s.inquiryService.CategoryName(ctx, inquiry.ProductCategoryID)
	if category == "" {
		category = inquiry.ProductDescription
	}

	msg := email.FollowUpEmail(email.FollowUpEmailData{
		SupplierName:       cw.Supplier.Name,
		ContactPerson:      deref(cw.Supplier.ContactPerson),
		OrganizationName:   owner.OrganizationName,
		ProductCategory:    category,
		ProductDescription: inquiry.ProductDescription,
		InquiryID:          inquiry.ID,
		DaysSinceInquiry:   followup.DaysSince(cw.Contact.ContactAnchor(), now),
	})
	msg.To = []string{cw.Supplier.Email}
	return s.sender.Send(ctx, msg)
}

// FollowUpInquiry sends follow-ups for one inquiry on demand, optionally
// limited to a supplier subset. Responded and undeliverable contacts are
// skipped; due-ness is not checked, the user asked explicitly. The day claim
// is still taken so the cron pass will not double up later the same day.
func (s *engagementService) FollowUpInquiry(ctx context.Context, inquiryID, userID string, supplierIDs []string) (*models.FollowUpBatchResult, error) {
	inquiry, err := s.inquiryService.GetOwned(ctx, inquiryID, userID)
	if err != nil {
		return nil, err
	}
	owner, err := s.profileService.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.inquiryService.ContactsForInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}

	var wanted map[string]struct{}
	if len(supplierIDs) > 0 {
		wanted = make(map[string]struct{}, len(supplierIDs))
		for _, id := range supplierIDs {
			wanted[id] = struct{}{}
		}
	}

	now := s.now().UTC()
	day := now.Format(dayFormat)
	result := &models.FollowUpBatchResult{
		Sent:   []models.ContactOutcome{},
		Failed: []models.ContactOutcome{},
	}

	for i := range contacts {
		cw := &contacts[i]
		if wanted != nil {
			if _, ok := wanted[cw.Contact.SupplierID]; !ok {
				continue
			}
		}
		if cw.Contact.ResponseReceived || cw.Contact.EmailStatus == models.EmailStatusUndeliverable {
			continue
		}

		outcome := models.ContactOutcome{
			InquiryID:    inquiryID,
			SupplierID:   cw.Contact.SupplierID,
			SupplierName: cw.Supplier.Name,
		}
		if cw.Supplier.Email == "" {
			if err := s.inquiryService.MarkContactUndeliverable(ctx, cw.Contact.ID); err != nil {
				log.Printf("Failed to park contact %s as undeliverable: %v", cw.Contact.ID, err)
			}
			outcome.Status = models.OutcomeUndeliverable
			outcome.Error = "supplier has no email address"
			result.Failed = append(result.Failed, outcome)
			continue
		}

		if err := s.sendFollowUpEmail(ctx, inquiry, owner, cw, now); err != nil {
			outcome.Status = models.OutcomeFailed
			outcome.Error = err.Error()
			result.Failed = append(result.Failed, outcome)
			continue
		}
		if _, err := s.claims.Claim(ctx, cw.Contact.ID, day); err != nil {
			log.Printf("Failed to claim day slot for contact %s: %v", cw.Contact.ID, err)
		}
		if err := s.inquiryService.MarkContactFollowedUp(ctx, cw.Contact.ID, now); err != nil {
			log.Printf("Follow-up sent but not recorded for contact %s: %v", cw.Contact.ID, err)
		}
		outcome.Status = models.OutcomeSent
		result.Sent = append(result.Sent, outcome)
	}
	return result, nil
}

// SendInquiryEmails dispatches the initial RFQ email to every contact that
// has not received one yet. At least one successful send moves a draft
// inquiry to sent.
func (s *engagementService) SendInquiryEmails(ctx context.Context, inquiryID, userID string) (*models.FollowUpBatchResult, error) {
	inquiry, err := s.inquiryService.GetOwned(ctx, inquiryID, userID)
	if err != nil {
		return nil, err
	}
	owner, err := s.profileService.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.inquiryService.ContactsForInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}

	category := s.inquiryService.CategoryName(ctx, inquiry.ProductCategoryID)
	if category == "" {
		category = inquiry.ProductDescription
	}
	attachmentLink := s.attachmentLink(ctx, deref(inquiry.AttachmentURL))

	now := s.now().UTC()
	result := &models.FollowUpBatchResult{
		Sent:   []models.ContactOutcome{},
		Failed: []models.ContactOutcome{},
	}

	for i := range contacts {
		cw := &contacts[i]
		if cw.Contact.EmailStatus == models.EmailStatusSent ||
			cw.Contact.EmailStatus == models.EmailStatusDelivered ||
			cw.Contact.EmailStatus == models.EmailStatusUndeliverable {
			continue
		}

		outcome := models.ContactOutcome{
			InquiryID:    inquiryID,
			SupplierID:   cw.Contact.SupplierID,
			SupplierName: cw.Supplier.Name,
		}
		if cw.Supplier.Email == "" {
			if err := s.inquiryService.MarkContactUndeliverable(ctx, cw.Contact.ID); err != nil {
				log.Printf("Failed to park contact %s as undeliverable: %v", cw.Contact.ID, err)
			}
			outcome.Status = models.OutcomeUndeliverable
			outcome.Error = "supplier has no email address"
			result.Failed = append(result.Failed, outcome)
			continue
		}

		msg := email.InquiryEmail(email.InquiryEmailData{
			SupplierName:       cw.Supplier.Name,
			ContactPerson:      deref(cw.Supplier.ContactPerson),
			OrganizationName:   owner.OrganizationName,
			ProductCategory:    category,
			ProductDescription: inquiry.ProductDescription,
			Quantity:           inquiry.Quantity,
			UrgencyLevel:       inquiry.UrgencyLevel,
			Notes:              deref(inquiry.Notes),
			InquiryID:          inquiry.ID,
			ReplyEmail:         owner.Email,
			AttachmentURL:      attachmentLink,
		})
		msg.To = []string{cw.Supplier.Email}

		if err := s.sender.Send(ctx, msg); err != nil {
			if markErr := s.inquiryService.MarkContactEmailFailed(ctx, cw.Contact.ID); markErr != nil {
				log.Printf("Failed to record send failure for contact %s: %v", cw.Contact.ID, markErr)
			}
			metrics.EmailsSentTotal.WithLabelValues(string(email.KindInquiryRequest), "error").Inc()
			outcome.Status = models.OutcomeFailed
			outcome.Error = err.Error()
			result.Failed = append(result.Failed, outcome)
			continue
		}
		metrics.EmailsSentTotal.WithLabelValues(string(email.KindInquiryRequest), "ok").Inc()

		if err := s.inquiryService.MarkContactEmailSent(ctx, cw.Contact.ID, now); err != nil {
			log.Printf("RFQ sent but not recorded for contact %s: %v", cw.Contact.ID, err)
		}
		outcome.Status = models.OutcomeSent
		result.Sent = append(result.Sent, outcome)
	}

	if len(result.Sent) > 0 && inquiry.Status == models.InquiryStatusDraft {
		if err := s.inquiryService.SetStatus(ctx, inquiryID, models.InquiryStatusSent); err != nil {
			log.Printf("Failed to move inquiry %s to sent: %v", inquiryID, err)
		}
	}
	return result, nil
}

// CheckCompletion re-evaluates an inquiry's quote coverage from current
// totals. Completion moves the inquiry to completed and fires the one-shot
// all_quotes_received notification and email; the unique index makes repeat
// invocations harmless.
func (s *engagementService) CheckCompletion(ctx context.Context, inquiryID, userID string) (*models.CompletionResult, error) {
	inquiry, err := s.inquiryService.GetOwned(ctx, inquiryID, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.inquiryService.CountContacts(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	quotes, err := s.quoteService.ListForInquiry(ctx, inquiryID)
	if err != nil {
		return nil, err
	}

	comp := followup.EvaluateCompletion(int(total), quotes)
	result := &models.CompletionResult{
		AllQuotesReceived: comp.IsComplete,
		TotalSuppliers:    int(total),
		QuotesReceived:    comp.DistinctRespondedCount,
	}

	if comp.IsComplete {
		if inquiry.Status != models.InquiryStatusCompleted {
			if err := s.inquiryService.SetStatus(ctx, inquiryID, models.InquiryStatusCompleted); err != nil {
				log.Printf("Failed to move inquiry %s to completed: %v", inquiryID, err)
			}
		}
		s.notifyAllQuotesReceived(ctx, inquiry, len(quotes))
	} else if comp.DistinctRespondedCount > 0 && inquiry.Status == models.InquiryStatusSent {
		if err := s.inquiryService.SetStatus(ctx, inquiryID, models.InquiryStatusPartial); err != nil {
			log.Printf("Failed to move inquiry %s to partial: %v", inquiryID, err)
		}
	}
	return result, nil
}

func (s *engagementService) notifyAllQuotesReceived(ctx context.Context, inquiry *models.Inquiry, totalQuotes int) {
	created, err := s.notificationService.CreateOneShot(ctx, inquiry.UserID,
		models.NotificationAllQuotesReceived,
		"All Quotes Received",
		fmt.Sprintf("All suppliers have responded to your inquiry for %s", inquiry.ProductDescription),
		inquiry.ID)
	if err != nil {
		log.Printf("Failed to create all_quotes_received notification for inquiry %s: %v", inquiry.ID, err)
		return
	}
	if !created || s.enqueuer == nil {
		return
	}

	owner, err := s.profileService.GetByID(ctx, inquiry.UserID)
	if err != nil {
		log.Printf("Failed to load owner %s for completion email: %v", inquiry.UserID, err)
		return
	}
	msg := email.AllQuotesReceivedEmail(email.AllQuotesReceivedEmailData{
		OrganizationName:   owner.OrganizationName,
		ProductDescription: inquiry.ProductDescription,
		TotalQuotes:        totalQuotes,
		InquiryID:          inquiry.ID,
		DashboardURL:       fmt.Sprintf("%s/inquiries/%s", s.cfg.AppBaseURL, inquiry.ID),
	})
	msg.To = []string{owner.Email}
	if err := s.enqueuer.EnqueueEmail(ctx, msg); err != nil {
		log.Printf("Failed to enqueue all_quotes_received email for inquiry %s: %v", inquiry.ID, err)
	}
}

// RunDeadlineReminderPass notifies owners of sent or partial inquiries whose
// deadline falls within the configured window (default two days). The daily
// unique index caps this at one reminder per inquiry per UTC day no matter
// how often the cron fires.
func (s *engagementService) RunDeadlineReminderPass(ctx context.Context) (*models.DeadlineReminderResult, error) {
	now := s.now().UTC()
	day := now.Format(dayFormat)
	until := now.Add(time.Duration(s.cfg.DeadlineReminderWindowDays) * 24 * time.Hour)

	inquiries, err := s.inquiryService.ListWithDeadlineBetween(ctx, now, until)
	if err != nil {
		return nil, err
	}

	result := &models.DeadlineReminderResult{Reminders: []models.DeadlineReminder{}}
	for i := range inquiries {
		inquiry := &inquiries[i]
		if inquiry.Deadline == nil {
			continue
		}
		deadline := inquiry.Deadline.UTC().Format(dayFormat)

		created, err := s.notificationService.CreateDaily(ctx, inquiry.UserID,
			models.NotificationDeadlineReminder,
			"Inquiry Deadline Approaching",
			fmt.Sprintf("Your inquiry for %s reaches its deadline on %s", inquiry.ProductDescription, deadline),
			inquiry.ID, day)
		if err != nil {
			log.Printf("Failed to create deadline_reminder notification for inquiry %s: %v", inquiry.ID, err)
			continue
		}
		if !created {
			continue
		}

		result.Reminders = append(result.Reminders, models.DeadlineReminder{
			InquiryID: inquiry.ID,
			UserID:    inquiry.UserID,
			Deadline:  deadline,
		})
		result.RemindersCount++
		s.sendDeadlineReminderEmail(ctx, inquiry, deadline)
	}
	return result, nil
}

func (s *engagementService) sendDeadlineReminderEmail(ctx context.Context, inquiry *models.Inquiry, deadline string) {
	if s.enqueuer == nil {
		return
	}
	owner, err := s.profileService.GetByID(ctx, inquiry.UserID)
	if err != nil {
		log.Printf("Failed to load owner %s for deadline email: %v", inquiry.UserID, err)
		return
	}

	total, err := s.inquiryService.CountContacts(ctx, inquiry.ID)
	if err != nil {
		log.Printf("Failed to count contacts for inquiry %s: %v", inquiry.ID, err)
	}
	quotes, err := s.quoteService.ListForInquiry(ctx, inquiry.ID)
	if err != nil {
		log.Printf("Failed to list quotes for inquiry %s: %v", inquiry.ID, err)
	}
	comp := followup.EvaluateCompletion(int(total), quotes)

	msg := email.DeadlineReminderEmail(email.DeadlineReminderEmailData{
		OrganizationName: owner.OrganizationName,
		ProductName:      inquiry.ProductDescription,
		Deadline:         deadline,
		QuotesReceived:   comp.DistinctRespondedCount,
		TotalSuppliers:   int(total),
		InquiryID:        inquiry.ID,
		DashboardURL:     fmt.Sprintf("%s/inquiries/%s", s.cfg.AppBaseURL, inquiry.ID),
	})
	msg.To = []string{owner.Email}
	if err := s.enqueuer.EnqueueEmail(ctx, msg); err != nil {
		log.Printf("Failed to enqueue deadline_reminder email for inquiry %s: %v", inquiry.ID, err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// attachmentLink turns a stored S3 object key into a time-limited download
// URL for the outbound email. Values that already are URLs pass through, as
// does everything when S3 is not configured.
func (s *engagementService) attachmentLink(ctx context.Context, attachment string) string {
	if attachment == "" || s.storage == nil || strings.HasPrefix(attachment, "http") {
		return attachment
	}
	url, err := s.storage.GeneratePresignedGetURL(ctx, attachment)
	if err != nil {
		log.Printf("Failed to presign attachment %s: %v", attachment, err)
		return attachment
	}
	return url
}
