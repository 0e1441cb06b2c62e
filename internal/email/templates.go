package email

import (
	"fmt"
	"strings"
)

// InquiryEmailData feeds the initial RFQ email sent to a supplier.
type InquiryEmailData struct {
	SupplierName       string
	ContactPerson      string
	OrganizationName   string
	ProductCategory    string
	ProductDescription string
	Quantity           int
	UrgencyLevel       int
	Notes              string
	InquiryID          string
	ReplyEmail         string
	AttachmentURL      string
}

// FollowUpEmailData feeds the reminder email sent to a non-responding supplier.
type FollowUpEmailData struct {
	SupplierName       string
	ContactPerson      string
	OrganizationName   string
	ProductCategory    string
	ProductDescription string
	InquiryID          string
	DaysSinceInquiry   int
}

// QuoteReceivedEmailData feeds the buyer-facing "new quote" email.
type QuoteReceivedEmailData struct {
	OrganizationName string
	SupplierName     string
	ProductName      string
	TotalPrice       float64
	Currency         string
	InquiryID        string
	DashboardURL     string
}

// AllQuotesReceivedEmailData feeds the buyer-facing completion email.
type AllQuotesReceivedEmailData struct {
	OrganizationName   string
	ProductDescription string
	TotalQuotes        int
	InquiryID          string
	DashboardURL       string
}

// DeadlineReminderEmailData feeds the buyer-facing deadline email.
type DeadlineReminderEmailData struct {
	OrganizationName string
	ProductName      string
	Deadline         string
	QuotesReceived   int
	TotalSuppliers   int
	InquiryID        string
	DashboardURL     string
}

func shortRef(inquiryID string) string {
	if len(inquiryID) > 8 {
		return inquiryID[:8]
	}
	return inquiryID
}

func greetingName(contactPerson, supplierName string) string {
	if contactPerson != "" {
		return contactPerson
	}
	return supplierName
}

func wrapBody(header, inner, footerRef string) string {
	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"></head>`)
	sb.WriteString(`<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">`)
	sb.WriteString(fmt.Sprintf(`<div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 30px; text-align: center; border-radius: 10px 10px 0 0;"><h1 style="color: white; margin: 0;">%s</h1></div>`, header))
	sb.WriteString(`<div style="background: #ffffff; padding: 30px; border: 1px solid #e0e0e0; border-top: none;">`)
	sb.WriteString(inner)
	sb.WriteString(`</div>`)
	sb.WriteString(fmt.Sprintf(`<div style="background: #f9fafb; padding: 20px; text-align: center; border-radius: 0 0 10px 10px; font-size: 12px; color: #666;"><p style="margin: 0;">Sent via <strong>FertiHub</strong> - IVF Procurement Platform</p><p style="margin: 10px 0 0 0;">Reference ID: %s</p></div>`, footerRef))
	sb.WriteString(`</body></html>`)
	return sb.String()
}

// InquiryEmail renders the initial RFQ message for one supplier.
func InquiryEmail(data InquiryEmailData) *Message {
	urgencyText := "🟢 Low Priority"
	if data.UrgencyLevel >= 4 {
		urgencyText = "🔴 URGENT"
	} else if data.UrgencyLevel == 3 {
		urgencyText = "🟡 Normal Priority"
	}

	var inner strings.Builder
	inner.WriteString(fmt.Sprintf(`<p>Dear %s,</p><p>We are writing to request a quotation for the following product(s):</p>`, greetingName(data.ContactPerson, data.SupplierName)))
	inner.WriteString(`<div style="background: #f9fafb; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #667eea;"><table style="width: 100%; border-collapse: collapse;">`)
	inner.WriteString(fmt.Sprintf(`<tr><td style="padding: 8px 0; font-weight: bold; width: 40%%;">Organization:</td><td style="padding: 8px 0;">%s</td></tr>`, data.OrganizationName))
	inner.WriteString(fmt.Sprintf(`<tr><td style="padding: 8px 0; font-weight: bold;">Product Category:</td><td style="padding: 8px 0;">%s</td></tr>`, data.ProductCategory))
	inner.WriteString(fmt.Sprintf(`<tr><td style="padding: 8px 0; font-weight: bold;">Description:</td><td style="padding: 8px 0;">%s</td></tr>`, data.ProductDescription))
	inner.WriteString(fmt.Sprintf(`<tr><td style="padding: 8px 0; font-weight: bold;">Quantity:</td><td style="padding: 8px 0;">%d</td></tr>`, data.Quantity))
	inner.WriteString(fmt.Sprintf(`<tr><td style="padding: 8px 0; font-weight: bold;">Priority:</td><td style="padding: 8px 0;">%s</td></tr>`, urgencyText))
	if data.Notes != "" {
		inner.WriteString(fmt.Sprintf(`<tr><td style="padding: 8px 0; font-weight: bold; vertical-align: top;">Additional Notes:</td><td style="padding: 8px 0;">%s</td></tr>`, data.Notes))
	}
	inner.WriteString(`</table></div>`)
	if data.AttachmentURL != "" {
		inner.WriteString(fmt.Sprintf(`<p>📎 <a href="%s" style="color: #0284c7;">Download Specification Document</a></p>`, data.AttachmentURL))
	}
	inner.WriteString(`<p><strong>Please provide the following information in your quotation:</strong></p><ul style="line-height: 1.8;"><li>Product name and model number</li><li>Unit price and total price</li><li>Currency</li><li>Lead time / delivery time</li><li>Quotation validity period</li></ul>`)
	inner.WriteString(fmt.Sprintf(`<p>Please reply directly to this email with your quotation at your earliest convenience.</p><p style="margin-bottom: 0;">Best regards,<br><strong>%s</strong><br><a href="mailto:%s" style="color: #667eea;">%s</a></p>`, data.OrganizationName, data.ReplyEmail, data.ReplyEmail))

	return &Message{
		Subject: fmt.Sprintf("RFQ: %s - %s", data.ProductCategory, data.OrganizationName),
		HTML:    wrapBody("Request for Quotation", inner.String(), data.InquiryID),
		Kind:    KindInquiryRequest,
	}
}

// FollowUpEmail renders the reminder message for a supplier that has not
// responded yet.
func FollowUpEmail(data FollowUpEmailData) *Message {
	var inner strings.Builder
	inner.WriteString(fmt.Sprintf(`<p>Dear %s,</p>`, greetingName(data.ContactPerson, data.SupplierName)))
	inner.WriteString(fmt.Sprintf(`<p>We are following up on the quotation request we sent %d day(s) ago regarding:</p>`, data.DaysSinceInquiry))
	inner.WriteString(fmt.Sprintf(`<div style="background: #fff4e6; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #f59e0b;"><p style="margin: 0;"><strong>%s</strong></p><p style="margin: 10px 0 0 0;">%s</p></div>`, data.ProductCategory, data.ProductDescription))
	inner.WriteString(`<p>We would greatly appreciate your quotation. If you have already sent it, please disregard this reminder.</p>`)
	inner.WriteString(fmt.Sprintf(`<p style="margin-bottom: 0;">Best regards,<br><strong>%s</strong></p>`, data.OrganizationName))

	return &Message{
		Subject: fmt.Sprintf("Follow-up: RFQ - %s (Ref: %s)", data.ProductCategory, shortRef(data.InquiryID)),
		HTML:    wrapBody("Quotation Request Follow-up", inner.String(), data.InquiryID),
		Kind:    KindFollowUp,
	}
}

// QuoteReceivedEmail renders the buyer notification for a newly recorded quote.
func QuoteReceivedEmail(data QuoteReceivedEmailData) *Message {
	var inner strings.Builder
	inner.WriteString(fmt.Sprintf(`<p>Hi %s,</p><p>Great news! You've received a new quotation:</p>`, data.OrganizationName))
	inner.WriteString(fmt.Sprintf(`<div style="background: #f0fdf4; padding: 20px; border-radius: 8px; margin: 20px 0;"><p><strong>Supplier:</strong> %s</p><p><strong>Product:</strong> %s</p><p><strong>Price:</strong> %s %.2f</p></div>`, data.SupplierName, data.ProductName, data.Currency, data.TotalPrice))
	inner.WriteString(fmt.Sprintf(`<p><a href="%s" style="display: inline-block; background: #667eea; color: white; padding: 14px 30px; text-decoration: none; border-radius: 6px; font-weight: bold;">View Quote</a></p>`, data.DashboardURL))

	return &Message{
		Subject: fmt.Sprintf("New Quote Received - %s", data.SupplierName),
		HTML:    wrapBody("✓ New Quote Received!", inner.String(), data.InquiryID),
		Kind:    KindQuoteReceived,
	}
}

// AllQuotesReceivedEmail renders the buyer notification for inquiry completion.
func AllQuotesReceivedEmail(data AllQuotesReceivedEmailData) *Message {
	var inner strings.Builder
	inner.WriteString(fmt.Sprintf(`<p>Hi %s,</p><p>Excellent news! All suppliers have responded to your inquiry.</p>`, data.OrganizationName))
	inner.WriteString(fmt.Sprintf(`<div style="background: #fef3c7; padding: 20px; border-radius: 8px; margin: 20px 0; text-align: center;"><p style="margin: 0;"><strong>Product:</strong> %s</p><p style="margin: 10px 0 0 0; font-size: 24px; color: #d97706;"><strong>%d Quotes</strong> received</p></div>`, data.ProductDescription, data.TotalQuotes))
	inner.WriteString(fmt.Sprintf(`<p>Now you can compare all the quotes side-by-side and make the best decision for your lab.</p><p><a href="%s" style="display: inline-block; background: #667eea; color: white; padding: 14px 30px; text-decoration: none; border-radius: 6px; font-weight: bold;">Compare Quotes Now</a></p>`, data.DashboardURL))

	return &Message{
		Subject: fmt.Sprintf("All Quotes Received - %s", data.ProductDescription),
		HTML:    wrapBody("🎉 All Quotes Received!", inner.String(), data.InquiryID),
		Kind:    KindAllQuotesReceived,
	}
}

// DeadlineReminderEmail renders the buyer notification for an approaching
// inquiry deadline.
func DeadlineReminderEmail(data DeadlineReminderEmailData) *Message {
	var inner strings.Builder
	inner.WriteString(fmt.Sprintf(`<p>Hi %s,</p><p>This is a reminder that your inquiry deadline is approaching:</p>`, data.OrganizationName))
	inner.WriteString(fmt.Sprintf(`<div style="background: #fff4e6; padding: 20px; border-radius: 8px; margin: 20px 0;"><p><strong>Product:</strong> %s</p><p><strong>Deadline:</strong> %s</p><p><strong>Quotes Received:</strong> %d of %d</p></div>`, data.ProductName, data.Deadline, data.QuotesReceived, data.TotalSuppliers))
	inner.WriteString(fmt.Sprintf(`<p>You may want to follow up with suppliers who haven't responded yet.</p><p><a href="%s" style="display: inline-block; background: #667eea; color: white; padding: 14px 30px; text-decoration: none; border-radius: 6px; font-weight: bold;">View Inquiry</a></p>`, data.DashboardURL))

	return &Message{
		Subject: fmt.Sprintf("Inquiry Deadline Reminder - %s", data.ProductName),
		HTML:    wrapBody("⏰ Deadline Reminder", inner.String(), data.InquiryID),
		Kind:    KindDeadlineReminder,
	}
}
