// Package notify composes and sends the application's email
// notifications: split invitations, payment reminders, and recurring
// bill confirmations.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// currencySymbols maps ISO currency codes to display symbols. Unknown
// codes fall back to the code itself.
var currencySymbols = map[string]string{
	"USD": "$",
	"INR": "₹",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "C$",
	"AUD": "A$",
	"CHF": "CHF",
	"CNY": "¥",
	"SEK": "kr",
	"NZD": "NZ$",
	"MXN": "$",
	"SGD": "S$",
	"HKD": "HK$",
	"NOK": "kr",
}

// FormatAmount renders an amount with its currency symbol, e.g.
// "$12.50" or "₹300.00".
func FormatAmount(amount float64, currency string) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency
	}
	return symbol + decimal.NewFromFloat(amount).StringFixed(2)
}

// Dispatcher builds notification emails and hands them to a Mailer.
type Dispatcher struct {
	mailer Mailer
	appURL string
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher. appURL is the public base URL of
// the web app, used for dashboard links in email bodies.
func NewDispatcher(mailer Mailer, appURL string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, appURL: appURL, logger: logger}
}

// SplitAddedData describes a participant's invitation to a new split.
type SplitAddedData struct {
	ParticipantEmail string
	ParticipantName  string
	CreatorName      string
	Description      string
	TotalAmount      float64
	UserAmount       float64
	Currency         string
	DueDate          string
}

// SendSplitAdded notifies a participant that they were added to a split.
func (d *Dispatcher) SendSplitAdded(ctx context.Context, data SplitAddedData) error {
	subject := fmt.Sprintf("You've been added to a split: %s", data.Description)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #333;">You've been added to a split!</h2>
			<div style="background-color: #f5f5f5; padding: 20px; border-radius: 8px; margin: 20px 0;">
				<h3 style="margin-top: 0;">Split Details</h3>
				<p><strong>Description:</strong> %s</p>
				<p><strong>Created by:</strong> %s</p>
				<p><strong>Total Amount:</strong> %s</p>
				<p><strong>Your Share:</strong> %s</p>
				<p><strong>Due Date:</strong> %s</p>
			</div>
			<p>Hi %s,</p>
			<p>You've been added to a new expense split. Please log in to your Paywise dashboard to view the details and make your payment.</p>
			<a href="%s/dashboard" style="background-color: #007bff; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block; margin: 20px 0;">View Split Details</a>
			<p style="color: #666; font-size: 14px; margin-top: 30px;">This is an automated message from Paywise. Please do not reply to this email.</p>
		</div>`,
		data.Description,
		data.CreatorName,
		FormatAmount(data.TotalAmount, data.Currency),
		FormatAmount(data.UserAmount, data.Currency),
		data.DueDate,
		data.ParticipantName,
		d.appURL,
	)
	return d.send(ctx, data.ParticipantEmail, subject, body, "split notification")
}

// SplitReminderData describes an unpaid share that is due.
type SplitReminderData struct {
	ParticipantEmail string
	ParticipantName  string
	CreatorName      string
	Description      string
	UserAmount       float64
	Currency         string
	DueDate          string
}

// SendSplitReminder reminds a participant about an unpaid split share.
func (d *Dispatcher) SendSplitReminder(ctx context.Context, data SplitReminderData) error {
	subject := fmt.Sprintf("Split Payment Reminder: %s", data.Description)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #333;">Split Payment Reminder</h2>
			<div style="background-color: #fff3cd; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #ffc107;">
				<h3 style="margin-top: 0;">Payment Due</h3>
				<p><strong>Description:</strong> %s</p>
				<p><strong>Owed to:</strong> %s</p>
				<p><strong>Your Share:</strong> %s</p>
				<p><strong>Due Date:</strong> %s</p>
			</div>
			<p>Hi %s,</p>
			<p>This is a reminder that your share of <strong>%s</strong> is due. Please log in to your Paywise dashboard to settle up.</p>
			<a href="%s/dashboard" style="background-color: #007bff; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block; margin: 20px 0;">View Split Details</a>
			<p style="color: #666; font-size: 14px; margin-top: 30px;">This is an automated reminder from Paywise. Please do not reply to this email.</p>
		</div>`,
		data.Description,
		data.CreatorName,
		FormatAmount(data.UserAmount, data.Currency),
		data.DueDate,
		data.ParticipantName,
		data.Description,
		d.appURL,
	)
	return d.send(ctx, data.ParticipantEmail, subject, body, "split reminder")
}

// RecurringReminderData describes an upcoming recurring bill.
type RecurringReminderData struct {
	UserEmail   string
	UserName    string
	Description string
	Provider    string
	Amount      float64
	Currency    string
	DueDate     string
}

// SendRecurringReminder reminds a user about a recurring bill due soon.
func (d *Dispatcher) SendRecurringReminder(ctx context.Context, data RecurringReminderData) error {
	subject := fmt.Sprintf("Recurring Payment Reminder: %s", data.Description)
	amountRow := ""
	if data.Amount > 0 {
		amountRow = fmt.Sprintf("<p><strong>Amount:</strong> %s</p>", FormatAmount(data.Amount, data.Currency))
	}
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #333;">Recurring Payment Reminder</h2>
			<div style="background-color: #fff3cd; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #ffc107;">
				<h3 style="margin-top: 0;">Payment Due</h3>
				<p><strong>Service:</strong> %s</p>
				<p><strong>Provider:</strong> %s</p>
				%s
				<p><strong>Due Date:</strong> %s</p>
			</div>
			<p>Hi %s,</p>
			<p>This is a reminder that your recurring payment for <strong>%s</strong> is due soon.</p>
			<p>Please make sure to complete your payment before the due date to avoid any service interruptions.</p>
			<a href="%s/dashboard/recurring" style="background-color: #28a745; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block; margin: 20px 0;">Manage Recurring Payments</a>
			<p style="color: #666; font-size: 14px; margin-top: 30px;">This is an automated reminder from Paywise. You can manage your notification preferences in your dashboard.</p>
		</div>`,
		data.Description,
		data.Provider,
		amountRow,
		data.DueDate,
		data.UserName,
		data.Description,
		d.appURL,
	)
	return d.send(ctx, data.UserEmail, subject, body, "recurring reminder")
}

// RecurringCreatedData confirms a newly created recurring bill.
type RecurringCreatedData struct {
	UserEmail        string
	UserName         string
	Description      string
	Amount           float64
	Currency         string
	Frequency        string
	Category         string
	FirstPaymentDate string
	NextDueDate      string
}

// SendRecurringCreated confirms to a user that a recurring bill was set up.
func (d *Dispatcher) SendRecurringCreated(ctx context.Context, data RecurringCreatedData) error {
	subject := fmt.Sprintf("Recurring Payment Created: %s", data.Description)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2 style="color: #333; border-bottom: 2px solid #28a745; padding-bottom: 10px;">Recurring Payment Created Successfully</h2>
			<p>Hi %s,</p>
			<p>Your recurring payment has been successfully created with the following details:</p>
			<div style="background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
				<h3 style="color: #333; margin-top: 0;">Payment Details</h3>
				<p><strong>Description:</strong> %s</p>
				<p><strong>Amount:</strong> %s</p>
				<p><strong>Frequency:</strong> %s</p>
				<p><strong>Category:</strong> %s</p>
				<p><strong>First Payment Date:</strong> %s</p>
				<p><strong>Next Due Date:</strong> %s</p>
			</div>
			<p>We'll send you reminders before each payment is due to help you stay on top of your finances.</p>
			<a href="%s/dashboard/recurring" style="background-color: #28a745; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block; margin: 20px 0;">View Recurring Payments</a>
			<p style="color: #666; font-size: 14px; margin-top: 30px;">This is an automated confirmation from Paywise. You can manage your recurring payments in your dashboard.</p>
		</div>`,
		data.UserName,
		data.Description,
		FormatAmount(data.Amount, data.Currency),
		data.Frequency,
		data.Category,
		data.FirstPaymentDate,
		data.NextDueDate,
		d.appURL,
	)
	return d.send(ctx, data.UserEmail, subject, body, "recurring created")
}

func (d *Dispatcher) send(ctx context.Context, to, subject, body, kind string) error {
	if err := d.mailer.Send(ctx, to, subject, body); err != nil {
		d.logger.Error("email send failed", "kind", kind, "to", to, "error", err)
		return err
	}
	d.logger.Info("email sent", "kind", kind, "to", to)
	return nil
}
