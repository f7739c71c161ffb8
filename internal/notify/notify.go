package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"pricemon/internal/config"
	logx "pricemon/pkg/logx"
)

// smtpPresets maps the common provider names from config to their SMTP hosts.
var smtpPresets = map[string]struct {
	server string
	port   int
}{
	"gmail":   {"smtp.gmail.com", 587},
	"outlook": {"smtp-mail.outlook.com", 587},
	"hotmail": {"smtp-mail.outlook.com", 587},
	"yahoo":   {"smtp.mail.yahoo.com", 587},
}

// Opportunity is one store whose current price crossed the alert threshold.
type Opportunity struct {
	Store       string
	ProductName string
	Price       float64
	Currency    string
	URL         string
	Reason      string

	// PrevPrice is the last recorded price for the same store, 0 when unknown.
	PrevPrice float64
}

// Discount returns the saving versus PrevPrice in percent, 0 when not cheaper.
func (o Opportunity) Discount() float64 {
	if o.PrevPrice <= 0 || o.PrevPrice <= o.Price {
		return 0
	}
	return (o.PrevPrice - o.Price) / o.PrevPrice * 100
}

// Notifier sends price alerts over SMTP.
type Notifier struct {
	server    string
	port      int
	sender    string
	password  string
	recipient string
	log       logx.Logger
}

// New resolves the provider preset (or explicit server/port) from config.
// Returns nil when email is not configured; callers treat a nil Notifier as
// "alerts disabled".
func New(cfg config.EmailConfig, log logx.Logger) (*Notifier, error) {
	if cfg.SenderEmail == "" || cfg.RecipientEmail == "" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	server := cfg.SMTPServer
	port := cfg.SMTPPort
	if preset, ok := smtpPresets[strings.ToLower(strings.TrimSpace(cfg.Provider))]; ok {
		server = preset.server
		port = preset.port
	}
	if server == "" {
		return nil, fmt.Errorf("email: smtp_server required for provider %q", cfg.Provider)
	}
	if port == 0 {
		port = 587
	}

	return &Notifier{
		server:    server,
		port:      port,
		sender:    cfg.SenderEmail,
		password:  cfg.SenderPassword,
		recipient: cfg.RecipientEmail,
		log:       log,
	}, nil
}

// SendAlert emails the current opportunity set as a multipart text+HTML
// message.
func (n *Notifier) SendAlert(ctx context.Context, opportunities []Opportunity) error {
	if n == nil {
		return nil
	}
	if len(opportunities) == 0 {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(n.sender); err != nil {
		return fmt.Errorf("sender address: %w", err)
	}
	if err := msg.To(n.recipient); err != nil {
		return fmt.Errorf("recipient address: %w", err)
	}
	msg.Subject(fmt.Sprintf("Price alert - %d opportunity(ies)!", len(opportunities)))
	msg.SetBodyString(mail.TypeTextPlain, renderText(opportunities))

	html, err := renderHTML(opportunities)
	if err != nil {
		return fmt.Errorf("render alert: %w", err)
	}
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	client, err := mail.NewClient(n.server,
		mail.WithPort(n.port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.sender),
		mail.WithPassword(n.password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	n.log.Info("sending price alert",
		logx.String("smtp", fmt.Sprintf("%s:%d", n.server, n.port)),
		logx.Int("opportunities", len(opportunities)))
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send alert: %w", err)
	}
	n.log.Info("price alert sent", logx.String("to", n.recipient))
	return nil
}

// SendTest sends a canned single-opportunity alert to verify credentials.
func (n *Notifier) SendTest(ctx context.Context) error {
	if n == nil {
		return fmt.Errorf("email not configured")
	}
	return n.SendAlert(ctx, []Opportunity{{
		Store:       "Test",
		ProductName: "Price monitor test message",
		Price:       599.00,
		Currency:    "BRL",
		URL:         "https://example.com",
		Reason:      "This is a test alert from the price monitor",
	}})
}

func formatAmount(currency string, amount float64) string {
	symbol := currency
	switch strings.ToUpper(currency) {
	case "BRL", "":
		symbol = "R$"
	case "EUR":
		symbol = "€"
	case "USD":
		symbol = "$"
	}
	return fmt.Sprintf("%s %.2f", symbol, amount)
}
