package services

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"saunakirje/config"
	"saunakirje/internal/domain/newsletter"
	"saunakirje/internal/mailer"
	"saunakirje/internal/repository"
	kirje_errors "saunakirje/pkg/errors"
	"saunakirje/pkg/logger"

	"github.com/google/uuid"
)

// fallbackTestRecipient receives test sends when the operator supplies no
// address of their own.
const fallbackTestRecipient = "arkisto@saunakartta.fi"

type NewsletterService struct {
	subscribers repository.SubscriberRepository
	profiles    repository.ProfileRepository
	newsletters repository.NewsletterRepository
	mailer      mailer.Mailer
	logger      *logger.Logger

	senderName    string
	senderEmail   string
	publicBaseURL string
	concurrency   int
	sendTimeout   time.Duration
}

func NewNewsletterService(repos *repository.Repositories, m mailer.Mailer, cfg *config.Config, l *logger.Logger) *NewsletterService {
	concurrency := cfg.SendConcurrency
	if concurrency <= 0 {
		concurrency = 16
	}
	timeout := time.Duration(cfg.SendTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &NewsletterService{
		subscribers:   repos.Subscribers,
		profiles:      repos.Profiles,
		newsletters:   repos.Newsletters,
		mailer:        m,
		logger:        l,
		senderName:    cfg.SenderName,
		senderEmail:   cfg.SenderEmail,
		publicBaseURL: cfg.PublicBaseURL,
		concurrency:   concurrency,
		sendTimeout:   timeout,
	}
}

type SendInput struct {
	Audience   newsletter.Audience
	TestEmail  string
	TemplateID string
	Subject    string
	Content    string
	ImageURL   string
	Lang       string
	SenderID   uuid.UUID
}

type SendError struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

type SendResult struct {
	NewsletterID uuid.UUID   `json:"newsletterId"`
	Count        int         `json:"count"`
	SuccessCount int         `json:"successCount"`
	FailureCount int         `json:"failureCount"`
	Errors       []SendError `json:"errors"`
}

// Send resolves the audience, anchors a ledger row, fans the message out to
// every recipient and finalizes the counts. Authorization happens before
// this is reached.
func (s *NewsletterService) Send(ctx context.Context, in SendInput) (SendResult, error) {
	if err := validateSendInput(in); err != nil {
		return SendResult{}, err
	}

	recipients, err := s.resolveRecipients(ctx, in.Audience, in.TestEmail)
	if err != nil {
		return SendResult{}, err
	}

	// Zero eligible recipients is a valid outcome: nothing is sent and no
	// ledger row is created.
	if len(recipients) == 0 {
		return SendResult{Errors: []SendError{}}, nil
	}

	n := &newsletter.Newsletter{
		ID:              uuid.New(),
		Subject:         in.Subject,
		Audience:        in.Audience,
		TemplateID:      in.TemplateID,
		Content:         in.Content,
		ImageURL:        toNullString(in.ImageURL),
		SenderID:        in.SenderID,
		Status:          newsletter.StatusPending,
		TotalRecipients: len(recipients),
		CreatedAt:       time.Now(),
	}
	// No sends without a ledger row to anchor them.
	if err := s.newsletters.Create(ctx, n); err != nil {
		return SendResult{}, err
	}

	result := s.dispatch(ctx, n, recipients, in)

	// A finalize failure must not turn an otherwise delivered broadcast into
	// a caller-visible error.
	if err := s.newsletters.Finalize(context.WithoutCancel(ctx), n.ID, result.SuccessCount, result.FailureCount); err != nil {
		s.logger.Errorf("failed to finalize newsletter %s: %s", n.ID, err)
	}

	return result, nil
}

func validateSendInput(in SendInput) error {
	if !in.Audience.Valid() {
		return kirje_errors.ErrInvalidInput
	}
	if !mailer.ValidTemplate(in.TemplateID) {
		return kirje_errors.ErrInvalidInput
	}
	if strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Content) == "" {
		return kirje_errors.ErrInvalidInput
	}
	return nil
}

// resolveRecipients produces the de-duplicated, suppression-filtered
// destination set for one dispatch run.
func (s *NewsletterService) resolveRecipients(ctx context.Context, audience newsletter.Audience, testEmail string) ([]newsletter.Recipient, error) {
	// Test sends must always reach the operator, regardless of list status:
	// no suppression filtering, no pool lookups.
	if audience == newsletter.AudienceTest {
		email := strings.ToLower(strings.TrimSpace(testEmail))
		if email == "" {
			email = fallbackTestRecipient
		}
		return []newsletter.Recipient{{ID: uuid.New(), Email: email}}, nil
	}

	unsubscribed, err := s.subscribers.GetUnsubscribedEmails(ctx)
	if err != nil {
		return nil, err
	}
	suppressed := make(map[string]bool, len(unsubscribed))
	for _, email := range unsubscribed {
		suppressed[strings.ToLower(email)] = true
	}

	// Merge by lowercased email; a later pool overwrites the retained id,
	// which is acceptable since only the address is used downstream.
	merged := make(map[string]newsletter.Recipient)

	if audience == newsletter.AudienceSubscribers || audience == newsletter.AudienceAll {
		subs, err := s.subscribers.GetActive(ctx)
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			email := strings.ToLower(sub.Email)
			merged[email] = newsletter.Recipient{ID: sub.ID, Email: email}
		}
	}

	if audience == newsletter.AudienceMembers || audience == newsletter.AudienceAll {
		members, err := s.profiles.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			email := strings.ToLower(m.Email)
			merged[email] = newsletter.Recipient{ID: m.ID, Email: email}
		}
	}

	recipients := make([]newsletter.Recipient, 0, len(merged))
	for email, r := range merged {
		// Suppression wins even over an active subscriber row or a member
		// profile with no subscriber record.
		if suppressed[email] {
			continue
		}
		recipients = append(recipients, r)
	}
	return recipients, nil
}

func (s *NewsletterService) GetByID(ctx context.Context, id uuid.UUID) (newsletter.Newsletter, error) {
	return s.newsletters.GetByID(ctx, id)
}

func (s *NewsletterService) List(ctx context.Context, page, limit int) ([]newsletter.Newsletter, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.newsletters.List(ctx, page, limit)
}

// ExportRecipientsCSV streams the per-recipient delivery log of one
// broadcast. encoding/csv quotes fields containing delimiters, so error
// messages survive the round trip verbatim.
func (s *NewsletterService) ExportRecipientsCSV(ctx context.Context, id uuid.UUID, w io.Writer) error {
	if _, err := s.newsletters.GetByID(ctx, id); err != nil {
		return err
	}
	rows, err := s.newsletters.GetRecipients(ctx, id)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"newsletter_id", "email", "status", "error_message", "created_at"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.NewsletterID.String(),
			row.Email,
			row.Status,
			row.ErrorMessage.String,
			row.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
