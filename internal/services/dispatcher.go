package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"saunakirje/internal/domain/newsletter"
	"saunakirje/internal/mailer"

	"github.com/google/uuid"
)

type sendOutcome struct {
	email string
	err   error
}

// dispatch fans out one send per recipient under a bounded worker pool and
// waits for every send to settle before returning. Counters are aggregated
// locally after the barrier; nothing writes the newsletter row concurrently.
func (s *NewsletterService) dispatch(ctx context.Context, n *newsletter.Newsletter, recipients []newsletter.Recipient, in SendInput) SendResult {
	ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	sem := make(chan struct{}, s.concurrency)
	outcomes := make(chan sendOutcome, len(recipients))

	var wg sync.WaitGroup
	for _, r := range recipients {
		wg.Add(1)
		go func(r newsletter.Recipient) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes <- sendOutcome{email: r.Email, err: s.sendOne(ctx, n, r, in)}
		}(r)
	}
	wg.Wait()
	close(outcomes)

	result := SendResult{
		NewsletterID: n.ID,
		Count:        len(recipients),
		Errors:       []SendError{},
	}
	for outcome := range outcomes {
		if outcome.err == nil {
			result.SuccessCount++
			continue
		}
		result.FailureCount++
		result.Errors = append(result.Errors, SendError{Email: outcome.email, Error: outcome.err.Error()})
	}
	return result
}

// sendOne renders and submits the message for a single recipient and appends
// its log row. A failure here never affects sibling sends.
func (s *NewsletterService) sendOne(ctx context.Context, n *newsletter.Newsletter, r newsletter.Recipient, in SendInput) error {
	err := s.deliver(ctx, r, in)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("timed out")
	}

	status := newsletter.RecipientSent
	var errMsg string
	if err != nil {
		status = newsletter.RecipientFailed
		errMsg = err.Error()
	}

	// Log rows are best effort and must survive the overall deadline, so the
	// append runs on a detached context.
	logErr := s.newsletters.AppendRecipient(context.WithoutCancel(ctx), &newsletter.RecipientLog{
		ID:           uuid.New(),
		NewsletterID: n.ID,
		Email:        r.Email,
		Status:       status,
		ErrorMessage: toNullString(errMsg),
		CreatedAt:    time.Now(),
	})
	if logErr != nil {
		s.logger.Errorf("failed to log recipient outcome for %s (newsletter %s): %s", r.Email, n.ID, logErr)
	}

	return err
}

func (s *NewsletterService) deliver(ctx context.Context, r newsletter.Recipient, in SendInput) error {
	html, err := mailer.Render(in.TemplateID, mailer.RenderInput{
		Subject:        in.Subject,
		Content:        in.Content,
		ImageURL:       in.ImageURL,
		UnsubscribeURL: s.unsubscribeURL(r, in.Lang),
		Lang:           in.Lang,
	})
	if err != nil {
		return err
	}

	return s.mailer.Send(ctx, mailer.Message{
		FromName: s.senderName,
		From:     s.senderEmail,
		To:       r.Email,
		Subject:  in.Subject,
		HTML:     html,
	})
}

// unsubscribeURL embeds the recipient's own email and id so a click-through
// suppresses exactly this address.
func (s *NewsletterService) unsubscribeURL(r newsletter.Recipient, lang string) string {
	q := url.Values{}
	q.Set("email", r.Email)
	q.Set("id", r.ID.String())
	if lang != "" {
		q.Set("lang", lang)
	}
	return fmt.Sprintf("%s/v1/unsubscribe?%s", s.publicBaseURL, q.Encode())
}
