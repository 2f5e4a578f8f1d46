package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"sort"
	"testing"
	"time"

	"saunakirje/config"
	"saunakirje/internal/domain/newsletter"
	"saunakirje/internal/domain/profile"
	"saunakirje/internal/domain/subscriber"
	"saunakirje/internal/mailer"
	"saunakirje/internal/repository"
	kirje_errors "saunakirje/pkg/errors"
	"saunakirje/pkg/logger"

	"github.com/google/uuid"
)

func testConfig() *config.Config {
	return &config.Config{
		PublicBaseURL:   "https://saunakartta.fi",
		SenderName:      "Saunakirje",
		SenderEmail:     "uutiskirje@saunakartta.fi",
		SendConcurrency: 4,
		SendTimeoutSec:  5,
	}
}

func newTestService(subs *fakeSubscriberRepo, profiles *fakeProfileRepo, letters *fakeNewsletterRepo, m mailer.Mailer) *NewsletterService {
	repos := &repository.Repositories{Subscribers: subs, Profiles: profiles, Newsletters: letters}
	return NewNewsletterService(repos, m, testConfig(), logger.New(logger.DevelopmentMode))
}

func activeSub(email string) subscriber.Subscriber {
	return subscriber.Subscriber{ID: uuid.New(), Email: email, Status: subscriber.StatusActive}
}

func unsubscribedSub(email string) subscriber.Subscriber {
	return subscriber.Subscriber{ID: uuid.New(), Email: email, Status: subscriber.StatusUnsubscribed}
}

func member(email string) profile.Profile {
	return profile.Profile{ID: uuid.New(), Email: email, Role: profile.RoleMember}
}

func validInput(audience newsletter.Audience) SendInput {
	return SendInput{
		Audience:   audience,
		TemplateID: mailer.TemplateClassic,
		Subject:    "Kesän saunauutiset",
		Content:    "Uusia savusaunoja arkistossa.",
		Lang:       "fi",
		SenderID:   uuid.New(),
	}
}

func emails(recipients []newsletter.Recipient) []string {
	out := make([]string, 0, len(recipients))
	for _, r := range recipients {
		out = append(out, r.Email)
	}
	sort.Strings(out)
	return out
}

func TestResolveRecipients_DedupAcrossPools(t *testing.T) {
	subs := newFakeSubscriberRepo(activeSub("a@x.com"), activeSub("b@x.com"))
	profiles := &fakeProfileRepo{profiles: []profile.Profile{member("b@x.com"), member("c@x.com")}}
	svc := newTestService(subs, profiles, newFakeNewsletterRepo(), newFakeMailer())

	got, err := svc.resolveRecipients(context.Background(), newsletter.AudienceAll, "")
	if err != nil {
		t.Fatalf("resolveRecipients() error = %v", err)
	}
	want := []string{"a@x.com", "b@x.com", "c@x.com"}
	if g := emails(got); len(g) != 3 || g[0] != want[0] || g[1] != want[1] || g[2] != want[2] {
		t.Errorf("resolved = %v, want %v", g, want)
	}
}

func TestResolveRecipients_SuppressionWins(t *testing.T) {
	tests := []struct {
		name     string
		subs     *fakeSubscriberRepo
		profiles *fakeProfileRepo
		audience newsletter.Audience
		want     []string
	}{
		{
			name:     "suppressed member without subscriber record",
			subs:     newFakeSubscriberRepo(activeSub("a@x.com"), unsubscribedSub("c@x.com")),
			profiles: &fakeProfileRepo{profiles: []profile.Profile{member("b@x.com"), member("c@x.com")}},
			audience: newsletter.AudienceAll,
			want:     []string{"a@x.com", "b@x.com"},
		},
		{
			name:     "members audience still filtered",
			subs:     newFakeSubscriberRepo(unsubscribedSub("b@x.com")),
			profiles: &fakeProfileRepo{profiles: []profile.Profile{member("a@x.com"), member("b@x.com")}},
			audience: newsletter.AudienceMembers,
			want:     []string{"a@x.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.subs, tt.profiles, newFakeNewsletterRepo(), newFakeMailer())
			got, err := svc.resolveRecipients(context.Background(), tt.audience, "")
			if err != nil {
				t.Fatalf("resolveRecipients() error = %v", err)
			}
			g := emails(got)
			if len(g) != len(tt.want) {
				t.Fatalf("resolved = %v, want %v", g, tt.want)
			}
			for i := range g {
				if g[i] != tt.want[i] {
					t.Errorf("resolved = %v, want %v", g, tt.want)
				}
			}
		})
	}
}

// conflictingSubscriberRepo reports the same address as both active and
// suppressed, the inconsistent-data shape resolution must tolerate.
type conflictingSubscriberRepo struct {
	*fakeSubscriberRepo
	email string
}

func (r *conflictingSubscriberRepo) GetActive(ctx context.Context) ([]subscriber.Subscriber, error) {
	subs, err := r.fakeSubscriberRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	return append(subs, activeSub(r.email)), nil
}

func (r *conflictingSubscriberRepo) GetUnsubscribedEmails(ctx context.Context) ([]string, error) {
	emails, err := r.fakeSubscriberRepo.GetUnsubscribedEmails(ctx)
	if err != nil {
		return nil, err
	}
	return append(emails, r.email), nil
}

func TestResolveRecipients_SuppressionWinsOverActiveStatus(t *testing.T) {
	// Three active addresses; one of them also carries a suppression entry.
	// The suppression check is independent of the status field.
	conflicted := &conflictingSubscriberRepo{
		fakeSubscriberRepo: newFakeSubscriberRepo(activeSub("a@x.com"), activeSub("b@x.com")),
		email:              "c@x.com",
	}
	svc := NewNewsletterService(
		&repository.Repositories{Subscribers: conflicted, Profiles: &fakeProfileRepo{}, Newsletters: newFakeNewsletterRepo()},
		newFakeMailer(), testConfig(), logger.New(logger.DevelopmentMode))

	got, err := svc.resolveRecipients(context.Background(), newsletter.AudienceSubscribers, "")
	if err != nil {
		t.Fatalf("resolveRecipients() error = %v", err)
	}
	g := emails(got)
	if len(g) != 2 || g[0] != "a@x.com" || g[1] != "b@x.com" {
		t.Errorf("resolved = %v, want [a@x.com b@x.com]", g)
	}
}

func TestResolveRecipients_TestBypass(t *testing.T) {
	// The test address is itself on the suppression list; it must still
	// receive the test send.
	subs := newFakeSubscriberRepo(unsubscribedSub("operator@x.com"))
	svc := newTestService(subs, &fakeProfileRepo{}, newFakeNewsletterRepo(), newFakeMailer())

	got, err := svc.resolveRecipients(context.Background(), newsletter.AudienceTest, "operator@x.com")
	if err != nil {
		t.Fatalf("resolveRecipients() error = %v", err)
	}
	if len(got) != 1 || got[0].Email != "operator@x.com" {
		t.Errorf("resolved = %v, want singleton operator@x.com", emails(got))
	}
}

func TestResolveRecipients_TestFallbackAddress(t *testing.T) {
	svc := newTestService(newFakeSubscriberRepo(), &fakeProfileRepo{}, newFakeNewsletterRepo(), newFakeMailer())

	got, err := svc.resolveRecipients(context.Background(), newsletter.AudienceTest, "")
	if err != nil {
		t.Fatalf("resolveRecipients() error = %v", err)
	}
	if len(got) != 1 || got[0].Email != fallbackTestRecipient {
		t.Errorf("resolved = %v, want singleton %s", emails(got), fallbackTestRecipient)
	}
}

func TestSend_ZeroRecipients(t *testing.T) {
	letters := newFakeNewsletterRepo()
	m := newFakeMailer()
	svc := newTestService(newFakeSubscriberRepo(), &fakeProfileRepo{}, letters, m)

	result, err := svc.Send(context.Background(), validInput(newsletter.AudienceSubscribers))
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if result.Count != 0 || result.SuccessCount != 0 || result.FailureCount != 0 {
		t.Errorf("result = %+v, want all-zero counts", result)
	}
	if len(letters.created) != 0 {
		t.Errorf("ledger rows created = %d, want 0", len(letters.created))
	}
	if len(m.sentTo()) != 0 {
		t.Errorf("sends attempted = %d, want 0", len(m.sentTo()))
	}
}

func TestSend_PartialFailures(t *testing.T) {
	subs := newFakeSubscriberRepo(
		activeSub("a@x.com"), activeSub("b@x.com"), activeSub("c@x.com"),
		activeSub("d@x.com"), activeSub("e@x.com"),
	)
	letters := newFakeNewsletterRepo()
	m := newFakeMailer()
	m.failFor["b@x.com"] = errors.New("mailbox full")
	m.failFor["d@x.com"] = errors.New("invalid address")
	svc := newTestService(subs, &fakeProfileRepo{}, letters, m)

	result, err := svc.Send(context.Background(), validInput(newsletter.AudienceSubscribers))
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if result.Count != 5 || result.SuccessCount != 3 || result.FailureCount != 2 {
		t.Errorf("counts = %d/%d/%d, want 5/3/2", result.Count, result.SuccessCount, result.FailureCount)
	}
	if result.SuccessCount+result.FailureCount != result.Count {
		t.Errorf("count conservation violated: %d + %d != %d", result.SuccessCount, result.FailureCount, result.Count)
	}
	if len(result.Errors) != 2 {
		t.Errorf("errors = %v, want 2 entries", result.Errors)
	}

	if len(letters.created) != 1 {
		t.Fatalf("ledger rows created = %d, want 1", len(letters.created))
	}
	id := letters.created[0].ID
	if counts, ok := letters.finalized[id]; !ok || counts != [2]int{3, 2} {
		t.Errorf("finalized counts = %v, want [3 2]", counts)
	}

	// Every recipient gets exactly one log row, failures independent of
	// concurrent successes.
	logs, _ := letters.GetRecipients(context.Background(), id)
	if len(logs) != 5 {
		t.Fatalf("log rows = %d, want 5", len(logs))
	}
	statuses := make(map[string]string)
	for _, l := range logs {
		statuses[l.Email] = l.Status
	}
	for _, email := range []string{"a@x.com", "c@x.com", "e@x.com"} {
		if statuses[email] != newsletter.RecipientSent {
			t.Errorf("status[%s] = %s, want sent", email, statuses[email])
		}
	}
	for _, email := range []string{"b@x.com", "d@x.com"} {
		if statuses[email] != newsletter.RecipientFailed {
			t.Errorf("status[%s] = %s, want failed", email, statuses[email])
		}
	}
}

func TestSend_LedgerCreateFailureAbortsDispatch(t *testing.T) {
	subs := newFakeSubscriberRepo(activeSub("a@x.com"), activeSub("b@x.com"))
	letters := newFakeNewsletterRepo()
	letters.createErr = errors.New("connection refused")
	m := newFakeMailer()
	svc := newTestService(subs, &fakeProfileRepo{}, letters, m)

	_, err := svc.Send(context.Background(), validInput(newsletter.AudienceSubscribers))
	if err == nil {
		t.Fatal("Send() error = nil, want ledger failure")
	}
	if len(m.sentTo()) != 0 {
		t.Errorf("sends attempted = %d, want 0 when ledger creation fails", len(m.sentTo()))
	}
	if len(letters.logs) != 0 {
		t.Errorf("log rows = %d, want 0", len(letters.logs))
	}
}

func TestSend_MissingCredentialFailsEveryRecipientIndividually(t *testing.T) {
	subs := newFakeSubscriberRepo(activeSub("a@x.com"), activeSub("b@x.com"), activeSub("c@x.com"))
	letters := newFakeNewsletterRepo()
	m := newFakeMailer()
	m.failAll = mailer.ErrMissingCredential
	svc := newTestService(subs, &fakeProfileRepo{}, letters, m)

	result, err := svc.Send(context.Background(), validInput(newsletter.AudienceSubscribers))
	if err != nil {
		t.Fatalf("Send() error = %v, misconfiguration must not be fatal", err)
	}
	if result.FailureCount != 3 || result.SuccessCount != 0 {
		t.Errorf("counts = %d/%d, want 0 successes, 3 failures", result.SuccessCount, result.FailureCount)
	}
	if len(letters.logs) != 3 {
		t.Errorf("log rows = %d, want one per recipient", len(letters.logs))
	}
	for _, l := range letters.logs {
		if !l.ErrorMessage.Valid || l.ErrorMessage.String == "" {
			t.Errorf("log row for %s has no error message", l.Email)
		}
	}
}

func TestSend_RecipientLogFailureDoesNotAbort(t *testing.T) {
	subs := newFakeSubscriberRepo(activeSub("a@x.com"), activeSub("b@x.com"))
	letters := newFakeNewsletterRepo()
	letters.appendErr = errors.New("log table unavailable")
	m := newFakeMailer()
	svc := newTestService(subs, &fakeProfileRepo{}, letters, m)

	result, err := svc.Send(context.Background(), validInput(newsletter.AudienceSubscribers))
	if err != nil {
		t.Fatalf("Send() error = %v, log failures must be non-fatal", err)
	}
	if result.SuccessCount != 2 {
		t.Errorf("successCount = %d, want 2", result.SuccessCount)
	}
}

func TestSend_InvalidInput(t *testing.T) {
	svc := newTestService(newFakeSubscriberRepo(), &fakeProfileRepo{}, newFakeNewsletterRepo(), newFakeMailer())

	tests := []struct {
		name   string
		mutate func(*SendInput)
	}{
		{"bad audience", func(in *SendInput) { in.Audience = "everyone" }},
		{"bad template", func(in *SendInput) { in.TemplateID = "marble" }},
		{"empty subject", func(in *SendInput) { in.Subject = "  " }},
		{"empty content", func(in *SendInput) { in.Content = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(newsletter.AudienceSubscribers)
			tt.mutate(&in)
			if _, err := svc.Send(context.Background(), in); !errors.Is(err, kirje_errors.ErrInvalidInput) {
				t.Errorf("Send() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSend_ResolutionFailureCreatesNoLedgerRow(t *testing.T) {
	subs := newFakeSubscriberRepo(activeSub("a@x.com"))
	subs.suppressErr = errors.New("store unavailable")
	letters := newFakeNewsletterRepo()
	svc := newTestService(subs, &fakeProfileRepo{}, letters, newFakeMailer())

	if _, err := svc.Send(context.Background(), validInput(newsletter.AudienceSubscribers)); err == nil {
		t.Fatal("Send() error = nil, want resolution failure")
	}
	if len(letters.created) != 0 {
		t.Errorf("ledger rows = %d, want 0 after resolution failure", len(letters.created))
	}
}

func TestExportRecipientsCSV_RoundTrip(t *testing.T) {
	letters := newFakeNewsletterRepo()
	n := newsletter.Newsletter{ID: uuid.New(), Status: newsletter.StatusCompleted}
	letters.created = append(letters.created, n)

	rows := []newsletter.RecipientLog{
		{ID: uuid.New(), NewsletterID: n.ID, Email: "a@x.com", Status: newsletter.RecipientSent, CreatedAt: time.Now()},
		{ID: uuid.New(), NewsletterID: n.ID, Email: "b@x.com", Status: newsletter.RecipientFailed,
			ErrorMessage: sql.NullString{String: `rejected: "spam", code=550, see log`, Valid: true}, CreatedAt: time.Now()},
	}
	letters.logs = append(letters.logs, rows...)

	svc := newTestService(newFakeSubscriberRepo(), &fakeProfileRepo{}, letters, newFakeMailer())

	var buf bytes.Buffer
	if err := svc.ExportRecipientsCSV(context.Background(), n.ID, &buf); err != nil {
		t.Fatalf("ExportRecipientsCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("export is not parseable CSV: %v", err)
	}
	if len(records) != 3 { // header + 2 rows
		t.Fatalf("records = %d, want 3", len(records))
	}
	byEmail := make(map[string][]string)
	for _, rec := range records[1:] {
		byEmail[rec[1]] = rec
	}
	if got := byEmail["b@x.com"][3]; got != `rejected: "spam", code=550, see log` {
		t.Errorf("error message = %q, not preserved verbatim", got)
	}
	if got := byEmail["a@x.com"][2]; got != newsletter.RecipientSent {
		t.Errorf("status = %q, want sent", got)
	}
}

func TestExportRecipientsCSV_UnknownNewsletter(t *testing.T) {
	svc := newTestService(newFakeSubscriberRepo(), &fakeProfileRepo{}, newFakeNewsletterRepo(), newFakeMailer())

	var buf bytes.Buffer
	if err := svc.ExportRecipientsCSV(context.Background(), uuid.New(), &buf); !errors.Is(err, kirje_errors.ErrNotFound) {
		t.Errorf("ExportRecipientsCSV() error = %v, want ErrNotFound", err)
	}
}
