package services

import (
	"context"
	"sync"

	"saunakirje/internal/domain/newsletter"
	"saunakirje/internal/domain/profile"
	"saunakirje/internal/domain/subscriber"
	"saunakirje/internal/mailer"
	kirje_errors "saunakirje/pkg/errors"

	"github.com/google/uuid"
)

type fakeSubscriberRepo struct {
	mu          sync.Mutex
	byEmail     map[string]*subscriber.Subscriber
	activeErr   error
	suppressErr error
}

func newFakeSubscriberRepo(subs ...subscriber.Subscriber) *fakeSubscriberRepo {
	r := &fakeSubscriberRepo{byEmail: make(map[string]*subscriber.Subscriber)}
	for i := range subs {
		s := subs[i]
		r.byEmail[s.Email] = &s
	}
	return r
}

func (r *fakeSubscriberRepo) Create(ctx context.Context, s *subscriber.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[s.Email]; ok {
		return kirje_errors.ErrAlreadyExists
	}
	cp := *s
	r.byEmail[s.Email] = &cp
	return nil
}

func (r *fakeSubscriberRepo) GetByEmail(ctx context.Context, email string) (subscriber.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byEmail[email]; ok {
		return *s, nil
	}
	return subscriber.Subscriber{}, kirje_errors.ErrNotFound
}

func (r *fakeSubscriberRepo) GetActive(ctx context.Context) ([]subscriber.Subscriber, error) {
	if r.activeErr != nil {
		return nil, r.activeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []subscriber.Subscriber
	for _, s := range r.byEmail {
		if s.Status == subscriber.StatusActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSubscriberRepo) GetUnsubscribedEmails(ctx context.Context) ([]string, error) {
	if r.suppressErr != nil {
		return nil, r.suppressErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, s := range r.byEmail {
		if s.Status == subscriber.StatusUnsubscribed {
			out = append(out, s.Email)
		}
	}
	return out, nil
}

func (r *fakeSubscriberRepo) UpdateStatus(ctx context.Context, email, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byEmail[email]
	if !ok {
		return kirje_errors.ErrNotFound
	}
	s.Status = status
	return nil
}

type fakeProfileRepo struct {
	profiles []profile.Profile
	err      error
}

func (r *fakeProfileRepo) Create(ctx context.Context, p *profile.Profile) error {
	r.profiles = append(r.profiles, *p)
	return nil
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	for _, p := range r.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return profile.Profile{}, kirje_errors.ErrNotFound
}

func (r *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (profile.Profile, error) {
	for _, p := range r.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return profile.Profile{}, kirje_errors.ErrNotFound
}

func (r *fakeProfileRepo) GetAll(ctx context.Context) ([]profile.Profile, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.profiles, nil
}

type fakeNewsletterRepo struct {
	mu          sync.Mutex
	created     []newsletter.Newsletter
	logs        []newsletter.RecipientLog
	createErr   error
	appendErr   error
	finalizeErr error
	finalized   map[uuid.UUID][2]int
}

func newFakeNewsletterRepo() *fakeNewsletterRepo {
	return &fakeNewsletterRepo{finalized: make(map[uuid.UUID][2]int)}
}

func (r *fakeNewsletterRepo) Create(ctx context.Context, n *newsletter.Newsletter) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, *n)
	return nil
}

func (r *fakeNewsletterRepo) GetByID(ctx context.Context, id uuid.UUID) (newsletter.Newsletter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.created {
		if n.ID == id {
			return n, nil
		}
	}
	return newsletter.Newsletter{}, kirje_errors.ErrNotFound
}

func (r *fakeNewsletterRepo) List(ctx context.Context, page, limit int) ([]newsletter.Newsletter, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created, int64(len(r.created)), nil
}

func (r *fakeNewsletterRepo) Finalize(ctx context.Context, id uuid.UUID, successCount, failureCount int) error {
	if r.finalizeErr != nil {
		return r.finalizeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalized[id] = [2]int{successCount, failureCount}
	return nil
}

func (r *fakeNewsletterRepo) AppendRecipient(ctx context.Context, rec *newsletter.RecipientLog) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *rec)
	return nil
}

func (r *fakeNewsletterRepo) GetRecipients(ctx context.Context, newsletterID uuid.UUID) ([]newsletter.RecipientLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []newsletter.RecipientLog
	for _, l := range r.logs {
		if l.NewsletterID == newsletterID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor map[string]error
	failAll error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{failFor: make(map[string]error)}
}

func (m *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.failAll != nil {
		return m.failAll
	}
	if err, ok := m.failFor[msg.To]; ok {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, msg := range m.sent {
		out = append(out, msg.To)
	}
	return out
}
