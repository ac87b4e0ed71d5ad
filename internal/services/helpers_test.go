package services

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"AMUZZ_BACK-END/internal/config"
	"AMUZZ_BACK-END/internal/utils"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []utils.VerificationEmail
	err  error
}

func (m *fakeMailer) SendVerificationEmail(ctx context.Context, msg utils.VerificationEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// lastToken extracts the token from the most recent verification link
func (m *fakeMailer) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no verification email sent")

	link, err := url.Parse(m.sent[len(m.sent)-1].VerificationURL)
	require.NoError(t, err)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)
	return token
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() *config.Config {
	return &config.Config{
		Verification: config.VerificationConfig{
			TokenTTL:       24 * time.Hour,
			ResendCooldown: time.Hour,
		},
		Frontend:        config.FrontendConfig{BaseURL: "http://front.test"},
		OutboundTimeout: time.Second,
	}
}

func fastHashing() AuthOption {
	return WithBcryptCost(bcrypt.MinCost)
}
