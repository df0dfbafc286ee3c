package mailer

import "sync"

// SentMessage is one recorded delivery: who was addressed, which template
// rendered the mail, and the data it rendered with.
type SentMessage struct {
	Recipient string
	Template  string
	Data      any
}

// MockMailer records messages instead of delivering them, so tests can assert
// who would have been notified and through which template.
type MockMailer struct {
	mu   sync.Mutex
	sent []SentMessage
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(recipient, templateFile string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, SentMessage{
		Recipient: recipient,
		Template:  templateFile,
		Data:      data,
	})

	return nil
}

// SentMessages returns a snapshot of everything recorded so far.
func (m *MockMailer) SentMessages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	sent := make([]SentMessage, len(m.sent))
	copy(sent, m.sent)

	return sent
}

// Reset discards the recorded messages.
func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = nil
}
