package review

import (
	"context"
	"strings"
	"sync"
	"testing"

	"go-cvbot-backend/internal/models"
	"go-cvbot-backend/internal/session"
	"go-cvbot-backend/internal/store"
	"go-cvbot-backend/internal/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	userID       = "555000111"
	userChatID   = int64(555000111)
	reviewChatID = int64(-1007777)
	orderID      = "order-1"
)

type sentMsg struct {
	chatID int64
	text   string
}

type fakeTransport struct {
	mu       sync.Mutex
	sent     []sentMsg
	captions []sentMsg
	forwards []sentMsg
	failSend bool
}

func (f *fakeTransport) SendText(ctx context.Context, chatID int64, text string, buttons ...transport.Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return assert.AnError
	}
	f.sent = append(f.sent, sentMsg{chatID: chatID, text: text})
	return nil
}

func (f *fakeTransport) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, buttons ...transport.Button) error {
	return nil
}

func (f *fakeTransport) EditMessageCaption(ctx context.Context, chatID int64, messageID int, caption string, buttons ...transport.Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captions = append(f.captions, sentMsg{chatID: chatID, text: caption})
	return nil
}

func (f *fakeTransport) ForwardPhoto(ctx context.Context, chatID int64, fileID, caption string, buttons ...transport.Button) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forwards = append(f.forwards, sentMsg{chatID: chatID, text: caption})
	return len(f.forwards), nil
}

func (f *fakeTransport) ForwardDocument(ctx context.Context, chatID int64, fileID, caption string, buttons ...transport.Button) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forwards = append(f.forwards, sentMsg{chatID: chatID, text: caption})
	return len(f.forwards), nil
}

func (f *fakeTransport) countTo(chatID int64, substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.sent {
		if m.chatID == chatID && strings.Contains(m.text, substr) {
			n++
		}
	}
	return n
}

func newHandoffEnv(t *testing.T) (*Handoff, *fakeTransport, *store.Memory, *session.Registry, *session.Session) {
	t.Helper()
	tr := &fakeTransport{}
	mem := store.NewMemory()
	reg := session.NewRegistry()
	h := NewHandoff(zap.NewNop(), tr, mem, reg, reviewChatID)

	sess := reg.GetOrCreate(userID, userChatID)
	sess.SetOrder(orderID)

	require.NoError(t, mem.PutOrder(context.Background(), &models.Order{
		ID:             orderID,
		TelegramUserID: userID,
		Status:         models.StatusPendingVerification,
	}))
	return h, tr, mem, reg, sess
}

func reviewer() transport.Sender {
	return transport.Sender{UserID: "9", ChatID: reviewChatID, FirstName: "Selam"}
}

func adminMsg() AdminMessage {
	return AdminMessage{ChatID: reviewChatID, MessageID: 42, Caption: "💳 Payment Proof Received"}
}

func TestSubmitProofForwardsAndAdvances(t *testing.T) {
	h, tr, mem, _, sess := newHandoffEnv(t)
	ctx := context.Background()
	sess.Candidate["phoneNumber"] = "+251911"

	//back the order up to the state a fresh submission would be in
	require.NoError(t, mem.PutOrder(ctx, &models.Order{
		ID: orderID, TelegramUserID: userID, Status: models.StatusAwaitingPayment,
	}))

	from := transport.Sender{UserID: userID, ChatID: userChatID, FirstName: "Abebe", Username: "abebe"}
	require.NoError(t, h.SubmitProof(ctx, sess, from, transport.File{FileID: "proof-1", IsPhoto: true}))

	require.Len(t, tr.forwards, 1)
	assert.Equal(t, reviewChatID, tr.forwards[0].chatID)
	assert.Contains(t, tr.forwards[0].text, "Abebe")
	assert.Contains(t, tr.forwards[0].text, "@abebe")
	assert.Contains(t, tr.forwards[0].text, "+251911")
	assert.Contains(t, tr.forwards[0].text, orderID)

	order, err := mem.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingVerification, order.Status)
	assert.Equal(t, "proof-1", order.ProofFileID)

	//user got the ack and the processing note
	assert.Equal(t, 1, tr.countTo(userChatID, "screenshot received"))
	assert.Equal(t, 1, tr.countTo(userChatID, "being processed"))
}

func TestSubmitProofWithoutOrder(t *testing.T) {
	h, _, _, reg, _ := newHandoffEnv(t)
	sess := reg.GetOrCreate("777", 777)

	err := h.SubmitProof(context.Background(), sess, transport.Sender{UserID: "777"}, transport.File{FileID: "x"})
	assert.Error(t, err)
}

func TestApproveNotifiesOnce(t *testing.T) {
	h, tr, mem, reg, sess := newHandoffEnv(t)
	ctx := context.Background()

	require.NoError(t, h.HandleDecision(ctx, reviewer(), "approve", []string{userID, orderID}, adminMsg()))

	order, err := mem.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, order.Status)
	assert.True(t, order.PaymentVerified)
	assert.True(t, sess.Notified())
	assert.Equal(t, 1, tr.countTo(userChatID, "Payment Approved"))

	//the delivered decision ends the conversation
	assert.Nil(t, reg.Get(userID))

	//admin message annotated and a second press changes nothing
	require.Len(t, tr.captions, 1)
	assert.Contains(t, tr.captions[0].text, "✅ APPROVED by Selam")

	require.NoError(t, h.HandleDecision(ctx, reviewer(), "approve", []string{userID, orderID}, adminMsg()))
	assert.Equal(t, 1, tr.countTo(userChatID, "Payment Approved"))
	assert.Len(t, tr.captions, 1)
}

func TestRejectAfterApproveDoesNothing(t *testing.T) {
	h, tr, mem, _, _ := newHandoffEnv(t)
	ctx := context.Background()

	require.NoError(t, h.HandleDecision(ctx, reviewer(), "approve", []string{userID, orderID}, adminMsg()))
	require.NoError(t, h.HandleDecision(ctx, reviewer(), "reject", []string{userID, orderID}, adminMsg()))

	order, err := mem.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, order.Status)
	assert.Equal(t, 0, tr.countTo(userChatID, "Payment Rejected"))
}

func TestRejectWithTypedReason(t *testing.T) {
	h, tr, mem, _, sess := newHandoffEnv(t)
	ctx := context.Background()

	require.NoError(t, h.HandleDecision(ctx, reviewer(), "reject", []string{userID, orderID}, adminMsg()))

	//reviewer was asked for a reason, nothing decided yet
	assert.Equal(t, 1, tr.countTo(reviewChatID, "rejection reason"))
	order, err := mem.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingVerification, order.Status)

	handled, err := h.HandleReviewerText(ctx, reviewer(), "Screenshot is unreadable")
	require.NoError(t, err)
	assert.True(t, handled)

	order, err = mem.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, order.Status)
	assert.Equal(t, "Screenshot is unreadable", order.StatusDetails)
	assert.Equal(t, 1, tr.countTo(userChatID, "Screenshot is unreadable"))
	assert.True(t, sess.Notified())
	assert.Nil(t, h.reg.Get(userID))

	require.Len(t, tr.captions, 1)
	assert.Contains(t, tr.captions[0].text, "❌ REJECTED by Selam: Screenshot is unreadable")
}

func TestRejectSkipUsesDefaultReason(t *testing.T) {
	h, tr, mem, _, _ := newHandoffEnv(t)
	ctx := context.Background()

	require.NoError(t, h.HandleDecision(ctx, reviewer(), "reject", []string{userID, orderID}, adminMsg()))
	handled, err := h.HandleReviewerText(ctx, reviewer(), "/skip")
	require.NoError(t, err)
	assert.True(t, handled)

	order, err := mem.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, order.Status)
	assert.Equal(t, defaultRejectReason, order.StatusDetails)
	assert.Equal(t, 1, tr.countTo(userChatID, defaultRejectReason))
}

func TestRejectPromptUndeliverableFallsBack(t *testing.T) {
	h, tr, mem, _, _ := newHandoffEnv(t)
	ctx := context.Background()

	tr.failSend = true
	require.NoError(t, h.HandleDecision(ctx, reviewer(), "reject", []string{userID, orderID}, adminMsg()))

	//decision applied immediately with the default reason
	order, err := mem.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, order.Status)
	assert.Equal(t, defaultRejectReason, order.StatusDetails)

	//no rejection left pending for the reviewer
	tr.failSend = false
	handled, err := h.HandleReviewerText(ctx, reviewer(), "late reason")
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestReviewerTextWithoutPending(t *testing.T) {
	h, _, _, _, _ := newHandoffEnv(t)
	handled, err := h.HandleReviewerText(context.Background(), reviewer(), "just chatting")
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestDecisionOnUnknownOrder(t *testing.T) {
	h, tr, _, _, _ := newHandoffEnv(t)

	require.NoError(t, h.HandleDecision(context.Background(), reviewer(), "approve", []string{userID, "no-such-order"}, adminMsg()))
	require.Len(t, tr.captions, 1)
	assert.Contains(t, tr.captions[0].text, "order not found")
}

func TestDecisionWithMalformedTag(t *testing.T) {
	h, tr, _, _, _ := newHandoffEnv(t)

	require.NoError(t, h.HandleDecision(context.Background(), reviewer(), "approve", []string{userID}, adminMsg()))
	require.Len(t, tr.captions, 1)
	assert.Contains(t, tr.captions[0].text, "malformed")
}

func TestNotifyFallsBackToUserChat(t *testing.T) {
	h, tr, mem, reg, _ := newHandoffEnv(t)
	ctx := context.Background()

	//session gone before the decision lands
	reg.Destroy(userID)

	require.NoError(t, h.HandleDecision(ctx, reviewer(), "approve", []string{userID, orderID}, adminMsg()))

	order, err := mem.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, order.Status)

	//private chat id equals the numeric user id
	assert.Equal(t, 1, tr.countTo(userChatID, "Payment Approved"))
}
