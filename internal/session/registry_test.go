package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetOrCreateDefaults(t *testing.T) {
	reg := NewRegistry()
	sess := reg.GetOrCreate("123", 456)

	assert.Equal(t, "123", sess.UserID)
	assert.Equal(t, int64(456), sess.ChatID)
	assert.Equal(t, StageSelectLocale, sess.Stage)
	assert.Equal(t, "en", sess.Locale())
	assert.Empty(t, sess.Candidate)
	assert.Empty(t, sess.Sections)
}

func TestGetOrCreateReturnsSameSession(t *testing.T) {
	reg := NewRegistry()
	a := reg.GetOrCreate("123", 456)
	a.Stage = StagePayment
	b := reg.GetOrCreate("123", 456)
	assert.Same(t, a, b)
	assert.Equal(t, StagePayment, b.Stage)
}

func TestDestroy(t *testing.T) {
	reg := NewRegistry()
	reg.GetOrCreate("123", 456)
	assert.Equal(t, 1, reg.Len())

	reg.Destroy("123")
	assert.Nil(t, reg.Get("123"))
	assert.Equal(t, 0, reg.Len())

	//destroying twice is fine
	reg.Destroy("123")
}

func TestResetDataKeepsIdentityAndOrder(t *testing.T) {
	reg := NewRegistry()
	sess := reg.GetOrCreate("123", 456)
	sess.SetLocale("am")
	sess.SetOrder("order-1")
	sess.Candidate["firstName"] = "Abebe"
	sess.CandidateUID = "uid-1"
	sess.HasProfile = true
	sess.FromMenu = true

	sess.ResetData()

	assert.Empty(t, sess.Candidate)
	assert.Empty(t, sess.CandidateUID)
	assert.False(t, sess.HasProfile)
	assert.False(t, sess.FromMenu)
	assert.Equal(t, "am", sess.Locale())
	assert.Equal(t, "order-1", sess.OrderID())
}

func TestMarkNotifiedSingleWinner(t *testing.T) {
	reg := NewRegistry()
	sess := reg.GetOrCreate("123", 456)
	sess.SetOrder("order-1")

	//many racing callers, exactly one wins
	var wg sync.WaitGroup
	wins := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sess.MarkNotified() {
				wins <- true
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Equal(t, 1, len(wins))
	assert.True(t, sess.Notified())
}

func TestSetOrderRearmsNotification(t *testing.T) {
	reg := NewRegistry()
	sess := reg.GetOrCreate("123", 456)
	sess.SetOrder("order-1")
	assert.True(t, sess.MarkNotified())

	//a fresh submission gets its own notification
	sess.SetOrder("order-2")
	assert.False(t, sess.Notified())
	assert.True(t, sess.MarkNotified())
}

func TestSnapshotIsStableCopy(t *testing.T) {
	reg := NewRegistry()
	reg.GetOrCreate("1", 1)
	reg.GetOrCreate("2", 2)

	snap := reg.Snapshot()
	reg.Destroy("1")

	assert.Equal(t, 2, len(snap))
	assert.Equal(t, 1, reg.Len())
}
