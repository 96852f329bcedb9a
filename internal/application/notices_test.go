package application

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoticeBoardKeepsMostRecent(t *testing.T) {
	t.Parallel()
	board := NewNoticeBoard(3, fixedClock{now: testNow})

	for i := range 5 {
		board.Notify(NoticeInfo, fmt.Sprintf("n%d", i))
	}

	recent := board.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, []string{"n2", "n3", "n4"}, messages(recent))
	assert.Equal(t, testNow, recent[0].At)

	assert.Equal(t, []string{"n3", "n4"}, messages(board.Recent(2)))
}

func TestNoticeBoardDrainEmpties(t *testing.T) {
	t.Parallel()
	board := NewNoticeBoard(0, nil)
	board.Notify(NoticeError, "boom")

	assert.Equal(t, []string{"boom"}, messages(board.Drain()))
	assert.Empty(t, board.Drain())
	assert.Empty(t, board.Recent(5))
}

func TestNoticeBoardSubscribe(t *testing.T) {
	t.Parallel()
	board := NewNoticeBoard(5, nil)
	ch, cancel := board.Subscribe(2)

	board.Notify(NoticeSuccess, "saved")
	got := <-ch
	assert.Equal(t, "saved", got.Message)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	board.Notify(NoticeInfo, "after cancel")
	assert.Len(t, board.Recent(0), 2)
}

func messages(notices []Notice) []string {
	out := make([]string, len(notices))
	for i, n := range notices {
		out[i] = n.Message
	}
	return out
}
