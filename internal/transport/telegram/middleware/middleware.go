package middleware

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

func Logger() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			now := time.Now()

			rqID := uuid.NewString()
			c.Set("rqID", rqID)

			slog.Info(
				"start request",
				slog.String("rqID", rqID),
			)

			defer func() {
				slog.Info(
					"request finished",
					slog.String("rqID", rqID),
					slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
				)
			}()

			return next(c)
		}
	}
}

// SerializePerChat processes one update at a time per chat, so a session's
// state transitions always see the effect of the previous event. Updates
// from different chats still run concurrently.
func SerializePerChat() tele.MiddlewareFunc {
	var mu sync.Mutex
	chatLocks := make(map[int64]*sync.Mutex)

	lockFor := func(chatID int64) *sync.Mutex {
		mu.Lock()
		defer mu.Unlock()
		lock, ok := chatLocks[chatID]
		if !ok {
			lock = &sync.Mutex{}
			chatLocks[chatID] = lock
		}
		return lock
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			if chat == nil {
				return next(c)
			}

			lock := lockFor(chat.ID)
			lock.Lock()
			defer lock.Unlock()

			return next(c)
		}
	}
}
