// Package cursor provides explicitly owned poll cursors.
//
// A Cursor remembers where an incremental poll left off. It is created,
// held and persisted by the caller and handed to each poll call, which
// advances it only after a response was fully decoded. Nothing is kept in
// the API client between calls, so a poll can be resumed from any saved
// cursor or restarted by resetting it.
//
// Stores persist cursors between process runs:
//
//	store := cursor.NewRedisStore(redisClient, 0)
//	cur, err := store.Load(ctx, key)
//	if errors.Is(err, cursor.ErrNotFound) {
//		cur = cursor.New(key)
//	}
//	members, err := yt.PollNewMembers(ctx, cur)
//	...
//	err = store.Save(ctx, cur)
package cursor
