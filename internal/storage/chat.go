package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SaveChatMessage appends one transcript row. CreatedAt is stamped here so
// callers never have to care about clock handling.
func (db *DB) SaveChatMessage(ctx context.Context, msg *ChatMessage) error {
	query := `
		INSERT INTO chat_messages (session_id, role, content, intent, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	start := time.Now()
	result, err := db.writer.ExecContext(ctx, query, msg.SessionID, msg.Role, msg.Content, msg.Intent, time.Now().Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to save chat message",
			"session_id", msg.SessionID,
			"role", msg.Role,
			"error", err)
		return fmt.Errorf("failed to save chat message: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		msg.ID = id
	}

	warnIfSlow(ctx, "SaveChatMessage", start)
	return nil
}

// GetHistory returns the most recent limit messages of a session in
// chronological order. A non-positive limit returns an empty slice.
func (db *DB) GetHistory(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	if limit <= 0 {
		return nil, nil
	}

	// Fetch newest-first so LIMIT keeps the tail of the conversation,
	// then reverse into chronological order.
	query := `
		SELECT id, session_id, role, content, intent, created_at
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := db.reader.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query chat history",
			"session_id", sessionID,
			"error", err)
		return nil, fmt.Errorf("query chat history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []ChatMessage
	for rows.Next() {
		var msg ChatMessage
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.Intent, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// DeleteSessionHistory removes all transcript rows of a session.
// Used by session reset.
func (db *DB) DeleteSessionHistory(ctx context.Context, sessionID string) (int64, error) {
	result, err := db.writer.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = ?`, sessionID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete session history",
			"session_id", sessionID,
			"error", err)
		return 0, fmt.Errorf("delete session history: %w", err)
	}
	return result.RowsAffected()
}

// CountChatMessages returns the total number of transcript rows
func (db *DB) CountChatMessages(ctx context.Context) (int, error) {
	var count int
	if err := db.reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_messages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count chat messages: %w", err)
	}
	return count, nil
}

// PruneChatHistory removes transcript rows older than the given retention
// period. Run from the maintenance scheduler.
func (db *DB) PruneChatHistory(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Unix() - int64(retention.Seconds())
	result, err := db.writer.ExecContext(ctx, `DELETE FROM chat_messages WHERE created_at <= ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune chat history: %w", err)
	}
	return result.RowsAffected()
}
