// Package sqlite provides a core.RoomStore backed by an embedded SQLite
// database. Rooms are persisted as a JSON document next to a set of
// scalar columns for querying, and the conversation is mirrored into a
// normalized messages table so transcripts can be inspected with plain
// SQL. The driver is the CGO-free modernc build.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/hupe1980/haggle/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	room_id       TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL DEFAULT '',
	buyer_id      TEXT NOT NULL,
	buyer_name    TEXT NOT NULL,
	item_name     TEXT NOT NULL,
	status        TEXT NOT NULL,
	current_round INTEGER NOT NULL,
	max_rounds    INTEGER NOT NULL,
	room_json     TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	room_id        TEXT NOT NULL,
	message_id     TEXT NOT NULL,
	position       INTEGER NOT NULL,
	round          INTEGER NOT NULL,
	sender_id      TEXT NOT NULL,
	sender_type    TEXT NOT NULL,
	sender_name    TEXT NOT NULL,
	content        TEXT NOT NULL,
	offer_price    REAL,
	offer_quantity INTEGER,
	created_at     TEXT NOT NULL,
	PRIMARY KEY (room_id, message_id)
);

CREATE INDEX IF NOT EXISTS idx_messages_room_position ON messages(room_id, position);

CREATE TABLE IF NOT EXISTS outcomes (
	room_id              TEXT PRIMARY KEY,
	selected_seller_id   TEXT,
	selected_seller_name TEXT,
	final_price          REAL,
	final_quantity       INTEGER,
	reason               TEXT NOT NULL,
	rounds               INTEGER NOT NULL
);
`

// Store is a SQLite-backed RoomStore. It is safe for concurrent use;
// SQLite serializes writers and the busy timeout absorbs lock contention
// between the negotiation runner and HTTP reads.
type Store struct {
	db *sqlx.DB
}

var _ core.RoomStore = (*Store)(nil)

// Open opens or creates the database at path and applies the schema.
// WAL mode keeps readers unblocked while a negotiation run persists
// progress.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()

		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)

	return err
}

// Create implements core.RoomStore.
func (s *Store) Create(ctx context.Context, room *core.Room) error {
	return s.save(ctx, room, true)
}

// Save implements core.RoomStore.
func (s *Store) Save(ctx context.Context, room *core.Room) error {
	return s.save(ctx, room, false)
}

// save writes the full room state in one transaction: the room row is
// upserted and the message mirror plus outcome row are replaced
// wholesale, which keeps the write idempotent.
func (s *Store) save(ctx context.Context, room *core.Room, create bool) error {
	raw, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal room: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.GetContext(ctx, &exists, "SELECT COUNT(*) FROM rooms WHERE room_id = ?", room.ID); err != nil {
		return fmt.Errorf("check room: %w", err)
	}

	if create && exists > 0 {
		return fmt.Errorf("room %s already exists", room.ID)
	}

	if !create && exists == 0 {
		return fmt.Errorf("%w: %s", core.ErrRoomNotFound, room.ID)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rooms (room_id, session_id, buyer_id, buyer_name, item_name,
			status, current_round, max_rounds, room_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(room_id) DO UPDATE SET
			status = excluded.status,
			current_round = excluded.current_round,
			room_json = excluded.room_json,
			updated_at = excluded.updated_at`,
		room.ID, room.SessionID, room.BuyerID, room.BuyerName, room.Constraints.ItemName,
		string(room.Status()), room.CurrentRound(), room.MaxRounds, string(raw),
		room.Created.UTC().Format(time.RFC3339Nano), room.Updated().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("upsert room: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE room_id = ?", room.ID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO messages (room_id, message_id, position, round, sender_id,
			sender_type, sender_name, content, offer_price, offer_quantity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare message insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range room.Conversation.Messages() {
		var price, quantity any

		if msg.Offer != nil {
			price = msg.Offer.Price
			quantity = msg.Offer.Quantity
		}

		if _, err := stmt.ExecContext(ctx,
			room.ID, msg.ID, i, msg.Round, msg.SenderID, string(msg.SenderType),
			msg.SenderName, msg.Content, price, quantity,
			msg.Timestamp.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert message %s: %w", msg.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM outcomes WHERE room_id = ?", room.ID); err != nil {
		return fmt.Errorf("clear outcome: %w", err)
	}

	if outcome := room.Outcome(); outcome != nil {
		var sellerID, sellerName, price, quantity any

		if outcome.SelectedSellerID != "" {
			sellerID = outcome.SelectedSellerID
			sellerName = outcome.SelectedSellerName
		}

		if outcome.FinalOffer != nil {
			price = outcome.FinalOffer.Price
			quantity = outcome.FinalOffer.Quantity
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO outcomes (room_id, selected_seller_id, selected_seller_name,
				final_price, final_quantity, reason, rounds)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			room.ID, sellerID, sellerName, price, quantity, outcome.Reason, outcome.Rounds,
		); err != nil {
			return fmt.Errorf("insert outcome: %w", err)
		}
	}

	return tx.Commit()
}

// Get implements core.RoomStore. The room is rebuilt from its JSON
// document, so it round-trips bit for bit including the conversation.
func (s *Store) Get(ctx context.Context, roomID string) (*core.Room, error) {
	var raw string

	err := s.db.GetContext(ctx, &raw, "SELECT room_json FROM rooms WHERE room_id = ?", roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrRoomNotFound, roomID)
	}

	if err != nil {
		return nil, fmt.Errorf("select room: %w", err)
	}

	room := new(core.Room)
	if err := json.Unmarshal([]byte(raw), room); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", roomID, err)
	}

	return room, nil
}

// List implements core.RoomStore.
func (s *Store) List(ctx context.Context) ([]*core.Room, error) {
	var raws []string

	if err := s.db.SelectContext(ctx, &raws, "SELECT room_json FROM rooms ORDER BY created_at DESC, room_id"); err != nil {
		return nil, fmt.Errorf("select rooms: %w", err)
	}

	rooms := make([]*core.Room, 0, len(raws))

	for _, raw := range raws {
		room := new(core.Room)
		if err := json.Unmarshal([]byte(raw), room); err != nil {
			return nil, fmt.Errorf("decode room: %w", err)
		}

		rooms = append(rooms, room)
	}

	return rooms, nil
}

// Delete implements core.RoomStore.
func (s *Store) Delete(ctx context.Context, roomID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM rooms WHERE room_id = ?", roomID)
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", core.ErrRoomNotFound, roomID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE room_id = ?", roomID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM outcomes WHERE room_id = ?", roomID); err != nil {
		return fmt.Errorf("delete outcome: %w", err)
	}

	return tx.Commit()
}

// messageRow is the scan target for the normalized message mirror.
type messageRow struct {
	MessageID     string          `db:"message_id"`
	Round         int             `db:"round"`
	SenderID      string          `db:"sender_id"`
	SenderType    string          `db:"sender_type"`
	SenderName    string          `db:"sender_name"`
	Content       string          `db:"content"`
	OfferPrice    sql.NullFloat64 `db:"offer_price"`
	OfferQuantity sql.NullInt64   `db:"offer_quantity"`
	CreatedAt     string          `db:"created_at"`
}

// Transcript returns a room's conversation from the message mirror in
// append order. It reads only the normalized table, which makes it handy
// for inspection without decoding the full room document.
func (s *Store) Transcript(ctx context.Context, roomID string) ([]core.Message, error) {
	var rows []messageRow

	if err := s.db.SelectContext(ctx, &rows, `
		SELECT message_id, round, sender_id, sender_type, sender_name,
			content, offer_price, offer_quantity, created_at
		FROM messages WHERE room_id = ? ORDER BY position`, roomID); err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}

	messages := make([]core.Message, 0, len(rows))

	for _, row := range rows {
		msg := core.Message{
			ID:         row.MessageID,
			Round:      row.Round,
			SenderID:   row.SenderID,
			SenderType: core.SenderType(row.SenderType),
			SenderName: row.SenderName,
			Content:    row.Content,
		}

		if ts, err := time.Parse(time.RFC3339Nano, row.CreatedAt); err == nil {
			msg.Timestamp = ts
		}

		if row.OfferPrice.Valid && row.OfferQuantity.Valid {
			msg.Offer = &core.Offer{
				Price:    row.OfferPrice.Float64,
				Quantity: int(row.OfferQuantity.Int64),
			}
		}

		messages = append(messages, msg)
	}

	return messages, nil
}
