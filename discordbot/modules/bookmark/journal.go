package bookmark

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Postgres driver
	"go.uber.org/multierr"
)

// Entry is a delivered bookmark
type Entry struct {
	MemberID  string `db:"member_id"`
	MessageID string `db:"message_id"`
	ChannelID string `db:"channel_id"`
	GuildID   string `db:"guild_id"`
	Title     string `db:"title"`
}

// Journal keeps history of delivered bookmarks
type Journal interface {
	Record(ctx context.Context, entry *Entry) error
	Forget(ctx context.Context, memberID string, messageIDs ...string) error
	Close() error
}

type nopJournal struct{}

func (nopJournal) Record(context.Context, *Entry) error {
	return nil
}

func (nopJournal) Forget(context.Context, string, ...string) error {
	return nil
}

func (nopJournal) Close() error {
	return nil
}

type sqlJournal struct {
	connect *sqlx.DB
	record  *sqlx.NamedStmt
	forget  *sqlx.Stmt
}

// OpenJournal connects to Postgres journal, empty dsn disables journaling
func OpenJournal(dsn string) (Journal, error) {
	if dsn == "" {
		return nopJournal{}, nil
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	return NewJournal(db)
}

// NewJournal prepares journal statements on given database
func NewJournal(db *sqlx.DB) (Journal, error) {
	recordStmt, err := db.PrepareNamed(`
insert into bookmark(
  member_id,
  message_id,
  channel_id,
  guild_id,
  title,
  created_at
) values (
  :member_id,
  :message_id,
  :channel_id,
  :guild_id,
  :title,
  now()
)
`)
	if err != nil {
		return nil, multierr.Append(err, db.Close())
	}

	forgetStmt, err := db.Preparex(`
update bookmark set deleted_at = now()
where
  member_id = $1 and
  message_id = $2 and
  deleted_at is null
`)
	if err != nil {
		return nil, multierr.Combine(err, recordStmt.Close(), db.Close())
	}

	return &sqlJournal{
		connect: db,
		record:  recordStmt,
		forget:  forgetStmt,
	}, nil
}

func (j *sqlJournal) Record(ctx context.Context, entry *Entry) error {
	_, err := j.record.ExecContext(ctx, entry)

	return err
}

func (j *sqlJournal) Forget(ctx context.Context, memberID string, messageIDs ...string) (err error) {
	for _, id := range messageIDs {
		_, e := j.forget.ExecContext(ctx, memberID, id)
		err = multierr.Append(err, e)
	}

	return
}

func (j *sqlJournal) Close() error {
	return multierr.Combine(j.record.Close(), j.forget.Close(), j.connect.Close())
}
