package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		phone TEXT,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		email_verified BOOLEAN NOT NULL DEFAULT 0,
		verification_status TEXT NOT NULL DEFAULT 'NOT_STARTED',
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE email_verifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		token TEXT NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		verified_at DATETIME,
		created_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createTontineTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE tontines (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		amount_per_round TEXT NOT NULL,
		total_amount_per_round TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL,
		frequency TEXT NOT NULL,
		frequency_interval INTEGER NOT NULL DEFAULT 1,
		status TEXT NOT NULL,
		start_date DATETIME NOT NULL,
		end_date DATETIME,
		max_participants INTEGER,
		allow_multiple_shares BOOLEAN NOT NULL DEFAULT 0,
		max_shares_per_user INTEGER NOT NULL DEFAULT 1,
		invite_code TEXT NOT NULL UNIQUE,
		owner_id TEXT NOT NULL,
		is_private BOOLEAN NOT NULL DEFAULT 0,
		participant_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE participations (
		id TEXT PRIMARY KEY,
		tontine_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		shares INTEGER NOT NULL DEFAULT 1,
		total_committed TEXT NOT NULL DEFAULT '0',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		position INTEGER NOT NULL,
		joined_at DATETIME NOT NULL,
		left_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (tontine_id, account_id)
	);`)
}

func createRoundTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE rounds (
		id TEXT PRIMARY KEY,
		tontine_id TEXT NOT NULL,
		number INTEGER NOT NULL,
		expected_amount TEXT NOT NULL,
		collected_amount TEXT NOT NULL DEFAULT '0',
		distributed_amount TEXT NOT NULL DEFAULT '0',
		collection_start_date DATETIME NOT NULL,
		due_date DATETIME NOT NULL,
		completed_at DATETIME,
		status TEXT NOT NULL,
		winner_participation_id TEXT NOT NULL,
		force_completed BOOLEAN NOT NULL DEFAULT 0,
		completion_note TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (tontine_id, number)
	);`)
	mustExec(t, db, `CREATE TABLE payments (
		id TEXT PRIMARY KEY,
		round_id TEXT NOT NULL,
		tontine_id TEXT NOT NULL,
		participation_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL,
		due_date DATETIME NOT NULL,
		paid_at DATETIME,
		method TEXT,
		transaction_ref TEXT,
		failure_reason TEXT,
		origin TEXT NOT NULL DEFAULT 'SCHEDULED',
		replaces_payment_id TEXT,
		replaced_by_payment_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createNotificationTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE notifications (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		priority TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT 0,
		read_at DATETIME,
		tontine_id TEXT,
		round_id TEXT,
		payment_id TEXT,
		created_at DATETIME
	);`)
}

func createIdentityVerificationTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE identity_verifications (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		document_type TEXT NOT NULL,
		document_url TEXT NOT NULL,
		status TEXT NOT NULL,
		review_message TEXT,
		reviewed_by TEXT,
		reviewed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
