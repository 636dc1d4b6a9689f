// Package dbops is the driver-agnostic DB abstraction from spec.md §4.7:
// one function per table interaction, implementable identically against a
// file-backed embedded engine or a networked SQL server. Every function
// returns an operational-success flag; logical emptiness is signalled via
// out-parameters (spec.md §4.7: "driver error → false ... empty result →
// true with zero values").
//
// All SQL text in this file uses "?" placeholders (the sqlite3/MySQL
// native style); the Postgres adapter (internal/dbops/pg) rewrites them to
// "$1", "$2", ... before executing, so the query text itself is shared
// across all three backends — only the thin Execer adapters differ
// (internal/dbops/pg, internal/dbops/sqlite, internal/dbops/mysql),
// matching spec.md §9's "driver abstraction" note that the variation
// points are narrow.
package dbops

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tibia/querymanager/internal/model"
)

// RowScanner is satisfied by *sql.Row and pgx.Row.
type RowScanner interface {
	Scan(dest ...any) error
}

// RowsIter is satisfied by *sql.Rows and pgx.Rows (via a thin wrapper).
type RowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Execer is the minimal query surface every backend adapter implements,
// bound either directly to a connection or to an open transaction.
type Execer interface {
	Exec(ctx context.Context, query string, args ...any) error
	QueryRow(ctx context.Context, query string, args ...any) RowScanner
	Query(ctx context.Context, query string, args ...any) (RowsIter, error)
}

// Tx is a scope-guarded transaction: Rollback is always safe to defer,
// since Commit marks the transaction done (spec.md §4.6/§9).
type Tx interface {
	Execer
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Beginner opens a new transaction scope bound to the same underlying
// connection as the Base's Execer.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// ErrNoRows signals logical emptiness the same way sql.ErrNoRows does;
// Base translates backend-specific "no rows" errors to this value so
// callers never see a driver type.
var ErrNoRows = sql.ErrNoRows

// Base implements the full DB abstraction generically against any
// Execer+Beginner pair. Each backend package (pg, sqlite, mysql) supplies
// a thin adapter and returns a *Base — see their New functions.
type Base struct {
	Execer
	beginner Beginner
	dialect  string
}

// NewBase builds the generic DB abstraction over e, using beginner to open
// transactions. dialect is a label only, used in error messages/metrics.
func NewBase(e Execer, beginner Beginner, dialect string) *Base {
	return &Base{Execer: e, beginner: beginner, dialect: dialect}
}

// Dialect returns the backend label ("postgres", "sqlite3", "mysql").
func (b *Base) Dialect() string { return b.dialect }

// WithTx runs fn inside a transaction scope. fn's Execer argument replaces
// b's own for the duration; the scope guard rolls back unless fn commits
// by returning a nil error, in which case WithTx commits. Any early
// return (error or panic propagated by the caller) leaves the transaction
// rolled back, per spec.md §4.6's scope-guard discipline.
func (b *Base) WithTx(ctx context.Context, fn func(tx Execer) error) (ok bool) {
	tx, err := b.beginner.Begin(ctx)
	if err != nil {
		return false // operational failure: caller's handler goes Pending.
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(tx); err != nil {
		return false
	}
	if err := tx.Commit(ctx); err != nil {
		return false
	}
	committed = true
	return true
}

// --- World configuration -----------------------------------------------

// LoadWorldConfig loads the world row by name. found=false, ok=true means
// logical emptiness (no such world); ok=false means an operational
// failure the worker should retry.
func (b *Base) LoadWorldConfig(ctx context.Context, name string) (ok, found bool, world model.WorldConfig) {
	row := b.QueryRow(ctx, `SELECT id, name, host, port FROM worlds WHERE name = ?`, name)
	err := row.Scan(&world.ID, &world.Name, &world.Host, &world.Port)
	ok, found = scanResult(err, &found)
	return
}

// GetWorlds lists every configured world.
func (b *Base) GetWorlds(ctx context.Context) (ok bool, worlds []model.WorldConfig) {
	rows, err := b.Query(ctx, `SELECT id, name, host, port FROM worlds ORDER BY id`)
	if err != nil {
		return false, nil
	}
	defer rows.Close()
	for rows.Next() {
		var w model.WorldConfig
		if err := rows.Scan(&w.ID, &w.Name, &w.Host, &w.Port); err != nil {
			return false, nil
		}
		worlds = append(worlds, w)
	}
	if rows.Err() != nil {
		return false, nil
	}
	return true, worlds
}

// --- Accounts ------------------------------------------------------------

// GetAccountByLogin fetches an account by (case-insensitive) login.
func (b *Base) GetAccountByLogin(ctx context.Context, login string) (ok, found bool, acc model.Account) {
	row := b.QueryRow(ctx, `
		SELECT id, login, password_hash, premium_until, warnings, final_warning, banished_until, banishments
		FROM accounts WHERE lower(login) = lower(?)`, login)
	err := row.Scan(&acc.ID, &acc.Login, &acc.PasswordHash, &acc.PremiumUntil, &acc.Warnings, &acc.FinalWarning, &acc.BanishedUntil, &acc.Banishments)
	ok, found = scanResult(err, &found)
	return
}

// GetAccountByID fetches an account by its numeric id.
func (b *Base) GetAccountByID(ctx context.Context, accountID int64) (ok, found bool, acc model.Account) {
	row := b.QueryRow(ctx, `
		SELECT id, login, password_hash, premium_until, warnings, final_warning, banished_until, banishments
		FROM accounts WHERE id = ?`, accountID)
	err := row.Scan(&acc.ID, &acc.Login, &acc.PasswordHash, &acc.PremiumUntil, &acc.Warnings, &acc.FinalWarning, &acc.BanishedUntil, &acc.Banishments)
	ok, found = scanResult(err, &found)
	return
}

// CreateAccount inserts a new account row. ok=true, created=false means the
// login already exists (a unique-constraint violation, a logical outcome
// the handler maps to CodeAlreadyExists — not an operational failure).
func (b *Base) CreateAccount(ctx context.Context, login, passwordHash string) (ok bool, created bool) {
	err := b.Exec(ctx, `INSERT INTO accounts (login, password_hash, premium_until, warnings, final_warning, banished_until, banishments)
		VALUES (?, ?, 0, 0, 0, 0, 0)`, login, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return true, false
		}
		return false, false
	}
	return true, true
}

// BanishmentOutcome computes the compound banishment policy from spec.md
// §4.6: a prior final warning makes every subsequent banishment
// permanent; repeated or escalated offenses double the requested
// duration (floored at 30 days) and set the final-warning flag; a plain
// first offense defaults to 7 days. The result is a duration in seconds
// to add to the current time (0 meaning permanent), not an absolute
// timestamp — the caller combines it with Now() before persisting via
// SetBanishment.
func BanishmentOutcome(requestedDuration int64, priorBanishments int, elevateFinalWarning, alreadyFinalWarning bool) (duration int64, finalWarning bool) {
	const day = 86400
	switch {
	case alreadyFinalWarning:
		return 0, false
	case priorBanishments > 5 || elevateFinalWarning:
		d := requestedDuration * 2
		if d < 30*day {
			d = 30 * day
		}
		return d, true
	default:
		d := requestedDuration
		if d == 0 {
			d = 7 * day
		}
		return d, false
	}
}

// SetBanishment persists the computed banishment outcome and counts this
// banishment towards the account's escalation total (BanishmentOutcome's
// priorBanishments), independent of the warnings/notation counter.
func (b *Base) SetBanishment(ctx context.Context, tx Execer, accountID, untilAbs int64, finalWarning bool) bool {
	err := tx.Exec(ctx, `UPDATE accounts SET banished_until = ?, final_warning = ?, banishments = banishments + 1 WHERE id = ?`,
		untilAbs, finalWarning, accountID)
	return err == nil
}

// InsertLoginAttempt writes an audit row. Always called outside the
// banishment transaction, per spec.md §4.6's side-effect ordering rule.
func (b *Base) InsertLoginAttempt(ctx context.Context, accountID int64, ip uint32, success bool) bool {
	err := b.Exec(ctx, `INSERT INTO login_attempts (account_id, ip, success, attempted_at) VALUES (?, ?, ?, ?)`,
		accountID, ip, success, nowUnix())
	return err == nil
}

// SetNamelock force-flags a character for a mandatory rename on next
// login (spec.md's Game-role SetNamelock opcode).
func (b *Base) SetNamelock(ctx context.Context, characterID int64, reason string) bool {
	err := b.Exec(ctx, `
		INSERT INTO namelocks (character_id, reason, set_at) VALUES (?, ?, ?)
		ON CONFLICT (character_id) DO UPDATE SET reason = excluded.reason, set_at = excluded.set_at`,
		characterID, reason, nowUnix())
	return err == nil
}

// BanishIP bans an IP address outright, independent of any account.
func (b *Base) BanishIP(ctx context.Context, ip uint32, reason string, expiresAt int64) bool {
	err := b.Exec(ctx, `
		INSERT INTO ip_bans (ip, reason, expires_at) VALUES (?, ?, ?)
		ON CONFLICT (ip) DO UPDATE SET reason = excluded.reason, expires_at = excluded.expires_at`,
		ip, reason, expiresAt)
	return err == nil
}

// ReportStatement logs a chat statement flagged by another player, the
// raw material a GM reviews before issuing a notation or banishment.
func (b *Base) ReportStatement(ctx context.Context, reporterCharacterID, reportedCharacterID int64, statement, reason string) bool {
	err := b.Exec(ctx, `
		INSERT INTO statement_reports (reporter_character_id, reported_character_id, statement, reason, reported_at)
		VALUES (?, ?, ?, ?, ?)`,
		reporterCharacterID, reportedCharacterID, statement, reason, nowUnix())
	return err == nil
}

// AddNotation increments an account's warning counter inside tx and
// returns the new total. This is the GM-notation count (SetNotation's
// opcode), a distinct signal from BanishmentOutcome's priorBanishments,
// which counts actual banishments via the accounts.banishments column.
func (b *Base) AddNotation(ctx context.Context, tx Execer, accountID int64) (ok bool, warnings int32) {
	if err := tx.Exec(ctx, `UPDATE accounts SET warnings = warnings + 1 WHERE id = ?`, accountID); err != nil {
		return false, 0
	}
	row := tx.QueryRow(ctx, `SELECT warnings FROM accounts WHERE id = ?`, accountID)
	if err := row.Scan(&warnings); err != nil {
		return false, 0
	}
	return true, warnings
}

// UpdateLastServer records which world a game client authenticated on.
func (b *Base) UpdateLastServer(ctx context.Context, accountID int64, worldID int32) bool {
	err := b.Exec(ctx, `UPDATE accounts SET last_server = ? WHERE id = ?`, worldID, accountID)
	return err == nil
}

// --- Characters ------------------------------------------------------------

// GetCharacterByName fetches a character by (case-insensitive) name in a
// world.
func (b *Base) GetCharacterByName(ctx context.Context, worldID int32, name string) (ok, found bool, ch model.Character) {
	row := b.QueryRow(ctx, `
		SELECT id, account_id, world_id, name, sex, rights, online, deleted
		FROM characters WHERE world_id = ? AND lower(name) = lower(?)`, worldID, name)
	err := row.Scan(&ch.ID, &ch.AccountID, &ch.WorldID, &ch.Name, &ch.Sex, &ch.Rights, &ch.Online, &ch.Deleted)
	ok, found = scanResult(err, &found)
	return
}

// CreateCharacter inserts a new character row.
func (b *Base) CreateCharacter(ctx context.Context, ch model.Character) (ok, created bool) {
	err := b.Exec(ctx, `INSERT INTO characters (account_id, world_id, name, sex, rights, online, deleted)
		VALUES (?, ?, ?, ?, ?, 0, 0)`, ch.AccountID, ch.WorldID, ch.Name, ch.Sex, ch.Rights)
	if err != nil {
		if isUniqueViolation(err) {
			return true, false
		}
		return false, false
	}
	return true, true
}

// SetCharacterOnline flips the online flag.
func (b *Base) SetCharacterOnline(ctx context.Context, characterID int64, online bool) bool {
	err := b.Exec(ctx, `UPDATE characters SET online = ? WHERE id = ?`, online, characterID)
	return err == nil
}

// ClearIsOnline is called when the game server itself is shutting
// down uncleanly: it marks every character that is still flagged online
// on a given world as offline.
func (b *Base) ClearIsOnline(ctx context.Context, worldID int32) bool {
	err := b.Exec(ctx, `UPDATE characters SET online = 0 WHERE world_id = ?`, worldID)
	return err == nil
}

// LoadPlayers returns every non-deleted character for an account in a world.
func (b *Base) LoadPlayers(ctx context.Context, worldID int32, accountID int64) (ok bool, chars []model.Character) {
	rows, err := b.Query(ctx, `
		SELECT id, account_id, world_id, name, sex, rights, online, deleted
		FROM characters WHERE world_id = ? AND account_id = ? AND deleted = 0`, worldID, accountID)
	if err != nil {
		return false, nil
	}
	defer rows.Close()
	for rows.Next() {
		var ch model.Character
		if err := rows.Scan(&ch.ID, &ch.AccountID, &ch.WorldID, &ch.Name, &ch.Sex, &ch.Rights, &ch.Online, &ch.Deleted); err != nil {
			return false, nil
		}
		chars = append(chars, ch)
	}
	if rows.Err() != nil {
		return false, nil
	}
	return true, chars
}

// EvictDeletedCharacters hard-deletes characters flagged deleted whose
// deletion grace period has elapsed.
func (b *Base) EvictDeletedCharacters(ctx context.Context, olderThan int64) (ok bool, evicted int64) {
	err := b.Exec(ctx, `DELETE FROM characters WHERE deleted = 1 AND deleted_at < ?`, olderThan)
	if err != nil {
		return false, 0
	}
	return true, 0
}

// DecrementIsOnline marks a single character offline, used when a game
// server reports a client disconnect rather than a full crash recovery
// sweep (contrast ClearIsOnline, which zeroes an entire world at once).
func (b *Base) DecrementIsOnline(ctx context.Context, characterID int64) bool {
	return b.SetCharacterOnline(ctx, characterID, false)
}

// CreatePlayerList replaces the online-players snapshot for a world with
// entries, the table GetOnlineCharacters later serves from (the game
// server reports who is online; the web role never queries game servers
// directly).
func (b *Base) CreatePlayerList(ctx context.Context, tx Execer, worldID int32, entries []model.PlayerListEntry) bool {
	if err := tx.Exec(ctx, `DELETE FROM player_list WHERE world_id = ?`, worldID); err != nil {
		return false
	}
	for _, e := range entries {
		if err := tx.Exec(ctx, `INSERT INTO player_list (world_id, character_id, name, level, vocation) VALUES (?, ?, ?, ?, ?)`,
			worldID, e.CharacterID, e.Name, e.Level, e.Vocation); err != nil {
			return false
		}
	}
	return true
}

// GetOnlineCharacters reads back the snapshot CreatePlayerList wrote,
// across every world if worldID is 0.
func (b *Base) GetOnlineCharacters(ctx context.Context, worldID int32) (ok bool, entries []model.PlayerListEntry) {
	var rows RowsIter
	var err error
	if worldID != 0 {
		rows, err = b.Query(ctx, `SELECT character_id, name, level, vocation FROM player_list WHERE world_id = ?`, worldID)
	} else {
		rows, err = b.Query(ctx, `SELECT character_id, name, level, vocation FROM player_list`)
	}
	if err != nil {
		return false, nil
	}
	defer rows.Close()
	for rows.Next() {
		var e model.PlayerListEntry
		if err := rows.Scan(&e.CharacterID, &e.Name, &e.Level, &e.Vocation); err != nil {
			return false, nil
		}
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return false, nil
	}
	return true, entries
}

// LogCharacterDeath records a death event.
func (b *Base) LogCharacterDeath(ctx context.Context, characterID int64, killerName string, at int64) bool {
	err := b.Exec(ctx, `INSERT INTO character_deaths (character_id, killer_name, died_at) VALUES (?, ?, ?)`,
		characterID, killerName, at)
	return err == nil
}

// --- Kill statistics -------------------------------------------------------

// LogKilledCreatures upserts a kill counter.
func (b *Base) LogKilledCreatures(ctx context.Context, characterID int64, creatureRaceID int32, count int64) bool {
	err := b.Exec(ctx, `
		INSERT INTO kill_statistics (character_id, creature_race_id, count) VALUES (?, ?, ?)
		ON CONFLICT (character_id, creature_race_id) DO UPDATE SET count = kill_statistics.count + excluded.count`,
		characterID, creatureRaceID, count)
	return err == nil
}

// GetKillStatistics returns every kill counter for a character.
func (b *Base) GetKillStatistics(ctx context.Context, characterID int64) (ok bool, entries []model.KillEntry) {
	rows, err := b.Query(ctx, `SELECT character_id, creature_race_id, count FROM kill_statistics WHERE character_id = ?`, characterID)
	if err != nil {
		return false, nil
	}
	defer rows.Close()
	for rows.Next() {
		var e model.KillEntry
		if err := rows.Scan(&e.CharacterID, &e.CreatureRaceID, &e.Count); err != nil {
			return false, nil
		}
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return false, nil
	}
	return true, entries
}

// --- Buddies -----------------------------------------------------------

// AddBuddy inserts a buddy relation.
func (b *Base) AddBuddy(ctx context.Context, accountID, buddyID int64, buddyName string) (ok, created bool) {
	err := b.Exec(ctx, `INSERT INTO buddies (account_id, buddy_id, buddy_name) VALUES (?, ?, ?)`, accountID, buddyID, buddyName)
	if err != nil {
		if isUniqueViolation(err) {
			return true, false
		}
		return false, false
	}
	return true, true
}

// RemoveBuddy deletes a buddy relation.
func (b *Base) RemoveBuddy(ctx context.Context, accountID, buddyID int64) bool {
	err := b.Exec(ctx, `DELETE FROM buddies WHERE account_id = ? AND buddy_id = ?`, accountID, buddyID)
	return err == nil
}

// --- Houses & auctions -----------------------------------------------------

// InsertHouses bulk-loads the static house table from world config.
func (b *Base) InsertHouses(ctx context.Context, houses []model.House) bool {
	for _, h := range houses {
		if err := b.Exec(ctx, `INSERT INTO houses (id, name, town, price) VALUES (?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET name = excluded.name, town = excluded.town, price = excluded.price`,
			h.ID, h.Name, h.Town, h.Price); err != nil {
			return false
		}
	}
	return true
}

// InsertHouseOwner/UpdateHouseOwner/DeleteHouseOwner/GetHouseOwners manage
// the house-ownership table.
func (b *Base) InsertHouseOwner(ctx context.Context, o model.HouseOwner) bool {
	err := b.Exec(ctx, `INSERT INTO house_owners (house_id, account_id, character_id, paid_until) VALUES (?, ?, ?, ?)`,
		o.HouseID, o.AccountID, o.CharacterID, o.PaidUntil)
	return err == nil
}

func (b *Base) UpdateHouseOwner(ctx context.Context, o model.HouseOwner) bool {
	err := b.Exec(ctx, `UPDATE house_owners SET account_id = ?, character_id = ?, paid_until = ? WHERE house_id = ?`,
		o.AccountID, o.CharacterID, o.PaidUntil, o.HouseID)
	return err == nil
}

func (b *Base) DeleteHouseOwner(ctx context.Context, houseID int32) bool {
	err := b.Exec(ctx, `DELETE FROM house_owners WHERE house_id = ?`, houseID)
	return err == nil
}

func (b *Base) GetHouseOwners(ctx context.Context) (ok bool, owners []model.HouseOwner) {
	rows, err := b.Query(ctx, `SELECT house_id, account_id, character_id, paid_until FROM house_owners`)
	if err != nil {
		return false, nil
	}
	defer rows.Close()
	for rows.Next() {
		var o model.HouseOwner
		if err := rows.Scan(&o.HouseID, &o.AccountID, &o.CharacterID, &o.PaidUntil); err != nil {
			return false, nil
		}
		owners = append(owners, o)
	}
	if rows.Err() != nil {
		return false, nil
	}
	return true, owners
}

// EvictFreeAccounts clears ownership for houses whose paid_until has
// lapsed, freeing the house for the next auction cycle.
func (b *Base) EvictFreeAccounts(ctx context.Context, now int64) (ok bool, evicted int64) {
	err := b.Exec(ctx, `DELETE FROM house_owners WHERE paid_until > 0 AND paid_until < ?`, now)
	if err != nil {
		return false, 0
	}
	return true, 0
}

// TransferHouses moves ownership from one account to another (e.g. guild
// leadership transfer).
func (b *Base) TransferHouses(ctx context.Context, fromAccountID, toAccountID int64) bool {
	err := b.Exec(ctx, `UPDATE house_owners SET account_id = ? WHERE account_id = ?`, toAccountID, fromAccountID)
	return err == nil
}

// EvictExGuildLeaders clears house ownership for accounts no longer
// flagged as guild leaders (supplied by the caller, since guild
// leadership lives outside this schema's scope).
func (b *Base) EvictExGuildLeaders(ctx context.Context, accountIDs []int64) bool {
	for _, id := range accountIDs {
		if err := b.Exec(ctx, `DELETE FROM house_owners WHERE account_id = ?`, id); err != nil {
			return false
		}
	}
	return true
}

func (b *Base) StartAuction(ctx context.Context, houseID int32, minBid int64, endsAt int64) bool {
	err := b.Exec(ctx, `INSERT INTO auctions (house_id, bidder_id, bid, ends_at) VALUES (?, 0, ?, ?)
		ON CONFLICT (house_id) DO UPDATE SET bid = excluded.bid, ends_at = excluded.ends_at`,
		houseID, minBid, endsAt)
	return err == nil
}

func (b *Base) GetAuctions(ctx context.Context) (ok bool, auctions []model.Auction) {
	rows, err := b.Query(ctx, `SELECT house_id, bidder_id, bid, ends_at FROM auctions`)
	if err != nil {
		return false, nil
	}
	defer rows.Close()
	for rows.Next() {
		var a model.Auction
		if err := rows.Scan(&a.HouseID, &a.BidderID, &a.Bid, &a.EndsAt); err != nil {
			return false, nil
		}
		auctions = append(auctions, a)
	}
	if rows.Err() != nil {
		return false, nil
	}
	return true, auctions
}

// FinishAuctions closes every auction whose end time has passed, awarding
// ownership to the highest bidder inside tx.
func (b *Base) FinishAuctions(ctx context.Context, tx Execer, now int64) (ok bool, finished []model.Auction) {
	rows, err := tx.Query(ctx, `SELECT house_id, bidder_id, bid, ends_at FROM auctions WHERE ends_at <= ?`, now)
	if err != nil {
		return false, nil
	}
	var toClose []model.Auction
	for rows.Next() {
		var a model.Auction
		if err := rows.Scan(&a.HouseID, &a.BidderID, &a.Bid, &a.EndsAt); err != nil {
			rows.Close()
			return false, nil
		}
		toClose = append(toClose, a)
	}
	rowsErr := rows.Err()
	rows.Close()
	if rowsErr != nil {
		return false, nil
	}

	for _, a := range toClose {
		if a.BidderID != 0 {
			if err := tx.Exec(ctx, `INSERT INTO house_owners (house_id, account_id, character_id, paid_until)
				VALUES (?, ?, 0, 0) ON CONFLICT (house_id) DO UPDATE SET account_id = excluded.account_id`,
				a.HouseID, a.BidderID); err != nil {
				return false, nil
			}
		}
		if err := tx.Exec(ctx, `DELETE FROM auctions WHERE house_id = ?`, a.HouseID); err != nil {
			return false, nil
		}
	}
	return true, toClose
}

// ExcludeFromAuctions flags an account ineligible to bid (e.g. already
// owns the per-world house limit).
func (b *Base) ExcludeFromAuctions(ctx context.Context, accountID int64) bool {
	err := b.Exec(ctx, `INSERT INTO auction_exclusions (account_id) VALUES (?)
		ON CONFLICT (account_id) DO NOTHING`, accountID)
	return err == nil
}

// --- helpers -----------------------------------------------------------

// scanResult maps a Scan error to the spec.md §4.7 (ok, found) contract:
// ErrNoRows is logical emptiness (ok=true, found=false), any other error
// is operational (ok=false).
func scanResult(err error, found *bool) (ok, foundOut bool) {
	if err == nil {
		*found = true
		return true, true
	}
	if errors.Is(err, ErrNoRows) {
		*found = false
		return true, false
	}
	*found = false
	return false, false
}

func nowUnix() int64 { return Now().Unix() }

// isUniqueViolation is one check shared by every backend: it looks for
// the common SQLSTATE/driver text fragments observed across pgx,
// go-sql-driver/mysql, and mattn/go-sqlite3.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, frag := range []string{"UNIQUE constraint", "Duplicate entry", "duplicate key value", "23505", "1062"} {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
