// Package model holds the plain record shapes passed between query
// handlers and the DB abstraction (spec.md §3). They carry no invariants
// of their own beyond those enforced by the schema.
package model

// WorldConfig describes one game world/shard.
type WorldConfig struct {
	ID   int32
	Name string
	Host string
	Port uint16
}

// Account is a login-server account row.
type Account struct {
	ID            int64
	Login         string
	PasswordHash  string
	PremiumUntil  int64 // unix seconds
	Warnings      int32 // GM notations, independent of banishment count
	FinalWarning  bool
	BanishedUntil int64 // 0 = not banished
	Banishments   int32 // times this account has been banished; feeds BanishmentOutcome's escalation rule
}

// Character is a game-world character row.
type Character struct {
	ID       int64
	AccountID int64
	WorldID  int32
	Name     string
	Sex      byte
	Rights   []byte
	Online   bool
	Deleted  bool
}

// BanEntry records a banishment or namelock action.
type BanEntry struct {
	AccountID    int64
	Reason       string
	ExpiresAt    int64 // unix seconds, 0 = permanent
	FinalWarning bool
}

// IPBan records an IP-address banishment.
type IPBan struct {
	IP        uint32
	Reason    string
	ExpiresAt int64
}

// House is a purchasable house/guildhall.
type House struct {
	ID    int32
	Name  string
	Town  string
	Price int64
}

// HouseOwner associates a house with the owning account/character.
type HouseOwner struct {
	HouseID     int32
	AccountID   int64
	CharacterID int64
	PaidUntil   int64
}

// Auction is an in-progress house auction.
type Auction struct {
	HouseID  int32
	BidderID int64
	Bid      int64
	EndsAt   int64
}

// KillEntry is one row of the kill-statistics report table.
type KillEntry struct {
	CharacterID int64
	CreatureRaceID int32
	Count       int64
}

// BuddyEntry is a buddy-list relation between two accounts.
type BuddyEntry struct {
	AccountID   int64
	BuddyID     int64
	BuddyName   string
}

// PlayerListEntry is a row used by CreatePlayerList/GetOnlineCharacters.
type PlayerListEntry struct {
	CharacterID int64
	Name        string
	Level       int32
	Vocation    int32
}
