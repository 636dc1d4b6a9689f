package dispatch

import (
	"github.com/tibia/querymanager/internal/handlers"
	"github.com/tibia/querymanager/internal/protocol"
)

// BuildTable constructs the full opcode → handler table used by the
// worker pool. OpLogin is deliberately absent: the connection engine's
// authorization gate consumes it before a query ever reaches the queue.
func BuildTable() *Table {
	t := NewTable()

	// Game role.
	t.Register(protocol.OpLoginGame, handlers.LoginGame)
	t.Register(protocol.OpLogoutGame, handlers.LogoutGame)
	t.Register(protocol.OpSetNamelock, handlers.SetNamelock)
	t.Register(protocol.OpBanishAccount, handlers.BanishAccount)
	t.Register(protocol.OpSetNotation, handlers.SetNotation)
	t.Register(protocol.OpReportStatement, handlers.ReportStatement)
	t.Register(protocol.OpBanishIP, handlers.BanishIP)
	t.Register(protocol.OpLogCharacterDeath, handlers.LogCharacterDeath)
	t.Register(protocol.OpAddBuddy, handlers.AddBuddy)
	t.Register(protocol.OpRemoveBuddy, handlers.RemoveBuddy)
	t.Register(protocol.OpDecrementIsOnline, handlers.DecrementIsOnline)
	t.Register(protocol.OpFinishAuctions, handlers.FinishAuctions)
	t.Register(protocol.OpTransferHouses, handlers.TransferHouses)
	t.Register(protocol.OpEvictFreeAccounts, handlers.EvictFreeAccounts)
	t.Register(protocol.OpEvictDeletedCharacters, handlers.EvictDeletedCharacters)
	t.Register(protocol.OpEvictExGuildLeaders, handlers.EvictExGuildLeaders)
	t.Register(protocol.OpInsertHouseOwner, handlers.InsertHouseOwner)
	t.Register(protocol.OpUpdateHouseOwner, handlers.UpdateHouseOwner)
	t.Register(protocol.OpDeleteHouseOwner, handlers.DeleteHouseOwner)
	t.Register(protocol.OpGetHouseOwners, handlers.GetHouseOwners)
	t.Register(protocol.OpGetAuctions, handlers.GetAuctions)
	t.Register(protocol.OpStartAuction, handlers.StartAuction)
	t.Register(protocol.OpInsertHouses, handlers.InsertHouses)
	t.Register(protocol.OpClearIsOnline, handlers.ClearIsOnline)
	t.Register(protocol.OpCreatePlayerList, handlers.CreatePlayerList)
	t.Register(protocol.OpLogKilledCreatures, handlers.LogKilledCreatures)
	t.Register(protocol.OpLoadPlayers, handlers.LoadPlayers)
	t.Register(protocol.OpExcludeFromAuctions, handlers.ExcludeFromAuctions)
	t.Register(protocol.OpCancelHouseTransfer, handlers.CancelHouseTransfer)
	t.Register(protocol.OpLoadWorldConfig, handlers.LoadWorldConfig)

	// Login role.
	t.Register(protocol.OpLoginAccount, handlers.LoginAccount)

	// Web role.
	t.Register(protocol.OpCheckAccountPassword, handlers.CheckAccountPassword)
	t.Register(protocol.OpCreateAccount, handlers.CreateAccount)
	t.Register(protocol.OpCreateCharacter, handlers.CreateCharacter)
	t.Register(protocol.OpGetAccountSummary, handlers.GetAccountSummary)
	t.Register(protocol.OpGetCharacterProfile, handlers.GetCharacterProfile)
	t.Register(protocol.OpGetWorlds, handlers.GetWorlds)
	t.Register(protocol.OpGetOnlineCharacters, handlers.GetOnlineCharacters)
	t.Register(protocol.OpGetKillStatistics, handlers.GetKillStatistics)

	return t
}
