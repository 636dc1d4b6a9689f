package protocol

// gameOpcodes, loginOpcodes, and webOpcodes are the per-role opcode
// whitelists from spec.md §6. OpLogin is excluded: it is handled by the
// connection engine's authorization gate before any whitelist check runs.
var gameOpcodes = buildSet(
	OpLoginGame, OpLogoutGame, OpSetNamelock, OpBanishAccount, OpSetNotation,
	OpReportStatement, OpBanishIP, OpLogCharacterDeath, OpAddBuddy, OpRemoveBuddy,
	OpDecrementIsOnline, OpFinishAuctions, OpTransferHouses, OpEvictFreeAccounts,
	OpEvictDeletedCharacters, OpEvictExGuildLeaders, OpInsertHouseOwner,
	OpUpdateHouseOwner, OpDeleteHouseOwner, OpGetHouseOwners, OpGetAuctions,
	OpStartAuction, OpInsertHouses, OpClearIsOnline, OpCreatePlayerList,
	OpLogKilledCreatures, OpLoadPlayers, OpExcludeFromAuctions,
	OpCancelHouseTransfer, OpLoadWorldConfig,
)

var loginOpcodes = buildSet(OpLoginAccount)

var webOpcodes = buildSet(
	OpCheckAccountPassword, OpCreateAccount, OpCreateCharacter,
	OpGetAccountSummary, OpGetCharacterProfile, OpGetWorlds,
	OpGetOnlineCharacters, OpGetKillStatistics,
)

func buildSet(ops ...Opcode) map[Opcode]struct{} {
	m := make(map[Opcode]struct{}, len(ops))
	for _, o := range ops {
		m[o] = struct{}{}
	}
	return m
}

// Allowed reports whether opcode is permitted for an already-authorized
// connection with the given role.
func Allowed(role Role, op Opcode) bool {
	var set map[Opcode]struct{}
	switch role {
	case RoleGame:
		set = gameOpcodes
	case RoleLogin:
		set = loginOpcodes
	case RoleWeb:
		set = webOpcodes
	default:
		return false
	}
	_, ok := set[op]
	return ok
}
