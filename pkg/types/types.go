package types

// ConnectionStatus is the wallet session connection state.
type ConnectionStatus string

const (
	// StatusDisconnected means no wallet session is active; reads go
	// through the public endpoint.
	StatusDisconnected ConnectionStatus = "disconnected"
	// StatusConnecting means a wallet reported a connection and the
	// session is being validated and bound.
	StatusConnecting ConnectionStatus = "connecting"
	// StatusChainMismatch means the wallet is attached but on the wrong
	// network; a switch/add flow is in progress.
	StatusChainMismatch ConnectionStatus = "chain_mismatch"
	// StatusConnected means the session is fully bound to a signer and
	// the initial account data load has succeeded.
	StatusConnected ConnectionStatus = "connected"
)

// TxStatus is the lifecycle state of a single submitted transaction.
type TxStatus string

const (
	TxIdle              TxStatus = "idle"
	TxAwaitingSignature TxStatus = "awaiting_signature"
	TxPending           TxStatus = "pending"
	TxConfirmed         TxStatus = "confirmed"
	TxReverted          TxStatus = "reverted"
	TxRejected          TxStatus = "rejected"
)

// ContractName identifies a logical contract in the handle set.
type ContractName string

const (
	ContractToken     ContractName = "token"
	ContractStaking   ContractName = "staking"
	ContractRewards   ContractName = "rewards"
	ContractBooster   ContractName = "booster"
	ContractSale      ContractName = "sale"
	ContractGame      ContractName = "game"
	ContractFaucet    ContractName = "faucet"
	ContractNotary    ContractName = "notary"
	ContractEcosystem ContractName = "ecosystem"
)

// CoreContracts are the contracts whose addresses must be configured.
var CoreContracts = []ContractName{
	ContractToken,
	ContractStaking,
	ContractRewards,
	ContractBooster,
	ContractSale,
	ContractGame,
	ContractEcosystem,
}

// OptionalContracts may legitimately have a zero/placeholder address.
var OptionalContracts = []ContractName{
	ContractFaucet,
	ContractNotary,
}

// BoosterTier is a discount NFT tier index. Tier 0 means no booster.
type BoosterTier uint8

const (
	BoosterNone BoosterTier = iota
	BoosterBronze
	BoosterSilver
	BoosterGold
	BoosterDiamond
)

func (t BoosterTier) String() string {
	switch t {
	case BoosterNone:
		return "none"
	case BoosterBronze:
		return "bronze"
	case BoosterSilver:
		return "silver"
	case BoosterGold:
		return "gold"
	case BoosterDiamond:
		return "diamond"
	default:
		return "unknown"
	}
}

// ServiceName identifies a fee-gated ecosystem service in the fee registry.
type ServiceName string

const (
	ServiceClaim    ServiceName = "claim"
	ServiceGame     ServiceName = "game"
	ServiceNotary   ServiceName = "notary"
	ServiceDelegate ServiceName = "delegate"
)

// BipsDenominator is the basis-point scale used by every fee and
// discount table (10000 bips = 100%).
const BipsDenominator = 10000

// SecondsPerDay is the duration unit the staking contract uses when it
// floors a lock duration to whole days for stake-power accounting.
const SecondsPerDay = 86400
