package contracts

// Contract ABIs for the Backchain deployment. Each constant carries
// only the fragment of the deployed interface this client actually
// calls; the contracts themselves live outside this repository.

// TokenABI is the $BKC ERC20 token interface.
const TokenABI = `[
	{
		"constant": true,
		"inputs": [{"name": "account", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [
			{"name": "owner", "type": "address"},
			{"name": "spender", "type": "address"}
		],
		"name": "allowance",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "spender", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "approve",
		"outputs": [{"name": "", "type": "bool"}],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "transfer",
		"outputs": [{"name": "", "type": "bool"}],
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "from", "type": "address"},
			{"indexed": true, "name": "to", "type": "address"},
			{"indexed": false, "name": "value", "type": "uint256"}
		],
		"name": "Transfer",
		"type": "event"
	}
]`

// StakingABI is the staking/delegation manager interface.
const StakingABI = `[
	{
		"constant": false,
		"inputs": [
			{"name": "amount", "type": "uint256"},
			{"name": "lockDuration", "type": "uint256"}
		],
		"name": "stake",
		"outputs": [],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [{"name": "amount", "type": "uint256"}],
		"name": "unstake",
		"outputs": [],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "account", "type": "address"}],
		"name": "stakedOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "account", "type": "address"}],
		"name": "stakePowerOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "account", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"},
			{"indexed": false, "name": "lockDuration", "type": "uint256"}
		],
		"name": "Staked",
		"type": "event"
	}
]`

// RewardsABI is the reward distributor interface.
const RewardsABI = `[
	{
		"constant": true,
		"inputs": [{"name": "account", "type": "address"}],
		"name": "pendingRewards",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [],
		"name": "claim",
		"outputs": [],
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "account", "type": "address"},
			{"indexed": false, "name": "gross", "type": "uint256"},
			{"indexed": false, "name": "fee", "type": "uint256"}
		],
		"name": "RewardPaid",
		"type": "event"
	}
]`

// BoosterABI is the discount NFT interface.
const BoosterABI = `[
	{
		"constant": true,
		"inputs": [{"name": "owner", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "owner", "type": "address"}],
		"name": "highestTierOf",
		"outputs": [{"name": "", "type": "uint8"}],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [{"name": "tier", "type": "uint8"}],
		"name": "mint",
		"outputs": [],
		"payable": true,
		"type": "function"
	}
]`

// SaleABI is the presale contract interface.
const SaleABI = `[
	{
		"constant": true,
		"inputs": [],
		"name": "price",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [{"name": "amount", "type": "uint256"}],
		"name": "buy",
		"outputs": [],
		"payable": true,
		"type": "function"
	}
]`

// GameABI is the Fortune Pool game interface.
const GameABI = `[
	{
		"constant": false,
		"inputs": [{"name": "wager", "type": "uint256"}],
		"name": "play",
		"outputs": [],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [{"name": "roundId", "type": "uint256"}],
		"name": "resolve",
		"outputs": [],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [],
		"name": "currentRound",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	}
]`

// FaucetABI is the optional test-token faucet interface.
const FaucetABI = `[
	{
		"constant": false,
		"inputs": [],
		"name": "claim",
		"outputs": [],
		"type": "function"
	}
]`

// NotaryABI is the optional document notarization interface.
const NotaryABI = `[
	{
		"constant": false,
		"inputs": [{"name": "digest", "type": "bytes32"}],
		"name": "submit",
		"outputs": [],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "digest", "type": "bytes32"}],
		"name": "isNotarized",
		"outputs": [{"name": "", "type": "bool"}],
		"type": "function"
	}
]`

// EcosystemABI is the fee registry interface holding the protocol
// parameter tables.
const EcosystemABI = `[
	{
		"constant": true,
		"inputs": [],
		"name": "claimFeeBips",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "tier", "type": "uint8"}],
		"name": "discountBips",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "service", "type": "string"}],
		"name": "serviceFee",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "service", "type": "string"}],
		"name": "minStakePower",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	}
]`
