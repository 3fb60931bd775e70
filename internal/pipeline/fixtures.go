package pipeline

import "rugwatch/internal/domain"

// FixtureContracts returns a deterministic set of deployment records
// covering the interesting flag combinations: a clean token, a token
// with the full rugpull toolkit, a fee-tuning token, and a repeat
// deployer shipping several risky contracts.
func FixtureContracts() []*domain.ContractRecord {
	base := int64(1704067200000) // 2024-01-01T00:00:00Z

	return []*domain.ContractRecord{
		{
			Address:    "0xaaaa000000000000000000000000000000000001",
			Deployer:   "0xdep0000000000000000000000000000000000001",
			Source:     fixtureCleanToken,
			DeployedAt: base,
			CreatedAt:  base,
		},
		{
			Address:    "0xaaaa000000000000000000000000000000000002",
			Deployer:   "0xdep0000000000000000000000000000000000002",
			Source:     fixtureRugToolkit,
			DeployedAt: base + 60_000,
			CreatedAt:  base + 60_000,
		},
		{
			Address:    "0xaaaa000000000000000000000000000000000003",
			Deployer:   "0xdep0000000000000000000000000000000000002",
			Source:     fixtureFeeToken,
			DeployedAt: base + 120_000,
			CreatedAt:  base + 120_000,
		},
		{
			Address:    "0xaaaa000000000000000000000000000000000004",
			Deployer:   "0xdep0000000000000000000000000000000000002",
			Source:     fixtureRugToolkit,
			DeployedAt: base + 180_000,
			CreatedAt:  base + 180_000,
		},
		{
			Address:    "0xaaaa000000000000000000000000000000000005",
			Deployer:   "0xdep0000000000000000000000000000000000001",
			Source:     fixtureCommentedToken,
			DeployedAt: base + 240_000,
			CreatedAt:  base + 240_000,
		},
	}
}

const fixtureCleanToken = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.19;

contract CleanToken {
    string public name = "Clean";
    string public symbol = "CLN";
    uint256 public totalSupply = 1_000_000e18;
    mapping(address => uint256) public balanceOf;

    constructor() {
        balanceOf[msg.sender] = totalSupply;
    }

    function transfer(address to, uint256 amount) external returns (bool) {
        balanceOf[msg.sender] -= amount;
        balanceOf[to] += amount;
        return true;
    }
}
`

const fixtureRugToolkit = `// SPDX-License-Identifier: NONE
pragma solidity ^0.8.19;

contract MoonShot {
    address public owner;
    bool public tradingOpen = false;
    uint256 public maxTxAmount = 10_000e18;
    mapping(address => bool) private _isBlacklisted;
    mapping(address => uint256) public balanceOf;

    modifier onlyOwner() {
        require(msg.sender == owner, "not owner");
        _;
    }

    function mint(address to, uint256 amount) external onlyOwner {
        balanceOf[to] += amount;
    }

    function setBlacklist(address account, bool value) external onlyOwner {
        _isBlacklisted[account] = value;
    }

    function openTrading() external onlyOwner {
        tradingOpen = true;
    }

    function transfer(address to, uint256 amount) external returns (bool) {
        require(tradingOpen, "trading closed");
        require(!_isBlacklisted[msg.sender], "blacklisted");
        require(amount <= maxTxAmount, "over max tx");
        balanceOf[msg.sender] -= amount;
        balanceOf[to] += amount;
        return true;
    }
}
`

const fixtureFeeToken = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.19;

contract FeeToken {
    address public owner;
    uint256 public buyFee = 3;
    uint256 public sellFee = 3;
    mapping(address => uint256) public balanceOf;

    modifier onlyOwner() {
        require(msg.sender == owner, "not owner");
        _;
    }

    function setFees(uint256 buy, uint256 sell) external onlyOwner {
        buyFee = buy;
        sellFee = sell;
    }

    function transfer(address to, uint256 amount) external returns (bool) {
        uint256 fee = amount * sellFee / 100;
        balanceOf[msg.sender] -= amount;
        balanceOf[to] += amount - fee;
        balanceOf[owner] += fee;
        return true;
    }
}
`

// Risk keywords only inside comments: must not trip the auditor.
const fixtureCommentedToken = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.19;

// Unlike scam tokens this has no function mint(...) onlyOwner backdoor,
// no mapping(address => bool) blacklist, and no bool tradingOpen gate.
/* Earlier drafts had a maxTxAmount limit; it was removed. */
contract HonestToken {
    mapping(address => uint256) public balanceOf;

    function transfer(address to, uint256 amount) external returns (bool) {
        balanceOf[msg.sender] -= amount;
        balanceOf[to] += amount;
        return true;
    }
}
`
