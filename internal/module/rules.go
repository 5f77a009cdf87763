package module

// 状态可变性判定规则
// https://docs.soliditylang.org/en/latest/contracts.html#state-mutability

type RuleData struct {
	ID          string
	Title       string
	Description string
}

const (
	RuleNotView    = "not-view"
	RuleNotPure    = "not-pure"
	RuleNonPayable = "non-payable"
)

var RuleDataMap = map[string]*RuleData{
	RuleNotView: {
		RuleNotView,
		"State modification",
		"The function writes storage or transient storage, emits a log, creates a contract, sends a message call that may modify state, or self-destructs. It cannot be declared view or pure.",
	},
	RuleNotPure: {
		RuleNotPure,
		"State read",
		"The function reads storage, balances, external code, or block and transaction environment. It cannot be declared pure.",
	},
	RuleNonPayable: {
		RuleNonPayable,
		"Call value guard",
		"The function reverts with empty data when the call carries value. It is not payable.",
	},
}
