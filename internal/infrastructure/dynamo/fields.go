package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUpdated       = "updated"
	fieldOrigin        = "origin"
	fieldReferer       = "referer"
	fieldApplicationID = "application_id"
	fieldSubject       = "subject"
	fieldWalletUserID  = "wallet_user_id"

	// statPrefix namespaces per-transaction-type counters inside a
	// statistics item so they cannot collide with key attributes.
	statPrefix = "stats_"

	// statsTypeTransactions is the sole statistics record kind today.
	statsTypeTransactions = "transactions"
)
