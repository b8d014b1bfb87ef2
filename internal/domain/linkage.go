package domain

import "strings"

// PayloadCategory names the set a payload id is stored under. Categories map
// to fixed record attributes; anything unrecognised collapses to CategoryOthers.
type PayloadCategory string

const (
	CategorySignIn   PayloadCategory = "signin"
	CategoryPayment  PayloadCategory = "payment"
	CategoryTrustSet PayloadCategory = "trustset"
	CategoryOthers   PayloadCategory = "others"
)

// NormalizeCategory trims and lower-cases a raw category tag and validates it
// against the known categories. Blank or unknown tags fall back to CategoryOthers.
func NormalizeCategory(raw string) PayloadCategory {
	switch PayloadCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case CategorySignIn:
		return CategorySignIn
	case CategoryPayment:
		return CategoryPayment
	case CategoryTrustSet:
		return CategoryTrustSet
	default:
		return CategoryOthers
	}
}

// ScopeKey identifies one linkage record. Subject is either a wallet-app user
// id or a ledger account address depending on the collection.
type ScopeKey struct {
	Origin        string
	Referer       string
	ApplicationID string
	Subject       string
}

// LinkageRecord associates one scope key with the payload ids seen for it,
// grouped by category. The category attributes are DynamoDB string sets so
// concurrent writers union into them server-side. For ledger-account records
// WalletUserID carries the last known wallet-app user id.
type LinkageRecord struct {
	ScopeID       string   `json:"-" dynamodbav:"scope_id"`        // application_id#subject
	RefererKey    string   `json:"-" dynamodbav:"origin_referer"`  // origin#referer
	Origin        string   `json:"origin" dynamodbav:"origin"`
	Referer       string   `json:"referer" dynamodbav:"referer"`
	ApplicationID string   `json:"application_id" dynamodbav:"application_id"`
	Subject       string   `json:"subject" dynamodbav:"subject"`
	WalletUserID  string   `json:"wallet_user_id,omitempty" dynamodbav:"wallet_user_id,omitempty"`
	SignIn        []string `json:"signin,omitempty" dynamodbav:"signin,stringset,omitempty"`
	Payment       []string `json:"payment,omitempty" dynamodbav:"payment,stringset,omitempty"`
	TrustSet      []string `json:"trustset,omitempty" dynamodbav:"trustset,stringset,omitempty"`
	Others        []string `json:"others,omitempty" dynamodbav:"others,stringset,omitempty"`
	Updated       int64    `json:"updated" dynamodbav:"updated"` // epoch millis
}

// PayloadSet returns the payload ids stored under the given category,
// or nil when the record has none.
func (r *LinkageRecord) PayloadSet(c PayloadCategory) []string {
	switch c {
	case CategorySignIn:
		return r.SignIn
	case CategoryPayment:
		return r.Payment
	case CategoryTrustSet:
		return r.TrustSet
	default:
		return r.Others
	}
}

// UserRegistration links a front-end user id to a wallet-app user id for one
// origin/application. Created once, never mutated; duplicates are ignored.
type UserRegistration struct {
	RegistrationID string `json:"-" dynamodbav:"registration_id"` // origin#application_id#frontend#wallet
	Origin         string `json:"origin" dynamodbav:"origin"`
	ApplicationID  string `json:"application_id" dynamodbav:"application_id"`
	FrontendUserID string `json:"frontend_user_id" dynamodbav:"frontend_user_id"`
	WalletUserID   string `json:"wallet_user_id" dynamodbav:"wallet_user_id"`
	Created        int64  `json:"created" dynamodbav:"created"`
}

// SearchTermRecord remembers which wallet-app user searched for which vanity
// term, so an interrupted purchase flow can be resumed.
type SearchTermRecord struct {
	SearchID      string `json:"-" dynamodbav:"search_id"` // application_id#wallet#term
	ApplicationID string `json:"application_id" dynamodbav:"application_id"`
	WalletUserID  string `json:"wallet_user_id" dynamodbav:"wallet_user_id"`
	SearchTerm    string `json:"search_term" dynamodbav:"search_term"`
	Created       int64  `json:"created" dynamodbav:"created"`
}
