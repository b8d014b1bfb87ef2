package domain

// VanityCandidate is one available address returned by the inventory service.
type VanityCandidate struct {
	Address string `json:"address"`
	Term    string `json:"term,omitempty"`
}

// PurchaseRecord tracks the vanity addresses a buyer account has purchased
// under one origin/application. VanityAddresses grows by set union only.
type PurchaseRecord struct {
	Account         string   `json:"account" dynamodbav:"account"`
	OwnerKey        string   `json:"-" dynamodbav:"owner_key"` // origin#application_id
	Origin          string   `json:"origin" dynamodbav:"origin"`
	ApplicationID   string   `json:"application_id" dynamodbav:"application_id"`
	VanityAddresses []string `json:"vanity_addresses,omitempty" dynamodbav:"vanity_addresses,stringset,omitempty"`
	Updated         int64    `json:"updated" dynamodbav:"updated"`
}
