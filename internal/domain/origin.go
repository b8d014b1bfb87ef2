package domain

import "strings"

// ReturnURLRule maps a referer to the redirect targets for the web and app channels.
type ReturnURLRule struct {
	From  string `json:"from" dynamodbav:"from"`
	ToWeb string `json:"to_web" dynamodbav:"to_web"`
	ToApp string `json:"to_app" dynamodbav:"to_app"`
}

// OriginConfig is the per-application origin configuration. Origin holds a
// comma-separated allow-list of origin strings; membership checks split on comma.
type OriginConfig struct {
	ApplicationID string          `json:"application_id" dynamodbav:"application_id"`
	Origin        string          `json:"origin" dynamodbav:"origin"`
	ReturnURLs    []ReturnURLRule `json:"return_urls,omitempty" dynamodbav:"return_urls,omitempty"`
}

// OriginList splits the comma-joined allow-list into trimmed, non-empty entries.
func (o OriginConfig) OriginList() []string {
	var out []string
	for _, s := range strings.Split(o.Origin, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// AllowsOrigin reports whether origin appears in the allow-list. Matching is
// case-sensitive on the full origin string.
func (o OriginConfig) AllowsOrigin(origin string) bool {
	for _, s := range o.OriginList() {
		if s == origin {
			return true
		}
	}
	return false
}

// ApplicationKey holds the API secret issued to one application.
// ApplicationID is unique; the secret signs per-application bearer tokens.
type ApplicationKey struct {
	ApplicationID string `json:"application_id" dynamodbav:"application_id"`
	APISecret     string `json:"-" dynamodbav:"api_secret"`
}
