package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// WorkflowConfig is everything injected into an n8n workflow template for
// one business. LabelIDs maps taxonomy paths to provider label/folder IDs;
// the template refuses to deploy while any referenced path is missing.
type WorkflowConfig struct {
	BusinessName  string            `json:"business_name"`
	Industry      string            `json:"industry"`
	Mailbox       string            `json:"mailbox"`
	MailboxID     string            `json:"mailbox_id"`
	Provider      string            `json:"provider"` // "gmail" or "outlook"
	Timezone      string            `json:"timezone"`
	AgentBaseURL  string            `json:"agent_base_url"`
	LabelIDs      map[string]string `json:"label_ids"`
	Managers      []Manager         `json:"managers"`
	Suppliers     []Supplier        `json:"suppliers"`
	CredentialRef string            `json:"credential_ref"`
}

// Hash returns a stable content hash of the config. Deployments are
// content-addressed: an unchanged hash for the same template version
// means there is nothing to redeploy.
func (c *WorkflowConfig) Hash() string {
	// Marshal with sorted label keys for stability.
	keys := make([]string, 0, len(c.LabelIDs))
	for k := range c.LabelIDs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(c.BusinessName)
	_ = enc.Encode(c.Industry)
	_ = enc.Encode(c.Mailbox)
	_ = enc.Encode(c.MailboxID)
	_ = enc.Encode(c.Provider)
	_ = enc.Encode(c.Timezone)
	_ = enc.Encode(c.AgentBaseURL)
	for _, k := range keys {
		_ = enc.Encode(k)
		_ = enc.Encode(c.LabelIDs[k])
	}
	_ = enc.Encode(c.Managers)
	_ = enc.Encode(c.Suppliers)
	_ = enc.Encode(c.CredentialRef)
	return hex.EncodeToString(h.Sum(nil))
}
