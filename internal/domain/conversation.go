package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Conversation history is working memory only, never the order-of-record.
const (
	// HistoryWindow bounds how many turns a read returns, to cap prompt size.
	HistoryWindow = 10
	// SessionTTL is the sliding inactivity window; every touch refreshes it.
	SessionTTL = 3 * time.Hour
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a conversation's rolling history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ConversationKey derives the session key for a (customer, merchant)
// pair. The customer identifier is hashed so raw phone numbers never
// appear in store keys.
func ConversationKey(customerPhone, merchantID string) string {
	sum := sha256.Sum256([]byte(NormalizePhone(customerPhone)))
	return fmt.Sprintf("conv:%s:%s", hex.EncodeToString(sum[:8]), merchantID)
}
