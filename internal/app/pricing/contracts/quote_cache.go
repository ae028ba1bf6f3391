package contracts

import (
	"context"
	"fmt"
	"strings"

	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
)

// QuoteCache memoizes query results. Values are encoded by the implementation.
type QuoteCache interface {
	// Get decodes a cached value into dst and reports whether it was found.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// QuoteKey builds the cache key of a priced stay.
// variant names the pricing setup, such as the policy list, so differently configured queries never share entries.
func QuoteKey(query, roomID string, stay domain.Stay, guests int, variant ...string) string {
	key := fmt.Sprintf("roomrate:%s:%s:%s:%s:%d", query, roomID, stay.In, stay.Out, guests)
	if len(variant) > 0 {
		key += ":" + strings.Join(variant, ",")
	}
	return key
}

// PolicyVariant renders a policy list for QuoteKey.
func PolicyVariant(policies []domain.StackingPolicy) []string {
	out := make([]string, len(policies))
	for i, p := range policies {
		out[i] = string(p.Name) + "=" + p.Secondary.String()
	}
	return out
}
