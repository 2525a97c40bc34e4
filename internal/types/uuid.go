package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex inv_01JAB3Z0Q9W5H8K2M4N6P7R8S9
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	UUID_PREFIX_SUBSCRIPTION  = "sub"
	UUID_PREFIX_PLAN          = "plan"
	UUID_PREFIX_CUSTOMER      = "cust"
	UUID_PREFIX_BUSINESS_UNIT = "bu"
	UUID_PREFIX_INVOICE       = "inv"
	UUID_PREFIX_PAYMENT       = "pay"
	UUID_PREFIX_PLAN_CHANGE   = "pc"
	UUID_PREFIX_NOTIFICATION  = "ntf"
)
