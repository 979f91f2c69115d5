package meeting

import (
	"context"

	"personal_assistant_bot/internal/domain/credential"
)

// Calendar creates events on behalf of the credential's owner.
type Calendar interface {
	// CreateEvent inserts m and fills in its ID and Link.
	CreateEvent(ctx context.Context, cred *credential.Credential, m *Meeting) error
}
