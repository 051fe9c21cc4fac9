package auth

import (
	"context"
	"fmt"
)

var _ Checker = (*IdentityChecker)(nil)

type Checker interface {
	Check(ctx context.Context, token string) (*Identity, error)
}

type tokenRevoker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// IdentityChecker verifies a token and rejects the ones revoked on logout.
type IdentityChecker struct {
	verifier *Verifier
	revoker  tokenRevoker
}

func NewIdentityChecker(verifier *Verifier, revoker tokenRevoker) *IdentityChecker {
	return &IdentityChecker{
		verifier: verifier,
		revoker:  revoker,
	}
}

func (c *IdentityChecker) Check(ctx context.Context, token string) (*Identity, error) {
	identity, err := c.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	if c.revoker == nil {
		return identity, nil
	}

	revoked, err := c.revoker.IsRevoked(ctx, identity.TokenID)
	if err != nil {
		return nil, fmt.Errorf("check revoked token: %w", err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}

	return identity, nil
}
