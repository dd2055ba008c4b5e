package identity

import (
	"context"

	id "keepsake/pkg/domain"
)

// StaticContractDirectory classifies a fixed set of identities as
// contract-controlled.
type StaticContractDirectory struct {
	contracts map[id.Identity]struct{}
}

// NewStaticContractDirectory parses the configured identities.
func NewStaticContractDirectory(identities []string) (*StaticContractDirectory, error) {
	d := &StaticContractDirectory{contracts: make(map[id.Identity]struct{}, len(identities))}
	for _, raw := range identities {
		parsed, err := id.ParseIdentity(raw)
		if err != nil {
			return nil, err
		}
		d.contracts[parsed] = struct{}{}
	}
	return d, nil
}

func (d *StaticContractDirectory) IsContract(_ context.Context, identity id.Identity) (bool, error) {
	_, ok := d.contracts[identity]
	return ok, nil
}
