// internal/engine/provider/simulated.go
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	engerrors "license-alert-engine/internal/common/errors"
)

// SimulatedProvider is the test-mode gateway: it never performs network I/O
// and simulates outcomes by destination suffix so local verification can
// exercise every path.
//
//	...0000  permanent failure (carrier rejected)
//	...9999  transient failure (rate limited)
//	others   success
type SimulatedProvider struct {
	name string
}

func NewSimulatedProvider(name string) *SimulatedProvider {
	return &SimulatedProvider{name: name}
}

func (p *SimulatedProvider) Name() string { return p.name }

func (p *SimulatedProvider) Send(ctx context.Context, destination, body string) (*Result, error) {
	switch {
	case strings.HasSuffix(destination, "0000"):
		return nil, engerrors.NewPermanentProviderFailureError(p.name,
			fmt.Errorf("simulated carrier rejection for %s", destination))
	case strings.HasSuffix(destination, "9999"):
		return nil, engerrors.NewTransientProviderFailureError(p.name,
			fmt.Errorf("simulated rate limit for %s", destination))
	default:
		return &Result{
			Provider:  p.name,
			MessageID: "sim-" + uuid.New().String(),
		}, nil
	}
}
